package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xuejuncheng0222/branch-keeper/internal/utils"
)

func TestCreateLoggerSupportedCombinations(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()

	testCases := []struct {
		name      string
		logLevel  utils.LogLevel
		logFormat utils.LogFormat
	}{
		{name: "debug_structured", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatStructured},
		{name: "info_structured", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured},
		{name: "warn_console", logLevel: utils.LogLevelWarn, logFormat: utils.LogFormatConsole},
		{name: "error_console", logLevel: utils.LogLevelError, logFormat: utils.LogFormatConsole},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)
			require.NoError(subtestInstance, creationError)
			require.NotNil(subtestInstance, logger)
		})
	}
}

func TestCreateLoggerRejectsUnknownValues(testInstance *testing.T) {
	factory := utils.NewLoggerFactory()

	testCases := []struct {
		name      string
		logLevel  utils.LogLevel
		logFormat utils.LogFormat
	}{
		{name: "unknown_level", logLevel: utils.LogLevel("verbose"), logFormat: utils.LogFormatStructured},
		{name: "unknown_format", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormat("plain")},
		{name: "empty_level", logLevel: utils.LogLevel(""), logFormat: utils.LogFormatStructured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			logger, creationError := factory.CreateLogger(testCase.logLevel, testCase.logFormat)
			require.Error(subtestInstance, creationError)
			require.Nil(subtestInstance, logger)
		})
	}
}
