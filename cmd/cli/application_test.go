package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xuejuncheng0222/branch-keeper/cmd/cli"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/clean"
)

type embeddedConfigurationShape struct {
	Common   map[string]any            `yaml:"common"`
	Commands map[string]map[string]any `yaml:"commands"`
}

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}

func TestEmbeddedDefaultsProvideCommandConfigurations(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, []string{"main", "master", "develop"}, configuration.Commands.Clean.ProtectedBranches)
	require.Empty(testInstance, configuration.Commands.Clean.IgnoredBranches)
	require.False(testInstance, configuration.Commands.Clean.Force)
	require.True(testInstance, configuration.Commands.Merge.FastForwardOnly)
	require.Empty(testInstance, configuration.Commands.Merge.ExcludedBranches)
	require.Equal(testInstance, "origin", configuration.Commands.Fetch.RemoteName)
}

func TestEmbeddedConfigurationCoversEveryConfigurableCommand(testInstance *testing.T) {
	configurationData, _ := cli.EmbeddedDefaultConfiguration()

	var configurationShape embeddedConfigurationShape
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &configurationShape))

	require.Contains(testInstance, configurationShape.Common, "log_level")
	require.Contains(testInstance, configurationShape.Common, "log_format")
	for _, configurableCommandName := range []string{"clean", "merge", "fetch"} {
		require.Contains(testInstance, configurationShape.Commands, configurableCommandName)
	}
}

func TestEmbeddedCleanSectionDecodesThroughMapstructure(testInstance *testing.T) {
	configurationData, _ := cli.EmbeddedDefaultConfiguration()

	var configurationShape embeddedConfigurationShape
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &configurationShape))

	var cleanConfiguration clean.CommandConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &cleanConfiguration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(configurationShape.Commands["clean"]))

	sanitized := cleanConfiguration.Sanitize()
	require.Equal(testInstance, []string{"main", "master", "develop"}, sanitized.ProtectedBranches)
	require.False(testInstance, sanitized.Force)
	require.False(testInstance, sanitized.DryRun)
}
