package fetch_test

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/fetch"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/testsupport"
)

func newFetchCommandBuilder(repository shared.RepositoryPort) fetch.CommandBuilder {
	return fetch.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Repository:     repository,
		Prompter:       shared.AutoApprovePrompter{},
	}
}

func TestBuildReturnsCommand(testInstance *testing.T) {
	builder := fetch.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
}

func TestCommandCreatesTrackingBranches(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}
	builder := newFetchCommandBuilder(repository)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("yes", "true"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Len(testInstance, repository.TrackingCreated, 1)
	require.Contains(testInstance, outputBuffer.String(), "created 1 tracking branch(es), 0 failed")
}

func TestCommandRemoteFlagOverridesConfiguration(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{"upstream": {"feature/a"}},
	}
	builder := newFetchCommandBuilder(repository)
	builder.ConfigurationProvider = func() fetch.CommandConfiguration {
		return fetch.CommandConfiguration{RemoteName: testOriginRemoteConstant}
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("remote", "upstream"))
	require.NoError(testInstance, command.Flags().Set("yes", "true"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Len(testInstance, repository.TrackingCreated, 1)
	require.Equal(testInstance, "upstream", repository.TrackingCreated[0].RemoteName)
}

func TestCommandDryRunPrintsPlanWithoutCreating(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}
	builder := newFetchCommandBuilder(repository)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("dry-run", "true"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Empty(testInstance, repository.TrackingCreated)
	require.Contains(testInstance, outputBuffer.String(), "WOULD CREATE: feature/a")
}

func TestCommandReportsWhenNothingToCreate(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		Branches:         []string{testMainBranchConstant, "feature/a"},
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}
	builder := newFetchCommandBuilder(repository)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("yes", "true"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "skipped 1 existing branch(es)")
	require.Contains(testInstance, outputBuffer.String(), "no tracking branches to create")
}
