package gitrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xuejuncheng0222/branch-keeper/internal/execshell"
	"github.com/xuejuncheng0222/branch-keeper/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/tmp/repository"
	testRemoteNameConstant     = "origin"
)

type scriptedGitExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.CommandDetails
}

type scriptedResponse struct {
	result execshell.ExecutionResult
	failed bool
}

func newScriptedGitExecutor() *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: map[string]scriptedResponse{}}
}

func (executor *scriptedGitExecutor) respond(argumentSignature string, standardOutput string) {
	executor.responses[argumentSignature] = scriptedResponse{result: execshell.ExecutionResult{StandardOutput: standardOutput}}
}

func (executor *scriptedGitExecutor) fail(argumentSignature string) {
	executor.responses[argumentSignature] = scriptedResponse{failed: true}
}

func (executor *scriptedGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)

	argumentSignature := strings.Join(details.Arguments, " ")
	response, responseExists := executor.responses[argumentSignature]
	if !responseExists {
		return execshell.ExecutionResult{}, nil
	}
	if response.failed {
		command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: execshell.ExecutionResult{ExitCode: 1}}
	}
	return response.result, nil
}

func newTestManager(testInstance *testing.T, executor *scriptedGitExecutor) *gitrepo.RepositoryManager {
	manager, creationError := gitrepo.NewRepositoryManager(executor, testRepositoryPathConstant)
	require.NoError(testInstance, creationError)
	return manager
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	_, creationError := gitrepo.NewRepositoryManager(nil, testRepositoryPathConstant)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
}

func TestCurrentBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		gitOutput      string
		expectedBranch string
	}{
		{name: "regular_branch", gitOutput: "main\n", expectedBranch: "main"},
		{name: "detached_head", gitOutput: "HEAD\n", expectedBranch: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newScriptedGitExecutor()
			executor.respond("rev-parse --abbrev-ref HEAD", testCase.gitOutput)

			branchName, queryError := newTestManager(testInstance, executor).CurrentBranch(context.Background())
			require.NoError(testInstance, queryError)
			require.Equal(testInstance, testCase.expectedBranch, branchName)
		})
	}
}

func TestTrackingPairsParsesUpstreamReferences(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond(
		"for-each-ref --format=%(refname:short)\t%(upstream:short) refs/heads/",
		"main\torigin/main\nfeature/login\torigin/feature/login\nlocal-only\t\nspike\tbackup/spike\n",
	)

	trackingPairs, queryError := newTestManager(testInstance, executor).TrackingPairs(context.Background())
	require.NoError(testInstance, queryError)
	require.Len(testInstance, trackingPairs, 3)

	require.Equal(testInstance, "main", trackingPairs[0].LocalBranch)
	require.Equal(testInstance, testRemoteNameConstant, trackingPairs[0].Upstream.RemoteName)
	require.Equal(testInstance, "main", trackingPairs[0].Upstream.BranchName)

	require.Equal(testInstance, "feature/login", trackingPairs[1].LocalBranch)
	require.Equal(testInstance, "feature/login", trackingPairs[1].Upstream.BranchName)

	require.Equal(testInstance, "backup", trackingPairs[2].Upstream.RemoteName)
}

func TestRemoteBranchesParsesAdvertisedHeads(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond(
		"ls-remote --heads origin",
		"5f1d1f4a\trefs/heads/main\n9e2d6c1b\trefs/heads/feature/login\n",
	)

	remoteBranches, queryError := newTestManager(testInstance, executor).RemoteBranches(context.Background(), testRemoteNameConstant)
	require.NoError(testInstance, queryError)
	require.Equal(testInstance, []string{"main", "feature/login"}, remoteBranches)
}

func TestBranchExistsTreatsLookupFailureAsAbsent(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.fail("rev-parse --verify --quiet refs/heads/missing")

	exists, queryError := newTestManager(testInstance, executor).BranchExists(context.Background(), "missing")
	require.NoError(testInstance, queryError)
	require.False(testInstance, exists)
}

func TestIsWorktreeDirty(testInstance *testing.T) {
	testCases := []struct {
		name          string
		statusOutput  string
		expectedDirty bool
	}{
		{name: "clean", statusOutput: "", expectedDirty: false},
		{name: "dirty", statusOutput: " M internal/service.go\n", expectedDirty: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newScriptedGitExecutor()
			executor.respond("status --porcelain", testCase.statusOutput)

			dirty, queryError := newTestManager(testInstance, executor).IsWorktreeDirty(context.Background())
			require.NoError(testInstance, queryError)
			require.Equal(testInstance, testCase.expectedDirty, dirty)
		})
	}
}

func TestHasUnpushedCommits(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond("rev-list --count feature/login --not --remotes", "3\n")

	unpushed, queryError := newTestManager(testInstance, executor).HasUnpushedCommits(context.Background(), "feature/login")
	require.NoError(testInstance, queryError)
	require.True(testInstance, unpushed)
}

func TestDeleteBranchUsesForceFlagOnlyWhenRequested(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	manager := newTestManager(testInstance, executor)

	require.NoError(testInstance, manager.DeleteBranch(context.Background(), "feature/login", false))
	require.NoError(testInstance, manager.DeleteBranch(context.Background(), "feature/login", true))

	require.Len(testInstance, executor.recordedCommands, 2)
	require.Equal(testInstance, []string{"branch", "--delete", "feature/login"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, []string{"branch", "--delete", "--force", "feature/login"}, executor.recordedCommands[1].Arguments)
}

func TestCheckoutRefusesDirtyWorktreeWithoutDiscard(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond("status --porcelain", " M cmd/main.go\n")

	checkoutError := newTestManager(testInstance, executor).Checkout(context.Background(), "main", false)
	require.ErrorIs(testInstance, checkoutError, gitrepo.ErrWorktreeDirty)
	require.Len(testInstance, executor.recordedCommands, 1)
}

func TestCheckoutDiscardsChangesWhenRequested(testInstance *testing.T) {
	executor := newScriptedGitExecutor()
	executor.respond("status --porcelain", " M cmd/main.go\n")

	checkoutError := newTestManager(testInstance, executor).Checkout(context.Background(), "main", true)
	require.NoError(testInstance, checkoutError)

	require.Len(testInstance, executor.recordedCommands, 3)
	require.Equal(testInstance, []string{"reset", "--hard"}, executor.recordedCommands[1].Arguments)
	require.Equal(testInstance, []string{"checkout", "main"}, executor.recordedCommands[2].Arguments)
}

func TestMergeIntoChecksOutTargetThenMerges(testInstance *testing.T) {
	executor := newScriptedGitExecutor()

	mergeError := newTestManager(testInstance, executor).MergeInto(context.Background(), "dev", "hotfix", true)
	require.NoError(testInstance, mergeError)

	require.Len(testInstance, executor.recordedCommands, 3)
	require.Equal(testInstance, []string{"checkout", "dev"}, executor.recordedCommands[1].Arguments)
	require.Equal(testInstance, []string{"merge", "--ff-only", "hotfix"}, executor.recordedCommands[2].Arguments)
}

func TestCreateTrackingBranchTargetsRemoteReference(testInstance *testing.T) {
	executor := newScriptedGitExecutor()

	creationError := newTestManager(testInstance, executor).CreateTrackingBranch(context.Background(), "feature/login", testRemoteNameConstant)
	require.NoError(testInstance, creationError)

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"branch", "--track", "feature/login", "origin/feature/login"}, executor.recordedCommands[0].Arguments)
}

func TestExecuteGitDisablesTerminalPrompts(testInstance *testing.T) {
	executor := newScriptedGitExecutor()

	refreshError := newTestManager(testInstance, executor).RefreshRemoteTracking(context.Background())
	require.NoError(testInstance, refreshError)

	require.Len(testInstance, executor.recordedCommands, 1)
	recordedCommand := executor.recordedCommands[0]
	require.Equal(testInstance, []string{"fetch", "--all", "--prune"}, recordedCommand.Arguments)
	require.Equal(testInstance, testRepositoryPathConstant, recordedCommand.WorkingDirectory)
	require.Equal(testInstance, "0", recordedCommand.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}
