package gitrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/execshell"
)

const (
	executorMissingMessageConstant              = "git executor not configured"
	worktreeDirtyMessageConstant                = "worktree has local modifications"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitWorkTreeFlagConstant                     = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitVerifyFlagConstant                       = "--verify"
	gitQuietFlagConstant                        = "--quiet"
	gitHeadReferenceConstant                    = "HEAD"
	gitLocalBranchReferencePrefixConstant       = "refs/heads/"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitForEachRefFormatFlagConstant             = "--format=%(refname:short)\t%(upstream:short)"
	gitForEachRefShortNameFormatFlagConstant    = "--format=%(refname:short)"
	gitStatusSubcommandConstant                 = "status"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitCheckoutSubcommandConstant               = "checkout"
	gitResetSubcommandConstant                  = "reset"
	gitResetHardFlagConstant                    = "--hard"
	gitBranchSubcommandConstant                 = "branch"
	gitDeleteFlagConstant                       = "--delete"
	gitForceFlagConstant                        = "--force"
	gitTrackFlagConstant                        = "--track"
	gitMergeSubcommandConstant                  = "merge"
	gitMergeFastForwardOnlyFlagConstant         = "--ff-only"
	gitMergeNoFastForwardFlagConstant           = "--no-ff"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitFetchPruneFlagConstant                   = "--prune"
	gitRevListSubcommandConstant                = "rev-list"
	gitRevListCountFlagConstant                 = "--count"
	gitRevListNotFlagConstant                   = "--not"
	gitRevListRemotesFlagConstant               = "--remotes"
	gitLSRemoteSubcommandConstant               = "ls-remote"
	gitLSRemoteHeadsFlagConstant                = "--heads"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	trueOutputConstant                          = "true"
	upstreamSeparatorConstant                   = "/"
	referenceFieldSeparatorConstant             = "\t"
	remoteTrackingSeparatorConstant             = "/"
	lineSeparatorConstant                       = "\n"
)

// ErrExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrWorktreeDirty indicates a checkout was refused because local modifications exist.
var ErrWorktreeDirty = errors.New(worktreeDirtyMessageConstant)

// GitExecutor exposes the subset of shell execution required by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager implements the repository port by shelling out to git.
//
// Each method issues the single documented git invocation; Checkout and
// MergeInto issue their documented fixed sequences.
type RepositoryManager struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepositoryManager constructs a RepositoryManager bound to the provided working directory.
// An empty working directory targets the process working directory.
func NewRepositoryManager(executor GitExecutor, workingDirectory string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// IsRepository reports whether the working directory is inside a git work tree.
func (manager *RepositoryManager) IsRepository(executionContext context.Context) (bool, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitRevParseSubcommandConstant, gitWorkTreeFlagConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == trueOutputConstant, nil
}

// CurrentBranch returns the checked-out branch name, or an empty string in a detached HEAD state.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if strings.EqualFold(branchName, gitHeadReferenceConstant) {
		return "", nil
	}
	return branchName, nil
}

// LocalBranches lists local branch names in git's stable reference order.
func (manager *RepositoryManager) LocalBranches(executionContext context.Context) ([]string, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitForEachRefSubcommandConstant, gitForEachRefShortNameFormatFlagConstant, gitLocalBranchReferencePrefixConstant)
	if executionError != nil {
		return nil, executionError
	}

	branchNames := []string{}
	for _, outputLine := range splitOutputLines(executionResult.StandardOutput) {
		branchNames = append(branchNames, outputLine)
	}
	return branchNames, nil
}

// TrackingPairs returns every local branch with a configured upstream.
// Branches without an upstream are dropped; they cannot be classified against remote state.
func (manager *RepositoryManager) TrackingPairs(executionContext context.Context) ([]shared.TrackingPair, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitForEachRefSubcommandConstant, gitForEachRefFormatFlagConstant, gitLocalBranchReferencePrefixConstant)
	if executionError != nil {
		return nil, executionError
	}

	trackingPairs := []shared.TrackingPair{}
	for _, outputLine := range splitOutputLines(executionResult.StandardOutput) {
		referenceFields := strings.SplitN(outputLine, referenceFieldSeparatorConstant, 2)
		if len(referenceFields) != 2 {
			continue
		}

		localBranch := strings.TrimSpace(referenceFields[0])
		upstreamReference := strings.TrimSpace(referenceFields[1])
		if len(localBranch) == 0 || len(upstreamReference) == 0 {
			continue
		}

		// Remote names cannot contain a slash, so the first segment is the remote.
		upstreamSegments := strings.SplitN(upstreamReference, upstreamSeparatorConstant, 2)
		if len(upstreamSegments) != 2 {
			continue
		}

		trackingPairs = append(trackingPairs, shared.TrackingPair{
			LocalBranch: localBranch,
			Upstream: shared.RemoteRef{
				RemoteName: upstreamSegments[0],
				BranchName: upstreamSegments[1],
			},
		})
	}
	return trackingPairs, nil
}

// RemoteBranches lists the branch names currently advertised by the remote.
func (manager *RepositoryManager) RemoteBranches(executionContext context.Context, remoteName string) ([]string, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitLSRemoteSubcommandConstant, gitLSRemoteHeadsFlagConstant, remoteName)
	if executionError != nil {
		return nil, executionError
	}

	branchNames := []string{}
	for _, outputLine := range splitOutputLines(executionResult.StandardOutput) {
		referenceIndex := strings.Index(outputLine, gitLocalBranchReferencePrefixConstant)
		if referenceIndex < 0 {
			continue
		}
		branchName := strings.TrimSpace(outputLine[referenceIndex+len(gitLocalBranchReferencePrefixConstant):])
		if len(branchName) > 0 {
			branchNames = append(branchNames, branchName)
		}
	}
	return branchNames, nil
}

// BranchExists reports whether a local branch with the given name exists.
func (manager *RepositoryManager) BranchExists(executionContext context.Context, branchName string) (bool, error) {
	_, executionError := manager.executeGit(executionContext, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, gitLocalBranchReferencePrefixConstant+branchName)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

// IsWorktreeDirty reports whether the working tree holds uncommitted changes.
func (manager *RepositoryManager) IsWorktreeDirty(executionContext context.Context) (bool, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// HasUnpushedCommits reports whether the branch carries commits absent from every remote.
func (manager *RepositoryManager) HasUnpushedCommits(executionContext context.Context, branchName string) (bool, error) {
	executionResult, executionError := manager.executeGit(executionContext, gitRevListSubcommandConstant, gitRevListCountFlagConstant, branchName, gitRevListNotFlagConstant, gitRevListRemotesFlagConstant)
	if executionError != nil {
		return false, executionError
	}

	commitCount, parseError := strconv.Atoi(strings.TrimSpace(executionResult.StandardOutput))
	if parseError != nil {
		return false, parseError
	}
	return commitCount > 0, nil
}

// DeleteBranch removes a local branch; force bypasses the merged-into-upstream check.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, branchName string, force bool) error {
	deletionArguments := []string{gitBranchSubcommandConstant, gitDeleteFlagConstant}
	if force {
		deletionArguments = append(deletionArguments, gitForceFlagConstant)
	}
	deletionArguments = append(deletionArguments, branchName)

	_, executionError := manager.executeGit(executionContext, deletionArguments...)
	return executionError
}

// Checkout switches the work tree to the named branch.
//
// A dirty work tree refuses the switch unless discardChanges is set, in which
// case local modifications are irreversibly reset first.
func (manager *RepositoryManager) Checkout(executionContext context.Context, branchName string, discardChanges bool) error {
	worktreeDirty, dirtyCheckError := manager.IsWorktreeDirty(executionContext)
	if dirtyCheckError != nil {
		return dirtyCheckError
	}
	if worktreeDirty {
		if !discardChanges {
			return ErrWorktreeDirty
		}
		if _, resetError := manager.executeGit(executionContext, gitResetSubcommandConstant, gitResetHardFlagConstant); resetError != nil {
			return resetError
		}
	}

	_, executionError := manager.executeGit(executionContext, gitCheckoutSubcommandConstant, branchName)
	return executionError
}

// MergeInto checks out the target branch and merges the source branch into it.
func (manager *RepositoryManager) MergeInto(executionContext context.Context, targetBranch string, sourceBranch string, fastForwardOnly bool) error {
	if checkoutError := manager.Checkout(executionContext, targetBranch, false); checkoutError != nil {
		return checkoutError
	}

	mergePolicyFlag := gitMergeNoFastForwardFlagConstant
	if fastForwardOnly {
		mergePolicyFlag = gitMergeFastForwardOnlyFlagConstant
	}

	_, executionError := manager.executeGit(executionContext, gitMergeSubcommandConstant, mergePolicyFlag, sourceBranch)
	return executionError
}

// CreateTrackingBranch creates a local branch tracking remote/branch of the same name.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, branchName string, remoteName string) error {
	remoteReference := remoteName + remoteTrackingSeparatorConstant + branchName
	_, executionError := manager.executeGit(executionContext, gitBranchSubcommandConstant, gitTrackFlagConstant, branchName, remoteReference)
	return executionError
}

// RefreshRemoteTracking prunes stale remote-tracking references across all remotes.
func (manager *RepositoryManager) RefreshRemoteTracking(executionContext context.Context) error {
	_, executionError := manager.executeGit(executionContext, gitFetchSubcommandConstant, gitFetchAllFlagConstant, gitFetchPruneFlagConstant)
	return executionError
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: manager.workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}

func isCommandFailure(executionError error) bool {
	commandFailure := execshell.CommandFailedError{}
	return errors.As(executionError, &commandFailure)
}

func splitOutputLines(commandOutput string) []string {
	outputLines := []string{}
	for _, rawLine := range strings.Split(commandOutput, lineSeparatorConstant) {
		trimmedLine := strings.TrimRight(rawLine, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		outputLines = append(outputLines, trimmedLine)
	}
	return outputLines
}
