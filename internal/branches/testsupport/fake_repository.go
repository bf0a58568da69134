package testsupport

import (
	"context"
	"fmt"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

// RecordedDeletion captures one DeleteBranch call.
type RecordedDeletion struct {
	BranchName string
	Force      bool
}

// RecordedMerge captures one MergeInto call.
type RecordedMerge struct {
	TargetBranch    string
	SourceBranch    string
	FastForwardOnly bool
}

// RecordedCheckout captures one Checkout call.
type RecordedCheckout struct {
	BranchName     string
	DiscardChanges bool
}

// RecordedTrackingCreation captures one CreateTrackingBranch call.
type RecordedTrackingCreation struct {
	BranchName string
	RemoteName string
}

// FakeRepository is an in-memory repository port for service tests.
//
// Zero values behave like a valid, clean repository with no branches. Error
// maps inject per-branch failures; recorded slices expose the mutation order.
type FakeRepository struct {
	NotARepository     bool
	Current            string
	CurrentError       error
	Branches           []string
	BranchesError      error
	Tracking           []shared.TrackingPair
	TrackingError      error
	RemoteBranchSets   map[string][]string
	RemoteBranchErrors map[string]error
	Dirty              bool
	DirtyError         error
	UnpushedBranches   map[string]bool
	UnpushedErrors     map[string]error
	DeleteErrors       map[string]error
	CheckoutErrors     map[string]error
	MergeErrors        map[string]error
	CreateErrors       map[string]error
	RefreshError       error

	RefreshCalls    int
	Deletions       []RecordedDeletion
	Merges          []RecordedMerge
	Checkouts       []RecordedCheckout
	TrackingCreated []RecordedTrackingCreation
}

var _ shared.RepositoryPort = (*FakeRepository)(nil)

// IsRepository reports the configured repository validity.
func (repository *FakeRepository) IsRepository(context.Context) (bool, error) {
	return !repository.NotARepository, nil
}

// CurrentBranch returns the configured current branch.
func (repository *FakeRepository) CurrentBranch(context.Context) (string, error) {
	if repository.CurrentError != nil {
		return "", repository.CurrentError
	}
	return repository.Current, nil
}

// LocalBranches returns the configured branch list.
func (repository *FakeRepository) LocalBranches(context.Context) ([]string, error) {
	if repository.BranchesError != nil {
		return nil, repository.BranchesError
	}
	return append([]string{}, repository.Branches...), nil
}

// TrackingPairs returns the configured tracking pairs.
func (repository *FakeRepository) TrackingPairs(context.Context) ([]shared.TrackingPair, error) {
	if repository.TrackingError != nil {
		return nil, repository.TrackingError
	}
	return append([]shared.TrackingPair{}, repository.Tracking...), nil
}

// RemoteBranches returns the configured branch set for the remote.
func (repository *FakeRepository) RemoteBranches(executionContext context.Context, remoteName string) ([]string, error) {
	if listingError, errorExists := repository.RemoteBranchErrors[remoteName]; errorExists {
		return nil, listingError
	}
	return append([]string{}, repository.RemoteBranchSets[remoteName]...), nil
}

// BranchExists reports membership in the configured branch list.
func (repository *FakeRepository) BranchExists(executionContext context.Context, branchName string) (bool, error) {
	for _, existingBranch := range repository.Branches {
		if existingBranch == branchName {
			return true, nil
		}
	}
	return false, nil
}

// IsWorktreeDirty reports the configured dirtiness.
func (repository *FakeRepository) IsWorktreeDirty(context.Context) (bool, error) {
	if repository.DirtyError != nil {
		return false, repository.DirtyError
	}
	return repository.Dirty, nil
}

// HasUnpushedCommits reports the configured unpushed state for the branch.
func (repository *FakeRepository) HasUnpushedCommits(executionContext context.Context, branchName string) (bool, error) {
	if unpushedError, errorExists := repository.UnpushedErrors[branchName]; errorExists {
		return false, unpushedError
	}
	return repository.UnpushedBranches[branchName], nil
}

// DeleteBranch records the deletion and removes the branch from the local list.
func (repository *FakeRepository) DeleteBranch(executionContext context.Context, branchName string, force bool) error {
	if deletionError, errorExists := repository.DeleteErrors[branchName]; errorExists {
		return deletionError
	}
	repository.Deletions = append(repository.Deletions, RecordedDeletion{BranchName: branchName, Force: force})
	remainingBranches := repository.Branches[:0]
	for _, existingBranch := range repository.Branches {
		if existingBranch != branchName {
			remainingBranches = append(remainingBranches, existingBranch)
		}
	}
	repository.Branches = remainingBranches
	return nil
}

// Checkout records the switch and updates the current branch.
func (repository *FakeRepository) Checkout(executionContext context.Context, branchName string, discardChanges bool) error {
	if checkoutError, errorExists := repository.CheckoutErrors[branchName]; errorExists {
		return checkoutError
	}
	repository.Checkouts = append(repository.Checkouts, RecordedCheckout{BranchName: branchName, DiscardChanges: discardChanges})
	repository.Current = branchName
	return nil
}

// MergeInto records the merge and leaves the target branch checked out.
func (repository *FakeRepository) MergeInto(executionContext context.Context, targetBranch string, sourceBranch string, fastForwardOnly bool) error {
	repository.Current = targetBranch
	if mergeError, errorExists := repository.MergeErrors[targetBranch]; errorExists {
		return mergeError
	}
	repository.Merges = append(repository.Merges, RecordedMerge{TargetBranch: targetBranch, SourceBranch: sourceBranch, FastForwardOnly: fastForwardOnly})
	return nil
}

// CreateTrackingBranch records the creation and appends the branch locally.
func (repository *FakeRepository) CreateTrackingBranch(executionContext context.Context, branchName string, remoteName string) error {
	if creationError, errorExists := repository.CreateErrors[branchName]; errorExists {
		return creationError
	}
	repository.TrackingCreated = append(repository.TrackingCreated, RecordedTrackingCreation{BranchName: branchName, RemoteName: remoteName})
	repository.Branches = append(repository.Branches, branchName)
	return nil
}

// RefreshRemoteTracking records the refresh.
func (repository *FakeRepository) RefreshRemoteTracking(context.Context) error {
	repository.RefreshCalls++
	return repository.RefreshError
}

// FailingPrompter rejects every confirmation with the configured error.
type FailingPrompter struct {
	PromptError error
}

// Confirm returns the configured error.
func (prompter FailingPrompter) Confirm(string) (shared.ConfirmationResult, error) {
	if prompter.PromptError != nil {
		return shared.ConfirmationResult{}, prompter.PromptError
	}
	return shared.ConfirmationResult{Confirmed: false}, nil
}

// RecordingPrompter captures prompts and answers with a fixed decision.
type RecordingPrompter struct {
	Decision bool
	Prompts  []string
}

// Confirm records the prompt text and returns the fixed decision.
func (prompter *RecordingPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	prompter.Prompts = append(prompter.Prompts, prompt)
	return shared.ConfirmationResult{Confirmed: prompter.Decision}, nil
}

// DescribeMutations summarizes recorded mutations for failure messages.
func (repository *FakeRepository) DescribeMutations() string {
	return fmt.Sprintf("deletions=%v merges=%v checkouts=%v created=%v",
		repository.Deletions, repository.Merges, repository.Checkouts, repository.TrackingCreated)
}
