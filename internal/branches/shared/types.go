package shared

import "context"

// DefaultRemoteNameConstant identifies the conventional upstream remote.
const DefaultRemoteNameConstant = "origin"

// RemoteRef identifies a branch advertised by a named remote.
type RemoteRef struct {
	RemoteName string
	BranchName string
}

// TrackingPair associates a local branch with its configured upstream.
type TrackingPair struct {
	LocalBranch string
	Upstream    RemoteRef
}

// PlanAction enumerates the mutations a plan may schedule.
type PlanAction string

// Supported plan actions.
const (
	PlanActionDelete         PlanAction = "delete"
	PlanActionMerge          PlanAction = "merge"
	PlanActionCreateTracking PlanAction = "create-tracking"
)

// PlannedOperation is one fully-resolved mutation awaiting execution.
type PlannedOperation struct {
	BranchName string
	Action     PlanAction
	Force      bool
}

// Plan is the ordered list of mutations computed before execution begins.
type Plan struct {
	Operations []PlannedOperation
}

// IsEmpty reports whether the plan schedules no mutations.
func (plan Plan) IsEmpty() bool {
	return len(plan.Operations) == 0
}

// OperationFailure records one failed plan item.
type OperationFailure struct {
	BranchName string
	Message    string
}

// ExecutionSummary accumulates per-item outcomes for a batch run.
type ExecutionSummary struct {
	Succeeded int
	Failed    int
	Failures  []OperationFailure
}

// Total returns the number of executed plan items.
func (summary ExecutionSummary) Total() int {
	return summary.Succeeded + summary.Failed
}

// SessionState captures repository context before any mutation so it can be restored on exit.
type SessionState struct {
	OriginalBranch string
	DirtyAtStart   bool
}

// RepositoryPort is the narrow boundary to the external version-control tool.
//
// Every method issues one git invocation (Checkout with discard and MergeInto
// issue the documented fixed sequences). Failures surface as errors; the
// services translate them into the conservative defaults the orchestrator
// documents instead of conflating failure with an empty result.
type RepositoryPort interface {
	IsRepository(executionContext context.Context) (bool, error)
	CurrentBranch(executionContext context.Context) (string, error)
	LocalBranches(executionContext context.Context) ([]string, error)
	TrackingPairs(executionContext context.Context) ([]TrackingPair, error)
	RemoteBranches(executionContext context.Context, remoteName string) ([]string, error)
	BranchExists(executionContext context.Context, branchName string) (bool, error)
	IsWorktreeDirty(executionContext context.Context) (bool, error)
	HasUnpushedCommits(executionContext context.Context, branchName string) (bool, error)
	DeleteBranch(executionContext context.Context, branchName string, force bool) error
	Checkout(executionContext context.Context, branchName string, discardChanges bool) error
	MergeInto(executionContext context.Context, targetBranch string, sourceBranch string, fastForwardOnly bool) error
	CreateTrackingBranch(executionContext context.Context, branchName string, remoteName string) error
	RefreshRemoteTracking(executionContext context.Context) error
}

// ConfirmationResult captures the outcome of a user confirmation prompt.
type ConfirmationResult struct {
	Confirmed bool
}

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// AutoApprovePrompter confirms every prompt without interaction.
type AutoApprovePrompter struct{}

// Confirm reports approval unconditionally.
func (AutoApprovePrompter) Confirm(string) (ConfirmationResult, error) {
	return ConfirmationResult{Confirmed: true}, nil
}
