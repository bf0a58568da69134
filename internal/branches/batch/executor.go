package batch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	repositoryMissingMessageConstant       = "repository port not configured"
	applyFunctionMissingMessageConstant    = "apply function not configured"
	sessionCaptureFailedLogMessageConstant = "could not capture current branch before batch; restoration disabled"
	operationFailedLogMessageConstant      = "planned operation failed; continuing with remaining items"
	restorationFailedLogMessageConstant    = "could not return to original branch after batch"
	logFieldBranchNameConstant             = "branch"
	logFieldOriginalBranchConstant         = "original_branch"
)

// ErrRepositoryNotConfigured indicates the executor was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrApplyFunctionNotConfigured indicates Run was called without an operation function.
var ErrApplyFunctionNotConfigured = errors.New(applyFunctionMissingMessageConstant)

// ApplyFunction executes one planned operation against the repository.
type ApplyFunction func(executionContext context.Context, operation shared.PlannedOperation) error

// Executor drives a fully-built plan item by item with per-item failure
// isolation, then restores the branch that was checked out before the run.
type Executor struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
}

// NewExecutor constructs a batch executor.
func NewExecutor(repository shared.RepositoryPort, logger *zap.Logger) (*Executor, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{repository: repository, logger: logger}, nil
}

// Run executes every plan item in order and returns the accumulated summary.
//
// One failing item never aborts the remaining queue. On every exit path the
// executor attempts to return to the branch captured before the first
// mutation; a failed restoration is logged and does not alter the summary.
func (executor *Executor) Run(executionContext context.Context, plan shared.Plan, applyOperation ApplyFunction) (shared.ExecutionSummary, error) {
	if applyOperation == nil {
		return shared.ExecutionSummary{}, ErrApplyFunctionNotConfigured
	}

	sessionState := executor.captureSessionState(executionContext)
	defer executor.restoreSessionState(executionContext, sessionState)

	summary := shared.ExecutionSummary{}
	for _, plannedOperation := range plan.Operations {
		operationError := applyOperation(executionContext, plannedOperation)
		if operationError != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, shared.OperationFailure{
				BranchName: plannedOperation.BranchName,
				Message:    operationError.Error(),
			})
			executor.logger.Debug(
				operationFailedLogMessageConstant,
				zap.String(logFieldBranchNameConstant, plannedOperation.BranchName),
				zap.Error(operationError),
			)
			continue
		}
		summary.Succeeded++
	}

	return summary, nil
}

func (executor *Executor) captureSessionState(executionContext context.Context) shared.SessionState {
	originalBranch, captureError := executor.repository.CurrentBranch(executionContext)
	if captureError != nil {
		executor.logger.Error(sessionCaptureFailedLogMessageConstant, zap.Error(captureError))
		return shared.SessionState{}
	}
	return shared.SessionState{OriginalBranch: originalBranch}
}

func (executor *Executor) restoreSessionState(executionContext context.Context, sessionState shared.SessionState) {
	if len(sessionState.OriginalBranch) == 0 {
		return
	}

	currentBranch, currentBranchError := executor.repository.CurrentBranch(executionContext)
	if currentBranchError == nil && currentBranch == sessionState.OriginalBranch {
		return
	}

	if restorationError := executor.repository.Checkout(executionContext, sessionState.OriginalBranch, false); restorationError != nil {
		executor.logger.Error(
			restorationFailedLogMessageConstant,
			zap.String(logFieldOriginalBranchConstant, sessionState.OriginalBranch),
			zap.Error(restorationError),
		)
	}
}
