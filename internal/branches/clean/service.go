package clean

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/batch"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/remotestate"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	repositoryMissingMessageConstant      = "repository port not configured"
	notARepositoryMessageConstant         = "not inside a git repository"
	cleanupDeclinedMessageConstant        = "branch cleanup declined"
	repositoryCheckErrorTemplateConstant  = "failed to verify repository: %w"
	refreshFailedLogMessageConstant       = "remote-tracking refresh failed; continuing with stale tracking data"
	currentBranchFailedLogMessageConstant = "could not determine current branch; proceeding without current-branch protection"
	trackingQueryFailedLogMessageConstant = "could not enumerate tracking branches; nothing to clean"
	unavailableRemoteSkipLogMessage       = "remote snapshot unavailable; branch kept"
	deletionPlannedLogMessageConstant     = "stale branch scheduled for deletion"
	confirmationPromptTemplateConstant    = "Delete %d stale branch(es)? [%s]"
	promptBranchSeparatorConstant         = ", "
	logFieldBranchNameConstant            = "branch"
	logFieldRemoteNameConstant            = "remote"
	logFieldUpstreamBranchConstant        = "upstream_branch"
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrNotARepository indicates the working directory is not inside a git work tree.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrCleanupDeclined indicates the user rejected the deletion plan at the confirmation point.
var ErrCleanupDeclined = errors.New(cleanupDeclinedMessageConstant)

// Dependencies enumerates the collaborators required for branch cleanup.
type Dependencies struct {
	Repository shared.RepositoryPort
	Logger     *zap.Logger
	Prompter   shared.ConfirmationPrompter
}

// Options configures one cleanup run.
type Options struct {
	ProtectedBranches []string
	IgnoredBranches   []string
	ForceDelete       bool
	DryRun            bool
	AssumeYes         bool
}

// Result reports the deletion plan and the batch outcome of one cleanup run.
type Result struct {
	Plan               shared.Plan
	Summary            shared.ExecutionSummary
	SkippedUnreachable int
}

// Service reconciles local tracking branches against remote truth and deletes
// the branches whose upstream no longer exists.
type Service struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
	prompter   shared.ConfirmationPrompter
}

// NewService constructs a cleanup service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prompter := dependencies.Prompter
	if prompter == nil {
		prompter = shared.AutoApprovePrompter{}
	}
	return &Service{repository: dependencies.Repository, logger: logger, prompter: prompter}, nil
}

// Cleanup plans and executes stale-branch deletion.
func (service *Service) Cleanup(executionContext context.Context, options Options) (Result, error) {
	insideRepository, repositoryCheckError := service.repository.IsRepository(executionContext)
	if repositoryCheckError != nil {
		return Result{}, fmt.Errorf(repositoryCheckErrorTemplateConstant, repositoryCheckError)
	}
	if !insideRepository {
		return Result{}, ErrNotARepository
	}

	if refreshError := service.repository.RefreshRemoteTracking(executionContext); refreshError != nil {
		service.logger.Warn(refreshFailedLogMessageConstant, zap.Error(refreshError))
	}

	deletionPlan, skippedUnreachable, planError := service.planDeletions(executionContext, options)
	if planError != nil {
		return Result{}, planError
	}

	result := Result{Plan: deletionPlan, SkippedUnreachable: skippedUnreachable}
	if deletionPlan.IsEmpty() || options.DryRun {
		return result, nil
	}

	if !options.AssumeYes {
		confirmation, confirmationError := service.prompter.Confirm(buildConfirmationPrompt(deletionPlan))
		if confirmationError != nil {
			return result, confirmationError
		}
		if !confirmation.Confirmed {
			return result, ErrCleanupDeclined
		}
	}

	batchExecutor, executorError := batch.NewExecutor(service.repository, service.logger)
	if executorError != nil {
		return result, executorError
	}

	summary, runError := batchExecutor.Run(executionContext, deletionPlan, func(operationContext context.Context, operation shared.PlannedOperation) error {
		return service.repository.DeleteBranch(operationContext, operation.BranchName, operation.Force)
	})
	if runError != nil {
		return result, runError
	}

	result.Summary = summary
	return result, nil
}

// planDeletions classifies every tracked branch against the remote snapshot.
//
// The plan is built completely before any mutation; its order follows the
// tracking-pair enumeration order, which is stable for a given repository.
func (service *Service) planDeletions(executionContext context.Context, options Options) (shared.Plan, int, error) {
	currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
	if currentBranchError != nil {
		service.logger.Error(currentBranchFailedLogMessageConstant, zap.Error(currentBranchError))
		currentBranch = ""
	}

	trackingPairs, trackingError := service.repository.TrackingPairs(executionContext)
	if trackingError != nil {
		service.logger.Error(trackingQueryFailedLogMessageConstant, zap.Error(trackingError))
		return shared.Plan{}, 0, nil
	}

	protectedBranches := options.ProtectedBranches
	if len(protectedBranches) == 0 {
		protectedBranches = shared.DefaultProtectedBranches
	}
	policy := shared.NewBranchPolicy(protectedBranches, options.IgnoredBranches, currentBranch)

	candidatePairs := make([]shared.TrackingPair, 0, len(trackingPairs))
	remoteNames := make([]string, 0, len(trackingPairs))
	for _, trackingPair := range trackingPairs {
		if policy.ShouldSkip(trackingPair.LocalBranch) {
			continue
		}
		candidatePairs = append(candidatePairs, trackingPair)
		remoteNames = append(remoteNames, trackingPair.Upstream.RemoteName)
	}

	snapshotBuilder, builderError := remotestate.NewBuilder(service.repository, service.logger)
	if builderError != nil {
		return shared.Plan{}, 0, builderError
	}
	snapshot := snapshotBuilder.BuildSnapshot(executionContext, remoteNames)

	deletionPlan := shared.Plan{}
	skippedUnreachable := 0
	for _, candidatePair := range candidatePairs {
		if !snapshot.Available(candidatePair.Upstream.RemoteName) {
			skippedUnreachable++
			service.logger.Warn(
				unavailableRemoteSkipLogMessage,
				zap.String(logFieldBranchNameConstant, candidatePair.LocalBranch),
				zap.String(logFieldRemoteNameConstant, candidatePair.Upstream.RemoteName),
			)
			continue
		}
		if snapshot.Contains(candidatePair.Upstream.RemoteName, candidatePair.Upstream.BranchName) {
			continue
		}

		service.logger.Debug(
			deletionPlannedLogMessageConstant,
			zap.String(logFieldBranchNameConstant, candidatePair.LocalBranch),
			zap.String(logFieldRemoteNameConstant, candidatePair.Upstream.RemoteName),
			zap.String(logFieldUpstreamBranchConstant, candidatePair.Upstream.BranchName),
		)
		deletionPlan.Operations = append(deletionPlan.Operations, shared.PlannedOperation{
			BranchName: candidatePair.LocalBranch,
			Action:     shared.PlanActionDelete,
			Force:      options.ForceDelete,
		})
	}

	return deletionPlan, skippedUnreachable, nil
}

func buildConfirmationPrompt(deletionPlan shared.Plan) string {
	branchNames := make([]string, 0, len(deletionPlan.Operations))
	for _, plannedOperation := range deletionPlan.Operations {
		branchNames = append(branchNames, plannedOperation.BranchName)
	}
	return fmt.Sprintf(confirmationPromptTemplateConstant, len(branchNames), strings.Join(branchNames, promptBranchSeparatorConstant))
}
