package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/batch"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	repositoryMissingMessageConstant      = "repository port not configured"
	notARepositoryMessageConstant         = "not inside a git repository"
	creationDeclinedMessageConstant       = "tracking-branch creation declined"
	repositoryCheckErrorTemplateConstant  = "failed to verify repository: %w"
	remoteListingErrorTemplateConstant    = "failed to list branches on remote %q: %w"
	refreshFailedLogMessageConstant       = "remote-tracking refresh failed; continuing with stale tracking data"
	currentBranchFailedLogMessageConstant = "could not determine current branch; proceeding without current-branch protection"
	existenceCheckFailedLogMessage        = "local existence check failed; branch skipped"
	existingBranchSkippedLogMessage       = "local branch already exists; creation skipped"
	creationPlannedLogMessageConstant     = "tracking branch scheduled for creation"
	confirmationPromptTemplateConstant    = "Create %d tracking branch(es) from %s? [%s]"
	promptBranchSeparatorConstant         = ", "
	logFieldBranchNameConstant            = "branch"
	logFieldRemoteNameConstant            = "remote"
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrNotARepository indicates the working directory is not inside a git work tree.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrCreationDeclined indicates the user rejected the creation plan at the confirmation point.
var ErrCreationDeclined = errors.New(creationDeclinedMessageConstant)

// Dependencies enumerates the collaborators required for tracking-branch creation.
type Dependencies struct {
	Repository shared.RepositoryPort
	Logger     *zap.Logger
	Prompter   shared.ConfirmationPrompter
}

// Options configures one tracking-branch creation run.
type Options struct {
	RemoteName      string
	IgnoredBranches []string
	ForceRecreate   bool
	DryRun          bool
	AssumeYes       bool
}

// Result reports the creation plan and the batch outcome of one run.
type Result struct {
	Plan            shared.Plan
	Summary         shared.ExecutionSummary
	SkippedExisting int
}

// Service materializes remote branches as local tracking branches.
type Service struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
	prompter   shared.ConfirmationPrompter
}

// NewService constructs a fetch service from the provided dependencies.
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

// CreateTrackingBranches plans and executes local tracking-branch creation for
// every branch advertised by the remote. Branches that already exist locally
// are skipped unless force mode recreates them.
func (service *Service) CreateTrackingBranches(executionContext context.Context, options Options) (Result, error) {
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

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = shared.DefaultRemoteNameConstant
	}

	creationPlan, skippedExisting, planError := service.planCreations(executionContext, remoteName, options)
	if planError != nil {
		return Result{}, planError
	}

	result := Result{Plan: creationPlan, SkippedExisting: skippedExisting}
	if creationPlan.IsEmpty() || options.DryRun {
		return result, nil
	}

	if !options.AssumeYes {
		confirmation, confirmationError := service.prompter.Confirm(buildConfirmationPrompt(remoteName, creationPlan))
		if confirmationError != nil {
			return result, confirmationError
		}
		if !confirmation.Confirmed {
			return result, ErrCreationDeclined
		}
	}

	batchExecutor, executorError := batch.NewExecutor(service.repository, service.logger)
	if executorError != nil {
		return result, executorError
	}

	summary, runError := batchExecutor.Run(executionContext, creationPlan, func(operationContext context.Context, operation shared.PlannedOperation) error {
		if operation.Force {
			if deletionError := service.repository.DeleteBranch(operationContext, operation.BranchName, true); deletionError != nil {
				return deletionError
			}
		}
		return service.repository.CreateTrackingBranch(operationContext, operation.BranchName, remoteName)
	})
	if runError != nil {
		return result, runError
	}

	result.Summary = summary
	return result, nil
}

// planCreations classifies every advertised remote branch. A branch that
// already exists locally is recreated only in force mode; existence-check
// failures resolve toward skipping.
func (service *Service) planCreations(executionContext context.Context, remoteName string, options Options) (shared.Plan, int, error) {
	remoteBranches, listingError := service.repository.RemoteBranches(executionContext, remoteName)
	if listingError != nil {
		return shared.Plan{}, 0, fmt.Errorf(remoteListingErrorTemplateConstant, remoteName, listingError)
	}

	currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
	if currentBranchError != nil {
		service.logger.Error(currentBranchFailedLogMessageConstant, zap.Error(currentBranchError))
		currentBranch = ""
	}
	policy := shared.NewBranchPolicy(shared.DefaultProtectedBranches, options.IgnoredBranches, currentBranch)

	creationPlan := shared.Plan{}
	skippedExisting := 0
	for _, remoteBranch := range remoteBranches {
		if policy.ShouldSkip(remoteBranch) {
			continue
		}

		existsLocally, existenceError := service.repository.BranchExists(executionContext, remoteBranch)
		if existenceError != nil {
			service.logger.Warn(
				existenceCheckFailedLogMessage,
				zap.String(logFieldBranchNameConstant, remoteBranch),
				zap.Error(existenceError),
			)
			continue
		}
		if existsLocally && !options.ForceRecreate {
			skippedExisting++
			service.logger.Debug(
				existingBranchSkippedLogMessage,
				zap.String(logFieldBranchNameConstant, remoteBranch),
			)
			continue
		}

		service.logger.Debug(
			creationPlannedLogMessageConstant,
			zap.String(logFieldBranchNameConstant, remoteBranch),
			zap.String(logFieldRemoteNameConstant, remoteName),
		)
		creationPlan.Operations = append(creationPlan.Operations, shared.PlannedOperation{
			BranchName: remoteBranch,
			Action:     shared.PlanActionCreateTracking,
			Force:      existsLocally && options.ForceRecreate,
		})
	}

	return creationPlan, skippedExisting, nil
}

func buildConfirmationPrompt(remoteName string, creationPlan shared.Plan) string {
	branchNames := make([]string, 0, len(creationPlan.Operations))
	for _, plannedOperation := range creationPlan.Operations {
		branchNames = append(branchNames, plannedOperation.BranchName)
	}
	return fmt.Sprintf(confirmationPromptTemplateConstant, len(branchNames), remoteName, strings.Join(branchNames, promptBranchSeparatorConstant))
}
