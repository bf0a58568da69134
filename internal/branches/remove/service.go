package remove

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
	deletionDeclinedMessageConstant       = "branch deletion declined"
	repositoryCheckErrorTemplateConstant  = "failed to verify repository: %w"
	currentBranchFailedLogMessageConstant = "could not determine current branch; proceeding without current-branch protection"
	protectedBranchSkippedLogMessage      = "requested branch skipped by policy"
	missingBranchSkippedLogMessage        = "requested branch does not exist; skipped"
	existenceCheckFailedLogMessage        = "local existence check failed; branch skipped"
	confirmationPromptTemplateConstant    = "Delete %d branch(es)? [%s]"
	promptBranchSeparatorConstant         = ", "
	logFieldBranchNameConstant            = "branch"
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrNotARepository indicates the working directory is not inside a git work tree.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrDeletionDeclined indicates the user rejected the deletion plan at the confirmation point.
var ErrDeletionDeclined = errors.New(deletionDeclinedMessageConstant)

// Dependencies enumerates the collaborators required for explicit branch deletion.
type Dependencies struct {
	Repository shared.RepositoryPort
	Logger     *zap.Logger
	Prompter   shared.ConfirmationPrompter
}

// Options configures one explicit deletion run.
type Options struct {
	BranchNames []string
	ForceDelete bool
	DryRun      bool
	AssumeYes   bool
}

// Result reports the deletion plan and the batch outcome of one run.
type Result struct {
	Plan          shared.Plan
	Summary       shared.ExecutionSummary
	SkippedByRule int
}

// Service deletes an explicit list of local branches under policy protection.
type Service struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
	prompter   shared.ConfirmationPrompter
}

// NewService constructs a deletion service from the provided dependencies.
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

// Delete removes the named branches. Protected branches and the current branch
// are dropped from the plan regardless of force; force only skips the
// fully-merged check on the branches that remain.
func (service *Service) Delete(executionContext context.Context, options Options) (Result, error) {
	insideRepository, repositoryCheckError := service.repository.IsRepository(executionContext)
	if repositoryCheckError != nil {
		return Result{}, fmt.Errorf(repositoryCheckErrorTemplateConstant, repositoryCheckError)
	}
	if !insideRepository {
		return Result{}, ErrNotARepository
	}

	deletionPlan, skippedByRule := service.planDeletions(executionContext, options)

	result := Result{Plan: deletionPlan, SkippedByRule: skippedByRule}
	if deletionPlan.IsEmpty() || options.DryRun {
		return result, nil
	}

	if !options.AssumeYes {
		confirmation, confirmationError := service.prompter.Confirm(buildConfirmationPrompt(deletionPlan))
		if confirmationError != nil {
			return result, confirmationError
		}
		if !confirmation.Confirmed {
			return result, ErrDeletionDeclined
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

func (service *Service) planDeletions(executionContext context.Context, options Options) (shared.Plan, int) {
	currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
	if currentBranchError != nil {
		service.logger.Error(currentBranchFailedLogMessageConstant, zap.Error(currentBranchError))
		currentBranch = ""
	}
	policy := shared.NewBranchPolicy(shared.DefaultProtectedBranches, nil, currentBranch)

	deletionPlan := shared.Plan{}
	skippedByRule := 0
	for _, requestedBranch := range options.BranchNames {
		trimmedBranch := strings.TrimSpace(requestedBranch)
		if policy.ShouldSkip(trimmedBranch) {
			skippedByRule++
			service.logger.Warn(
				protectedBranchSkippedLogMessage,
				zap.String(logFieldBranchNameConstant, trimmedBranch),
			)
			continue
		}

		branchExists, existenceError := service.repository.BranchExists(executionContext, trimmedBranch)
		if existenceError != nil {
			skippedByRule++
			service.logger.Warn(
				existenceCheckFailedLogMessage,
				zap.String(logFieldBranchNameConstant, trimmedBranch),
				zap.Error(existenceError),
			)
			continue
		}
		if !branchExists {
			skippedByRule++
			service.logger.Warn(
				missingBranchSkippedLogMessage,
				zap.String(logFieldBranchNameConstant, trimmedBranch),
			)
			continue
		}

		deletionPlan.Operations = append(deletionPlan.Operations, shared.PlannedOperation{
			BranchName: trimmedBranch,
			Action:     shared.PlanActionDelete,
			Force:      options.ForceDelete,
		})
	}

	return deletionPlan, skippedByRule
}

func buildConfirmationPrompt(deletionPlan shared.Plan) string {
	branchNames := make([]string, 0, len(deletionPlan.Operations))
	for _, plannedOperation := range deletionPlan.Operations {
		branchNames = append(branchNames, plannedOperation.BranchName)
	}
	return fmt.Sprintf(confirmationPromptTemplateConstant, len(branchNames), strings.Join(branchNames, promptBranchSeparatorConstant))
}
