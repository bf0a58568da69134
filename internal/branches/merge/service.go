package merge

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
	repositoryMissingMessageConstant       = "repository port not configured"
	notARepositoryMessageConstant          = "not inside a git repository"
	sourceRequiredMessageConstant          = "source branch name is required"
	sourceMissingMessageTemplateConstant   = "source branch %q does not exist"
	unpushedCommitsMessageTemplateConstant = "source branch %q has unpushed commits"
	worktreeDirtyMessageConstant           = "worktree has uncommitted changes"
	mergeDeclinedMessageConstant           = "branch merge declined"
	repositoryCheckErrorTemplateConstant   = "failed to verify repository: %w"
	sourceCheckErrorTemplateConstant       = "failed to verify source branch: %w"
	localBranchesErrorTemplateConstant     = "failed to enumerate local branches: %w"
	unpushedCheckFailedLogMessageConstant  = "unpushed-commit check failed; treating source as unpushed"
	dirtyCheckFailedLogMessageConstant     = "worktree state check failed; treating worktree as dirty"
	currentBranchFailedLogMessageConstant  = "could not determine current branch; proceeding without current-branch protection"
	explicitTargetSkippedLogMessage        = "requested merge target skipped by policy"
	mergePlannedLogMessageConstant         = "merge target scheduled"
	confirmationPromptTemplateConstant     = "Merge %s into %d branch(es)? [%s]"
	promptBranchSeparatorConstant          = ", "
	logFieldSourceBranchConstant           = "source"
	logFieldTargetBranchConstant           = "target"
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrNotARepository indicates the working directory is not inside a git work tree.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrSourceBranchRequired indicates no source branch was supplied.
var ErrSourceBranchRequired = errors.New(sourceRequiredMessageConstant)

// ErrWorktreeDirty indicates uncommitted changes block the merge run.
var ErrWorktreeDirty = errors.New(worktreeDirtyMessageConstant)

// ErrMergeDeclined indicates the user rejected the merge plan at the confirmation point.
var ErrMergeDeclined = errors.New(mergeDeclinedMessageConstant)

// Dependencies enumerates the collaborators required for merge fan-out.
type Dependencies struct {
	Repository shared.RepositoryPort
	Logger     *zap.Logger
	Prompter   shared.ConfirmationPrompter
}

// Options configures one merge fan-out run.
type Options struct {
	SourceBranch     string
	TargetBranches   []string
	ExcludedBranches []string
	FastForwardOnly  bool
	DryRun           bool
	AssumeYes        bool
}

// Result reports the merge plan and the batch outcome of one run.
type Result struct {
	Plan    shared.Plan
	Summary shared.ExecutionSummary
}

// Service propagates one source branch into many target branches.
type Service struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
	prompter   shared.ConfirmationPrompter
}

// NewService constructs a merge service from the provided dependencies.
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

// Merge checks the run preconditions, resolves the target list, and merges the
// source branch into every target. Preconditions are checked before any
// mutation; a single failing target does not stop the remaining targets.
func (service *Service) Merge(executionContext context.Context, options Options) (Result, error) {
	sourceBranch := strings.TrimSpace(options.SourceBranch)
	if len(sourceBranch) == 0 {
		return Result{}, ErrSourceBranchRequired
	}

	insideRepository, repositoryCheckError := service.repository.IsRepository(executionContext)
	if repositoryCheckError != nil {
		return Result{}, fmt.Errorf(repositoryCheckErrorTemplateConstant, repositoryCheckError)
	}
	if !insideRepository {
		return Result{}, ErrNotARepository
	}

	if preconditionError := service.checkSourcePreconditions(executionContext, sourceBranch); preconditionError != nil {
		return Result{}, preconditionError
	}

	mergePlan, planError := service.planTargets(executionContext, sourceBranch, options)
	if planError != nil {
		return Result{}, planError
	}

	result := Result{Plan: mergePlan}
	if mergePlan.IsEmpty() || options.DryRun {
		return result, nil
	}

	if !options.AssumeYes {
		confirmation, confirmationError := service.prompter.Confirm(buildConfirmationPrompt(sourceBranch, mergePlan))
		if confirmationError != nil {
			return result, confirmationError
		}
		if !confirmation.Confirmed {
			return result, ErrMergeDeclined
		}
	}

	batchExecutor, executorError := batch.NewExecutor(service.repository, service.logger)
	if executorError != nil {
		return result, executorError
	}

	summary, runError := batchExecutor.Run(executionContext, mergePlan, func(operationContext context.Context, operation shared.PlannedOperation) error {
		return service.repository.MergeInto(operationContext, operation.BranchName, sourceBranch, options.FastForwardOnly)
	})
	if runError != nil {
		return result, runError
	}

	result.Summary = summary
	return result, nil
}

// checkSourcePreconditions rejects the run before any mutation when the source
// branch is missing, carries unpushed commits, or the worktree is dirty. Query
// failures resolve toward refusal.
func (service *Service) checkSourcePreconditions(executionContext context.Context, sourceBranch string) error {
	sourceExists, existenceError := service.repository.BranchExists(executionContext, sourceBranch)
	if existenceError != nil {
		return fmt.Errorf(sourceCheckErrorTemplateConstant, existenceError)
	}
	if !sourceExists {
		return fmt.Errorf(sourceMissingMessageTemplateConstant, sourceBranch)
	}

	hasUnpushedCommits, unpushedCheckError := service.repository.HasUnpushedCommits(executionContext, sourceBranch)
	if unpushedCheckError != nil {
		service.logger.Warn(unpushedCheckFailedLogMessageConstant, zap.Error(unpushedCheckError))
		hasUnpushedCommits = true
	}
	if hasUnpushedCommits {
		return fmt.Errorf(unpushedCommitsMessageTemplateConstant, sourceBranch)
	}

	worktreeDirty, dirtyCheckError := service.repository.IsWorktreeDirty(executionContext)
	if dirtyCheckError != nil {
		service.logger.Warn(dirtyCheckFailedLogMessageConstant, zap.Error(dirtyCheckError))
		worktreeDirty = true
	}
	if worktreeDirty {
		return ErrWorktreeDirty
	}

	return nil
}

// planTargets resolves the target branch list. Explicit targets are honored
// but still pass the policy filter; an empty target list expands to every
// local branch except the source, the excludes, and the policy set.
func (service *Service) planTargets(executionContext context.Context, sourceBranch string, options Options) (shared.Plan, error) {
	currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
	if currentBranchError != nil {
		service.logger.Error(currentBranchFailedLogMessageConstant, zap.Error(currentBranchError))
		currentBranch = ""
	}

	ignoredBranches := append([]string{sourceBranch}, options.ExcludedBranches...)
	policy := shared.NewBranchPolicy(shared.DefaultProtectedBranches, ignoredBranches, currentBranch)

	candidateBranches := options.TargetBranches
	explicitTargets := len(candidateBranches) > 0
	if !explicitTargets {
		localBranches, localBranchesError := service.repository.LocalBranches(executionContext)
		if localBranchesError != nil {
			return shared.Plan{}, fmt.Errorf(localBranchesErrorTemplateConstant, localBranchesError)
		}
		candidateBranches = localBranches
	}

	mergePlan := shared.Plan{}
	for _, candidateBranch := range candidateBranches {
		if policy.ShouldSkip(candidateBranch) {
			if explicitTargets {
				service.logger.Warn(
					explicitTargetSkippedLogMessage,
					zap.String(logFieldTargetBranchConstant, candidateBranch),
				)
			}
			continue
		}

		service.logger.Debug(
			mergePlannedLogMessageConstant,
			zap.String(logFieldSourceBranchConstant, sourceBranch),
			zap.String(logFieldTargetBranchConstant, candidateBranch),
		)
		mergePlan.Operations = append(mergePlan.Operations, shared.PlannedOperation{
			BranchName: candidateBranch,
			Action:     shared.PlanActionMerge,
		})
	}

	return mergePlan, nil
}

func buildConfirmationPrompt(sourceBranch string, mergePlan shared.Plan) string {
	targetNames := make([]string, 0, len(mergePlan.Operations))
	for _, plannedOperation := range mergePlan.Operations {
		targetNames = append(targetNames, plannedOperation.BranchName)
	}
	return fmt.Sprintf(confirmationPromptTemplateConstant, sourceBranch, len(targetNames), strings.Join(targetNames, promptBranchSeparatorConstant))
}
