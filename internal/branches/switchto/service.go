package switchto

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	repositoryMissingMessageConstant     = "repository port not configured"
	notARepositoryMessageConstant        = "not inside a git repository"
	branchRequiredMessageConstant        = "branch name is required"
	branchMissingMessageTemplateConstant = "branch %q does not exist"
	worktreeDirtyMessageConstant         = "worktree has uncommitted changes; use --discard-changes to discard them"
	repositoryCheckErrorTemplateConstant = "failed to verify repository: %w"
	branchCheckErrorTemplateConstant     = "failed to verify branch: %w"
	dirtyCheckFailedLogMessageConstant   = "worktree state check failed; treating worktree as dirty"
	alreadyCurrentLogMessageConstant     = "branch already checked out"
	logFieldBranchNameConstant           = "branch"
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrNotARepository indicates the working directory is not inside a git work tree.
var ErrNotARepository = errors.New(notARepositoryMessageConstant)

// ErrBranchNameRequired indicates no branch name was supplied.
var ErrBranchNameRequired = errors.New(branchRequiredMessageConstant)

// ErrWorktreeDirty indicates uncommitted changes block the switch.
var ErrWorktreeDirty = errors.New(worktreeDirtyMessageConstant)

// Dependencies enumerates the collaborators required for branch switching.
type Dependencies struct {
	Repository shared.RepositoryPort
	Logger     *zap.Logger
}

// Options configures one branch switch.
type Options struct {
	BranchName     string
	DiscardChanges bool
}

// Service switches the worktree to another local branch.
type Service struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
}

// NewService constructs a switch service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repository: dependencies.Repository, logger: logger}, nil
}

// Switch checks out the named branch. A dirty worktree refuses the switch
// unless discard mode is set, in which case local modifications are discarded
// irreversibly before switching. Dirty-check failures resolve toward refusal.
func (service *Service) Switch(executionContext context.Context, options Options) error {
	branchName := strings.TrimSpace(options.BranchName)
	if len(branchName) == 0 {
		return ErrBranchNameRequired
	}

	insideRepository, repositoryCheckError := service.repository.IsRepository(executionContext)
	if repositoryCheckError != nil {
		return fmt.Errorf(repositoryCheckErrorTemplateConstant, repositoryCheckError)
	}
	if !insideRepository {
		return ErrNotARepository
	}

	branchExists, existenceError := service.repository.BranchExists(executionContext, branchName)
	if existenceError != nil {
		return fmt.Errorf(branchCheckErrorTemplateConstant, existenceError)
	}
	if !branchExists {
		return fmt.Errorf(branchMissingMessageTemplateConstant, branchName)
	}

	currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
	if currentBranchError == nil && currentBranch == branchName {
		service.logger.Debug(alreadyCurrentLogMessageConstant, zap.String(logFieldBranchNameConstant, branchName))
		return nil
	}

	if !options.DiscardChanges {
		worktreeDirty, dirtyCheckError := service.repository.IsWorktreeDirty(executionContext)
		if dirtyCheckError != nil {
			service.logger.Warn(dirtyCheckFailedLogMessageConstant, zap.Error(dirtyCheckError))
			worktreeDirty = true
		}
		if worktreeDirty {
			return ErrWorktreeDirty
		}
	}

	return service.repository.Checkout(executionContext, branchName, options.DiscardChanges)
}
