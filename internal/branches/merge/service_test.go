package merge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/merge"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/testsupport"
)

const (
	testMainBranchConstant   = "main"
	testSourceBranchConstant = "hotfix"
	testTargetBranchConstant = "dev"
)

func hotfixRepository() *testsupport.FakeRepository {
	return &testsupport.FakeRepository{
		Current:  testSourceBranchConstant,
		Branches: []string{testMainBranchConstant, testTargetBranchConstant, testSourceBranchConstant},
	}
}

func newMergeService(testInstance *testing.T, repository shared.RepositoryPort, prompter shared.ConfirmationPrompter) *merge.Service {
	service, creationError := merge.NewService(merge.Dependencies{
		Repository: repository,
		Logger:     zap.NewNop(),
		Prompter:   prompter,
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestMergeResolvesImplicitTargets(testInstance *testing.T) {
	repository := hotfixRepository()
	service := newMergeService(testInstance, repository, nil)

	result, mergeError := service.Merge(context.Background(), merge.Options{
		SourceBranch:     testSourceBranchConstant,
		ExcludedBranches: []string{testMainBranchConstant},
		FastForwardOnly:  true,
		AssumeYes:        true,
	})
	require.NoError(testInstance, mergeError)

	require.Len(testInstance, result.Plan.Operations, 1)
	require.Equal(testInstance, testTargetBranchConstant, result.Plan.Operations[0].BranchName)
	require.Len(testInstance, repository.Merges, 1)
	require.Equal(testInstance, testTargetBranchConstant, repository.Merges[0].TargetBranch)
	require.Equal(testInstance, testSourceBranchConstant, repository.Merges[0].SourceBranch)
	require.True(testInstance, repository.Merges[0].FastForwardOnly)
}

func TestMergeReportsFailedTargetAndRestoresBranch(testInstance *testing.T) {
	repository := hotfixRepository()
	repository.MergeErrors = map[string]error{testTargetBranchConstant: errors.New("not a fast-forward")}
	service := newMergeService(testInstance, repository, nil)

	result, mergeError := service.Merge(context.Background(), merge.Options{
		SourceBranch:     testSourceBranchConstant,
		ExcludedBranches: []string{testMainBranchConstant},
		FastForwardOnly:  true,
		AssumeYes:        true,
	})
	require.NoError(testInstance, mergeError)

	require.Equal(testInstance, 0, result.Summary.Succeeded)
	require.Equal(testInstance, 1, result.Summary.Failed)
	require.Equal(testInstance, testTargetBranchConstant, result.Summary.Failures[0].BranchName)
	require.Equal(testInstance, testSourceBranchConstant, repository.Current)
}

func TestMergeSkipsProtectedExplicitTargets(testInstance *testing.T) {
	repository := hotfixRepository()
	service := newMergeService(testInstance, repository, nil)

	result, mergeError := service.Merge(context.Background(), merge.Options{
		SourceBranch:   testSourceBranchConstant,
		TargetBranches: []string{testMainBranchConstant, testTargetBranchConstant},
		AssumeYes:      true,
	})
	require.NoError(testInstance, mergeError)

	require.Len(testInstance, result.Plan.Operations, 1)
	require.Equal(testInstance, testTargetBranchConstant, result.Plan.Operations[0].BranchName)
	require.Len(testInstance, repository.Merges, 1)
}

func TestMergeRequiresSourceBranch(testInstance *testing.T) {
	service := newMergeService(testInstance, hotfixRepository(), nil)

	_, mergeError := service.Merge(context.Background(), merge.Options{SourceBranch: "   "})
	require.ErrorIs(testInstance, mergeError, merge.ErrSourceBranchRequired)
}

func TestMergeRejectsMissingSourceBranch(testInstance *testing.T) {
	repository := hotfixRepository()
	service := newMergeService(testInstance, repository, nil)

	_, mergeError := service.Merge(context.Background(), merge.Options{SourceBranch: "absent", AssumeYes: true})
	require.Error(testInstance, mergeError)
	require.Contains(testInstance, mergeError.Error(), "does not exist")
	require.Empty(testInstance, repository.Merges)
}

func TestMergeRejectsUnpushedSourceCommits(testInstance *testing.T) {
	testCases := []struct {
		name       string
		repository *testsupport.FakeRepository
	}{
		{
			name: "source_has_unpushed_commits",
			repository: func() *testsupport.FakeRepository {
				repository := hotfixRepository()
				repository.UnpushedBranches = map[string]bool{testSourceBranchConstant: true}
				return repository
			}(),
		},
		{
			name: "unpushed_check_fails",
			repository: func() *testsupport.FakeRepository {
				repository := hotfixRepository()
				repository.UnpushedErrors = map[string]error{testSourceBranchConstant: errors.New("rev-list failed")}
				return repository
			}(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			service := newMergeService(subtestInstance, testCase.repository, nil)

			_, mergeError := service.Merge(context.Background(), merge.Options{
				SourceBranch: testSourceBranchConstant,
				AssumeYes:    true,
			})
			require.Error(subtestInstance, mergeError)
			require.Contains(subtestInstance, mergeError.Error(), "unpushed commits")
			require.Empty(subtestInstance, testCase.repository.Merges)
		})
	}
}

func TestMergeRejectsDirtyWorktree(testInstance *testing.T) {
	testCases := []struct {
		name       string
		repository *testsupport.FakeRepository
	}{
		{
			name: "worktree_dirty",
			repository: func() *testsupport.FakeRepository {
				repository := hotfixRepository()
				repository.Dirty = true
				return repository
			}(),
		},
		{
			name: "dirty_check_fails",
			repository: func() *testsupport.FakeRepository {
				repository := hotfixRepository()
				repository.DirtyError = errors.New("status failed")
				return repository
			}(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			service := newMergeService(subtestInstance, testCase.repository, nil)

			_, mergeError := service.Merge(context.Background(), merge.Options{
				SourceBranch: testSourceBranchConstant,
				AssumeYes:    true,
			})
			require.ErrorIs(subtestInstance, mergeError, merge.ErrWorktreeDirty)
			require.Empty(subtestInstance, testCase.repository.Merges)
		})
	}
}

func TestMergeDryRunPlansWithoutMutating(testInstance *testing.T) {
	repository := hotfixRepository()
	service := newMergeService(testInstance, repository, nil)

	result, mergeError := service.Merge(context.Background(), merge.Options{
		SourceBranch: testSourceBranchConstant,
		DryRun:       true,
	})
	require.NoError(testInstance, mergeError)

	require.Len(testInstance, result.Plan.Operations, 1)
	require.Empty(testInstance, repository.Merges)
}

func TestMergeHonorsDeclinedConfirmation(testInstance *testing.T) {
	repository := hotfixRepository()
	prompter := &testsupport.RecordingPrompter{Decision: false}
	service := newMergeService(testInstance, repository, prompter)

	_, mergeError := service.Merge(context.Background(), merge.Options{SourceBranch: testSourceBranchConstant})
	require.ErrorIs(testInstance, mergeError, merge.ErrMergeDeclined)
	require.Empty(testInstance, repository.Merges)
	require.Len(testInstance, prompter.Prompts, 1)
	require.Contains(testInstance, prompter.Prompts[0], testSourceBranchConstant)
}

func TestMergeAbortsOutsideRepository(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{NotARepository: true}
	service := newMergeService(testInstance, repository, nil)

	_, mergeError := service.Merge(context.Background(), merge.Options{SourceBranch: testSourceBranchConstant, AssumeYes: true})
	require.ErrorIs(testInstance, mergeError, merge.ErrNotARepository)
}
