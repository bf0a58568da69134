package switchto_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/switchto"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/testsupport"
)

func newSwitchService(testInstance *testing.T, repository shared.RepositoryPort) *switchto.Service {
	service, creationError := switchto.NewService(switchto.Dependencies{
		Repository: repository,
		Logger:     zap.NewNop(),
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestSwitchChecksOutExistingBranch(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:  "main",
		Branches: []string{"main", "feature/a"},
	}

	service := newSwitchService(testInstance, repository)
	require.NoError(testInstance, service.Switch(context.Background(), switchto.Options{BranchName: "feature/a"}))

	require.Equal(testInstance, "feature/a", repository.Current)
	require.Len(testInstance, repository.Checkouts, 1)
	require.False(testInstance, repository.Checkouts[0].DiscardChanges)
}

func TestSwitchRefusesDirtyWorktree(testInstance *testing.T) {
	testCases := []struct {
		name       string
		dirty      bool
		dirtyError error
	}{
		{name: "worktree_dirty", dirty: true},
		{name: "dirty_check_fails", dirtyError: errors.New("status failed")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			repository := &testsupport.FakeRepository{
				Current:    "main",
				Branches:   []string{"main", "feature/a"},
				Dirty:      testCase.dirty,
				DirtyError: testCase.dirtyError,
			}

			service := newSwitchService(subtestInstance, repository)
			switchError := service.Switch(context.Background(), switchto.Options{BranchName: "feature/a"})
			require.ErrorIs(subtestInstance, switchError, switchto.ErrWorktreeDirty)
			require.Empty(subtestInstance, repository.Checkouts)
		})
	}
}

func TestSwitchDiscardModeBypassesDirtyCheck(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:  "main",
		Branches: []string{"main", "feature/a"},
		Dirty:    true,
	}

	service := newSwitchService(testInstance, repository)
	require.NoError(testInstance, service.Switch(context.Background(), switchto.Options{
		BranchName:     "feature/a",
		DiscardChanges: true,
	}))

	require.Len(testInstance, repository.Checkouts, 1)
	require.True(testInstance, repository.Checkouts[0].DiscardChanges)
}

func TestSwitchRejectsMissingBranch(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:  "main",
		Branches: []string{"main"},
	}

	service := newSwitchService(testInstance, repository)
	switchError := service.Switch(context.Background(), switchto.Options{BranchName: "absent"})
	require.Error(testInstance, switchError)
	require.Contains(testInstance, switchError.Error(), "does not exist")
}

func TestSwitchIsNoOpOnCurrentBranch(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:  "main",
		Branches: []string{"main"},
		Dirty:    true,
	}

	service := newSwitchService(testInstance, repository)
	require.NoError(testInstance, service.Switch(context.Background(), switchto.Options{BranchName: "main"}))
	require.Empty(testInstance, repository.Checkouts)
}

func TestSwitchRequiresBranchName(testInstance *testing.T) {
	service := newSwitchService(testInstance, &testsupport.FakeRepository{})
	switchError := service.Switch(context.Background(), switchto.Options{BranchName: "  "})
	require.ErrorIs(testInstance, switchError, switchto.ErrBranchNameRequired)
}
