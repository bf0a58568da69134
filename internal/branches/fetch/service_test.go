package fetch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/fetch"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
	"github.com/xuejuncheng0222/branch-keeper/internal/branches/testsupport"
)

const (
	testMainBranchConstant   = "main"
	testOriginRemoteConstant = "origin"
)

func newFetchService(testInstance *testing.T, repository shared.RepositoryPort, prompter shared.ConfirmationPrompter) *fetch.Service {
	service, creationError := fetch.NewService(fetch.Dependencies{
		Repository: repository,
		Logger:     zap.NewNop(),
		Prompter:   prompter,
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestCreateSkipsExistingAndIgnoredBranches(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		Branches:         []string{testMainBranchConstant, "a"},
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"a", "b"}},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName:      testOriginRemoteConstant,
		IgnoredBranches: []string{"b"},
		AssumeYes:       true,
	})
	require.NoError(testInstance, creationError)

	require.True(testInstance, result.Plan.IsEmpty())
	require.Equal(testInstance, 1, result.SkippedExisting)
	require.Empty(testInstance, repository.TrackingCreated)
	require.Equal(testInstance, 1, repository.RefreshCalls)
}

func TestCreateMaterializesMissingBranches(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		Branches:         []string{testMainBranchConstant},
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a", "feature/b"}},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName: testOriginRemoteConstant,
		AssumeYes:  true,
	})
	require.NoError(testInstance, creationError)

	require.Len(testInstance, result.Plan.Operations, 2)
	require.Equal(testInstance, 2, result.Summary.Succeeded)
	require.Len(testInstance, repository.TrackingCreated, 2)
	require.Equal(testInstance, testOriginRemoteConstant, repository.TrackingCreated[0].RemoteName)
}

func TestCreateForceRecreatesExistingBranches(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		Branches:         []string{testMainBranchConstant, "feature/a"},
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName:    testOriginRemoteConstant,
		ForceRecreate: true,
		AssumeYes:     true,
	})
	require.NoError(testInstance, creationError)

	require.Len(testInstance, result.Plan.Operations, 1)
	require.True(testInstance, result.Plan.Operations[0].Force)
	require.Len(testInstance, repository.Deletions, 1)
	require.Equal(testInstance, "feature/a", repository.Deletions[0].BranchName)
	require.True(testInstance, repository.Deletions[0].Force)
	require.Len(testInstance, repository.TrackingCreated, 1)
}

func TestCreateNeverTouchesProtectedOrCurrentBranches(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          "feature/current",
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {testMainBranchConstant, "develop", "feature/current", "feature/new"}},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName:    testOriginRemoteConstant,
		ForceRecreate: true,
		AssumeYes:     true,
	})
	require.NoError(testInstance, creationError)

	require.Len(testInstance, result.Plan.Operations, 1)
	require.Equal(testInstance, "feature/new", result.Plan.Operations[0].BranchName)
}

func TestCreateFailsWhenRemoteListingFails(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:            testMainBranchConstant,
		RemoteBranchErrors: map[string]error{testOriginRemoteConstant: errors.New("network unreachable")},
	}

	service := newFetchService(testInstance, repository, nil)
	_, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName: testOriginRemoteConstant,
		AssumeYes:  true,
	})
	require.Error(testInstance, creationError)
	require.Contains(testInstance, creationError.Error(), testOriginRemoteConstant)
	require.Empty(testInstance, repository.TrackingCreated)
}

func TestCreateDefaultsToOriginRemote(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{AssumeYes: true})
	require.NoError(testInstance, creationError)

	require.Len(testInstance, repository.TrackingCreated, 1)
	require.Equal(testInstance, testOriginRemoteConstant, repository.TrackingCreated[0].RemoteName)
	require.Equal(testInstance, 1, result.Summary.Succeeded)
}

func TestCreateContinuesPastFailingCreations(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a", "feature/b"}},
		CreateErrors:     map[string]error{"feature/a": errors.New("ref already locked")},
	}

	service := newFetchService(testInstance, repository, nil)
	result, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{
		RemoteName: testOriginRemoteConstant,
		AssumeYes:  true,
	})
	require.NoError(testInstance, creationError)

	require.Equal(testInstance, 1, result.Summary.Succeeded)
	require.Equal(testInstance, 1, result.Summary.Failed)
	require.Equal(testInstance, 2, result.Summary.Total())
	require.Equal(testInstance, "feature/a", result.Summary.Failures[0].BranchName)
}

func TestCreateHonorsDeclinedConfirmation(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{
		Current:          testMainBranchConstant,
		RemoteBranchSets: map[string][]string{testOriginRemoteConstant: {"feature/a"}},
	}
	prompter := &testsupport.RecordingPrompter{Decision: false}

	service := newFetchService(testInstance, repository, prompter)
	_, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{RemoteName: testOriginRemoteConstant})
	require.ErrorIs(testInstance, creationError, fetch.ErrCreationDeclined)
	require.Empty(testInstance, repository.TrackingCreated)
	require.Len(testInstance, prompter.Prompts, 1)
}

func TestCreateAbortsOutsideRepository(testInstance *testing.T) {
	repository := &testsupport.FakeRepository{NotARepository: true}
	service := newFetchService(testInstance, repository, nil)

	_, creationError := service.CreateTrackingBranches(context.Background(), fetch.Options{AssumeYes: true})
	require.ErrorIs(testInstance, creationError, fetch.ErrNotARepository)
}
