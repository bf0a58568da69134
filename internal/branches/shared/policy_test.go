package shared_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	testPolicyCurrentBranchConstant   = "main"
	testPolicyProtectedBranchConstant = "develop"
	testPolicyIgnoredBranchConstant   = "wip/spike"
	testPolicyFeatureBranchConstant   = "feature/login"
)

func TestBranchPolicyShouldSkip(testInstance *testing.T) {
	policy := shared.NewBranchPolicy(
		[]string{testPolicyProtectedBranchConstant, " "},
		[]string{testPolicyIgnoredBranchConstant},
		testPolicyCurrentBranchConstant,
	)

	testCases := []struct {
		name         string
		branchName   string
		expectedSkip bool
	}{
		{name: "current_branch", branchName: testPolicyCurrentBranchConstant, expectedSkip: true},
		{name: "protected_branch", branchName: testPolicyProtectedBranchConstant, expectedSkip: true},
		{name: "ignored_branch", branchName: testPolicyIgnoredBranchConstant, expectedSkip: true},
		{name: "regular_branch", branchName: testPolicyFeatureBranchConstant, expectedSkip: false},
		{name: "empty_branch_name", branchName: "  ", expectedSkip: true},
		{name: "whitespace_padded_protected", branchName: " develop ", expectedSkip: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedSkip, policy.ShouldSkip(testCase.branchName))
		})
	}
}

func TestBranchPolicyWithoutCurrentBranchStillProtectsSets(testInstance *testing.T) {
	policy := shared.NewBranchPolicy(shared.DefaultProtectedBranches, nil, "")

	require.True(testInstance, policy.ShouldSkip("master"))
	require.False(testInstance, policy.ShouldSkip(testPolicyFeatureBranchConstant))
	require.Empty(testInstance, policy.CurrentBranch())
}
