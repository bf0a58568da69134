package shared

import "strings"

// DefaultProtectedBranches lists the branch names protected when no configuration overrides them.
var DefaultProtectedBranches = []string{"main", "master", "develop"}

// BranchPolicy declares which branches must never appear in a mutation plan.
type BranchPolicy struct {
	protectedBranches map[string]struct{}
	ignoredBranches   map[string]struct{}
	currentBranch     string
}

// NewBranchPolicy builds a policy from the protected set, ignore set, and current branch.
func NewBranchPolicy(protectedBranches []string, ignoredBranches []string, currentBranch string) BranchPolicy {
	return BranchPolicy{
		protectedBranches: buildBranchSet(protectedBranches),
		ignoredBranches:   buildBranchSet(ignoredBranches),
		currentBranch:     strings.TrimSpace(currentBranch),
	}
}

// ShouldSkip reports whether the branch must be excluded from any plan.
//
// The protection holds regardless of force flags; force only relaxes the
// merged check during deletion, never the policy check.
func (policy BranchPolicy) ShouldSkip(branchName string) bool {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return true
	}
	if len(policy.currentBranch) > 0 && trimmedBranchName == policy.currentBranch {
		return true
	}
	if _, ignored := policy.ignoredBranches[trimmedBranchName]; ignored {
		return true
	}
	_, protected := policy.protectedBranches[trimmedBranchName]
	return protected
}

// CurrentBranch exposes the branch the policy treats as checked out.
func (policy BranchPolicy) CurrentBranch() string {
	return policy.currentBranch
}

func buildBranchSet(branchNames []string) map[string]struct{} {
	branchSet := make(map[string]struct{}, len(branchNames))
	for _, branchName := range branchNames {
		trimmedBranchName := strings.TrimSpace(branchName)
		if len(trimmedBranchName) == 0 {
			continue
		}
		branchSet[trimmedBranchName] = struct{}{}
	}
	return branchSet
}
