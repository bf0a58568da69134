// Package gitrepo implements the repository port over the git binary,
// translating parsed command output into the structured queries and mutations
// the branch lifecycle services consume.
package gitrepo
