// Package shared defines the data model common to the branch lifecycle
// services: tracking pairs, mutation plans, execution summaries, the branch
// protection policy, and the repository port every service talks through.
package shared
