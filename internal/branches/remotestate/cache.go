package remotestate

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/branches/shared"
)

const (
	repositoryMissingMessageConstant  = "repository port not configured"
	remoteQueryFailedLogMessage       = "remote branch listing failed; remote snapshot marked unavailable"
	logFieldRemoteNameConstant        = "remote"
	logFieldRemoteBranchCountConstant = "branch_count"
	remoteSnapshotBuiltLogMessage     = "remote branch snapshot captured"
)

// ErrRepositoryNotConfigured indicates the snapshot builder was given no repository port.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// Snapshot holds the branch sets advertised by each queried remote at one point in time.
//
// A remote whose listing failed is recorded as unavailable rather than empty,
// so callers can distinguish "branch deleted remotely" from "remote unreachable".
type Snapshot struct {
	remoteBranchSets   map[string]map[string]struct{}
	unavailableRemotes map[string]struct{}
}

// Contains reports whether the remote advertised the branch when the snapshot was captured.
// Unavailable or unqueried remotes report false.
func (snapshot *Snapshot) Contains(remoteName string, branchName string) bool {
	branchSet, remoteQueried := snapshot.remoteBranchSets[remoteName]
	if !remoteQueried {
		return false
	}
	_, branchPresent := branchSet[branchName]
	return branchPresent
}

// Available reports whether the remote's branch listing succeeded.
func (snapshot *Snapshot) Available(remoteName string) bool {
	_, remoteAvailable := snapshot.remoteBranchSets[remoteName]
	return remoteAvailable
}

// UnavailableRemotes lists remotes whose listing failed, in sorted order.
func (snapshot *Snapshot) UnavailableRemotes() []string {
	remoteNames := make([]string, 0, len(snapshot.unavailableRemotes))
	for remoteName := range snapshot.unavailableRemotes {
		remoteNames = append(remoteNames, remoteName)
	}
	sort.Strings(remoteNames)
	return remoteNames
}

// Builder captures remote branch snapshots through the repository port.
type Builder struct {
	repository shared.RepositoryPort
	logger     *zap.Logger
}

// NewBuilder constructs a snapshot builder.
func NewBuilder(repository shared.RepositoryPort, logger *zap.Logger) (*Builder, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{repository: repository, logger: logger}, nil
}

// BuildSnapshot lists each distinct remote exactly once and assembles the results.
//
// Listings for distinct remotes run concurrently; the snapshot is fully
// assembled before the method returns, so callers never observe a partial
// cache. The query count stays proportional to distinct remotes, not to the
// number of tracked branches.
func (builder *Builder) BuildSnapshot(executionContext context.Context, remoteNames []string) *Snapshot {
	distinctRemoteNames := deduplicateRemoteNames(remoteNames)

	snapshot := &Snapshot{
		remoteBranchSets:   make(map[string]map[string]struct{}, len(distinctRemoteNames)),
		unavailableRemotes: map[string]struct{}{},
	}

	type remoteListing struct {
		remoteName   string
		branchNames  []string
		listingError error
	}

	listings := make([]remoteListing, len(distinctRemoteNames))
	var waitGroup sync.WaitGroup
	for remoteIndex, remoteName := range distinctRemoteNames {
		waitGroup.Add(1)
		go func(listingIndex int, listedRemote string) {
			defer waitGroup.Done()
			branchNames, listingError := builder.repository.RemoteBranches(executionContext, listedRemote)
			listings[listingIndex] = remoteListing{remoteName: listedRemote, branchNames: branchNames, listingError: listingError}
		}(remoteIndex, remoteName)
	}
	waitGroup.Wait()

	for _, listing := range listings {
		if listing.listingError != nil {
			builder.logger.Warn(
				remoteQueryFailedLogMessage,
				zap.String(logFieldRemoteNameConstant, listing.remoteName),
				zap.Error(listing.listingError),
			)
			snapshot.unavailableRemotes[listing.remoteName] = struct{}{}
			continue
		}

		branchSet := make(map[string]struct{}, len(listing.branchNames))
		for _, branchName := range listing.branchNames {
			branchSet[branchName] = struct{}{}
		}
		snapshot.remoteBranchSets[listing.remoteName] = branchSet

		builder.logger.Debug(
			remoteSnapshotBuiltLogMessage,
			zap.String(logFieldRemoteNameConstant, listing.remoteName),
			zap.Int(logFieldRemoteBranchCountConstant, len(branchSet)),
		)
	}

	return snapshot
}

func deduplicateRemoteNames(remoteNames []string) []string {
	seenRemotes := make(map[string]struct{}, len(remoteNames))
	distinctRemoteNames := make([]string, 0, len(remoteNames))
	for _, remoteName := range remoteNames {
		trimmedRemoteName := strings.TrimSpace(remoteName)
		if len(trimmedRemoteName) == 0 {
			continue
		}
		if _, alreadySeen := seenRemotes[trimmedRemoteName]; alreadySeen {
			continue
		}
		seenRemotes[trimmedRemoteName] = struct{}{}
		distinctRemoteNames = append(distinctRemoteNames, trimmedRemoteName)
	}
	return distinctRemoteNames
}
