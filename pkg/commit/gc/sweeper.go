// Package gc implements the LFS garbage collector (spec §4.C7 "LFS GC
// policy"): a background sweep that reclaims content-addressed blobs no
// branch or tag tip (nor the retained recent history of the default
// branch) still reaches. Modeled on the teacher's deletion-queue /
// background-worker pattern in
// pkg/store/content/s3/s3_delete.go:deletionWorker — a ticker-driven
// goroutine that runs until stopped, rather than that worker's
// batch-queue-triggered-by-callers shape, since GC here is a periodic
// scan rather than a buffer draining caller-issued deletes.
package gc

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/hubd/internal/logger"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/versioning"
)

const (
	defaultInterval     = 10 * time.Minute
	defaultKeepVersions = 5
	defaultBatchSize    = 100
)

// Sweeper periodically reclaims LFS objects that have fallen out of every
// repository's reserved ref set.
type Sweeper struct {
	store        metadata.MetadataStore
	versioning   *versioning.Engine
	blobs        blobstore.Store
	interval     time.Duration
	keepVersions int
	batchSize    int

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// Option configures a Sweeper at construction time.
type Option func(*Sweeper)

func WithInterval(d time.Duration) Option       { return func(s *Sweeper) { s.interval = d } }
func WithKeepVersions(n int) Option             { return func(s *Sweeper) { s.keepVersions = n } }
func WithBatchSize(n int) Option                { return func(s *Sweeper) { s.batchSize = n } }

func NewSweeper(store metadata.MetadataStore, v *versioning.Engine, blobs blobstore.Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:        store,
		versioning:   v,
		blobs:        blobs,
		interval:     defaultInterval,
		keepVersions: defaultKeepVersions,
		batchSize:    defaultBatchSize,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the sweep loop in a background goroutine until Stop is
// called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Stop signals the loop to exit and blocks until it has.
func (s *Sweeper) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("LFS GC sweeper started", "interval", s.interval.String(), "keep_versions", s.keepVersions)

	for {
		select {
		case <-ticker.C:
			s.sweepAll(ctx)
		case <-s.stopCh:
			logger.Info("LFS GC sweeper stopping")
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweepAll walks every namespace's repositories and runs one sweep pass
// over each. Errors for one repository are logged and do not abort the
// sweep of the rest.
func (s *Sweeper) sweepAll(ctx context.Context) {
	namespaces, err := s.store.ListNamespaces(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "gc: list namespaces failed", logger.Err(err))
		return
	}
	for _, ns := range namespaces {
		repos, err := s.store.ListRepositories(ctx, ns.Slug)
		if err != nil {
			logger.ErrorCtx(ctx, "gc: list repositories failed", logger.Namespace(ns.Slug), logger.Err(err))
			continue
		}
		for _, repo := range repos {
			if err := s.SweepRepository(ctx, repo.ID); err != nil {
				logger.ErrorCtx(ctx, "gc: sweep repository failed", logger.Repository(repo.Name), logger.Err(err))
			}
		}
	}
}

// SweepRepository reclaims repoID's unreferenced LFS blobs. An object with
// ReferenceCount == 0 is still double-checked against every reserved ref
// (every branch/tag tip, plus the last keepVersions commits of the default
// branch) before deletion, satisfying the "MUST refuse to delete any blob
// still reachable from a reserved ref" invariant even if the incremental
// ref-count maintained by the commit engine ever drifts.
func (s *Sweeper) SweepRepository(ctx context.Context, repoID string) error {
	candidates, err := s.store.ListUnreferenced(ctx, repoID, s.batchSize)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	reserved, err := s.reservedOIDs(ctx, repoID)
	if err != nil {
		return err
	}

	for _, ptr := range candidates {
		if reserved[ptr.OID] {
			continue
		}
		key := blobstore.KeyForOID(ptr.OID)
		if err := s.blobs.Delete(ctx, key); err != nil {
			logger.ErrorCtx(ctx, "gc: blob delete failed", logger.OID(ptr.OID), logger.Err(err))
			continue
		}
		if err := s.store.DeleteLFSPointer(ctx, repoID, ptr.OID); err != nil {
			return err
		}
		logger.InfoCtx(ctx, "gc: reclaimed LFS object", logger.OID(ptr.OID), logger.Size(ptr.Size))
	}
	return nil
}

// reservedOIDs collects every LFS oid reachable from a reserved ref: every
// branch/tag tip, plus the last keepVersions commits of the default
// branch ("main").
func (s *Sweeper) reservedOIDs(ctx context.Context, repoID string) (map[string]bool, error) {
	reserved := map[string]bool{}

	for _, kind := range []metadata.RevisionKind{metadata.RevisionBranch, metadata.RevisionTag} {
		refs, err := s.versioning.ListRefs(ctx, repoID, kind)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if err := s.collectTreeOIDs(ctx, repoID, ref.CommitID, reserved); err != nil {
				return nil, err
			}
		}
	}

	history, err := s.versioning.Log(ctx, repoID, "main", s.keepVersions, "")
	if err != nil && !metadata.IsNotFound(err) {
		return nil, err
	}
	for _, c := range history {
		if err := s.collectTreeOIDs(ctx, repoID, c.ID, reserved); err != nil {
			return nil, err
		}
	}

	return reserved, nil
}

// collectTreeOIDs resolves commitID's materialized tree (ResolveRevisionName
// accepts a bare commit id as a degenerate prefix match of itself) and
// records every external entry's oid into into.
func (s *Sweeper) collectTreeOIDs(ctx context.Context, repoID, commitID string, into map[string]bool) error {
	entries, err := s.versioning.ListTree(ctx, repoID, commitID, "", true)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Kind == metadata.FileLFS {
			into[e.OID] = true
		}
	}
	return nil
}
