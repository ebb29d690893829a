// Package commit implements the commit engine (spec C7): the single
// atomic operation that turns a streaming NDJSON record sequence into a
// new commit, reconciling C4 (versioning) and C3 (metadata counters,
// StagingRecord closure) in one transaction.
package commit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/marmos91/hubd/internal/telemetry"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/transfer"
	"github.com/marmos91/hubd/pkg/versioning"
)

var (
	ErrMalformedPayload = errors.New("commit: malformed payload")
	ErrInlineTooLarge   = errors.New("commit: inline file exceeds effective threshold")
	ErrObjectNotReady   = errors.New("commit: referenced object has not finished uploading")
)

// Result is the response to a successful commit (spec §4.C7 step 6).
type Result struct {
	CommitID string
	ParentID string
	Summary  string
}

// Engine drives one atomic commit from a streaming record source into the
// versioning engine and the metadata store, per spec §4.C7's numbered
// algorithm. The compensation strategy chosen for step 4/5 is "refuse to
// serve until reconciliation": the C4 commit and every C3 side effect
// (quota reservation, LFS ref-count updates, StagingRecord closure) are
// combined into one metadata.MetadataStore.WithTransaction block, so a
// failure anywhere in that block leaves the branch ref unchanged rather
// than requiring a compensating follow-up commit.
type Engine struct {
	store      metadata.MetadataStore
	versioning *versioning.Engine
	verifier   *transfer.Verifier
	quota      *authz.QuotaGate
}

func NewEngine(store metadata.MetadataStore, v *versioning.Engine, verifier *transfer.Verifier, quota *authz.QuotaGate) *Engine {
	return &Engine{store: store, versioning: v, verifier: verifier, quota: quota}
}

// Apply authorizes the write (step 1), streams r one NDJSON record at a
// time via json.Decoder.Decode — never io.ReadAll, so the whole request is
// never materialized in memory (spec §9's streaming discipline) — applies
// each record to a CommitBuilder (step 2), and finalizes everything in one
// transaction (steps 3-5).
func (e *Engine) Apply(ctx context.Context, repoID, namespaceID, branch string, decision authz.Decision, author string, r io.Reader) (*Result, error) {
	ctx, span := telemetry.StartCommitSpan(ctx, repoID, branch, author)
	defer span.End()

	if err := authz.CanWrite(decision); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	cfg, err := e.store.GetLFSConfig(ctx, repoID)
	if err != nil && !metadata.IsNotFound(err) {
		return nil, err
	}
	threshold := int64(transfer.DefaultThresholdBytes)
	var suffixRules []string
	if cfg != nil {
		if cfg.ThresholdBytes > 0 {
			threshold = cfg.ThresholdBytes
		}
		suffixRules = cfg.SuffixRules
	}

	builder, err := e.versioning.NewCommitBuilder(ctx, repoID, branch)
	if err != nil {
		return nil, err
	}
	parent := builder.ParentCommitID()

	var (
		header      *HeaderRecord
		sizeDelta   int64
		objectDelta int64
		lfsDelta    = map[string]int{}
		lfsSizes    = map[string]int64{}
		stagedOIDs  = map[string]struct{}{}
	)

	decrementIfLFS := func(prior *metadata.FileEntry) {
		if prior != nil && prior.Kind == metadata.FileLFS {
			lfsDelta[prior.OID]--
		}
	}

	dec := json.NewDecoder(r)
	for {
		var wr wireRecord
		if err := dec.Decode(&wr); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}

		switch wr.Type {
		case recordHeader:
			if header != nil {
				return nil, fmt.Errorf("%w: duplicate header record", ErrMalformedPayload)
			}
			header = &HeaderRecord{Summary: wr.Summary, Description: wr.Description}

		case recordFile:
			content, err := base64.StdEncoding.DecodeString(wr.ContentBase64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
			if int64(len(content)) >= threshold || matchesSuffixRule(wr.Path, suffixRules) {
				return nil, ErrInlineTooLarge
			}
			prior, hadPrior := builder.Peek(wr.Path)
			decrementIfLFS(prior)
			if hadPrior {
				sizeDelta -= prior.Size
			} else {
				objectDelta++
			}
			sizeDelta += int64(len(content))
			builder.UploadInline(wr.Path, content)

		case recordLFSFile:
			ready, err := e.verifier.IsObjectReady(ctx, repoID, wr.OID)
			if err != nil {
				return nil, err
			}
			if !ready {
				return nil, ErrObjectNotReady
			}
			prior, hadPrior := builder.Peek(wr.Path)
			decrementIfLFS(prior)
			if hadPrior {
				sizeDelta -= prior.Size
			} else {
				objectDelta++
			}
			sizeDelta += wr.Size
			builder.LinkExternal(wr.Path, blobstore.KeyForOID(wr.OID), wr.OID, wr.Size)
			lfsDelta[wr.OID]++
			lfsSizes[wr.OID] = wr.Size
			stagedOIDs[wr.OID] = struct{}{}

		case recordDeleted:
			if prior, ok := builder.Peek(wr.Path); ok {
				decrementIfLFS(prior)
				sizeDelta -= prior.Size
				objectDelta--
			}
			builder.Delete(wr.Path)

		case recordCopy:
			priorAtTo, hadPrior := builder.Peek(wr.ToPath)
			decrementIfLFS(priorAtTo)
			if err := builder.Copy(ctx, wr.FromPath, wr.FromRevision, wr.ToPath); err != nil {
				return nil, err
			}
			copied, _ := builder.Peek(wr.ToPath)
			if hadPrior {
				sizeDelta -= priorAtTo.Size
			} else {
				objectDelta++
			}
			if copied != nil {
				sizeDelta += copied.Size
				if copied.Kind == metadata.FileLFS {
					lfsDelta[copied.OID]++
					lfsSizes[copied.OID] = copied.Size
					stagedOIDs[copied.OID] = struct{}{}
				}
			}

		default:
			return nil, fmt.Errorf("%w: unknown record type %q", ErrMalformedPayload, wr.Type)
		}
	}

	if header == nil {
		return nil, fmt.Errorf("%w: missing header record", ErrMalformedPayload)
	}

	commitRow, files := builder.Prepare(header.Summary, header.Description, author)
	rev := builder.RevisionUpdate(commitRow)

	err = e.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.quota.Reserve(ctx, namespaceID, sizeDelta, objectDelta); err != nil {
			return err
		}
		if err := e.store.CreateCommit(ctx, commitRow, files); err != nil {
			return err
		}
		if err := e.store.UpsertRevision(ctx, rev, parent); err != nil {
			// A concurrent commit on the same branch loses the ref CAS with
			// metadata.ErrConcurrentUpdate; the commit wire protocol names
			// this race stale_revision (spec §4.C7 step 4, scenario S3), so
			// translate it here rather than let it surface as the generic
			// concurrent_update kind.
			if metadata.IsConcurrentUpdate(err) {
				return metadata.NewStaleRevisionError("revision", branch)
			}
			return err
		}
		for oid, delta := range lfsDelta {
			if delta == 0 {
				continue
			}
			if delta > 0 {
				if err := e.store.UpsertLFSPointer(ctx, &metadata.LFSPointer{
					OID: oid, RepositoryID: repoID, Size: lfsSizes[oid], UploadedAt: time.Now().UTC(),
				}); err != nil {
					return err
				}
			}
			if err := e.store.IncrementLFSRefCount(ctx, repoID, oid, delta); err != nil {
				return err
			}
		}
		for oid := range stagedOIDs {
			if err := e.store.UpdateStagingStatus(ctx, repoID, oid, metadata.StagingCommitted); err != nil && !metadata.IsNotFound(err) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(telemetry.Commit(commitRow.ID))
	return &Result{CommitID: commitRow.ID, ParentID: parent, Summary: header.Summary}, nil
}

func matchesSuffixRule(path string, rules []string) bool {
	base := filepath.Base(path)
	for _, rule := range rules {
		if ok, err := filepath.Match(rule, base); err == nil && ok {
			return true
		}
	}
	return false
}
