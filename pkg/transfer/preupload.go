// Package transfer implements the hub's upload-side wire protocol (spec
// C6): preupload classification, the LFS batch broker, and post-upload
// verification. It never proxies bytes — every large object moves directly
// between the client and pkg/blobstore over a presigned URL, matching that
// package's own no-proxy contract.
package transfer

import (
	"context"
	"path/filepath"

	"github.com/marmos91/hubd/internal/bytesize"
	"github.com/marmos91/hubd/pkg/cache"
	"github.com/marmos91/hubd/pkg/metadata"
)

// DefaultThresholdBytes is the classifier cutoff used for a repository that
// has never called SetLFSConfig: files at or above this size are classified
// external/LFS rather than inlined into the commit payload.
const DefaultThresholdBytes = 10 * bytesize.MiB

// UploadMode is the outcome of classifying one file against a repository's
// LFS configuration (spec §4.C6.1).
type UploadMode string

const (
	ModeRegular  UploadMode = "regular"
	ModeExternal UploadMode = "external"
)

// PreuploadEntry is one candidate file a client asks to classify before it
// starts uploading.
type PreuploadEntry struct {
	Path   string
	Size   int64
	SHA256 string // optional: when set, enables the should_ignore dedup check
}

// PreuploadResult is the classifier's verdict for one entry.
type PreuploadResult struct {
	Path         string
	UploadMode   UploadMode
	ShouldIgnore bool // identical content already committed at the branch tip
}

// IgnoreCache is the optional lookup-cache dependency Classify uses to skip
// a metadata-store round trip when it has already scored the same
// repo/commit/path/hash combination. pkg/cache.Cache satisfies this in
// production; tests and callers that don't want caching pass nil.
type IgnoreCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Classifier implements the preupload endpoint.
type Classifier struct {
	store   metadata.MetadataStore
	ignores IgnoreCache
}

func NewClassifier(store metadata.MetadataStore) *Classifier {
	return &Classifier{store: store}
}

// WithIgnoreCache attaches an IgnoreCache to the classifier, letting repeat
// preupload calls for the same content (a client retrying after a network
// blip, or re-running `hub upload` against an unchanged tree) skip the
// should_ignore metadata lookup entirely.
func (c *Classifier) WithIgnoreCache(ic IgnoreCache) *Classifier {
	c.ignores = ic
	return c
}

// Classify resolves branch's tip once and scores every entry against the
// repository's effective threshold and suffix rules. A missing LFSConfig
// falls back to DefaultThresholdBytes with no suffix rules; a missing
// branch (a brand-new repository) disables the should_ignore check rather
// than failing the whole batch.
func (c *Classifier) Classify(ctx context.Context, repoID, branch string, entries []PreuploadEntry) ([]PreuploadResult, error) {
	cfg, err := c.store.GetLFSConfig(ctx, repoID)
	if err != nil && !metadata.IsNotFound(err) {
		return nil, err
	}

	threshold := int64(DefaultThresholdBytes)
	var suffixRules []string
	if cfg != nil {
		if cfg.ThresholdBytes > 0 {
			threshold = cfg.ThresholdBytes
		}
		suffixRules = cfg.SuffixRules
	}

	commitID, err := c.store.ResolveRevisionName(ctx, repoID, branch)
	if err != nil && !metadata.IsNotFound(err) {
		return nil, err
	}

	out := make([]PreuploadResult, len(entries))
	for i, e := range entries {
		res := PreuploadResult{Path: e.Path, UploadMode: ModeRegular}
		if e.Size >= threshold || matchesSuffixRule(e.Path, suffixRules) {
			res.UploadMode = ModeExternal
		}

		if e.SHA256 != "" && commitID != "" {
			key := ""
			if c.ignores != nil {
				key = cache.IgnoreKey(commitID, e.Path, e.SHA256, e.Size)
				var cached bool
				if hit, err := c.ignores.Get(ctx, key, &cached); err == nil && hit {
					res.ShouldIgnore = cached
					out[i] = res
					continue
				}
			}

			existing, err := c.store.GetFileEntry(ctx, commitID, e.Path)
			switch {
			case err == nil:
				res.ShouldIgnore = existing.OID == e.SHA256 && existing.Size == e.Size
			case !metadata.IsNotFound(err):
				return nil, err
			}

			if c.ignores != nil {
				_ = c.ignores.Set(ctx, key, res.ShouldIgnore)
			}
		}
		out[i] = res
	}
	return out, nil
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
