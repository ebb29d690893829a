// Package memory implements metadata.MetadataStore with in-process maps
// guarded by a single mutex. It exists for unit tests and local
// development; it is not durable and does not scale past one process.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/marmos91/hubd/pkg/metadata"
)

// Store is an in-memory metadata.MetadataStore. The zero value is not
// usable; construct with New.
type Store struct {
	mu sync.RWMutex

	namespaces   map[string]*metadata.Namespace // by slug
	principals   map[string]*metadata.Principal // by id
	principalsByName map[string]string          // username -> id
	tokens       map[string]*metadata.Token     // by id
	tokensByHash map[string]string              // hashed key -> id
	repositories map[string]*metadata.Repository // by id
	repoByKey    map[string]string              // "namespaceSlug/name" -> id
	commits      map[string]*metadata.Commit    // by id
	files        map[string][]*metadata.FileEntry // by commit id
	revisions    map[string]*metadata.Revision  // "repoID/name" -> revision
	lfs          map[string]*metadata.LFSPointer // "repoID/oid" -> pointer
	lfsConfigs   map[string]*metadata.LFSConfig // repoID -> config
	quotas       map[string]*metadata.QuotaPolicy // namespaceID -> policy
	staging      map[string]*metadata.StagingRecord // "repoID/oid" -> record
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		namespaces:       make(map[string]*metadata.Namespace),
		principals:       make(map[string]*metadata.Principal),
		principalsByName: make(map[string]string),
		tokens:           make(map[string]*metadata.Token),
		tokensByHash:     make(map[string]string),
		repositories:     make(map[string]*metadata.Repository),
		repoByKey:        make(map[string]string),
		commits:          make(map[string]*metadata.Commit),
		files:            make(map[string][]*metadata.FileEntry),
		revisions:        make(map[string]*metadata.Revision),
		lfs:              make(map[string]*metadata.LFSPointer),
		lfsConfigs:       make(map[string]*metadata.LFSConfig),
		quotas:           make(map[string]*metadata.QuotaPolicy),
		staging:          make(map[string]*metadata.StagingRecord),
	}
}

// WithTransaction runs fn directly: every individual store method already
// locks around its own map access, so this store has no notion of an
// isolated multi-statement transaction. It exists so callers written
// against MetadataStore (which compose several calls inside WithTransaction
// for atomicity against postgres) work unmodified against this test double.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) Close(ctx context.Context) error { return nil }

func newID(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return prefix + "_" + hex.EncodeToString(b)
}

func revisionKey(repoID, name string) string { return repoID + "/" + name }
func lfsKey(repoID, oid string) string       { return repoID + "/" + oid }
func repoKey(namespaceSlug, name string) string { return namespaceSlug + "/" + name }

// sortedKeys is a small helper used by list operations to produce
// deterministic ordering by map key. For namespaces, repositories and
// revisions that matches the ORDER BY clauses in the postgres
// implementation; principals and tokens are ordered by id here, unlike
// postgres (username, and created_at descending).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
