package authz

import (
	"context"
	"errors"

	"github.com/marmos91/hubd/pkg/metadata"
)

var ErrQuotaWarning = errors.New("quota warning")

// QuotaGate admits or rejects pending writes against a namespace's storage
// budget. The underlying metadata.QuotaStore.ReserveQuota call is the
// authoritative, atomic check-and-reserve; QuotaGate adds the advisory
// preupload check the transfer protocol needs before any bytes move.
type QuotaGate struct {
	store metadata.QuotaStore
}

func NewQuotaGate(store metadata.QuotaStore) *QuotaGate {
	return &QuotaGate{store: store}
}

// CheckAdvisory reports whether reserving pendingBytes against namespaceID
// would currently fit, without reserving anything. Used at preupload time,
// when sizes are claimed rather than verified, so callers should treat a
// passing check as non-binding (spec's quota_warning).
func (g *QuotaGate) CheckAdvisory(ctx context.Context, namespaceID string, pendingBytes int64) error {
	policy, err := g.store.GetQuotaPolicy(ctx, namespaceID)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil // no policy configured: unlimited
		}
		return err
	}
	if policy.MaxBytes > 0 && policy.UsedBytes+pendingBytes > policy.MaxBytes {
		return ErrQuotaWarning
	}
	return nil
}

// Reserve performs the authoritative check-and-reserve at commit time. On
// success the namespace's usage counters are updated atomically; on
// rejection nothing is changed.
func (g *QuotaGate) Reserve(ctx context.Context, namespaceID string, deltaBytes, deltaObjects int64) error {
	return g.store.ReserveQuota(ctx, namespaceID, deltaBytes, deltaObjects)
}

// Release frees previously reserved quota, e.g. after a commit fails
// downstream of a successful reservation.
func (g *QuotaGate) Release(ctx context.Context, namespaceID string, bytes, objects int64) error {
	return g.store.ReserveQuota(ctx, namespaceID, -bytes, -objects)
}
