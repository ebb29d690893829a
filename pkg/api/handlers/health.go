package handlers

import (
	"net/http"

	"github.com/marmos91/hubd/pkg/metadata"
)

// HealthHandler implements the liveness/readiness probes. Grounded on
// _examples/marmos91-dittofs/pkg/api/handlers/health.go's Liveness/Readiness/
// Stores shape, simplified: the hub has one store dependency (the metadata
// store) rather than the teacher's per-share NFS/SMB backend set, so there is
// no per-store breakdown endpoint.
type HealthHandler struct {
	store metadata.MetadataStore
}

func NewHealthHandler(store metadata.MetadataStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness handles GET /health. Always 200 while the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /health/ready: confirms the metadata store is
// reachable by listing its namespaces.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.ListNamespaces(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
