package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/hubd/pkg/api/httperr"
	apimw "github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/metadata"
)

// repoNamePattern mirrors the wire-compatible hub's permissive repository
// naming: letters, digits, dot, dash, underscore; no leading/trailing dot.
var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9_-])?$`)

func validRepoName(name string) bool {
	return len(name) > 0 && len(name) <= 255 && repoNamePattern.MatchString(name)
}

// ReposHandler implements POST /api/repos/create and DELETE /api/repos/delete.
type ReposHandler struct {
	deps *Dependencies
}

func NewReposHandler(deps *Dependencies) *ReposHandler {
	return &ReposHandler{deps: deps}
}

type createRepoRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Kind      string `json:"type"` // "model" | "dataset" | "space"
	Private   bool   `json:"private"`
}

type createRepoResponse struct {
	URL string `json:"url"`
}

// Create handles POST /api/repos/create. Any principal who owns the target
// namespace, belongs to it (member or admin), or holds the hub-wide admin
// role may create a repository there — creation has no existing creator to
// check against, unlike a write to an existing repo (spec §4.C2's matrix
// only governs the latter), so membership alone is sufficient here.
func (h *ReposHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	if principal == nil {
		httperr.Write(w, httperr.Unauthenticated)
		return
	}

	var req createRepoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validRepoName(req.Name) {
		httperr.Write(w, httperr.InvalidName)
		return
	}
	kind, ok := repositoryKindFromPath(req.Kind + "s")
	if !ok {
		httperr.Write(w, httperr.InvalidName)
		return
	}

	mp := apimw.AsMetadataPrincipal(principal)
	ns, err := h.deps.Store.GetNamespace(r.Context(), req.Namespace)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	ownNamespace := ns.Kind == "user" && ns.Slug == mp.Username
	member := authz.ResolveMembership(mp, ns.Slug) != authz.MembershipNone
	if !ownNamespace && !member && mp.Role != metadata.RoleAdmin {
		httperr.Write(w, httperr.Forbidden)
		return
	}

	repo := &metadata.Repository{
		ID:          uuid.NewString(),
		NamespaceID: ns.ID,
		Name:        req.Name,
		Kind:        kind,
		Private:     req.Private,
		CreatedBy:   mp.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.deps.Store.CreateRepository(r.Context(), repo); err != nil {
		httperr.HandleError(w, err)
		return
	}
	if _, err := h.deps.Versioning.CreateRoot(r.Context(), repo.ID); err != nil {
		httperr.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createRepoResponse{URL: "/" + ns.Slug + "/" + repo.Name})
}

type deleteRepoRequest struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Kind      string `json:"type"`
}

// Delete handles DELETE /api/repos/delete. Requires ActionSettings on the
// target repository per spec §4.C2's role matrix ("settings/delete").
func (h *ReposHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	if principal == nil {
		httperr.Write(w, httperr.Unauthenticated)
		return
	}

	var req deleteRepoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ns, repo, ok := loadRepository(w, r, h.deps.Store, req.Namespace, req.Name)
	if !ok {
		return
	}

	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	if err := authz.CanAdministerSettings(decision); err != nil {
		httperr.HandleError(w, err)
		return
	}

	if err := h.deps.Store.DeleteRepository(r.Context(), repo.ID); err != nil {
		httperr.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
