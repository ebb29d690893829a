package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/hubd/pkg/api/httperr"
	apimw "github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/metadata"
)

// ResolveHandler implements the read path (spec C8): resolve, tree, and
// revision lookups.
type ResolveHandler struct {
	deps *Dependencies
}

func NewResolveHandler(deps *Dependencies) *ResolveHandler {
	return &ResolveHandler{deps: deps}
}

func (h *ResolveHandler) authorizeRead(w http.ResponseWriter, r *http.Request) (*metadata.Namespace, *metadata.Repository, bool) {
	principal := apimw.GetPrincipal(r.Context())
	ns, repo, ok := loadRepository(w, r, h.deps.Store, chi.URLParam(r, "namespace"), chi.URLParam(r, "name"))
	if !ok {
		return nil, nil, false
	}
	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	if err := authz.CanRead(decision); err != nil {
		httperr.HandleError(w, err)
		return nil, nil, false
	}
	return ns, repo, true
}

// Head handles HEAD /{namespace}/{name}/resolve/{revision}/{path}.
func (h *ResolveHandler) Head(w http.ResponseWriter, r *http.Request) {
	_, repo, ok := h.authorizeRead(w, r)
	if !ok {
		return
	}

	res, err := h.deps.Resolver.Head(r.Context(), repo.ID, chi.URLParam(r, "revision"), chi.URLParam(r, "*"))
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	w.Header().Set("X-Repo-Commit", res.CommitID)
	w.Header().Set("X-Linked-Etag", res.ETag)
	w.Header().Set("X-Linked-Size", strconv.FormatInt(res.Size, 10))
	if res.Location != "" {
		w.Header().Set("Location", res.Location)
	}
	w.WriteHeader(http.StatusOK)
}

// Get handles GET /{namespace}/{name}/resolve/{revision}/{path}.
func (h *ResolveHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, repo, ok := h.authorizeRead(w, r)
	if !ok {
		return
	}

	res, err := h.deps.Resolver.Get(r.Context(), repo.ID, chi.URLParam(r, "revision"), chi.URLParam(r, "*"))
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	w.Header().Set("X-Repo-Commit", res.CommitID)
	if !res.Inline {
		w.Header().Set("Location", res.RedirectURL)
		w.WriteHeader(http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Content)
}

type treeResponse struct {
	Entries    []treeEntryWire `json:"entries"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

type treeEntryWire struct {
	Path       string             `json:"path"`
	Type       string             `json:"type"`
	Size       int64              `json:"size"`
	OID        string             `json:"oid"`
	LFSPointer *lfsPointerWire    `json:"lfs,omitempty"`
	LastCommit *commitSummaryWire `json:"lastCommit,omitempty"`
}

type lfsPointerWire struct {
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

type commitSummaryWire struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Author  string `json:"author"`
}

// Tree handles GET /api/{kind}s/{namespace}/{name}/tree/{revision}/{path}.
func (h *ResolveHandler) Tree(w http.ResponseWriter, r *http.Request) {
	_, repo, ok := h.authorizeRead(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	recursive := q.Get("recursive") == "true"
	expand := q.Get("expand") == "true"
	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	page, err := h.deps.Resolver.Tree(r.Context(), repo.ID, chi.URLParam(r, "revision"), chi.URLParam(r, "*"), recursive, expand, q.Get("cursor"), limit)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	resp := treeResponse{NextCursor: page.NextCursor, Entries: make([]treeEntryWire, len(page.Entries))}
	for i, e := range page.Entries {
		kind := "file"
		if e.Kind == metadata.FileLFS {
			kind = "lfs"
		}
		wire := treeEntryWire{Path: e.Path, Type: kind, Size: e.Size, OID: e.OID}
		if e.LFSPointer != nil {
			wire.LFSPointer = &lfsPointerWire{OID: e.LFSPointer.OID, Size: e.LFSPointer.Size}
		}
		if e.LastCommit != nil {
			wire.LastCommit = &commitSummaryWire{ID: e.LastCommit.ID, Summary: e.LastCommit.Summary, Author: e.LastCommit.Author}
		}
		resp.Entries[i] = wire
	}
	writeJSON(w, http.StatusOK, resp)
}

type revisionResponse struct {
	CommitID string `json:"commitId"`
	Revision string `json:"revision"`
}

// Revision handles GET /api/{kind}s/{namespace}/{name}/revision/{revision}.
func (h *ResolveHandler) Revision(w http.ResponseWriter, r *http.Request) {
	_, repo, ok := h.authorizeRead(w, r)
	if !ok {
		return
	}

	revision := chi.URLParam(r, "revision")
	commitID, err := h.deps.Store.ResolveRevisionName(r.Context(), repo.ID, revision)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResponse{CommitID: commitID, Revision: revision})
}
