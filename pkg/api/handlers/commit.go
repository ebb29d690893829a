package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/hubd/pkg/api/httperr"
	apimw "github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/authz"
)

// CommitHandler implements POST /api/{kind}s/{namespace}/{name}/commit/{revision}
// (spec §4.C7): the atomic NDJSON commit endpoint.
type CommitHandler struct {
	deps *Dependencies
}

func NewCommitHandler(deps *Dependencies) *CommitHandler {
	return &CommitHandler{deps: deps}
}

type commitResponse struct {
	CommitURL      string  `json:"commitUrl"`
	CommitOID      string  `json:"commitOid"`
	PullRequestURL *string `json:"pullRequestUrl"`
}

// Commit streams r.Body straight into the commit engine without buffering
// it (spec §9/§5's streaming discipline): the body is handed to
// commit.Engine.Apply as an io.Reader, which decodes it one NDJSON record
// at a time.
func (h *CommitHandler) Commit(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")
	ns, repo, ok := loadRepository(w, r, h.deps.Store, namespace, name)
	if !ok {
		return
	}

	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	author := ""
	if principal != nil {
		author = principal.Username
	}

	result, err := h.deps.Commit.Apply(r.Context(), repo.ID, ns.ID, chi.URLParam(r, "revision"), decision, author, r.Body)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commitResponse{
		CommitURL: "/" + namespace + "/" + name + "/commit/" + result.CommitID,
		CommitOID: result.CommitID,
	})
}
