package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marmos91/hubd/pkg/api/httperr"
	"github.com/marmos91/hubd/pkg/metadata"
)

// writeJSON writes a JSON response with the given status code, mirroring
// the teacher's response.go:JSON helper.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSONBody decodes a JSON request body into v, writing a
// malformed_payload response and returning false on failure. Grounded on
// the teacher's handlers/helpers.go:decodeJSONBody, adapted to the hub's
// httperr envelope instead of the teacher's BadRequest helper.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httperr.Write(w, httperr.MalformedPayload)
		return false
	}
	return true
}

// repositoryKindFromPath maps the {kind}s route segment ("models",
// "datasets", "spaces") onto metadata.RepositoryKind, per spec §6's
// `/api/{kind}s/{repo}/...` routes.
func repositoryKindFromPath(segment string) (metadata.RepositoryKind, bool) {
	switch segment {
	case "models":
		return metadata.RepoModel, true
	case "datasets":
		return metadata.RepoDataset, true
	case "spaces":
		return metadata.RepoSpace, true
	default:
		return "", false
	}
}

// loadRepository resolves {namespace}/{name} to its Namespace and
// Repository rows, writing the appropriate 404 kind on failure.
func loadRepository(w http.ResponseWriter, r *http.Request, store metadata.MetadataStore, namespaceSlug, name string) (*metadata.Namespace, *metadata.Repository, bool) {
	ns, err := store.GetNamespace(r.Context(), namespaceSlug)
	if err != nil {
		httperr.HandleError(w, err)
		return nil, nil, false
	}
	repo, err := store.GetRepository(r.Context(), namespaceSlug, name)
	if err != nil {
		httperr.HandleError(w, err)
		return nil, nil, false
	}
	return ns, repo, true
}
