package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/hubd/pkg/api/httperr"
	apimw "github.com/marmos91/hubd/pkg/api/middleware"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/transfer"
)

// TransferHandler implements the preupload classifier, the Git-LFS batch
// endpoint, and the upload verification callback (spec §4.C6).
type TransferHandler struct {
	deps *Dependencies
}

func NewTransferHandler(deps *Dependencies) *TransferHandler {
	return &TransferHandler{deps: deps}
}

type preuploadFile struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256,omitempty"`
}

type preuploadRequest struct {
	Files []preuploadFile `json:"files"`
}

type preuploadResultWire struct {
	Path         string `json:"path"`
	UploadMode   string `json:"uploadMode"`
	ShouldIgnore bool   `json:"shouldIgnore"`
}

type preuploadResponse struct {
	Files   []preuploadResultWire `json:"files"`
	Warning string                `json:"warning,omitempty"`
}

// Preupload handles POST /api/{kind}s/{namespace}/{name}/preupload/{revision}.
// A quota warning is advisory at this stage (spec §7: "200-with-warning on
// preupload"), so it never turns into an error response.
func (h *TransferHandler) Preupload(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	ns, repo, ok := loadRepository(w, r, h.deps.Store, chi.URLParam(r, "namespace"), chi.URLParam(r, "name"))
	if !ok {
		return
	}
	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	if err := authz.CanWrite(decision); err != nil {
		httperr.HandleError(w, err)
		return
	}

	var req preuploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	entries := make([]transfer.PreuploadEntry, len(req.Files))
	var pendingBytes int64
	for i, f := range req.Files {
		entries[i] = transfer.PreuploadEntry{Path: f.Path, Size: f.Size, SHA256: f.SHA256}
		pendingBytes += f.Size
	}

	results, err := h.deps.Classifier.Classify(r.Context(), repo.ID, chi.URLParam(r, "revision"), entries)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	resp := preuploadResponse{Files: make([]preuploadResultWire, len(results))}
	for i, res := range results {
		mode := "regular"
		if res.UploadMode == transfer.ModeExternal {
			mode = "lfs"
		}
		resp.Files[i] = preuploadResultWire{Path: res.Path, UploadMode: mode, ShouldIgnore: res.ShouldIgnore}
	}

	if err := h.deps.Quota.CheckAdvisory(r.Context(), ns.ID, pendingBytes); err != nil {
		resp.Warning = "quota_warning"
	}

	writeJSON(w, http.StatusOK, resp)
}

type lfsBatchObject struct {
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

type lfsBatchRequest struct {
	Operation string           `json:"operation"`
	Transfers []string         `json:"transfers"`
	Objects   []lfsBatchObject `json:"objects"`
}

type lfsAction struct {
	Href      string            `json:"href"`
	ExpiresAt time.Time         `json:"expires_at"`
	Header    map[string]string `json:"header,omitempty"`
}

type lfsVerifyAction struct {
	Href string `json:"href"`
}

// lfsBatchObjectActions carries the "basic" transfer shape (a single
// upload/download action) per spec §4.C6.2.
type lfsBatchObjectActions struct {
	Upload   *lfsAction       `json:"upload,omitempty"`
	Download *lfsAction       `json:"download,omitempty"`
	Verify   *lfsVerifyAction `json:"verify,omitempty"`
}

// lfsPartWire is one presigned part URL within a multipart plan.
type lfsPartWire struct {
	PartNumber int32  `json:"part_number"`
	URL        string `json:"url"`
}

type lfsBatchObjectWire struct {
	OID     string                 `json:"oid"`
	Size    int64                  `json:"size"`
	Actions *lfsBatchObjectActions `json:"actions,omitempty"`
	// UploadID/Parts carry the "multipart" transfer shape (spec §4.C6.2(b)),
	// distinct from the single-action Actions.Upload shape used for basic
	// transfers; a multipart object additionally reuses Actions.Verify.
	UploadID string          `json:"upload_id,omitempty"`
	Parts    []lfsPartWire   `json:"parts,omitempty"`
	Error    *lfsObjectError `json:"error,omitempty"`
}

type lfsObjectError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lfsBatchResponse struct {
	Transfer string               `json:"transfer"`
	Objects  []lfsBatchObjectWire `json:"objects"`
}

// Batch handles POST /{namespace}/{repo}.git/info/lfs/objects/batch.
func (h *TransferHandler) Batch(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	repoName := trimDotGit(chi.URLParam(r, "repoGit"))
	ns, repo, ok := loadRepository(w, r, h.deps.Store, chi.URLParam(r, "namespace"), repoName)
	if !ok {
		return
	}

	var req lfsBatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	op := transfer.Operation(req.Operation)
	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	action := authz.ActionRead
	if op == transfer.OpUpload {
		action = authz.ActionWrite
	}
	if err := authz.Authorize(decision, action); err != nil {
		httperr.HandleError(w, err)
		return
	}

	objects := make([]transfer.BatchObject, len(req.Objects))
	for i, o := range req.Objects {
		objects[i] = transfer.BatchObject{OID: o.OID, Size: o.Size}
	}
	wantMultipart := containsString(req.Transfers, "multipart")

	results, err := h.deps.Broker.Batch(r.Context(), repo.ID, op, objects, wantMultipart)
	if err != nil {
		httperr.HandleError(w, err)
		return
	}

	transferMode := "basic"
	wireObjects := make([]lfsBatchObjectWire, len(results))
	for i, res := range results {
		wo := lfsBatchObjectWire{OID: res.OID, Size: res.Size}
		switch {
		case res.ErrorCode != "":
			wo.Error = &lfsObjectError{Code: http.StatusNotFound, Message: res.ErrorMessage}
		case res.Dedup:
			// no actions field: dedup acknowledgement (spec §4.C6.2).
		case res.Multipart != nil:
			transferMode = "multipart"
			parts := make([]lfsPartWire, len(res.Multipart.Parts))
			for j, p := range res.Multipart.Parts {
				parts[j] = lfsPartWire{PartNumber: p.PartNumber, URL: p.Href}
			}
			wo.UploadID = res.Multipart.UploadID
			wo.Parts = parts
			wo.Actions = &lfsBatchObjectActions{
				Verify: &lfsVerifyAction{Href: verifyHref(r, ns.Slug, repo.Name, res.OID, res.Multipart.UploadID)},
			}
		case res.Upload != nil:
			wo.Actions = &lfsBatchObjectActions{
				Upload: &lfsAction{Href: res.Upload.Href, ExpiresAt: res.Upload.ExpiresAt},
				Verify: &lfsVerifyAction{Href: verifyHref(r, ns.Slug, repo.Name, res.OID, "")},
			}
		case res.Download != nil:
			wo.Actions = &lfsBatchObjectActions{
				Download: &lfsAction{Href: res.Download.Href, ExpiresAt: res.Download.ExpiresAt},
			}
		}
		wireObjects[i] = wo
	}

	writeJSON(w, http.StatusOK, lfsBatchResponse{Transfer: transferMode, Objects: wireObjects})
}

type verifyPart struct {
	PartNumber int32  `json:"part_number"`
	ETag       string `json:"etag"`
}

type verifyRequest struct {
	OID      string       `json:"oid"`
	Size     int64        `json:"size"`
	UploadID string       `json:"upload_id,omitempty"`
	Parts    []verifyPart `json:"parts,omitempty"`
}

// Verify handles the client's post-upload confirmation callback (spec
// §4.C6.3). A request carrying UploadID/Parts completes a multipart
// session (assembling the object from its parts' ETags) instead of
// stat-verifying a single PUT's size.
func (h *TransferHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal := apimw.GetPrincipal(r.Context())
	repoName := trimDotGit(chi.URLParam(r, "repoGit"))
	ns, repo, ok := loadRepository(w, r, h.deps.Store, chi.URLParam(r, "namespace"), repoName)
	if !ok {
		return
	}
	decision := authz.BuildDecision(apimw.AsMetadataPrincipal(principal), ns, repo)
	if err := authz.CanWrite(decision); err != nil {
		httperr.HandleError(w, err)
		return
	}

	var req verifyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.UploadID != "" {
		completed := make([]blobstore.CompletedPart, len(req.Parts))
		for i, p := range req.Parts {
			completed[i] = blobstore.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag}
		}
		if err := h.deps.Broker.CompleteMultipart(r.Context(), repo.ID, req.OID, req.UploadID, completed); err != nil {
			httperr.HandleError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.deps.Verifier.Verify(r.Context(), repo.ID, req.OID, req.Size); err != nil {
		httperr.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func trimDotGit(segment string) string {
	const suffix = ".git"
	if len(segment) > len(suffix) && segment[len(segment)-len(suffix):] == suffix {
		return segment[:len(segment)-len(suffix)]
	}
	return segment
}

func containsString(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}

func verifyHref(r *http.Request, namespace, name, oid, uploadID string) string {
	u := "/" + namespace + "/" + name + ".git/info/lfs/objects/verify"
	if uploadID != "" {
		u += "?upload_id=" + uploadID
	}
	return u
}
