package httperr

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/commit"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/transfer"
)

func TestClassify_StoreErrorNotFoundNarrowsByResource(t *testing.T) {
	cases := []struct {
		resource string
		want     Kind
	}{
		{"repository", RepoNotFound},
		{"namespace", RepoNotFound},
		{"revision", RevisionNotFound},
		{"commit", RevisionNotFound},
		{"file", PathNotFound},
	}
	for _, c := range cases {
		err := metadata.NewNotFoundError(c.resource, "id1")
		if got := Classify(err); got != c.want {
			t.Errorf("resource %q: got %s, want %s", c.resource, got, c.want)
		}
	}
}

func TestClassify_StoreErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{metadata.NewAlreadyExistsError("repository", "r1"), NameTaken},
		{metadata.NewConcurrentUpdateError("revision", "main"), ConcurrentUpdate},
		{metadata.NewStaleRevisionError("revision", "main"), StaleRevision},
		{metadata.NewQuotaExceededError("namespace", "ns1"), QuotaExceeded},
		{metadata.NewInvalidArgumentError("repository", "bad name"), InvalidName},
		{metadata.NewPermissionDeniedError("repository", "r1"), Forbidden},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("%v: got %s, want %s", c.err, got, c.want)
		}
	}
}

func TestClassify_SentinelErrors(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{authz.ErrForbidden, Forbidden},
		{authz.ErrQuotaWarning, QuotaExceeded},
		{transfer.ErrSizeMismatch, SizeMismatch},
		{commit.ErrMalformedPayload, MalformedPayload},
		{commit.ErrInlineTooLarge, InlineTooLarge},
		{commit.ErrObjectNotReady, ObjectNotReady},
		{errors.New("some unrelated failure"), Internal},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("%v: got %s, want %s", c.err, got, c.want)
		}
	}
}

func TestWrite_SetsStatusHeaderAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, PathNotFound)

	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "path_not_found" {
		t.Errorf("unexpected X-Error-Code: %s", got)
	}
	if got := rec.Body.String(); got != `{"error":"path_not_found"}`+"\n" {
		t.Errorf("unexpected body: %q", got)
	}
}
