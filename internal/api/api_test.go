package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/lagu/internal/docservice"
	"github.com/starford/lagu/internal/ingest"
	"github.com/starford/lagu/internal/testutil"
)

// testEnv catalogues a small note tree and returns the service and
// router. An empty token means auth-disabled mode.
func testEnv(t *testing.T, authToken string) (*docservice.Service, http.Handler) {
	t.Helper()

	db := testutil.TestCatalog(t)
	root := testutil.TestRoot(t, "notes")
	testutil.WriteNote(t, root, "a.md", "# Hello\nplain body")
	testutil.WriteNote(t, root, "sub/b.md", "---\nid: beta\ntags: [x, y]\n---\nbody of b")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ing := ingest.New(db, logger, 2)
	if err := ing.ProcessDirectory(context.Background(), root, nil); err != nil {
		t.Fatalf("walk: %v", err)
	}

	svc := docservice.NewService(db)
	return svc, NewRouter(svc, authToken != "", authToken)
}

func get(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetDocument_ByCustomID(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/documents/beta", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var doc docservice.DocumentDetail
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.FileName != "b.md" {
		t.Errorf("file_name = %q, want b.md", doc.FileName)
	}
	if doc.CustomID == nil || *doc.CustomID != "beta" {
		t.Errorf("custom_id = %v, want beta", doc.CustomID)
	}
	if doc.Content != "\nbody of b" {
		t.Errorf("content = %q", doc.Content)
	}
	if len(doc.Tags) != 2 {
		t.Errorf("tags = %v, want [x y]", doc.Tags)
	}
}

func TestGetDocument_ByUUID(t *testing.T) {
	svc, router := testEnv(t, "")

	detail, err := svc.GetDocument(context.Background(), "beta")
	if err != nil {
		t.Fatal(err)
	}

	w := get(t, router, "/documents/"+detail.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/documents/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	svc, router := testEnv(t, "")

	detail, err := svc.GetDocument(context.Background(), "beta")
	if err != nil {
		t.Fatal(err)
	}

	w := get(t, router, "/documents?directory="+detail.Directory.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Documents []json.RawMessage `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) != 1 {
		t.Errorf("documents = %d, want 1", len(resp.Documents))
	}
}

func TestListDocuments_BadDirectory(t *testing.T) {
	_, router := testEnv(t, "")
	if w := get(t, router, "/documents?directory=not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w := get(t, router, "/documents", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetTree(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/directories", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Directories []struct {
			Name   string  `json:"name"`
			Parent *string `json:"parent"`
		} `json:"directories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Directories) != 2 {
		t.Fatalf("directories = %d, want 2", len(resp.Directories))
	}
	if resp.Directories[0].Name != "notes" || resp.Directories[0].Parent != nil {
		t.Errorf("first directory = %+v, want root notes", resp.Directories[0])
	}
}

func TestAuth_TokenRequired(t *testing.T) {
	_, router := testEnv(t, "secret")

	if w := get(t, router, "/directories", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}
	if w := get(t, router, "/directories", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong token = %d, want 401", w.Code)
	}
	if w := get(t, router, "/directories", "secret"); w.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", w.Code)
	}
}
