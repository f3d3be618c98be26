package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/lagu/internal/docservice"
	"github.com/starford/lagu/internal/ingest"
	"github.com/starford/lagu/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	db := testutil.TestCatalog(t)
	root := testutil.TestRoot(t, "notes")
	testutil.WriteNote(t, root, "a.md", "---\nid: alpha\n---\n# Alpha\nbody")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ing := ingest.New(db, logger, 1)
	if err := ing.ProcessDirectory(context.Background(), root, nil); err != nil {
		t.Fatal(err)
	}

	return New(docservice.NewService(db))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "directory_tree":
		result, err = srv.directoryTree(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadDocument(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_document", map[string]any{"id": "alpha"})
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	var doc docservice.DocumentDetail
	if err := json.Unmarshal([]byte(resultText(r)), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.FileName != "a.md" {
		t.Errorf("file_name = %q, want a.md", doc.FileName)
	}
	if doc.Title == nil || *doc.Title != "Alpha" {
		t.Errorf("title = %v, want Alpha", doc.Title)
	}
}

func TestReadDocument_Missing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_document", map[string]any{"id": "nope"})
	if !r.IsError {
		t.Error("expected tool error for unknown document")
	}
}

func TestDirectoryTree(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "directory_tree", map[string]any{})
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"name": "notes"`) {
		t.Errorf("tree = %s, want it to contain the notes root", resultText(r))
	}
}

func TestListDocuments_BadUUID(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_documents", map[string]any{"directory": "junk"})
	if !r.IsError {
		t.Error("expected tool error for non-UUID directory")
	}
}
