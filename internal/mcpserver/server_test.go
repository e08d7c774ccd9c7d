package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oakmere/arbor/internal/bus"
	"github.com/oakmere/arbor/internal/mention"
	"github.com/oakmere/arbor/internal/noteservice"
	"github.com/oakmere/arbor/internal/store"
	"github.com/oakmere/arbor/internal/testutil"
)

func testServer(t *testing.T) (*Server, *noteservice.Service, *store.DB) {
	t.Helper()

	db := testutil.TestDB(t)
	svc := noteservice.NewService(db, mention.NewIndex(), bus.New())
	t.Cleanup(svc.Close)

	return New(svc), svc, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "browse_tree":
		result, err = srv.browseTree(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "search_mentions":
		result, err = srv.searchMentions(ctx, req)
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

func TestCreateAndReadNote(t *testing.T) {
	srv, _, db := testServer(t)
	folderID := testutil.SeedFolder(t, db, "journal", nil)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":     "Dracula",
		"folder_id": float64(folderID),
	})
	text := resultText(r)
	if !strings.Contains(text, "Dracula") {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": float64(1)})
	text = resultText(r)
	if !strings.Contains(text, `"title": "Dracula"`) {
		t.Errorf("read result = %q", text)
	}
}

func TestUpdateNoteTool(t *testing.T) {
	srv, _, db := testServer(t)
	folderID := testutil.SeedFolder(t, db, "journal", nil)
	noteID := testutil.SeedNote(t, db, "draft", "", folderID)

	r := callTool(t, srv, "update_note", map[string]interface{}{
		"id":      float64(noteID),
		"title":   "final",
		"content": "two words",
	})
	text := resultText(r)
	if !strings.Contains(text, "2 words") {
		t.Errorf("update result = %q, want word count", text)
	}
}

func TestBrowseTree(t *testing.T) {
	srv, _, db := testServer(t)
	folderID := testutil.SeedFolder(t, db, "library", nil)
	testutil.SeedNote(t, db, "Dracula", "", folderID)

	r := callTool(t, srv, "browse_tree", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "library/") {
		t.Errorf("tree missing folder: %q", text)
	}
	if !strings.Contains(text, "Dracula") {
		t.Errorf("tree missing note: %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": float64(99)})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDeleteNoteTool(t *testing.T) {
	srv, _, db := testServer(t)
	folderID := testutil.SeedFolder(t, db, "journal", nil)
	noteID := testutil.SeedNote(t, db, "gone", "", folderID)

	r := callTool(t, srv, "delete_note", map[string]interface{}{"id": float64(noteID)})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": float64(noteID)})
	if !r.IsError {
		t.Error("binned note should not be readable")
	}
}

func TestSearchMentionsTool(t *testing.T) {
	srv, svc, db := testServer(t)
	folderID := testutil.SeedFolder(t, db, "characters", nil)
	testutil.SeedNote(t, db, "Dracula", "", folderID)
	testutil.SeedNote(t, db, "Van Helsing", "", folderID)

	// Rebuild the index from the seeded tree.
	if _, _, err := svc.Tree(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_mentions", map[string]interface{}{"query": "hel"})
	text := resultText(r)
	if !strings.Contains(text, "Van Helsing") || strings.Contains(text, "Dracula") {
		t.Errorf("mentions = %q, want only Van Helsing", text)
	}
}
