// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Arbor tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oakmere/arbor/internal/mention"
	"github.com/oakmere/arbor/internal/models"
	"github.com/oakmere/arbor/internal/noteservice"
)

// Server wraps the MCP server with Arbor tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Arbor tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Arbor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("browse_tree",
		mcp.WithDescription("Show the live folder tree with the notes in each folder."),
	), s.browseTree)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note's content, metadata and backlinks by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create an empty note. Link to other notes from its content "+
			"with [Title](note:ID) links; read the contract first via the "+
			"get_note_contract tool or the arbor://note-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithNumber("folder_id", mcp.Description("Target folder id (omit for the first root folder)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace a note's title and Markdown content. "+
			"Outgoing [Title](note:ID) links are re-extracted from the new content."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric note id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Move a note to the bin. Restorable until the retention sweep."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_mentions",
		mcp.WithDescription("Find notes by title substring, the way the @-mention picker does."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Title substring (case-insensitive)")),
	), s.searchMentions)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Arbor note format and link grammar. "+
			"Call this before creating or updating notes."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("arbor://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format and internal link grammar."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) browseTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	forest, _, err := s.svc.Tree(ctx, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, root := range forest {
		writeFolder(&b, root, 0)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no folders"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeFolder(b *strings.Builder, f *models.Folder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s[%d] %s/\n", indent, f.ID, f.Name)
	for _, n := range f.Notes {
		fmt.Fprintf(b, "%s  (%d) %s\n", indent, n.ID, n.Title)
	}
	for _, child := range f.Children {
		writeFolder(b, child, depth+1)
	}
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var folderID *int64
	if f, fErr := req.RequireInt("folder_id"); fErr == nil {
		id := int64(f)
		folderID = &id
	}
	note, err := s.svc.CreateNote(ctx, title, folderID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %d: %s", note.ID, note.Title)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.UpdateNote(ctx, int64(id), title, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated note %d (%d words)", note.ID, note.WordCount)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, int64(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved note %d to the bin", id)), nil
}

func (s *Server) searchMentions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs := s.svc.Mentions(ctx, query, mention.DefaultLimit)
	if len(refs) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var lines []string
	for _, ref := range refs {
		lines = append(lines, fmt.Sprintf("(%d) %s", ref.ID, ref.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "arbor://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
