// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes blog note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/blognotes/internal/apperr"
	"github.com/starford/blognotes/internal/attach"
	"github.com/starford/blognotes/internal/markdown"
	"github.com/starford/blognotes/internal/noteservice"
)

const contractURI = "blognotes://note-format"

// Server wraps the MCP server with blog note tools. An MCP connection is a
// single session, so it stages attachments in one tracker.
type Server struct {
	mcp     *server.MCPServer
	svc     *noteservice.Service
	tracker *attach.Tracker
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, tracker *attach.Tracker) *Server {
	if tracker == nil {
		tracker = attach.NewTracker()
	}
	s := &Server{svc: svc, tracker: tracker}

	s.mcp = server.NewMCPServer(
		"Blog Notes",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all stored notes as JSON, newest first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("render_notes",
		mcp.WithDescription("Render the stored notes as the HTML shown on the page."),
	), s.renderNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note from a title and an HTML fragment. "+
			"Files staged with stage_attachment are attached and then cleared. "+
			"Read the contract first via get_note_contract or the "+contractURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("HTML fragment, or Markdown when format is markdown")),
		mcp.WithString("format", mcp.Description("Content format: html (default) or markdown"), mcp.Enum("html", "markdown")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete the note with the given id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id as returned by list_notes")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("stage_attachment",
		mcp.WithDescription("Stage a file for the next created note. Accepts a base64 data URI "+
			"(data:<mime>;base64,...) or an http(s) URL. Only the name, size and type are kept."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Data URI or http(s) URL of the file")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
	), s.stageAttachment)

	s.mcp.AddTool(mcp.NewTool("list_attachments",
		mcp.WithDescription("List the files staged for the next note."),
	), s.listAttachments)

	s.mcp.AddTool(mcp.NewTool("remove_attachment",
		mcp.WithDescription("Remove a staged file by its position in list_attachments. Out of range positions are ignored."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based position")),
	), s.removeAttachment)

	s.mcp.AddTool(mcp.NewTool("export_notes",
		mcp.WithDescription("Return the stored notes exactly as saved, for backup or transfer."),
	), s.exportNotes)

	s.mcp.AddTool(mcp.NewTool("import_notes",
		mcp.WithDescription("Replace all stored notes with a JSON array produced by export_notes."),
		mcp.WithString("json", mcp.Required(), mcp.Description("Exported notes JSON")),
	), s.importNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the note format contract. "+
			"Call this before creating or importing notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format Contract",
			mcp.WithResourceDescription("JSON and HTML format of stored notes."),
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c), nil
}

func (s *Server) renderNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.svc.Render(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out.HTML), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetString("format", "html") == "markdown" {
		if content, err = markdown.ToHTML(content); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	note, err := s.svc.Save(ctx, title, content, s.tracker)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, int64(id)); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %d", int64(id))), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", int64(id))), nil
}

func (s *Server) listAttachments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.tracker.Descriptors()), nil
}

func (s *Server) removeAttachment(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireFloat("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_ = s.tracker.RemoveAt(int(i))
	return jsonResult(s.tracker.Descriptors()), nil
}

func (s *Server) exportNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.svc.Export(ctx)
	if errors.Is(err, apperr.ErrEmptyStore) {
		return mcp.NewToolResultError("no notes have been saved yet"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(raw), nil
}

func (s *Server) importNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Import(ctx, text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("imported"), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
