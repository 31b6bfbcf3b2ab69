// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the photo gallery to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/darkroom/internal/apperr"
	"github.com/starford/darkroom/internal/gallery"
)

// SnapshotURI is the resource holding the persisted photo list.
const SnapshotURI = "darkroom://snapshot"

// Server wraps the MCP server with gallery tools.
type Server struct {
	mcp *server.MCPServer
	svc *gallery.Service
}

// New creates a new MCP server with all gallery tools registered.
func New(svc *gallery.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"darkroom",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("take_photo",
		mcp.WithDescription("Capture a photo with the device camera and add it to the front of the gallery."),
	), s.takePhoto)

	s.mcp.AddTool(mcp.NewTool("list_photos",
		mcp.WithDescription("List gallery photos, newest first. Positions in the result are the ones delete_photo expects."),
	), s.listPhotos)

	s.mcp.AddTool(mcp.NewTool("delete_photo",
		mcp.WithDescription("Delete the photo at a position of the current list and remove its stored file."),
		mcp.WithNumber("position", mcp.Required(), mcp.Description("Zero-based position from list_photos")),
	), s.deletePhoto)

	s.mcp.AddTool(mcp.NewTool("reload_gallery",
		mcp.WithDescription("Replace the in-memory list with the persisted snapshot."),
	), s.reloadGallery)

	s.mcp.AddResource(
		mcp.NewResource(SnapshotURI, "Photo list snapshot",
			mcp.WithResourceDescription("Persisted JSON array of {filepath, webviewPath} records, newest first."),
			mcp.WithMIMEType("application/json"),
		),
		s.readSnapshotResource,
	)

	return s
}

// Serve speaks MCP over the given streams until in reaches EOF or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type listedPhoto struct {
	Position    int    `json:"position"`
	Filepath    string `json:"filepath"`
	DisplayPath string `json:"webviewPath"`
}

func (s *Server) takePhoto(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	photo, err := s.svc.AddNewToGallery(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(photo)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPhotos(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	photos := s.svc.Photos()
	if len(photos) == 0 {
		return mcp.NewToolResultText("no photos"), nil
	}
	listed := make([]listedPhoto, len(photos))
	for i, p := range photos {
		listed[i] = listedPhoto{Position: i, Filepath: p.Filepath, DisplayPath: p.DisplayPath}
	}
	out, _ := json.MarshalIndent(listed, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deletePhoto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	position, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	photos := s.svc.Photos()
	if position < 0 || position >= len(photos) {
		return mcp.NewToolResultError(fmt.Sprintf("no photo at position %d", position)), nil
	}
	if err := s.svc.DeletePicture(ctx, photos[position], position); err != nil {
		if errors.Is(err, apperr.ErrInvalidPosition) {
			return mcp.NewToolResultError(fmt.Sprintf("no photo at position %d", position)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", photos[position].Filepath)), nil
}

func (s *Server) reloadGallery(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.LoadSaved(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("loaded %d photos", len(s.svc.Photos()))), nil
}

func (s *Server) readSnapshotResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SnapshotURI,
			MIMEType: "application/json",
			Text:     snap,
		},
	}, nil
}
