// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Attune tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/attuneweb/attune/internal/adaptservice"
)

// Server wraps the MCP server with Attune tools.
type Server struct {
	mcp *server.MCPServer
	svc *adaptservice.Service
}

// New creates a new MCP server with all Attune tools registered.
func New(svc *adaptservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Attune",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("transform_text",
		mcp.WithDescription("Transform plain text according to a stored accessibility profile: "+
			"vocabulary simplification, paragraph chunking, analogy annotation."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Profile owner whose settings drive the transformation")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Plain text content to transform")),
	), s.transformText)

	s.mcp.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Read a stored accessibility profile as JSON."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Profile owner")),
	), s.getProfile)

	s.mcp.AddTool(mcp.NewTool("derive_profile",
		mcp.WithDescription("Derive and store an accessibility profile from questionnaire answers. "+
			"Answers MUST use the canonical question keys. Read the schema first via the "+
			"get_profile_contract tool or the attune://profile-schema resource."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Profile owner to derive for")),
		mcp.WithString("answers", mcp.Required(), mcp.Description("JSON object mapping question keys to free-text answers")),
	), s.deriveProfile)

	s.mcp.AddTool(mcp.NewTool("get_profile_contract",
		mcp.WithDescription("Returns the canonical Attune profile schema and questionnaire keys. "+
			"Call this before deriving or updating profiles to ensure correct structure."),
	), s.getProfileContract)

	s.mcp.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("List stored profiles with owner, version and provenance."),
	), s.listProfiles)

	// Resource: profile schema contract.
	s.mcp.AddResource(
		mcp.NewResource("attune://profile-schema", "Profile Schema Contract",
			mcp.WithResourceDescription("Canonical accessibility profile schema that all profiles follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProfileSchemaResource,
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

func (s *Server) transformText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := s.svc.GetProfile(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("profile not found: %s", userID)), nil
	}

	result, err := s.svc.TransformText(ctx, content, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetProfile(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("profile not found: %s", userID)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deriveProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("answers")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var answers map[string]string
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answers must be a JSON object of strings: %v", err)), nil
	}

	p, err := s.svc.DeriveProfile(ctx, userID, answers)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, _, err := s.svc.ListProfiles(ctx, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("no profiles stored"), nil
	}
	var lines []string
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("%s (v%d, %s)", rec.UserID, rec.Version, rec.GeneratedBy))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getProfileContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ProfileSchemaContract), nil
}

func (s *Server) readProfileSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "attune://profile-schema",
			MIMEType: "text/markdown",
			Text:     ProfileSchemaContract,
		},
	}, nil
}
