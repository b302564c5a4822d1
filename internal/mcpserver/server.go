// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes docmeta tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/scan"
	"github.com/starford/docmeta/internal/storage"
	"github.com/starford/docmeta/internal/validator"
)

// Resource URIs.
const (
	SchemaURI   = "docmeta://schema"
	ContractURI = "docmeta://contract"
)

// Server wraps the MCP server with docmeta tools.
type Server struct {
	mcp       *server.MCPServer
	store     storage.Provider
	validator *validator.Validator
	scanner   *scan.Scanner
}

// New creates a new MCP server with all docmeta tools registered.
func New(store storage.Provider, v *validator.Validator, s *scan.Scanner) *Server {
	srv := &Server{store: store, validator: v, scanner: s}

	srv.mcp = server.NewMCPServer(
		"docmeta",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every documentation category with its required fields, enumerations and recommended tags."),
	), srv.listCategories)

	srv.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Return a front-matter skeleton for a category. Enumerated fields default to their first value."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name (e.g. frontend, projects)")),
	), srv.getTemplate)

	srv.mcp.AddTool(mcp.NewTool("validate_document",
		mcp.WithDescription("Validate the front matter of a single document without writing it. "+
			"The path selects the category, e.g. docs/frontend/hooks.md."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path including the docs segment")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full Markdown content")),
	), srv.validateDocument)

	srv.mcp.AddTool(mcp.NewTool("validate_tree",
		mcp.WithDescription("Validate every Markdown document under the documentation root and return the documents with issues."),
	), srv.validateTree)

	srv.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new Markdown document under the documentation root. "+
			"The document is written only if its front matter has no errors. "+
			"Read the contract first via the get_contract tool or the "+ContractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the root (e.g. frontend/hooks.md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content with front matter")),
	), srv.createDocument)

	srv.mcp.AddTool(mcp.NewTool("get_contract",
		mcp.WithDescription("Returns the front-matter contract for all categories. "+
			"Call this before creating documents to ensure correct structure."),
	), srv.getContract)

	srv.mcp.AddResource(
		mcp.NewResource(SchemaURI, "Category Schema Table",
			mcp.WithResourceDescription("The loaded category schema table as YAML."),
			mcp.WithMIMEType("application/yaml"),
		),
		srv.readSchemaResource,
	)
	srv.mcp.AddResource(
		mcp.NewResource(ContractURI, "Front-Matter Contract",
			mcp.WithResourceDescription("Human-readable front-matter rules for every category."),
			mcp.WithMIMEType("text/markdown"),
		),
		srv.readContractResource,
	)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.validator.Table().Categories())
}

func (s *Server) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tmpl, err := s.validator.Template(name)
	if err != nil {
		msg := err.Error() + "; available: " + strings.Join(s.validator.Table().Names(), ", ")
		if hint := s.validator.Table().Suggest(name); len(hint) > 0 {
			msg += fmt.Sprintf(" (did you mean %q?)", hint[0])
		}
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(tmpl), nil
}

func (s *Server) validateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.validator.Validate(path, []byte(content)))
}

func (s *Server) validateTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.scanner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"root":    rep.Root,
		"summary": rep.Summary,
		"results": rep.WithIssues(),
	})
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.HasSuffix(path, ".md") {
		return mcp.NewToolResultError("path must end with .md"), nil
	}

	if _, readErr := s.store.Read(path); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("document already exists: %s", path)), nil
	} else if !errors.Is(readErr, apperr.ErrNotFound) {
		return mcp.NewToolResultError(readErr.Error()), nil
	}

	data := []byte(content)
	res := s.scanner.Content(path, data)
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Message
		}
		return mcp.NewToolResultError("front matter rejected: " + strings.Join(msgs, "; ")), nil
	}

	if err := s.store.Write(path, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Contract(s.validator.Table())), nil
}

func (s *Server) readSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.validator.Table().Marshal()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemaURI,
			MIMEType: "application/yaml",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     Contract(s.validator.Table()),
		},
	}, nil
}
