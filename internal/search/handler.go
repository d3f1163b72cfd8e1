package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/service-finder/internal/mcp"
)

const (
	quickStartsURI = "finder://quick-starts"
	tagsURI        = "finder://tags"
)

// Handler implements mcp.Handler on top of a Service.
type Handler struct {
	service *Service
}

// NewHandler creates an MCP handler for service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListTools returns available tools (implements mcp.Handler).
func (h *Handler) ListTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "find_service",
			Description: "Find the local government service that answers a resident's question, e.g. \"pay water bill\" or \"report pothole\". Returns ranked entries with contact details and links, plus clarifying options or spelling suggestions when the query is ambiguous or sparse.",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"query": {
						Type:        "string",
						Description: "The resident's question in plain words",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

// CallTool processes a tool invocation (implements mcp.Handler).
func (h *Handler) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case "find_service":
		return h.findService(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// ListResources returns available resources (implements mcp.Handler).
func (h *Handler) ListResources() []mcp.Resource {
	return []mcp.Resource{
		{
			URI:         quickStartsURI,
			Name:        "Quick starts",
			Description: "Example queries residents commonly ask",
			MimeType:    "text/markdown",
		},
		{
			URI:         tagsURI,
			Name:        "Tag vocabulary",
			Description: "Every tag used in the catalog, in first-seen order",
			MimeType:    "application/json",
		},
	}
}

// ReadResource processes a resource read (implements mcp.Handler).
func (h *Handler) ReadResource(_ context.Context, uri string) (*mcp.ReadResourceResult, error) {
	switch uri {
	case quickStartsURI:
		var b strings.Builder
		b.WriteString("# Quick starts\n\n")
		for _, q := range h.service.Engine().QuickStarts() {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		return resource(uri, "text/markdown", b.String()), nil

	case tagsURI:
		data, err := json.Marshal(h.service.Engine().Catalog().Vocabulary())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		return resource(uri, "application/json", string(data)), nil

	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
}

func (h *Handler) findService(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.ErrorResult("query parameter is required"), nil
	}

	res, err := h.service.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.TextResult(string(data)), nil
}

func resource(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{{URI: uri, MimeType: mimeType, Text: text}},
	}
}
