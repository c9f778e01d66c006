package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/touchstone-names/pkg/kit"
	"github.com/hazyhaar/touchstone-names/pkg/names"
)

// RegisterMCPTools registers the name processing tools on the server.
func RegisterMCPTools(srv *server.MCPServer, h *names.Handle, logger *slog.Logger) {
	kit.RegisterMCPTool(srv,
		mcp.NewTool("normalize_name",
			mcp.WithDescription("Normalize a place name into the canonical key used for indexing."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The name to normalize")),
		),
		kit.Logging(logger, "normalize")(normalizeEndpoint(h)),
		decodeName("name"))

	kit.RegisterMCPTool(srv,
		mcp.NewTool("name_variants",
			mcp.WithDescription("List the ASCII spelling variants under which a place name is indexed, e.g. abbreviations of street types."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The name to expand")),
		),
		kit.Logging(logger, "variants")(variantsEndpoint(h)),
		decodeName("name"))

	kit.RegisterMCPTool(srv,
		mcp.NewTool("search_normalize",
			mcp.WithDescription("Normalize a search term the way queries are matched against indexed names."),
			mcp.WithString("term", mcp.Required(), mcp.Description("The search term")),
		),
		kit.Logging(logger, "search")(searchEndpoint(h)),
		decodeName("term"))
}

func decodeName(arg string) func(mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		name, _ := req.GetArguments()[arg].(string)
		if name == "" {
			return nil, fmt.Errorf("%s is required", arg)
		}
		id := uuid.NewString()
		return &kit.MCPDecodeResult{
			Request: &nameReq{Name: name},
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithRequestID(ctx, id)
			},
		}, nil
	}
}
