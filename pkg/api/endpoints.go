package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/touchstone-names/pkg/kit"
	"github.com/hazyhaar/touchstone-names/pkg/names"
)

// MaxBatch is the largest number of names accepted by one batch call.
const MaxBatch = 100

// Shared request/response types used by both HTTP and MCP transports.

type nameReq struct {
	Name string
}

type batchReq struct {
	Names []string
}

type normalizeResponse struct {
	Name       string `json:"name"`
	Normalized string `json:"normalized"`
}

type variantsResponse struct {
	Name       string   `json:"name"`
	Normalized string   `json:"normalized"`
	Variants   []string `json:"variants"`
}

type searchResponse struct {
	Term       string `json:"term"`
	Normalized string `json:"normalized"`
}

type batchResponse struct {
	Results []variantsResponse `json:"results"`
}

// Endpoints are resolved against the handle on every call so that a rule
// reload is picked up without restarting the transports.

func normalizeEndpoint(h *names.Handle) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*nameReq)
		return normalizeResponse{Name: req.Name, Normalized: h.Get().Normalized(req.Name)}, nil
	}
}

func variantsEndpoint(h *names.Handle) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*nameReq)
		return expand(h.Get(), req.Name), nil
	}
}

func searchEndpoint(h *names.Handle) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*nameReq)
		return searchResponse{Term: req.Name, Normalized: h.Get().SearchNormalized(req.Name)}, nil
	}
}

func batchEndpoint(h *names.Handle) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchReq)
		if len(req.Names) == 0 {
			return nil, fmt.Errorf("names array is empty")
		}
		if len(req.Names) > MaxBatch {
			return nil, fmt.Errorf("too many names (max %d, got %d)", MaxBatch, len(req.Names))
		}
		p := h.Get()
		results := make([]variantsResponse, len(req.Names))
		for i, name := range req.Names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = expand(p, name)
		}
		return batchResponse{Results: results}, nil
	}
}

func expand(p *names.Processor, name string) variantsResponse {
	norm := p.Normalized(name)
	return variantsResponse{Name: name, Normalized: norm, Variants: p.VariantsASCII(norm)}
}
