package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/seeyebe/gmap/core"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
// The stdio server dispatches calls on several workers, so mu serializes use of the cache handle.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	objects contract.ObjectStore

	mu sync.Mutex
}

func (h *toolHandler) fetcher() *core.Fetcher {
	return core.NewFetcher(h.mgr.GetCommitStore(), h.objects, contract.Logger())
}

func (h *toolHandler) handleFetchCommitStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := contract.ResolveRange(ctx, request.GetString("since", ""), request.GetString("until", ""), time.Now(), h.objects)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid range: %v", err)), nil
	}
	includeMerges := request.GetBool("include_merges", h.baseCfg.IncludeMerges)
	includeBinary := request.GetBool("include_binary", h.baseCfg.IncludeBinary)

	h.mu.Lock()
	stats, err := h.fetcher().Fetch(ctx, rng, includeMerges, includeBinary)
	h.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	if stats == nil {
		stats = []schema.CommitStats{}
	}
	return jsonResult(stats)
}

func (h *toolHandler) handleGetCommitInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rev, err := request.RequireString("revision")
	if err != nil || rev == "" {
		return mcp.NewToolResultError("revision is required"), nil
	}

	id, err := h.objects.ResolveRevision(ctx, rev)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot resolve %q: %v", rev, err)), nil
	}
	h.mu.Lock()
	infos, err := h.fetcher().CommitInfos(ctx, []string{id})
	h.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read commit %s: %v", schema.ShortID(id), err)), nil
	}
	return jsonResult(infos[id])
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
