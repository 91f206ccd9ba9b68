package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/huangsam/debtlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleListRepositories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	included, excluded, err := core.ListRepositories(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	if included == nil {
		included = []string{}
	}
	if excluded == nil {
		excluded = []string{}
	}

	jsonData, _ := json.MarshalIndent(map[string][]string{
		"repositories": included,
		"excluded":     excluded,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	cfg := h.baseCfg.Clone()
	if t := request.GetString("seasonality_test", ""); t != "" {
		test := schema.SeasonalityTest(t)
		if _, ok := schema.ValidSeasonalityTests[test]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seasonality test %q. must be combined, qs or kw", t)), nil
		}
		cfg.SeasonalityTest = test
	}
	cfg.Plots = request.GetBool("plots", false)

	report, err := core.GetRepoReport(core.WithSuppressHeader(ctx), cfg, h.mgr, repo)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteReportJSON(&buf, *report); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxHotspotLimit {
			return mcp.NewToolResultError(fmt.Sprintf("limit must be greater than 0 and cannot exceed %d", contract.MaxHotspotLimit)), nil
		}
		cfg.Limit = l
	}

	listing, err := core.GetHotspotResults(core.WithSuppressHeader(ctx), cfg, repo)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteHotspotsJSON(&buf, listing); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
