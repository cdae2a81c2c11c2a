package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/waste-to-wealth/server/internal/agent/model"
	errx "github.com/waste-to-wealth/server/internal/core/error"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const ToolAnalyzeWaste = "analyze_waste"

// Runner runs one query through the analysis pipeline.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (model.WasteQueryState, error)
}

type AnalyzeRequest struct {
	Query string `json:"query"`
}

var analyzeToolDef = mcp.NewTool(ToolAnalyzeWaste,
	mcp.WithDescription("Answer a waste management question, or find waste items related to the query, "+
		"analyze them and suggest up to two waste-to-wealth income ideas. Returns the full analysis as JSON."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Question or description of the waste at hand, e.g. \"old tyres and plastic bottles in my yard\""),
	),
)

type Handlers struct {
	runner Runner
}

func NewHandlers(runner Runner) *Handlers {
	return &Handlers{runner: runner}
}

// NewServer creates an MCP server with the analyze tool registered.
func NewServer(runner Runner, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"waste-to-wealth",
		version,
		server.WithToolCapabilities(true),
	)
	h := NewHandlers(runner)
	s.AddTool(analyzeToolDef, h.HandleAnalyze)
	return s
}

// Run starts the MCP server using stdio transport.
func Run(runner Runner, version string) error {
	return server.ServeStdio(NewServer(runner, version))
}

func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnalyzeRequest](req)
	if err != nil {
		return errorResult(errx.BadRequest("arguments must be an object with a string query")), nil
	}
	if input.Query == "" {
		return errorResult(errx.BadRequest("query is required")), nil
	}

	out, err := h.runner.Run(ctx, model.QueryInput{Query: input.Query})
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("tool", ToolAnalyzeWaste).Msg("analyze failed")
		return errorResult(err), nil
	}
	return mcp.NewToolResultJSON(out)
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// errorResult marks the result as failed; only the public message is exposed.
func errorResult(err error) *mcp.CallToolResult {
	content, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"message": errx.PublicMessage(err),
			"status":  errx.StatusOf(err),
		},
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}
