package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/metrics"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// NewUsageRecorder returns the hook the LLM client calls after every model
// response. It prices the call, adds it to the graph state when running
// inside the graph, exports it as metrics and writes it to ledger (optional).
func NewUsageRecorder(ledger model.UsageLedger) func(context.Context, string, *schema.TokenUsage) {
	return func(ctx context.Context, modelName string, usage *schema.TokenUsage) {
		if usage == nil {
			return
		}
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))

		// outside the graph there is no state to update
		_ = compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.TotalCostUSD += totalC
			s.LLMCalls++
			return nil
		})

		metrics.RecordUsage(modelName, usage, totalC)

		logx.Ctx(ctx).Debug().
			Str("model", modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")

		if ledger == nil {
			return
		}
		if err := ledger.Record(ctx, modelName, usage, totalC); err != nil {
			logx.Ctx(ctx).Error().Err(err).Str("model", modelName).Msg("failed to record usage")
		}
	}
}
