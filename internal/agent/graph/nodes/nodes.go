package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/metrics"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// NewInputConverterPreHandler creates the pre-handler for InputConverter node
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		if s.RequestID == "" {
			s.RequestID = in.RequestID
		}
		// Reset accumulated total cost for each new query
		s.TotalCostUSD = 0
		s.LLMCalls = 0
		return in, nil
	}
}

// NewInputConverterNode turns the public input into a fresh pipeline state.
func NewInputConverterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (*model.WasteQueryState, error) {
		return model.NewWasteQueryState(input.Query), nil
	})
}

// NewRouteCondition picks the direct-answer node or the search pipeline.
func NewRouteCondition() func(context.Context, *model.WasteQueryState) (string, error) {
	return func(ctx context.Context, in *model.WasteQueryState) (string, error) {
		route := NodeExtractItems
		if IsDirectQuestion(in.Query) {
			route = NodeQuickAnswer
		}
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.Route = route
			return nil
		})
		if err != nil {
			logx.Ctx(ctx).Warn().Err(err).Str("route", route).Msg("failed to record route in graph state")
		}
		metrics.RecordRoute(route)
		logx.Ctx(ctx).Debug().Str("route", route).Msg("query routed")
		return route, nil
	}
}

func NewQuickAnswerNode(st *Stages) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.WasteQueryState) (*model.WasteQueryState, error) {
		out := *in
		answer := st.QuickAnswer(ctx, *in)
		out.QuickAnswer = &answer
		return &out, nil
	})
}

func NewExtractItemsNode(st *Stages) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.WasteQueryState) (*model.WasteQueryState, error) {
		out := *in
		out.ExtractedWasteItems = st.ExtractItems(ctx, *in)
		return &out, nil
	})
}

func NewAnalyzeItemsNode(st *Stages) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.WasteQueryState) (*model.WasteQueryState, error) {
		out := *in
		out.ItemsInfo = st.AnalyzeItems(ctx, *in)
		return &out, nil
	})
}

func NewGenerateIdeasNode(st *Stages) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.WasteQueryState) (*model.WasteQueryState, error) {
		out := *in
		out.WealthIdeas = st.GenerateIdeas(ctx, *in)
		return &out, nil
	})
}

// NewCostSummaryPostHandler logs the accumulated LLM spend once the final
// node of a route has run.
func NewCostSummaryPostHandler(node string) func(context.Context, *model.WasteQueryState, *model.AppState) (*model.WasteQueryState, error) {
	return func(ctx context.Context, out *model.WasteQueryState, state *model.AppState) (*model.WasteQueryState, error) {
		logx.Ctx(ctx).Info().
			Str("request_id", state.RequestID).
			Str("node", node).
			Str("route", state.Route).
			Int("llm_calls", state.LLMCalls).
			Float64("total_cost_usd", state.TotalCostUSD).
			Msg("query completed")
		return out, nil
	}
}
