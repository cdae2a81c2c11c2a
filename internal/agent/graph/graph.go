package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/waste-to-wealth/server/internal/agent/graph/nodes"
	"github.com/waste-to-wealth/server/internal/agent/graph/observers"
	"github.com/waste-to-wealth/server/internal/agent/graph/sources"
	"github.com/waste-to-wealth/server/internal/agent/model"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

// maxRunSteps covers the longest route: converter, extract, analyze, generate.
const maxRunSteps = 10

// Runner executes the compiled graph for one query.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (model.WasteQueryState, error)
}

// Config holds the collaborators the pipeline is composed from.
type Config struct {
	LLM         model.LLM
	Searcher    model.Searcher
	Scraper     model.Scraper
	SearchLimit int
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	Stages *nodes.Stages
}

// GraphBuilder handles the construction of the waste query graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.WasteQueryState]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.WasteQueryState]
}

func (r *graphRunner) Run(ctx context.Context, in model.QueryInput) (model.WasteQueryState, error) {
	if in.RequestID == "" {
		in.RequestID = uuid.NewString()
	}
	ctx = logx.WithRequestID(ctx, in.RequestID)

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Msg("graph run failed")
		return model.WasteQueryState{}, fmt.Errorf("run graph: %w", err)
	}
	if out == nil {
		return model.NewWasteQueryState(in.Query).Shaped(), nil
	}
	return out.Shaped(), nil
}

// BuildRunner wires the collaborators into stages, builds the graph and
// returns a Runner.
func BuildRunner(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("llm is nil")
	}
	if cfg.Searcher == nil || cfg.Scraper == nil {
		return nil, fmt.Errorf("searcher and scraper are required")
	}

	collector := sources.NewCollector(cfg.Searcher, cfg.Scraper, cfg.SearchLimit)
	runnable, err := BuildGraph(ctx, &GraphConfig{
		Stages: nodes.NewStages(cfg.LLM, collector),
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Waste query graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.WasteQueryState], error) {
	if config == nil || config.Stages == nil {
		return nil, fmt.Errorf("graph config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.WasteQueryState](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	st := b.config.Stages
	steps := []struct {
		key  string
		node *compose.Lambda
		opts []compose.GraphAddNodeOpt
	}{
		{nodes.NodeInputConverter, nodes.NewInputConverterNode(), []compose.GraphAddNodeOpt{
			compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
		}},
		{nodes.NodeQuickAnswer, nodes.NewQuickAnswerNode(st), []compose.GraphAddNodeOpt{
			compose.WithStatePostHandler(nodes.NewCostSummaryPostHandler(nodes.NodeQuickAnswer)),
		}},
		{nodes.NodeExtractItems, nodes.NewExtractItemsNode(st), nil},
		{nodes.NodeAnalyzeItems, nodes.NewAnalyzeItemsNode(st), nil},
		{nodes.NodeGenerateIdeas, nodes.NewGenerateIdeasNode(st), []compose.GraphAddNodeOpt{
			compose.WithStatePostHandler(nodes.NewCostSummaryPostHandler(nodes.NodeGenerateIdeas)),
		}},
	}

	for _, s := range steps {
		opts := append([]compose.GraphAddNodeOpt{compose.WithNodeName(s.key)}, s.opts...)
		if err := b.graph.AddLambdaNode(s.key, s.node, opts...); err != nil {
			logx.Error().Err(err).Str("node", s.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.key, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeQuickAnswer, compose.END},
		{nodes.NodeExtractItems, nodes.NodeAnalyzeItems},
		{nodes.NodeAnalyzeItems, nodes.NodeGenerateIdeas},
		{nodes.NodeGenerateIdeas, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("error adding edge %s: %w", strings.Join(edge[:], "->"), err)
		}
	}
	return nil
}

// addBranches creates the entry routing branch
func (b *GraphBuilder) addBranches() error {
	routeBranch := compose.NewGraphBranch(
		nodes.NewRouteCondition(),
		map[string]bool{
			nodes.NodeQuickAnswer:  true,
			nodes.NodeExtractItems: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeInputConverter, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding route branch")
		return fmt.Errorf("error adding route branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.WasteQueryState], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("waste_to_wealth"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
