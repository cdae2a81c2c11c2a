package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/waste-to-wealth/server/internal/agent/graph/parsers"
	"github.com/waste-to-wealth/server/internal/agent/graph/prompts"
	"github.com/waste-to-wealth/server/internal/agent/model"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const (
	MaxExtractedItems = 2
	MaxIdeas          = 2

	QuickAnswerFallback = "Sorry, I couldn't answer that right now."
)

// ContentSource returns the grounding text the extraction prompt is built from.
type ContentSource interface {
	Collect(ctx context.Context, query string) (string, error)
}

// Stages holds the pipeline steps. Every step reads the current state and
// returns only the field it owns; a failing step logs and returns its empty
// default so the pipeline always completes.
type Stages struct {
	llm    model.LLM
	source ContentSource
}

func NewStages(llm model.LLM, source ContentSource) *Stages {
	return &Stages{llm: llm, source: source}
}

// QuickAnswer answers the query directly, falling back to a fixed apology.
func (s *Stages) QuickAnswer(ctx context.Context, st model.WasteQueryState) string {
	start := time.Now()
	answer, err := s.quickAnswer(ctx, st.Query)
	observeStage(NodeQuickAnswer, start, err != nil)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("stage", NodeQuickAnswer).Msg("direct answer failed; using fallback")
		return QuickAnswerFallback
	}
	return answer
}

func (s *Stages) quickAnswer(ctx context.Context, query string) (string, error) {
	p, err := prompts.RenderQuickAnswer(ctx, query)
	if err != nil {
		return "", err
	}
	return s.llm.Complete(ctx, p.System, p.User)
}

// ExtractItems finds up to two concrete waste items mentioned in web content
// about the query.
func (s *Stages) ExtractItems(ctx context.Context, st model.WasteQueryState) []string {
	start := time.Now()
	items, err := s.extractItems(ctx, st.Query)
	observeStage(NodeExtractItems, start, err != nil)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("stage", NodeExtractItems).Msg("extraction failed")
		return []string{}
	}
	logx.Ctx(ctx).Info().Strs("items", items).Msg("extracted waste items")
	return items
}

func (s *Stages) extractItems(ctx context.Context, query string) ([]string, error) {
	content, err := s.source.Collect(ctx, query)
	if err != nil {
		return nil, err
	}
	p, err := prompts.RenderExtraction(ctx, query, content)
	if err != nil {
		return nil, err
	}
	reply, err := s.llm.Complete(ctx, p.System, p.User)
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}
	return parsers.ParseWasteItems(reply, MaxExtractedItems), nil
}

// AnalyzeItems classifies each extracted item in order. Items whose analysis
// fails are left out.
func (s *Stages) AnalyzeItems(ctx context.Context, st model.WasteQueryState) []model.WasteItemInfo {
	start := time.Now()
	infos := make([]model.WasteItemInfo, 0, len(st.ExtractedWasteItems))
	failed := 0
	for _, item := range st.ExtractedWasteItems {
		info, err := s.analyzeItem(ctx, item, st.Query)
		if err != nil {
			failed++
			logx.Ctx(ctx).Error().Err(err).
				Str("stage", NodeAnalyzeItems).
				Str("item", item).
				Msg("item analysis failed; skipping")
			continue
		}
		infos = append(infos, info)
	}
	observeStage(NodeAnalyzeItems, start, failed > 0)
	return infos
}

func (s *Stages) analyzeItem(ctx context.Context, item, query string) (model.WasteItemInfo, error) {
	p, err := prompts.RenderAnalysis(ctx, item, query)
	if err != nil {
		return model.WasteItemInfo{}, err
	}
	var info model.WasteItemInfo
	if err := s.llm.CompleteStructured(ctx, p.System, p.User, &info); err != nil {
		return model.WasteItemInfo{}, err
	}
	if err := info.Validate(); err != nil {
		return model.WasteItemInfo{}, err
	}
	// keep the extraction vocabulary even if the model renamed the item
	info.Name = item
	if info.ReuseIdeas == nil {
		info.ReuseIdeas = []string{}
	}
	return info, nil
}

// GenerateIdeas asks for income ideas built from the analyzed items. It runs
// even when no item was analyzed.
func (s *Stages) GenerateIdeas(ctx context.Context, st model.WasteQueryState) []model.WealthIdea {
	start := time.Now()
	ideas, err := s.generateIdeas(ctx, st.ItemsInfo)
	observeStage(NodeGenerateIdeas, start, err != nil)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Str("stage", NodeGenerateIdeas).Msg("idea generation failed")
		return []model.WealthIdea{}
	}
	return ideas
}

func (s *Stages) generateIdeas(ctx context.Context, infos []model.WasteItemInfo) ([]model.WealthIdea, error) {
	p, err := prompts.RenderIdeas(ctx, WasteSummary(infos))
	if err != nil {
		return nil, err
	}
	var resp model.WealthIdeasResponse
	if err := s.llm.CompleteStructured(ctx, p.System, p.User, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	ideas := firstN(resp.Ideas, MaxIdeas)
	out := make([]model.WealthIdea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.RequiredMaterials == nil {
			idea.RequiredMaterials = []string{}
		}
		out = append(out, idea)
	}
	return out, nil
}

// WasteSummary renders one "name (category)" line per analyzed item.
func WasteSummary(infos []model.WasteItemInfo) string {
	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%s (%s)", info.Name, info.Category))
	}
	return strings.Join(lines, "\n")
}
