package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	// IdeasRegion is the economic context the idea prompt is framed for.
	IdeasRegion = "rural or urban Kenya"
	// IdeaCount is how many ideas the model is asked for.
	IdeaCount = 2
	// maxAnalysisContent bounds the grounding text embedded in the analysis prompt.
	maxAnalysisContent = 2500
)

var (
	//go:embed template/quick_answer_system.txt
	quickAnswerSystem string
	//go:embed template/extraction_system.txt
	extractionSystem string
	//go:embed template/extraction_user.txt
	extractionUser string
	//go:embed template/analysis_system.txt
	analysisSystem string
	//go:embed template/analysis_user.txt
	analysisUser string
	//go:embed template/ideas_system.txt
	ideasSystem string
	//go:embed template/ideas_user.txt
	ideasUser string
)

// Rendered is a system instruction plus user message ready for the LLM.
type Rendered struct {
	System string
	User   string
}

// RenderQuickAnswer renders the direct-answer prompt; the query is passed as is.
func RenderQuickAnswer(ctx context.Context, query string) (Rendered, error) {
	return render(ctx, "quick_answer", quickAnswerSystem, "{{.Query}}", map[string]any{
		"Query": query,
	})
}

// RenderExtraction renders the waste item extraction prompt over the scraped content.
func RenderExtraction(ctx context.Context, query, content string) (Rendered, error) {
	return render(ctx, "extraction", extractionSystem, extractionUser, map[string]any{
		"Query":   query,
		"Content": content,
	})
}

// RenderAnalysis renders the per-item analysis prompt. content is cut to
// 2500 characters.
func RenderAnalysis(ctx context.Context, item, content string) (Rendered, error) {
	return render(ctx, "analysis", analysisSystem, analysisUser, map[string]any{
		"Item":    item,
		"Content": truncateRunes(content, maxAnalysisContent),
	})
}

// RenderIdeas renders the waste-to-wealth idea prompt from the
// "name (category)" lines built by the generate stage.
func RenderIdeas(ctx context.Context, wasteInfo string) (Rendered, error) {
	return render(ctx, "ideas", ideasSystem, ideasUser, map[string]any{
		"WasteInfo": wasteInfo,
		"Region":    IdeasRegion,
		"IdeaCount": IdeaCount,
	})
}

// render formats both messages through the Eino prompt component so Prompt
// callbacks fire for every render.
func render(ctx context.Context, name, system, user string, vars map[string]any) (Rendered, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(strings.TrimSpace(system)),
		schema.UserMessage(user),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return Rendered{}, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return Rendered{}, fmt.Errorf("%s prompt render: unexpected result", name)
	}
	return Rendered{System: msgs[0].Content, User: msgs[1].Content}, nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
