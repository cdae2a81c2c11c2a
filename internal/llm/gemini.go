package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/waste-to-wealth/server/internal/agent/graph/parsers"
	"github.com/waste-to-wealth/server/internal/agent/model"
	errx "github.com/waste-to-wealth/server/internal/core/error"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const serviceName = "gemini"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")

// UsageFunc receives the token usage of every successful model call.
type UsageFunc func(ctx context.Context, modelName string, usage *schema.TokenUsage)

// Config holds the configuration for the Gemini collaborator.
type Config struct {
	APIKey  string
	BaseURL string
	Model   model.LLMModelConfig
	OnUsage UsageFunc
}

// Gemini implements model.LLM. Free text goes through the Eino Gemini chat
// model so model callbacks fire; structured replies use the genai client
// directly with a response schema derived from the target type.
// Safe for concurrent use.
type Gemini struct {
	chat      *gemini.ChatModel
	models    *genai.Models
	modelName string
	cfg       model.LLMModelConfig
	onUsage   UsageFunc
}

var _ model.LLM = (*Gemini)(nil)

// NewGemini creates the genai client and the chat model on top of it.
func NewGemini(ctx context.Context, config Config) (*Gemini, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	mc := config.Model
	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:         client,
		Model:          mc.Model,
		Temperature:    &mc.Temperature,
		MaxTokens:      &mc.MaxTokens,
		ThinkingConfig: thinkingConfig(mc),
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &Gemini{
		chat:      chat,
		models:    client.Models,
		modelName: mc.Model,
		cfg:       mc,
		onUsage:   config.OnUsage,
	}, nil
}

// ModelName returns the configured model id.
func (g *Gemini) ModelName() string { return g.modelName }

func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := g.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", errx.WrapUpstream(serviceName, err)
	}
	if msg == nil {
		return "", ErrEmptyResponse
	}
	if msg.ResponseMeta != nil {
		g.reportUsage(ctx, msg.ResponseMeta.Usage)
	}
	// returned as produced, an empty reply included
	return msg.Content, nil
}

func (g *Gemini) CompleteStructured(ctx context.Context, system, user string, target any) error {
	respSchema, err := SchemaFor(target)
	if err != nil {
		return err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(system, genai.RoleUser),
		Temperature:        genai.Ptr(g.cfg.Temperature),
		MaxOutputTokens:    int32(g.cfg.MaxTokens),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: respSchema,
		ThinkingConfig:     thinkingConfig(g.cfg),
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(user), cfg)
	if err != nil {
		return errx.WrapUpstream(serviceName, err)
	}
	if resp == nil {
		return ErrEmptyResponse
	}
	g.reportUsage(ctx, usageOf(resp.UsageMetadata))

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	if err := parsers.DecodeJSON(text, target); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	if v, ok := target.(model.Validator); ok {
		return v.Validate()
	}
	return nil
}

func (g *Gemini) reportUsage(ctx context.Context, usage *schema.TokenUsage) {
	if usage == nil || g.onUsage == nil {
		return
	}
	g.onUsage(ctx, g.modelName, usage)
}

func usageOf(md *genai.GenerateContentResponseUsageMetadata) *schema.TokenUsage {
	if md == nil {
		return nil
	}
	return &schema.TokenUsage{
		PromptTokens:     int(md.PromptTokenCount),
		CompletionTokens: int(md.CandidatesTokenCount + md.ThoughtsTokenCount),
		TotalTokens:      int(md.TotalTokenCount),
	}
}

// thinkingConfig disables thoughts in the reply. A zero budget is only sent
// to flash models, the pro models reject it.
func thinkingConfig(mc model.LLMModelConfig) *genai.ThinkingConfig {
	if !strings.Contains(mc.Model, "2.5") {
		return nil
	}
	if mc.ThinkingBudget <= 0 && !strings.Contains(mc.Model, "flash") {
		return nil
	}
	budget := mc.ThinkingBudget
	if budget < 0 {
		budget = 0
	}
	return &genai.ThinkingConfig{
		IncludeThoughts: false,
		ThinkingBudget:  genai.Ptr(budget),
	}
}
