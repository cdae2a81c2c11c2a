package model

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// UsageLedger accumulates LLM token usage and cost per day and model.
type UsageLedger interface {
	// Record adds one model call to the ledger for the current UTC day.
	Record(ctx context.Context, modelName string, usage *schema.TokenUsage, costUSD float64) error

	// Daily returns the per-model totals for the given day.
	Daily(ctx context.Context, day time.Time) ([]UsageSummary, error)
}

// UsageSummary is the ledger total for one model on one day.
type UsageSummary struct {
	Model            string  `json:"model"`
	Calls            int64   `json:"calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
}
