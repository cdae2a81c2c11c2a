package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w2w_http_requests_total",
			Help: "Total number of API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "w2w_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"route"},
	)

	QueryRoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w2w_query_routes_total",
			Help: "Queries by pipeline route (quick_answer or extract_items)",
		},
		[]string{"route"},
	)

	StageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w2w_stage_runs_total",
			Help: "Pipeline stage executions by outcome",
		},
		[]string{"stage", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "w2w_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w2w_llm_tokens_total",
			Help: "LLM tokens consumed by model and kind (prompt, completion)",
		},
		[]string{"model", "kind"},
	)

	LLMCostUSDTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "w2w_llm_cost_usd_total",
			Help: "Estimated LLM spend in USD by model",
		},
		[]string{"model"},
	)
)

// RecordStage counts one stage run and its duration.
func RecordStage(stage, outcome string, d time.Duration) {
	StageRunsTotal.WithLabelValues(stage, outcome).Inc()
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func RecordRoute(route string) {
	QueryRoutesTotal.WithLabelValues(route).Inc()
}

// RecordUsage adds one model call's tokens and cost.
func RecordUsage(model string, usage *schema.TokenUsage, costUSD float64) {
	if usage == nil {
		return
	}
	LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
	if costUSD > 0 {
		LLMCostUSDTotal.WithLabelValues(model).Add(costUSD)
	}
}

func RecordRequest(route string, code int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
