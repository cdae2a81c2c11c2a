package model

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen inside Eino state handlers or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as it is never touched outside them.
type AppState struct {
	RequestID string
	Route     string // NodeQuickAnswer or NodeExtractItems, set by the entry branch

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
	LLMCalls     int
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	RequestID string `json:"request_id,omitempty"`
	Query     string `json:"query"`
}
