package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutput marks a structured reply that decoded but misses a
// required field.
var ErrInvalidOutput = errors.New("invalid structured output")

// Validator is implemented by structured reply types that can reject a
// decoded but incomplete reply.
type Validator interface {
	Validate() error
}

// WasteItemInfo is the structured analysis of one extracted waste item.
type WasteItemInfo struct {
	Name          string   `json:"name" jsonschema:"required" jsonschema_description:"the waste item, e.g. banana peel"`
	Category      string   `json:"category" jsonschema:"required" jsonschema_description:"organic, plastic, electronic, metal, glass, paper, textile, rubber or hazardous"`
	Recyclability string   `json:"recyclability" jsonschema:"required" jsonschema_description:"recyclable, compostable or non-recyclable"`
	HealthRisk    *string  `json:"health_risk" jsonschema_description:"health or environmental risk, omitted when none"`
	ReuseIdeas    []string `json:"reuse_ideas" jsonschema:"required" jsonschema_description:"two or three practical reuse ideas"`
}

// Validate rejects an analysis without category or recyclability.
func (i WasteItemInfo) Validate() error {
	if strings.TrimSpace(i.Category) == "" {
		return fmt.Errorf("%w: waste item category is empty", ErrInvalidOutput)
	}
	if strings.TrimSpace(i.Recyclability) == "" {
		return fmt.Errorf("%w: waste item recyclability is empty", ErrInvalidOutput)
	}
	return nil
}

// WealthIdea is a practical way to turn waste into income.
type WealthIdea struct {
	Title             string   `json:"title" jsonschema:"required" jsonschema_description:"short name of the income idea"`
	Description       string   `json:"description" jsonschema:"required" jsonschema_description:"what the idea is and who buys the output"`
	RequiredMaterials []string `json:"required_materials" jsonschema:"required" jsonschema_description:"materials and tools needed"`
	EstimatedValue    *string  `json:"estimated_value" jsonschema_description:"rough earnings, e.g. Ksh 3,000 per month"`
}

func (w WealthIdea) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("%w: idea title is empty", ErrInvalidOutput)
	}
	if strings.TrimSpace(w.Description) == "" {
		return fmt.Errorf("%w: idea description is empty", ErrInvalidOutput)
	}
	return nil
}

// WealthIdeasResponse wraps the idea list for structured output; Gemini
// response schemas are declared with an object root.
type WealthIdeasResponse struct {
	Ideas []WealthIdea `json:"ideas" jsonschema:"required"`
}

// UnmarshalJSON accepts both {"ideas": [...]} and a bare idea array.
func (r *WealthIdeasResponse) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Ideas)
	}
	type plain WealthIdeasResponse
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = WealthIdeasResponse(p)
	return nil
}

// Validate fails when the ideas list is missing or any idea is incomplete.
func (r WealthIdeasResponse) Validate() error {
	if r.Ideas == nil {
		return fmt.Errorf("%w: ideas missing", ErrInvalidOutput)
	}
	for i, idea := range r.Ideas {
		if err := idea.Validate(); err != nil {
			return fmt.Errorf("idea %d: %w", i, err)
		}
	}
	return nil
}

// WasteQueryState is the per-request result threaded through the pipeline
// and returned by POST /api/analyze.
type WasteQueryState struct {
	Query               string          `json:"query"`
	ExtractedWasteItems []string        `json:"extracted_waste_items"`
	ItemsInfo           []WasteItemInfo `json:"items_info"`
	WealthIdeas         []WealthIdea    `json:"wealth_ideas"`
	Analysis            *string         `json:"analysis"`
	QuickAnswer         *string         `json:"quick_answer"`
}

// NewWasteQueryState returns a fresh state for query with empty collections.
func NewWasteQueryState(query string) *WasteQueryState {
	return &WasteQueryState{
		Query:               query,
		ExtractedWasteItems: []string{},
		ItemsInfo:           []WasteItemInfo{},
		WealthIdeas:         []WealthIdea{},
	}
}

// Shaped returns the externally visible form of s: collections are never nil,
// and a quick answer clears every structured field and the analysis.
func (s WasteQueryState) Shaped() WasteQueryState {
	out := s
	if out.QuickAnswer != nil {
		out.ExtractedWasteItems = []string{}
		out.ItemsInfo = []WasteItemInfo{}
		out.WealthIdeas = []WealthIdea{}
		out.Analysis = nil
		return out
	}
	out.ExtractedWasteItems = append([]string{}, s.ExtractedWasteItems...)
	out.ItemsInfo = append([]WasteItemInfo{}, s.ItemsInfo...)
	for i := range out.ItemsInfo {
		if out.ItemsInfo[i].ReuseIdeas == nil {
			out.ItemsInfo[i].ReuseIdeas = []string{}
		}
	}
	out.WealthIdeas = append([]WealthIdea{}, s.WealthIdeas...)
	for i := range out.WealthIdeas {
		if out.WealthIdeas[i].RequiredMaterials == nil {
			out.WealthIdeas[i].RequiredMaterials = []string{}
		}
	}
	return out
}
