package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

func TestSchemaFor_WasteItemInfo(t *testing.T) {
	s, err := SchemaFor(&model.WasteItemInfo{})
	require.NoError(t, err)
	require.Equal(t, "object", s.Type)
	require.Equal(t, []string{"name", "category", "recyclability", "reuse_ideas"}, s.Required)

	var keys []string
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	require.Equal(t, []string{"name", "category", "recyclability", "health_risk", "reuse_ideas"}, keys)

	risk, ok := s.Properties.Get("health_risk")
	require.True(t, ok)
	require.Equal(t, "string", risk.Type)

	reuse, ok := s.Properties.Get("reuse_ideas")
	require.True(t, ok)
	require.Equal(t, "array", reuse.Type)
	require.Equal(t, "string", reuse.Items.Type)
	require.NotEmpty(t, reuse.Description)

	category, _ := s.Properties.Get("category")
	require.Contains(t, category.Description, "organic, plastic")
}

func TestSchemaFor_WealthIdeasResponse(t *testing.T) {
	s, err := SchemaFor(model.WealthIdeasResponse{})
	require.NoError(t, err)
	require.Equal(t, []string{"ideas"}, s.Required)

	ideas, ok := s.Properties.Get("ideas")
	require.True(t, ok)
	require.Equal(t, "array", ideas.Type)
	require.Equal(t, "object", ideas.Items.Type)
	require.Contains(t, ideas.Items.Required, "required_materials")
	require.NotContains(t, ideas.Items.Required, "estimated_value")
}

func TestSchemaFor_InlinesWithoutMetaKeywords(t *testing.T) {
	s, err := SchemaFor(&model.WealthIdeasResponse{})
	require.NoError(t, err)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "$schema")
	require.NotContains(t, string(raw), "$ref")
	require.NotContains(t, string(raw), "$defs")
	require.NotContains(t, string(raw), "$id")
}

func TestSchemaFor_Rejects(t *testing.T) {
	_, err := SchemaFor("text")
	require.Error(t, err)

	_, err = SchemaFor(nil)
	require.Error(t, err)
}
