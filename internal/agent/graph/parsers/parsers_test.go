package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

func TestParseWasteItems(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "two lines", content: "Plastic bottle\nUsed battery", want: []string{"Plastic bottle", "Used battery"}},
		{name: "trims and drops empties", content: "\n  Scrap tyre \r\n\n\nBanana peel\n", want: []string{"Scrap tyre", "Banana peel"}},
		{name: "caps at max", content: "a\nb\nc\nd", want: []string{"a", "b"}},
		{name: "empty reply", content: "   \n\n", want: []string{}},
		{name: "single item", content: "Glass jar", want: []string{"Glass jar"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseWasteItems(tc.content, 2))
		})
	}
}

func TestParseWasteItems_NonPositiveMax(t *testing.T) {
	require.Equal(t, []string{}, ParseWasteItems("a\nb", 0))
}

func TestParseWasteItems_OversizedContent(t *testing.T) {
	content := "Tyre\n" + strings.Repeat("x", maxContentLen)
	items := ParseWasteItems(content, 2)
	require.Len(t, items, 2)
	require.Equal(t, "Tyre", items[0])
}

func TestDecodeJSON_Object(t *testing.T) {
	var info model.WasteItemInfo
	err := DecodeJSON(`{"name":"tyre","category":"rubber","recyclability":"recyclable","health_risk":null,"reuse_ideas":["planter"]}`, &info)
	require.NoError(t, err)
	require.Equal(t, "rubber", info.Category)
	require.Nil(t, info.HealthRisk)
	require.Equal(t, []string{"planter"}, info.ReuseIdeas)
}

func TestDecodeJSON_CodeFenceAndProse(t *testing.T) {
	content := "Here you go:\n```json\n{\"category\":\"organic\",\"recyclability\":\"compostable\"}\n```"
	var info model.WasteItemInfo
	require.NoError(t, DecodeJSON(content, &info))
	require.Equal(t, "organic", info.Category)

	fenced := "```json\n{\"ideas\":[{\"title\":\"Compost\"}]}\n```"
	var ideas model.WealthIdeasResponse
	require.NoError(t, DecodeJSON(fenced, &ideas))
	require.Len(t, ideas.Ideas, 1)
}

func TestDecodeJSON_BareArrayIntoWrapper(t *testing.T) {
	var ideas model.WealthIdeasResponse
	require.NoError(t, DecodeJSON(`[{"title":"A"},{"title":"B"},{"title":"C"}]`, &ideas))
	require.Len(t, ideas.Ideas, 3)
}

func TestDecodeJSON_Errors(t *testing.T) {
	var info model.WasteItemInfo
	require.ErrorIs(t, DecodeJSON("no json here", &info), ErrNoJSON)
	require.Error(t, DecodeJSON(`{"category": }`, &info))
	require.Error(t, DecodeJSON(strings.Repeat(" ", maxContentLen+1), &info))
}
