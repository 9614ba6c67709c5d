package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexYearUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FlexYear
	}{
		{"number", `2019`, 2019},
		{"quoted_string", `"2019"`, 2019},
		{"null", `null`, 0},
		{"empty_string", `""`, 0},
		{"unparseable", `"around 2010"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var y FlexYear
			require.NoError(t, json.Unmarshal([]byte(tt.in), &y))
			assert.Equal(t, tt.want, y)
		})
	}
}

func TestFlexYearMarshal(t *testing.T) {
	out, err := json.Marshal(FlexYear(2019))
	require.NoError(t, err)
	assert.Equal(t, `2019`, string(out))

	out, err = json.Marshal(FlexYear(0))
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestInsightDataWireNames(t *testing.T) {
	payload := `{
		"company": {"name": "Acme", "foundingYear": "2021"},
		"leadership/Managers/Administration": [{"name": "Jane Doe", "role": "Owner"}],
		"socialMedia": [{"platform": "instagram", "url": "https://instagram.com/acme"}],
		"publicPosts/JobPosts": [{"date": "2026-07-01", "content": "hiring for marketing", "source": "linkedin"}],
		"marketing_intent_analysis": "growing",
		"approachable_fileds": [{"field": "marketing", "description": "no in-house team"}],
		"possibility": "high"
	}`

	var data InsightData
	require.NoError(t, json.Unmarshal([]byte(payload), &data))

	assert.Equal(t, "Acme", data.Company.Name)
	assert.Equal(t, FlexYear(2021), data.Company.FoundingYear)
	require.Len(t, data.Leadership, 1)
	assert.Equal(t, "Jane Doe", data.Leadership[0].Name)
	require.Len(t, data.Posts, 1)
	assert.Equal(t, "hiring for marketing", data.Posts[0].Content)
	require.Len(t, data.Approachable, 1)
	assert.Equal(t, "marketing", data.Approachable[0].Field)

	// The misspelled upstream key survives a round trip.
	out, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"approachable_fileds"`)
	assert.Contains(t, string(out), `"leadership/Managers/Administration"`)
	assert.Contains(t, string(out), `"publicPosts/JobPosts"`)
}

func TestInsightHelpers(t *testing.T) {
	structured := Insight{Structured: &InsightData{
		Company: InsightCompany{FoundingYear: 2024},
		Posts:   []InsightPost{{Content: "new store opening"}},
	}}

	year, ok := structured.FoundingYear()
	assert.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Len(t, structured.PublicPosts(), 1)

	raw := Insight{Raw: "some prose"}
	_, ok = raw.FoundingYear()
	assert.False(t, ok)
	assert.Nil(t, raw.PublicPosts())

	errored := Insight{Err: &InsightError{Error: "analysis service error", Status: "429"}}
	_, ok = errored.FoundingYear()
	assert.False(t, ok)
	assert.Nil(t, errored.PublicPosts())
}
