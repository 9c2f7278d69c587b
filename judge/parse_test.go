package judge

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJudgement() *Judgement {
	orig := 9.0
	feas := 7.0
	return &Judgement{
		AcceptedIdeas: []AcceptedIdea{
			{
				IdeaName:         "Tidal Compute",
				QualityScore:     8.5,
				OriginalityScore: &orig,
				FeasibilityScore: &feas,
				KeyPoints:        []string{"uses off-peak energy", "site-local batching"},
			},
		},
		RejectedIdeas: []RejectedIdea{
			{IdeaName: "Perpetual Motion Cache", RejectionReason: "violates thermodynamics"},
		},
		Synthesis:          "One strong infrastructure idea.",
		TopRecommendations: []string{"prototype Tidal Compute"},
	}
}

func TestParseRoundTrip(t *testing.T) {
	want := sampleJudgement()
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	variants := map[string]string{
		"direct":       string(raw),
		"fenced json":  "```json\n" + string(raw) + "\n```",
		"fenced plain": "```\n" + string(raw) + "\n```",
		"embedded":     "Here is my evaluation:\n\n" + string(raw) + "\n\nLet me know.",
	}
	for name, text := range variants {
		t.Run(name, func(t *testing.T) {
			outcome := Parse(text)
			require.True(t, outcome.Parsed(), "reason: %s", outcome.Reason)
			got := outcome.Judgement
			assert.Equal(t, want.AcceptedIdeas, got.AcceptedIdeas)
			assert.Equal(t, want.RejectedIdeas, got.RejectedIdeas)
		})
	}
}

func TestParseUnparsableFallsBack(t *testing.T) {
	judgement := ParseOrFallback("not json at all")
	require.NotNil(t, judgement)
	assert.Empty(t, judgement.AcceptedIdeas)
	require.Len(t, judgement.RejectedIdeas, 1)
	assert.Equal(t, "Parse Error", judgement.RejectedIdeas[0].IdeaName)
	assert.Contains(t, judgement.RejectedIdeas[0].RejectionReason, "failed to parse")
}

func TestParseEmptyResponse(t *testing.T) {
	outcome := Parse("   \n  ")
	assert.False(t, outcome.Parsed())
	assert.Equal(t, "empty response", outcome.Reason)
}

func TestScoreDefaults(t *testing.T) {
	idea := AcceptedIdea{IdeaName: "bare", QualityScore: 7.0}
	assert.InDelta(t, 7.0, idea.Originality(), 1e-9)
	assert.InDelta(t, 5.0, idea.Feasibility(), 1e-9)
	assert.InDelta(t, 5.0, idea.Impact(), 1e-9)
	assert.InDelta(t, 7.0, idea.Substance(), 1e-9)
}

func TestParseManyEmbeddedObjectsPicksFirst(t *testing.T) {
	first := `{"accepted_ideas":[{"idea_name":"A","quality_score":8}],"rejected_ideas":[]}`
	text := fmt.Sprintf("prefix %s suffix {\"other\": true}", first)
	outcome := Parse(text)
	require.True(t, outcome.Parsed())
	require.Len(t, outcome.Judgement.AcceptedIdeas, 1)
	assert.Equal(t, "A", outcome.Judgement.AcceptedIdeas[0].IdeaName)
}
