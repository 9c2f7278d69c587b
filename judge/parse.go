package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/museworks/ideaflow/log"
)

// Outcome is the result of a parse attempt: either a judgement or the reason
// it could not be parsed. Exactly one of Judgement and Reason is meaningful.
type Outcome struct {
	Judgement *Judgement
	Reason    string
}

// Parsed reports whether the outcome carries a judgement.
func (o Outcome) Parsed() bool { return o.Judgement != nil }

// parseStrategy is one way of turning model output into a Judgement.
type parseStrategy struct {
	name string
	fn   func(text string) (*Judgement, error)
}

// strategies are tried in order; the first success wins.
var strategies = []parseStrategy{
	{"direct", parseDirect},
	{"fenced", parseFenced},
	{"embedded", parseEmbedded},
}

// Parse attempts each strategy in order over the raw model output and
// returns the first successful judgement, or an Outcome carrying the reason
// none applied.
func Parse(text string) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Outcome{Reason: "empty response"}
	}
	var lastErr error
	for _, s := range strategies {
		judgement, err := s.fn(trimmed)
		if err == nil {
			if s.name != "direct" {
				log.Debugf("judgement parsed via %s strategy", s.name)
			}
			return Outcome{Judgement: judgement}
		}
		lastErr = err
	}
	return Outcome{Reason: fmt.Sprintf("no parse strategy applied: %v", lastErr)}
}

// ParseOrFallback parses the raw model output, substituting the fallback
// judgement when nothing applies. It never returns nil: a run must not crash
// because a judgement could not be parsed.
func ParseOrFallback(text string) *Judgement {
	outcome := Parse(text)
	if outcome.Parsed() {
		return outcome.Judgement
	}
	log.Errorf("failed to parse judgement: %s", outcome.Reason)
	return Fallback(outcome.Reason)
}

// Fallback is the judgement substituted when parsing fails: zero accepted
// ideas and a single synthetic rejection naming the parse failure.
func Fallback(reason string) *Judgement {
	return &Judgement{
		AcceptedIdeas: []AcceptedIdea{},
		RejectedIdeas: []RejectedIdea{{
			IdeaName:        "Parse Error",
			RejectionReason: fmt.Sprintf("failed to parse judge response: %s", reason),
		}},
		Synthesis:           "Error in judge evaluation",
		TopRecommendations:  []string{},
		StrategicInsights:   []string{},
		UnresolvedQuestions: []string{},
	}
}

// parseDirect parses the whole text as JSON.
func parseDirect(text string) (*Judgement, error) {
	var judgement Judgement
	if err := json.Unmarshal([]byte(text), &judgement); err != nil {
		return nil, err
	}
	return &judgement, nil
}

// parseFenced strips a surrounding markdown code fence and parses the body.
func parseFenced(text string) (*Judgement, error) {
	cleaned := text
	switch {
	case strings.HasPrefix(cleaned, "```json"):
		cleaned = strings.TrimSpace(cleaned[len("```json"):])
	case strings.HasPrefix(cleaned, "```"):
		cleaned = strings.TrimSpace(cleaned[len("```"):])
	default:
		return nil, fmt.Errorf("no code fence")
	}
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	return parseDirect(cleaned)
}

// parseEmbedded extracts the first balanced JSON object from surrounding
// prose and parses it.
func parseEmbedded(text string) (*Judgement, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found")
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return parseDirect(text[start : i+1])
			}
		}
	}
	return nil, fmt.Errorf("unbalanced JSON object")
}
