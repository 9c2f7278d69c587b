// Package judge implements the evaluation side of the pipeline: the
// structured judgement an evaluation model produces over a batch of refined
// ideas, the tolerant parsing of that judgement from free text, and the
// statistics derived from it.
package judge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/museworks/ideaflow/log"
	"github.com/museworks/ideaflow/model"
)

// DefaultAcceptanceThreshold is the overall score at or above which an idea
// is accepted.
const DefaultAcceptanceThreshold = 6.0

// AcceptedIdea is one entry of the judgement's accepted partition. Optional
// sub-scores are pointers; Score* accessors apply the documented defaults.
type AcceptedIdea struct {
	IdeaName         string   `json:"idea_name"`
	QualityScore     float64  `json:"quality_score"`
	OriginalityScore *float64 `json:"originality_score,omitempty"`
	FeasibilityScore *float64 `json:"feasibility_score,omitempty"`
	ImpactScore      *float64 `json:"impact_score,omitempty"`
	SubstanceScore   *float64 `json:"substance_score,omitempty"`
	KeyPoints        []string `json:"key_points,omitempty"`
}

// Originality returns the originality sub-score, defaulting to the overall
// quality score when the judge omitted it.
func (a *AcceptedIdea) Originality() float64 {
	if a.OriginalityScore != nil {
		return *a.OriginalityScore
	}
	return a.QualityScore
}

// Feasibility returns the feasibility sub-score, defaulting to 5.0.
func (a *AcceptedIdea) Feasibility() float64 {
	if a.FeasibilityScore != nil {
		return *a.FeasibilityScore
	}
	return 5.0
}

// Impact returns the impact sub-score, defaulting to 5.0.
func (a *AcceptedIdea) Impact() float64 {
	if a.ImpactScore != nil {
		return *a.ImpactScore
	}
	return 5.0
}

// Substance returns the substance sub-score, defaulting to the overall
// quality score.
func (a *AcceptedIdea) Substance() float64 {
	if a.SubstanceScore != nil {
		return *a.SubstanceScore
	}
	return a.QualityScore
}

// RejectedIdea is one entry of the judgement's rejected partition.
type RejectedIdea struct {
	IdeaName        string  `json:"idea_name"`
	RejectionReason string  `json:"rejection_reason"`
	QualityScore    float64 `json:"quality_score,omitempty"`
}

// Judgement is the structured accepted/rejected partition the evaluation
// model produces. The JSON field names are a wire contract shared with the
// prompt templates; do not rename them.
type Judgement struct {
	AcceptedIdeas       []AcceptedIdea `json:"accepted_ideas"`
	RejectedIdeas       []RejectedIdea `json:"rejected_ideas"`
	Synthesis           string         `json:"synthesis,omitempty"`
	TopRecommendations  []string       `json:"top_recommendations,omitempty"`
	StrategicInsights   []string       `json:"strategic_insights,omitempty"`
	UnresolvedQuestions []string       `json:"unresolved_questions,omitempty"`
}

// Evaluation is the per-idea record derived from a Judgement, persisted for
// audit and threaded through ExecutionState.
type Evaluation struct {
	IdeaID           string    `json:"idea_id"`
	IdeaName         string    `json:"idea_name"`
	OriginalityScore float64   `json:"originality_score"`
	FeasibilityScore float64   `json:"feasibility_score"`
	ImpactScore      float64   `json:"impact_score"`
	SubstanceScore   float64   `json:"substance_score"`
	OverallScore     float64   `json:"overall_quality_score"`
	Accepted         bool      `json:"accepted"`
	RejectionReasons []string  `json:"rejection_reasons,omitempty"`
	KeyPoints        []string  `json:"key_points,omitempty"`
	SourceModel      string    `json:"model_id"`
	Iteration        int       `json:"iteration"`
	JudgeModel       string    `json:"judge_model"`
	EvaluatedAt      time.Time `json:"evaluation_timestamp"`
}

// Judge sends refinement output to an independent evaluation model and parses
// its judgement. The judge model is deliberately separate from the generation
// models to avoid self-judging bias.
type Judge struct {
	invoker   model.Invoker
	prompter  PromptBuilder
	threshold float64
}

// PromptBuilder renders the evaluation prompt for a batch of refined ideas.
// Prompt content is external to the engine; the engine only requires that the
// rendered prompt asks for the Judgement JSON shape.
type PromptBuilder interface {
	BuildJudgePrompt(refinementOutput string, threshold float64) string
}

// PromptBuilderFunc adapts a function to the PromptBuilder interface.
type PromptBuilderFunc func(refinementOutput string, threshold float64) string

// BuildJudgePrompt implements PromptBuilder.
func (f PromptBuilderFunc) BuildJudgePrompt(refinementOutput string, threshold float64) string {
	return f(refinementOutput, threshold)
}

// Option configures a Judge.
type Option func(*Judge)

// WithThreshold overrides the acceptance threshold communicated to the model.
func WithThreshold(threshold float64) Option {
	return func(j *Judge) { j.threshold = threshold }
}

// New creates a Judge over the given evaluation model.
func New(invoker model.Invoker, prompter PromptBuilder, opts ...Option) *Judge {
	j := &Judge{
		invoker:   invoker,
		prompter:  prompter,
		threshold: DefaultAcceptanceThreshold,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ModelName returns the judge model identifier for audit records.
func (j *Judge) ModelName() string { return j.invoker.Info().Model }

// Threshold returns the configured acceptance threshold.
func (j *Judge) Threshold() float64 { return j.threshold }

// Evaluate sends the refinement output to the evaluation model and returns
// its judgement. A response that cannot be parsed does not fail the call: the
// parse fallback substitutes an empty judgement with a synthetic rejection
// explaining the failure. Only a transport-level invocation error is returned
// as an error.
func (j *Judge) Evaluate(ctx context.Context, refinementOutput string) (*Judgement, error) {
	judgement, _, err := j.EvaluateRaw(ctx, refinementOutput)
	return judgement, err
}

// EvaluateRaw is Evaluate plus the raw model response, for callers that keep
// the unparsed payload around.
func (j *Judge) EvaluateRaw(ctx context.Context, refinementOutput string) (*Judgement, string, error) {
	prompt := j.prompter.BuildJudgePrompt(refinementOutput, j.threshold)
	response, err := j.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("judge invocation: %w", err)
	}
	judgement := ParseOrFallback(response)
	log.Infof("judge returned %d accepted and %d rejected ideas",
		len(judgement.AcceptedIdeas), len(judgement.RejectedIdeas))
	return judgement, response, nil
}

// Records expands a judgement into per-idea Evaluation records. Idea IDs are
// formed as {runID}_{iteration}_{name-with-underscores}.
func (j *Judge) Records(judgement *Judgement, runID string, iteration int) []Evaluation {
	now := time.Now()
	records := make([]Evaluation, 0, len(judgement.AcceptedIdeas)+len(judgement.RejectedIdeas))
	for _, idea := range judgement.AcceptedIdeas {
		records = append(records, Evaluation{
			IdeaID:           ideaID(runID, iteration, idea.IdeaName),
			IdeaName:         ideaName(idea.IdeaName),
			OriginalityScore: idea.Originality(),
			FeasibilityScore: idea.Feasibility(),
			ImpactScore:      idea.Impact(),
			SubstanceScore:   idea.Substance(),
			OverallScore:     idea.QualityScore,
			Accepted:         true,
			KeyPoints:        idea.KeyPoints,
			Iteration:        iteration,
			JudgeModel:       j.ModelName(),
			EvaluatedAt:      now,
		})
	}
	for _, idea := range judgement.RejectedIdeas {
		score := idea.QualityScore
		if score == 0 {
			score = 3.0
		}
		records = append(records, Evaluation{
			IdeaID:           ideaID(runID, iteration, idea.IdeaName),
			IdeaName:         ideaName(idea.IdeaName),
			OriginalityScore: score,
			FeasibilityScore: score,
			ImpactScore:      score,
			SubstanceScore:   score,
			OverallScore:     score,
			Accepted:         false,
			RejectionReasons: []string{idea.RejectionReason},
			Iteration:        iteration,
			JudgeModel:       j.ModelName(),
			EvaluatedAt:      now,
		})
	}
	return records
}

func ideaName(name string) string {
	if name == "" {
		return "Unknown Idea"
	}
	return name
}

func ideaID(runID string, iteration int, name string) string {
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("%s_%d_%s", runID, iteration, strings.ReplaceAll(name, " ", "_"))
}
