package pipeline

import (
	"fmt"
	"strings"

	"github.com/museworks/ideaflow/discovery"
)

// Prompter bundles the prompt builders the concrete stages call out to.
// Prompt content is external to the orchestration engine; these defaults are
// plain renderings that callers usually replace with their own templates.
type Prompter struct {
	Seed       discovery.SeedPrompter
	Creative   func(task, seedContext string, priorAccepted int) string
	Refinement func(task, creativeOutput string) string
	Judge      func(refinementOutput string, threshold float64) string
	Research   func(task, payload string) string
}

// DefaultPrompter returns the built-in prompt renderings.
func DefaultPrompter() *Prompter {
	return &Prompter{
		Seed:       discovery.SeedPrompterFunc(defaultSeedPrompt),
		Creative:   defaultCreativePrompt,
		Refinement: defaultRefinementPrompt,
		Judge:      defaultJudgePrompt,
		Research:   defaultResearchPrompt,
	}
}

func defaultSeedPrompt(task string, ordinal int) string {
	return fmt.Sprintf(`Give me one concept from a field unrelated to the task below.
This is stimulus #%d, so pick something different from the obvious choices.

Task: %s

Respond with a single JSON object:
{"term": "...", "context": "one sentence about the concept", "relevance": "one sentence on an unexpected link to the task"}`,
		ordinal, task)
}

func defaultCreativePrompt(task string, seedContext string, priorAccepted int) string {
	var b strings.Builder
	b.WriteString("Generate bold, unconventional ideas for the following task. ")
	b.WriteString("Favor breadth over polish; wild directions are welcome.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", task)
	if seedContext != "" {
		b.WriteString("\nUse these tangential concepts as creative stimuli:\n")
		b.WriteString(seedContext)
		b.WriteString("\n")
	}
	if priorAccepted > 0 {
		fmt.Fprintf(&b, "\n%d ideas were already accepted in earlier passes; explore directions not yet covered.\n", priorAccepted)
	}
	return b.String()
}

func defaultRefinementPrompt(task string, creativeOutput string) string {
	return fmt.Sprintf(`Refine the raw ideas below into a concise, structured shortlist.
Merge duplicates, drop filler, and give each surviving idea a name and a
two-sentence description grounded in the task.

Task: %s

Raw ideas:
%s`, task, creativeOutput)
}

func defaultJudgePrompt(refinementOutput string, threshold float64) string {
	return fmt.Sprintf(`Evaluate each idea below. Score quality, originality, feasibility and
impact from 0 to 10. Accept an idea when its overall quality score is at
least %.1f; reject it otherwise with a reason.

Respond with JSON only:
{
  "accepted_ideas": [{"idea_name": "...", "quality_score": 0.0, "originality_score": 0.0, "feasibility_score": 0.0, "impact_score": 0.0, "key_points": ["..."]}],
  "rejected_ideas": [{"idea_name": "...", "rejection_reason": "..."}],
  "synthesis": "...",
  "top_recommendations": ["..."]
}

Ideas:
%s`, threshold, refinementOutput)
}

func defaultResearchPrompt(task string, payload string) string {
	return fmt.Sprintf(`Produce a final report for the task below. Ground it in the evaluated
ideas, fill in practical next steps, and note open risks.

Task: %s

Evaluated ideas:
%s`, task, payload)
}
