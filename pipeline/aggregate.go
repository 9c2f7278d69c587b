package pipeline

import (
	"fmt"
	"strings"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/judge"
)

// NoOutputMarker is the aggregate result of a run that produced nothing.
const NoOutputMarker = "no output generated"

// FinalOutputPath is where the aggregated result lands in the run directory.
const FinalOutputPath = "final_output.txt"

// Aggregate selects the final artifact of a run from its NodeResults in
// fixed precedence order: the research output when the finishing stage ran,
// else the latest judge payload (reformatted when it is the structured
// judgement, verbatim otherwise), else the latest refinement output, else a
// literal no-output marker. The choice is deterministic for a given result
// list.
func Aggregate(results []*graph.NodeResult) string {
	for i := len(results) - 1; i >= 0; i-- {
		if out := results[i].State.ResearchOutput; out != "" {
			return out
		}
	}

	for i := len(results) - 1; i >= 0; i-- {
		raw := results[i].State.JudgeOutput
		if raw == "" {
			continue
		}
		if outcome := judge.Parse(raw); outcome.Parsed() {
			return judge.FormatSummary(outcome.Judgement)
		}
		return raw
	}

	for i := len(results) - 1; i >= 0; i-- {
		if out := results[i].State.RefinementOutput; out != "" {
			return out
		}
	}
	return NoOutputMarker
}

// WriteFinalOutput persists the aggregated result to final_output.txt with a
// run header.
func WriteFinalOutput(store *artifact.Store, state graph.ExecutionState, content string) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 64) + "\n")
	b.WriteString("FINAL OUTPUT\n")
	fmt.Fprintf(&b, "Run: %s\n", state.RunID)
	fmt.Fprintf(&b, "Task: %s\n", state.OriginalTask)
	if state.StartTime != "" {
		fmt.Fprintf(&b, "Started: %s\n", state.StartTime)
	}
	fmt.Fprintf(&b, "Iterations: %d, Accepted ideas: %d\n", state.Iteration, state.AcceptedCount)
	b.WriteString(strings.Repeat("=", 64) + "\n\n")
	b.WriteString(content)
	return store.Write(FinalOutputPath, b.String())
}
