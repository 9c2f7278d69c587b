package pipeline

import (
	"context"
	"fmt"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/model"
)

// ResearchStage is the finishing stage, run exactly once after the loop
// exits. It deepens the best available payload from the loop into the final
// report.
type ResearchStage struct {
	stageBase
	invoker  model.Invoker
	prompter *Prompter
}

// NewResearchStage creates the finishing research stage.
func NewResearchStage(coord *graph.CoordinationStore, store *artifact.Store, invoker model.Invoker, prompter *Prompter) *ResearchStage {
	return &ResearchStage{
		stageBase: stageBase{name: NodeResearch, coord: coord, store: store},
		invoker:   invoker,
		prompter:  prompter,
	}
}

// Invoke implements graph.Node.
func (s *ResearchStage) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	payload := state.RefinementOutput
	if state.JudgeOutput != "" {
		payload = state.JudgeOutput
	}
	if payload == "" {
		return nil, fmt.Errorf("research: no loop output to deepen")
	}

	prompt := s.prompter.Research(task, payload)
	output, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	s.persist(state.Iteration, output)
	next := state.WithUpdates(graph.StateUpdate{
		ResearchOutput: graph.String(output),
	})
	return completed(s.name, "produced final research report", next), nil
}
