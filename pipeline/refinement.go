package pipeline

import (
	"context"
	"fmt"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/model"
)

// RefinementStage is the convergent half of a generation unit: a low
// temperature pass that distills the creative output into a structured
// shortlist the judge can score.
type RefinementStage struct {
	stageBase
	invoker  model.Invoker
	prompter *Prompter
}

// NewRefinementStage creates the refinement stage of one generation unit.
func NewRefinementStage(unit string, coord *graph.CoordinationStore, store *artifact.Store, invoker model.Invoker, prompter *Prompter) *RefinementStage {
	return &RefinementStage{
		stageBase: stageBase{name: RefinementNode(unit), coord: coord, store: store},
		invoker:   invoker,
		prompter:  prompter,
	}
}

// Invoke implements graph.Node.
func (s *RefinementStage) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	if state.CreativeOutput == "" {
		return nil, fmt.Errorf("refinement: no creative output to refine")
	}
	prompt := s.prompter.Refinement(task, state.CreativeOutput)
	output, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("refinement: %w", err)
	}

	s.persist(state.Iteration, output)
	next := state.WithUpdates(graph.StateUpdate{
		RefinementOutput: graph.String(output),
		RefinementModel:  graph.String(s.invoker.Info().Model),
	})
	return completed(s.name, "refined ideas into shortlist", next), nil
}
