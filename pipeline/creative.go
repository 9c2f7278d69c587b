package pipeline

import (
	"context"
	"fmt"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/model"
)

// CreativeStage is the divergent half of a generation unit: a high
// temperature pass that turns the task and the seed stimuli into a broad
// batch of raw ideas. A model invocation failure is returned as an error and
// becomes a Failed result at the node boundary.
type CreativeStage struct {
	stageBase
	invoker  model.Invoker
	prompter *Prompter
}

// NewCreativeStage creates the creative stage of one generation unit.
func NewCreativeStage(unit string, coord *graph.CoordinationStore, store *artifact.Store, invoker model.Invoker, prompter *Prompter) *CreativeStage {
	return &CreativeStage{
		stageBase: stageBase{name: CreativeNode(unit), coord: coord, store: store},
		invoker:   invoker,
		prompter:  prompter,
	}
}

// Invoke implements graph.Node.
func (s *CreativeStage) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	priorAccepted := s.coord.GetInt(ScratchTotalAccepted)
	prompt := s.prompter.Creative(task, state.SeedContext, priorAccepted)
	output, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("creative generation: %w", err)
	}

	s.persist(state.Iteration, output)
	next := state.WithUpdates(graph.StateUpdate{
		CreativeOutput: graph.String(output),
		CreativeModel:  graph.String(s.invoker.Info().Model),
	})
	return completed(s.name, fmt.Sprintf("generated %d characters of raw ideas", len(output)), next), nil
}
