package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/log"
)

// Controller is the loop gate of a run. On each visit it reads the
// authoritative iteration counters from the coordination store and either
// advances the iteration and routes back into the pipeline or declares the
// loop finished. Routing itself happens in the edge predicates; the
// controller only records the decision in the returned state.
type Controller struct {
	stageBase
}

// NewController creates the loop gate over the run's coordination store.
func NewController(coord *graph.CoordinationStore) *Controller {
	return &Controller{stageBase: stageBase{name: NodeController, coord: coord}}
}

// Invoke implements graph.Node.
func (c *Controller) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	current := c.coord.CurrentIteration()
	max := c.coord.MaxIterations()

	if current < max {
		next := c.coord.IncrementIteration()
		message := fmt.Sprintf("iteration %d complete, starting %d", current, next)
		log.Infof("run %s: %s", state.RunID, message)
		return completed(c.name, message, state.WithUpdates(graph.StateUpdate{
			Iteration:      graph.Int(next),
			MaxIterations:  graph.Int(max),
			ShouldContinue: graph.Bool(true),
			IsFinished:     graph.Bool(false),
		})), nil
	}

	message := fmt.Sprintf("all %d iterations complete", max)
	log.Infof("run %s: %s", state.RunID, message)
	return completed(c.name, message, state.WithUpdates(graph.StateUpdate{
		Iteration:      graph.Int(current),
		MaxIterations:  graph.Int(max),
		ShouldContinue: graph.Bool(false),
		IsFinished:     graph.Bool(true),
	})), nil
}

// ContinuePredicate gates the edge from the controller back into the
// pipeline. The state flags are authoritative; the message check is a legacy
// fallback for results produced without them.
func ContinuePredicate(results []*graph.NodeResult) bool {
	last := latest(results)
	if last == nil {
		return false
	}
	if last.State.ShouldContinue && !last.State.IsFinished {
		return true
	}
	return strings.Contains(last.Message, "complete, starting")
}

// FinishedPredicate gates the edge from the controller to the finishing
// stage.
func FinishedPredicate(results []*graph.NodeResult) bool {
	last := latest(results)
	if last == nil {
		return false
	}
	if last.State.IsFinished {
		return true
	}
	return strings.Contains(last.Message, "iterations complete")
}

func latest(results []*graph.NodeResult) *graph.NodeResult {
	if len(results) == 0 {
		return nil
	}
	return results[len(results)-1]
}
