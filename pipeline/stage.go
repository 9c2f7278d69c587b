// Package pipeline wires the concrete stages of a creativity run into an
// executable graph: the loop controller, the tangential-seed stage, one
// creative/refinement/judge triad per generation unit, and the finishing
// research stage, plus the aggregation of the run's final artifact.
package pipeline

import (
	"fmt"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/log"
)

// Node names of the fixed stages. Triad stages append the unit name.
const (
	NodeController = "controller"
	NodeSeed       = "seed"
	NodeResearch   = "research"
)

// Coordination scratch keys shared between stages.
const (
	// ScratchTotalAccepted accumulates the accepted-idea count across units
	// and iterations. Later units read it to steer away from covered ground.
	ScratchTotalAccepted = "total_accepted_ideas"
)

// JudgeResultsKey names the scratch slot holding the evaluation records of
// one iteration.
func JudgeResultsKey(iteration int) string {
	return fmt.Sprintf("judge_results_iteration_%d", iteration)
}

// CreativeNode returns the creative stage name for a generation unit.
func CreativeNode(unit string) string { return "creative_" + unit }

// RefinementNode returns the refinement stage name for a generation unit.
func RefinementNode(unit string) string { return "refinement_" + unit }

// JudgeNode returns the judge stage name for a generation unit.
func JudgeNode(unit string) string { return "judge_" + unit }

// stageBase carries what every concrete stage needs: its node name, the
// run-scoped coordination store and the artifact store of the run directory.
type stageBase struct {
	name  string
	coord *graph.CoordinationStore
	store *artifact.Store
}

// Name implements graph.Node.
func (s *stageBase) Name() string { return s.name }

// persist writes the stage's textual output for one iteration. Persistence
// is best-effort; a write failure never fails the stage.
func (s *stageBase) persist(iteration int, content string) {
	if s.store == nil || content == "" {
		return
	}
	if err := s.store.WriteStageOutput(s.name, iteration, content); err != nil {
		log.Warnf("stage %s: persisting iteration %d output: %v", s.name, iteration, err)
	}
}

// completed builds the standard Completed result for a stage.
func completed(name, message string, state graph.ExecutionState) *graph.NodeResult {
	return &graph.NodeResult{
		NodeName: name,
		Status:   graph.StatusCompleted,
		Message:  message,
		State:    state,
	}
}
