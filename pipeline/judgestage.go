package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/judge"
	"github.com/museworks/ideaflow/log"
	"github.com/museworks/ideaflow/memory"
)

// EvaluationsStage is the artifact name under which the expanded per-idea
// evaluation records of an iteration are persisted.
const EvaluationsStage = "judge_evaluations"

// JudgeStage scores a unit's refinement output with the independent
// evaluation model, expands the judgement into per-idea records, updates the
// cross-iteration idea memory and the running accepted count, and persists a
// human-readable summary plus the raw evaluation records.
type JudgeStage struct {
	stageBase
	judge  *judge.Judge
	memory *memory.Manager
}

// NewJudgeStage creates the judge stage of one generation unit.
func NewJudgeStage(unit string, coord *graph.CoordinationStore, store *artifact.Store, j *judge.Judge, mem *memory.Manager) *JudgeStage {
	return &JudgeStage{
		stageBase: stageBase{name: JudgeNode(unit), coord: coord, store: store},
		judge:     j,
		memory:    mem,
	}
}

// Invoke implements graph.Node.
func (s *JudgeStage) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	if state.RefinementOutput == "" {
		return nil, fmt.Errorf("judge: no refinement output to evaluate")
	}
	judgement, raw, err := s.judge.EvaluateRaw(ctx, state.RefinementOutput)
	if err != nil {
		return nil, err
	}

	records := s.judge.Records(judgement, state.RunID, state.Iteration)
	for i := range records {
		records[i].SourceModel = state.RefinementModel
	}
	s.coord.Put(JudgeResultsKey(state.Iteration), records)

	total := s.coord.GetInt(ScratchTotalAccepted) + len(judgement.AcceptedIdeas)
	s.coord.Put(ScratchTotalAccepted, total)

	if s.memory != nil && len(judgement.AcceptedIdeas) > 0 {
		if _, err := s.memory.Append(judgement.AcceptedIdeas, state.Iteration); err != nil {
			log.Warnf("run %s: updating idea memory: %v", state.RunID, err)
		}
	}

	s.persist(state.Iteration, judge.FormatSummary(judgement))
	s.persistRecords(state, records)

	next := state.WithUpdates(graph.StateUpdate{
		JudgeOutput:   graph.String(raw),
		Evaluations:   append(append([]judge.Evaluation{}, state.Evaluations...), records...),
		Statistics:    judge.Statistics(judgement),
		AcceptedCount: graph.Int(total),
	})
	message := fmt.Sprintf("evaluated ideas: %d accepted, %d rejected",
		len(judgement.AcceptedIdeas), len(judgement.RejectedIdeas))
	return completed(s.name, message, next), nil
}

// persistRecords writes the expanded evaluation records of one iteration as
// JSON, best-effort like every stage artifact.
func (s *JudgeStage) persistRecords(state graph.ExecutionState, records []judge.Evaluation) {
	if s.store == nil || len(records) == 0 {
		return
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Warnf("run %s: rendering evaluation records: %v", state.RunID, err)
		return
	}
	if err := s.store.WriteStageOutput(EvaluationsStage, state.Iteration, string(raw)); err != nil {
		log.Warnf("run %s: persisting evaluation records: %v", state.RunID, err)
	}
}
