package graph

import (
	"github.com/museworks/ideaflow/discovery"
	"github.com/museworks/ideaflow/judge"
)

// Keys used for the untyped map form of ExecutionState. The map form exists
// so the error boundary can rebuild a usable state from raw input even when
// the typed state is suspect.
const (
	keyOriginalTask     = "original_task"
	keyIteration        = "iteration"
	keyRunID            = "run_id"
	keyRunDir           = "run_dir"
	keyStartTime        = "start_time"
	keyShouldContinue   = "should_continue"
	keyIsFinished       = "is_finished"
	keyMaxIterations    = "max_iterations"
	keySeedContext      = "seed_context"
	keySeedCount        = "seed_count"
	keyCreativeOutput   = "creative_output"
	keyCreativeModel    = "creative_model"
	keyRefinementOutput = "refinement_output"
	keyRefinementModel  = "refinement_model"
	keyJudgeOutput      = "judge_output"
	keyAcceptedCount    = "accepted_count"
	keyResearchOutput   = "research_output"
	keyErrorMessage     = "error_message"
	keySuccess          = "success"
)

// ExecutionState is the immutable, versioned record threaded through every
// node of a run. Nodes never mutate the state they receive; each node derives
// a new value via WithUpdates. OriginalTask, RunID and RunDir are set once at
// run start and copied verbatim through every update.
//
// Iteration, MaxIterations, ShouldContinue and IsFinished mirror the
// CoordinationStore for observability; the scheduler branches on edge
// predicates over NodeResults, never on these mirrors.
type ExecutionState struct {
	OriginalTask string
	Iteration    int
	RunID        string
	RunDir       string
	StartTime    string

	ShouldContinue bool
	IsFinished     bool
	MaxIterations  int

	SeedContext string
	Seeds       []discovery.Seed
	SeedCount   int

	CreativeOutput string
	CreativeModel  string

	RefinementOutput string
	RefinementModel  string

	JudgeOutput   string
	Evaluations   []judge.Evaluation
	Statistics    *judge.IdeaStatistics
	AcceptedCount int

	ResearchOutput string

	Success      bool
	ErrorMessage string
}

// StateUpdate describes a partial update to an ExecutionState. Nil fields are
// carried over from the receiver; a field is only changed when its pointer
// (or slice) is set. Identity fields have no update slots at all.
type StateUpdate struct {
	Iteration      *int
	StartTime      *string
	ShouldContinue *bool
	IsFinished     *bool
	MaxIterations  *int

	SeedContext *string
	Seeds       []discovery.Seed
	SeedCount   *int

	CreativeOutput *string
	CreativeModel  *string

	RefinementOutput *string
	RefinementModel  *string

	JudgeOutput   *string
	Evaluations   []judge.Evaluation
	Statistics    *judge.IdeaStatistics
	AcceptedCount *int

	ResearchOutput *string

	Success      *bool
	ErrorMessage *string
}

// WithUpdates returns a new ExecutionState with the set fields of update
// applied and everything else copied unchanged.
func (s ExecutionState) WithUpdates(update StateUpdate) ExecutionState {
	next := s
	if update.Iteration != nil {
		next.Iteration = *update.Iteration
	}
	if update.StartTime != nil {
		next.StartTime = *update.StartTime
	}
	if update.ShouldContinue != nil {
		next.ShouldContinue = *update.ShouldContinue
	}
	if update.IsFinished != nil {
		next.IsFinished = *update.IsFinished
	}
	if update.MaxIterations != nil {
		next.MaxIterations = *update.MaxIterations
	}
	if update.SeedContext != nil {
		next.SeedContext = *update.SeedContext
	}
	if update.Seeds != nil {
		next.Seeds = update.Seeds
	}
	if update.SeedCount != nil {
		next.SeedCount = *update.SeedCount
	}
	if update.CreativeOutput != nil {
		next.CreativeOutput = *update.CreativeOutput
	}
	if update.CreativeModel != nil {
		next.CreativeModel = *update.CreativeModel
	}
	if update.RefinementOutput != nil {
		next.RefinementOutput = *update.RefinementOutput
	}
	if update.RefinementModel != nil {
		next.RefinementModel = *update.RefinementModel
	}
	if update.JudgeOutput != nil {
		next.JudgeOutput = *update.JudgeOutput
	}
	if update.Evaluations != nil {
		next.Evaluations = update.Evaluations
	}
	if update.Statistics != nil {
		next.Statistics = update.Statistics
	}
	if update.AcceptedCount != nil {
		next.AcceptedCount = *update.AcceptedCount
	}
	if update.ResearchOutput != nil {
		next.ResearchOutput = *update.ResearchOutput
	}
	if update.Success != nil {
		next.Success = *update.Success
	}
	if update.ErrorMessage != nil {
		next.ErrorMessage = *update.ErrorMessage
	}
	return next
}

// ToMap converts the scalar fields of the state to an untyped map. The map is
// what the error boundary falls back to when a node fails before producing a
// valid derived state.
func (s ExecutionState) ToMap() map[string]any {
	return map[string]any{
		keyOriginalTask:     s.OriginalTask,
		keyIteration:        s.Iteration,
		keyRunID:            s.RunID,
		keyRunDir:           s.RunDir,
		keyStartTime:        s.StartTime,
		keyShouldContinue:   s.ShouldContinue,
		keyIsFinished:       s.IsFinished,
		keyMaxIterations:    s.MaxIterations,
		keySeedContext:      s.SeedContext,
		keySeedCount:        s.SeedCount,
		keyCreativeOutput:   s.CreativeOutput,
		keyCreativeModel:    s.CreativeModel,
		keyRefinementOutput: s.RefinementOutput,
		keyRefinementModel:  s.RefinementModel,
		keyJudgeOutput:      s.JudgeOutput,
		keyAcceptedCount:    s.AcceptedCount,
		keyResearchOutput:   s.ResearchOutput,
		keyErrorMessage:     s.ErrorMessage,
		keySuccess:          s.Success,
	}
}

// StateFromMap rebuilds an ExecutionState from an untyped map. Missing
// identity fields fall back to defaults ("", "unknown", ".") so that
// error-path construction always succeeds; a non-nil *StateError is returned
// alongside the state when a present value has an unusable type.
func StateFromMap(raw map[string]any) (ExecutionState, error) {
	state := ExecutionState{
		RunID:   "unknown",
		RunDir:  ".",
		Success: true,
	}
	if raw == nil {
		return state, nil
	}
	var firstErr error
	readString := func(key string, dst *string) {
		v, ok := raw[key]
		if !ok || v == nil {
			return
		}
		s, ok := v.(string)
		if !ok {
			if firstErr == nil {
				firstErr = &StateError{Field: key, Value: v}
			}
			return
		}
		*dst = s
	}
	readInt := func(key string, dst *int) {
		v, ok := raw[key]
		if !ok || v == nil {
			return
		}
		switch n := v.(type) {
		case int:
			*dst = n
		case int64:
			*dst = int(n)
		case float64:
			*dst = int(n)
		default:
			if firstErr == nil {
				firstErr = &StateError{Field: key, Value: v}
			}
		}
	}
	readBool := func(key string, dst *bool) {
		v, ok := raw[key]
		if !ok || v == nil {
			return
		}
		b, ok := v.(bool)
		if !ok {
			if firstErr == nil {
				firstErr = &StateError{Field: key, Value: v}
			}
			return
		}
		*dst = b
	}

	readString(keyOriginalTask, &state.OriginalTask)
	readInt(keyIteration, &state.Iteration)
	readString(keyRunID, &state.RunID)
	readString(keyRunDir, &state.RunDir)
	readString(keyStartTime, &state.StartTime)
	readBool(keyShouldContinue, &state.ShouldContinue)
	readBool(keyIsFinished, &state.IsFinished)
	readInt(keyMaxIterations, &state.MaxIterations)
	readString(keySeedContext, &state.SeedContext)
	readInt(keySeedCount, &state.SeedCount)
	readString(keyCreativeOutput, &state.CreativeOutput)
	readString(keyCreativeModel, &state.CreativeModel)
	readString(keyRefinementOutput, &state.RefinementOutput)
	readString(keyRefinementModel, &state.RefinementModel)
	readString(keyJudgeOutput, &state.JudgeOutput)
	readInt(keyAcceptedCount, &state.AcceptedCount)
	readString(keyResearchOutput, &state.ResearchOutput)
	readString(keyErrorMessage, &state.ErrorMessage)
	readBool(keySuccess, &state.Success)
	return state, firstErr
}

// Pointer helpers for building StateUpdate values.

// String returns a pointer to v.
func String(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
