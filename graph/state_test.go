package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithUpdatesLeavesReceiverUntouched(t *testing.T) {
	original := ExecutionState{
		OriginalTask: "task",
		RunID:        "r1",
		RunDir:       "/run",
		Iteration:    1,
		Success:      true,
	}

	derived := original.WithUpdates(StateUpdate{
		Iteration:      Int(2),
		CreativeOutput: String("ideas"),
		ShouldContinue: Bool(true),
	})

	assert.Equal(t, 1, original.Iteration)
	assert.Empty(t, original.CreativeOutput)
	assert.False(t, original.ShouldContinue)

	assert.Equal(t, 2, derived.Iteration)
	assert.Equal(t, "ideas", derived.CreativeOutput)
	assert.True(t, derived.ShouldContinue)
}

func TestWithUpdatesCarriesIdentityFields(t *testing.T) {
	original := ExecutionState{
		OriginalTask: "task",
		RunID:        "r1",
		RunDir:       "/run",
		StartTime:    "2026-08-29T12:00:00Z",
	}
	derived := original.WithUpdates(StateUpdate{RefinementOutput: String("shortlist")})

	assert.Equal(t, "task", derived.OriginalTask)
	assert.Equal(t, "r1", derived.RunID)
	assert.Equal(t, "/run", derived.RunDir)
	assert.Equal(t, "2026-08-29T12:00:00Z", derived.StartTime)
}

func TestWithUpdatesNilFieldsCarryOver(t *testing.T) {
	original := ExecutionState{CreativeOutput: "ideas", Iteration: 3, Success: true}
	derived := original.WithUpdates(StateUpdate{})
	assert.Equal(t, original, derived)
}

func TestStateMapRoundTrip(t *testing.T) {
	state := ExecutionState{
		OriginalTask:     "task",
		Iteration:        2,
		RunID:            "r1",
		RunDir:           "/run",
		ShouldContinue:   true,
		MaxIterations:    3,
		CreativeOutput:   "ideas",
		RefinementOutput: "shortlist",
		JudgeOutput:      `{"accepted_ideas": []}`,
		AcceptedCount:    4,
		Success:          true,
	}

	rebuilt, err := StateFromMap(state.ToMap())
	require.NoError(t, err)
	assert.Equal(t, state, rebuilt)
}

func TestStateFromMapDefaults(t *testing.T) {
	state, err := StateFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, "unknown", state.RunID)
	assert.Equal(t, ".", state.RunDir)
	assert.True(t, state.Success)

	state, err = StateFromMap(map[string]any{"original_task": "task"})
	require.NoError(t, err)
	assert.Equal(t, "task", state.OriginalTask)
	assert.Equal(t, "unknown", state.RunID)
}

func TestStateFromMapBadTypes(t *testing.T) {
	state, err := StateFromMap(map[string]any{
		"run_id":    42,
		"iteration": 2,
	})
	require.Error(t, err)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "run_id", stateErr.Field)

	// construction still succeeds with defaults for the bad field
	assert.Equal(t, "unknown", state.RunID)
	assert.Equal(t, 2, state.Iteration)
}

func TestStateFromMapNumericWidening(t *testing.T) {
	state, err := StateFromMap(map[string]any{
		"iteration":      float64(3),
		"max_iterations": int64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, state.Iteration)
	assert.Equal(t, 5, state.MaxIterations)
}
