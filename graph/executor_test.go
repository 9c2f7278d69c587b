package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopGate mimics the pipeline's iteration gate over the coordination store.
func loopGate(store *CoordinationStore) *stubNode {
	return &stubNode{name: "gate", invoke: func(_ context.Context, _ string, state ExecutionState) (*NodeResult, error) {
		if store.CurrentIteration() < store.MaxIterations() {
			next := store.IncrementIteration()
			return &NodeResult{
				Status:  StatusCompleted,
				Message: "continuing",
				State: state.WithUpdates(StateUpdate{
					Iteration:      Int(next),
					ShouldContinue: Bool(true),
				}),
			}, nil
		}
		return &NodeResult{
			Status:  StatusCompleted,
			Message: "finished",
			State: state.WithUpdates(StateUpdate{
				ShouldContinue: Bool(false),
				IsFinished:     Bool(true),
			}),
		}, nil
	}}
}

func shouldContinue(results []*NodeResult) bool {
	return results[len(results)-1].State.ShouldContinue
}

func isFinished(results []*NodeResult) bool {
	return results[len(results)-1].State.IsFinished
}

func TestExecuteSingleIterationTrace(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	g, err := NewBuilder().
		AddNode(loopGate(store)).
		AddNode(passThrough("generation")).
		AddNode(passThrough("refinement")).
		AddNode(passThrough("evaluation")).
		AddNode(passThrough("finishing")).
		SetEntryPoint("gate").
		AddConditionalEdge("gate", "generation", shouldContinue).
		AddConditionalEdge("gate", "finishing", isFinished).
		AddEdge("generation", "refinement").
		AddEdge("refinement", "evaluation").
		AddEdge("evaluation", "gate").
		Compile()
	require.NoError(t, err)

	exec, err := NewExecutor(g)
	require.NoError(t, err)

	run, err := exec.Execute(context.Background(), testState(), store)
	require.NoError(t, err)

	assert.Equal(t, []string{"gate", "generation", "refinement", "evaluation", "gate", "finishing"}, run.Visited)
	assert.True(t, run.FinalState.IsFinished)
	assert.Equal(t, store.MaxIterations(), run.FinalState.Iteration)
	assert.Len(t, run.Results, 6)
	assert.Equal(t, "finishing", run.Last().NodeName)
	assert.Len(t, run.ResultsFor("gate"), 2)
}

func TestExecuteRejectsEmptyTask(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	g := MustCompile(NewBuilder().AddNode(passThrough("a")).SetEntryPoint("a"))
	exec, err := NewExecutor(g)
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), ExecutionState{}, store)
	assert.ErrorIs(t, err, ErrEmptyTask)
}

func TestExecuteSelfLoopHitsExecutionCap(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 10)
	g := MustCompile(NewBuilder().
		AddNode(passThrough("loop")).
		AddEdge("loop", "loop").
		SetEntryPoint("loop"))

	exec, err := NewExecutor(g, WithMaxNodeExecutions(3))
	require.NoError(t, err)

	run, err := exec.Execute(context.Background(), testState(), store)
	require.Error(t, err)

	var exceeded *ScheduleExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, "loop", exceeded.Node)
	assert.Equal(t, 3, exceeded.Count)
	assert.Equal(t, 3, exceeded.Limit)

	// the node ran exactly cap times and its count never exceeds the cap
	assert.Equal(t, []string{"loop", "loop", "loop"}, run.Visited)
	assert.Equal(t, 3, store.ExecutionCount("loop"))
}

func TestExecuteDeadlock(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	g := MustCompile(NewBuilder().
		AddNode(passThrough("a")).
		AddNode(passThrough("b")).
		AddConditionalEdge("a", "b", func([]*NodeResult) bool { return false }).
		SetEntryPoint("a"))

	exec, err := NewExecutor(g)
	require.NoError(t, err)

	run, err := exec.Execute(context.Background(), testState(), store)
	require.Error(t, err)

	var deadlock *DeadlockError
	require.ErrorAs(t, err, &deadlock)
	assert.Equal(t, "a", deadlock.Node)
	assert.Equal(t, []string{"a"}, run.Visited)
}

func TestExecuteTimeout(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	g := MustCompile(NewBuilder().
		AddNode(passThrough("a")).
		AddEdge("a", "a").
		SetEntryPoint("a"))

	exec, err := NewExecutor(g, WithTimeout(time.Nanosecond))
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), testState(), store)
	require.Error(t, err)

	var exceeded *ScheduleExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, time.Nanosecond, exceeded.Budget)
}

func TestExecuteContextCancellation(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	g := MustCompile(NewBuilder().AddNode(passThrough("a")).SetEntryPoint("a"))
	exec, err := NewExecutor(g)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exec.Execute(ctx, testState(), store)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteFailedNodeFlowsOnward(t *testing.T) {
	store := NewCoordinationStore("r1", "/run", 1)
	failing := &stubNode{name: "a", invoke: func(_ context.Context, _ string, _ ExecutionState) (*NodeResult, error) {
		return nil, assert.AnError
	}}
	g := MustCompile(NewBuilder().
		AddNode(failing).
		AddNode(passThrough("b")).
		AddEdge("a", "b").
		SetEntryPoint("a"))

	exec, err := NewExecutor(g)
	require.NoError(t, err)

	run, err := exec.Execute(context.Background(), testState(), store)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, run.Visited)
	assert.Equal(t, StatusFailed, run.Results[0].Status)
	assert.True(t, run.Results[1].Completed())
}

func TestExecuteReuseState(t *testing.T) {
	appender := func() *stubNode {
		return &stubNode{name: "x", invoke: func(_ context.Context, _ string, state ExecutionState) (*NodeResult, error) {
			return &NodeResult{
				Status: StatusCompleted,
				State: state.WithUpdates(StateUpdate{
					CreativeOutput: String(state.CreativeOutput + "x"),
				}),
			}, nil
		}}
	}
	loopTwice := func(results []*NodeResult) bool { return len(results) < 2 }

	build := func() *Graph {
		return MustCompile(NewBuilder().
			AddNode(appender()).
			AddNode(passThrough("end")).
			AddConditionalEdge("x", "x", loopTwice).
			AddEdge("x", "end").
			SetEntryPoint("x"))
	}

	exec, err := NewExecutor(build())
	require.NoError(t, err)
	run, err := exec.Execute(context.Background(), testState(), NewCoordinationStore("r1", "/run", 1))
	require.NoError(t, err)
	assert.Equal(t, "xx", run.FinalState.CreativeOutput)

	exec, err = NewExecutor(build(), WithReuseState(false))
	require.NoError(t, err)
	run, err = exec.Execute(context.Background(), testState(), NewCoordinationStore("r1", "/run", 1))
	require.NoError(t, err)
	assert.Equal(t, "x", run.FinalState.CreativeOutput)
}
