package graph

import (
	"errors"
	"fmt"
	"time"
)

// Errors.
var (
	// ErrEmptyTask is returned when a run is started without an original task.
	ErrEmptyTask = errors.New("original task cannot be empty")
	// ErrNoEntryPoint is returned when the graph has no entry point.
	ErrNoEntryPoint = errors.New("graph must have an entry point")
)

// StateError reports a value in an untyped state map that could not be
// converted to its typed ExecutionState field.
type StateError struct {
	Field string
	Value any
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("state field %s has unusable value %v (%T)", e.Field, e.Value, e.Value)
}

// ScheduleExceededError is returned when a run breaches the global node
// execution cap or the wall-clock budget. The run is aborted; results
// gathered so far are still returned to the caller.
type ScheduleExceededError struct {
	Node    string
	Count   int
	Limit   int
	Elapsed time.Duration
	Budget  time.Duration
}

// Error implements the error interface.
func (e *ScheduleExceededError) Error() string {
	if e.Budget > 0 && e.Elapsed > e.Budget {
		return fmt.Sprintf("schedule exceeded: run elapsed %v over budget %v at node %s",
			e.Elapsed.Round(time.Millisecond), e.Budget, e.Node)
	}
	return fmt.Sprintf("schedule exceeded: node %s reached execution cap %d", e.Node, e.Limit)
}

// DeadlockError is returned when the current node has outgoing edges but no
// predicate matched, so the run cannot make progress.
type DeadlockError struct {
	Node string
}

// Error implements the error interface.
func (e *DeadlockError) Error() string {
	return fmt.Sprintf("deadlock: no outgoing edge of node %s matched", e.Node)
}
