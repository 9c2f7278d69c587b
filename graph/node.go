package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/museworks/ideaflow/log"
)

// Status reports the outcome of a single node execution.
type Status string

// Node statuses.
const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// NodeResult is the record a node execution produces: the (possibly updated)
// state, a human-readable message, and how the execution went. A run yields
// one NodeResult per visit, in execution order.
type NodeResult struct {
	NodeName string
	Status   Status
	Message  string
	State    ExecutionState
	Elapsed  time.Duration
}

// Completed reports whether the node finished without failure.
func (r *NodeResult) Completed() bool { return r.Status == StatusCompleted }

// Node is a unit of orchestrated work. Invoke receives the task text and the
// latest ExecutionState and returns a new state inside a NodeResult. Nodes
// must not mutate the state they receive.
//
// Invoke may return an error for failures in node logic; the scheduler wraps
// every invocation in Run, which converts errors (and panics) into Failed
// results, so an error here never unwinds past the node boundary.
type Node interface {
	Name() string
	Invoke(ctx context.Context, task string, state ExecutionState) (*NodeResult, error)
}

// Run executes a node inside the uniform error boundary. Any error or panic
// from the node is logged and converted into a NodeResult with StatusFailed
// whose state is rebuilt from the raw input map, preserving run identity
// (task, run id, run dir, iteration) from the best available source. Run
// never returns a nil result.
func Run(ctx context.Context, node Node, task string, state ExecutionState) *NodeResult {
	start := time.Now()
	raw := state.ToMap()

	var result *NodeResult
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in node %s: %v", node.Name(), r)
			}
		}()
		result, err = node.Invoke(ctx, task, state)
	}()

	if err == nil && result == nil {
		err = fmt.Errorf("node %s returned no result", node.Name())
	}
	if err != nil {
		return failedResult(node.Name(), err, raw, time.Since(start))
	}
	if result.Elapsed == 0 {
		result.Elapsed = time.Since(start)
	}
	result.NodeName = node.Name()
	return result
}

// failedResult builds the Failed NodeResult the boundary hands back. The
// state is reconstructed from the raw input map rather than any derived state
// the failing node may have half-built.
func failedResult(name string, cause error, raw map[string]any, elapsed time.Duration) *NodeResult {
	log.Errorf("node %s failed: %v", name, cause)
	state, stateErr := StateFromMap(raw)
	if stateErr != nil {
		log.Warnf("node %s: rebuilding state from raw input: %v", name, stateErr)
	}
	state = state.WithUpdates(StateUpdate{
		Success:      Bool(false),
		ErrorMessage: String(cause.Error()),
	})
	return &NodeResult{
		NodeName: name,
		Status:   StatusFailed,
		Message:  fmt.Sprintf("error in %s: %v", name, cause),
		State:    state,
		Elapsed:  elapsed,
	}
}
