package graph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/museworks/ideaflow/log"
	"github.com/museworks/ideaflow/telemetry/metric"
)

// Executor defaults.
const (
	DefaultMaxNodeExecutions = 100
	DefaultTimeout           = 10 * time.Minute
)

// Executor drives a compiled Graph: it repeatedly executes the current node
// inside the error boundary, evaluates the node's outgoing edges against the
// accumulated NodeResults, and follows the first match. Cycles are expected;
// the per-node execution cap and the wall-clock budget bound them.
//
// The executor runs one node at a time and never parallelizes siblings, so
// the visited trace is a total order matching wall-clock execution order and
// all CoordinationStore mutations are totally ordered.
type Executor struct {
	graph             *Graph
	maxNodeExecutions int
	timeout           time.Duration
	reuseState        bool

	nodeCounter otelmetric.Int64Counter
	runCounter  otelmetric.Int64Counter
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*ExecutorOptions)

// ExecutorOptions contains configuration options for creating an Executor.
type ExecutorOptions struct {
	// MaxNodeExecutions caps how often any single node may run in one run.
	MaxNodeExecutions int
	// Timeout is the wall-clock budget for the whole run. The executor does
	// not cancel an in-flight node when the budget lapses; it refuses to
	// schedule further nodes.
	Timeout time.Duration
	// ReuseState keeps the latest state when a cycle revisits a node
	// (default true). When false, a revisited node starts from the initial
	// state again.
	ReuseState bool
}

// WithMaxNodeExecutions sets the per-node execution cap.
func WithMaxNodeExecutions(n int) ExecutorOption {
	return func(o *ExecutorOptions) { o.MaxNodeExecutions = n }
}

// WithTimeout sets the wall-clock budget for a run.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(o *ExecutorOptions) { o.Timeout = d }
}

// WithReuseState controls whether revisited nodes keep the latest state.
func WithReuseState(reuse bool) ExecutorOption {
	return func(o *ExecutorOptions) { o.ReuseState = reuse }
}

// NewExecutor creates an executor for the given graph.
func NewExecutor(g *Graph, opts ...ExecutorOption) (*Executor, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	options := ExecutorOptions{
		MaxNodeExecutions: DefaultMaxNodeExecutions,
		Timeout:           DefaultTimeout,
		ReuseState:        true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	nodeCounter, _ := metric.Meter.Int64Counter("ideaflow.node.executions")
	runCounter, _ := metric.Meter.Int64Counter("ideaflow.runs")
	return &Executor{
		graph:             g,
		maxNodeExecutions: options.MaxNodeExecutions,
		timeout:           options.Timeout,
		reuseState:        options.ReuseState,
		nodeCounter:       nodeCounter,
		runCounter:        runCounter,
	}, nil
}

// RunResult is what a run hands back to the caller: every NodeResult in
// execution order, the visited node names as a trace, and the state produced
// by the last executed node. On a fatal scheduling error the caller receives
// the partial RunResult together with the error.
type RunResult struct {
	Results    []*NodeResult
	Visited    []string
	FinalState ExecutionState
}

// Last returns the most recent NodeResult, or nil before any node ran.
func (r *RunResult) Last() *NodeResult {
	if len(r.Results) == 0 {
		return nil
	}
	return r.Results[len(r.Results)-1]
}

// ResultsFor returns every NodeResult produced by the named node, oldest
// first.
func (r *RunResult) ResultsFor(name string) []*NodeResult {
	var out []*NodeResult
	for _, res := range r.Results {
		if res.NodeName == name {
			out = append(out, res)
		}
	}
	return out
}

// Execute walks the graph from its entry point. The initial state must carry
// a non-empty OriginalTask. Node-local failures become Failed NodeResults
// that edge predicates observe; only scheduling errors (execution cap,
// timeout, deadlock, cancellation) terminate the run with an error, and even
// then the partial RunResult is returned.
func (e *Executor) Execute(
	ctx context.Context,
	state ExecutionState,
	store *CoordinationStore,
) (*RunResult, error) {
	if state.OriginalTask == "" {
		return nil, ErrEmptyTask
	}

	run := &RunResult{FinalState: state}
	initial := state
	start := time.Now()
	current := e.graph.EntryPoint()
	visited := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		default:
		}

		if elapsed := time.Since(start); elapsed > e.timeout {
			err := &ScheduleExceededError{
				Node:    current,
				Elapsed: elapsed,
				Budget:  e.timeout,
			}
			log.Errorf("run %s aborted: %v", state.RunID, err)
			e.runCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", "exceeded")))
			return run, err
		}
		if count := store.ExecutionCount(current); count >= e.maxNodeExecutions {
			err := &ScheduleExceededError{
				Node:  current,
				Count: count,
				Limit: e.maxNodeExecutions,
			}
			log.Errorf("run %s aborted: %v", state.RunID, err)
			e.runCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", "exceeded")))
			return run, err
		}

		node, ok := e.graph.Node(current)
		if !ok {
			// Compile validated every edge target; reaching here is a bug.
			return run, &DeadlockError{Node: current}
		}

		input := run.FinalState
		if !e.reuseState && visited[current] {
			input = initial
		}
		result := Run(ctx, node, state.OriginalTask, input)
		store.RecordExecution(current)
		visited[current] = true
		run.Results = append(run.Results, result)
		run.Visited = append(run.Visited, current)
		run.FinalState = result.State
		e.nodeCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("node", current),
			attribute.String("status", string(result.Status)),
		))
		log.Debugf("run %s: node %s finished with status %s in %v",
			state.RunID, current, result.Status, result.Elapsed.Round(time.Millisecond))

		edges := e.graph.Edges(current)
		if len(edges) == 0 {
			e.runCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", "completed")))
			return run, nil
		}
		next := ""
		for _, edge := range edges {
			if edge.matches(run.Results) {
				next = edge.To
				break
			}
		}
		if next == "" {
			err := &DeadlockError{Node: current}
			log.Errorf("run %s aborted: %v", state.RunID, err)
			e.runCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", "deadlock")))
			return run, err
		}
		current = next
	}
}
