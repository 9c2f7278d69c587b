package graph

import "sync"

// CoordinationStore is the mutable side-channel shared by every node of a
// run. It is created once at run start, passed by reference to each node, and
// discarded at run end. It holds the authoritative loop counters plus a
// free-form scratch map for data that must outlive a single iteration but
// does not belong in ExecutionState.
//
// All methods are safe for concurrent use. The scheduler drives nodes one at
// a time, but nodes may touch the store from their own background goroutines.
type CoordinationStore struct {
	mu               sync.Mutex
	currentIteration int
	maxIterations    int
	runID            string
	runDir           string
	executionCounts  map[string]int
	scratch          map[string]any
}

// NewCoordinationStore creates a store for a single run.
func NewCoordinationStore(runID, runDir string, maxIterations int) *CoordinationStore {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &CoordinationStore{
		maxIterations:   maxIterations,
		runID:           runID,
		runDir:          runDir,
		executionCounts: make(map[string]int),
		scratch:         make(map[string]any),
	}
}

// RunID returns the run identifier.
func (c *CoordinationStore) RunID() string { return c.runID }

// RunDir returns the run output directory.
func (c *CoordinationStore) RunDir() string { return c.runDir }

// CurrentIteration returns the authoritative iteration counter.
func (c *CoordinationStore) CurrentIteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIteration
}

// MaxIterations returns the configured iteration limit.
func (c *CoordinationStore) MaxIterations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxIterations
}

// IncrementIteration advances the iteration counter by one while it is below
// the limit and returns the possibly unchanged new value.
func (c *CoordinationStore) IncrementIteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentIteration < c.maxIterations {
		c.currentIteration++
	}
	return c.currentIteration
}

// RecordExecution increments the execution count of the named node.
func (c *CoordinationStore) RecordExecution(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executionCounts[name]++
}

// ExecutionCount returns how many times the named node has run.
func (c *CoordinationStore) ExecutionCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executionCounts[name]
}

// ExecutionCounts returns a copy of all per-node execution counts.
func (c *CoordinationStore) ExecutionCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int, len(c.executionCounts))
	for k, v := range c.executionCounts {
		counts[k] = v
	}
	return counts
}

// Put stores a scratch value under key.
func (c *CoordinationStore) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scratch[key] = value
}

// Get returns the scratch value stored under key.
func (c *CoordinationStore) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.scratch[key]
	return v, ok
}

// GetInt returns the scratch value under key as an int, or 0 when absent or
// of another type.
func (c *CoordinationStore) GetInt(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.scratch[key].(int); ok {
		return n
	}
	return 0
}
