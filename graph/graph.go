// Package graph implements the orchestration core of ideaflow: the typed
// execution state threaded through every node, the run-scoped coordination
// store, the node execution contract with its uniform error boundary, and an
// executor that walks nodes and predicate-gated edges to completion with a
// bounded number of node executions.
package graph

import "fmt"

// Predicate decides whether control flow may pass along an edge. It inspects
// only the NodeResults produced so far (latest last) and must be pure: no
// side effects, no new work.
type Predicate func(results []*NodeResult) bool

// Edge is a directed connection between two nodes. A nil Predicate makes the
// edge unconditional. Outgoing edges of a node are evaluated in registration
// order and the first match is taken.
type Edge struct {
	From      string
	To        string
	Predicate Predicate
}

// matches reports whether the edge may be taken given the results so far.
func (e *Edge) matches(results []*NodeResult) bool {
	if e.Predicate == nil {
		return true
	}
	return e.Predicate(results)
}

// Graph is the compiled, immutable topology executed by the Executor. Build
// one with a Builder.
type Graph struct {
	nodes map[string]Node
	edges map[string][]*Edge
	entry string
}

// Node returns a registered node by name.
func (g *Graph) Node(name string) (Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// Edges returns the outgoing edges of a node in registration order.
func (g *Graph) Edges(name string) []*Edge {
	return g.edges[name]
}

// EntryPoint returns the name of the entry node.
func (g *Graph) EntryPoint() string { return g.entry }

// validate checks the graph structure before execution.
func (g *Graph) validate() error {
	if g.entry == "" {
		return ErrNoEntryPoint
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("entry point node %s does not exist", g.entry)
	}
	for from, edges := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("edge source node %s does not exist", from)
		}
		for _, edge := range edges {
			if _, ok := g.nodes[edge.To]; !ok {
				return fmt.Errorf("edge target node %s does not exist", edge.To)
			}
		}
	}
	return nil
}

// Builder assembles a Graph with a fluent interface.
type Builder struct {
	graph *Graph
	errs  []error
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		graph: &Graph{
			nodes: make(map[string]Node),
			edges: make(map[string][]*Edge),
		},
	}
}

// AddNode registers a node under its own name.
func (b *Builder) AddNode(node Node) *Builder {
	name := node.Name()
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("node name cannot be empty for %T", node))
		return b
	}
	if _, exists := b.graph.nodes[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %s already registered", name))
		return b
	}
	b.graph.nodes[name] = node
	return b
}

// AddEdge adds an unconditional edge between two nodes.
func (b *Builder) AddEdge(from, to string) *Builder {
	return b.AddConditionalEdge(from, to, nil)
}

// AddConditionalEdge adds a predicate-gated edge between two nodes. Edges
// leaving the same node keep their registration order.
func (b *Builder) AddConditionalEdge(from, to string, predicate Predicate) *Builder {
	if from == "" || to == "" {
		b.errs = append(b.errs, fmt.Errorf("edge endpoints cannot be empty (%q -> %q)", from, to))
		return b
	}
	b.graph.edges[from] = append(b.graph.edges[from], &Edge{From: from, To: to, Predicate: predicate})
	return b
}

// SetEntryPoint designates the node the executor starts from.
func (b *Builder) SetEntryPoint(name string) *Builder {
	b.graph.entry = name
	return b
}

// Compile validates the assembled graph and returns it.
func (b *Builder) Compile() (*Graph, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if err := b.graph.validate(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

// MustCompile is like Compile but panics on error. Intended for statically
// known topologies.
func MustCompile(b *Builder) *Graph {
	g, err := b.Compile()
	if err != nil {
		panic(err)
	}
	return g
}
