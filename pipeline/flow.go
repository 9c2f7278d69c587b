package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/config"
	"github.com/museworks/ideaflow/discovery"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/judge"
	"github.com/museworks/ideaflow/log"
	"github.com/museworks/ideaflow/memory"
	"github.com/museworks/ideaflow/model"
)

// Unit is one generation unit of the pipeline: a named pair of invokers, a
// hot one for the creative pass and a cool one for the refinement pass.
type Unit struct {
	Name       string
	Creative   model.Invoker
	Refinement model.Invoker
}

// Flow assembles and runs the full creativity pipeline. Units are chained
// sequentially inside each iteration so that later units see the accepted
// counts earlier units wrote to the coordination store.
type Flow struct {
	cfg      *config.FlowConfig
	units    []Unit
	judge    *judge.Judge
	research model.Invoker
	supplier discovery.Supplier
	prompter *Prompter
	fs       afero.Fs
	newRunID func() string
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithSupplier sets the tangential-seed supplier.
func WithSupplier(s discovery.Supplier) FlowOption {
	return func(f *Flow) { f.supplier = s }
}

// WithPrompter replaces the default prompt renderings.
func WithPrompter(p *Prompter) FlowOption {
	return func(f *Flow) { f.prompter = p }
}

// WithResearcher sets the invoker for the finishing research stage. Without
// it the first unit's refinement invoker is reused.
func WithResearcher(inv model.Invoker) FlowOption {
	return func(f *Flow) { f.research = inv }
}

// WithFs replaces the filesystem run artifacts are written to.
func WithFs(fs afero.Fs) FlowOption {
	return func(f *Flow) { f.fs = fs }
}

// WithRunID overrides run ID generation.
func WithRunID(gen func() string) FlowOption {
	return func(f *Flow) { f.newRunID = gen }
}

// NewFlow creates a flow over the given configuration, generation units and
// judge.
func NewFlow(cfg *config.FlowConfig, units []Unit, j *judge.Judge, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("flow: at least one generation unit is required")
	}
	for _, u := range units {
		if u.Name == "" || u.Creative == nil || u.Refinement == nil {
			return nil, fmt.Errorf("flow: unit %q is missing a name or an invoker", u.Name)
		}
	}
	if j == nil {
		return nil, fmt.Errorf("flow: a judge is required")
	}
	f := &Flow{
		cfg:      cfg,
		units:    units,
		judge:    j,
		supplier: &discovery.StaticSupplier{},
		prompter: DefaultPrompter(),
		newRunID: defaultRunID,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.research == nil {
		f.research = units[0].Refinement
	}
	return f, nil
}

func defaultRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}

// Outcome is what a finished (or aborted) run hands back.
type Outcome struct {
	RunID  string
	RunDir string
	Final  string
	Run    *graph.RunResult
}

// Run executes the pipeline for one task. Node-local failures surface as
// Failed NodeResults inside Outcome.Run; the returned error is reserved for
// scheduling-level aborts, which still come with the partial Outcome.
func (f *Flow) Run(ctx context.Context, task string) (*Outcome, error) {
	runID := f.newRunID()
	runDir := filepath.Join(f.cfg.OutputDir, runID)

	storeOpts := []artifact.Option{}
	if f.fs != nil {
		storeOpts = append(storeOpts, artifact.WithFs(f.fs))
	}
	store, err := artifact.NewStore(runDir, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("flow: preparing run directory: %w", err)
	}

	coord := graph.NewCoordinationStore(runID, runDir, f.cfg.Iterations)
	mem := memory.NewManager(store)

	g, err := f.buildGraph(coord, store, mem)
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecutor(g,
		graph.WithMaxNodeExecutions(f.cfg.MaxNodeExecutions()),
		graph.WithTimeout(f.cfg.Timeout.Std()),
	)
	if err != nil {
		return nil, err
	}

	state := graph.ExecutionState{
		OriginalTask:  task,
		RunID:         runID,
		RunDir:        runDir,
		StartTime:     time.Now().Format(time.RFC3339),
		MaxIterations: f.cfg.Iterations,
		Success:       true,
	}
	log.Infof("run %s: starting, %d iterations, %d units", runID, f.cfg.Iterations, len(f.units))

	run, runErr := exec.Execute(ctx, state, coord)
	if run == nil {
		return nil, runErr
	}

	final := Aggregate(run.Results)
	if err := WriteFinalOutput(store, run.FinalState, final); err != nil {
		log.Warnf("run %s: writing final output: %v", runID, err)
	}
	return &Outcome{RunID: runID, RunDir: runDir, Final: final, Run: run}, runErr
}

// buildGraph wires the controller, the seed stage, one triad per unit and
// the research stage. Pipeline-internal edges are unconditional so that a
// Failed stage flows onward rather than halting the run.
func (f *Flow) buildGraph(coord *graph.CoordinationStore, store *artifact.Store, mem *memory.Manager) (*graph.Graph, error) {
	b := graph.NewBuilder().
		AddNode(NewController(coord)).
		AddNode(NewSeedStage(coord, store, f.supplier, f.cfg.SeedCount)).
		AddNode(NewResearchStage(coord, store, f.research, f.prompter))

	for _, u := range f.units {
		b.AddNode(NewCreativeStage(u.Name, coord, store, u.Creative, f.prompter)).
			AddNode(NewRefinementStage(u.Name, coord, store, u.Refinement, f.prompter)).
			AddNode(NewJudgeStage(u.Name, coord, store, f.judge, mem))
	}

	b.SetEntryPoint(NodeController).
		AddConditionalEdge(NodeController, NodeSeed, ContinuePredicate).
		AddConditionalEdge(NodeController, NodeResearch, FinishedPredicate).
		AddEdge(NodeSeed, CreativeNode(f.units[0].Name))

	for i, u := range f.units {
		b.AddEdge(CreativeNode(u.Name), RefinementNode(u.Name)).
			AddEdge(RefinementNode(u.Name), JudgeNode(u.Name))
		if i+1 < len(f.units) {
			b.AddEdge(JudgeNode(u.Name), CreativeNode(f.units[i+1].Name))
		} else {
			b.AddEdge(JudgeNode(u.Name), NodeController)
		}
	}
	return b.Compile()
}
