package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/discovery"
	"github.com/museworks/ideaflow/graph"
	"github.com/museworks/ideaflow/log"
)

// SeedStage asks the tangential-seed supplier for a handful of unrelated
// concepts and folds them into a stimulus context for the creative stages.
// Seed discovery is an aid, not a dependency: when the supplier fails the
// stage completes with an empty context and the pipeline carries on.
type SeedStage struct {
	stageBase
	supplier discovery.Supplier
	count    int
}

// NewSeedStage creates the seed stage.
func NewSeedStage(coord *graph.CoordinationStore, store *artifact.Store, supplier discovery.Supplier, count int) *SeedStage {
	if count < 1 {
		count = discovery.DefaultPoolSize
	}
	return &SeedStage{
		stageBase: stageBase{name: NodeSeed, coord: coord, store: store},
		supplier:  supplier,
		count:     count,
	}
}

// Invoke implements graph.Node.
func (s *SeedStage) Invoke(ctx context.Context, task string, state graph.ExecutionState) (*graph.NodeResult, error) {
	seeds, err := s.supplier.Discover(ctx, s.count, task)
	if err != nil {
		log.Warnf("run %s: seed discovery failed, continuing without stimuli: %v", state.RunID, err)
		seeds = nil
	}

	seedContext := FormatSeedContext(seeds)
	s.persist(state.Iteration, seedContext)

	next := state.WithUpdates(graph.StateUpdate{
		Seeds:       seeds,
		SeedContext: graph.String(seedContext),
		SeedCount:   graph.Int(len(seeds)),
	})
	return completed(s.name, fmt.Sprintf("discovered %d tangential seeds", len(seeds)), next), nil
}

// FormatSeedContext renders discovered seeds as prompt-ready stimulus text.
func FormatSeedContext(seeds []discovery.Seed) string {
	if len(seeds) == 0 {
		return ""
	}
	var b strings.Builder
	for i, seed := range seeds {
		fmt.Fprintf(&b, "%d. %s: %s", i+1, seed.Term, seed.Context)
		if seed.RelevanceNote != "" {
			fmt.Fprintf(&b, " (%s)", seed.RelevanceNote)
		}
		b.WriteString("\n")
	}
	return b.String()
}
