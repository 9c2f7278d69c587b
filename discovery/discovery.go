// Package discovery supplies tangential seed concepts for the divergent
// generation stage. A Supplier turns the original task into a bounded list of
// loosely related terms; the pipeline only requires the list, not how the
// terms were chosen.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/museworks/ideaflow/log"
	"github.com/museworks/ideaflow/model"
)

// Seed is one tangential concept with the context in which it was found and
// a short note on why it might be relevant.
type Seed struct {
	Term          string `json:"term"`
	Context       string `json:"context"`
	RelevanceNote string `json:"relevance"`
}

// Supplier discovers tangential seeds for a task.
type Supplier interface {
	// Discover returns at most count seeds for the given task text.
	Discover(ctx context.Context, count int, task string) ([]Seed, error)
}

// DefaultPoolSize bounds how many seeds are researched concurrently.
const DefaultPoolSize = 3

// SeedPrompter renders the per-seed discovery prompt. The engine places no
// contract on the prompt text beyond it asking for a single JSON object with
// term, context and relevance fields.
type SeedPrompter interface {
	BuildSeedPrompt(task string, ordinal int) string
}

// SeedPrompterFunc adapts a function to the SeedPrompter interface.
type SeedPrompterFunc func(task string, ordinal int) string

// BuildSeedPrompt implements SeedPrompter.
func (f SeedPrompterFunc) BuildSeedPrompt(task string, ordinal int) string {
	return f(task, ordinal)
}

// LLMSupplier discovers seeds by asking a high-temperature model for one
// tangential concept at a time. Seeds are researched concurrently on a
// bounded worker pool; individual failures are logged and skipped so a
// flaky seed never sinks the whole batch.
type LLMSupplier struct {
	invoker  model.Invoker
	prompter SeedPrompter
	poolSize int
}

// LLMOption configures an LLMSupplier.
type LLMOption func(*LLMSupplier)

// WithPoolSize bounds concurrent seed research (default 3).
func WithPoolSize(n int) LLMOption {
	return func(s *LLMSupplier) { s.poolSize = n }
}

// NewLLMSupplier creates a supplier over the given model.
func NewLLMSupplier(invoker model.Invoker, prompter SeedPrompter, opts ...LLMOption) *LLMSupplier {
	s := &LLMSupplier{
		invoker:  invoker,
		prompter: prompter,
		poolSize: DefaultPoolSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.poolSize < 1 {
		s.poolSize = 1
	}
	return s
}

// Discover implements Supplier.
func (s *LLMSupplier) Discover(ctx context.Context, count int, task string) ([]Seed, error) {
	if count <= 0 {
		return nil, nil
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, fmt.Errorf("seed pool: %w", err)
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		seeds []Seed
	)
	for i := 0; i < count; i++ {
		ordinal := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			seed, err := s.discoverOne(ctx, task, ordinal)
			if err != nil {
				log.Warnf("seed %d discovery failed: %v", ordinal, err)
				return
			}
			mu.Lock()
			seeds = append(seeds, seed)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			log.Warnf("seed %d not scheduled: %v", ordinal, submitErr)
		}
	}
	wg.Wait()
	return seeds, nil
}

// discoverOne asks the model for a single tangential concept.
func (s *LLMSupplier) discoverOne(ctx context.Context, task string, ordinal int) (Seed, error) {
	prompt := s.prompter.BuildSeedPrompt(task, ordinal)
	response, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		return Seed{}, err
	}
	return parseSeed(response)
}

// parseSeed extracts the seed JSON object from model output, tolerating a
// surrounding code fence or prose.
func parseSeed(text string) (Seed, error) {
	trimmed := strings.TrimSpace(text)
	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end <= start {
		return Seed{}, fmt.Errorf("no JSON object in seed response")
	}
	var seed Seed
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &seed); err != nil {
		return Seed{}, fmt.Errorf("unmarshal seed: %w", err)
	}
	if seed.Term == "" {
		return Seed{}, fmt.Errorf("seed response missing term")
	}
	return seed, nil
}

// StaticSupplier returns a fixed seed list; useful for offline runs and
// tests.
type StaticSupplier struct {
	Seeds []Seed
}

// Discover implements Supplier.
func (s *StaticSupplier) Discover(_ context.Context, count int, _ string) ([]Seed, error) {
	if count > len(s.Seeds) {
		count = len(s.Seeds)
	}
	return s.Seeds[:count], nil
}
