package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museworks/ideaflow/model"
)

type seedInvoker struct {
	mu    sync.Mutex
	calls int
	fail  map[int]bool
}

func (s *seedInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()
	if s.fail[n] {
		return "", errors.New("model unavailable")
	}
	return fmt.Sprintf(`{"term":"term-%d","context":"ctx","relevance":"tangent"}`, n), nil
}

func (s *seedInvoker) Info() model.Info {
	return model.Info{Name: "seed", Model: "seed-v1", Temperature: 1.0}
}

func ordinalPrompter() SeedPrompter {
	return SeedPrompterFunc(func(task string, ordinal int) string {
		return fmt.Sprintf("%s #%d", task, ordinal)
	})
}

func TestDiscoverReturnsRequestedCount(t *testing.T) {
	supplier := NewLLMSupplier(&seedInvoker{}, ordinalPrompter(), WithPoolSize(2))
	seeds, err := supplier.Discover(context.Background(), 3, "new battery chemistries")
	require.NoError(t, err)
	assert.Len(t, seeds, 3)
	for _, seed := range seeds {
		assert.NotEmpty(t, seed.Term)
		assert.Equal(t, "tangent", seed.RelevanceNote)
	}
}

func TestDiscoverSkipsFailedSeeds(t *testing.T) {
	invoker := &seedInvoker{fail: map[int]bool{1: true}}
	supplier := NewLLMSupplier(invoker, ordinalPrompter())
	seeds, err := supplier.Discover(context.Background(), 3, "task")
	require.NoError(t, err)
	assert.Len(t, seeds, 2)
}

func TestDiscoverZeroCount(t *testing.T) {
	supplier := NewLLMSupplier(&seedInvoker{}, ordinalPrompter())
	seeds, err := supplier.Discover(context.Background(), 0, "task")
	require.NoError(t, err)
	assert.Nil(t, seeds)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Seed
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"term":"mycelium","context":"fungal networks","relevance":"distributed routing"}`,
			want: Seed{Term: "mycelium", Context: "fungal networks", RelevanceNote: "distributed routing"},
		},
		{
			name: "fenced",
			text: "```json\n{\"term\":\"tides\",\"context\":\"c\",\"relevance\":\"r\"}\n```",
			want: Seed{Term: "tides", Context: "c", RelevanceNote: "r"},
		},
		{
			name:    "no object",
			text:    "sorry, I cannot help",
			wantErr: true,
		},
		{
			name:    "missing term",
			text:    `{"context":"c","relevance":"r"}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := parseSeed(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, seed)
		})
	}
}

func TestStaticSupplier(t *testing.T) {
	supplier := &StaticSupplier{Seeds: []Seed{{Term: "a"}, {Term: "b"}}}
	seeds, err := supplier.Discover(context.Background(), 5, "task")
	require.NoError(t, err)
	assert.Len(t, seeds, 2)

	seeds, err = supplier.Discover(context.Background(), 1, "task")
	require.NoError(t, err)
	assert.Equal(t, []Seed{{Term: "a"}}, seeds)
}
