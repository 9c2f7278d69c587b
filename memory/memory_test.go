package memory

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/judge"
)

func newTestManager(t *testing.T) (*Manager, *artifact.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := artifact.NewStore("/run", artifact.WithFs(fs))
	require.NoError(t, err)
	m := NewManager(store)
	m.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return m, store
}

func TestLoadMissingFile(t *testing.T) {
	m, _ := newTestManager(t)
	file := m.Load()
	assert.Empty(t, file.AcceptedIdeas)
	assert.Zero(t, file.TotalAccepted)
}

func TestLoadCorruptFile(t *testing.T) {
	m, store := newTestManager(t)
	require.NoError(t, store.Write(IdeasPath, "{not json"))
	file := m.Load()
	assert.Empty(t, file.AcceptedIdeas)
}

func TestAppendAccumulates(t *testing.T) {
	m, store := newTestManager(t)

	first, err := m.Append([]judge.AcceptedIdea{
		{IdeaName: "Idea A", QualityScore: 7.5},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalAccepted)
	assert.Equal(t, 1, first.IterationsRun)

	second, err := m.Append([]judge.AcceptedIdea{
		{IdeaName: "Idea B", QualityScore: 8.0},
		{IdeaName: "Idea C", QualityScore: 6.5},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, second.TotalAccepted)
	assert.Equal(t, 2, second.IterationsRun)
	assert.Equal(t, 1, second.AcceptedIdeas[0].DiscoveredInIteration)
	assert.Equal(t, 2, second.AcceptedIdeas[1].DiscoveredInIteration)
	assert.Equal(t, "2026-08-29T12:00:00Z", second.LastUpdated)

	raw, err := store.Read(IdeasPath)
	require.NoError(t, err)
	assert.Contains(t, raw, `"accepted_ideas"`)
	assert.Contains(t, raw, `"discovered_in_iteration": 2`)

	reloaded := m.Load()
	assert.Len(t, reloaded.AcceptedIdeas, 3)
	assert.Equal(t, "Idea B", reloaded.AcceptedIdeas[1].IdeaName)
}
