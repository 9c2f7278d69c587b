// Package memory keeps the accepted ideas of a run in memory/ideas.json so
// later iterations and later generation units can build on what earlier ones
// produced.
package memory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/museworks/ideaflow/artifact"
	"github.com/museworks/ideaflow/judge"
)

// IdeasPath is where the idea memory lives relative to the run directory.
const IdeasPath = "memory/ideas.json"

// IdeaRecord is an accepted idea annotated with when it was found.
type IdeaRecord struct {
	judge.AcceptedIdea
	DiscoveredInIteration int    `json:"discovered_in_iteration"`
	Timestamp             string `json:"timestamp"`
}

// File is the on-disk shape of the idea memory.
type File struct {
	AcceptedIdeas []IdeaRecord `json:"accepted_ideas"`
	LastUpdated   string       `json:"last_updated"`
	TotalAccepted int          `json:"total_accepted"`
	IterationsRun int          `json:"iterations_run"`
}

// Manager reads and appends to a run's idea memory.
type Manager struct {
	store *artifact.Store
	now   func() time.Time
}

// NewManager creates a manager over the run's artifact store.
func NewManager(store *artifact.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Load returns the current idea memory, or an empty file when none exists
// yet or the existing one is unreadable.
func (m *Manager) Load() *File {
	if !m.store.Exists(IdeasPath) {
		return &File{AcceptedIdeas: []IdeaRecord{}}
	}
	raw, err := m.store.Read(IdeasPath)
	if err != nil {
		return &File{AcceptedIdeas: []IdeaRecord{}}
	}
	var file File
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		return &File{AcceptedIdeas: []IdeaRecord{}}
	}
	if file.AcceptedIdeas == nil {
		file.AcceptedIdeas = []IdeaRecord{}
	}
	return &file
}

// Append adds the accepted ideas of one evaluation pass and rewrites the
// memory file. Iteration numbers are 1-based. The returned File reflects the
// state after the append.
func (m *Manager) Append(ideas []judge.AcceptedIdea, iteration int) (*File, error) {
	file := m.Load()
	stamp := m.now().Format(time.RFC3339)
	for _, idea := range ideas {
		file.AcceptedIdeas = append(file.AcceptedIdeas, IdeaRecord{
			AcceptedIdea:          idea,
			DiscoveredInIteration: iteration,
			Timestamp:             stamp,
		})
	}
	file.LastUpdated = stamp
	file.TotalAccepted = len(file.AcceptedIdeas)
	if iteration > file.IterationsRun {
		file.IterationsRun = iteration
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal idea memory: %w", err)
	}
	if err := m.store.Write(IdeasPath, string(raw)); err != nil {
		return nil, err
	}
	return file, nil
}
