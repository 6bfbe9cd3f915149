// Package storage provides persistence backends for the project mapping.
package storage

import (
	"context"
	"errors"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

// ErrUnavailable is returned (wrapped) when the backing store is
// unreachable. Callers may fall back to an empty mapping on load, but must
// not keep operating as if saves succeed.
var ErrUnavailable = errors.New("storage unavailable")

// ProjectMap is the authoritative mapping of project ID to project.
type ProjectMap map[int]*models.Project

// Storage persists the whole project mapping. The workflow loads it once
// at startup and saves it after every mutation, so both operations move
// the complete mapping.
type Storage interface {
	// Open initializes the backend (creates files, runs migrations).
	Open() error
	// Close releases the backend.
	Close() error
	// Load reads the full project mapping.
	Load(ctx context.Context) (ProjectMap, error)
	// Save writes the full project mapping, replacing previous contents.
	Save(ctx context.Context, projects ProjectMap) error
}

// Clone returns a deep copy of the mapping. Adapters use it so callers
// can keep mutating their own copy after a save.
func Clone(projects ProjectMap) ProjectMap {
	out := make(ProjectMap, len(projects))
	for id, p := range projects {
		cp := *p
		cp.Submissions = make([]*models.Submission, len(p.Submissions))
		for i, sub := range p.Submissions {
			s := *sub
			s.Feedback = append([]string(nil), sub.Feedback...)
			cp.Submissions[i] = &s
		}
		out[id] = &cp
	}
	return out
}
