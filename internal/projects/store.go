// Package projects holds the in-memory project mapping that is the
// system of record, backed by a storage adapter.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/storage"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("project not found")

// Store is the authoritative in-memory project mapping. Every mutation is
// persisted to the backend before it returns. Reads return live pointers;
// the workflow router serializes event handling, so there is one writer
// at a time.
type Store struct {
	mu       sync.RWMutex
	backend  storage.Storage
	projects storage.ProjectMap
}

// NewStore creates a Store over the given backend. Call Load before use.
func NewStore(backend storage.Storage) *Store {
	return &Store{
		backend:  backend,
		projects: storage.ProjectMap{},
	}
}

// Load reads the mapping from the backend. On load failure the store
// falls back to an empty mapping and returns the error so the caller can
// log it; subsequent saves still go to the backend and report their own
// failures.
func (s *Store) Load(ctx context.Context) error {
	projects, err := s.backend.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.projects = storage.ProjectMap{}
		s.mu.Unlock()
		return fmt.Errorf("load projects: %w", err)
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	log.Printf("loaded %d projects", len(projects))
	return nil
}

// Get returns the project with the given ID.
func (s *Store) Get(id int) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project P%d: %w", id, ErrNotFound)
	}
	return p, nil
}

// List returns all projects ordered by ID.
func (s *Store) List() []*models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of projects.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Create assigns the next sequential ID (max existing + 1, or 1 when the
// mapping is empty), stores the project and persists.
func (s *Store) Create(ctx context.Context, name, clientID, editorID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextID := 1
	for id := range s.projects {
		if id >= nextID {
			nextID = id + 1
		}
	}

	p := models.NewProject(nextID, name, clientID, editorID)
	s.projects[nextID] = p

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies fn to the project and persists. If fn returns an error
// nothing is saved.
func (s *Store) Update(ctx context.Context, id int, fn func(*models.Project) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("project P%d: %w", id, ErrNotFound)
	}
	if err := fn(p); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Delete removes the project and all its submissions, then persists.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return fmt.Errorf("project P%d: %w", id, ErrNotFound)
	}
	delete(s.projects, id)
	return s.persist(ctx)
}

// PurgeCompleted removes every project whose derived status is Completed
// and returns the removed IDs.
func (s *Store) PurgeCompleted(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []int
	for id, p := range s.projects {
		if p.Status() == models.ProjectCompleted {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	for _, id := range removed {
		delete(s.projects, id)
	}
	sort.Ints(removed)

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return removed, nil
}

// FindClientSubmission locates the submission whose client copy carries
// the given message ID, scoped to projects where contact is the client.
func (s *Store) FindClientSubmission(contact string, messageID int) (*models.Project, *models.Submission) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ClientID != contact {
			continue
		}
		if sub := p.FindSubmissionByClientMessage(messageID); sub != nil {
			return p, sub
		}
	}
	return nil, nil
}

// persist saves the mapping. Callers hold the write lock. On save failure
// the in-memory state is no longer trusted, so the last persisted state
// is restored from the backend when possible.
func (s *Store) persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, storage.Clone(s.projects)); err != nil {
		if prev, loadErr := s.backend.Load(ctx); loadErr == nil {
			s.projects = prev
		} else {
			log.Printf("reload after failed save: %v", loadErr)
		}
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}
