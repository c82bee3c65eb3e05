package meshstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/scene"
)

// ErrUnknownMesh is returned when committing to a mesh id the store does not hold
var ErrUnknownMesh = errors.New("unknown mesh")

// Store holds meshes in creation order and edits them on behalf of a session
type Store struct {
	mu     sync.RWMutex
	meshes map[string]*Mesh
	order  []string
}

// New creates an empty store
func New() *Store {
	return &Store{meshes: make(map[string]*Mesh)}
}

// Add registers an existing mesh, e.g. one loaded from disk
func (s *Store) Add(m *Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meshes[m.ID()]; !ok {
		s.order = append(s.order, m.ID())
	}
	s.meshes[m.ID()] = m
}

// Mesh returns the mesh with the given id
func (s *Store) Mesh(id string) (*Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meshes[id]
	return m, ok
}

// Meshes returns all meshes in creation order
func (s *Store) Meshes() []*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Mesh, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.meshes[id])
	}
	return out
}

// SceneMeshes returns all meshes through the read-only scene interface
func (s *Store) SceneMeshes() []scene.Mesh {
	meshes := s.Meshes()
	out := make([]scene.Mesh, len(meshes))
	for i, m := range meshes {
		out[i] = m
	}
	return out
}

// CommitFace adds the face to the mesh with the given id, or to a new mesh
// when meshID is empty
func (s *Store) CommitFace(meshID string, face geometry.Quad) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meshID == "" {
		m := NewMesh(fmt.Sprintf("mesh-%d", len(s.order)+1))
		if err := m.AddFace(face); err != nil {
			return "", err
		}
		s.meshes[m.ID()] = m
		s.order = append(s.order, m.ID())
		monitoring.Logf("meshstore: created mesh %s", m.ID())
		return m.ID(), nil
	}

	m, ok := s.meshes[meshID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMesh, meshID)
	}
	if err := m.AddFace(face); err != nil {
		return "", err
	}
	return meshID, nil
}
