package task

import "sync"

// Store holds the most recently fetched task collection.
//
// The server is authoritative: Load replaces everything. UpsertLocal and
// RemoveLocal patch the collection ahead of server confirmation, and the
// touched IDs stay marked pending until the next Load.
type Store struct {
	mu      sync.RWMutex
	tasks   []Task
	pending map[ID]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{pending: make(map[ID]bool)}
}

// Load replaces the entire collection and clears all pending marks.
// If the input repeats an ID, the last occurrence wins at the position of
// the first.
func (s *Store) Load(tasks []Task) {
	loaded := make([]Task, 0, len(tasks))
	index := make(map[ID]int, len(tasks))
	for _, t := range tasks {
		if i, ok := index[t.ID]; ok {
			loaded[i] = t
			continue
		}
		index[t.ID] = len(loaded)
		loaded = append(loaded, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = loaded
	s.pending = make(map[ID]bool)
}

// UpsertLocal replaces the task with the same ID, or appends it when absent,
// and marks it pending.
func (s *Store) UpsertLocal(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[t.ID] = true
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
	s.tasks = append(s.tasks, t)
}

// RemoveLocal removes the task with the given ID and reports whether it was
// present.
func (s *Store) RemoveLocal(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		s.pending[id] = true
		return true
	}
	return false
}

// Get returns a snapshot of the collection in server order.
func (s *Store) Get() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find returns the task with the given ID.
func (s *Store) Find(id ID) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Pending reports whether the task has a local change not yet confirmed by a
// reload.
func (s *Store) Pending(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[id]
}

// Len returns the number of tasks held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
