package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lvillar/reportcanvas/model"
)

// Sentinel errors returned by Store.
var (
	ErrLocked           = errors.New("store: template is locked by a running export")
	ErrExportInProgress = errors.New("store: export already in progress")
	ErrNotFound         = errors.New("store: object not found")
)

// state is the published, immutable view of a template.
type state struct {
	objects *Snapshot
	paper   model.Paper
	items   []model.EvaluationItem
}

// Store is the editing session's template. It is safe for concurrent use:
// mutations are serialised and readers load whole snapshots.
type Store struct {
	mu       sync.Mutex // serialises writers and guards selected, locked
	cur      atomic.Pointer[state]
	selected string
	locked   bool
	newID    func() string
}

// New returns an empty template on paper.
func New(paper model.Paper) *Store {
	s := &Store{newID: uuid.NewString}
	s.cur.Store(&state{objects: &Snapshot{}, paper: paper})
	return s
}

// Snapshot returns the current object list.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load().objects
}

// Paper returns the current paper type.
func (s *Store) Paper() model.Paper {
	return s.cur.Load().paper
}

// Items returns a copy of the evaluation items.
func (s *Store) Items() []model.EvaluationItem {
	return append([]model.EvaluationItem(nil), s.cur.Load().items...)
}

// Template returns a consistent view of the whole template.
func (s *Store) Template() model.Template {
	st := s.cur.Load()
	return model.Template{
		Paper:   st.paper,
		Objects: st.objects.Objects(),
		Items:   append([]model.EvaluationItem(nil), st.items...),
	}
}

// Selected returns the id of the selected object, or "".
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select marks id as the selected object. An empty id clears the selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && !s.cur.Load().objects.Contains(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.selected = id
	return nil
}

// Add appends obj with a freshly generated id and returns that id.
func (s *Store) Add(obj model.Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return "", ErrLocked
	}
	st := s.cur.Load()
	id := s.newID()
	for st.objects.Contains(id) {
		id = s.newID()
	}
	s.publish(st, st.objects.Append(model.WithID(obj, id)))
	return id, nil
}

// Update sets field f of the object with id and returns the resulting
// snapshot. An absent id leaves the template unchanged.
func (s *Store) Update(id string, f model.Field, v any) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.cur.Load()
	if s.locked {
		return st.objects, ErrLocked
	}
	next, err := st.objects.Update(id, f, v)
	if err != nil {
		return st.objects, err
	}
	if next != st.objects {
		s.publish(st, next)
	}
	return next, nil
}

// Remove deletes the object with id, clearing the selection if it pointed at
// that object. An absent id leaves the template unchanged.
func (s *Store) Remove(id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.cur.Load()
	if s.locked {
		return st.objects, ErrLocked
	}
	next := st.objects.Remove(id)
	if next == st.objects {
		return next, nil
	}
	s.publish(st, next)
	if s.selected == id {
		s.selected = ""
	}
	return next, nil
}

// SetPaper changes the paper type.
func (s *Store) SetPaper(p model.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrLocked
	}
	st := *s.cur.Load()
	st.paper = p
	s.cur.Store(&st)
	return nil
}

// SetItems replaces the evaluation items. Empty labels default to the score
// column.
func (s *Store) SetItems(items []model.EvaluationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrLocked
	}
	norm := make([]model.EvaluationItem, len(items))
	for i, it := range items {
		norm[i] = it.Normalize()
	}
	st := *s.cur.Load()
	st.items = norm
	s.cur.Store(&st)
	return nil
}

// Lock rejects all mutations until Unlock is called. It fails if the store
// is already locked.
func (s *Store) Lock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrExportInProgress
	}
	s.locked = true
	return nil
}

// Unlock releases a lock taken by Lock.
func (s *Store) Unlock() {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
}

// Guard runs fn unless an export holds the lock, in which case it returns
// ErrLocked. Lock waits for fn to return.
func (s *Store) Guard(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return ErrLocked
	}
	fn()
	return nil
}

// Locked reports whether an export holds the lock.
func (s *Store) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *Store) publish(st *state, objects *Snapshot) {
	next := *st
	next.objects = objects
	s.cur.Store(&next)
}
