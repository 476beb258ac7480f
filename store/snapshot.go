// Package store owns the ordered list of canvas objects of a template.
//
// The list is never modified in place. Every operation derives a new
// Snapshot from the previous one, and the Store publishes snapshots through an
// atomic pointer, so a reader always observes a complete list.
package store

import (
	"github.com/lvillar/reportcanvas/model"
)

// Snapshot is an immutable, ordered list of canvas objects. The zero value is
// an empty list.
type Snapshot struct {
	objects []model.Object
}

// NewSnapshot returns a snapshot holding a copy of objs.
func NewSnapshot(objs ...model.Object) *Snapshot {
	return &Snapshot{objects: append([]model.Object(nil), objs...)}
}

// Len returns the number of objects.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.objects)
}

// Objects returns the objects in paint order. The returned slice is a copy.
func (s *Snapshot) Objects() []model.Object {
	if s == nil {
		return nil
	}
	return append([]model.Object(nil), s.objects...)
}

// At returns the object at paint position i.
func (s *Snapshot) At(i int) model.Object {
	return s.objects[i]
}

// Find returns the object with the given id.
func (s *Snapshot) Find(id string) (model.Object, bool) {
	if i := s.index(id); i >= 0 {
		return s.objects[i], true
	}
	return nil, false
}

// Contains reports whether an object with id exists.
func (s *Snapshot) Contains(id string) bool {
	return s.index(id) >= 0
}

func (s *Snapshot) index(id string) int {
	if s == nil {
		return -1
	}
	for i, o := range s.objects {
		if o.ObjectID() == id {
			return i
		}
	}
	return -1
}

// Append returns a new snapshot with obj on top of every existing object.
func (s *Snapshot) Append(obj model.Object) *Snapshot {
	next := make([]model.Object, 0, s.Len()+1)
	next = append(next, s.Objects()...)
	next = append(next, obj)
	return &Snapshot{objects: next}
}

// Update returns a new snapshot where the object with id has field f set to
// v. If no object has that id, s is returned unchanged.
func (s *Snapshot) Update(id string, f model.Field, v any) (*Snapshot, error) {
	i := s.index(id)
	if i < 0 {
		return s, nil
	}
	obj, err := model.Set(s.objects[i], f, v)
	if err != nil {
		return s, err
	}
	next := s.Objects()
	next[i] = obj
	return &Snapshot{objects: next}, nil
}

// Remove returns a new snapshot without the object with id. If no object has
// that id, s is returned unchanged.
func (s *Snapshot) Remove(id string) *Snapshot {
	i := s.index(id)
	if i < 0 {
		return s
	}
	next := make([]model.Object, 0, s.Len()-1)
	next = append(next, s.objects[:i]...)
	next = append(next, s.objects[i+1:]...)
	return &Snapshot{objects: next}
}
