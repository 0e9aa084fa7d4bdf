// internal/membership/registry.go
package membership

import (
	"fmt"
	"sync"
)

// Registry is the ordered, in-memory collection of members. Every method is
// one critical section, so a lookup followed by a mutation through Update
// cannot interleave with another caller.
type Registry struct {
	mu      sync.Mutex
	members []Member
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a member. ID uniqueness is the caller's responsibility.
func (r *Registry) Add(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, m.Clone())
}

// Find returns a copy of the first member with the given ID.
func (r *Registry) Find(id int) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Member{}, fmt.Errorf("no member found with ID %d: %w", id, ErrNotFound)
	}
	return r.members[i].Clone(), nil
}

// AddIfAbsent appends m unless a member with the same ID is already present.
func (r *Registry) AddIfAbsent(m Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(m.ID) >= 0 {
		return false
	}
	r.members = append(r.members, m.Clone())
	return true
}

// All returns copies of every member in insertion order.
func (r *Registry) All() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Member, len(r.members))
	for i, m := range r.members {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of members.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// ReplaceAll discards the current contents in favour of members.
func (r *Registry) ReplaceAll(members []Member) {
	next := make([]Member, len(members))
	for i, m := range members {
		next[i] = m.Clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = next
}

// Update applies fn to a copy of the first member with the given ID and
// stores the copy back only when fn returns no error. The returned member
// is the stored state.
func (r *Registry) Update(id int, fn func(m *Member) (Outcome, error)) (Member, Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Member{}, Outcome{}, fmt.Errorf("no member found with ID %d: %w", id, ErrNotFound)
	}

	next := r.members[i].Clone()
	out, err := fn(&next)
	if err != nil {
		return r.members[i].Clone(), Outcome{}, err
	}
	r.members[i] = next
	return next.Clone(), out, nil
}

func (r *Registry) indexOf(id int) int {
	for i := range r.members {
		if r.members[i].ID == id {
			return i
		}
	}
	return -1
}
