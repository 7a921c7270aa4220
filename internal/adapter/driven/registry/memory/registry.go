// Package memory holds the in-process user registry. All state is lost on
// restart, which is the intended lifecycle for this server.
package memory

import (
	"sync"
	"time"

	"github.com/voxlink/signaling/internal/core/domain"
)

// Registry implements port.UserRegistry. Insertion order is preserved so
// presence lists are stable across broadcasts.
type Registry struct {
	mu    sync.Mutex
	users map[domain.ConnID]*domain.User
	order []domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[domain.ConnID]*domain.User),
	}
}

func (r *Registry) Register(id domain.ConnID, name string, now time.Time) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[id]; ok {
		// Re-register on a live connection is a rename plus activity
		// refresh. The busy flag is kept so a rename cannot detach the
		// user from a call in progress.
		if name == "" {
			return domain.User{}, domain.ErrEmptyName
		}
		existing.Name = name
		existing.LastActivity = now
		return *existing, nil
	}

	user, err := domain.NewUser(id, name, now)
	if err != nil {
		return domain.User{}, err
	}
	r.users[id] = user
	r.order = append(r.order, id)
	return *user, nil
}

func (r *Registry) Get(id domain.ConnID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	return *user, true
}

func (r *Registry) ListOthers(exclude domain.ConnID) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		out = append(out, *r.users[id])
	}
	return out
}

func (r *Registry) SetInCall(id domain.ConnID, inCall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.InCall = inCall
	}
}

func (r *Registry) Touch(id domain.ConnID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.LastActivity = at
	}
}

func (r *Registry) Remove(id domain.ConnID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *user, true
}

func (r *Registry) Snapshot() []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.users[id])
	}
	return out
}
