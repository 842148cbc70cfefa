package policy

import (
	"context"
	"sync"

	"lifelink/pkg/requestcontext"
)

// InMemoryDirectory keeps role membership in process memory. It favors clarity
// over performance and doubles as the test double for the Evaluator.
type InMemoryDirectory struct {
	mu     sync.RWMutex
	admins map[requestcontext.Principal]bool
	users  map[requestcontext.Principal]bool
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		admins: make(map[requestcontext.Principal]bool),
		users:  make(map[requestcontext.Principal]bool),
	}
}

func (d *InMemoryDirectory) IsAdmin(_ context.Context, p requestcontext.Principal) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.admins[p], nil
}

// Bootstrap records a principal; the first one ever seen becomes admin.
func (d *InMemoryDirectory) Bootstrap(_ context.Context, p requestcontext.Principal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.users) == 0 && len(d.admins) == 0 {
		d.admins[p] = true
	}
	d.users[p] = true
	return nil
}

func (d *InMemoryDirectory) Assign(_ context.Context, p requestcontext.Principal, role Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if role == RoleAdmin {
		d.admins[p] = true
	} else {
		delete(d.admins, p)
	}
	d.users[p] = true
	return nil
}
