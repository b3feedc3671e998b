package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage. Leads are write-only on
// the HTTP surface; GetByID reads a stored lead back for backend tests and
// operator tooling and is not served by any route.
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
}

// InMemoryRepository keeps leads in process memory. Useful for local runs
// without a datastore and for tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	order []string
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, time.Now().UTC())

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.order = append(r.order, lead.ID)
	r.mu.Unlock()

	copied := *lead
	return &copied, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	copied := *lead
	return &copied, nil
}

// List returns every stored lead in insertion order.
func (r *InMemoryRepository) List() []Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.leads[id])
	}
	return out
}

// Ping always succeeds; memory is always reachable.
func (r *InMemoryRepository) Ping(context.Context) error {
	return nil
}
