package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error)
	AddNote(ctx context.Context, id, text string) (*Lead, error)
	UpdateNote(ctx context.Context, id, noteID, text string) (*Lead, error)
	DeleteNote(ctx context.Context, id, noteID string) (*Lead, error)
}

// InMemoryRepository implements Repository with in-memory storage. It
// backs unit tests and the no-database development mode.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	seq   map[string]int64
	next  int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		seq:   make(map[string]int64),
	}
}

// Create creates a new lead. Status is forced to "new" and the notes
// list starts empty regardless of anything in the request.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    req.Source,
		Message:   req.Message,
		Status:    StatusNew,
		Notes:     []Note{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.next++
	r.seq[lead.ID] = r.next
	r.mu.Unlock()

	return cloneLead(lead), nil
}

// List returns all leads ordered by created_at descending, newest
// first. Insertion order breaks ties.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, cloneLead(lead))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return cloneLead(lead), nil
}

// UpdateStatus replaces the lead's funnel stage. The write is
// idempotent; updated_at advances either way.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now().UTC()
	return cloneLead(lead), nil
}

// AddNote appends a note at the end of the lead's notes.
func (r *InMemoryRepository) AddNote(ctx context.Context, id, text string) (*Lead, error) {
	req := NoteRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	now := time.Now().UTC()
	lead.Notes = append(lead.Notes, Note{
		ID:        uuid.New().String(),
		Text:      req.Text,
		CreatedAt: now,
		UpdatedAt: now,
	})
	lead.UpdatedAt = now
	return cloneLead(lead), nil
}

// UpdateNote replaces the text of one note. The notes order never
// changes.
func (r *InMemoryRepository) UpdateNote(ctx context.Context, id, noteID, text string) (*Lead, error) {
	req := NoteRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	for i := range lead.Notes {
		if lead.Notes[i].ID == noteID {
			now := time.Now().UTC()
			lead.Notes[i].Text = req.Text
			lead.Notes[i].UpdatedAt = now
			lead.UpdatedAt = now
			return cloneLead(lead), nil
		}
	}
	return nil, ErrNoteNotFound
}

// DeleteNote removes one note keeping the relative order of the rest.
// A nonexistent note id reports ErrNoteNotFound without mutating the
// lead.
func (r *InMemoryRepository) DeleteNote(ctx context.Context, id, noteID string) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	for i := range lead.Notes {
		if lead.Notes[i].ID == noteID {
			lead.Notes = append(lead.Notes[:i], lead.Notes[i+1:]...)
			lead.UpdatedAt = time.Now().UTC()
			return cloneLead(lead), nil
		}
	}
	return nil, ErrNoteNotFound
}

// Seed inserts a pre-built lead verbatim, keeping its status and
// timestamps. Test helper; not part of Repository.
func (r *InMemoryRepository) Seed(lead *Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[lead.ID] = cloneLead(lead)
	r.next++
	r.seq[lead.ID] = r.next
}

// cloneLead deep-copies a lead so callers cannot alias internal state.
func cloneLead(l *Lead) *Lead {
	cp := *l
	cp.Notes = make([]Note, len(l.Notes))
	copy(cp.Notes, l.Notes)
	return &cp
}
