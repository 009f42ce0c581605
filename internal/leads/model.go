package leads

import (
	"strings"
	"time"
)

// Status is a funnel stage. It is a free-choice enumeration: any value
// may follow any other, there is no transition graph.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// Statuses lists the funnel stages in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusConverted, StatusLost}

// Valid reports whether s is one of the four funnel stages.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
		return true
	}
	return false
}

// DefaultSource is assigned when a lead arrives without a channel label.
const DefaultSource = "Website"

// Note is a timestamped free-text annotation owned by one lead. Note
// ids are unique within their lead only.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lead represents a prospective client contact tracked through the
// sales funnel. Notes are embedded in insertion order.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source"`
	Message   string    `json:"message,omitempty"`
	Status    Status    `json:"status"`
	Notes     []Note    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLeadRequest represents the request body for creating a lead.
// Status and notes in the request are ignored: every lead starts as
// "new" with no notes.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Validate normalizes the request in place and applies the source
// default. Name and email only have to be non-empty; anything beyond
// presence is left to the operator working the lead.
func (r *CreateLeadRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Source = strings.TrimSpace(r.Source)
	r.Message = strings.TrimSpace(r.Message)

	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" {
		return ErrInvalidEmail
	}
	if r.Source == "" {
		r.Source = DefaultSource
	}
	return nil
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// NoteRequest represents the request body for adding or editing a note.
type NoteRequest struct {
	Text string `json:"text"`
}

// Validate rejects empty note bodies and trims surrounding space.
func (r *NoteRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return ErrEmptyNoteText
	}
	return nil
}
