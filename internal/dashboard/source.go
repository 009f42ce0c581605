// Package dashboard holds the view-model behind the lead dashboard:
// fetching leads from the API (or falling back to sample data), plus
// the pure filtering and aggregation the UI renders from.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// LeadSource supplies the leads a view-model renders.
type LeadSource interface {
	List(ctx context.Context) ([]*leads.Lead, error)
}

// LeadMutator is implemented by sources that can write through to the
// API. SampleSource is read-only and does not implement it.
type LeadMutator interface {
	UpdateStatus(ctx context.Context, id string, status leads.Status) (*leads.Lead, error)
	AddNote(ctx context.Context, id, text string) (*leads.Lead, error)
	UpdateNote(ctx context.Context, id, noteID, text string) (*leads.Lead, error)
	DeleteNote(ctx context.Context, id, noteID string) (*leads.Lead, error)
}

// RemoteSource fetches leads from the API with a bearer token.
type RemoteSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures a RemoteSource.
type Option func(*RemoteSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *RemoteSource) {
		s.httpClient = client
	}
}

// NewRemoteSource creates a source reading from baseURL (for example
// "http://localhost:8080") using token for authorization.
func NewRemoteSource(baseURL, token string, logger *logging.Logger, opts ...Option) *RemoteSource {
	s := &RemoteSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches all leads from GET /api/leads.
func (s *RemoteSource) List(ctx context.Context) ([]*leads.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/leads", nil)
	if err != nil {
		return nil, fmt.Errorf("build leads request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leads: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch leads: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list []*leads.Lead
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return list, nil
}

// UpdateStatus moves a lead to a new funnel stage via the API.
func (s *RemoteSource) UpdateStatus(ctx context.Context, id string, status leads.Status) (*leads.Lead, error) {
	return s.mutate(ctx, http.MethodPatch, "/api/leads/"+id+"/status",
		leads.UpdateStatusRequest{Status: status}, http.StatusOK)
}

// AddNote appends a note to a lead via the API.
func (s *RemoteSource) AddNote(ctx context.Context, id, text string) (*leads.Lead, error) {
	return s.mutate(ctx, http.MethodPost, "/api/leads/"+id+"/notes",
		leads.NoteRequest{Text: text}, http.StatusCreated)
}

// UpdateNote replaces the text of one note via the API.
func (s *RemoteSource) UpdateNote(ctx context.Context, id, noteID, text string) (*leads.Lead, error) {
	return s.mutate(ctx, http.MethodPatch, "/api/leads/"+id+"/notes/"+noteID,
		leads.NoteRequest{Text: text}, http.StatusOK)
}

// DeleteNote removes one note via the API.
func (s *RemoteSource) DeleteNote(ctx context.Context, id, noteID string) (*leads.Lead, error) {
	return s.mutate(ctx, http.MethodDelete, "/api/leads/"+id+"/notes/"+noteID,
		nil, http.StatusOK)
}

// mutate sends a write to the API and decodes the updated lead the
// server returns.
func (s *RemoteSource) mutate(ctx context.Context, method, path string, body any, want int) (*leads.Lead, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var lead leads.Lead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return nil, fmt.Errorf("decode lead: %w", err)
	}
	return &lead, nil
}

// SampleSource generates deterministic-shape demo leads. Used when the
// API is unreachable so the dashboard still has something to show.
type SampleSource struct {
	Count int
}

// List returns freshly generated sample leads.
func (s *SampleSource) List(_ context.Context) ([]*leads.Lead, error) {
	count := s.Count
	if count <= 0 {
		count = 200
	}
	return leads.GenerateSample(count), nil
}
