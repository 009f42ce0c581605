package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

func TestRemoteSourceListsLeads(t *testing.T) {
	now := time.Now().UTC()
	served := []*leads.Lead{
		{ID: "l1", Name: "Ann Lee", Email: "ann@example.com", Status: leads.StatusNew, Source: "Website", Notes: []leads.Note{}, CreatedAt: now, UpdatedAt: now},
		{ID: "l2", Name: "Bob Ray", Email: "bob@example.com", Status: leads.StatusConverted, Source: "Referral", Notes: []leads.Note{}, CreatedAt: now, UpdatedAt: now},
	}

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leads" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(served)
	}))
	defer server.Close()

	source := NewRemoteSource(server.URL, "tok-123", logging.Default())
	list, err := source.List(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(list))
	}
	if list[0].Name != "Ann Lee" {
		t.Errorf("expected first lead Ann Lee, got %s", list[0].Name)
	}
}

func TestRemoteSourceNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer server.Close()

	source := NewRemoteSource(server.URL, "expired", logging.Default())
	if _, err := source.List(t.Context()); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestRemoteSourceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	source := NewRemoteSource(server.URL, "tok", logging.Default())
	if _, err := source.List(t.Context()); err == nil {
		t.Fatalf("expected error when server is down")
	}
}

func TestSampleSourceGenerates(t *testing.T) {
	source := &SampleSource{Count: 25}
	list, err := source.List(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 25 {
		t.Fatalf("expected 25 sample leads, got %d", len(list))
	}
}

func TestSampleSourceDefaultCount(t *testing.T) {
	source := &SampleSource{}
	list, err := source.List(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 200 {
		t.Fatalf("expected 200 sample leads, got %d", len(list))
	}
}
