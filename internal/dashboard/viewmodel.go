package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

// ViewModel is the state behind the dashboard screen: the current lead
// list plus the user's search text and status filter. All aggregates
// are recomputed from the list on demand.
type ViewModel struct {
	mu           sync.RWMutex
	source       LeadSource
	fallback     LeadSource
	logger       *logging.Logger
	leads        []*leads.Lead
	search       string
	statusFilter string
	usingSample  bool
}

// NewViewModel creates a view-model reading from source. When source
// fails or returns no leads, Refresh falls back to fallback (typically
// a SampleSource). fallback may be nil to disable the behavior.
func NewViewModel(source, fallback LeadSource, logger *logging.Logger) *ViewModel {
	if logger == nil {
		logger = logging.Default()
	}
	return &ViewModel{
		source:       source,
		fallback:     fallback,
		logger:       logger,
		leads:        []*leads.Lead{},
		statusFilter: leads.FilterAll,
	}
}

// Refresh replaces the lead list with a full refetch. On error or an
// empty result it swaps in the fallback source instead of showing a
// blank screen.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	list, err := vm.source.List(ctx)
	usingSample := false
	if err != nil || len(list) == 0 {
		if err != nil {
			vm.logger.Warn("lead fetch failed, using sample data", "error", err)
		}
		if vm.fallback == nil {
			if err != nil {
				return err
			}
			list = []*leads.Lead{}
		} else {
			list, err = vm.fallback.List(ctx)
			if err != nil {
				return err
			}
			usingSample = true
		}
	}

	vm.mu.Lock()
	vm.leads = list
	vm.usingSample = usingSample
	vm.mu.Unlock()
	return nil
}

// ErrReadOnlySource is returned by mutations when the configured
// source cannot write (sample data).
var ErrReadOnlySource = errors.New("dashboard: source is read-only")

// UpdateStatus moves a lead to a new stage, then refetches the whole
// list instead of patching the local copy.
func (vm *ViewModel) UpdateStatus(ctx context.Context, id string, status leads.Status) error {
	m, err := vm.mutator()
	if err != nil {
		return err
	}
	if _, err := m.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// AddNote appends a note to a lead, then refetches.
func (vm *ViewModel) AddNote(ctx context.Context, id, text string) error {
	m, err := vm.mutator()
	if err != nil {
		return err
	}
	if _, err := m.AddNote(ctx, id, text); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// UpdateNote edits one note on a lead, then refetches.
func (vm *ViewModel) UpdateNote(ctx context.Context, id, noteID, text string) error {
	m, err := vm.mutator()
	if err != nil {
		return err
	}
	if _, err := m.UpdateNote(ctx, id, noteID, text); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// DeleteNote removes one note from a lead, then refetches.
func (vm *ViewModel) DeleteNote(ctx context.Context, id, noteID string) error {
	m, err := vm.mutator()
	if err != nil {
		return err
	}
	if _, err := m.DeleteNote(ctx, id, noteID); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

func (vm *ViewModel) mutator() (LeadMutator, error) {
	if m, ok := vm.source.(LeadMutator); ok {
		return m, nil
	}
	return nil, ErrReadOnlySource
}

// AddLead prepends a newly created lead so it shows up before the next
// refresh.
func (vm *ViewModel) AddLead(lead *leads.Lead) {
	if lead == nil {
		return
	}
	vm.mu.Lock()
	vm.leads = append([]*leads.Lead{lead}, vm.leads...)
	vm.mu.Unlock()
}

// SetSearch updates the free-text filter.
func (vm *ViewModel) SetSearch(query string) {
	vm.mu.Lock()
	vm.search = query
	vm.mu.Unlock()
}

// SetStatusFilter updates the status filter. Empty or "all" matches
// every status.
func (vm *ViewModel) SetStatusFilter(status string) {
	vm.mu.Lock()
	vm.statusFilter = status
	vm.mu.Unlock()
}

// UsingSample reports whether the last Refresh fell back to sample
// data.
func (vm *ViewModel) UsingSample() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.usingSample
}

// Leads returns the full, unfiltered lead list.
func (vm *ViewModel) Leads() []*leads.Lead {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.leads
}

// Filtered applies the current search text and status filter.
func (vm *ViewModel) Filtered() []*leads.Lead {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return leads.Filter(vm.leads, vm.search, vm.statusFilter)
}

// StatusCounts aggregates the full list by funnel stage.
func (vm *ViewModel) StatusCounts() map[leads.Status]int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return leads.CountByStatus(vm.leads)
}

// SourceCounts aggregates the full list by acquisition channel.
func (vm *ViewModel) SourceCounts() map[string]int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return leads.CountBySource(vm.leads)
}

// Timeline buckets lead creation over the trailing seven days.
func (vm *ViewModel) Timeline(now time.Time) []leads.TimelinePoint {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return leads.Timeline(vm.leads, now, 7)
}

// ConversionRate is the percentage of converted leads in the full
// list.
func (vm *ViewModel) ConversionRate() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return leads.ConversionRate(vm.leads)
}
