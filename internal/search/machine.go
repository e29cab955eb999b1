// Package search drives the job search flow from URL entry to contact results.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/types"
)

// State is a step of the search flow.
type State string

const (
	StateInitial         State = "initial"
	StateLoading         State = "loading"
	StateResults         State = "results"
	StateDomainSelection State = "domain_selection"
	StateNoContacts      State = "no_contacts"
	StateDomainNotFound  State = "domain_not_found"
	StateError           State = "error"
)

var (
	// ErrSuperseded is returned when a response arrives after a newer request or a reset.
	ErrSuperseded = errors.New("search superseded by a newer request")

	// ErrNotSelectingDomain is returned by SelectDomain outside the domain selection step.
	ErrNotSelectingDomain = errors.New("no domain selection is pending")
)

// Searcher runs the backend search calls.
type Searcher interface {
	SearchJob(ctx context.Context, req types.SearchJobRequest) (*types.SearchJobResponse, error)
	ConfirmDomain(ctx context.Context, req types.SearchJobRequest) (*types.SearchJobResponse, error)
}

// Snapshot is the observable state of the flow. It serializes to JSON so the
// flow can be persisted between runs.
type Snapshot struct {
	State            State           `json:"state"`
	Job              *types.Job      `json:"job,omitempty"`
	Contacts         []types.Contact `json:"contacts,omitempty"`
	CurrentURL       string          `json:"currentUrl,omitempty"`
	AvailableDomains []string        `json:"availableDomains,omitempty"`
	Error            string          `json:"error,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Job != nil {
		job := *s.Job
		out.Job = &job
	}
	out.Contacts = slices.Clone(s.Contacts)
	out.AvailableDomains = slices.Clone(s.AvailableDomains)
	return out
}

// Machine is the search flow state machine. It is safe for concurrent use;
// every request carries a sequence number and only the latest one may apply.
type Machine struct {
	searcher Searcher
	notifier notify.Notifier

	mu        sync.Mutex
	snap      Snapshot
	seq       uint64
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewMachine creates a machine in the initial state.
func NewMachine(searcher Searcher, notifier notify.Notifier) *Machine {
	return &Machine{
		searcher:  searcher,
		notifier:  notifier,
		snap:      Snapshot{State: StateInitial},
		listeners: map[int]func(Snapshot){},
	}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.State
}

// Subscribe registers fn to be called with every new state. The returned
// function removes the subscription.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// setLocked replaces the state and returns the listeners to notify. Callers hold m.mu.
func (m *Machine) setLocked(s Snapshot) (Snapshot, []func(Snapshot)) {
	m.snap = s
	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	return s.clone(), listeners
}

func emit(s Snapshot, listeners []func(Snapshot)) {
	for _, fn := range listeners {
		fn(s.clone())
	}
}

// Reset returns to the initial state and discards any request in flight.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.seq++
	s, listeners := m.setLocked(Snapshot{State: StateInitial})
	m.mu.Unlock()
	emit(s, listeners)
}

// Restore replaces the state with a persisted snapshot. A snapshot taken while
// loading cannot be resumed and restores as initial.
func (m *Machine) Restore(s Snapshot) {
	if s.State == StateLoading || s.State == "" {
		s = Snapshot{State: StateInitial}
	}
	m.mu.Lock()
	m.seq++
	snap, listeners := m.setLocked(s.clone())
	m.mu.Unlock()
	emit(snap, listeners)
}

// Submit searches rawURL. Invalid URLs are reported without leaving the current
// state. Backend failures land in the error state rather than being returned.
func (m *Machine) Submit(ctx context.Context, rawURL string) error {
	req := types.SearchJobRequest{URL: strings.TrimSpace(rawURL)}
	if err := req.Validate(); err != nil {
		notify.Error(m.notifier, api.UserMessage(err))
		return fmt.Errorf("invalid job URL: %w", err)
	}

	seq := m.begin(Snapshot{State: StateLoading, CurrentURL: req.URL})
	resp, err := m.searcher.SearchJob(ctx, req)
	return m.apply(seq, req.URL, resp, err)
}

// SelectDomain re-runs the pending search with domain pinned as the company domain.
// It is only valid in the domain selection step and only for an offered domain.
func (m *Machine) SelectDomain(ctx context.Context, domain string) error {
	m.mu.Lock()
	if m.snap.State != StateDomainSelection {
		m.mu.Unlock()
		return ErrNotSelectingDomain
	}
	if !slices.Contains(m.snap.AvailableDomains, domain) {
		offered := strings.Join(m.snap.AvailableDomains, ", ")
		m.mu.Unlock()
		return fmt.Errorf("domain %q is not one of the offered domains (%s)", domain, offered)
	}
	currentURL := m.snap.CurrentURL
	job := m.snap.Job
	m.mu.Unlock()

	seq := m.begin(Snapshot{State: StateLoading, CurrentURL: currentURL, Job: job})
	req := types.SearchJobRequest{URL: currentURL, SelectedDomain: domain}
	resp, err := m.searcher.ConfirmDomain(ctx, req)
	return m.apply(seq, currentURL, resp, err)
}

// begin enters the loading state and returns the new request's sequence number.
func (m *Machine) begin(loading Snapshot) uint64 {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	s, listeners := m.setLocked(loading)
	m.mu.Unlock()
	emit(s, listeners)
	return seq
}

// apply maps a search result onto the state, unless a newer request has started since.
func (m *Machine) apply(seq uint64, currentURL string, resp *types.SearchJobResponse, err error) error {
	next, notice := transition(currentURL, resp, err)

	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		return ErrSuperseded
	}
	s, listeners := m.setLocked(next)
	m.mu.Unlock()

	emit(s, listeners)
	if notice != "" {
		notify.Info(m.notifier, notice)
	}
	return nil
}

// transition computes the state that follows a completed search.
func transition(currentURL string, resp *types.SearchJobResponse, err error) (Snapshot, string) {
	if err != nil {
		return Snapshot{State: StateError, CurrentURL: currentURL, Error: api.UserMessage(err)}, ""
	}
	if resp == nil {
		return Snapshot{State: StateError, CurrentURL: currentURL, Error: api.GenericErrorMessage}, ""
	}

	next := Snapshot{CurrentURL: currentURL, Job: resp.Job}
	switch resp.Status {
	case types.SearchSuccess:
		next.State = StateResults
		next.Contacts = slices.Clone(resp.Contacts)
	case types.SearchDomainSelectionRequired:
		next.State = StateDomainSelection
		next.AvailableDomains = slices.Clone(resp.Domains)
	case types.SearchDomainNotFound:
		next.State = StateDomainNotFound
	case types.SearchNoContactsFound:
		next.State = StateNoContacts
	case types.SearchParsingFailed:
		next.State = StateError
		next.Job = nil
		next.Error = resp.Error
		if next.Error == "" {
			next.Error = "We couldn't read that job posting. Please check the URL and try again."
		}
	case types.SearchUnsupportedSite:
		site := resp.SiteName
		if site == "" {
			site = "This site"
		}
		return Snapshot{State: StateInitial}, fmt.Sprintf("%s job postings aren't supported yet. Try the company's careers page instead.", site)
	default:
		return Snapshot{State: StateError, CurrentURL: currentURL, Error: api.GenericErrorMessage}, ""
	}
	return next, ""
}
