package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/types"
)

var (
	ErrEntryNotFound   = errors.New("tracker entry not found")
	ErrContactNotFound = errors.New("contact not found in tracker entry")
)

// API is the subset of the backend client the store needs.
type API interface {
	GetOutreaches(ctx context.Context) (*types.GetOutreachesResponse, error)
	GetOutreachStatuses(ctx context.Context, jobURL string, emails []string) (*types.OutreachStatusResponse, error)
	CreateOutreach(ctx context.Context, req types.CreateOutreachRequest) error
	UpdateOutreachStatus(ctx context.Context, req types.UpdateOutreachStatusRequest) error
	DeleteOutreaches(ctx context.Context, req types.DeleteOutreachesRequest) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for action timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the generator of placeholder IDs for unsaved entries.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store caches tracker entries and per-job contact statuses. Every mutation
// patches the cache first, calls the backend, and rolls the patch back on failure.
type Store struct {
	api      API
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	entries  []outreach.TrackerEntry
	loaded   bool
	statuses map[string]map[string]types.OutreachStatusEntry
}

// NewStore creates an empty store.
func NewStore(client API, notifier notify.Notifier, opts ...Option) *Store {
	s := &Store{
		api:      client,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
		statuses: map[string]map[string]types.OutreachStatusEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the cache with the backend's tracked outreach.
func (s *Store) Load(ctx context.Context) error {
	resp, err := s.api.GetOutreaches(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tracker: %w", err)
	}
	entries := FromTrackerJobs(resp.Jobs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.loaded = true
	return nil
}

// EnsureLoaded loads the cache unless it is already current.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

// Invalidate marks the cache stale so the next EnsureLoaded refetches it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// Entries returns a deep copy of the cached entries.
func (s *Store) Entries() []outreach.TrackerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return outreach.CloneEntries(s.entries)
}

// Entry returns a copy of the entry with the given ID.
func (s *Store) Entry(id string) (outreach.TrackerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.entries[i].Clone(), true
	}
	return outreach.TrackerEntry{}, false
}

// LoadStatuses fetches the tracked status of each email for one job.
func (s *Store) LoadStatuses(ctx context.Context, jobURL string, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	resp, err := s.api.GetOutreachStatuses(ctx, jobURL, emails)
	if err != nil {
		return fmt.Errorf("failed to load outreach statuses: %w", err)
	}

	byEmail := make(map[string]types.OutreachStatusEntry, len(resp.Statuses))
	for email, st := range resp.Statuses {
		byEmail[email] = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[jobURL] = byEmail
	return nil
}

// StatusFor returns the tracked status of email for the job, if it is tracked.
func (s *Store) StatusFor(jobURL, email string) (types.OutreachStatusEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[jobURL][email]
	return st, ok
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.entries, func(e outreach.TrackerEntry) bool { return e.ID == id })
}

func (s *Store) indexByJobURLLocked(jobURL string) int {
	return slices.IndexFunc(s.entries, func(e outreach.TrackerEntry) bool { return e.JobURL == jobURL })
}

// statusMark records a status map value so it can be restored.
type statusMark struct {
	jobURL string
	email  string
	prev   types.OutreachStatusEntry
	had    bool
}

func (s *Store) setStatusLocked(jobURL, email string, st *types.OutreachStatusEntry) statusMark {
	byEmail := s.statuses[jobURL]
	if byEmail == nil {
		byEmail = map[string]types.OutreachStatusEntry{}
		s.statuses[jobURL] = byEmail
	}
	prev, had := byEmail[email]
	if st == nil {
		delete(byEmail, email)
	} else {
		byEmail[email] = *st
	}
	return statusMark{jobURL: jobURL, email: email, prev: prev, had: had}
}

func (s *Store) restoreStatusLocked(m statusMark) {
	byEmail := s.statuses[m.jobURL]
	if byEmail == nil {
		byEmail = map[string]types.OutreachStatusEntry{}
		s.statuses[m.jobURL] = byEmail
	}
	if m.had {
		byEmail[m.email] = m.prev
	} else {
		delete(byEmail, m.email)
	}
}

// restoreEntryLocked puts prev back: replacing the entry with the same ID if it
// is still cached, otherwise inserting it at its former position.
func (s *Store) restoreEntryLocked(prev outreach.TrackerEntry, index int) {
	if i := s.indexLocked(prev.ID); i >= 0 {
		s.entries[i] = prev
		return
	}
	index = min(max(index, 0), len(s.entries))
	s.entries = slices.Insert(s.entries, index, prev)
}

func (s *Store) removeEntryLocked(id string) {
	if i := s.indexLocked(id); i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
}

// fail reports a failed mutation to the user and returns the wrapped error.
func (s *Store) fail(action string, err error) error {
	notify.Error(s.notifier, api.UserMessage(err))
	return fmt.Errorf("failed to %s: %w", action, err)
}
