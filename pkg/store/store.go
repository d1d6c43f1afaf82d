// Package store keeps client-side state for a leads screen: the committed
// filters, the loaded page, the lead being viewed, a loading flag and the last
// error. Operations call the API and fold the result into that state.
//
// Operations do not guard against overlapping calls. When two are in flight
// the one that resolves last overwrites the state, whatever order they were
// issued in. The mutex only keeps concurrent access memory safe.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/logger"
	"github.com/leadscrm/leads.go/pkg/models"
)

// LeadsAPI is the part of *leads.Client the store calls.
type LeadsAPI interface {
	List(ctx context.Context, f models.Filters) (*models.Page[models.Lead], error)
	Get(ctx context.Context, id int64) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	Update(ctx context.Context, id int64, patch *models.LeadPatch) (*models.Lead, error)
	DeleteMany(ctx context.Context, ids []int64) (*models.DeleteResult, error)
}

type State struct {
	Filters models.Filters
	List    *models.Page[models.Lead]
	Current *models.Lead
	Loading bool
	Err     error
}

type Store struct {
	api    LeadsAPI
	logger zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

type Option func(*Store)

func WithLogger(l *zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger.OrNop(l) }
}

// WithFilters merges f over the default filters.
func WithFilters(f models.Filters) Option {
	return func(s *Store) { s.state.Filters = s.state.Filters.Merge(f.Clone()) }
}

func New(api LeadsAPI, opts ...Option) *Store {
	s := &Store{
		api:       api,
		logger:    zerolog.Nop(),
		state:     State{Filters: models.DefaultFilters()},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state that shares nothing with the store.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Filters returns a copy of the committed filters.
func (s *Store) Filters() models.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filters.Clone()
}

// Subscribe registers fn to receive a snapshot after every state change and
// returns a func that unregisters it.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// FetchList merges overrides into the committed filters and loads that page.
// On success both the list and the filters are replaced; on failure the
// error is stored and the previous list stays.
func (s *Store) FetchList(ctx context.Context, overrides ...models.Filters) {
	s.begin()
	defer s.end()

	_ = s.fetchList(ctx, overrides...)
}

func (s *Store) fetchList(ctx context.Context, overrides ...models.Filters) error {
	s.mu.Lock()
	next := s.state.Filters.Clone()
	s.mu.Unlock()
	for _, o := range overrides {
		next = next.Merge(o.Clone())
	}

	page, err := s.api.List(ctx, next)
	if err != nil {
		s.logger.Debug().Err(err).Msg("fetch list failed")
		s.update(func(st *State) { st.Err = err })
		return err
	}

	s.update(func(st *State) {
		st.List = page
		st.Filters = next
	})
	return nil
}

// FetchByID loads one lead into Current. Failures are only stored.
func (s *Store) FetchByID(ctx context.Context, id int64) {
	s.begin()
	defer s.end()

	lead, err := s.api.Get(ctx, id)
	if err != nil {
		s.logger.Debug().Err(err).Int64("id", id).Msg("fetch lead failed")
		s.update(func(st *State) { st.Err = err })
		return
	}
	s.update(func(st *State) { st.Current = lead })
}

// Create stores a new lead and reloads the list with the committed filters.
// A failed create is stored and returned; a failed reload is only stored.
func (s *Store) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	s.begin()
	defer s.end()

	created, err := s.api.Create(ctx, lead)
	if err != nil {
		s.update(func(st *State) { st.Err = err })
		return nil, err
	}
	s.logger.Debug().Int64("id", created.ID).Msg("lead created")

	_ = s.fetchList(ctx)
	return created, nil
}

// Update has the same contract as Create.
func (s *Store) Update(ctx context.Context, id int64, patch *models.LeadPatch) (*models.Lead, error) {
	s.begin()
	defer s.end()

	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.update(func(st *State) { st.Err = err })
		return nil, err
	}
	s.logger.Debug().Int64("id", id).Msg("lead updated")

	_ = s.fetchList(ctx)
	return updated, nil
}

// RemoveMany archives ids on the server, drops them from the loaded page
// right away and reloads at the last page that still exists. The local
// removal is kept even when the reload fails; that error is stored and
// returned.
func (s *Store) RemoveMany(ctx context.Context, ids []int64) error {
	s.begin()
	defer s.end()

	res, err := s.api.DeleteMany(ctx, ids)
	if err != nil {
		s.update(func(st *State) { st.Err = err })
		return err
	}
	if res != nil && !res.Success {
		s.logger.Warn().Ints64("ids", ids).Msg("bulk delete reported success=false")
	}

	var page int
	s.update(func(st *State) {
		if st.List != nil {
			kept := make([]models.Lead, 0, len(st.List.Data))
			removed := 0
			for _, l := range st.List.Data {
				if slices.Contains(ids, l.ID) {
					removed++
					continue
				}
				kept = append(kept, l)
			}
			list := *st.List
			list.Data = kept
			list.Total = max(0, list.Total-removed)
			st.List = &list
		}

		total := 0
		if st.List != nil {
			total = st.List.Total
		}
		pageSize := st.Filters.PageSizeOr(constants.DefaultPageSize)
		page = models.ClampPage(st.Filters.PageOr(constants.DefaultPage), total, pageSize)
	})

	return s.fetchList(ctx, models.Filters{Page: models.Ptr(page)})
}

// SetFilters merges partial into the committed filters without fetching.
func (s *Store) SetFilters(partial models.Filters) {
	s.update(func(st *State) { st.Filters = st.Filters.Merge(partial.Clone()) })
}

func (s *Store) ClearError() {
	s.update(func(st *State) { st.Err = nil })
}

func (s *Store) begin() {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})
}

func (s *Store) end() {
	s.update(func(st *State) { st.Loading = false })
}

// update applies fn under the lock and then notifies listeners outside it.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) snapshotLocked() State {
	st := State{
		Filters: s.state.Filters.Clone(),
		Loading: s.state.Loading,
		Err:     s.state.Err,
	}
	if s.state.List != nil {
		list := *s.state.List
		list.Data = make([]models.Lead, len(s.state.List.Data))
		for i := range s.state.List.Data {
			list.Data[i] = s.state.List.Data[i].Clone()
		}
		st.List = &list
	}
	if s.state.Current != nil {
		current := s.state.Current.Clone()
		st.Current = &current
	}
	return st
}
