// Package listpage drives a leads list screen on top of a store: draft filter
// values that are only committed on apply, row selection for bulk actions, an
// archive confirmation prompt, and an empty-state message that stays hidden
// for a short grace period after mounting.
package listpage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadscrm/leads.go/pkg/connection"
	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/logger"
	"github.com/leadscrm/leads.go/pkg/models"
	"github.com/leadscrm/leads.go/pkg/store"
)

const DefaultArchiveError = "Failed to delete leads. Please try again."

// Store is the part of *store.Store the controller uses.
type Store interface {
	Snapshot() store.State
	Filters() models.Filters
	FetchList(ctx context.Context, overrides ...models.Filters)
	SetFilters(partial models.Filters)
	RemoveMany(ctx context.Context, ids []int64) error
}

// Draft holds filter values being edited, not yet sent to the store.
type Draft struct {
	Search       string
	Status       models.LeadStatus
	LeadType     models.LeadType
	Priority     models.Priority
	FollowUpDate models.Date
}

// Confirmation is the archive prompt.
type Confirmation struct {
	Open      bool
	IDs       []int64
	Err       error
	Archiving bool
}

// Message is the error text to show inside the prompt, or "".
func (c Confirmation) Message() string {
	if c.Err == nil {
		return ""
	}
	if apiErr, ok := connection.AsAPIError(c.Err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return DefaultArchiveError
	}
	if msg := c.Err.Error(); msg != "" {
		return msg
	}
	return DefaultArchiveError
}

type Controller struct {
	store  Store
	clock  func() time.Time
	grace  time.Duration
	logger zerolog.Logger

	mu        sync.Mutex
	draft     Draft
	selected  []int64
	confirm   Confirmation
	mountedAt time.Time
	mounted   bool
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.clock = now }
}

// WithGracePeriod sets how long the empty state stays hidden after Mount.
func WithGracePeriod(d time.Duration) Option {
	return func(c *Controller) { c.grace = d }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger.OrNop(l) }
}

// New creates a controller whose draft starts from the store's committed filters.
func New(s Store, opts ...Option) *Controller {
	c := &Controller{
		store:  s,
		clock:  time.Now,
		grace:  constants.EmptyStateGracePeriod,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	f := s.Filters()
	c.draft = Draft{
		Search:       deref(f.Search),
		Status:       deref(f.Status),
		LeadType:     deref(f.LeadType),
		Priority:     deref(f.Priority),
		FollowUpDate: deref(f.FollowUpDate),
	}
	return c
}

// Mount records the mount time and loads the list.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	c.mountedAt = c.clock()
	c.mounted = true
	c.mu.Unlock()

	c.store.FetchList(ctx)
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) SetDraft(d Draft) {
	c.mu.Lock()
	c.draft = d
	c.mu.Unlock()
}

func (c *Controller) SetSearch(s string) {
	c.editDraft(func(d *Draft) { d.Search = s })
}

func (c *Controller) SetStatus(s models.LeadStatus) {
	c.editDraft(func(d *Draft) { d.Status = s })
}

func (c *Controller) SetLeadType(t models.LeadType) {
	c.editDraft(func(d *Draft) { d.LeadType = t })
}

func (c *Controller) SetPriority(p models.Priority) {
	c.editDraft(func(d *Draft) { d.Priority = p })
}

func (c *Controller) SetFollowUpDate(date models.Date) {
	c.editDraft(func(d *Draft) { d.FollowUpDate = date })
}

func (c *Controller) editDraft(fn func(*Draft)) {
	c.mu.Lock()
	fn(&c.draft)
	c.mu.Unlock()
}

// ApplyFilters commits the draft, back on page 1, and reloads.
func (c *Controller) ApplyFilters(ctx context.Context) {
	d := c.Draft()
	c.store.SetFilters(models.Filters{
		Search:       models.Ptr(d.Search),
		Status:       models.Ptr(d.Status),
		LeadType:     models.Ptr(d.LeadType),
		Priority:     models.Ptr(d.Priority),
		FollowUpDate: models.Ptr(d.FollowUpDate),
		Page:         models.Ptr(constants.DefaultPage),
	})
	c.store.FetchList(ctx)
}

// ClearFilters empties the draft and the committed constraints and reloads page 1.
func (c *Controller) ClearFilters(ctx context.Context) {
	c.SetDraft(Draft{})
	c.ApplyFilters(ctx)
}

// VisibleLeads are the loaded leads that are not archived.
func (c *Controller) VisibleLeads() []models.Lead {
	st := c.store.Snapshot()
	if st.List == nil {
		return nil
	}
	out := make([]models.Lead, 0, len(st.List.Data))
	for _, l := range st.List.Data {
		if !l.IsArchived {
			out = append(out, l)
		}
	}
	return out
}

// Toggle adds or removes one id from the selection.
func (c *Controller) Toggle(id int64, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.selected, id)
	switch {
	case checked && i < 0:
		c.selected = append(c.selected, id)
	case !checked && i >= 0:
		c.selected = slices.Delete(c.selected, i, i+1)
	}
}

// SelectAll selects every visible lead, or clears the selection.
func (c *Controller) SelectAll(checked bool) {
	var ids []int64
	if checked {
		for _, l := range c.VisibleLeads() {
			if l.ID != 0 {
				ids = append(ids, l.ID)
			}
		}
	}

	c.mu.Lock()
	c.selected = ids
	c.mu.Unlock()
}

func (c *Controller) Selected() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.selected)
}

func (c *Controller) IsSelected(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.selected, id)
}

// RequestArchive opens the prompt for ids, or for the selection when none are
// given. It does nothing while an archive is running or when there is nothing
// to archive.
func (c *Controller) RequestArchive(ids ...int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confirm.Archiving {
		return false
	}
	if len(ids) == 0 {
		ids = c.selected
	}
	if len(ids) == 0 {
		return false
	}

	c.confirm = Confirmation{Open: true, IDs: slices.Clone(ids)}
	return true
}

func (c *Controller) Confirmation() Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.confirm
	cp.IDs = slices.Clone(c.confirm.IDs)
	return cp
}

// ConfirmArchive archives the prompted ids. On success the selection is
// cleared and the prompt closed; on failure the prompt stays open with the
// error so the user can retry or cancel.
func (c *Controller) ConfirmArchive(ctx context.Context) error {
	c.mu.Lock()
	if !c.confirm.Open || c.confirm.Archiving {
		c.mu.Unlock()
		return nil
	}
	c.confirm.Archiving = true
	c.confirm.Err = nil
	ids := slices.Clone(c.confirm.IDs)
	c.mu.Unlock()

	err := c.store.RemoveMany(ctx, ids)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirm.Archiving = false
	if err != nil {
		c.logger.Error().Err(err).Ints64("ids", ids).Msg("archive failed")
		c.confirm.Err = err
		return err
	}
	c.selected = nil
	c.confirm = Confirmation{}
	return nil
}

func (c *Controller) CancelArchive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirm.Archiving {
		return
	}
	c.confirm = Confirmation{}
}

// ShowEmptyState reports whether "no leads" should be shown: nothing is
// loading, the grace period since Mount is over, and no lead is visible.
func (c *Controller) ShowEmptyState() bool {
	c.mu.Lock()
	mounted, at := c.mounted, c.mountedAt
	c.mu.Unlock()

	if !mounted || c.clock().Sub(at) < c.grace {
		return false
	}
	if c.store.Snapshot().Loading {
		return false
	}
	return len(c.VisibleLeads()) == 0
}

// Page returns the current page and the last valid page.
func (c *Controller) Page() (current, last int) {
	st := c.store.Snapshot()
	pageSize := st.Filters.PageSizeOr(constants.DefaultPageSize)
	total := 0
	if st.List != nil {
		total = st.List.Total
	}
	return st.Filters.PageOr(constants.DefaultPage), models.LastPage(total, pageSize)
}

// GoToPage loads page n, clamped to the pages that exist.
func (c *Controller) GoToPage(ctx context.Context, n int) {
	st := c.store.Snapshot()
	total := 0
	if st.List != nil {
		total = st.List.Total
	}
	page := models.ClampPage(n, total, st.Filters.PageSizeOr(constants.DefaultPageSize))
	c.store.FetchList(ctx, models.Filters{Page: models.Ptr(page)})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
