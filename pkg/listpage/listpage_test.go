package listpage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscrm/leads.go"
	"github.com/leadscrm/leads.go/internal/fakeapi"
	"github.com/leadscrm/leads.go/pkg/connection"
	"github.com/leadscrm/leads.go/pkg/models"
	"github.com/leadscrm/leads.go/pkg/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	srv   *fakeapi.Server
	store *store.Store
	clock *fakeClock
	ctrl  *Controller
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	srv := fakeapi.NewServer("127.0.0.1:0")
	for i := 0; i < n; i++ {
		srv.Seed(models.Lead{FirstName: "Lead", Surname: string(rune('A' + i)), Status: models.StatusNew, Priority: models.PriorityLow})
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	st := store.New(leads.New(connection.NewConfig(ts.URL)))
	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		srv:   srv,
		store: st,
		clock: clock,
		ctrl:  New(st, WithClock(clock.Now)),
	}
}

func TestMountLoadsList(t *testing.T) {
	f := newFixture(t, 3)
	f.ctrl.Mount(context.Background())

	assert.Len(t, f.ctrl.VisibleLeads(), 3)
}

func TestDraftSeededFromStore(t *testing.T) {
	srv := fakeapi.NewServer("127.0.0.1:0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	st := store.New(leads.New(connection.NewConfig(ts.URL)), store.WithFilters(models.Filters{
		Search: models.Ptr("ann"),
		Status: models.Ptr(models.StatusLost),
	}))
	c := New(st)

	assert.Equal(t, Draft{Search: "ann", Status: models.StatusLost}, c.Draft())
}

func TestDraftNotCommittedUntilApply(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.ctrl.Mount(ctx)

	f.ctrl.SetStatus(models.StatusLost)
	f.ctrl.SetSearch("nobody")
	assert.Nil(t, f.store.Filters().Status)

	f.ctrl.ApplyFilters(ctx)
	assert.Equal(t, models.StatusLost, *f.store.Filters().Status)
	assert.Equal(t, 1, *f.store.Filters().Page)
	assert.Empty(t, f.ctrl.VisibleLeads())

	reqs := f.srv.Requests()
	assert.Equal(t, "search=nobody&status=lost&is_archived=false&page=1&pageSize=10", reqs[len(reqs)-1].Query)
}

func TestClearFilters(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	f.ctrl.SetPriority(models.PriorityUrgent)
	f.ctrl.SetLeadType(models.LeadTypeCommercial)
	f.ctrl.SetFollowUpDate("2024-02-02")
	f.ctrl.ApplyFilters(ctx)
	assert.Empty(t, f.ctrl.VisibleLeads())

	f.ctrl.ClearFilters(ctx)
	assert.Equal(t, Draft{}, f.ctrl.Draft())
	assert.Len(t, f.ctrl.VisibleLeads(), 2)

	reqs := f.srv.Requests()
	assert.Equal(t, "is_archived=false&page=1&pageSize=10", reqs[len(reqs)-1].Query)
}

func TestSelection(t *testing.T) {
	f := newFixture(t, 3)
	f.ctrl.Mount(context.Background())

	f.ctrl.Toggle(2, true)
	f.ctrl.Toggle(1, true)
	f.ctrl.Toggle(2, true)
	assert.Equal(t, []int64{2, 1}, f.ctrl.Selected())

	f.ctrl.Toggle(2, false)
	assert.False(t, f.ctrl.IsSelected(2))
	assert.True(t, f.ctrl.IsSelected(1))

	f.ctrl.SelectAll(true)
	assert.Equal(t, []int64{1, 2, 3}, f.ctrl.Selected())

	f.ctrl.SelectAll(false)
	assert.Empty(t, f.ctrl.Selected())
}

// staticStore serves a fixed state.
type staticStore struct {
	state store.State
}

func (s *staticStore) Snapshot() store.State                        { return s.state }
func (s *staticStore) Filters() models.Filters                      { return s.state.Filters }
func (s *staticStore) FetchList(context.Context, ...models.Filters) {}
func (s *staticStore) SetFilters(models.Filters)                    {}
func (s *staticStore) RemoveMany(context.Context, []int64) error    { return nil }

func TestSelectAllSkipsArchived(t *testing.T) {
	st := &staticStore{state: store.State{
		Filters: models.DefaultFilters(),
		List: &models.Page[models.Lead]{Total: 3, Data: []models.Lead{
			{ID: 1},
			{ID: 2, IsArchived: true},
			{ID: 3},
		}},
	}}
	c := New(st)

	c.SelectAll(true)
	assert.Equal(t, []int64{1, 3}, c.Selected())
	assert.Len(t, c.VisibleLeads(), 2)
}

func TestEmptyStateWhenOnlyArchivedLoaded(t *testing.T) {
	now := time.Now()
	st := &staticStore{state: store.State{
		List: &models.Page[models.Lead]{Total: 1, Data: []models.Lead{{ID: 1, IsArchived: true}}},
	}}
	c := New(st, WithClock(func() time.Time { return now }), WithGracePeriod(0))
	c.Mount(context.Background())

	assert.True(t, c.ShowEmptyState())

	st.state.Loading = true
	assert.False(t, c.ShowEmptyState())
}

func TestArchiveFlowSuccess(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	f.ctrl.Mount(ctx)

	assert.False(t, f.ctrl.RequestArchive(), "nothing selected")

	f.ctrl.Toggle(1, true)
	f.ctrl.Toggle(3, true)
	require.True(t, f.ctrl.RequestArchive())

	conf := f.ctrl.Confirmation()
	assert.True(t, conf.Open)
	assert.Equal(t, []int64{1, 3}, conf.IDs)

	require.NoError(t, f.ctrl.ConfirmArchive(ctx))
	assert.False(t, f.ctrl.Confirmation().Open)
	assert.Empty(t, f.ctrl.Selected())

	visible := f.ctrl.VisibleLeads()
	require.Len(t, visible, 1)
	assert.Equal(t, int64(2), visible[0].ID)
}

func TestArchiveSingleLeadIgnoresSelection(t *testing.T) {
	f := newFixture(t, 3)
	f.ctrl.Mount(context.Background())
	f.ctrl.Toggle(1, true)

	require.True(t, f.ctrl.RequestArchive(2))
	assert.Equal(t, []int64{2}, f.ctrl.Confirmation().IDs)
}

func TestArchiveFlowFailureKeepsPromptOpen(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.ctrl.Mount(ctx)
	f.srv.AddStub(fakeapi.Stub{
		Method: http.MethodDelete,
		Path:   "/leads",
		Status: http.StatusInternalServerError,
		Body:   map[string]string{"message": "Archive is down"},
		Times:  1,
	})

	f.ctrl.Toggle(1, true)
	require.True(t, f.ctrl.RequestArchive())
	err := f.ctrl.ConfirmArchive(ctx)
	require.Error(t, err)

	conf := f.ctrl.Confirmation()
	assert.True(t, conf.Open)
	assert.False(t, conf.Archiving)
	assert.Equal(t, "Archive is down", conf.Message())
	assert.Equal(t, []int64{1}, f.ctrl.Selected())

	// retry succeeds
	require.NoError(t, f.ctrl.ConfirmArchive(ctx))
	assert.False(t, f.ctrl.Confirmation().Open)
}

func TestArchiveErrorWithoutMessage(t *testing.T) {
	assert.Equal(t, DefaultArchiveError, Confirmation{Err: &connection.APIError{Status: 500}}.Message())
	assert.Equal(t, "offline", Confirmation{Err: errors.New("offline")}.Message())
	assert.Empty(t, Confirmation{}.Message())
}

func TestCancelArchive(t *testing.T) {
	f := newFixture(t, 1)
	f.ctrl.Mount(context.Background())

	require.True(t, f.ctrl.RequestArchive(1))
	f.ctrl.CancelArchive()
	assert.Equal(t, Confirmation{IDs: nil}, f.ctrl.Confirmation())
}

func TestEmptyStateGracePeriod(t *testing.T) {
	f := newFixture(t, 0)
	f.ctrl.Mount(context.Background())

	assert.False(t, f.ctrl.ShowEmptyState(), "hidden during grace period")

	f.clock.Advance(999 * time.Millisecond)
	assert.False(t, f.ctrl.ShowEmptyState())

	f.clock.Advance(time.Millisecond)
	assert.True(t, f.ctrl.ShowEmptyState())
}

func TestEmptyStateHiddenWithLeads(t *testing.T) {
	f := newFixture(t, 1)
	f.ctrl.Mount(context.Background())
	f.clock.Advance(2 * time.Second)

	assert.False(t, f.ctrl.ShowEmptyState())
}

func TestEmptyStateBeforeMount(t *testing.T) {
	f := newFixture(t, 0)
	f.clock.Advance(time.Hour)
	assert.False(t, f.ctrl.ShowEmptyState())
}

func TestGoToPageClamps(t *testing.T) {
	f := newFixture(t, 25)
	ctx := context.Background()
	f.ctrl.Mount(ctx)

	cur, last := f.ctrl.Page()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 3, last)

	f.ctrl.GoToPage(ctx, 9)
	cur, _ = f.ctrl.Page()
	assert.Equal(t, 3, cur)
	assert.Len(t, f.ctrl.VisibleLeads(), 5)

	f.ctrl.GoToPage(ctx, 0)
	cur, _ = f.ctrl.Page()
	assert.Equal(t, 1, cur)
}
