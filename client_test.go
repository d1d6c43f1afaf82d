package leads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscrm/leads.go/internal/fakeapi"
	"github.com/leadscrm/leads.go/pkg/connection"
	"github.com/leadscrm/leads.go/pkg/models"
)

func newTestClient(t *testing.T, opts ...fakeapi.Option) (*Client, *fakeapi.Server) {
	t.Helper()

	srv := fakeapi.NewServer("127.0.0.1:0", append([]fakeapi.Option{fakeapi.WithToken("tok")}, opts...)...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(connection.NewConfig(ts.URL).WithAuthToken("tok")), srv
}

func sampleLead(first, email string) models.Lead {
	return models.Lead{
		FirstName:     first,
		Surname:       "Smith",
		Email:         email,
		Phone:         "0123456789",
		LeadType:      models.LeadTypeResidential,
		Status:        models.StatusNew,
		Priority:      models.PriorityMedium,
		ContactMethod: models.ContactEmail,
		FollowUpDate:  "2024-06-01",
	}
}

func TestListSendsQuery(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(sampleLead("Ann", "ann@example.com"))

	f := models.Filters{Status: models.Ptr(models.StatusNew), Page: models.Ptr(1), PageSize: models.Ptr(10)}
	page, err := c.List(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/leads", reqs[0].Path)
	assert.Equal(t, "status=new&page=1&pageSize=10", reqs[0].Query)
	assert.Equal(t, "no-store", reqs[0].Header.Get("Cache-Control"))
}

func TestListWithoutFiltersHasNoQuery(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.List(context.Background(), models.Filters{})
	require.NoError(t, err)
	assert.Empty(t, srv.Requests()[0].Query)
}

func TestGetNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Get(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	apiErr, ok := connection.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Lead not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestCreateGetUpdate(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	lead := sampleLead("Bob", "bob@example.com")
	created, err := c.Create(ctx, &lead)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := c.Update(ctx, created.ID, &models.LeadPatch{Status: models.Ptr(models.StatusContacted)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, updated.Status)
	assert.Equal(t, "Bob", updated.FirstName)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)
}

func TestDeleteManyBody(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed(sampleLead("A", "a@example.com"), sampleLead("B", "b@example.com"))

	res, err := c.DeleteMany(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.True(t, res.Success)

	reqs := srv.Requests()
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.JSONEq(t, `{"leadIds":[1,2]}`, string(reqs[0].Body))
}

func TestAddNoteAndConvert(t *testing.T) {
	c, srv := newTestClient(t, fakeapi.WithCustomers(fakeapi.Customer{ID: 77, Email: "dup@example.com"}))
	ctx := context.Background()
	srv.Seed(sampleLead("Dup", "dup@example.com"), sampleLead("New", "new@example.com"))

	note, err := c.AddNote(ctx, 1, "left a voicemail")
	require.NoError(t, err)
	assert.Equal(t, "left a voicemail", note["note"])

	_, err = c.ConvertWithCheck(ctx, 1, models.ConvertOptions{})
	assert.True(t, errors.Is(err, ErrConflict))

	res, err := c.ConvertWithCheck(ctx, 1, models.ConvertOptions{ForceNewCustomer: models.Ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "converted", res["status"])

	res, err = c.Convert(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "converted", res["status"])
}

func TestLookups(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	sources, err := c.MasterLeadSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.DefaultMasterLeadSources(), sources)

	tags, err := c.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.DefaultTags(), tags)
}

func TestWrongTokenIsUnauthorized(t *testing.T) {
	_, srv := newTestClient(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := New(connection.NewConfig(ts.URL).WithAuthToken("wrong"))
	_, err := c.Tags(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LEADS_API_BASE_URL", "http://crm.test/api/")
	t.Setenv("LEADS_AUTH_TOKEN", "env-token")

	c := FromEnv()
	assert.Equal(t, "http://crm.test/api", c.Connection().BaseURL)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("LEADS_TEST_VALUE", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("LEADS_TEST_VALUE", "fallback"))

	t.Setenv("LEADS_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnvOrDefault("LEADS_TEST_VALUE", "fallback"))
}
