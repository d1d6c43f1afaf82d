package fakeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscrm/leads.go/pkg/models"
)

func do(t *testing.T, ts *httptest.Server, method, path, body string, header ...string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, r)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func seeded(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()

	s := NewServer("127.0.0.1:0", opts...)
	s.Seed(
		models.Lead{FirstName: "Ada", Surname: "Lovelace", Email: "ada@example.com", Status: models.StatusNew, LeadType: models.LeadTypeCommercial},
		models.Lead{FirstName: "Alan", Surname: "Turing", Email: "alan@example.com", Status: models.StatusContacted, LeadType: models.LeadTypeResidential},
		models.Lead{FirstName: "Grace", Surname: "Hopper", Email: "grace@example.com", Status: models.StatusNew, Priority: models.PriorityHigh},
	)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestListFiltersAndPaginates(t *testing.T) {
	_, ts := seeded(t)

	status, body := do(t, ts, http.MethodGet, "/leads?status=new&page=1&pageSize=1", "")
	require.Equal(t, http.StatusOK, status)

	var page models.Page[models.Lead]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ada", page.Data[0].FirstName)

	_, body = do(t, ts, http.MethodGet, "/leads?search=HOPPER", "")
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Grace", page.Data[0].FirstName)
}

func TestListPageBeyondEndIsEmpty(t *testing.T) {
	_, ts := seeded(t)

	_, body := do(t, ts, http.MethodGet, "/leads?page=9&pageSize=10", "")
	var page models.Page[models.Lead]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.Total)
}

func TestListHugePageValues(t *testing.T) {
	_, ts := seeded(t)

	for _, query := range []string{
		"page=9223372036854775807&pageSize=10",
		"page=2&pageSize=9223372036854775807",
		"page=9223372036854775807&pageSize=9223372036854775807",
	} {
		status, body := do(t, ts, http.MethodGet, "/leads?"+query, "")
		require.Equal(t, http.StatusOK, status, query)

		var page models.Page[models.Lead]
		require.NoError(t, json.Unmarshal(body, &page), query)
		assert.Empty(t, page.Data, query)
		assert.Equal(t, 3, page.Total, query)
	}

	_, body := do(t, ts, http.MethodGet, "/leads?page=1&pageSize=9223372036854775807", "")
	var page models.Page[models.Lead]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Data, 3)
}

func TestDeleteArchives(t *testing.T) {
	s, ts := seeded(t)

	status, body := do(t, ts, http.MethodDelete, "/leads", `{"leadIds":[1,3]}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true}`, string(body))

	lead, ok := s.Lead(1)
	require.True(t, ok)
	assert.True(t, lead.IsArchived)

	_, body = do(t, ts, http.MethodGet, "/leads?is_archived=false", "")
	var page models.Page[models.Lead]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 1, page.Total)
}

func TestGetMissingLead(t *testing.T) {
	_, ts := seeded(t)

	status, body := do(t, ts, http.MethodGet, "/leads/42", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"Lead not found"}`, string(body))
}

func TestLookupRoutesAreNotLeadIDs(t *testing.T) {
	_, ts := seeded(t, WithTags(models.Tag{ID: 7, Name: "hot"}))

	status, body := do(t, ts, http.MethodGet, "/leads/tags", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":7,"name":"hot"}]`, string(body))

	status, _ = do(t, ts, http.MethodGet, "/leads/master-lead-sources", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestBearerTokenRequired(t *testing.T) {
	_, ts := seeded(t, WithToken("secret"))

	status, _ := do(t, ts, http.MethodGet, "/leads", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, ts, http.MethodGet, "/leads", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, status)
}

func TestConvertWithCheckConflict(t *testing.T) {
	s, ts := seeded(t, WithCustomers(Customer{ID: 5000, Name: "Ada L", Email: "ADA@example.com"}))

	status, body := do(t, ts, http.MethodPost, "/leads/1/convert-with-check", `{}`)
	require.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "already exists")

	status, _ = do(t, ts, http.MethodPost, "/leads/1/convert-with-check", `{"customer_id":5000}`)
	require.Equal(t, http.StatusOK, status)
	lead, _ := s.Lead(1)
	assert.Equal(t, models.StatusConverted, lead.Status)

	status, _ = do(t, ts, http.MethodPost, "/leads/2/convert-with-check", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, s.Customers(), 2)
}

func TestStubOverridesAndExpires(t *testing.T) {
	s, ts := seeded(t)
	s.AddStub(Stub{Method: http.MethodGet, Path: "/leads", Status: http.StatusInternalServerError, Body: map[string]string{"error": "boom"}, Times: 1})

	status, body := do(t, ts, http.MethodGet, "/leads", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"boom"}`, string(body))

	status, _ = do(t, ts, http.MethodGet, "/leads", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestStubDelayPassesThrough(t *testing.T) {
	s, ts := seeded(t)
	s.AddStub(Stub{Path: "/leads/1", Delay: 20 * time.Millisecond})

	start := time.Now()
	status, _ := do(t, ts, http.MethodGet, "/leads/1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRequestsAreRecorded(t *testing.T) {
	s, ts := seeded(t)

	do(t, ts, http.MethodPost, "/leads/2/notes", `{"note":"called back"}`)

	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/leads/2/notes", reqs[0].Path)
	assert.JSONEq(t, `{"note":"called back"}`, string(reqs[0].Body))
	require.Len(t, s.Notes(2), 1)
	assert.Equal(t, "called back", s.Notes(2)[0].Note)
}

func TestStartStop(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop(context.Background()) }()

	resp, err := http.Get(s.URL() + "/leads/tags")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDIsEchoedOrMinted(t *testing.T) {
	_, ts := seeded(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/leads/1", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))

	resp, err = ts.Client().Get(ts.URL + "/leads/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
}
