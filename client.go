package leads

import (
	"context"
	"net/http"
	"strconv"

	"github.com/leadscrm/leads.go/pkg/connection"
	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/models"
)

type Client struct {
	con *connection.HTTPConnection
}

// New creates a client for the API rooted at cfg.BaseURL.
func New(cfg *connection.Config) *Client {
	return FromConnection(connection.New(cfg))
}

// FromConnection wraps an existing connection, e.g. one with a custom http.Client.
func FromConnection(con *connection.HTTPConnection) *Client {
	return &Client{con: con}
}

// FromEnv reads the base URL and bearer token from LEADS_API_BASE_URL and
// LEADS_AUTH_TOKEN.
func FromEnv() *Client {
	cfg := connection.NewConfig(GetEnvOrDefault(constants.BaseURLEnv, "")).
		WithAuthToken(GetEnvOrDefault(constants.AuthTokenEnv, ""))
	return New(cfg)
}

func (c *Client) Connection() *connection.HTTPConnection {
	return c.con
}

// List returns one page of leads matching f.
func (c *Client) List(ctx context.Context, f models.Filters) (*models.Page[models.Lead], error) {
	path := constants.LeadsPath
	if q := f.Query(); q != "" {
		path += "?" + q
	}

	var page models.Page[models.Lead]
	if err := c.con.Do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*models.Lead, error) {
	var lead models.Lead
	if err := c.con.Do(ctx, http.MethodGet, leadPath(id), nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Create posts a new lead and returns the stored record.
func (c *Client) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	var created models.Lead
	if err := c.con.Do(ctx, http.MethodPost, constants.LeadsPath, lead, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends the set fields of patch and returns the stored record.
func (c *Client) Update(ctx context.Context, id int64, patch *models.LeadPatch) (*models.Lead, error) {
	if patch == nil {
		patch = &models.LeadPatch{}
	}

	var updated models.Lead
	if err := c.con.Do(ctx, http.MethodPut, leadPath(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMany archives the given leads in one call. The server reports the
// outcome in DeleteResult.Success; a false value is not turned into an error.
func (c *Client) DeleteMany(ctx context.Context, ids []int64) (*models.DeleteResult, error) {
	if ids == nil {
		ids = []int64{}
	}

	var res models.DeleteResult
	if err := c.con.Do(ctx, http.MethodDelete, constants.LeadsPath, models.DeleteRequest{LeadIDs: ids}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AddNote(ctx context.Context, id int64, note string) (map[string]any, error) {
	var res map[string]any
	if err := c.con.Do(ctx, http.MethodPost, leadPath(id)+"/notes", models.NoteRequest{Note: note}, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Convert turns the lead into a customer unconditionally.
func (c *Client) Convert(ctx context.Context, id int64) (models.ConvertResult, error) {
	var res models.ConvertResult
	if err := c.con.Do(ctx, http.MethodGet, leadPath(id)+"/convert", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ConvertWithCheck converts the lead unless it clashes with an existing
// customer, in which case the server answers 409 (see ErrConflict) and opts
// decides on the retry.
func (c *Client) ConvertWithCheck(ctx context.Context, id int64, opts models.ConvertOptions) (models.ConvertResult, error) {
	var res models.ConvertResult
	if err := c.con.Do(ctx, http.MethodPost, leadPath(id)+"/convert-with-check", opts, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) MasterLeadSources(ctx context.Context) ([]models.MasterLeadSource, error) {
	var sources []models.MasterLeadSource
	if err := c.con.Do(ctx, http.MethodGet, constants.LeadsPath+"/master-lead-sources", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.con.Do(ctx, http.MethodGet, constants.LeadsPath+"/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func leadPath(id int64) string {
	return constants.LeadsPath + "/" + strconv.FormatInt(id, 10)
}
