// Package fakeapi provides an in-memory fake of the Leads REST API for tests
// and local development.
//
// It keeps leads, notes and customers in memory, implements filtering and
// pagination the way the real backend does, and archives instead of deleting.
//
// To inject failures, register stub responses that match a method and path;
// a stub can answer with any status and body, delay the answer, or both, and
// can be limited to a number of uses.
package fakeapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/leadscrm/leads.go/internal/codec"
	"github.com/leadscrm/leads.go/pkg/logger"
	"github.com/leadscrm/leads.go/pkg/models"
)

// Stub is a canned answer for requests matching Method and Path.
type Stub struct {
	// Method is matched exactly; empty matches any method.
	Method string
	// Path is matched against the request path without the query string.
	Path string
	// Status defaults to 200.
	Status int
	// Body is encoded as JSON. A string body is sent as text/plain.
	Body any
	// Delay is applied before answering, or before falling through when
	// Status is zero and Body is nil.
	Delay time.Duration
	// Times limits how often the stub fires; 0 means every time.
	Times int

	used int
}

// passthrough reports whether the stub only delays and lets the real handler answer.
func (s *Stub) passthrough() bool {
	return s.Status == 0 && s.Body == nil
}

// Request is a recorded incoming request.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Note struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	router   *mux.Router
	logger   zerolog.Logger
	codec    codec.JSON

	mu         sync.RWMutex
	token      string
	leads      map[int64]*models.Lead
	notes      map[int64][]Note
	customers  []Customer
	sources    []models.MasterLeadSource
	tags       []models.Tag
	stubs      []*Stub
	requests   []Request
	nextLead   int64
	nextNote   int64
	nextCustom int64
}

type Option func(*Server)

// WithToken makes every endpoint require "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger.OrNop(l) }
}

func WithMasterLeadSources(sources ...models.MasterLeadSource) Option {
	return func(s *Server) { s.sources = sources }
}

func WithTags(tags ...models.Tag) Option {
	return func(s *Server) { s.tags = tags }
}

// WithCustomers seeds the customer table used by convert-with-check.
func WithCustomers(customers ...Customer) Option {
	return func(s *Server) { s.customers = append(s.customers, customers...) }
}

// NewServer creates a fake server. Use "127.0.0.1:0" to bind to a random
// available port when calling Start; Handler can be used without listening.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		logger:     zerolog.Nop(),
		leads:      make(map[int64]*models.Lead),
		notes:      make(map[int64][]Note),
		nextLead:   1,
		nextNote:   1,
		nextCustom: 1000,
		sources:    DefaultMasterLeadSources(),
		tags:       DefaultTags(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range s.customers {
		if c.ID >= s.nextCustom {
			s.nextCustom = c.ID + 1
		}
	}
	s.router = s.routes()
	return s
}

func DefaultMasterLeadSources() []models.MasterLeadSource {
	return []models.MasterLeadSource{
		{ID: 1, Name: "Website Enquiry", Type: "online"},
		{ID: 2, Name: "Referral", Type: "offline"},
		{ID: 3, Name: "Trade Show", Type: "event"},
	}
}

func DefaultTags() []models.Tag {
	return []models.Tag{
		{ID: 1, Name: "vip"},
		{ID: 2, Name: "follow-up"},
		{ID: 3, Name: "cold"},
	}
}

// Handler returns the server's http.Handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

// Start starts listening. Returns an error if the address cannot be bound.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("fake api server stopped")
		}
	}()

	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Address returns the actual address the server is listening on.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL is the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.Address()
}

// AddStub registers a stub. Stubs are matched in the order they were added.
func (s *Server) AddStub(stub Stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, &stub)
}

// ClearStubs removes every stub.
func (s *Server) ClearStubs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = nil
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Request(nil), s.requests...)
}

// Seed stores leads as if they had been created, assigning ids to those
// without one, and returns the stored copies.
func (s *Server) Seed(leads ...models.Lead) []models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		stored := s.insertLocked(l)
		out = append(out, *stored)
	}
	return out
}

// Lead returns the stored lead with id.
func (s *Server) Lead(id int64) (models.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return models.Lead{}, false
	}
	return *l, true
}

// Notes returns the notes added to lead id.
func (s *Server) Notes(id int64) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Note(nil), s.notes[id]...)
}

func (s *Server) Customers() []Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Customer(nil), s.customers...)
}

func (s *Server) insertLocked(l models.Lead) *models.Lead {
	if l.ID == 0 {
		l.ID = s.nextLead
	}
	if l.ID >= s.nextLead {
		s.nextLead = l.ID + 1
	}
	if l.Status == "" {
		l.Status = models.StatusNew
	}
	s.leads[l.ID] = &l
	return &l
}

func (s *Server) sortedLocked() []models.Lead {
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
