package fakeapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/models"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	leads := constants.LeadsPath

	// Lookup routes come first so they are not taken for lead ids.
	router.HandleFunc(leads+"/master-lead-sources", s.handleMasterLeadSources).Methods(http.MethodGet)
	router.HandleFunc(leads+"/tags", s.handleTags).Methods(http.MethodGet)

	router.HandleFunc(leads, s.handleList).Methods(http.MethodGet)
	router.HandleFunc(leads, s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc(leads, s.handleDeleteMany).Methods(http.MethodDelete)
	router.HandleFunc(leads+"/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc(leads+"/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc(leads+"/{id:[0-9]+}/notes", s.handleAddNote).Methods(http.MethodPost)
	router.HandleFunc(leads+"/{id:[0-9]+}/convert", s.handleConvert).Methods(http.MethodGet)
	router.HandleFunc(leads+"/{id:[0-9]+}/convert-with-check", s.handleConvertWithCheck).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	token := s.token
	stub := s.matchStubLocked(r)
	s.mu.Unlock()

	// Echo the caller's request id, or mint one, so responses can be correlated.
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("query", r.URL.RawQuery).
		Str("request_id", requestID).
		Msg("fake api request")

	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		s.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if stub != nil {
		if stub.Delay > 0 {
			select {
			case <-time.After(stub.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if !stub.passthrough() {
			s.respondStub(w, stub)
			return
		}
	}

	s.router.ServeHTTP(w, r)
}

func (s *Server) matchStubLocked(r *http.Request) *Stub {
	for _, stub := range s.stubs {
		if stub.Method != "" && stub.Method != r.Method {
			continue
		}
		if stub.Path != r.URL.Path {
			continue
		}
		if stub.Times > 0 && stub.used >= stub.Times {
			continue
		}
		stub.used++
		cp := *stub
		return &cp
	}
	return nil
}

func (s *Server) respondStub(w http.ResponseWriter, stub *Stub) {
	status := stub.Status
	if status == 0 {
		status = http.StatusOK
	}
	if text, ok := stub.Body.(string); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, text)
		return
	}
	s.respondJSON(w, status, stub.Body)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), constants.DefaultPage)
	pageSize := positiveInt(q.Get("pageSize"), constants.DefaultPageSize)

	s.mu.RLock()
	all := s.sortedLocked()
	s.mu.RUnlock()

	matched := make([]models.Lead, 0, len(all))
	for _, l := range all {
		if matches(l, q.Get) {
			matched = append(matched, l)
		}
	}

	// page and pageSize are unbounded; compare before multiplying.
	start := len(matched)
	if page-1 <= len(matched)/pageSize {
		start = (page - 1) * pageSize
	}
	end := start + min(pageSize, len(matched)-start)

	s.respondJSON(w, http.StatusOK, models.Page[models.Lead]{
		Data:     matched[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    len(matched),
	})
}

func matches(l models.Lead, get func(string) string) bool {
	if search := strings.ToLower(get("search")); search != "" {
		haystack := strings.ToLower(strings.Join([]string{l.FirstName, l.Surname, l.Email, l.Company, l.Phone}, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	if v := get("status"); v != "" && string(l.Status) != v {
		return false
	}
	if v := get("source"); v != "" && string(l.Source) != v {
		return false
	}
	if v := get("priority"); v != "" && string(l.Priority) != v {
		return false
	}
	if v := get("lead_type"); v != "" && string(l.LeadType) != v {
		return false
	}
	if v := get("follow_up_date"); v != "" && string(l.FollowUpDate) != v {
		return false
	}
	if v := get("is_archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err == nil && l.IsArchived != archived {
			return false
		}
	}
	return true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	lead, found := s.Lead(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "Lead not found")
		return
	}
	s.respondJSON(w, http.StatusOK, lead)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := s.codec.NewDecoder(r.Body).Decode(&lead); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(lead.FirstName) == "" || strings.TrimSpace(lead.Surname) == "" {
		s.respondError(w, http.StatusBadRequest, "first_name and surname are required")
		return
	}
	lead.ID = 0
	lead.IsArchived = false

	s.mu.Lock()
	stored := *s.insertLocked(lead)
	s.mu.Unlock()

	s.respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var patch models.LeadPatch
	if err := s.codec.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	lead, found := s.leads[id]
	if found {
		patch.Apply(lead)
	}
	var updated models.Lead
	if found {
		updated = *lead
	}
	s.mu.Unlock()

	if !found {
		s.respondError(w, http.StatusNotFound, "Lead not found")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

// handleDeleteMany archives; leads are never removed from the table.
func (s *Server) handleDeleteMany(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := s.codec.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.LeadIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "leadIds must not be empty")
		return
	}

	s.mu.Lock()
	for _, id := range req.LeadIDs {
		if lead, ok := s.leads[id]; ok {
			lead.IsArchived = true
		}
	}
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, models.DeleteResult{Success: true})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var req models.NoteRequest
	if err := s.codec.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		s.respondError(w, http.StatusBadRequest, "note is required")
		return
	}

	s.mu.Lock()
	_, found := s.leads[id]
	var note Note
	if found {
		note = Note{ID: s.nextNote, LeadID: id, Note: req.Note, CreatedAt: time.Now().UTC()}
		s.nextNote++
		s.notes[id] = append(s.notes[id], note)
	}
	s.mu.Unlock()

	if !found {
		s.respondError(w, http.StatusNotFound, "Lead not found")
		return
	}
	s.respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	lead, found := s.leads[id]
	var customer Customer
	if found {
		customer = s.newCustomerLocked(lead)
		lead.Status = models.StatusConverted
	}
	s.mu.Unlock()

	if !found {
		s.respondError(w, http.StatusNotFound, "Lead not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"lead_id":  id,
		"customer": customer,
		"status":   models.StatusConverted,
	})
}

// handleConvertWithCheck refuses with 409 when a customer with the lead's
// email already exists, unless the caller links to a customer or forces a new one.
func (s *Server) handleConvertWithCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leadID(w, r)
	if !ok {
		return
	}

	var opts models.ConvertOptions
	if err := s.codec.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lead, found := s.leads[id]
	if !found {
		s.respondError(w, http.StatusNotFound, "Lead not found")
		return
	}

	if opts.CustomerID != nil {
		customer, ok := s.customerByIDLocked(*opts.CustomerID)
		if !ok {
			s.respondError(w, http.StatusNotFound, "Customer not found")
			return
		}
		lead.Status = models.StatusConverted
		s.respondJSON(w, http.StatusOK, map[string]any{
			"lead_id":  id,
			"customer": customer,
			"linked":   true,
			"status":   models.StatusConverted,
		})
		return
	}

	force := opts.ForceNewCustomer != nil && *opts.ForceNewCustomer
	if existing, ok := s.customerByEmailLocked(lead.Email); ok && !force {
		s.respondJSON(w, http.StatusConflict, map[string]any{
			"message":           "A customer with this email already exists",
			"existing_customer": existing,
		})
		return
	}

	customer := s.newCustomerLocked(lead)
	lead.Status = models.StatusConverted
	s.respondJSON(w, http.StatusOK, map[string]any{
		"lead_id":  id,
		"customer": customer,
		"linked":   false,
		"status":   models.StatusConverted,
	})
}

func (s *Server) handleMasterLeadSources(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sources := append([]models.MasterLeadSource{}, s.sources...)
	s.mu.RUnlock()
	s.respondJSON(w, http.StatusOK, sources)
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	tags := append([]models.Tag{}, s.tags...)
	s.mu.RUnlock()
	s.respondJSON(w, http.StatusOK, tags)
}

func (s *Server) newCustomerLocked(l *models.Lead) Customer {
	c := Customer{ID: s.nextCustom, Name: l.FullName(), Email: l.Email}
	s.nextCustom++
	s.customers = append(s.customers, c)
	return c
}

func (s *Server) customerByIDLocked(id int64) (Customer, bool) {
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

func (s *Server) customerByEmailLocked(email string) (Customer, bool) {
	if email == "" {
		return Customer{}, false
	}
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			return c, true
		}
	}
	return Customer{}, false
}

func (s *Server) leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid lead ID")
		return 0, false
	}
	return id, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := s.codec.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("fake api: encode response")
	}
}

// respondError answers {"message": msg}, the shape the Leads API uses.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"message": message})
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
