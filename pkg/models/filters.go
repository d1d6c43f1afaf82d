package models

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/leadscrm/leads.go/pkg/constants"
)

// Filters is a partial set of list constraints. A nil field is absent; a field
// pointing at an empty value is present but blank, which lets Merge clear a
// constraint that was set earlier.
type Filters struct {
	Page         *int
	PageSize     *int
	Search       *string
	Status       *LeadStatus
	Source       *LeadSource
	Priority     *Priority
	LeadType     *LeadType
	FollowUpDate *Date
	IsArchived   *bool
}

// DefaultFilters is the initial filter set of a fresh store.
func DefaultFilters() Filters {
	return Filters{
		Page:       Ptr(constants.DefaultPage),
		PageSize:   Ptr(constants.DefaultPageSize),
		IsArchived: Ptr(false),
	}
}

// Merge returns f with every non-nil field of o copied over it.
func (f Filters) Merge(o Filters) Filters {
	if o.Page != nil {
		f.Page = o.Page
	}
	if o.PageSize != nil {
		f.PageSize = o.PageSize
	}
	if o.Search != nil {
		f.Search = o.Search
	}
	if o.Status != nil {
		f.Status = o.Status
	}
	if o.Source != nil {
		f.Source = o.Source
	}
	if o.Priority != nil {
		f.Priority = o.Priority
	}
	if o.LeadType != nil {
		f.LeadType = o.LeadType
	}
	if o.FollowUpDate != nil {
		f.FollowUpDate = o.FollowUpDate
	}
	if o.IsArchived != nil {
		f.IsArchived = o.IsArchived
	}
	return f
}

// PageOr returns the page, or def when unset or zero.
func (f Filters) PageOr(def int) int {
	if f.Page == nil || *f.Page == 0 {
		return def
	}
	return *f.Page
}

// PageSizeOr returns the page size, or def when unset or zero.
func (f Filters) PageSizeOr(def int) int {
	if f.PageSize == nil || *f.PageSize == 0 {
		return def
	}
	return *f.PageSize
}

// Query encodes f for GET /leads. Unset and blank constraints are left out;
// is_archived is kept whenever it is set, false included.
func (f Filters) Query() string {
	var parts []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	add("search", deref(f.Search))
	add("status", string(deref(f.Status)))
	add("source", string(deref(f.Source)))
	add("priority", string(deref(f.Priority)))
	add("lead_type", string(deref(f.LeadType)))
	add("follow_up_date", string(deref(f.FollowUpDate)))
	if f.IsArchived != nil {
		add("is_archived", strconv.FormatBool(*f.IsArchived))
	}
	if f.Page != nil && *f.Page != 0 {
		add("page", strconv.Itoa(*f.Page))
	}
	if f.PageSize != nil && *f.PageSize != 0 {
		add("pageSize", strconv.Itoa(*f.PageSize))
	}
	return strings.Join(parts, "&")
}

// Clone returns a copy that shares no pointers with f.
func (f Filters) Clone() Filters {
	return Filters{
		Page:         clonePtr(f.Page),
		PageSize:     clonePtr(f.PageSize),
		Search:       clonePtr(f.Search),
		Status:       clonePtr(f.Status),
		Source:       clonePtr(f.Source),
		Priority:     clonePtr(f.Priority),
		LeadType:     clonePtr(f.LeadType),
		FollowUpDate: clonePtr(f.FollowUpDate),
		IsArchived:   clonePtr(f.IsArchived),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
