package models

// Page is one page of a paginated listing. Total is authoritative for the
// number of pages.
type Page[T any] struct {
	Data     []T `json:"data"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// LastPage is the highest valid page for total records, never below 1.
func LastPage(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, LastPage(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	last := LastPage(total, pageSize)
	if page > last {
		return last
	}
	if page < 1 {
		return 1
	}
	return page
}

type MasterLeadSource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DeleteRequest struct {
	LeadIDs []int64 `json:"leadIds"`
}

type DeleteResult struct {
	Success bool `json:"success"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

// ConvertOptions resolves the conflict raised when a lead's contact details
// match an existing customer: link to CustomerID, or force a new customer.
type ConvertOptions struct {
	CustomerID       *int64 `json:"customer_id,omitempty"`
	ForceNewCustomer *bool  `json:"force_new_customer,omitempty"`
}

// ConvertResult is the server's opaque answer to a conversion.
type ConvertResult map[string]any
