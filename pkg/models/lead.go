package models

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Lead is a prospective customer tracked through the status pipeline.
// ID is zero until the server has persisted the record.
type Lead struct {
	ID            int64         `json:"id,omitempty"`
	FirstName     string        `json:"first_name" validate:"required"`
	Surname       string        `json:"surname" validate:"required"`
	Email         string        `json:"email,omitempty" validate:"required,email"`
	Phone         string        `json:"phone,omitempty" validate:"required,numeric,len=10"`
	Company       string        `json:"company,omitempty" validate:"required_if=LeadType commercial"`
	Position      string        `json:"position,omitempty"`
	LeadType      LeadType      `json:"lead_type,omitempty" validate:"required,oneof=commercial residential"`
	Source        LeadSource    `json:"source,omitempty" validate:"omitempty,oneof=website_enquiry social_media referral phone_call email_campaign paid_ads trade_show_event other"`
	Status        LeadStatus    `json:"status,omitempty" validate:"required,oneof=new contacted follow_up_scheduled on_hold converted lost"`
	Score         *int          `json:"score,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	AssignedTo    *int64        `json:"assigned_to,omitempty"`
	AccountType   AccountType   `json:"account_type,omitempty" validate:"omitempty,oneof=company individual"`
	Priority      Priority      `json:"priority,omitempty" validate:"required,oneof=low medium high urgent"`
	Industry      string        `json:"industry,omitempty"`
	ContactMethod ContactMethod `json:"contact_method,omitempty" validate:"required,oneof=phone_call email sms whatsapp other"`
	BusinessSize  BusinessSize  `json:"business_size,omitempty" validate:"omitempty,oneof=small medium large"`
	FollowUpDate  Date          `json:"follow_up_date,omitempty" validate:"required,datetime=2006-01-02"`
	Tags          []TagRef      `json:"tags,omitempty"`
	InitialNotes  []NoteInput   `json:"initialNotes,omitempty" validate:"dive"`
	Documents     []Document    `json:"leadDocuments,omitempty" validate:"dive"`
	Addresses     []Address     `json:"leadAddresses,omitempty" validate:"dive"`
	IsArchived    bool          `json:"is_archived,omitempty"`
}

// Clone returns a copy of l that shares no slices or pointers with it.
func (l *Lead) Clone() Lead {
	c := *l
	c.Score = clonePtr(l.Score)
	c.AssignedTo = clonePtr(l.AssignedTo)
	c.Tags = slices.Clone(l.Tags)
	c.InitialNotes = slices.Clone(l.InitialNotes)
	c.Documents = slices.Clone(l.Documents)
	c.Addresses = slices.Clone(l.Addresses)
	return c
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.Surname)
}

// DefaultAddress returns the address flagged as default, or nil.
func (l *Lead) DefaultAddress() *Address {
	for i := range l.Addresses {
		if l.Addresses[i].IsDefault {
			return &l.Addresses[i]
		}
	}
	return nil
}

// SetDefaultAddress flags the i-th address as default and clears the flag on all
// others. The server does not enforce a single default, so callers editing
// addresses go through here.
func (l *Lead) SetDefaultAddress(i int) bool {
	if i < 0 || i >= len(l.Addresses) {
		return false
	}
	for j := range l.Addresses {
		l.Addresses[j].IsDefault = j == i
	}
	return true
}

// Address belongs to exactly one Lead.
type Address struct {
	ID           int64       `json:"id,omitempty"`
	AddressType  AddressType `json:"address_type" validate:"required,oneof=primary billing workplace"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2,omitempty"`
	City         string      `json:"city,omitempty"`
	State        string      `json:"state,omitempty"`
	PostalCode   string      `json:"postal_code,omitempty"`
	Country      string      `json:"country,omitempty"`
	IsDefault    bool        `json:"is_default,omitempty"`
}

type Document struct {
	ID           int64  `json:"id,omitempty"`
	DocumentName string `json:"document_name" validate:"required"`
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url" validate:"required"`
	MimeType     string `json:"mime_type"`
}

// NoteInput is a note attached while creating a lead. The API accepts either a
// bare string or an object.
type NoteInput struct {
	ID   int64  `json:"id,omitempty"`
	Note string `json:"note" validate:"required"`
}

func (n *NoteInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NoteInput{Note: s}
		return nil
	}
	type plain NoteInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = NoteInput(p)
	return nil
}

// TagRef references a tag either by numeric id or by name.
type TagRef string

func TagID(id int64) TagRef { return TagRef(strconv.FormatInt(id, 10)) }

// ID reports the numeric tag id, if the reference is one.
func (t TagRef) ID() (int64, bool) {
	id, err := strconv.ParseInt(string(t), 10, 64)
	return id, err == nil
}

func (t TagRef) MarshalJSON() ([]byte, error) {
	if id, ok := t.ID(); ok {
		return []byte(strconv.FormatInt(id, 10)), nil
	}
	return json.Marshal(string(t))
}

func (t *TagRef) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = TagRef(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TagRef(s)
	return nil
}
