package models

// LeadPatch is a partial update. Nil fields are left untouched by the server.
// Slices cannot be cleared through a patch: an empty slice is omitted like a nil one.
type LeadPatch struct {
	FirstName     *string        `json:"first_name,omitempty" validate:"omitnil,required"`
	Surname       *string        `json:"surname,omitempty" validate:"omitnil,required"`
	Email         *string        `json:"email,omitempty" validate:"omitnil,required,email"`
	Phone         *string        `json:"phone,omitempty" validate:"omitnil,required,numeric,len=10"`
	Company       *string        `json:"company,omitempty"`
	Position      *string        `json:"position,omitempty"`
	LeadType      *LeadType      `json:"lead_type,omitempty" validate:"omitnil,oneof=commercial residential"`
	Source        *LeadSource    `json:"source,omitempty" validate:"omitnil,oneof=website_enquiry social_media referral phone_call email_campaign paid_ads trade_show_event other"`
	Status        *LeadStatus    `json:"status,omitempty" validate:"omitnil,oneof=new contacted follow_up_scheduled on_hold converted lost"`
	Score         *int           `json:"score,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	AssignedTo    *int64         `json:"assigned_to,omitempty"`
	AccountType   *AccountType   `json:"account_type,omitempty" validate:"omitnil,oneof=company individual"`
	Priority      *Priority      `json:"priority,omitempty" validate:"omitnil,oneof=low medium high urgent"`
	Industry      *string        `json:"industry,omitempty"`
	ContactMethod *ContactMethod `json:"contact_method,omitempty" validate:"omitnil,oneof=phone_call email sms whatsapp other"`
	BusinessSize  *BusinessSize  `json:"business_size,omitempty" validate:"omitnil,oneof=small medium large"`
	FollowUpDate  *Date          `json:"follow_up_date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Tags          []TagRef       `json:"tags,omitempty"`
	Documents     []Document     `json:"leadDocuments,omitempty" validate:"dive"`
	Addresses     []Address      `json:"leadAddresses,omitempty" validate:"dive"`
	IsArchived    *bool          `json:"is_archived,omitempty"`
}

// PatchFromLead turns an edited record into a full-replace patch, which is how
// the edit form submits.
func PatchFromLead(l Lead) *LeadPatch {
	return &LeadPatch{
		FirstName:     Ptr(l.FirstName),
		Surname:       Ptr(l.Surname),
		Email:         Ptr(l.Email),
		Phone:         Ptr(l.Phone),
		Company:       Ptr(l.Company),
		Position:      Ptr(l.Position),
		LeadType:      optional(l.LeadType),
		Source:        optional(l.Source),
		Status:        optional(l.Status),
		Score:         l.Score,
		Notes:         Ptr(l.Notes),
		AssignedTo:    l.AssignedTo,
		AccountType:   optional(l.AccountType),
		Priority:      optional(l.Priority),
		Industry:      Ptr(l.Industry),
		ContactMethod: optional(l.ContactMethod),
		BusinessSize:  optional(l.BusinessSize),
		FollowUpDate:  optional(l.FollowUpDate),
		Tags:          l.Tags,
		Documents:     l.Documents,
		Addresses:     l.Addresses,
		IsArchived:    Ptr(l.IsArchived),
	}
}

// Apply copies the set fields of p onto l.
func (p *LeadPatch) Apply(l *Lead) {
	set(&l.FirstName, p.FirstName)
	set(&l.Surname, p.Surname)
	set(&l.Email, p.Email)
	set(&l.Phone, p.Phone)
	set(&l.Company, p.Company)
	set(&l.Position, p.Position)
	set(&l.LeadType, p.LeadType)
	set(&l.Source, p.Source)
	set(&l.Status, p.Status)
	if p.Score != nil {
		l.Score = p.Score
	}
	set(&l.Notes, p.Notes)
	if p.AssignedTo != nil {
		l.AssignedTo = p.AssignedTo
	}
	set(&l.AccountType, p.AccountType)
	set(&l.Priority, p.Priority)
	set(&l.Industry, p.Industry)
	set(&l.ContactMethod, p.ContactMethod)
	set(&l.BusinessSize, p.BusinessSize)
	set(&l.FollowUpDate, p.FollowUpDate)
	if len(p.Tags) > 0 {
		l.Tags = p.Tags
	}
	if len(p.Documents) > 0 {
		l.Documents = p.Documents
	}
	if len(p.Addresses) > 0 {
		l.Addresses = p.Addresses
	}
	set(&l.IsArchived, p.IsArchived)
}

// Empty reports whether the patch carries no change at all.
func (p *LeadPatch) Empty() bool {
	return p.FirstName == nil && p.Surname == nil && p.Email == nil && p.Phone == nil &&
		p.Company == nil && p.Position == nil && p.LeadType == nil && p.Source == nil &&
		p.Status == nil && p.Score == nil && p.Notes == nil && p.AssignedTo == nil &&
		p.AccountType == nil && p.Priority == nil && p.Industry == nil &&
		p.ContactMethod == nil && p.BusinessSize == nil && p.FollowUpDate == nil &&
		len(p.Tags) == 0 && len(p.Documents) == 0 && len(p.Addresses) == 0 && p.IsArchived == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
