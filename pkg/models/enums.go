package models

import "fmt"

// LeadStatus is the position of a lead in the sales pipeline.
type LeadStatus string

const (
	StatusNew               LeadStatus = "new"
	StatusContacted         LeadStatus = "contacted"
	StatusFollowUpScheduled LeadStatus = "follow_up_scheduled"
	StatusOnHold            LeadStatus = "on_hold"
	StatusConverted         LeadStatus = "converted"
	StatusLost              LeadStatus = "lost"
)

var AllLeadStatuses = []LeadStatus{
	StatusNew, StatusContacted, StatusFollowUpScheduled, StatusOnHold, StatusConverted, StatusLost,
}

func (s LeadStatus) Valid() bool { return contains(AllLeadStatuses, s) }

func ParseLeadStatus(s string) (LeadStatus, error) { return parseEnum("lead status", AllLeadStatuses, s) }

type LeadType string

const (
	LeadTypeCommercial  LeadType = "commercial"
	LeadTypeResidential LeadType = "residential"
)

var AllLeadTypes = []LeadType{LeadTypeCommercial, LeadTypeResidential}

func (t LeadType) Valid() bool { return contains(AllLeadTypes, t) }

func ParseLeadType(s string) (LeadType, error) { return parseEnum("lead type", AllLeadTypes, s) }

type LeadSource string

const (
	SourceWebsiteEnquiry LeadSource = "website_enquiry"
	SourceSocialMedia    LeadSource = "social_media"
	SourceReferral       LeadSource = "referral"
	SourcePhoneCall      LeadSource = "phone_call"
	SourceEmailCampaign  LeadSource = "email_campaign"
	SourcePaidAds        LeadSource = "paid_ads"
	SourceTradeShowEvent LeadSource = "trade_show_event"
	SourceOther          LeadSource = "other"
)

var AllLeadSources = []LeadSource{
	SourceWebsiteEnquiry, SourceSocialMedia, SourceReferral, SourcePhoneCall,
	SourceEmailCampaign, SourcePaidAds, SourceTradeShowEvent, SourceOther,
}

func (s LeadSource) Valid() bool { return contains(AllLeadSources, s) }

func ParseLeadSource(s string) (LeadSource, error) { return parseEnum("lead source", AllLeadSources, s) }

type ContactMethod string

const (
	ContactPhoneCall ContactMethod = "phone_call"
	ContactEmail     ContactMethod = "email"
	ContactSMS       ContactMethod = "sms"
	ContactWhatsApp  ContactMethod = "whatsapp"
	ContactOther     ContactMethod = "other"
)

var AllContactMethods = []ContactMethod{ContactPhoneCall, ContactEmail, ContactSMS, ContactWhatsApp, ContactOther}

func (m ContactMethod) Valid() bool { return contains(AllContactMethods, m) }

func ParseContactMethod(s string) (ContactMethod, error) {
	return parseEnum("contact method", AllContactMethods, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool { return contains(AllPriorities, p) }

func ParsePriority(s string) (Priority, error) { return parseEnum("priority", AllPriorities, s) }

type AddressType string

const (
	AddressPrimary   AddressType = "primary"
	AddressBilling   AddressType = "billing"
	AddressWorkplace AddressType = "workplace"
)

var AllAddressTypes = []AddressType{AddressPrimary, AddressBilling, AddressWorkplace}

func (a AddressType) Valid() bool { return contains(AllAddressTypes, a) }

func ParseAddressType(s string) (AddressType, error) { return parseEnum("address type", AllAddressTypes, s) }

type AccountType string

const (
	AccountCompany    AccountType = "company"
	AccountIndividual AccountType = "individual"
)

var AllAccountTypes = []AccountType{AccountCompany, AccountIndividual}

func (a AccountType) Valid() bool { return contains(AllAccountTypes, a) }

type BusinessSize string

const (
	BusinessSmall  BusinessSize = "small"
	BusinessMedium BusinessSize = "medium"
	BusinessLarge  BusinessSize = "large"
)

var AllBusinessSizes = []BusinessSize{BusinessSmall, BusinessMedium, BusinessLarge}

func (b BusinessSize) Valid() bool { return contains(AllBusinessSizes, b) }

func contains[T comparable](all []T, v T) bool {
	for _, candidate := range all {
		if candidate == v {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](what string, all []T, s string) (T, error) {
	v := T(s)
	if !contains(all, v) {
		return "", fmt.Errorf("unknown %s %q", what, s)
	}
	return v, nil
}
