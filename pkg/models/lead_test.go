package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLead() Lead {
	return Lead{
		FirstName:     "Grace",
		Surname:       "Hopper",
		Email:         "grace@example.com",
		Phone:         "0123456789",
		LeadType:      LeadTypeResidential,
		Status:        StatusNew,
		ContactMethod: ContactEmail,
		Priority:      PriorityHigh,
		FollowUpDate:  "2025-06-01",
		Addresses: []Address{{
			AddressType:  AddressPrimary,
			AddressLine1: "1 Navy Way",
			Country:      "United Kingdom",
			IsDefault:    true,
		}},
	}
}

func TestValidLeadPasses(t *testing.T) {
	l := validLead()
	require.NoError(t, l.Validate())
}

func TestValidateReportsRequiredFields(t *testing.T) {
	err := (&Lead{}).Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	for path, want := range map[string]string{
		"first_name":     "First name is required",
		"surname":        "Surname is required",
		"email":          "Email is required",
		"phone":          "Phone number is required",
		"lead_type":      "Lead type is required",
		"status":         "Status is required",
		"contact_method": "Preferred contact method is required",
		"priority":       "Priority is required",
		"follow_up_date": "Follow-up date is required",
	} {
		got, ok := verr.Field(path)
		if assert.True(t, ok, path) {
			assert.Equal(t, want, got)
		}
	}
}

func TestValidateFieldFormats(t *testing.T) {
	l := validLead()
	l.Email = "not-an-email"
	l.Phone = "12345"
	l.FollowUpDate = "01/06/2025"
	l.Status = "pending"

	var verr *ValidationError
	require.ErrorAs(t, l.Validate(), &verr)

	msg, _ := verr.Field("email")
	assert.Equal(t, "Invalid email format", msg)
	msg, _ = verr.Field("phone")
	assert.Equal(t, "Phone number must be exactly 10 digits", msg)
	msg, _ = verr.Field("follow_up_date")
	assert.Equal(t, "Follow-up date must be a date in YYYY-MM-DD format", msg)
	msg, _ = verr.Field("status")
	assert.Contains(t, msg, "Status must be one of: new, contacted")
}

func TestCompanyRequiredForCommercialLeads(t *testing.T) {
	l := validLead()
	l.LeadType = LeadTypeCommercial

	var verr *ValidationError
	require.ErrorAs(t, l.Validate(), &verr)
	msg, ok := verr.Field("company")
	require.True(t, ok)
	assert.Equal(t, "Company is required when lead type is commercial", msg)

	l.Company = "Acme Ltd"
	assert.NoError(t, l.Validate())
}

func TestAddressTypeRequired(t *testing.T) {
	l := validLead()
	l.Addresses = append(l.Addresses, Address{AddressLine1: "2 Side St"})

	var verr *ValidationError
	require.ErrorAs(t, l.Validate(), &verr)
	msg, ok := verr.Field("leadAddresses[1].address_type")
	require.True(t, ok)
	assert.Equal(t, "Address type is required", msg)
}

func TestPatchValidationOnlyChecksSetFields(t *testing.T) {
	assert.NoError(t, (&LeadPatch{}).Validate())
	assert.NoError(t, (&LeadPatch{Status: Ptr(StatusContacted)}).Validate())

	var verr *ValidationError
	require.ErrorAs(t, (&LeadPatch{FirstName: Ptr(""), Phone: Ptr("abc")}).Validate(), &verr)
	_, ok := verr.Field("first_name")
	assert.True(t, ok)
	_, ok = verr.Field("phone")
	assert.True(t, ok)
}

func TestSetDefaultAddressKeepsOneDefault(t *testing.T) {
	l := validLead()
	l.Addresses = append(l.Addresses, Address{AddressType: AddressBilling}, Address{AddressType: AddressWorkplace})

	require.True(t, l.SetDefaultAddress(2))
	assert.Equal(t, AddressWorkplace, l.DefaultAddress().AddressType)

	defaults := 0
	for _, a := range l.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
	assert.False(t, l.SetDefaultAddress(3))
}

func TestCloneSharesNothing(t *testing.T) {
	l := validLead()
	l.Score = Ptr(40)
	l.AssignedTo = Ptr(int64(3))
	l.Tags = []TagRef{"vip"}
	l.InitialNotes = []NoteInput{{Note: "first call"}}
	l.Documents = []Document{{DocumentName: "quote.pdf", FileURL: "https://files/quote.pdf"}}

	c := l.Clone()
	require.Equal(t, l, c)

	*c.Score = 90
	*c.AssignedTo = 7
	c.Tags[0] = "cold"
	c.InitialNotes[0].Note = "edited"
	c.Documents[0].DocumentName = "other.pdf"
	c.Addresses[0].City = "Elsewhere"

	assert.Equal(t, 40, *l.Score)
	assert.Equal(t, int64(3), *l.AssignedTo)
	assert.Equal(t, TagRef("vip"), l.Tags[0])
	assert.Equal(t, "first call", l.InitialNotes[0].Note)
	assert.Equal(t, "quote.pdf", l.Documents[0].DocumentName)
	assert.NotEqual(t, "Elsewhere", l.Addresses[0].City)
}

func TestLeadJSONShape(t *testing.T) {
	l := validLead()
	l.Tags = []TagRef{TagID(4), "vip"}
	b, err := json.Marshal(l)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "id")
	assert.NotContains(t, raw, "is_archived")
	assert.Equal(t, "Grace", raw["first_name"])
	assert.Equal(t, []any{float64(4), "vip"}, raw["tags"])
	assert.Len(t, raw["leadAddresses"], 1)
}

func TestLeadDecodesMixedTagsAndNotes(t *testing.T) {
	var l Lead
	err := json.Unmarshal([]byte(`{
		"id": 9, "first_name": "A", "surname": "B",
		"tags": [1, "warm"],
		"initialNotes": ["called once", {"id": 2, "note": "left voicemail"}],
		"is_archived": true
	}`), &l)
	require.NoError(t, err)

	assert.Equal(t, []TagRef{"1", "warm"}, l.Tags)
	id, ok := l.Tags[0].ID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, []NoteInput{{Note: "called once"}, {ID: 2, Note: "left voicemail"}}, l.InitialNotes)
	assert.True(t, l.IsArchived)
	assert.Equal(t, "A B", l.FullName())
}

func TestPatchFromLeadAndApply(t *testing.T) {
	l := validLead()
	l.ID = 12
	p := PatchFromLead(l)
	assert.Nil(t, p.Source)
	assert.Equal(t, "Grace", *p.FirstName)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"source"`)

	target := Lead{ID: 12, FirstName: "Old"}
	p.Apply(&target)
	assert.Equal(t, "Grace", target.FirstName)
	assert.Equal(t, int64(12), target.ID)
	assert.Equal(t, PriorityHigh, target.Priority)

	assert.True(t, (&LeadPatch{}).Empty())
	assert.False(t, p.Empty())
}

func TestParseEnums(t *testing.T) {
	s, err := ParseLeadStatus("on_hold")
	require.NoError(t, err)
	assert.Equal(t, StatusOnHold, s)

	_, err = ParsePriority("critical")
	assert.EqualError(t, err, `unknown priority "critical"`)

	assert.True(t, SourceTradeShowEvent.Valid())
	assert.False(t, LeadType("industrial").Valid())
	assert.Len(t, AllLeadSources, 8)
}
