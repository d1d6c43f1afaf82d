package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, keyed by the JSON path of the field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rule a payload broke.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for a JSON path, if that field failed.
func (e *ValidationError) Field(path string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == path {
			return f.Message, true
		}
	}
	return "", false
}

var fieldLabels = map[string]string{
	"first_name":     "First name",
	"surname":        "Surname",
	"email":          "Email",
	"phone":          "Phone number",
	"company":        "Company",
	"lead_type":      "Lead type",
	"source":         "Source",
	"status":         "Status",
	"contact_method": "Preferred contact method",
	"priority":       "Priority",
	"follow_up_date": "Follow-up date",
	"account_type":   "Account type",
	"business_size":  "Business size",
	"address_type":   "Address type",
	"note":           "Note",
	"document_name":  "Document name",
	"file_url":       "File URL",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks a lead against the add-lead form rules.
func (l *Lead) Validate() error {
	return validateStruct(l)
}

// Validate checks only the fields a patch sets.
func (p *LeadPatch) Validate() error {
	return validateStruct(p)
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "Lead.leadAddresses[0].address_type"
// becomes "leadAddresses[0].address_type".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "required_if":
		return label + " is required when lead type is commercial"
	case "email":
		return "Invalid email format"
	case "numeric", "len":
		if fe.Field() == "phone" {
			return "Phone number must be exactly 10 digits"
		}
		return fmt.Sprintf("%s must be %s %s", label, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return label + " must be a date in YYYY-MM-DD format"
	default:
		return label + " is invalid"
	}
}
