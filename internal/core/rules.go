package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inovacc/patientdesk/internal/model"
)

var (
	zipPattern   = regexp.MustCompile(`^\d+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RuleSet is a named set of field validation rules.
type RuleSet struct {
	Name string

	// RequireZip makes zipCode mandatory. It must be numeric either way.
	RequireZip bool

	// RequirePhone makes phoneNumber mandatory.
	RequirePhone bool

	// Phone is the pattern a non-empty phone number must match.
	Phone *regexp.Regexp
}

var (
	// LenientRules is used by the record form: zip and phone are optional.
	LenientRules = RuleSet{
		Name:  "lenient",
		Phone: regexp.MustCompile(`^[0-9+\-() ]{6,20}$`),
	}

	// StrictRules is used by inline row edit: zip and phone are required and
	// phone is digits with an optional leading plus.
	StrictRules = RuleSet{
		Name:         "strict",
		RequireZip:   true,
		RequirePhone: true,
		Phone:        regexp.MustCompile(`^\+?\d{7,15}$`),
	}
)

// RulesByName returns the rule set registered under name.
func RulesByName(name string) (RuleSet, error) {
	switch strings.ToLower(name) {
	case LenientRules.Name:
		return LenientRules, nil
	case StrictRules.Name:
		return StrictRules, nil
	}

	return RuleSet{}, fmt.Errorf("unknown rule set %q (want %q or %q)", name, LenientRules.Name, StrictRules.Name)
}

// ValidateField returns the message for one field, or "" when it is valid.
func (r RuleSet) ValidateField(f model.Field, value string) string {
	blank := strings.TrimSpace(value) == ""

	switch f {
	case model.FieldFirstName, model.FieldLastName, model.FieldAddress, model.FieldCity, model.FieldState:
		if blank {
			return required(f)
		}

	case model.FieldZipCode:
		if blank {
			if r.RequireZip {
				return required(f)
			}

			return ""
		}

		if !zipPattern.MatchString(value) {
			return "Zip Code must be numeric"
		}

	case model.FieldPhoneNumber:
		if blank {
			if r.RequirePhone {
				return required(f)
			}

			return ""
		}

		if r.Phone != nil && !r.Phone.MatchString(value) {
			return "Invalid phone number"
		}

	case model.FieldEmail:
		if blank {
			return required(f)
		}

		if !emailPattern.MatchString(value) {
			return "Invalid email format"
		}
	}

	return ""
}

// Validate checks every field of p.
func (r RuleSet) Validate(p model.Patient) FieldErrors {
	errs := FieldErrors{}

	for _, f := range model.Fields {
		if msg := r.ValidateField(f, p.Get(f)); msg != "" {
			errs[f] = msg
		}
	}

	return errs
}

func required(f model.Field) string {
	return f.Label() + " is required"
}
