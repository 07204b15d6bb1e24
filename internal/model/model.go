package model

import (
	"strconv"
	"strings"
)

// Field names a Patient attribute. The value is the attribute's JSON name.
type Field string

const (
	FieldFirstName   Field = "firstName"
	FieldLastName    Field = "lastName"
	FieldAddress     Field = "address"
	FieldCity        Field = "city"
	FieldState       Field = "state"
	FieldZipCode     Field = "zipCode"
	FieldPhoneNumber Field = "phoneNumber"
	FieldEmail       Field = "email"
)

// Fields lists the editable attributes in display order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldZipCode,
	FieldPhoneNumber,
	FieldEmail,
}

var fieldLabels = map[Field]string{
	FieldFirstName:   "First Name",
	FieldLastName:    "Last Name",
	FieldAddress:     "Address",
	FieldCity:        "City",
	FieldState:       "State",
	FieldZipCode:     "Zip Code",
	FieldPhoneNumber: "Phone",
	FieldEmail:       "Email",
}

// Label returns the human-readable column name for the field.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}

	return string(f)
}

// ParseField maps a JSON attribute name (case-insensitive) to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}

	return "", false
}

// Patient is a patient contact record as exchanged with the backend.
type Patient struct {
	// ID is assigned by the backend on first save; zero means unsaved
	ID int64 `json:"id,omitempty"`

	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

// IsNew reports whether the record has not been persisted yet.
func (p Patient) IsNew() bool {
	return p.ID == 0
}

// Get returns the value of the given attribute.
func (p Patient) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldAddress:
		return p.Address
	case FieldCity:
		return p.City
	case FieldState:
		return p.State
	case FieldZipCode:
		return p.ZipCode
	case FieldPhoneNumber:
		return p.PhoneNumber
	case FieldEmail:
		return p.Email
	}

	return ""
}

// Set assigns the given attribute. Unknown fields are ignored.
func (p *Patient) Set(f Field, value string) {
	switch f {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldAddress:
		p.Address = value
	case FieldCity:
		p.City = value
	case FieldState:
		p.State = value
	case FieldZipCode:
		p.ZipCode = value
	case FieldPhoneNumber:
		p.PhoneNumber = value
	case FieldEmail:
		p.Email = value
	}
}

// Values returns the id (empty when unsaved) followed by every attribute
// in display order. Search matches against these strings.
func (p Patient) Values() []string {
	out := make([]string, 0, len(Fields)+1)

	if p.ID != 0 {
		out = append(out, strconv.FormatInt(p.ID, 10))
	} else {
		out = append(out, "")
	}

	for _, f := range Fields {
		out = append(out, p.Get(f))
	}

	return out
}

// FullName joins first and last name.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
