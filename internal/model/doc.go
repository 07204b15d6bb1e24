// Package model defines the data structures used throughout patientdesk.
//
// # Patient
//
// The [Patient] struct is the record exchanged with the backend:
//
//	type Patient struct {
//	    ID          int64  // Assigned by the backend, zero until saved
//	    FirstName   string
//	    LastName    string
//	    Address     string
//	    City        string
//	    State       string
//	    ZipCode     string
//	    PhoneNumber string
//	    Email       string
//	}
//
// [Field] enumerates the editable attributes so that forms, tables and
// validation can address them generically through [Patient.Get] and
// [Patient.Set].
//
// # Config
//
// The [Config] struct holds the client settings persisted by the store:
// backend URL, paging mode, page size, sort and request timeout.
package model
