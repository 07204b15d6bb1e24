package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/inovacc/patientdesk/internal/model"
)

// Backend is the REST collaborator that persists patients.
type Backend interface {
	ListAll(ctx context.Context) ([]model.Patient, error)
	ListPage(ctx context.Context, req PageRequest) (Page, error)
	Get(ctx context.Context, id int64) (model.Patient, error)
	Create(ctx context.Context, p model.Patient) (model.Patient, error)
	Update(ctx context.Context, p model.Patient) (model.Patient, error)
	Delete(ctx context.Context, id int64) error
}

// Sort is a backend sort order, rendered as "field,dir".
type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) String() string {
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}

	return s.Field + "," + dir
}

// ParseSort parses "field" or "field,asc|desc".
func ParseSort(s string) (Sort, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ",")
	field = strings.TrimSpace(field)

	if field == "" {
		return Sort{}, fmt.Errorf("sort field is empty")
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return Sort{Field: field}, nil
	case "desc":
		return Sort{Field: field, Desc: true}, nil
	}

	return Sort{}, fmt.Errorf("invalid sort direction %q", dir)
}

// PageRequest is the query of a server-side page fetch.
type PageRequest struct {
	// Token identifies the fetch so that stale responses can be dropped
	Token  uint64
	Page   int
	Size   int
	Sort   Sort
	Search string
}

// Page is one page returned by the backend.
type Page struct {
	Content    []model.Patient `json:"content"`
	TotalPages int             `json:"totalPages"`
	Number     int             `json:"number"`

	// TotalElements is optional; zero when the backend does not send it
	TotalElements int64 `json:"totalElements,omitempty"`
}
