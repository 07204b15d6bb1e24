package core

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/inovacc/patientdesk/internal/model"
)

// fakeBackend is an in-memory patient service with the same paging
// semantics as the real one.
type fakeBackend struct {
	records []model.Patient
	nextID  int64

	// error injection, keyed by operation
	fail map[Op]error

	// call tracking
	pageRequests []PageRequest
	updates      []model.Patient
	deletes      []int64
}

func newFakeBackend(n int) *fakeBackend {
	b := &fakeBackend{nextID: 1, fail: map[Op]error{}}

	for i := 0; i < n; i++ {
		_, _ = b.Create(context.Background(), model.Patient{
			FirstName:   fmt.Sprintf("First%02d", i+1),
			LastName:    fmt.Sprintf("Last%02d", i+1),
			Address:     fmt.Sprintf("%d Main St", i+1),
			City:        "Springfield",
			State:       "IL",
			ZipCode:     "62701",
			PhoneNumber: "+15550000000",
			Email:       fmt.Sprintf("p%02d@example.com", i+1),
		})
	}

	return b
}

func (b *fakeBackend) ListAll(context.Context) ([]model.Patient, error) {
	if err := b.fail[OpList]; err != nil {
		return nil, err
	}

	return slices.Clone(b.records), nil
}

func (b *fakeBackend) ListPage(_ context.Context, req PageRequest) (Page, error) {
	b.pageRequests = append(b.pageRequests, req)

	if err := b.fail[OpList]; err != nil {
		return Page{}, err
	}

	matched := FilterPatients(b.records, req.Search)
	SortPatients(matched, req.Sort)

	total := PageCount(len(matched), req.Size)
	start := min(req.Page*req.Size, len(matched))
	end := min(start+req.Size, len(matched))

	return Page{
		Content:       slices.Clone(matched[start:end]),
		TotalPages:    total,
		Number:        req.Page,
		TotalElements: int64(len(matched)),
	}, nil
}

func (b *fakeBackend) Get(_ context.Context, id int64) (model.Patient, error) {
	for _, p := range b.records {
		if p.ID == id {
			return p, nil
		}
	}

	return model.Patient{}, notFound(OpGet, id)
}

func (b *fakeBackend) Create(_ context.Context, p model.Patient) (model.Patient, error) {
	if err := b.fail[OpCreate]; err != nil {
		return model.Patient{}, err
	}

	p.ID = b.nextID
	b.nextID++
	b.records = append(b.records, p)

	return p, nil
}

func (b *fakeBackend) Update(_ context.Context, p model.Patient) (model.Patient, error) {
	b.updates = append(b.updates, p)

	if err := b.fail[OpUpdate]; err != nil {
		return model.Patient{}, err
	}

	for i := range b.records {
		if b.records[i].ID == p.ID {
			b.records[i] = p

			return p, nil
		}
	}

	return model.Patient{}, notFound(OpUpdate, p.ID)
}

func (b *fakeBackend) Delete(_ context.Context, id int64) error {
	b.deletes = append(b.deletes, id)

	if err := b.fail[OpDelete]; err != nil {
		return err
	}

	for i := range b.records {
		if b.records[i].ID == id {
			b.records = slices.Delete(b.records, i, i+1)

			return nil
		}
	}

	return notFound(OpDelete, id)
}

func notFound(op Op, id int64) error {
	return &RequestError{
		Op:      op,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Patient not found with id: %d", id),
	}
}
