package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
	"github.com/inovacc/patientdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// patientService is an in-memory patient REST backend.
type patientService struct {
	mu       sync.Mutex
	patients []model.Patient
	nextID   int64
}

func newPatientService(t *testing.T) (*patientService, *httptest.Server) {
	t.Helper()

	s := &patientService{
		patients: []model.Patient{
			{ID: 1, FirstName: "Ada", LastName: "Lovelace", Address: "12 Analytical Way", City: "London", State: "LD", ZipCode: "10001", PhoneNumber: "+441234567", Email: "ada@example.com"},
			{ID: 2, FirstName: "Grace", LastName: "Hopper", Address: "1 Navy Rd", City: "Arlington", State: "VA", ZipCode: "22201", PhoneNumber: "+17035550100", Email: "grace@example.com"},
			{ID: 3, FirstName: "Alan", LastName: "Turing", Address: "3 Bletchley Park", City: "Milton Keynes", State: "BK", ZipCode: "90800", PhoneNumber: "+441908640404", Email: "alan@example.com"},
		},
		nextID: 4,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /patient", s.list)
	mux.HandleFunc("POST /patient", s.create)
	mux.HandleFunc("GET /patient/{id}", s.get)
	mux.HandleFunc("PUT /patient/{id}", s.update)
	mux.HandleFunc("DELETE /patient/{id}", s.remove)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return s, srv
}

func (s *patientService) snapshot() []model.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.patients)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *patientService) notFound(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Patient not found with id: " + id})
}

func (s *patientService) index(id string) int {
	n, _ := strconv.ParseInt(id, 10, 64)

	return slices.IndexFunc(s.patients, func(p model.Patient) bool { return p.ID == n })
}

func (s *patientService) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	if !q.Has("page") {
		writeJSON(w, http.StatusOK, s.patients)

		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	rows := core.FilterPatients(s.patients, q.Get("search"))
	start := min(page*size, len(rows))
	end := min(start+size, len(rows))

	writeJSON(w, http.StatusOK, core.Page{
		Content:       rows[start:end],
		TotalPages:    core.PageCount(len(rows), size),
		Number:        page,
		TotalElements: int64(len(rows)),
	})
}

func (s *patientService) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(r.PathValue("id"))
	if i < 0 {
		s.notFound(w, r.PathValue("id"))

		return
	}

	writeJSON(w, http.StatusOK, s.patients[i])
}

func (s *patientService) create(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p model.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed patient"})

		return
	}

	p.ID = s.nextID
	s.nextID++
	s.patients = append(s.patients, p)

	writeJSON(w, http.StatusCreated, p)
}

func (s *patientService) update(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(r.PathValue("id"))
	if i < 0 {
		s.notFound(w, r.PathValue("id"))

		return
	}

	var p model.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed patient"})

		return
	}

	p.ID = s.patients[i].ID
	s.patients[i] = p

	writeJSON(w, http.StatusOK, p)
}

func (s *patientService) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(r.PathValue("id"))
	if i < 0 {
		s.notFound(w, r.PathValue("id"))

		return
	}

	s.patients = slices.Delete(s.patients, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

type result struct {
	out, err string
}

// run executes the root command with a fresh set of command flags. The
// settings store is replaced by openDB, or by an unavailable one when nil.
func run(t *testing.T, openDB func() (store.Store, error), stdin string, args ...string) (result, error) {
	t.Helper()

	listSearch, listPage = "", 1
	editFields, editRules, addRules = nil, core.LenientRules.Name, core.LenientRules.Name
	exportSearch, exportOut = "", "patients.xlsx"
	deleteYes, showConfig, resetConfig = false, false, false

	for _, v := range addValues {
		*v = ""
	}

	if openDB == nil {
		openDB = func() (store.Store, error) { return nil, errors.New("store disabled in tests") }
	}

	prev := openStore
	openStore = openDB

	t.Cleanup(func() { openStore = prev })

	var out, errOut bytes.Buffer

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.ExecuteContext(context.Background())

	return result{out: out.String(), err: errOut.String()}, err
}

func TestList_ClientPaging(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "list", "--base-url", srv.URL, "--paging", "client", "--page-size", "2", "--sort", "id,asc")
	require.NoError(t, err)

	assert.Contains(t, res.out, "Lovelace")
	assert.Contains(t, res.out, "Hopper")
	assert.NotContains(t, res.out, "Turing")
	assert.Contains(t, res.out, "Page 1 of 2 (3 patients)")
	assert.Contains(t, res.err, "settings store unavailable")
}

func TestList_PageIsClamped(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "list", "--base-url", srv.URL, "--paging", "client", "--page-size", "2", "--sort", "id,asc", "--page", "9")
	require.NoError(t, err)

	assert.Contains(t, res.out, "Turing")
	assert.Contains(t, res.out, "Page 2 of 2")
}

func TestList_ServerSearch(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "list", "--base-url", srv.URL, "--paging", "server", "--page-size", "10", "--sort", "id,asc", "--search", "HOPPER")
	require.NoError(t, err)

	assert.Contains(t, res.out, "Grace")
	assert.NotContains(t, res.out, "Lovelace")
	assert.Contains(t, res.out, `Page 1 of 1, search "HOPPER"`)
}

func TestList_NoMatches(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "list", "--base-url", srv.URL, "--paging", "client", "--page-size", "10", "--sort", "id,asc", "--search", "nobody")
	require.NoError(t, err)

	assert.Contains(t, res.out, `No patients match "nobody".`)
}

func TestRoot_WithoutTerminalPrintsList(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "--base-url", srv.URL, "--paging", "client", "--page-size", "10", "--sort", "id,asc")
	require.NoError(t, err)

	assert.Contains(t, res.out, "Turing")
	assert.Contains(t, res.out, "Page 1 of 1 (3 patients)")
}

func TestShow(t *testing.T) {
	_, srv := newPatientService(t)

	res, err := run(t, nil, "", "show", "2", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, res.out, "Patient #2")
	assert.Contains(t, res.out, "grace@example.com")

	_, err = run(t, nil, "", "show", "42", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "Patient not found with id: 42", err.Error())
}

func TestAdd(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "", "add", "--base-url", srv.URL,
		"--first-name", "Katherine", "--last-name", "Johnson",
		"--address", "1 Langley Blvd", "--city", "Hampton", "--state", "VA",
		"--zip-code", "23666", "--email", "kj@example.com",
	)
	require.NoError(t, err)

	assert.Equal(t, "Patient #4 created\n", res.out)

	created := svc.snapshot()[3]
	assert.Equal(t, "Johnson", created.LastName)
	assert.Empty(t, created.PhoneNumber)
}

func TestAdd_InvalidNeverReachesBackend(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "", "add", "--base-url", srv.URL,
		"--first-name", "Katherine", "--last-name", "Johnson",
		"--address", "1 Langley Blvd", "--city", "Hampton", "--state", "VA",
		"--zip-code", "23666", "--email", "not-an-email",
	)
	require.Error(t, err)

	assert.Equal(t, "Please fix the highlighted fields", err.Error())
	assert.Contains(t, res.err, "Email: Invalid email format")
	assert.Len(t, svc.snapshot(), 3)
}

func TestAdd_StrictRulesRequirePhone(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "", "add", "--base-url", srv.URL, "--rules", "strict",
		"--first-name", "Katherine", "--last-name", "Johnson",
		"--address", "1 Langley Blvd", "--city", "Hampton", "--state", "VA",
		"--zip-code", "23666", "--email", "kj@example.com",
	)
	require.Error(t, err)

	assert.Contains(t, res.err, "Phone: Phone is required")
	assert.Len(t, svc.snapshot(), 3)
}

func TestEdit(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "", "edit", "3", "--base-url", srv.URL, "--field", "city=Wilmslow", "--field", "zipCode=62565")
	require.NoError(t, err)
	assert.Equal(t, "Patient #3 updated\n", res.out)

	updated := svc.snapshot()[2]
	assert.Equal(t, "Wilmslow", updated.City)
	assert.Equal(t, "62565", updated.ZipCode)
	assert.Equal(t, "Turing", updated.LastName)
}

func TestEdit_Errors(t *testing.T) {
	svc, srv := newPatientService(t)

	_, err := run(t, nil, "", "edit", "3", "--base-url", srv.URL)
	assert.ErrorContains(t, err, "nothing to change")

	_, err = run(t, nil, "", "edit", "3", "--base-url", srv.URL, "--field", "zipCode=ABC")
	assert.EqualError(t, err, "Please fix the highlighted fields")

	_, err = run(t, nil, "", "edit", "9", "--base-url", srv.URL, "--field", "city=Nowhere")
	assert.EqualError(t, err, "Patient not found with id: 9")

	assert.Equal(t, "90800", svc.snapshot()[2].ZipCode)
}

func TestDelete_AsksFirst(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "n\n", "delete", "1", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, res.out, "Delete patient #1 (Ada Lovelace)? [y/N]: ")
	assert.Contains(t, res.out, "Cancelled.")
	assert.Len(t, svc.snapshot(), 3)

	res, err = run(t, nil, "y\n", "delete", "1", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, res.out, "Patient #1 deleted")
	assert.Len(t, svc.snapshot(), 2)
}

func TestDelete_Yes(t *testing.T) {
	svc, srv := newPatientService(t)

	res, err := run(t, nil, "", "delete", "2", "-y", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Patient #2 deleted\n", res.out)
	assert.Len(t, svc.snapshot(), 2)

	_, err = run(t, nil, "", "delete", "2", "-y", "--base-url", srv.URL)
	assert.EqualError(t, err, "Patient not found with id: 2")
}

func TestExport(t *testing.T) {
	_, srv := newPatientService(t)

	path := filepath.Join(t.TempDir(), "patients.xlsx")

	res, err := run(t, nil, "", "export", "--base-url", srv.URL, "--sort", "lastName,desc", "--out", path, "--search", "@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Exported 3 patients to "+path+"\n", res.out)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Patients")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, []string{"Turing", "Lovelace", "Hopper"}, []string{rows[1][2], rows[2][2], rows[3][2]})
}

func TestConfigure_ShowAndReset(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.SaveConfig(&model.Config{
		BaseURL:    "http://records.internal:9000",
		PagingMode: model.PagingClient,
		PageSize:   25,
		SortField:  "lastName",
		SortDir:    "desc",
		Timeout:    5e9,
	}))

	openDB := func() (store.Store, error) { return db, nil }

	res, err := run(t, openDB, "", "configure", "--show")
	require.NoError(t, err)
	assert.Contains(t, res.out, "http://records.internal:9000")
	assert.Contains(t, res.out, "lastName,desc")

	res, err = run(t, openDB, "", "configure", "--reset")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Configuration reset to defaults.")

	cfg, err := db.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), *cfg)
}
