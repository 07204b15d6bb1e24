package core

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/inovacc/patientdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadedClient returns a client-mode controller holding n generated records.
func loadedClient(t *testing.T, n, pageSize int) *ListController {
	t.Helper()

	l := NewListController(ListOptions{Mode: model.PagingClient, PageSize: pageSize})

	effects := l.Update(Reload{})
	require.Len(t, effects, 1)

	fetch, ok := effects[0].(FetchAll)
	require.True(t, ok, "got %T", effects[0])

	records, err := newFakeBackend(n).ListAll(t.Context())
	require.NoError(t, err)
	require.Empty(t, l.Update(Loaded{Token: fetch.Token, Records: records}))

	return l
}

func assertPageBounds(t *testing.T, l *ListController) {
	t.Helper()

	assert.GreaterOrEqual(t, l.PageIndex(), 0)
	assert.LessOrEqual(t, l.PageIndex(), max(l.PageCount()-1, 0))
}

func ids(ps []model.Patient) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}

	return out
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 5, 0},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{12, 5, 3},
		{3, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.n, tt.size), "PageCount(%d, %d)", tt.n, tt.size)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 0, ClampPage(-1, 3))
	assert.Equal(t, 2, ClampPage(7, 3))
	assert.Equal(t, 1, ClampPage(1, 3))
	assert.Equal(t, 0, ClampPage(4, 0))
}

func TestFilterPatients(t *testing.T) {
	records := []model.Patient{
		{ID: 1, FirstName: "Alice", City: "Boston"},
		{ID: 2, FirstName: "Bob", Email: "BOB@Example.com"},
		{ID: 21, FirstName: "Carol", City: "Austin"},
	}

	assert.Equal(t, []int64{1, 2, 21}, ids(FilterPatients(records, "")))
	assert.Equal(t, []int64{1}, ids(FilterPatients(records, "bost")))
	assert.Equal(t, []int64{2}, ids(FilterPatients(records, "example.COM")))
	assert.Equal(t, []int64{1, 21}, ids(FilterPatients(records, "1")), "id participates in search")
	assert.Empty(t, FilterPatients(records, "zzz"))
}

func TestListController_TwelveRecordsFilteredToTwo(t *testing.T) {
	l := loadedClient(t, 12, 5)

	assert.Equal(t, 3, l.PageCount())
	assert.Len(t, l.Visible(), 5)

	l.Update(GoToPage{Index: 2})
	require.Equal(t, 2, l.PageIndex())
	assert.Len(t, l.Visible(), 2)

	// "2 Main St" and "12 Main St" are the only addresses containing "2 main".
	l.Update(SetFilter{Term: "2 MAIN"})

	visible := l.Visible()
	assert.Equal(t, 1, l.PageCount())
	assert.Equal(t, 0, l.PageIndex(), "filter change resets to the first page")
	assert.Equal(t, []int64{2, 12}, ids(visible))
	assert.Equal(t, 2, l.FilteredCount())

	l.Update(SetFilter{Term: ""})
	assert.Equal(t, 3, l.PageCount())
	assert.Equal(t, 12, l.FilteredCount())
}

func TestListController_VisibleRowsContainTerm(t *testing.T) {
	l := loadedClient(t, 40, 7)

	for _, term := range []string{"", "first", "P3", "main st", "x", "@EXAMPLE", "3"} {
		l.Update(SetFilter{Term: term})

		for page := 0; page < max(l.PageCount(), 1); page++ {
			l.Update(GoToPage{Index: page})

			for _, p := range l.Visible() {
				found := false

				for _, v := range p.Values() {
					if strings.Contains(strings.ToLower(v), strings.ToLower(term)) {
						found = true

						break
					}
				}

				assert.True(t, found, "record %d does not contain %q", p.ID, term)
			}
		}
	}
}

func TestListController_PageBoundsUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	terms := []string{"", "first", "2 main", "zzz", "last0", "p1"}

	for _, mode := range []model.PagingMode{model.PagingClient, model.PagingServer} {
		t.Run(string(mode), func(t *testing.T) {
			backend := newFakeBackend(23)
			c := NewCoordinator(backend, Options{Mode: mode, PageSize: 4})
			require.NoError(t, c.Mount(t.Context()))

			ctx := t.Context()

			for i := 0; i < 300; i++ {
				switch rng.Intn(6) {
				case 0:
					require.NoError(t, c.Dispatch(ctx, SetFilter{Term: terms[rng.Intn(len(terms))]}))
				case 1:
					require.NoError(t, c.Dispatch(ctx, GoToPage{Index: rng.Intn(10) - 3}))
				case 2:
					require.NoError(t, c.Dispatch(ctx, NextPage{}))
				case 3:
					require.NoError(t, c.Dispatch(ctx, PrevPage{}))
				case 4:
					if v := c.List().Visible(); len(v) > 0 {
						require.NoError(t, c.Dispatch(ctx, RequestDelete{ID: v[rng.Intn(len(v))].ID}))
						require.NoError(t, c.Dispatch(ctx, ConfirmDelete{Yes: rng.Intn(2) == 0}))
					}
				case 5:
					p := validPatient()
					require.NoError(t, c.Dispatch(ctx, LoadRecord{Patient: &p}))
					require.NoError(t, c.Dispatch(ctx, SubmitForm{}))
				}

				assertPageBounds(t, c.List())
			}
		})
	}
}

func TestListController_DeleteOnlyRowOnLastPage(t *testing.T) {
	for _, mode := range []model.PagingMode{model.PagingClient, model.PagingServer} {
		t.Run(string(mode), func(t *testing.T) {
			backend := newFakeBackend(11)
			c := NewCoordinator(backend, Options{Mode: mode, PageSize: 5})
			require.NoError(t, c.Mount(t.Context()))

			l := c.List()
			require.Equal(t, 3, l.PageCount())

			require.NoError(t, c.Dispatch(t.Context(), GoToPage{Index: 2}))
			require.Equal(t, 2, l.PageIndex())
			require.Len(t, l.Visible(), 1)

			only := l.Visible()[0].ID
			require.NoError(t, c.Dispatch(t.Context(), RequestDelete{ID: only}))
			require.NoError(t, c.Dispatch(t.Context(), ConfirmDelete{Yes: true}))

			assert.Equal(t, []int64{only}, backend.deletes)
			assert.Equal(t, 2, l.PageCount())
			assert.Equal(t, 1, l.PageIndex())
			assert.Len(t, l.Visible(), 5)

			if mode == model.PagingServer {
				last := backend.pageRequests[len(backend.pageRequests)-1]
				assert.Equal(t, 1, last.Page, "never request a page past the new end")
			}
		})
	}
}

func TestListController_DeleteNeedsConfirmation(t *testing.T) {
	l := loadedClient(t, 3, 5)
	id := l.Visible()[1].ID

	assert.Empty(t, l.Update(RequestDelete{ID: id}))

	pending, ok := l.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, id, pending)

	assert.Empty(t, l.Update(ConfirmDelete{Yes: false}))

	_, ok = l.PendingDelete()
	assert.False(t, ok)

	assert.Empty(t, l.Update(ConfirmDelete{Yes: true}), "no gate open, nothing to confirm")

	l.Update(RequestDelete{ID: id})
	effects := l.Update(ConfirmDelete{Yes: true})
	require.Len(t, effects, 1)
	assert.Equal(t, DeleteRecord{ID: id}, effects[0])

	assert.Empty(t, l.Update(RequestDelete{ID: 999}), "unknown rows cannot be deleted")

	_, ok = l.PendingDelete()
	assert.False(t, ok)
}

func TestListController_CancelEditLeavesRecordUntouched(t *testing.T) {
	l := loadedClient(t, 6, 5)
	before := l.Visible()
	target := before[2]

	l.Update(BeginEdit{ID: target.ID})
	assert.Equal(t, EditingRow, l.State())

	l.Update(EditField{Field: model.FieldFirstName, Value: "Changed"})
	l.Update(EditField{Field: model.FieldEmail, Value: "nope"})

	scratch, ok := l.Scratch()
	require.True(t, ok)
	assert.Equal(t, "Changed", scratch.FirstName)
	assert.Equal(t, before, l.Visible(), "rows unaffected by the scratch copy")

	l.Update(CancelEdit{})
	assert.Equal(t, Browsing, l.State())
	assert.Equal(t, before, l.Visible())

	_, editing := l.EditTarget()
	assert.False(t, editing)
}

func TestListController_SaveEditInvalidStays(t *testing.T) {
	l := loadedClient(t, 3, 5)
	id := l.Visible()[0].ID

	l.Update(BeginEdit{ID: id})
	l.Update(EditField{Field: model.FieldPhoneNumber, Value: "(555) 123"})

	assert.Empty(t, l.Update(SaveEdit{}))
	assert.Equal(t, EditingRow, l.State())
	assert.Equal(t, "Invalid phone number", l.EditErrors()[model.FieldPhoneNumber])

	l.Update(EditField{Field: model.FieldPhoneNumber, Value: "+15551234567"})
	assert.NotContains(t, l.EditErrors(), model.FieldPhoneNumber, "flagged field re-checked while typing")

	effects := l.Update(SaveEdit{})
	require.Len(t, effects, 1)

	upd, ok := effects[0].(UpdateRecord)
	require.True(t, ok)
	assert.Equal(t, id, upd.Patient.ID)
	assert.Equal(t, "+15551234567", upd.Patient.PhoneNumber)
	assert.True(t, l.Saving())

	assert.Empty(t, l.Update(SaveEdit{}), "no double submit while saving")
}

func TestListController_EditClearedWhenRowLeavesView(t *testing.T) {
	l := loadedClient(t, 12, 5)
	id := l.Visible()[0].ID

	l.Update(BeginEdit{ID: id})
	l.Update(GoToPage{Index: 1})
	assert.Equal(t, Browsing, l.State())

	l.Update(GoToPage{Index: 0})
	l.Update(BeginEdit{ID: id})
	l.Update(SetFilter{Term: "Last12"})
	assert.Equal(t, Browsing, l.State())

	l.Update(SetFilter{Term: ""})
	l.Update(BeginEdit{ID: id})
	require.Equal(t, EditingRow, l.State())

	fetch, ok := l.Update(Reload{})[0].(FetchAll)
	require.True(t, ok)

	records, err := newFakeBackend(12).ListAll(t.Context())
	require.NoError(t, err)

	l.Update(Loaded{Token: fetch.Token, Records: records[1:]})
	assert.Equal(t, Browsing, l.State(), "record removed elsewhere")
}

func TestListController_BeginEditSwitchesRows(t *testing.T) {
	l := loadedClient(t, 3, 5)
	rows := l.Visible()

	l.Update(BeginEdit{ID: rows[0].ID})
	l.Update(EditField{Field: model.FieldCity, Value: "Nowhere"})
	l.Update(BeginEdit{ID: rows[1].ID})

	scratch, _ := l.Scratch()
	assert.Equal(t, rows[1], scratch)

	target, _ := l.EditTarget()
	assert.Equal(t, rows[1].ID, target)
}

func TestListController_StaleResponsesDropped(t *testing.T) {
	l := NewListController(ListOptions{Mode: model.PagingServer, PageSize: 5})

	first, ok := l.Update(SetFilter{Term: "a"})[0].(FetchPage)
	require.True(t, ok)

	second, ok := l.Update(SetFilter{Term: "ab"})[0].(FetchPage)
	require.True(t, ok)

	l.Update(PageLoaded{Token: second.Request.Token, Page: Page{
		Content:    []model.Patient{{ID: 2}},
		TotalPages: 1,
	}})
	l.Update(PageLoaded{Token: first.Request.Token, Page: Page{
		Content:    []model.Patient{{ID: 1}, {ID: 3}},
		TotalPages: 4,
	}})

	assert.Equal(t, []int64{2}, ids(l.Visible()))
	assert.Equal(t, 1, l.PageCount())
	assert.False(t, l.Loading())
}

func TestListController_ServerForwardsQuery(t *testing.T) {
	l := NewListController(ListOptions{
		Mode:     model.PagingServer,
		PageSize: 20,
		Sort:     Sort{Field: "lastName", Desc: true},
	})

	effects := l.Update(SetFilter{Term: "smith"})
	require.Len(t, effects, 1)

	req := effects[0].(FetchPage).Request
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, 20, req.Size)
	assert.Equal(t, "lastName,desc", req.Sort.String())
	assert.Equal(t, "smith", req.Search)
	assert.True(t, l.Loading())

	l.Update(PageLoaded{Token: req.Token, Page: Page{
		Content:    []model.Patient{{ID: 1}},
		TotalPages: 3,
	}})

	next := l.Update(NextPage{})[0].(FetchPage).Request
	assert.Equal(t, 1, next.Page)
	assert.Equal(t, 0, l.PageIndex(), "index adopted from the response")

	sorted := l.Update(SetSort{Sort: Sort{Field: "city"}})[0].(FetchPage).Request
	assert.Equal(t, 0, sorted.Page)
	assert.Equal(t, "city,asc", sorted.Sort.String())
}

func TestListController_ServerEmptyTailSelfCorrects(t *testing.T) {
	l := NewListController(ListOptions{Mode: model.PagingServer, PageSize: 5})

	req := l.Update(Reload{})[0].(FetchPage).Request

	effects := l.Update(PageLoaded{Token: req.Token, Page: Page{TotalPages: 2, Number: 4}})
	require.Len(t, effects, 1)

	retry := effects[0].(FetchPage).Request
	assert.Equal(t, 1, retry.Page)

	// a backend that keeps answering past the end is adopted, not retried forever
	effects = l.Update(PageLoaded{Token: retry.Token, Page: Page{TotalPages: 2, Number: 4}})
	assert.Empty(t, effects)
	assert.Equal(t, 1, l.PageIndex())
}

func TestListController_FailedListStopsLoading(t *testing.T) {
	l := loadedClient(t, 6, 5)
	before := l.Visible()

	fetch, ok := l.Update(Reload{})[0].(FetchAll)
	require.True(t, ok)
	require.True(t, l.Loading())

	l.Update(Failed{Op: OpList, Token: fetch.Token, Err: assert.AnError})
	assert.False(t, l.Loading())
	assert.Equal(t, before, l.Visible())
}

func TestListController_SupersededFailureIgnored(t *testing.T) {
	l := NewListController(ListOptions{Mode: model.PagingServer, PageSize: 5})

	first, ok := l.Update(SetFilter{Term: "a"})[0].(FetchPage)
	require.True(t, ok)

	second, ok := l.Update(SetFilter{Term: "ab"})[0].(FetchPage)
	require.True(t, ok)

	assert.Nil(t, l.Update(Failed{Op: OpList, Token: first.Request.Token, Err: assert.AnError}))
	assert.True(t, l.Loading(), "the newer fetch is still in flight")

	l.Update(PageLoaded{Token: second.Request.Token, Page: Page{
		Content:    []model.Patient{{ID: 2}},
		TotalPages: 1,
	}})
	assert.False(t, l.Loading())
	assert.Equal(t, []int64{2}, ids(l.Visible()))
}

func TestListController_ServerPagingStepsFromRequestedPage(t *testing.T) {
	l := NewListController(ListOptions{Mode: model.PagingServer, PageSize: 5})

	req := l.Update(Reload{})[0].(FetchPage).Request
	l.Update(PageLoaded{Token: req.Token, Page: Page{
		Content:    []model.Patient{{ID: 1}},
		TotalPages: 3,
	}})

	first := l.Update(NextPage{})[0].(FetchPage).Request
	second := l.Update(NextPage{})[0].(FetchPage).Request
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 2, second.Page)

	assert.Empty(t, l.Update(NextPage{}), "already heading to the last page")

	back := l.Update(PrevPage{})[0].(FetchPage).Request
	assert.Equal(t, 1, back.Page)

	l.Update(PageLoaded{Token: back.Token, Page: Page{
		Content:    []model.Patient{{ID: 6}},
		Number:     1,
		TotalPages: 3,
	}})
	assert.Equal(t, 1, l.PageIndex())
	assert.Equal(t, 0, l.Update(PrevPage{})[0].(FetchPage).Request.Page)
}

func TestListController_ClientSort(t *testing.T) {
	l := NewListController(ListOptions{Mode: model.PagingClient, PageSize: 10})
	fetch := l.Update(Reload{})[0].(FetchAll)
	l.Update(Loaded{Token: fetch.Token, Records: []model.Patient{
		{ID: 3, LastName: "b"},
		{ID: 1, LastName: "C"},
		{ID: 2, LastName: "a"},
	}})

	l.Update(SetSort{Sort: Sort{Field: "lastName"}})

	var names []string
	for _, p := range l.Visible() {
		names = append(names, p.LastName)
	}

	assert.Equal(t, []string{"a", "b", "C"}, names)

	l.Update(SetSort{Sort: Sort{Field: "id", Desc: true}})
	assert.Equal(t, []int64{3, 2, 1}, ids(l.Visible()))
}

func TestListController_ViewRecord(t *testing.T) {
	l := loadedClient(t, 3, 5)
	id := l.Visible()[1].ID

	l.Update(ViewRecord{ID: id})
	require.NotNil(t, l.Viewing())
	assert.Equal(t, id, l.Viewing().ID)

	l.Update(CloseView{})
	assert.Nil(t, l.Viewing())

	l.Update(ViewRecord{ID: 404})
	assert.Nil(t, l.Viewing())
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("lastName,DESC")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: "lastName", Desc: true}, s)

	s, err = ParseSort("id")
	require.NoError(t, err)
	assert.Equal(t, "id,asc", s.String())

	_, err = ParseSort(",asc")
	require.Error(t, err)

	_, err = ParseSort("id,sideways")
	require.Error(t, err)
}
