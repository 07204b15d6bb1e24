package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/inovacc/patientdesk/internal/model"
)

// ListState is the inline-edit state of the list.
type ListState int

const (
	Browsing ListState = iota
	EditingRow
)

func (s ListState) String() string {
	if s == EditingRow {
		return "editing"
	}

	return "browsing"
}

// ListOptions configures a ListController.
type ListOptions struct {
	Mode     model.PagingMode
	PageSize int
	Sort     Sort

	// Rules validates inline edits; zero value means StrictRules
	Rules RuleSet
}

// ListController owns the visible page of patients: filtering, paging,
// inline edit and the delete confirmation gate.
//
// All methods must be called from a single goroutine.
type ListController struct {
	mode     model.PagingMode
	pageSize int
	sort     Sort
	rules    RuleSet

	source   []model.Patient
	filtered []model.Patient
	visible  []model.Patient

	filterTerm string
	pageIndex  int
	pageCount  int

	state      ListState
	editID     int64
	scratch    model.Patient
	editErrors FieldErrors
	saving     bool

	pendingDelete int64
	viewing       *model.Patient

	token     uint64
	loading   bool
	corrected bool

	// requested is the page of the last server fetch
	requested int
}

// NewListController returns an empty controller in Browsing state.
func NewListController(opts ListOptions) *ListController {
	if !opts.Mode.Valid() {
		opts.Mode = model.PagingClient
	}

	if opts.PageSize <= 0 {
		opts.PageSize = model.DefaultConfig().PageSize
	}

	if opts.Rules.Name == "" {
		opts.Rules = StrictRules
	}

	return &ListController{
		mode:     opts.Mode,
		pageSize: opts.PageSize,
		sort:     opts.Sort,
		rules:    opts.Rules,
	}
}

func (l *ListController) Mode() model.PagingMode { return l.mode }
func (l *ListController) State() ListState       { return l.state }
func (l *ListController) FilterTerm() string     { return l.filterTerm }
func (l *ListController) PageIndex() int         { return l.pageIndex }
func (l *ListController) PageCount() int         { return l.pageCount }
func (l *ListController) PageSize() int          { return l.pageSize }
func (l *ListController) Sort() Sort             { return l.sort }
func (l *ListController) Loading() bool          { return l.loading }
func (l *ListController) Saving() bool           { return l.saving }

// Visible returns a copy of the rows on the current page.
func (l *ListController) Visible() []model.Patient {
	return slices.Clone(l.visible)
}

// FilteredCount is the number of rows across all pages. In server mode only
// the current page is known.
func (l *ListController) FilteredCount() int {
	if l.mode == model.PagingServer {
		return len(l.visible)
	}

	return len(l.filtered)
}

// EditTarget returns the id under inline edit.
func (l *ListController) EditTarget() (int64, bool) {
	return l.editID, l.state == EditingRow
}

// Scratch returns the working copy of the row under edit.
func (l *ListController) Scratch() (model.Patient, bool) {
	return l.scratch, l.state == EditingRow
}

func (l *ListController) EditErrors() FieldErrors { return l.editErrors.clone() }

// PendingDelete returns the id awaiting delete confirmation.
func (l *ListController) PendingDelete() (int64, bool) {
	return l.pendingDelete, l.pendingDelete != 0
}

// Viewing returns the record open in the detail view, if any.
func (l *ListController) Viewing() *model.Patient {
	if l.viewing == nil {
		return nil
	}

	p := *l.viewing

	return &p
}

// Find returns the visible row with the given id.
func (l *ListController) Find(id int64) (model.Patient, bool) {
	for _, p := range l.visible {
		if p.ID == id {
			return p, true
		}
	}

	return model.Patient{}, false
}

// Update applies one message and returns the effects to run.
func (l *ListController) Update(msg Msg) []Effect {
	switch m := msg.(type) {
	case Reload:
		return l.fetch(l.pageIndex)

	case SetFilter:
		return l.setFilter(m.Term)

	case GoToPage:
		return l.goToPage(m.Index)

	case NextPage:
		from := l.currentPage()
		if from+1 >= l.pageCount {
			return nil
		}

		return l.goToPage(from + 1)

	case PrevPage:
		from := l.currentPage()
		if from == 0 {
			return nil
		}

		return l.goToPage(from - 1)

	case SetSort:
		l.sort = m.Sort
		l.pageIndex = 0

		if l.mode == model.PagingServer {
			return l.fetch(0)
		}

		l.recompute()

	case ViewRecord:
		if p, ok := l.Find(m.ID); ok {
			l.viewing = &p
		}

	case CloseView:
		l.viewing = nil

	case BeginEdit:
		l.beginEdit(m.ID)

	case EditField:
		l.editField(m.Field, m.Value)

	case SaveEdit:
		return l.saveEdit()

	case CancelEdit:
		l.clearEdit()

	case RequestDelete:
		if _, ok := l.Find(m.ID); ok {
			l.pendingDelete = m.ID
		}

	case ConfirmDelete:
		id := l.pendingDelete
		l.pendingDelete = 0

		if id != 0 && m.Yes {
			return []Effect{DeleteRecord{ID: id}}
		}

	case Loaded:
		l.onLoaded(m)

	case PageLoaded:
		return l.onPageLoaded(m)

	case Created:
		if l.mode == model.PagingServer {
			return l.fetch(0)
		}

		return l.fetch(l.pageIndex)

	case Updated:
		if l.state == EditingRow && l.editID == m.Patient.ID {
			l.clearEdit()
		}

		return l.fetch(l.pageIndex)

	case Deleted:
		return l.onDeleted(m.ID)

	case Failed:
		if l.superseded(m) {
			return nil
		}

		if m.Op == OpList {
			l.loading = false
		}

		if m.Op == OpUpdate && l.editID == m.ID {
			l.saving = false
		}
	}

	return nil
}

func (l *ListController) fetch(page int) []Effect {
	l.token++
	l.loading = true

	if l.mode == model.PagingClient {
		return []Effect{FetchAll{Token: l.token}}
	}

	l.requested = max(page, 0)

	return []Effect{FetchPage{Request: PageRequest{
		Token:  l.token,
		Page:   l.requested,
		Size:   l.pageSize,
		Sort:   l.sort,
		Search: l.filterTerm,
	}}}
}

// currentPage is the page paging keys step from: the page in flight while a
// server fetch is pending, otherwise the page on screen.
func (l *ListController) currentPage() int {
	if l.mode == model.PagingServer && l.loading {
		return l.requested
	}

	return l.pageIndex
}

// superseded reports a list failure from a fetch that is no longer the
// latest one.
func (l *ListController) superseded(m Failed) bool {
	return m.Op == OpList && m.Token != l.token
}

func (l *ListController) setFilter(term string) []Effect {
	if term == l.filterTerm {
		return nil
	}

	l.filterTerm = term
	l.pageIndex = 0

	if l.mode == model.PagingServer {
		return l.fetch(0)
	}

	l.recompute()

	return nil
}

func (l *ListController) goToPage(index int) []Effect {
	index = ClampPage(index, l.pageCount)

	if l.mode == model.PagingServer {
		return l.fetch(index)
	}

	l.pageIndex = index
	l.slice()

	return nil
}

func (l *ListController) beginEdit(id int64) {
	p, ok := l.Find(id)
	if !ok {
		return
	}

	l.state = EditingRow
	l.editID = id
	l.scratch = p
	l.editErrors = FieldErrors{}
	l.saving = false
}

func (l *ListController) editField(f model.Field, value string) {
	if l.state != EditingRow {
		return
	}

	l.scratch.Set(f, value)

	// Once a field has been flagged, re-check it as the user types.
	if _, flagged := l.editErrors[f]; flagged {
		if msg := l.rules.ValidateField(f, value); msg != "" {
			l.editErrors[f] = msg
		} else {
			delete(l.editErrors, f)
		}
	}
}

func (l *ListController) saveEdit() []Effect {
	if l.state != EditingRow || l.saving {
		return nil
	}

	errs := l.rules.Validate(l.scratch)
	l.editErrors = errs

	if !errs.Empty() {
		return nil
	}

	l.saving = true

	return []Effect{UpdateRecord{Patient: l.scratch}}
}

func (l *ListController) clearEdit() {
	l.state = Browsing
	l.editID = 0
	l.scratch = model.Patient{}
	l.editErrors = nil
	l.saving = false
}

func (l *ListController) onLoaded(m Loaded) {
	if l.mode != model.PagingClient || m.Token != l.token {
		return
	}

	l.loading = false
	l.source = slices.Clone(m.Records)

	// A reload keeps the page; recompute clamps it if the data shrank.
	l.recompute()
}

func (l *ListController) onPageLoaded(m PageLoaded) []Effect {
	if l.mode != model.PagingServer || m.Token != l.token {
		return nil
	}

	l.loading = false
	page := m.Page

	// Asked for a page that no longer exists: go to the new last page once.
	if page.TotalPages > 0 && page.Number >= page.TotalPages && !l.corrected {
		l.corrected = true

		return l.fetch(page.TotalPages - 1)
	}

	l.corrected = false
	l.source = slices.Clone(page.Content)
	l.visible = slices.Clone(page.Content)
	l.pageCount = max(page.TotalPages, 0)
	l.pageIndex = ClampPage(page.Number, l.pageCount)
	l.reconcile()

	return nil
}

func (l *ListController) onDeleted(id int64) []Effect {
	if l.state == EditingRow && l.editID == id {
		l.clearEdit()
	}

	if l.viewing != nil && l.viewing.ID == id {
		l.viewing = nil
	}

	page := l.pageIndex

	if l.mode == model.PagingServer {
		newCount := l.pageCount
		if len(l.visible) <= 1 && newCount > 0 {
			newCount--
		}

		page = ClampPage(page, newCount)
	}

	return l.fetch(page)
}

// recompute rebuilds the filtered sequence from source. Client mode only.
func (l *ListController) recompute() {
	if l.mode != model.PagingClient {
		return
	}

	l.filtered = FilterPatients(l.source, l.filterTerm)
	SortPatients(l.filtered, l.sort)
	l.pageCount = PageCount(len(l.filtered), l.pageSize)
	l.slice()
}

func (l *ListController) slice() {
	l.pageIndex = ClampPage(l.pageIndex, l.pageCount)

	start := min(l.pageIndex*l.pageSize, len(l.filtered))
	end := min(start+l.pageSize, len(l.filtered))
	l.visible = slices.Clone(l.filtered[start:end])

	l.reconcile()
}

// reconcile drops edit, delete and view targets that left the page.
func (l *ListController) reconcile() {
	if l.state == EditingRow {
		if _, ok := l.Find(l.editID); !ok {
			l.clearEdit()
		}
	}

	if l.pendingDelete != 0 {
		if _, ok := l.Find(l.pendingDelete); !ok {
			l.pendingDelete = 0
		}
	}

	if l.viewing != nil {
		if _, ok := l.Find(l.viewing.ID); !ok {
			l.viewing = nil
		}
	}
}

// PageCount returns ceil(n/size), zero for an empty set.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}

	return (n + size - 1) / size
}

// ClampPage bounds index to [0, max(count-1, 0)].
func ClampPage(index, count int) int {
	return max(0, min(index, count-1))
}

// FilterPatients returns the records where any attribute contains term,
// ignoring case. An empty term matches everything.
func FilterPatients(records []model.Patient, term string) []model.Patient {
	if term == "" {
		return slices.Clone(records)
	}

	needle := strings.ToLower(term)
	out := make([]model.Patient, 0, len(records))

	for _, p := range records {
		if matches(p, needle) {
			out = append(out, p)
		}
	}

	return out
}

func matches(p model.Patient, needle string) bool {
	for _, v := range p.Values() {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}

	return false
}

// SortPatients sorts records in place, stably, by the sort field. "id" sorts
// numerically; other fields compare case-insensitively. An empty or unknown
// field leaves the order untouched.
func SortPatients(records []model.Patient, s Sort) {
	var key func(a, b model.Patient) int

	if s.Field == "id" {
		key = func(a, b model.Patient) int { return cmp.Compare(a.ID, b.ID) }
	} else if f, ok := model.ParseField(s.Field); ok {
		key = func(a, b model.Patient) int {
			return cmp.Compare(strings.ToLower(a.Get(f)), strings.ToLower(b.Get(f)))
		}
	} else {
		return
	}

	slices.SortStableFunc(records, func(a, b model.Patient) int {
		if s.Desc {
			return key(b, a)
		}

		return key(a, b)
	})
}
