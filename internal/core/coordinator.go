package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inovacc/patientdesk/internal/model"
)

// maxDispatchSteps bounds the message chain of a single Dispatch.
const maxDispatchSteps = 64

// Focus is the single active editing target shared by editor and list.
type Focus int

const (
	FocusNone Focus = iota
	FocusForm
	FocusRow
)

// Notice is the last user-facing status line.
type Notice struct {
	Text  string
	Error bool
}

// Options configures a Coordinator.
type Options struct {
	Mode     model.PagingMode
	PageSize int
	Sort     Sort

	// FormRules validates the record editor; zero value means LenientRules
	FormRules RuleSet

	// RowRules validates inline edits; zero value means StrictRules
	RowRules RuleSet

	Logger *slog.Logger
}

// Coordinator owns the fetch cycle. It routes messages to the editor and
// the list and runs their effects against the backend.
type Coordinator struct {
	backend Backend
	list    *ListController
	editor  *Editor
	logger  *slog.Logger
	notice  Notice
}

// NewCoordinator wires an editor and a list controller to backend.
func NewCoordinator(backend Backend, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.FormRules.Name == "" {
		opts.FormRules = LenientRules
	}

	return &Coordinator{
		backend: backend,
		list: NewListController(ListOptions{
			Mode:     opts.Mode,
			PageSize: opts.PageSize,
			Sort:     opts.Sort,
			Rules:    opts.RowRules,
		}),
		editor: NewEditor(opts.FormRules),
		logger: logger,
	}
}

func (c *Coordinator) List() *ListController { return c.list }
func (c *Coordinator) Editor() *Editor       { return c.editor }
func (c *Coordinator) Notice() Notice        { return c.notice }

// ClearNotice drops the status line.
func (c *Coordinator) ClearNotice() { c.notice = Notice{} }

// Focus reports which component currently holds an edit.
func (c *Coordinator) Focus() Focus {
	if c.list.State() == EditingRow {
		return FocusRow
	}

	if c.editor.Dirty() {
		return FocusForm
	}

	return FocusNone
}

// Mount performs the initial fetch.
func (c *Coordinator) Mount(ctx context.Context) error {
	return c.Dispatch(ctx, Reload{})
}

// Apply routes msg to the owning component and returns the effects to run.
// It is the only method that mutates state.
func (c *Coordinator) Apply(msg Msg) []Effect {
	switch m := msg.(type) {
	case LoadRecord, ChangeField:
		if c.list.State() == EditingRow {
			c.list.Update(CancelEdit{})
		}

		return c.editor.Update(msg)

	case SubmitForm:
		effects := c.editor.Update(msg)
		if len(effects) == 0 && !c.editor.errors.Empty() {
			c.notice = Notice{Text: UserMessage(&ValidationError{}), Error: true}
		}

		return effects

	case ResetForm:
		return c.editor.Update(msg)

	case BeginEdit:
		c.editor.Reset()

		return c.list.Update(msg)

	case EditInForm:
		p, ok := c.list.Find(m.ID)
		if !ok {
			return nil
		}

		c.list.Update(CancelEdit{})

		return c.editor.Update(LoadRecord{Patient: &p})

	case SaveEdit:
		effects := c.list.Update(msg)
		if len(effects) == 0 && !c.list.editErrors.Empty() {
			c.notice = Notice{Text: UserMessage(&ValidationError{}), Error: true}
		}

		return effects

	case Created:
		c.notice = Notice{Text: fmt.Sprintf("Patient #%d created", m.Patient.ID)}
		c.logger.Info("patient created", slog.Int64("id", m.Patient.ID))

	case Updated:
		c.notice = Notice{Text: fmt.Sprintf("Patient #%d updated", m.Patient.ID)}
		c.logger.Info("patient updated", slog.Int64("id", m.Patient.ID))

	case Deleted:
		c.notice = Notice{Text: fmt.Sprintf("Patient #%d deleted", m.ID)}
		c.logger.Info("patient deleted", slog.Int64("id", m.ID))

	case Failed:
		if c.list.superseded(m) {
			c.logger.Debug("dropping superseded list failure", slog.Uint64("token", m.Token))

			return nil
		}

		c.notice = Notice{Text: UserMessage(m.Err), Error: true}
		c.logger.Warn("patient request failed",
			slog.String("op", string(m.Op)),
			slog.Int64("id", m.ID),
			slog.Any("error", m.Err),
		)
	}

	return c.list.Update(msg)
}

// Run performs one effect and returns its result message. It reads no
// controller state, so it may run on another goroutine.
func (c *Coordinator) Run(ctx context.Context, effect Effect) Msg {
	switch e := effect.(type) {
	case FetchAll:
		c.logger.Debug("fetching all patients", slog.Uint64("token", e.Token))

		records, err := c.backend.ListAll(ctx)
		if err != nil {
			return Failed{Op: OpList, Token: e.Token, Err: err}
		}

		return Loaded{Token: e.Token, Records: records}

	case FetchPage:
		req := e.Request
		c.logger.Debug("fetching patient page",
			slog.Uint64("token", req.Token),
			slog.Int("page", req.Page),
			slog.Int("size", req.Size),
			slog.String("sort", req.Sort.String()),
			slog.String("search", req.Search),
		)

		page, err := c.backend.ListPage(ctx, req)
		if err != nil {
			return Failed{Op: OpList, Token: req.Token, Err: err}
		}

		return PageLoaded{Token: req.Token, Page: page}

	case CreateRecord:
		created, err := c.backend.Create(ctx, e.Patient)
		if err != nil {
			return Failed{Op: OpCreate, Err: err}
		}

		return Created{Patient: created}

	case UpdateRecord:
		updated, err := c.backend.Update(ctx, e.Patient)
		if err != nil {
			return Failed{Op: OpUpdate, ID: e.Patient.ID, Err: err}
		}

		return Updated{Patient: updated}

	case DeleteRecord:
		if err := c.backend.Delete(ctx, e.ID); err != nil {
			return Failed{Op: OpDelete, ID: e.ID, Err: err}
		}

		return Deleted{ID: e.ID}
	}

	return Failed{Err: fmt.Errorf("unknown effect %T", effect)}
}

// Dispatch applies msg and runs every resulting effect synchronously,
// feeding results back until nothing is left to do. It returns the first
// request failure, or a *ValidationError when msg was a rejected submit.
func (c *Coordinator) Dispatch(ctx context.Context, msg Msg) error {
	queue := []Msg{msg}

	var firstErr error

	for steps := 0; len(queue) > 0; steps++ {
		if steps >= maxDispatchSteps {
			return errors.New("dispatch did not settle")
		}

		m := queue[0]
		queue = queue[1:]

		effects := c.Apply(m)

		if steps == 0 && len(effects) == 0 {
			if err := c.validationErr(m); err != nil {
				return err
			}
		}

		for _, e := range effects {
			result := c.Run(ctx, e)

			if f, ok := result.(Failed); ok && firstErr == nil {
				firstErr = f.Err
			}

			queue = append(queue, result)
		}
	}

	return firstErr
}

func (c *Coordinator) validationErr(m Msg) error {
	switch m.(type) {
	case SubmitForm:
		if !c.editor.errors.Empty() {
			return &ValidationError{Fields: c.editor.Errors()}
		}
	case SaveEdit:
		if !c.list.editErrors.Empty() {
			return &ValidationError{Fields: c.list.EditErrors()}
		}
	}

	return nil
}
