package core

import "github.com/inovacc/patientdesk/internal/model"

// EditorMode tells whether the editor holds a new or an existing record.
type EditorMode int

const (
	ModeCreate EditorMode = iota
	ModeEdit
)

func (m EditorMode) String() string {
	if m == ModeEdit {
		return "edit"
	}

	return "create"
}

// Editor is the record form: a working copy plus per-field messages.
type Editor struct {
	rules   RuleSet
	working model.Patient
	errors  FieldErrors
}

// NewEditor returns an empty editor in create mode validating with rules.
func NewEditor(rules RuleSet) *Editor {
	return &Editor{rules: rules, errors: FieldErrors{}}
}

func (e *Editor) Rules() RuleSet { return e.rules }

// Mode is ModeEdit when the working copy carries a backend id.
func (e *Editor) Mode() EditorMode {
	if e.working.IsNew() {
		return ModeCreate
	}

	return ModeEdit
}

// Working returns a copy of the record being edited.
func (e *Editor) Working() model.Patient { return e.working }

// Errors returns a copy of the current field messages.
func (e *Editor) Errors() FieldErrors { return e.errors.clone() }

// Dirty reports whether the form holds anything besides the empty default.
func (e *Editor) Dirty() bool {
	return e.working != model.Patient{}
}

// Load copies p into the form, or resets it when p is nil.
func (e *Editor) Load(p *model.Patient) {
	if p == nil {
		e.Reset()

		return
	}

	e.working = *p
	e.errors = FieldErrors{}
}

// SetField changes one field and re-validates only that field.
func (e *Editor) SetField(f model.Field, value string) {
	e.working.Set(f, value)

	if msg := e.rules.ValidateField(f, value); msg != "" {
		e.errors[f] = msg
	} else {
		delete(e.errors, f)
	}
}

// Submit validates every field. On success it returns the working copy and
// resets the form to create mode; on failure it keeps the form and returns
// a *ValidationError.
func (e *Editor) Submit() (model.Patient, error) {
	errs := e.rules.Validate(e.working)
	e.errors = errs

	if !errs.Empty() {
		return model.Patient{}, &ValidationError{Fields: errs.clone()}
	}

	out := e.working
	e.Reset()

	return out, nil
}

// Reset empties the form.
func (e *Editor) Reset() {
	e.working = model.Patient{}
	e.errors = FieldErrors{}
}

// Update applies an editor message. A successful submit yields a create or
// update effect depending on whether the record has an id.
func (e *Editor) Update(msg Msg) []Effect {
	switch m := msg.(type) {
	case LoadRecord:
		e.Load(m.Patient)

	case ChangeField:
		e.SetField(m.Field, m.Value)

	case ResetForm:
		e.Reset()

	case SubmitForm:
		p, err := e.Submit()
		if err != nil {
			return nil
		}

		if p.IsNew() {
			return []Effect{CreateRecord{Patient: p}}
		}

		return []Effect{UpdateRecord{Patient: p}}
	}

	return nil
}
