package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/patientdesk/internal/core"
	"github.com/inovacc/patientdesk/internal/model"
)

// fieldInputs is one text input per patient field with tab focus cycling.
type fieldInputs struct {
	inputs []textinput.Model
	focus  int
}

func newFieldInputs(p model.Patient) fieldInputs {
	fi := fieldInputs{inputs: make([]textinput.Model, len(model.Fields))}

	for i, f := range model.Fields {
		t := textinput.New()
		t.Cursor.Style = cursorStyle
		t.Cursor.SetMode(cursor.CursorStatic)
		t.CharLimit = 128
		t.Prompt = ""
		t.Placeholder = f.Label()
		t.SetValue(p.Get(f))

		fi.inputs[i] = t
	}

	fi.setFocus(0)

	return fi
}

func (fi *fieldInputs) setFocus(i int) {
	n := len(fi.inputs)
	fi.focus = ((i % n) + n) % n

	for j := range fi.inputs {
		if j == fi.focus {
			fi.inputs[j].Focus()
			fi.inputs[j].TextStyle = focusedStyle

			continue
		}

		fi.inputs[j].Blur()
		fi.inputs[j].TextStyle = noStyle
	}
}

func (fi *fieldInputs) next() { fi.setFocus(fi.focus + 1) }
func (fi *fieldInputs) prev() { fi.setFocus(fi.focus - 1) }

// update feeds msg to the focused input. It reports the field and its new
// value when the text changed.
func (fi *fieldInputs) update(msg tea.Msg) (model.Field, string, bool) {
	in := &fi.inputs[fi.focus]
	before := in.Value()
	*in, _ = in.Update(msg)

	if in.Value() == before {
		return "", "", false
	}

	return model.Fields[fi.focus], in.Value(), true
}

func (fi *fieldInputs) view(errs core.FieldErrors) string {
	var b strings.Builder

	for i, f := range model.Fields {
		label := labelStyle.Render(f.Label())
		if i == fi.focus {
			label = focusedStyle.Width(12).Render(f.Label())
		}

		b.WriteString(label + " " + fi.inputs[i].View())

		if msg := errs[f]; msg != "" {
			b.WriteString("  " + errorStyle.Render(msg))
		}

		b.WriteString("\n")
	}

	return b.String()
}
