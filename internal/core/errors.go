package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/inovacc/patientdesk/internal/model"
)

// ErrNoRecord is returned when an action names a record that is not in the
// current view.
var ErrNoRecord = errors.New("record not in current view")

// FieldErrors maps a field to its validation message. Fields without a
// problem are absent.
type FieldErrors map[model.Field]string

// Empty reports whether no field has a message.
func (fe FieldErrors) Empty() bool {
	for _, msg := range fe {
		if msg != "" {
			return false
		}
	}

	return true
}

func (fe FieldErrors) clone() FieldErrors {
	if fe == nil {
		return nil
	}

	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}

	return out
}

// ValidationError blocks a submission locally. It never reaches the backend.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))

	for _, f := range model.Fields {
		if msg := e.Fields[f]; msg != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// RequestError wraps a failed backend call. Message holds the backend's own
// message when the response carried one.
type RequestError struct {
	Op      Op
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s patient: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s patient failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s patient failed with status %d", e.Op, e.Status)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user: the backend message verbatim,
// or a generic line when there is none.
func (e *RequestError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Status != 0 {
		return fmt.Sprintf("Error %s patient: %s", e.Op.verb(), http.StatusText(e.Status))
	}

	return fmt.Sprintf("Error %s patient: service unreachable", e.Op.verb())
}

// UserMessage renders any error for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.UserMessage()
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return "Please fix the highlighted fields"
	}

	return err.Error()
}

// Op names a backend operation.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

func (o Op) verb() string {
	switch o {
	case OpList:
		return "loading"
	case OpGet:
		return "fetching"
	case OpCreate, OpUpdate:
		return "saving"
	case OpDelete:
		return "deleting"
	}

	return string(o)
}
