package server

import (
	"errors"
	"net/url"
	"strings"

	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
)

// FormMode is the state of the worker form on the office page.
type FormMode int

const (
	FormClosed FormMode = iota
	FormAdding
	FormEditing
)

func (m FormMode) String() string {
	switch m {
	case FormAdding:
		return "adding"
	case FormEditing:
		return "editing"
	default:
		return "closed"
	}
}

// ErrFormOpen is returned when a form is opened while another is active.
var ErrFormOpen = errors.New("another worker form is already open")

// WorkerForm tracks which worker form is open and what the user typed.
// At most one of adding or editing is active.
type WorkerForm struct {
	Mode   FormMode
	Target apiclient.Worker
	Values apiclient.WorkerInput
	Errors map[string]string
}

// OpenAdd moves a closed form into adding.
func (f WorkerForm) OpenAdd() (WorkerForm, error) {
	if f.Mode != FormClosed {
		return f, ErrFormOpen
	}
	return WorkerForm{Mode: FormAdding}, nil
}

// OpenEdit moves a closed form into editing w, prefilled with its fields.
func (f WorkerForm) OpenEdit(w apiclient.Worker) (WorkerForm, error) {
	if f.Mode != FormClosed {
		return f, ErrFormOpen
	}
	return WorkerForm{
		Mode:   FormEditing,
		Target: w,
		Values: apiclient.WorkerInput{Name: w.Name, Position: w.Position, Email: w.Email},
	}, nil
}

// Close returns to the closed state. Cancel and success both land here.
func (f WorkerForm) Close() WorkerForm {
	return WorkerForm{}
}

// Fail keeps the form open with the submitted values and field errors.
func (f WorkerForm) Fail(values apiclient.WorkerInput, fields map[string]string) WorkerForm {
	f.Values = values
	f.Errors = fields
	return f
}

func (f WorkerForm) Adding() bool  { return f.Mode == FormAdding }
func (f WorkerForm) Editing() bool { return f.Mode == FormEditing }

// EditingID is the id of the worker under edit, or "".
func (f WorkerForm) EditingID() string {
	if f.Mode != FormEditing {
		return ""
	}
	return f.Target.ID
}

// Query encodes the form state for a redirect back to the office page.
func (f WorkerForm) Query() url.Values {
	q := url.Values{}
	switch f.Mode {
	case FormAdding:
		q.Set("form", "add")
	case FormEditing:
		q.Set("edit", f.Target.ID)
	}
	return q
}

// formFromQuery rebuilds form state from the office page URL. An edit of a
// worker that is not listed leaves the form closed; edit wins over add.
func formFromQuery(q url.Values, workers []apiclient.Worker) WorkerForm {
	var form WorkerForm
	if id := strings.TrimSpace(q.Get("edit")); id != "" {
		for _, w := range workers {
			if w.ID == id {
				form, _ = form.OpenEdit(w)
				return form
			}
		}
		return form
	}
	if q.Get("form") == "add" {
		form, _ = form.OpenAdd()
	}
	return form
}
