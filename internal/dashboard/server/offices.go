package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/service/dashboard"
	"github.com/sakhike1/officeboard/internal/service/office"
	"github.com/sakhike1/officeboard/internal/service/worker"
	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
	"github.com/sakhike1/officeboard/pkg/validate"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	offices, err := s.api.ListOffices(ctx, v.Token)
	if err != nil {
		s.renderAPIError(w, r, err, "failed to load offices")
		return
	}
	counter := dashboard.CounterFunc(func(ctx context.Context, officeID string) (int, error) {
		return s.api.CountWorkers(ctx, v.Token, officeID)
	})
	summary, err := dashboard.Summarize(ctx, toDomainOffices(offices), counter, s.logger)
	if err != nil {
		s.renderAPIError(w, r, err, "failed to load worker counts")
		return
	}
	s.render(w, r, http.StatusOK, "dashboard", map[string]any{
		"Title":   "Offices",
		"Flash":   flashFromRequest(r),
		"Summary": summary,
	})
}

func (s *Server) handleOfficeNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "office_new", map[string]any{
		"Title":  "New office",
		"Values": officeFormValues{Color: domain.DefaultOfficeColor},
		"Errors": map[string]string{},
		"Error":  "",
	})
}

// officeFormValues echoes the raw form back so nothing typed is lost.
type officeFormValues struct {
	Name     string
	Location string
	Capacity string
	Color    string
	Email    string
	Phone    string
}

func (s *Server) handleOfficeCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	values := officeFormValues{
		Name:     r.PostFormValue("name"),
		Location: r.PostFormValue("location"),
		Capacity: strings.TrimSpace(r.PostFormValue("capacity")),
		Color:    r.PostFormValue("color"),
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
	}
	fields, input := checkOfficeForm(values)
	if len(fields) > 0 {
		s.renderOfficeForm(w, r, http.StatusBadRequest, values, fields, "")
		return
	}

	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	created, err := s.api.CreateOffice(ctx, v.Token, apiclient.OfficeInput{
		Name:     input.Name,
		Location: input.Location,
		Capacity: input.Capacity,
		Color:    input.Color,
		Email:    input.Email,
		Phone:    input.Phone,
	})
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			s.renderAPIError(w, r, err, "")
			return
		}
		s.logger.Warn("office create failed", "user_id", v.User.ID, "error", err)
		s.renderOfficeForm(w, r, http.StatusOK, values, fieldErrorsOf(err), errorMessage(err))
		return
	}
	s.logger.Info("office created", "office_id", created.ID, "user_id", v.User.ID)
	redirectWithFlash(w, r, "/", "Office created")
}

// checkOfficeForm validates the submitted form before any API call.
func checkOfficeForm(values officeFormValues) (map[string]string, office.CreateInput) {
	fields := map[string]string{}
	capacity := 0
	if values.Capacity != "" {
		n, err := strconv.Atoi(values.Capacity)
		if err != nil {
			fields["capacity"] = "must be a whole number"
		}
		capacity = n
	}
	input := office.CreateInput{
		Name:     values.Name,
		Location: values.Location,
		Capacity: capacity,
		Color:    values.Color,
		Email:    values.Email,
		Phone:    values.Phone,
	}.Normalize()
	var verrs validate.FieldErrors
	if err := input.Validate(); errors.As(err, &verrs) {
		for k, msg := range verrs {
			if _, ok := fields[k]; !ok {
				fields[k] = msg
			}
		}
	}
	if !validate.Email(input.Email) {
		fields["email"] = "Please enter a valid email address"
	}
	return fields, input
}

func (s *Server) renderOfficeForm(w http.ResponseWriter, r *http.Request, status int, values officeFormValues, fields map[string]string, banner string) {
	if fields == nil {
		fields = map[string]string{}
	}
	s.render(w, r, status, "office_new", map[string]any{
		"Title":  "New office",
		"Values": values,
		"Errors": fields,
		"Error":  banner,
	})
}

// officePage is everything the office detail template needs.
type officePage struct {
	Office    apiclient.Office
	Workers   []apiclient.Worker
	Total     int
	Occupancy int
	Query     string
	Form      WorkerForm
	Confirm   bool
	// ConfirmWorker is the worker awaiting a delete confirmation, if any.
	ConfirmWorker apiclient.Worker
	Error         string
}

func (s *Server) loadOffice(ctx context.Context, token, officeID string) (apiclient.Office, []apiclient.Worker, error) {
	var (
		o       apiclient.Office
		workers []apiclient.Worker
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o, err = s.api.GetOffice(gctx, token, officeID)
		return err
	})
	g.Go(func() error {
		var err error
		workers, err = s.api.ListWorkers(gctx, token, officeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return apiclient.Office{}, nil, err
	}
	return o, workers, nil
}

func (s *Server) handleOfficeDetail(w http.ResponseWriter, r *http.Request) {
	officeID := mux.Vars(r)["id"]
	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	o, workers, err := s.loadOffice(ctx, v.Token, officeID)
	if err != nil {
		if apiclient.IsNotFound(err) {
			redirectWithFlash(w, r, "/", "Office not found")
			return
		}
		s.renderAPIError(w, r, err, "failed to load office")
		return
	}
	q := r.URL.Query()
	page := officePage{
		Office:  o,
		Workers: workers,
		Query:   strings.TrimSpace(q.Get("q")),
		Form:    formFromQuery(q, workers),
		Confirm: q.Get("confirm") == "delete",
	}
	if id := q.Get("confirm_worker"); id != "" {
		for _, wk := range workers {
			if wk.ID == id {
				page.ConfirmWorker = wk
				break
			}
		}
	}
	s.renderOffice(w, r, http.StatusOK, page)
}

func (s *Server) renderOffice(w http.ResponseWriter, r *http.Request, status int, page officePage) {
	page.Total = len(page.Workers)
	page.Occupancy = dashboard.OccupancyRate(page.Total, page.Office.Capacity)
	visible := make([]apiclient.Worker, 0, len(page.Workers))
	for _, wk := range page.Workers {
		if worker.Matches(page.Query, wk.Name, wk.Position, wk.Email) {
			visible = append(visible, wk)
		}
	}
	page.Workers = visible
	if page.Form.Errors == nil {
		page.Form.Errors = map[string]string{}
	}
	s.render(w, r, status, "office", map[string]any{
		"Title": page.Office.Name,
		"Flash": flashFromRequest(r),
		"Page":  page,
	})
}

func (s *Server) handleOfficeDelete(w http.ResponseWriter, r *http.Request) {
	officeID := mux.Vars(r)["id"]
	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	if err := s.api.DeleteOffice(ctx, v.Token, officeID); err != nil {
		s.logger.Warn("office delete failed", "office_id", officeID, "error", err)
		redirectWithFlash(w, r, officePath(officeID, nil), "failed to delete office: "+errorMessage(err))
		return
	}
	redirectWithFlash(w, r, "/", "Office deleted")
}

func workerInputFromForm(r *http.Request) apiclient.WorkerInput {
	return apiclient.WorkerInput{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Position: strings.TrimSpace(r.PostFormValue("position")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}
}

func checkWorkerForm(in apiclient.WorkerInput) map[string]string {
	err := worker.Input{Name: in.Name, Position: in.Position, Email: in.Email}.Validate()
	var verrs validate.FieldErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

func (s *Server) handleWorkerCreate(w http.ResponseWriter, r *http.Request) {
	s.submitWorker(w, r, "")
}

func (s *Server) handleWorkerUpdate(w http.ResponseWriter, r *http.Request) {
	s.submitWorker(w, r, mux.Vars(r)["workerID"])
}

// submitWorker adds a worker when workerID is empty and edits it otherwise.
// On failure the office page is re-rendered with the form still open.
func (s *Server) submitWorker(w http.ResponseWriter, r *http.Request, workerID string) {
	officeID := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	v := viewerFrom(r.Context())
	input := workerInputFromForm(r)
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()

	fields := checkWorkerForm(input)
	var err error
	if len(fields) == 0 {
		if workerID == "" {
			_, err = s.api.CreateWorker(ctx, v.Token, officeID, input)
		} else {
			_, err = s.api.UpdateWorker(ctx, v.Token, officeID, workerID, input)
		}
		if err == nil {
			msg := "Worker added"
			if workerID != "" {
				msg = "Worker updated"
			}
			redirectWithFlash(w, r, officePath(officeID, nil), msg)
			return
		}
		if apiclient.IsUnauthorized(err) {
			s.renderAPIError(w, r, err, "")
			return
		}
		s.logger.Warn("worker save failed", "office_id", officeID, "worker_id", workerID, "error", err)
		fields = fieldErrorsOf(err)
	}

	o, workers, loadErr := s.loadOffice(ctx, v.Token, officeID)
	if loadErr != nil {
		s.renderAPIError(w, r, loadErr, "failed to load office")
		return
	}
	var form WorkerForm
	if workerID == "" {
		form, _ = form.OpenAdd()
	} else {
		target := apiclient.Worker{ID: workerID}
		for _, wk := range workers {
			if wk.ID == workerID {
				target = wk
				break
			}
		}
		form, _ = form.OpenEdit(target)
	}
	page := officePage{Office: o, Workers: workers, Form: form.Fail(input, fields)}
	status := http.StatusBadRequest
	if err != nil {
		page.Error = errorMessage(err)
		status = http.StatusOK
	}
	s.renderOffice(w, r, status, page)
}

func (s *Server) handleWorkerDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	officeID, workerID := vars["id"], vars["workerID"]
	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	if err := s.api.DeleteWorker(ctx, v.Token, officeID, workerID); err != nil {
		s.logger.Warn("worker delete failed", "office_id", officeID, "worker_id", workerID, "error", err)
		redirectWithFlash(w, r, officePath(officeID, nil), "failed to delete worker: "+errorMessage(err))
		return
	}
	redirectWithFlash(w, r, officePath(officeID, nil), "Worker removed")
}

func officePath(officeID string, q url.Values) string {
	p := "/office/" + url.PathEscape(officeID)
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}
