package httpx

import (
	"net/http"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/service/office"
	"github.com/sakhike1/officeboard/internal/service/worker"
	"github.com/sakhike1/officeboard/pkg/avatar"
)

// workerResponse adds the resolved avatar to a worker.
type workerResponse struct {
	domain.Worker
	Avatar string `json:"avatar"`
}

func newWorkerResponse(w domain.Worker) workerResponse {
	return workerResponse{Worker: w, Avatar: avatar.URL(w.AvatarURL, w.Name, w.Email)}
}

func (r *Router) userID(w http.ResponseWriter, req *http.Request) (string, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return "", false
	}
	return info.UserID, true
}

func (r *Router) handleListOffices(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	offices, err := r.offices.List(req.Context(), userID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, offices)
}

func (r *Router) handleCreateOffice(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	var payload office.CreateInput
	if !decodeJSON(w, req, &payload) {
		return
	}
	created, err := r.offices.Create(req.Context(), userID, payload)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (r *Router) handleGetOffice(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	found, err := r.offices.Get(req.Context(), userID, req.PathValue("id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleDeleteOffice(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	if err := r.offices.Delete(req.Context(), userID, req.PathValue("id")); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleCountWorkers(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	count, err := r.offices.CountWorkers(req.Context(), userID, req.PathValue("id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (r *Router) handleListWorkers(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	workers, err := r.workers.List(req.Context(), userID, req.PathValue("id"))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if q := req.URL.Query().Get("q"); q != "" {
		workers = worker.Filter(workers, q)
	}
	out := make([]workerResponse, 0, len(workers))
	for _, wk := range workers {
		out = append(out, newWorkerResponse(wk))
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Router) handleCreateWorker(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	var payload worker.Input
	if !decodeJSON(w, req, &payload) {
		return
	}
	created, err := r.workers.Create(req.Context(), userID, req.PathValue("id"), payload)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkerResponse(*created))
}

func (r *Router) handleUpdateWorker(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	var payload worker.Input
	if !decodeJSON(w, req, &payload) {
		return
	}
	updated, err := r.workers.Update(req.Context(), userID, req.PathValue("id"), req.PathValue("workerID"), payload)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkerResponse(*updated))
}

func (r *Router) handleDeleteWorker(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	if err := r.workers.Delete(req.Context(), userID, req.PathValue("id"), req.PathValue("workerID")); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) {
	userID, ok := r.userID(w, req)
	if !ok {
		return
	}
	summary, err := r.summary.Summary(req.Context(), userID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
