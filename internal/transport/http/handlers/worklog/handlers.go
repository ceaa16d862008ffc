package workloghandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/audit"
	"opsboard/internal/domain/worklog"
	"opsboard/internal/transport/http/api"
	"opsboard/internal/transport/http/middleware"
	"opsboard/internal/transport/http/shared"
)

type Handler struct {
	Service *worklog.Service
	Audit   *audit.Service
}

func NewHandler(service *worklog.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

type submitPayload struct {
	EmployeeID string  `json:"employeeId"`
	ProjectID  string  `json:"projectId"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Task       string  `json:"task"`
}

type transitionPayload struct {
	Status string `json:"status"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/worklogs", func(r chi.Router) {
		r.With(middleware.RequireActor).Post("/", h.handleSubmit)
		r.With(middleware.RequireActor).Post("/{workLogID}/transition", h.handleTransition)
		r.With(middleware.RequireAdmin).Get("/", h.handleListAll)
	})
	r.With(middleware.RequireActor).Get("/employees/{employeeID}/worklogs", h.handleListForEmployee)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	actor, _ := middleware.GetActor(r.Context())
	employeeID := payload.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}

	date, err := shared.ParseDate(payload.Date)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "date must be a valid YYYY-MM-DD date", reqID)
		return
	}

	created, err := h.Service.Submit(r.Context(), actor, employeeID, payload.ProjectID, date, payload.Hours, payload.Task)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "worklog.submit", created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload transitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	actor, _ := middleware.GetActor(r.Context())
	workLogID := chi.URLParam(r, "workLogID")

	updated, err := h.Service.Transition(r.Context(), actor, workLogID, worklog.Status(payload.Status))
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "worklog.transition", workLogID, nil, map[string]string{"status": payload.Status})
	api.Success(w, updated, reqID)
}

func (h *Handler) handleListForEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	page := shared.ParsePagination(r, 50, 200)

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "from must be a valid date", reqID)
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "to must be a valid date", reqID)
		return
	}

	logs, err := h.Service.ListForEmployee(r.Context(), actor, employeeID, from, to, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, logs, reqID)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "from must be a valid date", reqID)
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "to must be a valid date", reqID)
		return
	}

	filter := worklog.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		ProjectID:  r.URL.Query().Get("projectId"),
		Status:     worklog.Status(r.URL.Query().Get("status")),
		From:       from,
		To:         to,
	}

	logs, err := h.Service.ListAll(r.Context(), actor, filter, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, logs, reqID)
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	actor, _ := middleware.GetActor(r.Context())
	err := h.Audit.Record(r.Context(), actor.EmployeeID, actor.Role, action, "worklog", entityID, middleware.GetRequestID(r.Context()), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
