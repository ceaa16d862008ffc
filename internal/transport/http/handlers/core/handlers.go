package corehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/core"
	"opsboard/internal/domain/faults"
	"opsboard/internal/transport/http/api"
	"opsboard/internal/transport/http/middleware"
	"opsboard/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
}

func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

type employeePayload struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	HourlyRate float64 `json:"hourlyRate"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type projectPayload struct {
	Name string `json:"name"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAdmin).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequireAdmin).Get("/", h.handleListEmployees)
		r.With(middleware.RequireActor).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequireAdmin).Patch("/{employeeID}/status", h.handleSetEmployeeStatus)
	})
	r.Route("/projects", func(r chi.Router) {
		r.With(middleware.RequireAdmin).Post("/", h.handleCreateProject)
		r.With(middleware.RequireActor).Get("/", h.handleListProjects)
		r.With(middleware.RequireActor).Get("/{projectID}", h.handleGetProject)
	})
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	employee, err := h.Service.CreateEmployee(r.Context(), payload.Name, payload.Email, payload.HourlyRate)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Created(w, employee, reqID)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employees, err := h.Service.ListEmployees(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	actor, _ := middleware.GetActor(r.Context())
	if !actor.CanActFor(employeeID) {
		api.FailErr(w, faults.ErrForbidden, reqID)
		return
	}

	employee, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, employee, reqID)
}

func (h *Handler) handleSetEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Service.SetEmployeeStatus(r.Context(), employeeID, core.EmployeeStatus(payload.Status)); err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"id": employeeID, "status": payload.Status}, reqID)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	project, err := h.Service.CreateProject(r.Context(), payload.Name)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Created(w, project, reqID)
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	projects, err := h.Service.ListProjects(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, projects, reqID)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	project, err := h.Service.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, project, reqID)
}
