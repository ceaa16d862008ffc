package assignmenthandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/assignment"
	"opsboard/internal/domain/audit"
	"opsboard/internal/domain/core"
	"opsboard/internal/transport/http/api"
	"opsboard/internal/transport/http/middleware"
)

type Handler struct {
	Service *assignment.Service
	Audit   *audit.Service
}

func NewHandler(service *assignment.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

type assignPayload struct {
	EmployeeID string `json:"employeeId"`
}

type projectStatusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.With(middleware.RequireAdmin).Post("/assignments", h.handleAssign)
		r.With(middleware.RequireAdmin).Delete("/assignments/{employeeID}", h.handleUnassign)
		r.With(middleware.RequireAdmin).Patch("/status", h.handleSetStatus)
	})
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload assignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "employeeId is required", reqID)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := h.Service.Assign(r.Context(), projectID, payload.EmployeeID); err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "assignment.assign", projectID, map[string]string{"employeeId": payload.EmployeeID})
	api.Success(w, map[string]string{"projectId": projectID, "employeeId": payload.EmployeeID}, reqID)
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Service.Unassign(r.Context(), projectID, employeeID); err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "assignment.unassign", projectID, map[string]string{"employeeId": employeeID})
	api.Success(w, map[string]string{"projectId": projectID, "employeeId": employeeID}, reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload projectStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	if err := h.Service.SetProjectStatus(r.Context(), projectID, core.ProjectStatus(payload.Status)); err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "project.set_status", projectID, map[string]string{"status": payload.Status})
	api.Success(w, map[string]string{"id": projectID, "status": payload.Status}, reqID)
}

func (h *Handler) record(r *http.Request, action, entityID string, after any) {
	actor, _ := middleware.GetActor(r.Context())
	err := h.Audit.Record(r.Context(), actor.EmployeeID, actor.Role, action, "project", entityID, middleware.GetRequestID(r.Context()), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
