package analyticshandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/analytics"
	"opsboard/internal/transport/http/api"
	"opsboard/internal/transport/http/middleware"
	"opsboard/internal/transport/http/shared"
)

// productivityTimeout bounds long range scans; the query is read-only so a
// timeout cannot leave partial writes.
const productivityTimeout = 30 * time.Second

type Handler struct {
	Service *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.With(middleware.RequireAdmin).Get("/overview", h.handleOverview)
		r.With(middleware.RequireAdmin).Get("/productivity", h.handleProductivity)
	})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	overview, err := h.Service.Overview(r.Context(), actor)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, overview, reqID)
}

func (h *Handler) handleProductivity(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

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

	ctx, cancel := context.WithTimeout(r.Context(), productivityTimeout)
	defer cancel()

	rows, err := h.Service.Productivity(ctx, actor, from, to, analytics.GroupBy(r.URL.Query().Get("groupBy")))
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, rows, reqID)
}
