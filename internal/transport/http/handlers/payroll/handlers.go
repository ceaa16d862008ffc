package payrollhandler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsboard/internal/domain/audit"
	"opsboard/internal/domain/payroll"
	"opsboard/internal/transport/http/api"
	"opsboard/internal/transport/http/middleware"
	"opsboard/internal/transport/http/shared"
)

type Handler struct {
	Service     *payroll.Service
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
	ReceiptDir  string
}

func NewHandler(service *payroll.Service, auditSvc *audit.Service, idem *middleware.IdempotencyStore, receiptDir string) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Idempotency: idem, ReceiptDir: receiptDir}
}

type paymentPayload struct {
	EmployeeID string  `json:"employeeId"`
	Month      string  `json:"month"`
	Amount     float64 `json:"amount"`
	PaidAt     string  `json:"paidAt"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequireAdmin).Get("/pending", h.handleListPending)
		r.With(middleware.RequireActor).Get("/employees/{employeeID}/pending", h.handleComputePending)
		r.With(middleware.RequireAdmin).Post("/payments", h.handleRecordPayment)
		r.With(middleware.RequireAdmin).Post("/payments/schedule", h.handleSchedulePayment)
		r.With(middleware.RequireAdmin).Post("/payments/{paymentID}/pay", h.handleMarkPaid)
		r.With(middleware.RequireActor).Get("/payments", h.handleListPayments)
		r.With(middleware.RequireActor).Get("/payments/{paymentID}/receipt", h.handleReceipt)
	})
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = payroll.CurrentMonth(time.Now())
	}

	pending, err := h.Service.ListPending(r.Context(), actor, month)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, pending, reqID)
}

func (h *Handler) handleComputePending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = payroll.CurrentMonth(time.Now())
	}

	pending, err := h.Service.ComputePending(r.Context(), actor, chi.URLParam(r, "employeeID"), month)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, pending, reqID)
}

// handleRecordPayment honors Idempotency-Key: a client whose first attempt
// had an unknown outcome re-sends the same key and gets the stored response
// instead of a second write racing the uniqueness constraint.
func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "could not read body", reqID)
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), actor.EmployeeID, "payroll.payments", idemKey, requestHash)
		if err != nil {
			h.failIdempotency(w, err, reqID)
			return
		}
		if found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(stored)
			return
		}
	}

	var payload paymentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	paidAt, err := shared.ParseDate(payload.PaidAt)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "paidAt must be a valid date", reqID)
		return
	}

	payment, err := h.Service.RecordPayment(r.Context(), actor, payload.EmployeeID, payload.Month, payload.Amount, paidAt)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "payment.record", payment.ID, payment)

	if idemKey != "" {
		response, _ := json.Marshal(api.Envelope{Success: true, Data: payment, RequestID: reqID})
		if err := h.Idempotency.Save(r.Context(), actor.EmployeeID, "payroll.payments", idemKey, requestHash, response); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Created(w, payment, reqID)
}

func (h *Handler) handleSchedulePayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload paymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "invalid JSON body", reqID)
		return
	}

	payment, err := h.Service.SchedulePayment(r.Context(), actor, payload.EmployeeID, payload.Month, payload.Amount)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "payment.schedule", payment.ID, payment)
	api.Created(w, payment, reqID)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	payment, err := h.Service.MarkPaid(r.Context(), actor, chi.URLParam(r, "paymentID"), time.Now().UTC())
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	h.record(r, "payment.mark_paid", payment.ID, payment)
	api.Success(w, payment, reqID)
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employeeID := r.URL.Query().Get("employeeId")
	if !actor.IsAdmin() && employeeID == "" {
		employeeID = actor.EmployeeID
	}

	payments, err := h.Service.ListPayments(r.Context(), actor, employeeID, r.URL.Query().Get("month"), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}
	api.Success(w, payments, reqID)
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	filePath, err := h.Service.GenerateReceiptPDF(r.Context(), actor, h.ReceiptDir, chi.URLParam(r, "paymentID"))
	if err != nil {
		api.FailErr(w, err, reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, filePath)
}

func (h *Handler) failIdempotency(w http.ResponseWriter, err error, reqID string) {
	if err == middleware.ErrIdempotencyConflict {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), reqID)
		return
	}
	api.FailErr(w, err, reqID)
}

func (h *Handler) record(r *http.Request, action, entityID string, after any) {
	actor, _ := middleware.GetActor(r.Context())
	err := h.Audit.Record(r.Context(), actor.EmployeeID, actor.Role, action, "payment", entityID, middleware.GetRequestID(r.Context()), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
