package http

import (
	"log/slog"
	"net/http"

	"cobranca/internal/core"
)

type createFixedBillRequest struct {
	CompanyID    string    `json:"company_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TotalValue   string    `json:"total_value"`
	Installments int       `json:"installments"`
	StartDate    core.Date `json:"start_date"`
}

type payFixedBillInstallmentRequest struct {
	ID            string    `json:"id"`
	PaidDate      core.Date `json:"paid_date"`
	PaymentMethod string    `json:"payment_method"`
	Discount      string    `json:"discount"`
}

type reopenFixedBillInstallmentRequest struct {
	ID string `json:"id"`
}

type fixedBillResponse struct {
	BillID             string                         `json:"bill_id"`
	Name               string                         `json:"name"`
	Description        string                         `json:"description"`
	TotalValueCents    int64                          `json:"total_value_cents"`
	TotalPaidCents     int64                          `json:"total_paid_cents"`
	TotalPaid          string                         `json:"total_paid"`
	TotalPendingCents  int64                          `json:"total_pending_cents"`
	TotalPending       string                         `json:"total_pending"`
	TotalDiscountCents int64                          `json:"total_discount_cents"`
	NextDueDate        core.Date                      `json:"next_due_date"`
	Installments       []fixedBillInstallmentResponse `json:"installments"`
}

type fixedBillInstallmentResponse struct {
	ID                string    `json:"id"`
	InstallmentNumber int       `json:"installment_number"`
	ValueCents        int64     `json:"value_cents"`
	Value             string    `json:"value"`
	DueDate           core.Date `json:"due_date"`
	PaidDate          core.Date `json:"paid_date"`
	Status            string    `json:"status"`
	PaymentMethod     string    `json:"payment_method"`
	DiscountCents     int64     `json:"discount_cents"`
	Notes             string    `json:"notes"`
}

// handleFixedBills lists rollups (GET), creates a bill with its installment
// schedule (POST), or deletes a bill and its installments (DELETE).
func (s *Server) handleFixedBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListFixedBills(w, r)
	case http.MethodPost:
		s.handleCreateFixedBill(w, r)
	case http.MethodDelete:
		s.handleDeleteFixedBill(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleListFixedBills(w http.ResponseWriter, r *http.Request) {
	snap, today, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	rollups := snap.FixedBillRollups()
	out := make([]fixedBillResponse, 0, len(rollups))
	for _, summary := range rollups {
		resp := fixedBillResponse{
			BillID:             summary.Bill.ID,
			Name:               summary.Bill.Name,
			Description:        summary.Bill.Description,
			TotalValueCents:    summary.Bill.TotalValue.Cents,
			TotalPaidCents:     summary.TotalPaid.Cents,
			TotalPaid:          formatReais(summary.TotalPaid.Cents),
			TotalPendingCents:  summary.TotalPending.Cents,
			TotalPending:       formatReais(summary.TotalPending.Cents),
			TotalDiscountCents: summary.TotalDiscount.Cents,
			NextDueDate:        summary.NextDueDate,
			Installments:       make([]fixedBillInstallmentResponse, 0, len(summary.Installments)),
		}
		for _, inst := range summary.Installments {
			resp.Installments = append(resp.Installments, fixedBillInstallmentResponse{
				ID:                inst.ID,
				InstallmentNumber: inst.InstallmentNumber,
				ValueCents:        inst.Value.Cents,
				Value:             formatReais(inst.Value.Cents),
				DueDate:           inst.DueDate,
				PaidDate:          inst.PaidDate,
				Status:            string(inst.EffectiveStatus(today)),
				PaymentMethod:     inst.PaymentMethod,
				DiscountCents:     inst.Discount.Cents,
				Notes:             inst.Notes,
			})
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFixedBill(w http.ResponseWriter, r *http.Request) {
	var req createFixedBillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Installments < 1 {
		writeError(w, http.StatusUnprocessableEntity, "installments must be at least 1")
		return
	}

	cents, err := core.ParseDecimalToCents(req.TotalValue)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid total_value")
		return
	}

	bill := core.FixedBill{
		CompanyID:         sanitizeInput(req.CompanyID),
		Name:              sanitizeInput(req.Name),
		Description:       sanitizeInput(req.Description),
		TotalValue:        core.Money{Cents: cents},
		TotalInstallments: req.Installments,
		StartDate:         req.StartDate,
	}

	id, err := s.mutations.CreateFixedBill(r.Context(), bill)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create fixed bill failed", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleDeleteFixedBill(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	if err := s.mutations.DeleteFixedBill(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete fixed bill failed", "error", err, "fixed_bill_id", id)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}

// handlePayFixedBillInstallment pays one installment, optionally with a
// discount. Paying an already-paid installment is a conflict; reopen first.
func (s *Server) handlePayFixedBillInstallment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req payFixedBillInstallmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing id")
		return
	}

	discountCents, err := core.ParseOptionalCents(req.Discount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid discount")
		return
	}

	paidDate := req.PaidDate
	if paidDate.IsZero() {
		paidDate = core.DateOf(timeNow())
	}

	err = s.mutations.PayFixedBillInstallment(r.Context(), req.ID, paidDate,
		sanitizeInput(req.PaymentMethod), core.Money{Cents: discountCents})
	if err != nil {
		slog.ErrorContext(r.Context(), "Pay fixed bill installment failed", "error", err, "installment_id", req.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}

// handleReopenFixedBillInstallment reverses a payment, restoring the
// pre-payment value.
func (s *Server) handleReopenFixedBillInstallment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req reopenFixedBillInstallmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing id")
		return
	}

	if err := s.mutations.ReopenFixedBillInstallment(r.Context(), req.ID); err != nil {
		slog.ErrorContext(r.Context(), "Reopen fixed bill installment failed", "error", err, "installment_id", req.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}
