package http

import (
	"log/slog"
	"net/http"

	"cobranca/internal/core"
)

type createEmployeeRequest struct {
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Salary   string    `json:"salary"`
	HireDate core.Date `json:"hire_date"`
}

type createEmployeePaymentRequest struct {
	EmployeeID  string    `json:"employee_id"`
	Amount      string    `json:"amount"`
	PaymentDate core.Date `json:"payment_date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ReceiptRef  string    `json:"receipt_ref"`
}

type createCommissionRequest struct {
	EmployeeID     string    `json:"employee_id"`
	InstallmentID  string    `json:"installment_id"`
	Amount         string    `json:"amount"`
	Percentage     float64   `json:"percentage"`
	CommissionDate core.Date `json:"commission_date"`
	Description    string    `json:"description"`
}

type markCommissionPaidRequest struct {
	ID       string    `json:"id"`
	PaidDate core.Date `json:"paid_date"`
}

type payrollTypeResponse struct {
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Count       int    `json:"count"`
}

type payrollResponse struct {
	TotalCents int64                          `json:"total_cents"`
	Total      string                         `json:"total"`
	ByType     map[string]payrollTypeResponse `json:"by_type"`
}

type commissionSummaryResponse struct {
	PendingCount      int    `json:"pending_count"`
	PendingValueCents int64  `json:"pending_value_cents"`
	PendingValue      string `json:"pending_value"`
	PaidCount         int    `json:"paid_count"`
	PaidValueCents    int64  `json:"paid_value_cents"`
	PaidValue         string `json:"paid_value"`
}

// handleCreateEmployee registers an employee.
func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req createEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	salaryCents, err := core.ParseOptionalCents(req.Salary)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid salary")
		return
	}

	employee := core.Employee{
		Name:     sanitizeInput(req.Name),
		Role:     sanitizeInput(req.Role),
		Email:    sanitizeInput(req.Email),
		Phone:    sanitizeInput(req.Phone),
		Salary:   core.Money{Cents: salaryCents},
		HireDate: req.HireDate,
		Active:   true,
	}

	id, err := s.mutations.CreateEmployee(r.Context(), employee)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create employee failed", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleCreateEmployeePayment records a payroll entry for an employee.
func (s *Server) handleCreateEmployeePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req createEmployeePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing employee_id")
		return
	}

	paymentType := core.PaymentType(sanitizeInput(req.Type))
	if !paymentType.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid payment type")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	payment := core.EmployeePayment{
		EmployeeID:  sanitizeInput(req.EmployeeID),
		Amount:      core.Money{Cents: cents},
		PaymentDate: req.PaymentDate,
		Type:        paymentType,
		Description: sanitizeInput(req.Description),
		ReceiptRef:  sanitizeInput(req.ReceiptRef),
	}

	id, err := s.mutations.CreateEmployeePayment(r.Context(), payment)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create employee payment failed", "error", err, "employee_id", req.EmployeeID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleCreateCommission records a pending commission for an employee.
func (s *Server) handleCreateCommission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req createCommissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing employee_id")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	commission := core.Commission{
		EmployeeID:     sanitizeInput(req.EmployeeID),
		InstallmentID:  sanitizeInput(req.InstallmentID),
		Amount:         core.Money{Cents: cents},
		Percentage:     req.Percentage,
		CommissionDate: req.CommissionDate,
		Status:         core.CommissionPending,
		Description:    sanitizeInput(req.Description),
	}

	id, err := s.mutations.CreateCommission(r.Context(), commission)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create commission failed", "error", err, "employee_id", req.EmployeeID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleMarkCommissionPaid transitions a pending commission to paid.
func (s *Server) handleMarkCommissionPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req markCommissionPaidRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing id")
		return
	}

	paidDate := req.PaidDate
	if paidDate.IsZero() {
		paidDate = core.DateOf(timeNow())
	}

	if err := s.mutations.MarkCommissionPaid(r.Context(), req.ID, paidDate); err != nil {
		slog.ErrorContext(r.Context(), "Mark commission paid failed", "error", err, "commission_id", req.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}

// handlePayrollSummary serves employee payment totals grouped by type.
func (s *Server) handlePayrollSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, _, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	payroll := snap.Payroll()
	resp := payrollResponse{
		TotalCents: payroll.Total.Cents,
		Total:      formatReais(payroll.Total.Cents),
		ByType:     make(map[string]payrollTypeResponse, len(payroll.ByType)),
	}
	for paymentType, amount := range payroll.ByType {
		resp.ByType[string(paymentType)] = payrollTypeResponse{
			AmountCents: amount.Cents,
			Amount:      formatReais(amount.Cents),
			Count:       payroll.CountByType[paymentType],
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCommissionSummary serves pending/paid commission totals.
func (s *Server) handleCommissionSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, _, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	totals := snap.CommissionTotals()
	writeJSON(w, http.StatusOK, commissionSummaryResponse{
		PendingCount:      totals.PendingCount,
		PendingValueCents: totals.PendingValue.Cents,
		PendingValue:      formatReais(totals.PendingValue.Cents),
		PaidCount:         totals.PaidCount,
		PaidValueCents:    totals.PaidValue.Cents,
		PaidValue:         formatReais(totals.PaidValue.Cents),
	})
}
