package http

import (
	"log/slog"
	"net/http"

	"cobranca/internal/core"
)

type createClientRequest struct {
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	EntryDate core.Date `json:"entry_date"`
}

type updateClientRequest struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	EntryDate core.Date `json:"entry_date"`
}

type createContractRequest struct {
	ClientID     string    `json:"client_id"`
	Description  string    `json:"description"`
	TotalValue   string    `json:"total_value"`
	StartDate    core.Date `json:"start_date"`
	Installments int       `json:"installments"`
}

type payInstallmentRequest struct {
	ID       string    `json:"id"`
	PaidDate core.Date `json:"paid_date"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// handleClients creates (POST), updates (PUT), or deletes (DELETE) a client.
// Deleting cascades to the client's contracts and installments.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateClient(w, r)
	case http.MethodPut:
		s.handleUpdateClient(w, r)
	case http.MethodDelete:
		s.handleDeleteClient(w, r)
	default:
		methodNotAllowed(w, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	client := core.Client{
		CompanyID: sanitizeInput(req.CompanyID),
		Name:      sanitizeInput(req.Name),
		Document:  sanitizeInput(req.Document),
		Email:     sanitizeInput(req.Email),
		Phone:     sanitizeInput(req.Phone),
		EntryDate: req.EntryDate,
	}

	id, err := s.mutations.CreateClient(r.Context(), client)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create client failed", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing id")
		return
	}

	client := core.Client{
		ID:        sanitizeInput(req.ID),
		CompanyID: sanitizeInput(req.CompanyID),
		Name:      sanitizeInput(req.Name),
		Document:  sanitizeInput(req.Document),
		Email:     sanitizeInput(req.Email),
		Phone:     sanitizeInput(req.Phone),
		EntryDate: req.EntryDate,
	}

	if err := s.mutations.UpdateClient(r.Context(), client); err != nil {
		slog.ErrorContext(r.Context(), "Update client failed", "error", err, "client_id", req.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	if err := s.mutations.DeleteClient(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete client failed", "error", err, "client_id", id)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateContract creates a contract and its monthly installment schedule.
func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req createContractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing client_id")
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

	contract := core.Contract{
		ClientID:    sanitizeInput(req.ClientID),
		Description: sanitizeInput(req.Description),
		TotalValue:  core.Money{Cents: cents},
		StartDate:   req.StartDate,
	}

	id, err := s.mutations.CreateContract(r.Context(), contract, req.Installments)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create contract failed", "error", err, "client_id", req.ClientID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handlePayInstallment marks a contract installment as paid.
func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req payInstallmentRequest
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

	if err := s.mutations.PayInstallment(r.Context(), req.ID, paidDate); err != nil {
		slog.ErrorContext(r.Context(), "Pay installment failed", "error", err, "installment_id", req.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}
