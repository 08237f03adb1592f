package http

import (
	"net/http"

	"cobranca/internal/core"
	"cobranca/internal/log"
)

type kpiResponse struct {
	TotalClients       int    `json:"total_clients"`
	OpenValueCents     int64  `json:"open_value_cents"`
	OpenValue          string `json:"open_value"`
	OverdueValueCents  int64  `json:"overdue_value_cents"`
	OverdueValue       string `json:"overdue_value"`
	ClientsWithOverdue int    `json:"clients_with_overdue"`
}

type statusBucketResponse struct {
	Status          string `json:"status"`
	Count           int    `json:"count"`
	TotalValueCents int64  `json:"total_value_cents"`
	TotalValue      string `json:"total_value"`
	AvgDaysOverdue  int    `json:"avg_days_overdue"`
}

type collectionItemResponse struct {
	InstallmentID     string    `json:"installment_id"`
	ContractID        string    `json:"contract_id"`
	ClientName        string    `json:"client_name"`
	InstallmentNumber int       `json:"installment_number"`
	TotalInstallments int       `json:"total_installments"`
	ValueCents        int64     `json:"value_cents"`
	Value             string    `json:"value"`
	DueDate           core.Date `json:"due_date"`
	DaysOverdue       int       `json:"days_overdue"`
}

type clientDebtResponse struct {
	ClientID         string    `json:"client_id"`
	ClientName       string    `json:"client_name"`
	ContractID       string    `json:"contract_id"`
	Description      string    `json:"contract_description"`
	TotalDebtCents   int64     `json:"total_debt_cents"`
	TotalDebt        string    `json:"total_debt"`
	OverdueCount     int       `json:"overdue_count"`
	OldestOverdue    core.Date `json:"oldest_overdue"`
	InstallmentCount int       `json:"installment_count"`
}

// handleKPIs serves the dashboard headline tiles.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, today, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	kpi := snap.KPIs(today)
	writeJSON(w, http.StatusOK, kpiResponse{
		TotalClients:       kpi.TotalClients,
		OpenValueCents:     kpi.OpenValue.Cents,
		OpenValue:          formatReais(kpi.OpenValue.Cents),
		OverdueValueCents:  kpi.OverdueValue.Cents,
		OverdueValue:       formatReais(kpi.OverdueValue.Cents),
		ClientsWithOverdue: kpi.ClientsWithOverdue,
	})
}

// handleStatusSummary serves the three-bucket status cross-tab.
func (s *Server) handleStatusSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, today, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	buckets := snap.StatusCrossTab(today)
	out := make([]statusBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, statusBucketResponse{
			Status:          string(b.Status),
			Count:           b.Count,
			TotalValueCents: b.TotalValue.Cents,
			TotalValue:      formatReais(b.TotalValue.Cents),
			AvgDaysOverdue:  b.AvgDaysOverdue,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleOverdueList serves installments stored as overdue, oldest first.
func (s *Server) handleOverdueList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, today, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toCollectionItems(snap.OverdueList(today)))
}

// handleUpcomingList serves unpaid installments due on or after today.
func (s *Server) handleUpcomingList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, today, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toCollectionItems(snap.UpcomingList(today)))
}

// handleClientDebts serves the per-contract debt rollups, largest debt first.
func (s *Server) handleClientDebts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap, _, ok := s.scopedSnapshot(w, r)
	if !ok {
		return
	}

	rollups := snap.ClientDebtRollups()
	out := make([]clientDebtResponse, 0, len(rollups))
	for _, row := range rollups {
		out = append(out, clientDebtResponse{
			ClientID:         row.Client.ID,
			ClientName:       row.Client.Name,
			ContractID:       row.Contract.ID,
			Description:      row.Contract.Description,
			TotalDebtCents:   row.TotalDebt.Cents,
			TotalDebt:        formatReais(row.TotalDebt.Cents),
			OverdueCount:     row.OverdueCount,
			OldestOverdue:    row.OldestOverdue,
			InstallmentCount: len(row.Installments),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// scopedSnapshot loads the cached snapshot narrowed to the request's company
// scope plus the reference day. On failure it writes the error response and
// returns ok=false.
func (s *Server) scopedSnapshot(w http.ResponseWriter, r *http.Request) (core.Snapshot, core.Date, bool) {
	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Snapshot{}, core.Date{}, false
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Snapshot load failed",
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "failed to load data")
		return core.Snapshot{}, core.Date{}, false
	}

	return snap.Scoped(parseScope(r)), today, true
}

func toCollectionItems(items []core.CollectionItem) []collectionItemResponse {
	out := make([]collectionItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, collectionItemResponse{
			InstallmentID:     item.Installment.ID,
			ContractID:        item.Installment.ContractID,
			ClientName:        item.ClientName,
			InstallmentNumber: item.Installment.InstallmentNumber,
			TotalInstallments: item.Installment.TotalInstallments,
			ValueCents:        item.Installment.Value.Cents,
			Value:             formatReais(item.Installment.Value.Cents),
			DueDate:           item.Installment.DueDate,
			DaysOverdue:       item.DaysOverdue,
		})
	}
	return out
}
