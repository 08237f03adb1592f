// Package memory is an in-process ReportWriter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cobranca/internal/core"
)

type Writer struct {
	mu            sync.Mutex
	debtReports   [][]core.ClientDebt
	statusReports [][]core.StatusBucket
}

func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteDebtReport(_ context.Context, _ core.Date, rows []core.ClientDebt) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debtReports = append(w.debtReports, append([]core.ClientDebt(nil), rows...))
	return fmt.Sprintf("mem:debt:%d", len(w.debtReports)), nil
}

func (w *Writer) WriteStatusSummary(_ context.Context, _ core.Date, buckets []core.StatusBucket) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.statusReports = append(w.statusReports, append([]core.StatusBucket(nil), buckets...))
	return fmt.Sprintf("mem:summary:%d", len(w.statusReports)), nil
}

// DebtReports returns the captured debt report writes.
func (w *Writer) DebtReports() [][]core.ClientDebt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]core.ClientDebt(nil), w.debtReports...)
}

// StatusReports returns the captured summary writes.
func (w *Writer) StatusReports() [][]core.StatusBucket {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]core.StatusBucket(nil), w.statusReports...)
}
