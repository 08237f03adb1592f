package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"cobranca/internal/amqp"
	"cobranca/internal/core"
	"cobranca/internal/services"
	"cobranca/internal/sheets"
)

// ExportWorker pushes the derived debt report and status summary to an
// external spreadsheet. Change messages only mark the snapshot dirty; the
// actual export runs on the periodic tick, so a burst of writes costs one
// export instead of one per message.
type ExportWorker struct {
	loader  *services.SnapshotLoader
	writer  sheets.ReportWriter
	maxRows int
	dirty   atomic.Bool
}

// NewExportWorker creates a worker. maxRows caps the debt report rows written
// per export (sheet payloads have size limits); zero or negative means no cap.
func NewExportWorker(loader *services.SnapshotLoader, writer sheets.ReportWriter, maxRows int) *ExportWorker {
	w := &ExportWorker{
		loader:  loader,
		writer:  writer,
		maxRows: maxRows,
	}
	// First tick always exports.
	w.dirty.Store(true)
	return w
}

// HandleChangeMessage records that the snapshot changed.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.EntityChangedMessage) error {
	w.dirty.Store(true)
	slog.DebugContext(ctx, "Snapshot marked dirty",
		"table", msg.Table,
		"id", msg.ID,
		"op", msg.Op)
	return nil
}

// ExportIfDirty exports when a change arrived since the last export.
// Returns whether an export ran.
func (w *ExportWorker) ExportIfDirty(ctx context.Context, today core.Date) (bool, error) {
	if !w.dirty.Swap(false) {
		return false, nil
	}
	if err := w.ExportReports(ctx, today); err != nil {
		// Keep the dirty flag so the next tick retries.
		w.dirty.Store(true)
		return false, err
	}
	return true, nil
}

// ExportReports loads a fresh snapshot, derives the debt rollups and the
// status cross-tab, and writes both sheets.
func (w *ExportWorker) ExportReports(ctx context.Context, today core.Date) error {
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if orphans := snap.OrphanInstallmentCount(); orphans > 0 {
		slog.WarnContext(ctx, "Snapshot has orphan installments", "orphan_count", orphans)
	}

	rollups := snap.ClientDebtRollups()
	if w.maxRows > 0 && len(rollups) > w.maxRows {
		// Rollups are sorted by debt descending, so the cap keeps the
		// largest debtors.
		slog.WarnContext(ctx, "Debt report truncated",
			"rows", len(rollups),
			"max_rows", w.maxRows)
		rollups = rollups[:w.maxRows]
	}
	ref, err := w.writer.WriteDebtReport(ctx, today, rollups)
	if err != nil {
		return fmt.Errorf("write debt report: %w", err)
	}

	buckets := snap.StatusCrossTab(today)
	summaryRef, err := w.writer.WriteStatusSummary(ctx, today, buckets)
	if err != nil {
		return fmt.Errorf("write status summary: %w", err)
	}

	slog.InfoContext(ctx, "Reports exported",
		"rollups", len(rollups),
		"sheets_ref", ref,
		"summary_ref", summaryRef)

	return nil
}
