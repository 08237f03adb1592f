package sheets

import (
	"context"

	"cobranca/internal/core"
)

// Ports for outbound report export.
type (
	// DebtReportWriter appends a debt rollup report to an external sheet.
	DebtReportWriter interface {
		// WriteDebtReport replaces the report rows and returns a reference
		// to the written range.
		WriteDebtReport(ctx context.Context, asOf core.Date, rows []core.ClientDebt) (ref string, err error)
	}

	// StatusSummaryWriter appends a status cross-tab to an external sheet.
	StatusSummaryWriter interface {
		WriteStatusSummary(ctx context.Context, asOf core.Date, buckets []core.StatusBucket) (ref string, err error)
	}

	// ReportWriter is the full export surface the worker depends on.
	ReportWriter interface {
		DebtReportWriter
		StatusSummaryWriter
	}
)
