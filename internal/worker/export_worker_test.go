package worker

import (
	"context"
	"testing"

	"cobranca/internal/amqp"
	"cobranca/internal/core"
	"cobranca/internal/services"
	sheetsmem "cobranca/internal/sheets/memory"
	storemem "cobranca/internal/store/memory"
)

func TestExportReports(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	st.PutClient(ctx, core.Client{ID: "cl-1", Name: "Ana"})
	st.PutContract(ctx, core.Contract{ID: "ct-1", ClientID: "cl-1"})
	st.PutInstallment(ctx, core.Installment{
		ID: "in-1", ContractID: "ct-1",
		Value: core.Money{Cents: 10000}, DueDate: core.NewDate(2025, 6, 1),
		Status: core.StatusOverdue,
	})

	writer := sheetsmem.New()
	w := NewExportWorker(services.NewSnapshotLoader(st), writer, 0)

	today := core.NewDate(2025, 6, 15)
	if err := w.ExportReports(ctx, today); err != nil {
		t.Fatalf("ExportReports: %v", err)
	}

	debts := writer.DebtReports()
	if len(debts) != 1 {
		t.Fatalf("exported %d debt reports, want 1", len(debts))
	}
	if len(debts[0]) != 1 || debts[0][0].TotalDebt.Cents != 10000 {
		t.Errorf("debt report rows = %+v, want one rollup of 10000", debts[0])
	}

	summaries := writer.StatusReports()
	if len(summaries) != 1 || len(summaries[0]) != 3 {
		t.Fatalf("exported summaries = %d (buckets %d), want 1 with 3 buckets", len(summaries), len(summaries[0]))
	}
}

func TestExportReportsRowCap(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	st.PutClient(ctx, core.Client{ID: "cl-1", Name: "Ana"})
	st.PutClient(ctx, core.Client{ID: "cl-2", Name: "Bia"})
	st.PutContract(ctx, core.Contract{ID: "ct-1", ClientID: "cl-1"})
	st.PutContract(ctx, core.Contract{ID: "ct-2", ClientID: "cl-2"})
	st.PutInstallment(ctx, core.Installment{
		ID: "in-1", ContractID: "ct-1",
		Value: core.Money{Cents: 5000}, DueDate: core.NewDate(2025, 6, 1),
		Status: core.StatusOpen,
	})
	st.PutInstallment(ctx, core.Installment{
		ID: "in-2", ContractID: "ct-2",
		Value: core.Money{Cents: 20000}, DueDate: core.NewDate(2025, 6, 1),
		Status: core.StatusOpen,
	})

	writer := sheetsmem.New()
	w := NewExportWorker(services.NewSnapshotLoader(st), writer, 1)

	if err := w.ExportReports(ctx, core.NewDate(2025, 6, 15)); err != nil {
		t.Fatalf("ExportReports: %v", err)
	}

	debts := writer.DebtReports()
	if len(debts) != 1 || len(debts[0]) != 1 {
		t.Fatalf("exported rows = %+v, want a single capped row", debts)
	}
	// The cap keeps the largest debtor.
	if debts[0][0].TotalDebt.Cents != 20000 {
		t.Errorf("kept row debt = %d, want 20000", debts[0][0].TotalDebt.Cents)
	}
}

func TestExportIfDirty(t *testing.T) {
	ctx := context.Background()
	st := storemem.New()
	writer := sheetsmem.New()
	w := NewExportWorker(services.NewSnapshotLoader(st), writer, 0)
	today := core.NewDate(2025, 6, 15)

	// Fresh worker starts dirty.
	ran, err := w.ExportIfDirty(ctx, today)
	if err != nil {
		t.Fatalf("ExportIfDirty: %v", err)
	}
	if !ran {
		t.Error("first tick should export")
	}

	// Nothing changed since.
	ran, err = w.ExportIfDirty(ctx, today)
	if err != nil {
		t.Fatalf("ExportIfDirty: %v", err)
	}
	if ran {
		t.Error("clean worker should skip export")
	}

	// A change message makes the next tick export again.
	msg := amqp.NewEntityChangedMessage("installments", "in-1", amqp.OpUpdated)
	if err := w.HandleChangeMessage(ctx, msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}
	ran, err = w.ExportIfDirty(ctx, today)
	if err != nil {
		t.Fatalf("ExportIfDirty: %v", err)
	}
	if !ran {
		t.Error("dirty worker should export")
	}

	if got := len(writer.DebtReports()); got != 2 {
		t.Errorf("total exports = %d, want 2", got)
	}
}
