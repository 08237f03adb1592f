package services

import (
	"context"
	"testing"

	"cobranca/internal/core"
	"cobranca/internal/store/memory"
)

func TestSnapshotLoaderLoadsAllCollections(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.PutClient(ctx, core.Client{ID: "cl-1", Name: "Ana"})
	st.PutContract(ctx, core.Contract{ID: "ct-1", ClientID: "cl-1"})
	st.PutInstallment(ctx, core.Installment{ID: "in-1", ContractID: "ct-1"})
	st.PutEmployee(ctx, core.Employee{ID: "em-1", Name: "Bia"})

	snap, err := NewSnapshotLoader(st).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(snap.Clients) != 1 || len(snap.Contracts) != 1 || len(snap.Installments) != 1 {
		t.Errorf("loaded %d/%d/%d clients/contracts/installments, want 1/1/1",
			len(snap.Clients), len(snap.Contracts), len(snap.Installments))
	}

	// Empty collections come back non-nil: "confirmed zero rows", not
	// "unloaded". The KPI loading shape depends on this.
	if snap.Commissions == nil || snap.FixedBills == nil || snap.FixedBillInstallments == nil || snap.EmployeePayments == nil {
		t.Error("empty collections should be non-nil after a successful load")
	}

	if got := snap.KPIs(core.NewDate(2025, 6, 15)); got.TotalClients != 1 {
		t.Errorf("KPIs on loaded snapshot: TotalClients = %d, want 1", got.TotalClients)
	}
}
