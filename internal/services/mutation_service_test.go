package services

import (
	"context"
	"errors"
	"testing"

	"cobranca/internal/core"
	"cobranca/internal/store"
	"cobranca/internal/store/memory"
)

func newTestService(t *testing.T) (*MutationService, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewMutationService(st, nil), st
}

func TestCreateClientAssignsID(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	id, err := svc.CreateClient(ctx, core.Client{Name: "Ana", CompanyID: "co-1"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	saved, err := st.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if saved.Name != "Ana" {
		t.Errorf("saved name = %q, want Ana", saved.Name)
	}
}

func TestCreateClientRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.CreateClient(ctx, core.Client{Name: "  "}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("CreateClient error = %v, want ErrEmptyName", err)
	}
}

func TestUpdateClient(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	id, err := svc.CreateClient(ctx, core.Client{Name: "Ana", CompanyID: "co-1"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	if err := svc.UpdateClient(ctx, core.Client{ID: id, Name: "Ana Souza", CompanyID: "co-1"}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	saved, err := st.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if saved.Name != "Ana Souza" {
		t.Errorf("saved name = %q, want Ana Souza", saved.Name)
	}

	err = svc.UpdateClient(ctx, core.Client{ID: "missing", Name: "Bia"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateClient error = %v, want ErrNotFound", err)
	}
}

func TestCreateContractGeneratesSchedule(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	clientID, err := svc.CreateClient(ctx, core.Client{Name: "Ana"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	start := core.NewDate(2025, 1, 15)
	contractID, err := svc.CreateContract(ctx, core.Contract{
		ClientID:   clientID,
		TotalValue: core.Money{Cents: 100000},
		StartDate:  start,
	}, 3)
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}

	installments, err := st.ListInstallments(ctx)
	if err != nil {
		t.Fatalf("ListInstallments: %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("generated %d installments, want 3", len(installments))
	}

	var total int64
	byNumber := make(map[int]core.Installment, 3)
	for _, inst := range installments {
		if inst.ContractID != contractID {
			t.Errorf("installment %s references contract %s", inst.ID, inst.ContractID)
		}
		if inst.Status != core.StatusOpen {
			t.Errorf("installment %d status = %s, want open", inst.InstallmentNumber, inst.Status)
		}
		if inst.TotalInstallments != 3 {
			t.Errorf("installment %d total = %d, want 3", inst.InstallmentNumber, inst.TotalInstallments)
		}
		total += inst.Value.Cents
		byNumber[inst.InstallmentNumber] = inst
	}
	// 100000 / 3: leftover cent lands on the first installment.
	if total != 100000 {
		t.Errorf("installment values sum to %d, want 100000", total)
	}
	if byNumber[1].Value.Cents != 33334 || byNumber[2].Value.Cents != 33333 {
		t.Errorf("split = %d/%d/%d, want 33334/33333/33333",
			byNumber[1].Value.Cents, byNumber[2].Value.Cents, byNumber[3].Value.Cents)
	}

	// Monthly due dates from the start date.
	for n := 1; n <= 3; n++ {
		want := start.AddMonths(n - 1)
		if !byNumber[n].DueDate.Equal(want.Time) {
			t.Errorf("installment %d due = %s, want %s", n, byNumber[n].DueDate, want)
		}
	}
}

func TestCreateContractUnknownClient(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateContract(ctx, core.Contract{
		ClientID:   "missing",
		TotalValue: core.Money{Cents: 1000},
		StartDate:  core.NewDate(2025, 1, 1),
	}, 2)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("CreateContract error = %v, want ErrNotFound", err)
	}
}

func TestPayInstallment(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	st.PutInstallment(ctx, core.Installment{
		ID: "in-1", ContractID: "ct-1",
		Value: core.Money{Cents: 100}, DueDate: core.NewDate(2025, 6, 1),
		Status: core.StatusOverdue,
	})

	paidDate := core.NewDate(2025, 6, 10)
	if err := svc.PayInstallment(ctx, "in-1", paidDate); err != nil {
		t.Fatalf("PayInstallment: %v", err)
	}

	inst, _ := st.GetInstallment(ctx, "in-1")
	if inst.Status != core.StatusPaid {
		t.Errorf("status = %s, want paid", inst.Status)
	}
	if !inst.PaidDate.Equal(paidDate.Time) {
		t.Errorf("paid date = %s, want %s", inst.PaidDate, paidDate)
	}

	if err := svc.PayInstallment(ctx, "in-1", paidDate); !errors.Is(err, core.ErrAlreadyPaid) {
		t.Errorf("second pay error = %v, want ErrAlreadyPaid", err)
	}
}

func TestCreateFixedBillGeneratesInstallments(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	start := core.NewDate(2025, 2, 5)
	billID, err := svc.CreateFixedBill(ctx, core.FixedBill{
		Name:              "Rent",
		CompanyID:         "co-1",
		TotalValue:        core.Money{Cents: 240000},
		TotalInstallments: 12,
		StartDate:         start,
	})
	if err != nil {
		t.Fatalf("CreateFixedBill: %v", err)
	}

	installments, _ := st.ListFixedBillInstallments(ctx)
	if len(installments) != 12 {
		t.Fatalf("generated %d installments, want 12", len(installments))
	}
	var total int64
	for _, inst := range installments {
		if inst.FixedBillID != billID {
			t.Errorf("installment %s references bill %s", inst.ID, inst.FixedBillID)
		}
		if inst.Value != inst.OriginalValue {
			t.Errorf("installment %d value %d != original %d",
				inst.InstallmentNumber, inst.Value.Cents, inst.OriginalValue.Cents)
		}
		total += inst.Value.Cents
	}
	if total != 240000 {
		t.Errorf("installment values sum to %d, want 240000", total)
	}
}

func TestFixedBillPayReopenThroughService(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	billID, err := svc.CreateFixedBill(ctx, core.FixedBill{
		Name:              "Internet",
		TotalValue:        core.Money{Cents: 12000},
		TotalInstallments: 2,
		StartDate:         core.NewDate(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("CreateFixedBill: %v", err)
	}

	installments, _ := st.ListFixedBillInstallments(ctx)
	target := installments[0]
	if target.FixedBillID != billID {
		t.Fatalf("installment bill = %s, want %s", target.FixedBillID, billID)
	}

	err = svc.PayFixedBillInstallment(ctx, target.ID, core.NewDate(2025, 3, 1), "pix", core.Money{Cents: 500})
	if err != nil {
		t.Fatalf("PayFixedBillInstallment: %v", err)
	}

	paid, _ := st.GetFixedBillInstallment(ctx, target.ID)
	if paid.Status != core.StatusPaid || paid.Value.Cents != 5500 {
		t.Errorf("after pay: status=%s value=%d, want paid/5500", paid.Status, paid.Value.Cents)
	}

	if err := svc.ReopenFixedBillInstallment(ctx, target.ID); err != nil {
		t.Fatalf("ReopenFixedBillInstallment: %v", err)
	}
	reopened, _ := st.GetFixedBillInstallment(ctx, target.ID)
	if reopened.Status != core.StatusOpen || reopened.Value.Cents != 6000 {
		t.Errorf("after reopen: status=%s value=%d, want open/6000", reopened.Status, reopened.Value.Cents)
	}
}

func TestMarkCommissionPaid(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	empID, err := svc.CreateEmployee(ctx, core.Employee{Name: "Bia", Salary: core.Money{Cents: 300000}})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}

	commID, err := svc.CreateCommission(ctx, core.Commission{
		EmployeeID:     empID,
		Amount:         core.Money{Cents: 5000},
		CommissionDate: core.NewDate(2025, 5, 1),
		Status:         core.CommissionPending,
	})
	if err != nil {
		t.Fatalf("CreateCommission: %v", err)
	}

	paidDate := core.NewDate(2025, 5, 15)
	if err := svc.MarkCommissionPaid(ctx, commID, paidDate); err != nil {
		t.Fatalf("MarkCommissionPaid: %v", err)
	}

	c, _ := st.GetCommission(ctx, commID)
	if c.Status != core.CommissionPaid {
		t.Errorf("status = %s, want paid", c.Status)
	}
	if !c.PaidDate.Equal(paidDate.Time) {
		t.Errorf("paid date = %s, want %s", c.PaidDate, paidDate)
	}

	if err := svc.MarkCommissionPaid(ctx, commID, paidDate); !errors.Is(err, core.ErrAlreadyPaid) {
		t.Errorf("second mark error = %v, want ErrAlreadyPaid", err)
	}
}
