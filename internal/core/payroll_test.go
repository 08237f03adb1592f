package core

import "testing"

func TestPayroll(t *testing.T) {
	snap := Snapshot{
		EmployeePayments: []EmployeePayment{
			{ID: "p1", EmployeeID: "e1", Amount: Money{Cents: 300000}, Type: PaymentSalary},
			{ID: "p2", EmployeeID: "e2", Amount: Money{Cents: 280000}, Type: PaymentSalary},
			{ID: "p3", EmployeeID: "e1", Amount: Money{Cents: 50000}, Type: PaymentBonus},
			{ID: "p4", EmployeeID: "e2", Amount: Money{Cents: 100000}, Type: PaymentAdvance},
		},
	}

	got := snap.Payroll()
	if got.Total.Cents != 730000 {
		t.Errorf("total = %d, want 730000", got.Total.Cents)
	}
	if got.ByType[PaymentSalary].Cents != 580000 {
		t.Errorf("salary total = %d, want 580000", got.ByType[PaymentSalary].Cents)
	}
	if got.CountByType[PaymentSalary] != 2 {
		t.Errorf("salary count = %d, want 2", got.CountByType[PaymentSalary])
	}
	if got.ByType[PaymentBonus].Cents != 50000 {
		t.Errorf("bonus total = %d, want 50000", got.ByType[PaymentBonus].Cents)
	}
	if got.CountByType[PaymentAdvance] != 1 {
		t.Errorf("advance count = %d, want 1", got.CountByType[PaymentAdvance])
	}
}

func TestCommissionTotals(t *testing.T) {
	snap := Snapshot{
		Commissions: []Commission{
			{ID: "c1", EmployeeID: "e1", Amount: Money{Cents: 5000}, Status: CommissionPending},
			{ID: "c2", EmployeeID: "e1", Amount: Money{Cents: 7000}, Status: CommissionPaid},
			{ID: "c3", EmployeeID: "e2", Amount: Money{Cents: 3000}, Status: CommissionPending},
		},
	}

	got := snap.CommissionTotals()
	if got.PendingCount != 2 || got.PendingValue.Cents != 8000 {
		t.Errorf("pending = %d/%d, want 2/8000", got.PendingCount, got.PendingValue.Cents)
	}
	if got.PaidCount != 1 || got.PaidValue.Cents != 7000 {
		t.Errorf("paid = %d/%d, want 1/7000", got.PaidCount, got.PaidValue.Cents)
	}
}

func TestCommissionTotalsEmpty(t *testing.T) {
	var snap Snapshot
	got := snap.CommissionTotals()
	if got != (CommissionSummary{}) {
		t.Errorf("empty snapshot commissions = %+v, want zeros", got)
	}
}
