package core

import (
	"errors"
	"testing"
)

func TestFixedBillInstallmentPayReopenRoundTrip(t *testing.T) {
	inst := FixedBillInstallment{
		ID:          "fbi-1",
		FixedBillID: "fb-1",
		Value:       Money{Cents: 10000},
		DueDate:     NewDate(2025, 7, 10),
		Status:      StatusOpen,
	}

	paid, err := inst.Pay(NewDate(2025, 7, 8), "pix", Money{Cents: 1500})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if paid.Status != StatusPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	if paid.Value.Cents != 8500 {
		t.Errorf("value after discount = %d, want 8500", paid.Value.Cents)
	}
	if paid.OriginalValue.Cents != 10000 {
		t.Errorf("original value = %d, want 10000", paid.OriginalValue.Cents)
	}
	if paid.Discount.Cents != 1500 {
		t.Errorf("discount = %d, want 1500", paid.Discount.Cents)
	}
	if paid.PaymentMethod != "pix" {
		t.Errorf("payment method = %q, want pix", paid.PaymentMethod)
	}

	reopened, err := paid.Reopen()
	if err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if reopened.Status != StatusOpen {
		t.Errorf("status = %s, want open", reopened.Status)
	}
	if reopened.Value.Cents != 10000 {
		t.Errorf("restored value = %d, want 10000", reopened.Value.Cents)
	}
	if !reopened.Discount.IsZero() {
		t.Errorf("discount not cleared: %d", reopened.Discount.Cents)
	}
	if !reopened.PaidDate.IsZero() {
		t.Errorf("paid date not cleared: %s", reopened.PaidDate)
	}
	if reopened.PaymentMethod != "" {
		t.Errorf("payment method not cleared: %q", reopened.PaymentMethod)
	}
}

func TestFixedBillInstallmentPayAlreadyPaid(t *testing.T) {
	inst := FixedBillInstallment{
		ID:     "fbi-1",
		Value:  Money{Cents: 5000},
		Status: StatusPaid,
	}

	if _, err := inst.Pay(NewDate(2025, 7, 8), "cash", Money{}); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Pay() error = %v, want ErrAlreadyPaid", err)
	}
}

func TestFixedBillInstallmentPayNegativeDiscount(t *testing.T) {
	inst := FixedBillInstallment{
		ID:     "fbi-1",
		Value:  Money{Cents: 5000},
		Status: StatusOpen,
	}

	if _, err := inst.Pay(NewDate(2025, 7, 8), "cash", Money{Cents: -1}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Pay() error = %v, want ErrInvalidAmount", err)
	}
}

func TestFixedBillInstallmentReopenNotPaid(t *testing.T) {
	inst := FixedBillInstallment{
		ID:     "fbi-1",
		Value:  Money{Cents: 5000},
		Status: StatusOpen,
	}

	if _, err := inst.Reopen(); !errors.Is(err, ErrNotPaid) {
		t.Errorf("Reopen() error = %v, want ErrNotPaid", err)
	}
}

func TestFixedBillInstallmentReopenLegacyRow(t *testing.T) {
	// Rows written before OriginalValue existed reconstruct it from
	// value plus discount.
	inst := FixedBillInstallment{
		ID:       "fbi-old",
		Value:    Money{Cents: 8500},
		Discount: Money{Cents: 1500},
		Status:   StatusPaid,
	}

	reopened, err := inst.Reopen()
	if err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	if reopened.Value.Cents != 10000 {
		t.Errorf("restored value = %d, want 10000", reopened.Value.Cents)
	}
}

func TestFixedBillInstallmentEffectiveStatus(t *testing.T) {
	today := NewDate(2025, 7, 10)

	tests := []struct {
		name string
		inst FixedBillInstallment
		want Status
	}{
		{"paid stays paid even when past due", FixedBillInstallment{Status: StatusPaid, DueDate: NewDate(2025, 6, 1)}, StatusPaid},
		{"open past due projects overdue", FixedBillInstallment{Status: StatusOpen, DueDate: NewDate(2025, 7, 9)}, StatusOverdue},
		{"open due today stays open", FixedBillInstallment{Status: StatusOpen, DueDate: today}, StatusOpen},
		{"open due later stays open", FixedBillInstallment{Status: StatusOpen, DueDate: NewDate(2025, 8, 1)}, StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inst.EffectiveStatus(today); got != tt.want {
				t.Errorf("EffectiveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFixedBillRollups(t *testing.T) {
	snap := Snapshot{
		FixedBills: []FixedBill{
			{ID: "fb-1", Name: "Rent", TotalInstallments: 3},
			{ID: "fb-2", Name: "Internet", TotalInstallments: 1},
		},
		FixedBillInstallments: []FixedBillInstallment{
			{ID: "a", FixedBillID: "fb-1", Value: Money{Cents: 900}, OriginalValue: Money{Cents: 1000}, Discount: Money{Cents: 100}, DueDate: NewDate(2025, 5, 1), Status: StatusPaid},
			{ID: "b", FixedBillID: "fb-1", Value: Money{Cents: 1000}, DueDate: NewDate(2025, 7, 1), Status: StatusOpen},
			{ID: "c", FixedBillID: "fb-1", Value: Money{Cents: 1000}, DueDate: NewDate(2025, 6, 1), Status: StatusOpen},
			{ID: "d", FixedBillID: "fb-2", Value: Money{Cents: 500}, DueDate: NewDate(2025, 6, 15), Status: StatusPaid},
		},
	}

	rollups := snap.FixedBillRollups()
	if len(rollups) != 2 {
		t.Fatalf("expected 2 rollups, got %d", len(rollups))
	}

	rent := rollups[0]
	if rent.Bill.ID != "fb-1" {
		t.Fatalf("first rollup = %s, want fb-1 (input order)", rent.Bill.ID)
	}
	if rent.TotalPaid.Cents != 900 {
		t.Errorf("total paid = %d, want 900", rent.TotalPaid.Cents)
	}
	if rent.TotalPending.Cents != 2000 {
		t.Errorf("total pending = %d, want 2000", rent.TotalPending.Cents)
	}
	if rent.TotalDiscount.Cents != 100 {
		t.Errorf("total discount = %d, want 100", rent.TotalDiscount.Cents)
	}
	wantNext := NewDate(2025, 6, 1)
	if !rent.NextDueDate.Equal(wantNext.Time) {
		t.Errorf("next due = %s, want %s", rent.NextDueDate, wantNext)
	}

	internet := rollups[1]
	if !internet.NextDueDate.IsZero() {
		t.Errorf("fully paid bill should have no next due date, got %s", internet.NextDueDate)
	}
}
