package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(2025, 6, 15)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-06-15"` {
		t.Errorf("marshaled = %s, want \"2025-06-15\"", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestDateMarshalAbsent(t *testing.T) {
	b, err := json.Marshal(Date{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "null" {
		t.Errorf("absent date marshaled = %s, want null", b)
	}

	var d Date
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !d.IsEmpty() {
		t.Error("null should unmarshal to absent date")
	}
}

func TestDateOfTruncates(t *testing.T) {
	ts := time.Date(2025, 6, 15, 23, 59, 58, 0, time.UTC)
	d := DateOf(ts)
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("DateOf did not truncate: %s", d.Time)
	}
	if d.String() != "2025-06-15" {
		t.Errorf("DateOf = %s, want 2025-06-15", d)
	}
}

func TestDateAddMonths(t *testing.T) {
	d := NewDate(2025, 1, 31)
	// time.AddDate normalizes Feb 31 to Mar 3.
	if got := d.AddMonths(1).String(); got != "2025-03-03" {
		t.Errorf("AddMonths(1) = %s, want 2025-03-03", got)
	}
	if got := NewDate(2025, 1, 15).AddMonths(2).String(); got != "2025-03-15" {
		t.Errorf("AddMonths(2) = %s, want 2025-03-15", got)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusPaid, StatusOverdue} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("cancelled").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestClientValidate(t *testing.T) {
	tests := []struct {
		name    string
		client  Client
		wantErr error
	}{
		{"valid", Client{ID: "c1", Name: "Ana"}, nil},
		{"empty name", Client{ID: "c1"}, ErrEmptyName},
		{"whitespace name", Client{ID: "c1", Name: "   "}, ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	long := Client{ID: "c1", Name: strings.Repeat("x", 201)}
	if long.Validate() == nil {
		t.Error("over-long name should fail validation")
	}
}

func TestInstallmentValidate(t *testing.T) {
	valid := Installment{
		ID:                "i1",
		ContractID:        "ct1",
		InstallmentNumber: 1,
		TotalInstallments: 3,
		Value:             Money{Cents: 100},
		DueDate:           NewDate(2025, 6, 1),
		Status:            StatusOpen,
	}

	tests := []struct {
		name    string
		mutate  func(*Installment)
		wantErr bool
	}{
		{"valid", func(*Installment) {}, false},
		{"missing contract", func(i *Installment) { i.ContractID = "" }, true},
		{"missing due date", func(i *Installment) { i.DueDate = Date{} }, true},
		{"bad status", func(i *Installment) { i.Status = "???" }, true},
		{"negative value", func(i *Installment) { i.Value = Money{Cents: -1} }, true},
		{"number above total", func(i *Installment) { i.InstallmentNumber = 4 }, true},
		{"number zero", func(i *Installment) { i.InstallmentNumber = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := valid
			tt.mutate(&inst)
			if err := inst.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFixedBillValidate(t *testing.T) {
	valid := FixedBill{
		ID:                "fb1",
		Name:              "Rent",
		TotalValue:        Money{Cents: 120000},
		TotalInstallments: 12,
		StartDate:         NewDate(2025, 1, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid bill rejected: %v", err)
	}

	noInstallments := valid
	noInstallments.TotalInstallments = 0
	if noInstallments.Validate() == nil {
		t.Error("zero installments should fail validation")
	}

	noStart := valid
	noStart.StartDate = Date{}
	if !errors.Is(noStart.Validate(), ErrMissingStartDate) {
		t.Error("missing start date should fail validation")
	}
}
