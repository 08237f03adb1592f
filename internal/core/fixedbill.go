package core

import (
	"errors"
	"sort"
)

var (
	// ErrAlreadyPaid is returned when paying an installment that is not open.
	ErrAlreadyPaid = errors.New("installment already paid")
	// ErrNotPaid is returned when reopening an installment that is not paid.
	ErrNotPaid = errors.New("installment not paid")
)

// FixedBillSummary is the per-bill rollup consumed by the fixed-bills panel.
type FixedBillSummary struct {
	Bill          FixedBill
	Installments  []FixedBillInstallment
	TotalPaid     Money
	TotalPending  Money
	TotalDiscount Money
	NextDueDate   Date
}

// EffectiveStatus projects the display status for the given day. Overdue is
// never stored on fixed-bill installments; it is derived at read time from
// the due date, same as the contract-installment overdue recomputation.
func (i FixedBillInstallment) EffectiveStatus(today Date) Status {
	if i.Status == StatusPaid {
		return StatusPaid
	}
	if i.DueDate.Time.Before(today.Time) {
		return StatusOverdue
	}
	return i.Status
}

// InstallmentAt computes the nth row (1-based) of the bill's schedule: the
// total split evenly across the count with leftover cents on the first rows,
// due monthly from the start date. The caller assigns the id.
func (b FixedBill) InstallmentAt(n int) FixedBillInstallment {
	base := b.TotalValue.Cents / int64(b.TotalInstallments)
	remainder := b.TotalValue.Cents % int64(b.TotalInstallments)

	value := base
	if int64(n) <= remainder {
		value++
	}
	return FixedBillInstallment{
		FixedBillID:       b.ID,
		InstallmentNumber: n,
		Value:             Money{Cents: value},
		OriginalValue:     Money{Cents: value},
		DueDate:           b.StartDate.AddMonths(n - 1),
		Status:            StatusOpen,
	}
}

// Pay transitions an open installment to paid. The pre-payment value is
// preserved in OriginalValue and the stored value becomes the original minus
// the discount, so a later reopen can restore it. Paying anything other than
// an open installment fails with ErrAlreadyPaid; callers must reopen first.
func (i FixedBillInstallment) Pay(paidDate Date, method string, discount Money) (FixedBillInstallment, error) {
	if i.Status == StatusPaid {
		return i, ErrAlreadyPaid
	}
	if err := discount.Validate(); err != nil {
		return i, err
	}

	original := i.OriginalValue
	if original.IsZero() {
		original = i.Value
	}

	i.Status = StatusPaid
	i.OriginalValue = original
	i.Value = original.Sub(discount)
	i.Discount = discount
	i.PaidDate = paidDate
	i.PaymentMethod = method
	return i, nil
}

// Reopen reverses a payment: the value goes back to its pre-payment amount
// and discount, paid date, and payment method are cleared. Reopening an
// unpaid installment fails with ErrNotPaid.
func (i FixedBillInstallment) Reopen() (FixedBillInstallment, error) {
	if i.Status != StatusPaid {
		return i, ErrNotPaid
	}

	original := i.OriginalValue
	if original.IsZero() {
		original = i.Value.Add(i.Discount)
	}

	i.Status = StatusOpen
	i.Value = original
	i.Discount = Money{}
	i.PaidDate = Date{}
	i.PaymentMethod = ""
	return i, nil
}

// FixedBillRollups groups installments under their bills and computes paid,
// pending, and discount totals plus the next due date (earliest unpaid).
// Bills keep their input order.
func (s Snapshot) FixedBillRollups() []FixedBillSummary {
	byBill := make(map[string][]FixedBillInstallment, len(s.FixedBills))
	for _, inst := range s.FixedBillInstallments {
		byBill[inst.FixedBillID] = append(byBill[inst.FixedBillID], inst)
	}

	out := make([]FixedBillSummary, 0, len(s.FixedBills))
	for _, bill := range s.FixedBills {
		summary := FixedBillSummary{
			Bill:         bill,
			Installments: byBill[bill.ID],
		}
		var pending []FixedBillInstallment
		for _, inst := range summary.Installments {
			if inst.Status == StatusPaid {
				summary.TotalPaid = summary.TotalPaid.Add(inst.Value)
			} else {
				summary.TotalPending = summary.TotalPending.Add(inst.Value)
				pending = append(pending, inst)
			}
			summary.TotalDiscount = summary.TotalDiscount.Add(inst.Discount)
		}
		sort.SliceStable(pending, func(a, b int) bool {
			return pending[a].DueDate.Time.Before(pending[b].DueDate.Time)
		})
		if len(pending) > 0 {
			summary.NextDueDate = pending[0].DueDate
		}
		out = append(out, summary)
	}
	return out
}
