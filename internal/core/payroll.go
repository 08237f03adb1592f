package core

type (
	// PayrollSummary aggregates employee payments by type.
	PayrollSummary struct {
		Total       Money
		ByType      map[PaymentType]Money
		CountByType map[PaymentType]int
	}

	// CommissionSummary aggregates commissions by status.
	CommissionSummary struct {
		PendingCount int
		PendingValue Money
		PaidCount    int
		PaidValue    Money
	}
)

// Payroll totals the employee payments in the snapshot by payment type.
func (s Snapshot) Payroll() PayrollSummary {
	summary := PayrollSummary{
		ByType:      make(map[PaymentType]Money),
		CountByType: make(map[PaymentType]int),
	}
	for _, p := range s.EmployeePayments {
		summary.Total = summary.Total.Add(p.Amount)
		summary.ByType[p.Type] = summary.ByType[p.Type].Add(p.Amount)
		summary.CountByType[p.Type]++
	}
	return summary
}

// CommissionTotals splits the snapshot's commissions into pending and paid.
func (s Snapshot) CommissionTotals() CommissionSummary {
	var summary CommissionSummary
	for _, c := range s.Commissions {
		switch c.Status {
		case CommissionPaid:
			summary.PaidCount++
			summary.PaidValue = summary.PaidValue.Add(c.Amount)
		default:
			summary.PendingCount++
			summary.PendingValue = summary.PendingValue.Add(c.Amount)
		}
	}
	return summary
}
