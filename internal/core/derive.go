package core

import "sort"

// Placeholder client name used when an installment's owning contract or
// client is missing from the snapshot. Collection views keep such rows
// rather than dropping them; OrphanInstallmentCount surfaces the rate.
const UnknownClientName = "unknown"

type (
	// Snapshot is a point-in-time copy of the entity collections a derivation
	// pass operates on. A nil slice means the collection has not been loaded
	// yet; an empty non-nil slice means a confirmed zero rows. Derivations
	// never mutate a snapshot.
	Snapshot struct {
		Clients               []Client
		Contracts             []Contract
		Installments          []Installment
		Employees             []Employee
		EmployeePayments      []EmployeePayment
		Commissions           []Commission
		FixedBills            []FixedBill
		FixedBillInstallments []FixedBillInstallment
	}

	// ClientDebt is the per-(client, contract) rollup row.
	ClientDebt struct {
		Client        Client
		Contract      Contract
		Installments  []Installment
		TotalDebt     Money
		OverdueCount  int
		OldestOverdue Date
	}

	// CollectionItem is an installment annotated for the overdue/upcoming views.
	CollectionItem struct {
		Installment Installment
		ClientName  string
		DaysOverdue int
	}

	// StatusBucket is one row of the status cross-tab.
	StatusBucket struct {
		Status         Status
		Count          int
		TotalValue     Money
		AvgDaysOverdue int
	}

	// KPISummary feeds the dashboard headline tiles. The zero value is the
	// "loading" shape returned while any required collection is unavailable.
	KPISummary struct {
		TotalClients       int
		OpenValue          Money
		OverdueValue       Money
		ClientsWithOverdue int
	}
)

// DaysOverdue returns how many whole days past due an installment is on the
// given day, clamped at zero. It is 0 on the due date and 1 the day after.
func DaysOverdue(due, today Date) int {
	if due.IsZero() || today.IsZero() {
		return 0
	}
	days := int(today.Sub(due.Time).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Scoped narrows the snapshot to one company: clients by company id, then
// contracts and installments through the ownership chain, and fixed bills by
// company id. A zero scope returns the snapshot unchanged.
func (s Snapshot) Scoped(scope TenantScope) Snapshot {
	if scope.IsZero() {
		return s
	}

	out := s
	if s.Clients != nil {
		out.Clients = make([]Client, 0, len(s.Clients))
		for _, c := range s.Clients {
			if c.CompanyID == scope.CompanyID {
				out.Clients = append(out.Clients, c)
			}
		}
	}

	clientIDs := make(map[string]struct{}, len(out.Clients))
	for _, c := range out.Clients {
		clientIDs[c.ID] = struct{}{}
	}

	if s.Contracts != nil {
		out.Contracts = make([]Contract, 0, len(s.Contracts))
		for _, c := range s.Contracts {
			if _, ok := clientIDs[c.ClientID]; ok {
				out.Contracts = append(out.Contracts, c)
			}
		}
	}

	contractIDs := make(map[string]struct{}, len(out.Contracts))
	for _, c := range out.Contracts {
		contractIDs[c.ID] = struct{}{}
	}

	if s.Installments != nil {
		out.Installments = make([]Installment, 0, len(s.Installments))
		for _, i := range s.Installments {
			if _, ok := contractIDs[i.ContractID]; ok {
				out.Installments = append(out.Installments, i)
			}
		}
	}

	if s.FixedBills != nil {
		out.FixedBills = make([]FixedBill, 0, len(s.FixedBills))
		for _, b := range s.FixedBills {
			if b.CompanyID == scope.CompanyID {
				out.FixedBills = append(out.FixedBills, b)
			}
		}
	}

	billIDs := make(map[string]struct{}, len(out.FixedBills))
	for _, b := range out.FixedBills {
		billIDs[b.ID] = struct{}{}
	}

	if s.FixedBillInstallments != nil {
		out.FixedBillInstallments = make([]FixedBillInstallment, 0, len(s.FixedBillInstallments))
		for _, i := range s.FixedBillInstallments {
			if _, ok := billIDs[i.FixedBillID]; ok {
				out.FixedBillInstallments = append(out.FixedBillInstallments, i)
			}
		}
	}

	return out
}

// ClientDebtRollups produces one summary per (client, contract) pair, sorted
// by total outstanding debt descending. The sort is stable: rollups with
// equal debt keep their input order. A client without contracts yields no
// row; installments referencing a missing contract are unreachable here and
// are counted by OrphanInstallmentCount instead.
func (s Snapshot) ClientDebtRollups() []ClientDebt {
	byContract := make(map[string][]Installment, len(s.Contracts))
	for _, inst := range s.Installments {
		byContract[inst.ContractID] = append(byContract[inst.ContractID], inst)
	}

	rollups := make([]ClientDebt, 0, len(s.Contracts))
	for _, client := range s.Clients {
		for _, contract := range s.Contracts {
			if contract.ClientID != client.ID {
				continue
			}

			row := ClientDebt{
				Client:       client,
				Contract:     contract,
				Installments: byContract[contract.ID],
			}
			for _, inst := range row.Installments {
				if inst.Status != StatusPaid {
					row.TotalDebt = row.TotalDebt.Add(inst.Value)
				}
				if inst.Status == StatusOverdue {
					row.OverdueCount++
					if row.OldestOverdue.IsZero() || inst.DueDate.Time.Before(row.OldestOverdue.Time) {
						row.OldestOverdue = inst.DueDate
					}
				}
			}
			rollups = append(rollups, row)
		}
	}

	sort.SliceStable(rollups, func(a, b int) bool {
		return rollups[a].TotalDebt.Cents > rollups[b].TotalDebt.Cents
	})
	return rollups
}

// OverdueList returns all installments whose stored status is overdue,
// annotated with the owning client's name and a freshly computed days-overdue
// value, sorted by due date ascending (oldest first). Rows whose contract or
// client cannot be resolved keep a placeholder name instead of being dropped.
func (s Snapshot) OverdueList(today Date) []CollectionItem {
	out := make([]CollectionItem, 0)
	for _, inst := range s.Installments {
		if inst.Status != StatusOverdue {
			continue
		}
		out = append(out, CollectionItem{
			Installment: inst,
			ClientName:  s.clientNameFor(inst.ContractID),
			DaysOverdue: DaysOverdue(inst.DueDate, today),
		})
	}
	sortByDueDate(out)
	return out
}

// UpcomingList returns all unpaid installments due on or after today,
// annotated with the owning client's name, sorted by due date ascending.
// A paid installment due today or later is not upcoming.
func (s Snapshot) UpcomingList(today Date) []CollectionItem {
	out := make([]CollectionItem, 0)
	for _, inst := range s.Installments {
		if inst.Status == StatusPaid {
			continue
		}
		if inst.DueDate.Time.Before(today.Time) {
			continue
		}
		out = append(out, CollectionItem{
			Installment: inst,
			ClientName:  s.clientNameFor(inst.ContractID),
		})
	}
	sortByDueDate(out)
	return out
}

// StatusCrossTab partitions the installments into the three status buckets.
// The output always has exactly three rows in declaration order
// {overdue, open, paid}; empty buckets report zero values, never NaN.
// Average days overdue is computed for the overdue bucket only,
// half-up rounded to an integer.
func (s Snapshot) StatusCrossTab(today Date) []StatusBucket {
	buckets := []StatusBucket{
		{Status: StatusOverdue},
		{Status: StatusOpen},
		{Status: StatusPaid},
	}
	index := map[Status]int{StatusOverdue: 0, StatusOpen: 1, StatusPaid: 2}

	var overdueDays int
	for _, inst := range s.Installments {
		i, ok := index[inst.Status]
		if !ok {
			continue
		}
		buckets[i].Count++
		buckets[i].TotalValue = buckets[i].TotalValue.Add(inst.Value)
		if inst.Status == StatusOverdue {
			overdueDays += DaysOverdue(inst.DueDate, today)
		}
	}

	if n := buckets[0].Count; n > 0 {
		buckets[0].AvgDaysOverdue = (overdueDays + n/2) / n
	}
	return buckets
}

// KPIs produces the dashboard headline summary. While any of the client,
// contract, or installment collections is still unloaded it returns the
// zero value so callers can render a stable loading shape.
func (s Snapshot) KPIs(today Date) KPISummary {
	if s.Clients == nil || s.Contracts == nil || s.Installments == nil {
		return KPISummary{}
	}

	clientByContract := make(map[string]string, len(s.Contracts))
	for _, c := range s.Contracts {
		clientByContract[c.ID] = c.ClientID
	}

	kpi := KPISummary{TotalClients: len(s.Clients)}
	withOverdue := make(map[string]struct{})
	for _, inst := range s.Installments {
		if inst.Status != StatusPaid {
			kpi.OpenValue = kpi.OpenValue.Add(inst.Value)
		}
		if inst.Status == StatusOverdue {
			kpi.OverdueValue = kpi.OverdueValue.Add(inst.Value)
			if clientID, ok := clientByContract[inst.ContractID]; ok {
				withOverdue[clientID] = struct{}{}
			}
		}
	}
	kpi.ClientsWithOverdue = len(withOverdue)
	return kpi
}

// OrphanInstallmentCount counts installments whose contract is absent from
// the snapshot. Rollups cannot reach these rows; callers log the count so
// partially-loaded data is visible instead of silently shrinking totals.
func (s Snapshot) OrphanInstallmentCount() int {
	contractIDs := make(map[string]struct{}, len(s.Contracts))
	for _, c := range s.Contracts {
		contractIDs[c.ID] = struct{}{}
	}
	orphans := 0
	for _, inst := range s.Installments {
		if _, ok := contractIDs[inst.ContractID]; !ok {
			orphans++
		}
	}
	return orphans
}

func (s Snapshot) clientNameFor(contractID string) string {
	for _, c := range s.Contracts {
		if c.ID != contractID {
			continue
		}
		for _, cl := range s.Clients {
			if cl.ID == c.ClientID {
				return cl.Name
			}
		}
		break
	}
	return UnknownClientName
}

func sortByDueDate(items []CollectionItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Installment.DueDate.Time.Before(items[b].Installment.DueDate.Time)
	})
}
