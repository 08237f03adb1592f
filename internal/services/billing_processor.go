package services

import (
	"context"
	"fmt"
	"log/slog"

	"cobranca/internal/amqp"
	"cobranca/internal/core"
	"cobranca/internal/store"
)

// BillingProcessor refreshes stored installment state on a schedule. The
// stored status is only authoritative as of the last write, so a periodic
// pass marks open installments past their due date as overdue and backfills
// installment schedules for bills that lost theirs.
type BillingProcessor struct {
	store    store.Store
	mutation *MutationService
}

func NewBillingProcessor(st store.Store, mutation *MutationService) *BillingProcessor {
	return &BillingProcessor{
		store:    st,
		mutation: mutation,
	}
}

// MarkOverdue transitions every open contract installment whose due date is
// before today to overdue. Returns the number of rows updated.
func (p *BillingProcessor) MarkOverdue(ctx context.Context, today core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	installments, err := p.store.ListInstallments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list installments: %w", err)
	}

	updated := 0
	for _, inst := range installments {
		if inst.Status != core.StatusOpen {
			continue
		}
		if !inst.DueDate.Time.Before(today.Time) {
			continue
		}

		inst.Status = core.StatusOverdue
		if err := p.store.PutInstallment(ctx, inst); err != nil {
			slog.ErrorContext(ctx, "Failed to mark installment overdue",
				"installment_id", inst.ID,
				"error", err)
			continue
		}
		p.mutation.publish(ctx, "installments", inst.ID, amqp.OpUpdated)
		updated++
	}

	if updated > 0 {
		slog.InfoContext(ctx, "Overdue pass complete",
			"updated", updated,
			"total_checked", len(installments),
			"processing_date", today.String())
	}

	return updated, nil
}

// EnsureFixedBillInstallments materializes any missing rows in each bill's
// installment schedule, whether the bill has none at all or lost part of it.
// Existing rows are never touched. Returns the number of rows created.
func (p *BillingProcessor) EnsureFixedBillInstallments(ctx context.Context) (int, error) {
	if p.store == nil || p.mutation == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	bills, err := p.store.ListFixedBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list fixed bills: %w", err)
	}
	installments, err := p.store.ListFixedBillInstallments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list fixed bill installments: %w", err)
	}

	existing := make(map[string]map[int]bool, len(bills))
	for _, inst := range installments {
		if existing[inst.FixedBillID] == nil {
			existing[inst.FixedBillID] = make(map[int]bool)
		}
		existing[inst.FixedBillID][inst.InstallmentNumber] = true
	}

	created := 0
	for _, bill := range bills {
		billCreated := 0
		for n := 1; n <= bill.TotalInstallments; n++ {
			if existing[bill.ID][n] {
				continue
			}
			inst := bill.InstallmentAt(n)
			inst.ID = newID()
			if err := p.store.PutFixedBillInstallment(ctx, inst); err != nil {
				slog.ErrorContext(ctx, "Failed to materialize fixed bill installment",
					"fixed_bill_id", bill.ID,
					"installment_number", n,
					"error", err)
				continue
			}
			p.mutation.publish(ctx, "fixed_bill_installments", inst.ID, amqp.OpCreated)
			billCreated++
		}
		if billCreated > 0 {
			slog.InfoContext(ctx, "Materialized missing fixed bill installments",
				"fixed_bill_id", bill.ID,
				"created", billCreated,
				"schedule_size", bill.TotalInstallments)
			created += billCreated
		}
	}

	return created, nil
}
