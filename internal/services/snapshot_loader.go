package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cobranca/internal/core"
	"cobranca/internal/store"
)

// SnapshotLoader assembles a full derivation snapshot from the store. The
// eight collections are independent, so they load concurrently; any failure
// aborts the whole load because a partial snapshot would silently shrink
// the derived totals.
type SnapshotLoader struct {
	store store.Store
}

func NewSnapshotLoader(st store.Store) *SnapshotLoader {
	return &SnapshotLoader{store: st}
}

// Load reads every collection and returns the combined snapshot.
func (l *SnapshotLoader) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Clients, err = l.store.ListClients(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Contracts, err = l.store.ListContracts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Installments, err = l.store.ListInstallments(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Employees, err = l.store.ListEmployees(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.EmployeePayments, err = l.store.ListEmployeePayments(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Commissions, err = l.store.ListCommissions(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.FixedBills, err = l.store.ListFixedBills(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.FixedBillInstallments, err = l.store.ListFixedBillInstallments(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}
