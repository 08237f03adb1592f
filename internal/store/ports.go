package store

import (
	"context"
	"errors"

	"cobranca/internal/core"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters. Listing is always full-collection: the
// derivation engine works on snapshots, so stores only need to enumerate
// and mutate, never to aggregate.
type (
	ClientStore interface {
		ListClients(ctx context.Context) ([]core.Client, error)
		GetClient(ctx context.Context, id string) (core.Client, error)
		PutClient(ctx context.Context, c core.Client) error
		// DeleteClient removes the client and everything owned through it:
		// contracts and their installments.
		DeleteClient(ctx context.Context, id string) error
	}

	ContractStore interface {
		ListContracts(ctx context.Context) ([]core.Contract, error)
		GetContract(ctx context.Context, id string) (core.Contract, error)
		PutContract(ctx context.Context, c core.Contract) error
	}

	InstallmentStore interface {
		ListInstallments(ctx context.Context) ([]core.Installment, error)
		GetInstallment(ctx context.Context, id string) (core.Installment, error)
		PutInstallment(ctx context.Context, i core.Installment) error
	}

	EmployeeStore interface {
		ListEmployees(ctx context.Context) ([]core.Employee, error)
		GetEmployee(ctx context.Context, id string) (core.Employee, error)
		PutEmployee(ctx context.Context, e core.Employee) error
		ListEmployeePayments(ctx context.Context) ([]core.EmployeePayment, error)
		PutEmployeePayment(ctx context.Context, p core.EmployeePayment) error
	}

	CommissionStore interface {
		ListCommissions(ctx context.Context) ([]core.Commission, error)
		GetCommission(ctx context.Context, id string) (core.Commission, error)
		PutCommission(ctx context.Context, c core.Commission) error
	}

	FixedBillStore interface {
		ListFixedBills(ctx context.Context) ([]core.FixedBill, error)
		GetFixedBill(ctx context.Context, id string) (core.FixedBill, error)
		PutFixedBill(ctx context.Context, b core.FixedBill) error
		// DeleteFixedBill removes the bill and its installments.
		DeleteFixedBill(ctx context.Context, id string) error
		ListFixedBillInstallments(ctx context.Context) ([]core.FixedBillInstallment, error)
		GetFixedBillInstallment(ctx context.Context, id string) (core.FixedBillInstallment, error)
		PutFixedBillInstallment(ctx context.Context, i core.FixedBillInstallment) error
	}

	// Store is the unified persistence surface the services depend on.
	Store interface {
		ClientStore
		ContractStore
		InstallmentStore
		EmployeeStore
		CommissionStore
		FixedBillStore
	}
)
