package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"cobranca/internal/amqp"
	"cobranca/internal/core"
	"cobranca/internal/store"
)

// MutationService orchestrates entity writes: validation, id assignment,
// persistence, and change notification. Publishing is best-effort; a write
// that reached the store never fails because the broker is down.
type MutationService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewMutationService(st store.Store, amqpClient *amqp.Client) *MutationService {
	return &MutationService{
		store:      st,
		amqpClient: amqpClient,
	}
}

func newID() string {
	return strings.ToLower(ulid.Make().String())
}

// CreateClient validates and persists a client, assigning an id when absent.
func (s *MutationService) CreateClient(ctx context.Context, c core.Client) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate client: %w", err)
	}
	if c.ID == "" {
		c.ID = newID()
	}

	if err := s.store.PutClient(ctx, c); err != nil {
		return "", fmt.Errorf("save client: %w", err)
	}

	s.publish(ctx, "clients", c.ID, amqp.OpCreated)
	return c.ID, nil
}

// UpdateClient validates and persists changes to an existing client.
func (s *MutationService) UpdateClient(ctx context.Context, c core.Client) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate client: %w", err)
	}
	if _, err := s.store.GetClient(ctx, c.ID); err != nil {
		return fmt.Errorf("resolve client %s: %w", c.ID, err)
	}

	if err := s.store.PutClient(ctx, c); err != nil {
		return fmt.Errorf("save client: %w", err)
	}

	s.publish(ctx, "clients", c.ID, amqp.OpUpdated)
	return nil
}

// DeleteClient removes a client and its contracts and installments.
func (s *MutationService) DeleteClient(ctx context.Context, id string) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.publish(ctx, "clients", id, amqp.OpDeleted)
	return nil
}

// CreateContract persists a contract and generates its monthly installment
// schedule: one installment per month starting at the contract start date,
// the total split evenly with any leftover cents going to the first rows.
func (s *MutationService) CreateContract(ctx context.Context, c core.Contract, installmentCount int) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate contract: %w", err)
	}
	if installmentCount < 1 {
		return "", fmt.Errorf("installment count must be at least 1")
	}
	if _, err := s.store.GetClient(ctx, c.ClientID); err != nil {
		return "", fmt.Errorf("resolve client %s: %w", c.ClientID, err)
	}
	if c.ID == "" {
		c.ID = newID()
	}

	if err := s.store.PutContract(ctx, c); err != nil {
		return "", fmt.Errorf("save contract: %w", err)
	}

	base := c.TotalValue.Cents / int64(installmentCount)
	remainder := c.TotalValue.Cents % int64(installmentCount)

	for n := 1; n <= installmentCount; n++ {
		value := base
		if int64(n) <= remainder {
			value++
		}
		inst := core.Installment{
			ID:                newID(),
			ContractID:        c.ID,
			InstallmentNumber: n,
			TotalInstallments: installmentCount,
			Value:             core.Money{Cents: value},
			DueDate:           c.StartDate.AddMonths(n - 1),
			Status:            core.StatusOpen,
		}
		if err := s.store.PutInstallment(ctx, inst); err != nil {
			return "", fmt.Errorf("save installment %d: %w", n, err)
		}
	}

	slog.InfoContext(ctx, "Contract created with installment schedule",
		"contract_id", c.ID,
		"client_id", c.ClientID,
		"installments", installmentCount,
		"total_cents", c.TotalValue.Cents)

	s.publish(ctx, "contracts", c.ID, amqp.OpCreated)
	return c.ID, nil
}

// PayInstallment marks a contract installment as paid on the given date.
func (s *MutationService) PayInstallment(ctx context.Context, id string, paidDate core.Date) error {
	inst, err := s.store.GetInstallment(ctx, id)
	if err != nil {
		return fmt.Errorf("get installment: %w", err)
	}
	if inst.Status == core.StatusPaid {
		return core.ErrAlreadyPaid
	}

	inst.Status = core.StatusPaid
	inst.PaidDate = paidDate
	if err := s.store.PutInstallment(ctx, inst); err != nil {
		return fmt.Errorf("save installment: %w", err)
	}

	slog.InfoContext(ctx, "Installment paid",
		"installment_id", inst.ID,
		"contract_id", inst.ContractID,
		"amount_cents", inst.Value.Cents)

	s.publish(ctx, "installments", inst.ID, amqp.OpUpdated)
	return nil
}

// CreateEmployee validates and persists an employee.
func (s *MutationService) CreateEmployee(ctx context.Context, e core.Employee) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate employee: %w", err)
	}
	if e.ID == "" {
		e.ID = newID()
	}

	if err := s.store.PutEmployee(ctx, e); err != nil {
		return "", fmt.Errorf("save employee: %w", err)
	}

	s.publish(ctx, "employees", e.ID, amqp.OpCreated)
	return e.ID, nil
}

// CreateEmployeePayment validates and persists a payroll entry.
func (s *MutationService) CreateEmployeePayment(ctx context.Context, p core.EmployeePayment) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("validate employee payment: %w", err)
	}
	if _, err := s.store.GetEmployee(ctx, p.EmployeeID); err != nil {
		return "", fmt.Errorf("resolve employee %s: %w", p.EmployeeID, err)
	}
	if p.ID == "" {
		p.ID = newID()
	}

	if err := s.store.PutEmployeePayment(ctx, p); err != nil {
		return "", fmt.Errorf("save employee payment: %w", err)
	}

	s.publish(ctx, "employee_payments", p.ID, amqp.OpCreated)
	return p.ID, nil
}

// CreateCommission validates and persists a commission.
func (s *MutationService) CreateCommission(ctx context.Context, c core.Commission) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate commission: %w", err)
	}
	if _, err := s.store.GetEmployee(ctx, c.EmployeeID); err != nil {
		return "", fmt.Errorf("resolve employee %s: %w", c.EmployeeID, err)
	}
	if c.ID == "" {
		c.ID = newID()
	}

	if err := s.store.PutCommission(ctx, c); err != nil {
		return "", fmt.Errorf("save commission: %w", err)
	}

	s.publish(ctx, "commissions", c.ID, amqp.OpCreated)
	return c.ID, nil
}

// MarkCommissionPaid transitions a pending commission to paid.
func (s *MutationService) MarkCommissionPaid(ctx context.Context, id string, paidDate core.Date) error {
	c, err := s.store.GetCommission(ctx, id)
	if err != nil {
		return fmt.Errorf("get commission: %w", err)
	}
	if c.Status == core.CommissionPaid {
		return core.ErrAlreadyPaid
	}

	c.Status = core.CommissionPaid
	c.PaidDate = paidDate
	if err := s.store.PutCommission(ctx, c); err != nil {
		return fmt.Errorf("save commission: %w", err)
	}

	s.publish(ctx, "commissions", c.ID, amqp.OpUpdated)
	return nil
}

// CreateFixedBill persists a fixed bill and generates its installments:
// the total split evenly across the configured count, due monthly from the
// start date.
func (s *MutationService) CreateFixedBill(ctx context.Context, b core.FixedBill) (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("validate fixed bill: %w", err)
	}
	if b.ID == "" {
		b.ID = newID()
	}

	if err := s.store.PutFixedBill(ctx, b); err != nil {
		return "", fmt.Errorf("save fixed bill: %w", err)
	}

	if err := s.generateFixedBillInstallments(ctx, b); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Fixed bill created",
		"fixed_bill_id", b.ID,
		"installments", b.TotalInstallments,
		"total_cents", b.TotalValue.Cents)

	s.publish(ctx, "fixed_bills", b.ID, amqp.OpCreated)
	return b.ID, nil
}

func (s *MutationService) generateFixedBillInstallments(ctx context.Context, b core.FixedBill) error {
	for n := 1; n <= b.TotalInstallments; n++ {
		inst := b.InstallmentAt(n)
		inst.ID = newID()
		if err := s.store.PutFixedBillInstallment(ctx, inst); err != nil {
			return fmt.Errorf("save fixed bill installment %d: %w", n, err)
		}
	}
	return nil
}

// DeleteFixedBill removes a bill and its installments.
func (s *MutationService) DeleteFixedBill(ctx context.Context, id string) error {
	if err := s.store.DeleteFixedBill(ctx, id); err != nil {
		return fmt.Errorf("delete fixed bill: %w", err)
	}

	s.publish(ctx, "fixed_bills", id, amqp.OpDeleted)
	return nil
}

// PayFixedBillInstallment applies the pay transition and persists the result.
func (s *MutationService) PayFixedBillInstallment(ctx context.Context, id string, paidDate core.Date, method string, discount core.Money) error {
	inst, err := s.store.GetFixedBillInstallment(ctx, id)
	if err != nil {
		return fmt.Errorf("get fixed bill installment: %w", err)
	}

	paid, err := inst.Pay(paidDate, method, discount)
	if err != nil {
		return err
	}
	if err := s.store.PutFixedBillInstallment(ctx, paid); err != nil {
		return fmt.Errorf("save fixed bill installment: %w", err)
	}

	slog.InfoContext(ctx, "Fixed bill installment paid",
		"installment_id", paid.ID,
		"fixed_bill_id", paid.FixedBillID,
		"amount_cents", paid.Value.Cents,
		"discount_cents", paid.Discount.Cents)

	s.publish(ctx, "fixed_bill_installments", paid.ID, amqp.OpUpdated)
	return nil
}

// ReopenFixedBillInstallment reverses a payment and persists the result.
func (s *MutationService) ReopenFixedBillInstallment(ctx context.Context, id string) error {
	inst, err := s.store.GetFixedBillInstallment(ctx, id)
	if err != nil {
		return fmt.Errorf("get fixed bill installment: %w", err)
	}

	reopened, err := inst.Reopen()
	if err != nil {
		return err
	}
	if err := s.store.PutFixedBillInstallment(ctx, reopened); err != nil {
		return fmt.Errorf("save fixed bill installment: %w", err)
	}

	s.publish(ctx, "fixed_bill_installments", reopened.ID, amqp.OpUpdated)
	return nil
}

func (s *MutationService) publish(ctx context.Context, table, id, op string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishEntityChanged(ctx, table, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entity change",
			"table", table, "id", id, "op", op, "error", err)
	}
}

// Close closes the AMQP connection if one is attached. The store is owned
// by the backend factory and closed there.
func (s *MutationService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}
