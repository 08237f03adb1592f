package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cobranca/internal/core"
	"cobranca/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Cascading deletes depend on the foreign_keys pragma.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func dateArg(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.String)
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, name, document, email, phone, entry_date, exit_date
		 FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := make([]core.Client, 0)
	for rows.Next() {
		var c core.Client
		var entry, exit sql.NullString
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Document, &c.Email, &c.Phone, &entry, &exit); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		if c.EntryDate, err = scanDate(entry); err != nil {
			return nil, fmt.Errorf("parse entry date: %w", err)
		}
		if c.ExitDate, err = scanDate(exit); err != nil {
			return nil, fmt.Errorf("parse exit date: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id string) (core.Client, error) {
	var c core.Client
	var entry, exit sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, document, email, phone, entry_date, exit_date
		 FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Document, &c.Email, &c.Phone, &entry, &exit)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, store.ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	if c.EntryDate, err = scanDate(entry); err != nil {
		return core.Client{}, fmt.Errorf("parse entry date: %w", err)
	}
	if c.ExitDate, err = scanDate(exit); err != nil {
		return core.Client{}, fmt.Errorf("parse exit date: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) PutClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, company_id, name, document, email, phone, entry_date, exit_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   company_id = excluded.company_id,
		   name = excluded.name,
		   document = excluded.document,
		   email = excluded.email,
		   phone = excluded.phone,
		   entry_date = excluded.entry_date,
		   exit_date = excluded.exit_date`,
		c.ID, c.CompanyID, c.Name, c.Document, c.Email, c.Phone, dateArg(c.EntryDate), dateArg(c.ExitDate))
	if err != nil {
		return fmt.Errorf("put client: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteClient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, description, total_value_cents, start_date
		 FROM contracts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := make([]core.Contract, 0)
	for rows.Next() {
		var c core.Contract
		var start sql.NullString
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Description, &c.TotalValue.Cents, &start); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		if c.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetContract(ctx context.Context, id string) (core.Contract, error) {
	var c core.Contract
	var start sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, description, total_value_cents, start_date
		 FROM contracts WHERE id = ?`, id).
		Scan(&c.ID, &c.ClientID, &c.Description, &c.TotalValue.Cents, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contract{}, store.ErrNotFound
	}
	if err != nil {
		return core.Contract{}, fmt.Errorf("get contract: %w", err)
	}
	if c.StartDate, err = scanDate(start); err != nil {
		return core.Contract{}, fmt.Errorf("parse start date: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) PutContract(ctx context.Context, c core.Contract) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (id, client_id, description, total_value_cents, start_date)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id = excluded.client_id,
		   description = excluded.description,
		   total_value_cents = excluded.total_value_cents,
		   start_date = excluded.start_date`,
		c.ID, c.ClientID, c.Description, c.TotalValue.Cents, dateArg(c.StartDate))
	if err != nil {
		return fmt.Errorf("put contract: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListInstallments(ctx context.Context) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, installment_number, total_installments, value_cents, due_date, paid_date, status
		 FROM installments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	out := make([]core.Installment, 0)
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetInstallment(ctx context.Context, id string) (core.Installment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, contract_id, installment_number, total_installments, value_cents, due_date, paid_date, status
		 FROM installments WHERE id = ?`, id)
	i, err := scanInstallment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Installment{}, store.ErrNotFound
	}
	return i, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstallment(row rowScanner) (core.Installment, error) {
	var i core.Installment
	var due, paid sql.NullString
	var status string
	err := row.Scan(&i.ID, &i.ContractID, &i.InstallmentNumber, &i.TotalInstallments, &i.Value.Cents, &due, &paid, &status)
	if err != nil {
		return core.Installment{}, err
	}
	if i.DueDate, err = scanDate(due); err != nil {
		return core.Installment{}, fmt.Errorf("parse due date: %w", err)
	}
	if i.PaidDate, err = scanDate(paid); err != nil {
		return core.Installment{}, fmt.Errorf("parse paid date: %w", err)
	}
	i.Status = core.Status(status)
	return i, nil
}

func (r *SQLiteRepository) PutInstallment(ctx context.Context, i core.Installment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO installments (id, contract_id, installment_number, total_installments, value_cents, due_date, paid_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   contract_id = excluded.contract_id,
		   installment_number = excluded.installment_number,
		   total_installments = excluded.total_installments,
		   value_cents = excluded.value_cents,
		   due_date = excluded.due_date,
		   paid_date = excluded.paid_date,
		   status = excluded.status`,
		i.ID, i.ContractID, i.InstallmentNumber, i.TotalInstallments, i.Value.Cents,
		dateArg(i.DueDate), dateArg(i.PaidDate), string(i.Status))
	if err != nil {
		return fmt.Errorf("put installment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, role, email, phone, salary_cents, hire_date, active
		 FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := make([]core.Employee, 0)
	for rows.Next() {
		var e core.Employee
		var hire sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Phone, &e.Salary.Cents, &hire, &e.Active); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		if e.HireDate, err = scanDate(hire); err != nil {
			return nil, fmt.Errorf("parse hire date: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	var e core.Employee
	var hire sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, email, phone, salary_cents, hire_date, active
		 FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Phone, &e.Salary.Cents, &hire, &e.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Employee{}, store.ErrNotFound
	}
	if err != nil {
		return core.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	if e.HireDate, err = scanDate(hire); err != nil {
		return core.Employee{}, fmt.Errorf("parse hire date: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) PutEmployee(ctx context.Context, e core.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, role, email, phone, salary_cents, hire_date, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   role = excluded.role,
		   email = excluded.email,
		   phone = excluded.phone,
		   salary_cents = excluded.salary_cents,
		   hire_date = excluded.hire_date,
		   active = excluded.active`,
		e.ID, e.Name, e.Role, e.Email, e.Phone, e.Salary.Cents, dateArg(e.HireDate), e.Active)
	if err != nil {
		return fmt.Errorf("put employee: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListEmployeePayments(ctx context.Context) ([]core.EmployeePayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employee_id, amount_cents, payment_date, type, description, receipt_ref
		 FROM employee_payments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employee payments: %w", err)
	}
	defer rows.Close()

	out := make([]core.EmployeePayment, 0)
	for rows.Next() {
		var p core.EmployeePayment
		var date sql.NullString
		var typ string
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Amount.Cents, &date, &typ, &p.Description, &p.ReceiptRef); err != nil {
			return nil, fmt.Errorf("scan employee payment: %w", err)
		}
		if p.PaymentDate, err = scanDate(date); err != nil {
			return nil, fmt.Errorf("parse payment date: %w", err)
		}
		p.Type = core.PaymentType(typ)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutEmployeePayment(ctx context.Context, p core.EmployeePayment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employee_payments (id, employee_id, amount_cents, payment_date, type, description, receipt_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   employee_id = excluded.employee_id,
		   amount_cents = excluded.amount_cents,
		   payment_date = excluded.payment_date,
		   type = excluded.type,
		   description = excluded.description,
		   receipt_ref = excluded.receipt_ref`,
		p.ID, p.EmployeeID, p.Amount.Cents, dateArg(p.PaymentDate), string(p.Type), p.Description, p.ReceiptRef)
	if err != nil {
		return fmt.Errorf("put employee payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCommissions(ctx context.Context) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employee_id, installment_id, amount_cents, percentage, commission_date, status, paid_date, description
		 FROM commissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Commission, 0)
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCommission(ctx context.Context, id string) (core.Commission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, employee_id, installment_id, amount_cents, percentage, commission_date, status, paid_date, description
		 FROM commissions WHERE id = ?`, id)
	c, err := scanCommission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Commission{}, store.ErrNotFound
	}
	return c, err
}

func scanCommission(row rowScanner) (core.Commission, error) {
	var c core.Commission
	var commissionDate, paidDate sql.NullString
	var status string
	err := row.Scan(&c.ID, &c.EmployeeID, &c.InstallmentID, &c.Amount.Cents, &c.Percentage, &commissionDate, &status, &paidDate, &c.Description)
	if err != nil {
		return core.Commission{}, err
	}
	if c.CommissionDate, err = scanDate(commissionDate); err != nil {
		return core.Commission{}, fmt.Errorf("parse commission date: %w", err)
	}
	if c.PaidDate, err = scanDate(paidDate); err != nil {
		return core.Commission{}, fmt.Errorf("parse paid date: %w", err)
	}
	c.Status = core.CommissionStatus(status)
	return c, nil
}

func (r *SQLiteRepository) PutCommission(ctx context.Context, c core.Commission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commissions (id, employee_id, installment_id, amount_cents, percentage, commission_date, status, paid_date, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   employee_id = excluded.employee_id,
		   installment_id = excluded.installment_id,
		   amount_cents = excluded.amount_cents,
		   percentage = excluded.percentage,
		   commission_date = excluded.commission_date,
		   status = excluded.status,
		   paid_date = excluded.paid_date,
		   description = excluded.description`,
		c.ID, c.EmployeeID, c.InstallmentID, c.Amount.Cents, c.Percentage,
		dateArg(c.CommissionDate), string(c.Status), dateArg(c.PaidDate), c.Description)
	if err != nil {
		return fmt.Errorf("put commission: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListFixedBills(ctx context.Context) ([]core.FixedBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, name, description, total_value_cents, total_installments, start_date
		 FROM fixed_bills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fixed bills: %w", err)
	}
	defer rows.Close()

	out := make([]core.FixedBill, 0)
	for rows.Next() {
		var b core.FixedBill
		var start sql.NullString
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Description, &b.TotalValue.Cents, &b.TotalInstallments, &start); err != nil {
			return nil, fmt.Errorf("scan fixed bill: %w", err)
		}
		if b.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetFixedBill(ctx context.Context, id string) (core.FixedBill, error) {
	var b core.FixedBill
	var start sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, description, total_value_cents, total_installments, start_date
		 FROM fixed_bills WHERE id = ?`, id).
		Scan(&b.ID, &b.CompanyID, &b.Name, &b.Description, &b.TotalValue.Cents, &b.TotalInstallments, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FixedBill{}, store.ErrNotFound
	}
	if err != nil {
		return core.FixedBill{}, fmt.Errorf("get fixed bill: %w", err)
	}
	if b.StartDate, err = scanDate(start); err != nil {
		return core.FixedBill{}, fmt.Errorf("parse start date: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) PutFixedBill(ctx context.Context, b core.FixedBill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fixed_bills (id, company_id, name, description, total_value_cents, total_installments, start_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   company_id = excluded.company_id,
		   name = excluded.name,
		   description = excluded.description,
		   total_value_cents = excluded.total_value_cents,
		   total_installments = excluded.total_installments,
		   start_date = excluded.start_date`,
		b.ID, b.CompanyID, b.Name, b.Description, b.TotalValue.Cents, b.TotalInstallments, dateArg(b.StartDate))
	if err != nil {
		return fmt.Errorf("put fixed bill: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteFixedBill(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fixed_bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete fixed bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete fixed bill rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListFixedBillInstallments(ctx context.Context) ([]core.FixedBillInstallment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, fixed_bill_id, installment_number, value_cents, original_value_cents, due_date, paid_date, status, payment_method, discount_cents, notes
		 FROM fixed_bill_installments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fixed bill installments: %w", err)
	}
	defer rows.Close()

	out := make([]core.FixedBillInstallment, 0)
	for rows.Next() {
		i, err := scanFixedBillInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetFixedBillInstallment(ctx context.Context, id string) (core.FixedBillInstallment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, fixed_bill_id, installment_number, value_cents, original_value_cents, due_date, paid_date, status, payment_method, discount_cents, notes
		 FROM fixed_bill_installments WHERE id = ?`, id)
	i, err := scanFixedBillInstallment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FixedBillInstallment{}, store.ErrNotFound
	}
	return i, err
}

func scanFixedBillInstallment(row rowScanner) (core.FixedBillInstallment, error) {
	var i core.FixedBillInstallment
	var due, paid sql.NullString
	var status string
	err := row.Scan(&i.ID, &i.FixedBillID, &i.InstallmentNumber, &i.Value.Cents, &i.OriginalValue.Cents,
		&due, &paid, &status, &i.PaymentMethod, &i.Discount.Cents, &i.Notes)
	if err != nil {
		return core.FixedBillInstallment{}, err
	}
	if i.DueDate, err = scanDate(due); err != nil {
		return core.FixedBillInstallment{}, fmt.Errorf("parse due date: %w", err)
	}
	if i.PaidDate, err = scanDate(paid); err != nil {
		return core.FixedBillInstallment{}, fmt.Errorf("parse paid date: %w", err)
	}
	i.Status = core.Status(status)
	return i, nil
}

func (r *SQLiteRepository) PutFixedBillInstallment(ctx context.Context, i core.FixedBillInstallment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fixed_bill_installments (id, fixed_bill_id, installment_number, value_cents, original_value_cents, due_date, paid_date, status, payment_method, discount_cents, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   fixed_bill_id = excluded.fixed_bill_id,
		   installment_number = excluded.installment_number,
		   value_cents = excluded.value_cents,
		   original_value_cents = excluded.original_value_cents,
		   due_date = excluded.due_date,
		   paid_date = excluded.paid_date,
		   status = excluded.status,
		   payment_method = excluded.payment_method,
		   discount_cents = excluded.discount_cents,
		   notes = excluded.notes`,
		i.ID, i.FixedBillID, i.InstallmentNumber, i.Value.Cents, i.OriginalValue.Cents,
		dateArg(i.DueDate), dateArg(i.PaidDate), string(i.Status), i.PaymentMethod, i.Discount.Cents, i.Notes)
	if err != nil {
		return fmt.Errorf("put fixed bill installment: %w", err)
	}
	return nil
}
