package core

import (
	"errors"
	"strings"
	"time"
)

// Installment and fixed-bill installment statuses. The stored status is
// authoritative input for derivations, but "currently overdue" is always
// recomputed from the due date because the stored value is only refreshed
// at write time.
const (
	StatusOpen    Status = "open"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Commission statuses.
const (
	CommissionPending CommissionStatus = "pending"
	CommissionPaid    CommissionStatus = "paid"
)

// Employee payment types.
const (
	PaymentSalary  PaymentType = "salary"
	PaymentBonus   PaymentType = "bonus"
	PaymentAdvance PaymentType = "advance"
)

type (
	Status           string
	CommissionStatus string
	PaymentType      string

	// Date is a calendar day at UTC midnight. The zero value means "absent".
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// TenantScope restricts derivations to one company. The zero value means
	// unscoped. Passed explicitly into every derivation call; there is no
	// ambient "selected company" state.
	TenantScope struct {
		CompanyID string
	}

	Client struct {
		ID        string
		CompanyID string
		Name      string
		Document  string
		Email     string
		Phone     string
		EntryDate Date
		ExitDate  Date
	}

	Contract struct {
		ID          string
		ClientID    string
		Description string
		TotalValue  Money
		StartDate   Date
	}

	Installment struct {
		ID                string
		ContractID        string
		InstallmentNumber int
		TotalInstallments int
		Value             Money
		DueDate           Date
		PaidDate          Date
		Status            Status
	}

	Employee struct {
		ID       string
		Name     string
		Role     string
		Email    string
		Phone    string
		Salary   Money
		HireDate Date
		Active   bool
	}

	EmployeePayment struct {
		ID          string
		EmployeeID  string
		Amount      Money
		PaymentDate Date
		Type        PaymentType
		Description string
		ReceiptRef  string
	}

	Commission struct {
		ID             string
		EmployeeID     string
		InstallmentID  string
		Amount         Money
		Percentage     float64
		CommissionDate Date
		Status         CommissionStatus
		PaidDate       Date
		Description    string
	}

	FixedBill struct {
		ID                string
		CompanyID         string
		Name              string
		Description       string
		TotalValue        Money
		TotalInstallments int
		StartDate         Date
	}

	FixedBillInstallment struct {
		ID                string
		FixedBillID       string
		InstallmentNumber int
		Value             Money
		OriginalValue     Money
		DueDate           Date
		PaidDate          Date
		Status            Status
		PaymentMethod     string
		Discount          Money
		Notes             string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingDueDate   = errors.New("missing due date")
	ErrMissingStartDate = errors.New("missing start date")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty reports whether the date is absent.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String renders the date as ISO-8601 (YYYY-MM-DD), empty when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON serializes the date as an ISO-8601 calendar day, null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts null, "", or YYYY-MM-DD.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddMonths returns the date shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

func (s CommissionStatus) Valid() bool {
	return s == CommissionPending || s == CommissionPaid
}

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentSalary, PaymentBonus, PaymentAdvance:
		return true
	default:
		return false
	}
}

// IsZero reports whether the scope is unscoped.
func (s TenantScope) IsZero() bool {
	return s.CompanyID == ""
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

func (c Contract) Validate() error {
	if c.ClientID == "" {
		return errors.New("missing client id")
	}
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	return c.TotalValue.Validate()
}

func (i Installment) Validate() error {
	if i.ContractID == "" {
		return errors.New("missing contract id")
	}
	if i.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := i.Value.Validate(); err != nil {
		return err
	}
	if i.InstallmentNumber < 1 || i.InstallmentNumber > i.TotalInstallments {
		return errors.New("installment number out of range")
	}
	return nil
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return e.Salary.Validate()
}

func (p EmployeePayment) Validate() error {
	if p.EmployeeID == "" {
		return errors.New("missing employee id")
	}
	if !p.Type.Valid() {
		return errors.New("invalid payment type")
	}
	if p.PaymentDate.IsZero() {
		return errors.New("missing payment date")
	}
	return p.Amount.Validate()
}

func (c Commission) Validate() error {
	if c.EmployeeID == "" {
		return errors.New("missing employee id")
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	if c.CommissionDate.IsZero() {
		return errors.New("missing commission date")
	}
	return c.Amount.Validate()
}

func (b FixedBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.TotalInstallments < 1 {
		return errors.New("total installments must be at least 1")
	}
	if b.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	return b.TotalValue.Validate()
}

func (i FixedBillInstallment) Validate() error {
	if i.FixedBillID == "" {
		return errors.New("missing fixed bill id")
	}
	if i.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	return i.Value.Validate()
}
