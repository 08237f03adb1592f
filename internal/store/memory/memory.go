// Package memory provides a mutex-guarded in-memory store, used as the
// default backend and as the test double for the service and HTTP layers.
package memory

import (
	"context"
	"sort"
	"sync"

	"cobranca/internal/core"
	"cobranca/internal/store"
)

type Store struct {
	mu                    sync.Mutex
	clients               map[string]core.Client
	contracts             map[string]core.Contract
	installments          map[string]core.Installment
	employees             map[string]core.Employee
	payments              map[string]core.EmployeePayment
	commissions           map[string]core.Commission
	fixedBills            map[string]core.FixedBill
	fixedBillInstallments map[string]core.FixedBillInstallment
}

func New() *Store {
	return &Store{
		clients:               make(map[string]core.Client),
		contracts:             make(map[string]core.Contract),
		installments:          make(map[string]core.Installment),
		employees:             make(map[string]core.Employee),
		payments:              make(map[string]core.EmployeePayment),
		commissions:           make(map[string]core.Commission),
		fixedBills:            make(map[string]core.FixedBill),
		fixedBillInstallments: make(map[string]core.FixedBillInstallment),
	}
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetClient(_ context.Context, id string) (core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return core.Client{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) PutClient(_ context.Context, c core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	for cid, contract := range s.contracts {
		if contract.ClientID != id {
			continue
		}
		delete(s.contracts, cid)
		for iid, inst := range s.installments {
			if inst.ContractID == cid {
				delete(s.installments, iid)
			}
		}
	}
	return nil
}

func (s *Store) ListContracts(_ context.Context) ([]core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetContract(_ context.Context, id string) (core.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return core.Contract{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) PutContract(_ context.Context, c core.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.ID] = c
	return nil
}

func (s *Store) ListInstallments(_ context.Context) ([]core.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Installment, 0, len(s.installments))
	for _, i := range s.installments {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetInstallment(_ context.Context, id string) (core.Installment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.installments[id]
	if !ok {
		return core.Installment{}, store.ErrNotFound
	}
	return i, nil
}

func (s *Store) PutInstallment(_ context.Context, i core.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installments[i.ID] = i
	return nil
}

func (s *Store) ListEmployees(_ context.Context) ([]core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return core.Employee{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) PutEmployee(_ context.Context, e core.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) ListEmployeePayments(_ context.Context) ([]core.EmployeePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.EmployeePayment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) PutEmployeePayment(_ context.Context, p core.EmployeePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *Store) ListCommissions(_ context.Context) ([]core.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Commission, 0, len(s.commissions))
	for _, c := range s.commissions {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetCommission(_ context.Context, id string) (core.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commissions[id]
	if !ok {
		return core.Commission{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) PutCommission(_ context.Context, c core.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commissions[c.ID] = c
	return nil
}

func (s *Store) ListFixedBills(_ context.Context) ([]core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FixedBill, 0, len(s.fixedBills))
	for _, b := range s.fixedBills {
		out = append(out, b)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetFixedBill(_ context.Context, id string) (core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.fixedBills[id]
	if !ok {
		return core.FixedBill{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) PutFixedBill(_ context.Context, b core.FixedBill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedBills[b.ID] = b
	return nil
}

func (s *Store) DeleteFixedBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fixedBills[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.fixedBills, id)
	for iid, inst := range s.fixedBillInstallments {
		if inst.FixedBillID == id {
			delete(s.fixedBillInstallments, iid)
		}
	}
	return nil
}

func (s *Store) ListFixedBillInstallments(_ context.Context) ([]core.FixedBillInstallment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FixedBillInstallment, 0, len(s.fixedBillInstallments))
	for _, i := range s.fixedBillInstallments {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) GetFixedBillInstallment(_ context.Context, id string) (core.FixedBillInstallment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.fixedBillInstallments[id]
	if !ok {
		return core.FixedBillInstallment{}, store.ErrNotFound
	}
	return i, nil
}

func (s *Store) PutFixedBillInstallment(_ context.Context, i core.FixedBillInstallment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedBillInstallments[i.ID] = i
	return nil
}
