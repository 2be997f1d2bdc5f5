// Package memory is an in-memory implementation of the store ports, used
// by tests and the "memory" backend for local runs without a database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/stores"
)

type Store struct {
	mu      sync.RWMutex
	billing map[string]stores.BillingConfigRecord
	fiscal  map[string]stores.FiscalConfigRecord
	dues    map[string]stores.DuesYearRecord
	bills   map[string]stores.BillRecord
	txns    map[string][]stores.TransactionRecord
}

var (
	_ stores.ConfigStore = (*Store)(nil)
	_ stores.DuesStore   = (*Store)(nil)
	_ stores.BillStore   = (*Store)(nil)
	_ stores.LedgerStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		billing: make(map[string]stores.BillingConfigRecord),
		fiscal:  make(map[string]stores.FiscalConfigRecord),
		dues:    make(map[string]stores.DuesYearRecord),
		bills:   make(map[string]stores.BillRecord),
		txns:    make(map[string][]stores.TransactionRecord),
	}
}

// Fixtures is the JSON shape accepted by NewFromFile for seeding a demo
// environment.
type Fixtures struct {
	FiscalConfigs  map[string]int `json:"fiscal_configs"`
	BillingConfigs []struct {
		ClientID  string           `json:"client_id"`
		Category  string           `json:"category"`
		Rate      *float64         `json:"penalty_rate"`
		GraceDays *int             `json:"penalty_days"`
		Compound  bool             `json:"compound"`
		Frequency stores.Frequency `json:"frequency"`
	} `json:"billing_configs"`
	DuesYears []struct {
		ClientID   string                `json:"client_id"`
		UnitID     string                `json:"unit_id"`
		FiscalYear int                   `json:"fiscal_year"`
		Record     stores.DuesYearRecord `json:"record"`
	} `json:"dues_years"`
	Bills []struct {
		ClientID  string            `json:"client_id"`
		UnitID    string            `json:"unit_id"`
		PeriodKey string            `json:"period_key"`
		Record    stores.BillRecord `json:"record"`
	} `json:"utility_bills"`
	Transactions []struct {
		ClientID string                   `json:"client_id"`
		UnitID   string                   `json:"unit_id"`
		Record   stores.TransactionRecord `json:"record"`
	} `json:"ledger_txns"`
}

// NewFromFile seeds a store from a fixtures JSON file.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fx Fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	s := New()
	for clientID, month := range fx.FiscalConfigs {
		s.PutFiscalConfig(clientID, stores.FiscalConfigRecord{StartMonth: month})
	}
	for _, bc := range fx.BillingConfigs {
		cat, err := core.ParseCategory(bc.Category)
		if err != nil {
			return nil, fmt.Errorf("fixtures billing config: %w", err)
		}
		s.PutBillingConfig(stores.BillingConfigRecord{
			ClientID:  bc.ClientID,
			Category:  cat,
			Rate:      bc.Rate,
			GraceDays: bc.GraceDays,
			Compound:  bc.Compound,
			Frequency: bc.Frequency,
		})
	}
	for _, dy := range fx.DuesYears {
		s.PutYearRecord(dy.ClientID, dy.UnitID, dy.FiscalYear, dy.Record)
	}
	for _, b := range fx.Bills {
		s.PutBill(b.ClientID, b.UnitID, b.PeriodKey, b.Record)
	}
	for _, tx := range fx.Transactions {
		s.AddTransaction(tx.ClientID, tx.UnitID, tx.Record)
	}
	return s, nil
}

// Fixture setters. Keys mirror the document layout of the real backends.

func (s *Store) PutBillingConfig(rec stores.BillingConfigRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.billing[rec.ClientID+"/"+rec.Category.String()] = rec
}

func (s *Store) PutFiscalConfig(clientID string, rec stores.FiscalConfigRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiscal[clientID] = rec
}

func (s *Store) PutYearRecord(clientID, unitID string, fiscalYear int, rec stores.DuesYearRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dues[duesKey(clientID, unitID, fiscalYear)] = rec
}

// PutBill stores a bill under its period key: "2025-01" for monthly bills,
// "2025-Q1" for quarterly.
func (s *Store) PutBill(clientID, unitID, periodKey string, rec stores.BillRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[billKey(clientID, unitID, periodKey)] = rec
}

func (s *Store) AddTransaction(clientID, unitID string, rec stores.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := clientID + "/" + unitID
	s.txns[key] = append(s.txns[key], rec)
}

// Port implementations.

func (s *Store) BillingConfig(_ context.Context, clientID string, category core.Category) (stores.BillingConfigRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.billing[clientID+"/"+category.String()]
	if !ok {
		return stores.BillingConfigRecord{}, stores.ErrNotFound
	}
	return rec, nil
}

func (s *Store) FiscalConfig(_ context.Context, clientID string) (stores.FiscalConfigRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.fiscal[clientID]
	if !ok {
		return stores.FiscalConfigRecord{}, stores.ErrNotFound
	}
	return rec, nil
}

func (s *Store) YearRecord(_ context.Context, clientID, unitID string, fiscalYear int) (stores.DuesYearRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.dues[duesKey(clientID, unitID, fiscalYear)]
	if !ok {
		return stores.DuesYearRecord{}, stores.ErrNotFound
	}
	return rec, nil
}

func (s *Store) MonthlyBill(_ context.Context, clientID, unitID, yearMonth string) (stores.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.bills[billKey(clientID, unitID, yearMonth)]
	if !ok {
		return stores.BillRecord{}, stores.ErrNotFound
	}
	return rec, nil
}

func (s *Store) QuarterlyBill(_ context.Context, clientID, unitID string, fiscalYear, quarter int) (stores.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.bills[billKey(clientID, unitID, QuarterKey(fiscalYear, quarter))]
	if !ok {
		return stores.BillRecord{}, stores.ErrNotFound
	}
	return rec, nil
}

// QueryByUnit filters the unit's transactions to the inclusive date range.
// Records whose date does not parse are returned anyway: deciding whether
// to skip them (with a warning) is the collector's job.
func (s *Store) QueryByUnit(_ context.Context, clientID, unitID string, from, to time.Time) ([]stores.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []stores.TransactionRecord
	for _, rec := range s.txns[clientID+"/"+unitID] {
		d, err := core.ParseDate(rec.Date)
		if err != nil {
			out = append(out, rec)
			continue
		}
		if d.Before(core.DateOnly(from)) || d.After(core.DateOnly(to)) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func duesKey(clientID, unitID string, fiscalYear int) string {
	return fmt.Sprintf("%s/%s/%d", clientID, unitID, fiscalYear)
}

func billKey(clientID, unitID, periodKey string) string {
	return fmt.Sprintf("%s/%s/%s", clientID, unitID, periodKey)
}

// QuarterKey formats the period key of a quarterly bill, e.g. "2025-Q1".
func QuarterKey(fiscalYear, quarter int) string {
	return fmt.Sprintf("%d-Q%d", fiscalYear, quarter)
}
