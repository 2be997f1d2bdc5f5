package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/penalty"
	"hoaledger/internal/stores"
	"hoaledger/internal/stores/memory"
)

const (
	testClient = "hoa-1"
	testUnit   = "A-101"
)

func duesRequest(from, to, asOf time.Time) Request {
	return Request{ClientID: testClient, UnitID: testUnit, From: from, To: to, AsOf: asOf}
}

func duesConfig(frequency stores.Frequency) stores.BillingConfigRecord {
	rate := 0.05
	grace := 10
	return stores.BillingConfigRecord{
		ClientID:  testClient,
		Category:  core.CategoryDues,
		Rate:      &rate,
		GraceDays: &grace,
		Compound:  true,
		Frequency: frequency,
	}
}

func TestDuesCollectorUnpaidMonthAccruesPenalty(t *testing.T) {
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, stores.DuesYearRecord{ScheduledAmount: 200})

	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10, Compound: true}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.January, 31), day(2025, time.April, 15))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Collect returned %d items, want 1", len(items))
	}

	item := items[0]
	if !item.Date.Equal(day(2025, time.January, 1)) {
		t.Errorf("Date = %s, want 2025-01-01", item.Date.Format(core.DateLayout))
	}
	if item.Amount != 20000 {
		t.Errorf("Amount = %d, want 20000", item.Amount)
	}
	// Grace ends Jan 11; Apr 15 is 94 days later, three 30-day months.
	// 200.00 at 5% compounded over three months accrues 31.53.
	if item.Penalty != 3153 {
		t.Errorf("Penalty = %d, want 3153", item.Penalty)
	}
	if item.Description != "Monthly dues - January 2025" {
		t.Errorf("Description = %q", item.Description)
	}
	if item.Period == nil || item.Period.Year != 2025 || item.Period.Month != 1 {
		t.Errorf("Period = %+v, want FY2025 M1", item.Period)
	}
}

func TestDuesCollectorPaidMonthKeepsStoredPenalty(t *testing.T) {
	// The period is long overdue but was paid with a waived penalty.
	// Re-aggregating must not resurrect the penalty.
	rec := stores.DuesYearRecord{ScheduledAmount: 200}
	rec.Payments[0] = stores.PeriodPayment{
		AmountPaid:    200,
		PenaltyStored: 0,
		DueDate:       "2025-01-01",
		Method:        "check",
		Reference:     "CHK-0042",
	}
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, rec)

	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10, Compound: true}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.January, 31), day(2026, time.January, 1))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Collect returned %d items, want 1", len(items))
	}

	item := items[0]
	if item.Penalty != 0 {
		t.Errorf("Penalty = %d, want 0 (stored waiver preserved)", item.Penalty)
	}
	if item.PaymentsApplied != 20000 {
		t.Errorf("PaymentsApplied = %d, want 20000", item.PaymentsApplied)
	}
	if item.Method != "check" || item.Reference != "CHK-0042" {
		t.Errorf("payment details lost: method %q reference %q", item.Method, item.Reference)
	}
}

func TestDuesCollectorQuarterlyBillsThreeMonthsAtOnce(t *testing.T) {
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, stores.DuesYearRecord{ScheduledAmount: 100})

	cfg := duesConfig(stores.FrequencyQuarterly)
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.January, 1))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("Collect returned %d items, want 4 quarters", len(items))
	}
	for i, item := range items {
		if item.Amount != 30000 {
			t.Errorf("Q%d Amount = %d, want 30000", i+1, item.Amount)
		}
		if item.Period == nil || item.Period.Quarter != i+1 {
			t.Errorf("item %d Period = %+v, want quarter %d", i, item.Period, i+1)
		}
	}
	if items[1].Description != "Quarterly dues - Q2 FY2025" {
		t.Errorf("Description = %q", items[1].Description)
	}
	if !items[1].Date.Equal(day(2025, time.April, 1)) {
		t.Errorf("Q2 Date = %s, want 2025-04-01", items[1].Date.Format(core.DateLayout))
	}
}

func TestDuesCollectorOffsetFiscalYearDueDates(t *testing.T) {
	// Fiscal year starting July: fiscal month 1 of FY2025 is July 2025,
	// fiscal month 8 wraps into February 2026.
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, stores.DuesYearRecord{ScheduledAmount: 150})

	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: 0.02, GraceDays: 15}
	req := duesRequest(day(2025, time.July, 1), day(2026, time.June, 30), day(2025, time.July, 1))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 7)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 12 {
		t.Fatalf("Collect returned %d items, want 12", len(items))
	}
	if !items[0].Date.Equal(day(2025, time.July, 1)) {
		t.Errorf("first due = %s, want 2025-07-01", items[0].Date.Format(core.DateLayout))
	}
	if !items[7].Date.Equal(day(2026, time.February, 1)) {
		t.Errorf("fiscal month 8 due = %s, want 2026-02-01", items[7].Date.Format(core.DateLayout))
	}
}

func TestDuesCollectorStoredDueDateWins(t *testing.T) {
	rec := stores.DuesYearRecord{ScheduledAmount: 200}
	rec.Payments[2] = stores.PeriodPayment{DueDate: "2025-03-15"}
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, rec)

	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10}
	req := duesRequest(day(2025, time.March, 10), day(2025, time.March, 20), day(2025, time.March, 10))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	// Only March falls in range, and only because its stored due date
	// moved it off the first of the month.
	if len(items) != 1 {
		t.Fatalf("Collect returned %d items, want 1", len(items))
	}
	if !items[0].Date.Equal(day(2025, time.March, 15)) {
		t.Errorf("Date = %s, want stored 2025-03-15", items[0].Date.Format(core.DateLayout))
	}
}

func TestDuesCollectorMissingYearIsEmpty(t *testing.T) {
	store := memory.New()
	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))

	items, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Collect returned %d items for absent year, want 0", len(items))
	}
}

func TestDuesCollectorUnknownFrequencyFails(t *testing.T) {
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, stores.DuesYearRecord{ScheduledAmount: 200})

	cfg := duesConfig("weekly")
	pcfg := penalty.Config{Rate: 0.05, GraceDays: 10}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))

	_, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	var cerr *core.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Collect error = %v, want ConfigError", err)
	}
	if cerr.Field != "frequency" {
		t.Errorf("ConfigError.Field = %q, want frequency", cerr.Field)
	}
}

func TestDuesCollectorPenaltyErrorCarriesContext(t *testing.T) {
	store := memory.New()
	store.PutYearRecord(testClient, testUnit, 2025, stores.DuesYearRecord{ScheduledAmount: 200})

	cfg := duesConfig(stores.FrequencyMonthly)
	pcfg := penalty.Config{Rate: -0.05, GraceDays: 10}
	req := duesRequest(day(2025, time.January, 1), day(2025, time.January, 31), day(2025, time.April, 15))

	_, err := NewDuesCollector(store).Collect(context.Background(), req, cfg, pcfg, 1)
	var perr *core.PenaltyError
	if !errors.As(err, &perr) {
		t.Fatalf("Collect error = %v, want PenaltyError", err)
	}
	if perr.ClientID != testClient || perr.UnitID != testUnit {
		t.Errorf("PenaltyError context = %q/%q", perr.ClientID, perr.UnitID)
	}
	if perr.Period != "FY2025-M01" {
		t.Errorf("PenaltyError.Period = %q, want FY2025-M01", perr.Period)
	}
}
