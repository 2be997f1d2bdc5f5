package statement

import (
	"context"
	"testing"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/stores"
	"hoaledger/internal/stores/memory"
)

func TestTransactionsCollectorPlainChargeAndPayment(t *testing.T) {
	store := memory.New()
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "2025-02-10",
		Description: "Gate remote replacement",
		Amount:      25,
		Method:      "cash",
	})
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "2025-02-20",
		Description: "Online payment",
		Amount:      -150,
		Method:      "transfer",
		Reference:   "TXN-991",
	})

	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))
	items, err := NewTransactionsCollector(store).Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Collect returned %d items, want 2", len(items))
	}

	charge := items[0]
	if charge.IsPayment || charge.Amount != 2500 || charge.PaymentsApplied != 0 {
		t.Errorf("charge item = %+v, want amount 2500", charge)
	}
	if charge.Category != core.CategoryLedger {
		t.Errorf("charge Category = %v, want ledger", charge.Category)
	}

	payment := items[1]
	if !payment.IsPayment {
		t.Errorf("negative amount not flagged as payment")
	}
	if payment.PaymentsApplied != 15000 || payment.Amount != 0 {
		t.Errorf("payment item = %+v, want payments applied 15000", payment)
	}
	if payment.Reference != "TXN-991" {
		t.Errorf("Reference = %q", payment.Reference)
	}
}

func TestTransactionsCollectorExplodesAllocations(t *testing.T) {
	store := memory.New()
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "2025-03-05",
		Description: "Special assessment",
		Amount:      120,
		Allocations: []stores.Allocation{
			{Amount: 100, Category: "assessment", Description: "Roof repair share"},
			{Amount: 20, Category: "Penalty"},
			{Amount: -30, Category: "credit", Description: "Prior overpayment"},
		},
	})

	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))
	items, err := NewTransactionsCollector(store).Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Collect returned %d items, want 3", len(items))
	}

	if items[0].Amount != 10000 || items[0].Description != "Roof repair share" {
		t.Errorf("allocation 0 = %+v", items[0])
	}
	// Penalty-tagged allocation lands in the penalty field, with the
	// category match case-insensitive and the description falling back
	// to the transaction's.
	if items[1].Penalty != 2000 || items[1].Amount != 0 {
		t.Errorf("penalty allocation = %+v", items[1])
	}
	if items[1].Description != "Special assessment" {
		t.Errorf("penalty allocation description = %q", items[1].Description)
	}
	if !items[2].IsPayment || items[2].PaymentsApplied != 3000 {
		t.Errorf("negative allocation = %+v, want payment of 3000", items[2])
	}
}

func TestTransactionsCollectorSkipsUnparseableDates(t *testing.T) {
	store := memory.New()
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "sometime in march",
		Description: "Bad row",
		Amount:      10,
	})
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "2025-03-10",
		Description: "Good row",
		Amount:      10,
	})

	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))
	items, err := NewTransactionsCollector(store).Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Collect returned %d items, want 1 (bad row skipped)", len(items))
	}
	if items[0].Description != "Good row" {
		t.Errorf("kept %q, want the parseable row", items[0].Description)
	}
}

func TestTransactionsCollectorAcceptsAlternateDateLayouts(t *testing.T) {
	store := memory.New()
	store.AddTransaction(testClient, testUnit, stores.TransactionRecord{
		Date:        "03/10/2025",
		Description: "US layout",
		Amount:      10,
	})

	req := duesRequest(day(2025, time.January, 1), day(2025, time.December, 31), day(2025, time.June, 1))
	items, err := NewTransactionsCollector(store).Collect(context.Background(), req)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Collect returned %d items, want 1", len(items))
	}
	if !items[0].Date.Equal(day(2025, time.March, 10)) {
		t.Errorf("Date = %s, want 2025-03-10", items[0].Date.Format(core.DateLayout))
	}
}
