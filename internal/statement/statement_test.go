package statement

import (
	"testing"
	"time"

	"hoaledger/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeOrdersByDateThenCategory(t *testing.T) {
	d1 := day(2025, time.March, 1)
	d2 := day(2025, time.March, 15)

	dues := []core.LineItem{
		{Date: d2, Description: "dues late", Category: core.CategoryDues},
	}
	bills := []core.LineItem{
		{Date: d1, Description: "bill early", Category: core.CategoryUtility},
		{Date: d2, Description: "bill late", Category: core.CategoryUtility},
	}
	txns := []core.LineItem{
		{Date: d1, Description: "txn early", Category: core.CategoryLedger},
		{Date: d2, Description: "txn late", Category: core.CategoryLedger},
	}

	merged := Merge(dues, bills, txns)

	want := []string{"bill early", "txn early", "dues late", "bill late", "txn late"}
	if len(merged) != len(want) {
		t.Fatalf("Merge returned %d items, want %d", len(merged), len(want))
	}
	for i, desc := range want {
		if merged[i].Description != desc {
			t.Errorf("position %d = %q, want %q", i, merged[i].Description, desc)
		}
	}
}

func TestMergeIsStableWithinSameKey(t *testing.T) {
	d := day(2025, time.June, 1)
	txns := []core.LineItem{
		{Date: d, Description: "first", Category: core.CategoryLedger},
		{Date: d, Description: "second", Category: core.CategoryLedger},
	}

	merged := Merge(nil, txns)
	if merged[0].Description != "first" || merged[1].Description != "second" {
		t.Errorf("equal-key items reordered: got %q then %q", merged[0].Description, merged[1].Description)
	}
}

func TestRunningBalance(t *testing.T) {
	items := []core.LineItem{
		{Date: day(2025, time.January, 1), Category: core.CategoryDues, Amount: 20000, Penalty: 1000},
		{Date: day(2025, time.January, 15), Category: core.CategoryLedger, IsPayment: true, PaymentsApplied: 5000},
		{Date: day(2025, time.February, 1), Category: core.CategoryUtility, Amount: 7550},
	}

	items = RunningBalance(items)

	wantBalances := []core.Money{21000, 16000, 23550}
	for i, want := range wantBalances {
		if items[i].Balance != want {
			t.Errorf("item %d balance = %d, want %d", i, items[i].Balance, want)
		}
	}

	// The closing running balance must equal the uncapped signed sum
	// over all items.
	var sum core.Money
	for _, item := range items {
		sum += item.Amount + item.Penalty - item.PaymentsApplied
	}
	if sum != items[len(items)-1].Balance {
		t.Errorf("signed sum %d != closing balance %d", sum, items[len(items)-1].Balance)
	}
}

func TestSectionSubtotal(t *testing.T) {
	items := []core.LineItem{
		{Category: core.CategoryDues, Amount: 20000, Penalty: 1000},
		{Category: core.CategoryDues, Amount: 20000, PaymentsApplied: 20000},
		{Category: core.CategoryUtility, Amount: 9999},
	}

	sub := SectionSubtotal(items, core.CategoryDues)
	if sub.Subtotal != 40000 {
		t.Errorf("Subtotal = %d, want 40000", sub.Subtotal)
	}
	if sub.PenaltySubtotal != 1000 {
		t.Errorf("PenaltySubtotal = %d, want 1000", sub.PenaltySubtotal)
	}
	if sub.PaymentsApplied != 20000 {
		t.Errorf("PaymentsApplied = %d, want 20000", sub.PaymentsApplied)
	}
	if sub.RunningBalance != 21000 {
		t.Errorf("RunningBalance = %d, want 21000", sub.RunningBalance)
	}
}

func TestSectionSubtotalCapsOverpaymentAtZero(t *testing.T) {
	items := []core.LineItem{
		{Category: core.CategoryDues, Amount: 10000, PaymentsApplied: 15000},
	}
	sub := SectionSubtotal(items, core.CategoryDues)
	if sub.RunningBalance != 0 {
		t.Errorf("overpaid RunningBalance = %d, want 0", sub.RunningBalance)
	}
	if sub.PaymentsApplied != 15000 {
		t.Errorf("PaymentsApplied = %d, want 15000", sub.PaymentsApplied)
	}
}

func TestSummarizeBuckets(t *testing.T) {
	now := day(2025, time.April, 15)
	items := []core.LineItem{
		// Past due, unpaid, with penalty.
		{Date: day(2025, time.January, 1), Description: "Monthly dues - January 2025",
			Category: core.CategoryDues, Amount: 20000, Penalty: 3153},
		// Paid in full: counted in the paid tally, excluded from buckets.
		{Date: day(2025, time.February, 1), Description: "Monthly dues - February 2025",
			Category: core.CategoryDues, Amount: 20000, PaymentsApplied: 20000},
		// Standalone payment row.
		{Date: day(2025, time.March, 1), Description: "Online payment",
			Category: core.CategoryLedger, IsPayment: true, PaymentsApplied: 5000},
		// Not yet due.
		{Date: day(2025, time.May, 1), Description: "Monthly dues - May 2025",
			Category: core.CategoryDues, Amount: 20000},
	}

	s := Summarize(items, now)

	if s.PastDue.Count != 1 || s.PastDue.Total != 23153 || s.PastDue.PenaltyTotal != 3153 {
		t.Errorf("PastDue = %+v, want count 1 total 23153 penalty 3153", s.PastDue)
	}
	if s.ComingDue.Count != 1 || s.ComingDue.Total != 20000 {
		t.Errorf("ComingDue = %+v, want count 1 total 20000", s.ComingDue)
	}
	if s.Paid.Count != 2 || s.Paid.Total != 25000 {
		t.Errorf("Paid = %+v, want count 2 total 25000", s.Paid)
	}
	if s.TotalBalance != 38153 {
		t.Errorf("TotalBalance = %d, want 38153", s.TotalBalance)
	}
}

func TestSummarizeDeduplicatesExplodedAllocations(t *testing.T) {
	now := day(2025, time.June, 1)
	d := day(2025, time.March, 1)
	// One bill exploded into two allocation rows: same category, date
	// and description. Only the first row may enter a bucket; the total
	// balance still counts both.
	items := []core.LineItem{
		{Date: d, Description: "Water service", Category: core.CategoryLedger, Amount: 5000},
		{Date: d, Description: "Water service", Category: core.CategoryLedger, Penalty: 500},
	}

	s := Summarize(items, now)
	if s.PastDue.Count != 1 {
		t.Errorf("PastDue.Count = %d, want 1 after dedup", s.PastDue.Count)
	}
	if s.PastDue.Total != 5000 {
		t.Errorf("PastDue.Total = %d, want 5000 (first row only)", s.PastDue.Total)
	}
	if s.TotalBalance != 5500 {
		t.Errorf("TotalBalance = %d, want 5500 (all rows)", s.TotalBalance)
	}
}

func TestSummarizeItemDueTodayIsComingDue(t *testing.T) {
	now := day(2025, time.April, 1)
	items := []core.LineItem{
		{Date: now, Description: "Monthly dues - April 2025", Category: core.CategoryDues, Amount: 20000},
	}

	s := Summarize(items, now)
	if s.PastDue.Count != 0 {
		t.Errorf("item due today classified past due")
	}
	if s.ComingDue.Count != 1 {
		t.Errorf("ComingDue.Count = %d, want 1", s.ComingDue.Count)
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{
		ClientID: "hoa-1", UnitID: "A-101",
		From: day(2025, time.January, 1), To: day(2025, time.December, 31),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"missing client", Request{UnitID: "A-101", From: valid.From, To: valid.To}},
		{"missing unit", Request{ClientID: "hoa-1", From: valid.From, To: valid.To}},
		{"missing range", Request{ClientID: "hoa-1", UnitID: "A-101"}},
		{"inverted range", Request{ClientID: "hoa-1", UnitID: "A-101", From: valid.To, To: valid.From}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
