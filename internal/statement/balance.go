package statement

import "hoaledger/internal/core"

// RunningBalance assigns each item the balance after applying it:
// charges and penalties add, payments subtract. This pass is the only
// writer of LineItem.Balance; collectors leave the field zero. All
// arithmetic stays in centavos, so no rounding happens between items.
func RunningBalance(items []core.LineItem) []core.LineItem {
	var balance core.Money
	for i := range items {
		balance += items[i].Amount + items[i].Penalty - items[i].PaymentsApplied
		items[i].Balance = balance
	}
	return items
}

// SectionSubtotal totals one charge category. The section running balance
// is capped at zero: overpayment is a credit-balance concept owned by the
// payments collaborator, never a negative section balance on a statement.
func SectionSubtotal(items []core.LineItem, category core.Category) core.SectionSubtotal {
	var sub core.SectionSubtotal
	for _, item := range items {
		if item.Category != category {
			continue
		}
		sub.Subtotal += item.Amount
		sub.PenaltySubtotal += item.Penalty
		sub.PaymentsApplied += item.PaymentsApplied
	}
	balance := sub.Subtotal + sub.PenaltySubtotal - sub.PaymentsApplied
	if balance < 0 {
		balance = 0
	}
	sub.RunningBalance = balance
	return sub
}
