package statement

import (
	"time"

	"hoaledger/internal/core"
)

// dedupKey identifies a logical charge across exploded allocation rows. A
// bill split into several allocations shares (category, date, description),
// so only the first row of the group enters a summary bucket.
type dedupKey struct {
	category    core.Category
	date        string
	description string
}

// Summarize classifies charge items into past-due and coming-due buckets,
// tallies payment rows as paid, and computes the closing balance. The
// closing balance is the uncapped sum of charges plus penalties minus
// payments over every item, identical to the final running-balance entry.
func Summarize(items []core.LineItem, now time.Time) core.Summary {
	now = core.DateOnly(now)

	var summary core.Summary
	var total core.Money
	seen := make(map[dedupKey]bool)

	for _, item := range items {
		total += item.Outstanding()

		// Paid tally keys off actual payment rows: standalone payments
		// and payments recorded against a charge.
		if item.PaymentsApplied > 0 {
			summary.Paid.Count++
			summary.Paid.Total += item.PaymentsApplied
		}
		if item.IsPayment {
			continue
		}

		key := dedupKey{
			category:    item.Category,
			date:        item.Date.Format(core.DateLayout),
			description: item.Description,
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		outstanding := item.Outstanding()
		if outstanding <= 0 {
			// Fully offset: the charge is implicitly paid and already
			// counted through its payment row.
			continue
		}
		if item.Date.Before(now) {
			summary.PastDue.Count++
			summary.PastDue.Total += outstanding
			summary.PastDue.PenaltyTotal += item.Penalty
		} else {
			summary.ComingDue.Count++
			summary.ComingDue.Total += outstanding
		}
	}

	summary.TotalBalance = total
	return summary
}
