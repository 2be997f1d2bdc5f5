package statement

import (
	"sort"

	"hoaledger/internal/core"
)

// Merge combines collector outputs into one chronologically ordered ledger.
// Items sharing a date keep the category rank order (dues, then utility,
// then ledger); the renderer depends on that ordering, so it is a contract,
// not a cosmetic choice. The sort is stable: items equal on both keys keep
// their collector order.
func Merge(groups ...[]core.LineItem) []core.LineItem {
	var size int
	for _, g := range groups {
		size += len(g)
	}
	merged := make([]core.LineItem, 0, size)
	for _, g := range groups {
		merged = append(merged, g...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].Category.Rank() < merged[j].Category.Rank()
	})
	return merged
}
