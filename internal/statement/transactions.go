package statement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/log"
	"hoaledger/internal/stores"
)

// penaltyCategory tags a transaction allocation whose amount is a penalty
// charge rather than a regular charge.
const penaltyCategory = "penalty"

// TransactionsCollector normalizes free-form ledger transactions. A
// transaction with split allocations explodes into one line item per
// allocation; a plain transaction becomes a single item. A transaction
// whose date cannot be parsed is skipped with a warning; that is the only
// recoverable error in the pipeline.
type TransactionsCollector struct {
	store stores.LedgerStore
}

func NewTransactionsCollector(store stores.LedgerStore) *TransactionsCollector {
	return &TransactionsCollector{store: store}
}

func (c *TransactionsCollector) Collect(ctx context.Context, req Request) ([]core.LineItem, error) {
	txns, err := c.store.QueryByUnit(ctx, req.ClientID, req.UnitID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("query ledger transactions: %w", err)
	}

	var items []core.LineItem
	for _, txn := range txns {
		date, err := core.ParseDate(txn.Date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping ledger transaction with unparseable date",
				"date", txn.Date,
				"description", txn.Description,
				"reference", txn.Reference,
				log.FieldError, err)
			continue
		}

		if len(txn.Allocations) == 0 {
			item, err := c.plainItem(txn, date)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		for _, alloc := range txn.Allocations {
			item, err := c.allocationItem(txn, alloc, date)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// plainItem maps an untagged transaction: the sign of the stored amount
// decides charge versus payment.
func (c *TransactionsCollector) plainItem(txn stores.TransactionRecord, date time.Time) (core.LineItem, error) {
	amount, err := toCents(txn.Amount, "transaction amount")
	if err != nil {
		return core.LineItem{}, err
	}

	item := core.LineItem{
		Date:        date,
		Description: txn.Description,
		Category:    core.CategoryLedger,
		Method:      txn.Method,
		Reference:   txn.Reference,
	}
	if amount < 0 {
		item.IsPayment = true
		item.PaymentsApplied = amount.Abs()
	} else {
		item.Amount = amount
	}
	return item, nil
}

// allocationItem maps one split of a transaction. Negative allocations are
// payments; positive ones are charges, landing in the penalty field when
// the allocation is tagged as a penalty.
func (c *TransactionsCollector) allocationItem(txn stores.TransactionRecord, alloc stores.Allocation, date time.Time) (core.LineItem, error) {
	amount, err := toCents(alloc.Amount, "allocation amount")
	if err != nil {
		return core.LineItem{}, err
	}

	description := alloc.Description
	if description == "" {
		description = txn.Description
	}

	item := core.LineItem{
		Date:        date,
		Description: description,
		Category:    core.CategoryLedger,
		Method:      txn.Method,
		Reference:   txn.Reference,
	}
	switch {
	case amount < 0:
		item.IsPayment = true
		item.PaymentsApplied = amount.Abs()
	case strings.EqualFold(alloc.Category, penaltyCategory):
		item.Penalty = amount
	default:
		item.Amount = amount
	}
	return item, nil
}
