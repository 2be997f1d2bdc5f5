package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hoaledger/internal/core"
	"hoaledger/internal/fiscal"
	"hoaledger/internal/log"
	"hoaledger/internal/stores"
)

// BillsCollector expands a unit's utility bills into line items. Unlike
// dues, a bill's penalty was computed when the bill was generated and the
// stored penaltyAmount is authoritative: this collector never recomputes
// it, it only decides range inclusion and formats the item.
type BillsCollector struct {
	store stores.BillStore
}

func NewBillsCollector(store stores.BillStore) *BillsCollector {
	return &BillsCollector{store: store}
}

func (c *BillsCollector) Collect(ctx context.Context, req Request, cfg stores.BillingConfigRecord, startMonth int) ([]core.LineItem, error) {
	years := fiscal.YearsInRange(req.From, req.To, startMonth)
	if len(years) == 0 {
		return nil, nil
	}

	perYear := make([][]core.LineItem, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, fy := range years {
		g.Go(func() error {
			var (
				items []core.LineItem
				err   error
			)
			switch cfg.Frequency {
			case stores.FrequencyMonthly:
				items, err = c.collectMonthly(gctx, req, fy, startMonth)
			case stores.FrequencyQuarterly:
				items, err = c.collectQuarterly(gctx, req, fy, startMonth)
			default:
				err = &core.ConfigError{ClientID: req.ClientID, Category: cfg.Category.String(), Field: "frequency"}
			}
			if err != nil {
				return err
			}
			perYear[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []core.LineItem
	for _, yearItems := range perYear {
		items = append(items, yearItems...)
	}
	return items, nil
}

func (c *BillsCollector) collectMonthly(ctx context.Context, req Request, fy, startMonth int) ([]core.LineItem, error) {
	var items []core.LineItem
	for fm := 1; fm <= 12; fm++ {
		calMonth := fiscal.ToCalendarMonth(fm, startMonth)
		calYear := fiscal.CalendarYearOf(fy, fm, startMonth)
		key := fmt.Sprintf("%04d-%02d", calYear, calMonth)

		bill, err := c.store.MonthlyBill(ctx, req.ClientID, req.UnitID, key)
		if errors.Is(err, stores.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("monthly bill %s: %w", key, err)
		}

		defaultDue := time.Date(calYear, time.Month(calMonth), 1, 0, 0, 0, 0, time.UTC)
		due := c.dueDate(ctx, bill.DueDate, defaultDue)
		if !req.inRange(due) {
			continue
		}

		item, err := c.lineItem(bill, due)
		if err != nil {
			return nil, err
		}
		item.Description = fmt.Sprintf("Utility bill - %s", due.Format("January 2006"))
		item.Period = &core.FiscalPeriod{Year: fy, Month: fm}
		items = append(items, item)
	}
	return items, nil
}

func (c *BillsCollector) collectQuarterly(ctx context.Context, req Request, fy, startMonth int) ([]core.LineItem, error) {
	var items []core.LineItem
	for q := 1; q <= 4; q++ {
		bill, err := c.store.QuarterlyBill(ctx, req.ClientID, req.UnitID, fy, q)
		if errors.Is(err, stores.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("quarterly bill %d-Q%d: %w", fy, q, err)
		}

		// Without a stored due date a quarterly bill falls due at the
		// start of its quarter.
		defaultDue := fiscal.MonthDueDate(fy, fiscal.QuarterFirstMonth(q), startMonth)
		due := c.dueDate(ctx, bill.DueDate, defaultDue)
		if !req.inRange(due) {
			continue
		}

		item, err := c.lineItem(bill, due)
		if err != nil {
			return nil, err
		}
		item.Description = fmt.Sprintf("Utility bill - Q%d FY%d", q, fy)
		item.Period = &core.FiscalPeriod{Year: fy, Quarter: q}
		items = append(items, item)
	}
	return items, nil
}

func (c *BillsCollector) lineItem(bill stores.BillRecord, due time.Time) (core.LineItem, error) {
	amount, err := toCents(bill.CurrentCharge, "bill current charge")
	if err != nil {
		return core.LineItem{}, err
	}
	paid, err := toCents(bill.PaidAmount, "bill paid amount")
	if err != nil {
		return core.LineItem{}, err
	}
	accrued, err := toCents(bill.PenaltyAmount, "bill penalty amount")
	if err != nil {
		return core.LineItem{}, err
	}

	item := core.LineItem{
		Date:            due,
		Category:        core.CategoryUtility,
		Amount:          amount,
		Penalty:         accrued,
		PaymentsApplied: paid,
	}
	if bill.Consumption != nil {
		item.Notes = fmt.Sprintf("Consumption: %.2f", *bill.Consumption)
	}
	return item, nil
}

func (c *BillsCollector) dueDate(ctx context.Context, stored string, fallback time.Time) time.Time {
	if stored == "" {
		return fallback
	}
	d, err := core.ParseDate(stored)
	if err != nil {
		slog.WarnContext(ctx, "Unparseable bill due date, using period default",
			log.FieldDueDate, stored, log.FieldError, err)
		return fallback
	}
	return d
}
