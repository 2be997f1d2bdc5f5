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
	"hoaledger/internal/penalty"
	"hoaledger/internal/stores"
)

// DuesCollector expands a unit's per-period dues records into line items.
//
// The penalty rule here carries a real business distinction: a PAID period
// uses the penalty value stored on the payment record, so that a manually
// waived penalty survives re-aggregation; only UNPAID periods get their
// penalty computed dynamically as of the evaluation date.
type DuesCollector struct {
	store stores.DuesStore
}

func NewDuesCollector(store stores.DuesStore) *DuesCollector {
	return &DuesCollector{store: store}
}

// Collect emits one line item per fiscal month (monthly frequency) or per
// fiscal quarter (quarterly) whose due date falls in the request range.
func (c *DuesCollector) Collect(ctx context.Context, req Request, cfg stores.BillingConfigRecord, pcfg penalty.Config, startMonth int) ([]core.LineItem, error) {
	years := fiscal.YearsInRange(req.From, req.To, startMonth)
	if len(years) == 0 {
		return nil, nil
	}

	// Year records have no data dependency on each other; fetch them
	// concurrently and expand in year order afterwards.
	records := make([]*stores.DuesYearRecord, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, fy := range years {
		g.Go(func() error {
			rec, err := c.store.YearRecord(gctx, req.ClientID, req.UnitID, fy)
			if errors.Is(err, stores.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("dues year %d: %w", fy, err)
			}
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []core.LineItem
	for i, fy := range years {
		rec := records[i]
		if rec == nil {
			continue
		}
		var (
			yearItems []core.LineItem
			err       error
		)
		switch cfg.Frequency {
		case stores.FrequencyMonthly:
			yearItems, err = c.expandMonthly(ctx, req, *rec, pcfg, fy, startMonth)
		case stores.FrequencyQuarterly:
			yearItems, err = c.expandQuarterly(ctx, req, *rec, pcfg, fy, startMonth)
		default:
			err = &core.ConfigError{ClientID: req.ClientID, Category: cfg.Category.String(), Field: "frequency"}
		}
		if err != nil {
			return nil, err
		}
		items = append(items, yearItems...)
	}
	return items, nil
}

func (c *DuesCollector) expandMonthly(ctx context.Context, req Request, rec stores.DuesYearRecord, pcfg penalty.Config, fy, startMonth int) ([]core.LineItem, error) {
	var items []core.LineItem
	for fm := 1; fm <= 12; fm++ {
		payment := rec.Payments[fm-1]
		due := c.dueDate(ctx, payment.DueDate, fy, fm, startMonth)
		if !req.inRange(due) {
			continue
		}

		amount, err := toCents(rec.ScheduledAmount, "dues scheduled amount")
		if err != nil {
			return nil, err
		}

		item := core.LineItem{
			Date:        due,
			Description: fmt.Sprintf("Monthly dues - %s", due.Format("January 2006")),
			Category:    core.CategoryDues,
			Amount:      amount,
			Method:      payment.Method,
			Reference:   payment.Reference,
			Period:      &core.FiscalPeriod{Year: fy, Month: fm},
		}
		if err := c.applyPenalty(&item, req, payment, pcfg, fmt.Sprintf("FY%d-M%02d", fy, fm)); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *DuesCollector) expandQuarterly(ctx context.Context, req Request, rec stores.DuesYearRecord, pcfg penalty.Config, fy, startMonth int) ([]core.LineItem, error) {
	var items []core.LineItem
	for q := 1; q <= 4; q++ {
		// A quarter is billed at its first fiscal month; the payment
		// record occupies that month's slot.
		fm := fiscal.QuarterFirstMonth(q)
		payment := rec.Payments[fm-1]
		due := c.dueDate(ctx, payment.DueDate, fy, fm, startMonth)
		if !req.inRange(due) {
			continue
		}

		monthly, err := toCents(rec.ScheduledAmount, "dues scheduled amount")
		if err != nil {
			return nil, err
		}

		item := core.LineItem{
			Date:        due,
			Description: fmt.Sprintf("Quarterly dues - Q%d FY%d", q, fy),
			Category:    core.CategoryDues,
			Amount:      monthly * 3,
			Method:      payment.Method,
			Reference:   payment.Reference,
			Period:      &core.FiscalPeriod{Year: fy, Quarter: q},
		}
		if err := c.applyPenalty(&item, req, payment, pcfg, fmt.Sprintf("FY%d-Q%d", fy, q)); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// applyPenalty fills the payment and penalty fields of a dues item. Paid
// periods trust the stored penalty (waivers persist); unpaid periods accrue
// dynamically as of the evaluation date.
func (c *DuesCollector) applyPenalty(item *core.LineItem, req Request, payment stores.PeriodPayment, pcfg penalty.Config, period string) error {
	if payment.AmountPaid > 0 {
		paid, err := toCents(payment.AmountPaid, "dues amount paid")
		if err != nil {
			return err
		}
		stored, err := toCents(payment.PenaltyStored, "dues stored penalty")
		if err != nil {
			return err
		}
		item.PaymentsApplied = paid
		item.Penalty = stored
		return nil
	}

	accrued, err := pcfg.Calculate(item.Amount, item.Date, req.asOf())
	if err != nil {
		return &core.PenaltyError{ClientID: req.ClientID, UnitID: req.UnitID, Period: period, Err: err}
	}
	item.Penalty = accrued
	return nil
}

// dueDate prefers the due date stored on the payment record; without one
// (or with an unparseable one) the period's default applies.
func (c *DuesCollector) dueDate(ctx context.Context, stored string, fy, fm, startMonth int) time.Time {
	if stored != "" {
		d, err := core.ParseDate(stored)
		if err == nil {
			return d
		}
		slog.WarnContext(ctx, "Unparseable stored due date, using period default",
			log.FieldDueDate, stored, log.FieldFiscalYear, fy, log.FieldFiscalMonth, fm, log.FieldError, err)
	}
	return fiscal.MonthDueDate(fy, fm, startMonth)
}
