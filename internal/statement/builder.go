package statement

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"hoaledger/internal/core"
	"hoaledger/internal/fiscal"
	"hoaledger/internal/log"
	"hoaledger/internal/stores"
)

// Builder runs one statement aggregation: configuration lookup, the three
// collectors (concurrently), merge, running balance and summary. A Builder
// holds only injected store ports; every Build call is independent.
type Builder struct {
	stores stores.Stores
	logger *log.Logger
}

func NewBuilder(s stores.Stores, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentStatement})
	}
	return &Builder{stores: s, logger: logger.WithComponent(log.ComponentStatement)}
}

// Build produces the unit's statement ledger for the requested range.
// Configuration errors, validation errors and penalty errors abort the
// whole call; a cancelled context aborts with the cancellation cause
// rather than returning a partial ledger.
func (b *Builder) Build(ctx context.Context, req Request) (*core.StatementLedger, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startMonth, err := b.fiscalStartMonth(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	duesCfg, err := b.billingConfig(ctx, req.ClientID, core.CategoryDues)
	if err != nil {
		return nil, err
	}
	// Validate penalty settings once, at the boundary. The collectors
	// never see a half-configured penalty policy.
	duesPenalty, err := duesCfg.PenaltyConfig()
	if err != nil {
		return nil, err
	}

	utilityCfg, err := b.billingConfig(ctx, req.ClientID, core.CategoryUtility)
	if err != nil {
		return nil, err
	}
	// Bills carry their penalty precomputed, but the configuration
	// contract still requires the fields to be present.
	if _, err := utilityCfg.PenaltyConfig(); err != nil {
		return nil, err
	}

	var (
		dues  []core.LineItem
		bills []core.LineItem
		txns  []core.LineItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dues, err = NewDuesCollector(b.stores.Dues).Collect(gctx, req, duesCfg, duesPenalty, startMonth)
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = NewBillsCollector(b.stores.Bills).Collect(gctx, req, utilityCfg, startMonth)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = NewTransactionsCollector(b.stores.Ledger).Collect(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := RunningBalance(Merge(dues, bills, txns))

	ledger := &core.StatementLedger{
		LineItems:       merged,
		DuesSubtotal:    SectionSubtotal(merged, core.CategoryDues),
		UtilitySubtotal: SectionSubtotal(merged, core.CategoryUtility),
		Summary:         Summarize(merged, req.asOf()),
	}

	b.logger.InfoContext(ctx, "Statement built",
		log.FieldClientID, req.ClientID,
		log.FieldUnitID, req.UnitID,
		"from", req.From.Format(core.DateLayout),
		"to", req.To.Format(core.DateLayout),
		log.FieldLineItems, len(merged),
		log.FieldBalance, int64(ledger.Summary.TotalBalance))

	return ledger, nil
}

func (b *Builder) fiscalStartMonth(ctx context.Context, clientID string) (int, error) {
	rec, err := b.stores.Config.FiscalConfig(ctx, clientID)
	if errors.Is(err, stores.ErrNotFound) {
		return fiscal.DefaultStartMonth, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fiscal config for client %s: %w", clientID, err)
	}
	if rec.StartMonth == 0 {
		return fiscal.DefaultStartMonth, nil
	}
	return rec.StartMonth, nil
}

// billingConfig loads a category's billing configuration. A missing
// configuration is a ConfigError, not a default: billing without explicit
// penalty settings would misstate money owed.
func (b *Builder) billingConfig(ctx context.Context, clientID string, category core.Category) (stores.BillingConfigRecord, error) {
	rec, err := b.stores.Config.BillingConfig(ctx, clientID, category)
	if errors.Is(err, stores.ErrNotFound) {
		return stores.BillingConfigRecord{}, &core.ConfigError{
			ClientID: clientID, Category: category.String(), Field: "billingConfig",
		}
	}
	if err != nil {
		return stores.BillingConfigRecord{}, fmt.Errorf("billing config for client %s category %s: %w",
			clientID, category, err)
	}
	return rec, nil
}
