// Package stores defines the read-only collaborator ports the aggregation
// core consumes, together with the raw record shapes they deliver. How and
// where records are persisted is a backend concern (memory, sqlite, mongo);
// the core only ever sees these interfaces.
package stores

import (
	"context"
	"errors"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/penalty"
)

// ErrNotFound reports an absent record. Collectors treat a missing year
// record or bill as "nothing billed for that period", not as a failure.
var ErrNotFound = errors.New("stores: not found")

// Frequency is the billing cadence of a category.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// IsValid reports whether the frequency is one of the supported cadences.
func (f Frequency) IsValid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly
}

// BillingConfigRecord is a per-client, per-category billing configuration
// as stored. Rate and GraceDays are pointers because their ABSENCE must be
// detectable: a missing value is a fatal configuration error, never a
// default, since a wrong default silently misstates money owed.
type BillingConfigRecord struct {
	ClientID  string
	Category  core.Category
	Rate      *float64
	GraceDays *int
	Compound  bool
	Frequency Frequency
}

// PenaltyConfig validates the record once, at the boundary, and returns the
// typed penalty policy. Missing required fields yield a core.ConfigError.
func (r BillingConfigRecord) PenaltyConfig() (penalty.Config, error) {
	if r.Rate == nil {
		return penalty.Config{}, &core.ConfigError{
			ClientID: r.ClientID, Category: r.Category.String(), Field: "penaltyRate",
		}
	}
	if r.GraceDays == nil {
		return penalty.Config{}, &core.ConfigError{
			ClientID: r.ClientID, Category: r.Category.String(), Field: "penaltyDays",
		}
	}
	return penalty.Config{Rate: *r.Rate, GraceDays: *r.GraceDays, Compound: r.Compound}, nil
}

// FiscalConfigRecord carries the client's fiscal year start month (1-12).
// Zero means unset; the calendar package treats that as January.
type FiscalConfigRecord struct {
	StartMonth int
}

// PeriodPayment is the stored payment state of one fiscal period in a dues
// year record. PenaltyStored persists manual waivers: once a period is paid
// the stored penalty is authoritative and is never recomputed.
type PeriodPayment struct {
	AmountPaid    float64
	PenaltyStored float64
	DueDate       string
	Method        string
	Reference     string
}

// DuesYearRecord is one unit's dues schedule and payments for one fiscal
// year. Payments is indexed by fiscal month (index 0 = fiscal month 1).
type DuesYearRecord struct {
	ScheduledAmount float64
	Payments        [12]PeriodPayment
}

// BillRecord is one unit's utility bill for one period. PenaltyAmount was
// computed at bill-generation time and is used as-is by the collector.
type BillRecord struct {
	CurrentCharge float64
	PaidAmount    float64
	PenaltyAmount float64
	DueDate       string
	Consumption   *float64
}

// Allocation is one split of a ledger transaction. A negative amount is a
// payment; the "penalty" category routes the amount into the line item's
// penalty field instead of its charge amount.
type Allocation struct {
	Amount      float64
	Category    string
	Description string
}

// TransactionRecord is a free-form ledger transaction as stored. Date stays
// a string here on purpose: normalization (and the per-item skip on parse
// failure) happens in the collector, at ingestion.
type TransactionRecord struct {
	Date        string
	Description string
	Amount      float64
	Method      string
	Reference   string
	Allocations []Allocation
}

type (
	// ConfigStore serves billing and fiscal configuration.
	ConfigStore interface {
		// BillingConfig returns the category's billing configuration or
		// ErrNotFound. Presence of penaltyRate/penaltyDays is checked by
		// BillingConfigRecord.PenaltyConfig, not here.
		BillingConfig(ctx context.Context, clientID string, category core.Category) (BillingConfigRecord, error)

		// FiscalConfig returns the client's fiscal calendar settings, or
		// ErrNotFound when the client never configured one.
		FiscalConfig(ctx context.Context, clientID string) (FiscalConfigRecord, error)
	}

	// DuesStore serves per-unit dues year records.
	DuesStore interface {
		YearRecord(ctx context.Context, clientID, unitID string, fiscalYear int) (DuesYearRecord, error)
	}

	// BillStore serves per-unit utility bills, keyed by calendar year-month
	// for monthly billing or fiscal year and quarter for quarterly billing.
	BillStore interface {
		MonthlyBill(ctx context.Context, clientID, unitID, yearMonth string) (BillRecord, error)
		QuarterlyBill(ctx context.Context, clientID, unitID string, fiscalYear, quarter int) (BillRecord, error)
	}

	// LedgerStore serves free-form transactions for a unit in a date range.
	LedgerStore interface {
		QueryByUnit(ctx context.Context, clientID, unitID string, from, to time.Time) ([]TransactionRecord, error)
	}
)

// Stores bundles the four ports a statement build needs.
type Stores struct {
	Config ConfigStore
	Dues   DuesStore
	Bills  BillStore
	Ledger LedgerStore
}
