// Package penalty computes accrued late penalties for a charge. A penalty
// starts accruing one grace period after the due date and grows per 30-day
// month, either linearly or compounding.
package penalty

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hoaledger/internal/core"
)

// daysPerMonth is the billing month used for overdue accrual. The source
// system bills penalties per started 30-day block, not per calendar month.
const daysPerMonth = 30

// Config is a validated penalty policy for one billing category. Both Rate
// and GraceDays are required at the configuration boundary; a Config only
// exists once presence has been checked there.
type Config struct {
	// Rate is the fractional penalty per overdue month, e.g. 0.05.
	Rate float64
	// GraceDays is the number of days after the due date before accrual
	// starts.
	GraceDays int
	// Compound applies the rate per overdue month on the accumulated
	// total instead of linearly on the base amount.
	Compound bool
}

// Calculate returns the penalty in centavos accrued on base (centavos) for
// a charge due on dueDate, evaluated as of asOf. A charge still inside its
// grace period accrues nothing, never a negative penalty.
func (c Config) Calculate(base core.Money, dueDate, asOf time.Time) (core.Money, error) {
	if base <= 0 {
		return 0, nil
	}
	if c.GraceDays <= 0 {
		return 0, fmt.Errorf("penalty days must be positive, got %d", c.GraceDays)
	}
	if c.Rate < 0 {
		return 0, fmt.Errorf("penalty rate must not be negative, got %v", c.Rate)
	}
	if c.Rate == 0 {
		return 0, nil
	}

	graceEnd := dueDate.AddDate(0, 0, c.GraceDays)
	daysOverdue := int(asOf.Sub(graceEnd).Hours() / 24)
	monthsOverdue := daysOverdue / daysPerMonth
	if monthsOverdue <= 0 {
		return 0, nil
	}

	amount := decimal.NewFromInt(base.Cents())
	rate := decimal.NewFromFloat(c.Rate)
	months := decimal.NewFromInt(int64(monthsOverdue))

	var accrued decimal.Decimal
	if c.Compound {
		// base * ((1+rate)^months - 1)
		factor := decimal.NewFromInt(1).Add(rate).Pow(months)
		accrued = amount.Mul(factor.Sub(decimal.NewFromInt(1)))
	} else {
		// base * rate * months
		accrued = amount.Mul(rate).Mul(months)
	}

	// Round half away from zero to the nearest centavo.
	return core.Money(accrued.Round(0).IntPart()), nil
}
