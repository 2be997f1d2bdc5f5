// Package statement implements the billing aggregation pipeline: three
// collectors normalize dues, utility bills and free-form ledger
// transactions into line items, which are merged chronologically, given a
// running balance and classified into a statement summary.
//
// Everything here is a pure transformation over records fetched from the
// store ports; no state survives a Build call.
package statement

import (
	"errors"
	"fmt"
	"time"

	"hoaledger/internal/core"
)

// Request identifies one statement build: a unit of one client over an
// inclusive date range. AsOf anchors penalty accrual and the past-due /
// coming-due split; zero means "now".
type Request struct {
	ClientID string
	UnitID   string
	From     time.Time
	To       time.Time
	AsOf     time.Time
}

func (r Request) Validate() error {
	if r.ClientID == "" {
		return fmt.Errorf("statement request: missing client id")
	}
	if r.UnitID == "" {
		return fmt.Errorf("statement request: missing unit id")
	}
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("statement request: missing date range")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("statement request: range end %s before start %s",
			r.To.Format(core.DateLayout), r.From.Format(core.DateLayout))
	}
	return nil
}

// asOf returns the request's evaluation day, defaulting to today.
func (r Request) asOf() time.Time {
	if r.AsOf.IsZero() {
		return core.DateOnly(time.Now())
	}
	return core.DateOnly(r.AsOf)
}

// toCents converts a stored major-unit amount, tagging the field name on
// the ValidationError so a failed build names the offending value.
func toCents(value float64, field string) (core.Money, error) {
	m, err := core.CentsFromMajor(value)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			verr.Field = field
		}
		return 0, err
	}
	return m, nil
}

// inRange reports whether a due date falls inside the request's inclusive
// date range.
func (r Request) inRange(date time.Time) bool {
	return !date.Before(core.DateOnly(r.From)) && !date.After(core.DateOnly(r.To))
}
