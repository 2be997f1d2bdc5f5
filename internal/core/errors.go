package core

import "fmt"

// The aggregation pipeline reports exactly four error kinds. Callers match
// them with errors.As; nothing in this module branches on error messages.

// ConfigError is fatal: a billing configuration is missing penaltyRate or
// penaltyDays. It is never substituted with a default, since a wrong default
// silently misstates money owed.
type ConfigError struct {
	ClientID string
	Category string
	Field    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("billing config for client %s category %s: missing required field %s",
		e.ClientID, e.Category, e.Field)
}

// DateParseError is the only recoverable error kind: an unparseable date on
// a ledger transaction skips that single line item with a logged warning
// instead of aborting the aggregation.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// ValidationError is fatal for the whole call: a stored monetary value did
// not resolve to whole centavos after conversion.
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: amount %v does not resolve to whole centavos", e.Field, e.Value)
	}
	return fmt.Sprintf("amount %v does not resolve to whole centavos", e.Value)
}

// PenaltyError is fatal and wraps the underlying cause, carrying the unit
// and period it was computing for.
type PenaltyError struct {
	ClientID string
	UnitID   string
	Period   string
	Err      error
}

func (e *PenaltyError) Error() string {
	return fmt.Sprintf("penalty for client %s unit %s period %s: %v",
		e.ClientID, e.UnitID, e.Period, e.Err)
}

func (e *PenaltyError) Unwrap() error { return e.Err }
