package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies the source of a line item. The integer value doubles
// as the merge rank: for equal dates the statement always presents dues
// before utility bills before miscellaneous ledger entries.
type Category int

const (
	CategoryDues Category = iota + 1
	CategoryUtility
	CategoryLedger
)

func (c Category) String() string {
	switch c {
	case CategoryDues:
		return "dues"
	case CategoryUtility:
		return "utility"
	case CategoryLedger:
		return "ledger"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Rank is the tie-break order used by the merger for items sharing a date.
func (c Category) Rank() int { return int(c) }

// ParseCategory maps a stored category name back to its Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "dues":
		return CategoryDues, nil
	case "utility":
		return CategoryUtility, nil
	case "ledger":
		return CategoryLedger, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FiscalPeriod tags a line item with the fiscal period it bills. Month is
// set for monthly frequency, Quarter for quarterly; Year is always the
// fiscal year, which differs from the calendar year when the fiscal year
// starts after January.
type FiscalPeriod struct {
	Year    int `json:"year"`
	Month   int `json:"month,omitempty"`
	Quarter int `json:"quarter,omitempty"`
}

// LineItem is one row of the merged account ledger, either a charge or a
// payment. Amount, Penalty and PaymentsApplied are each non-negative;
// direction is carried by IsPayment, never by a negative amount.
type LineItem struct {
	Date            time.Time     `json:"date"`
	Description     string        `json:"description"`
	Category        Category      `json:"category"`
	IsPayment       bool          `json:"is_payment,omitempty"`
	Amount          Money         `json:"amount"`
	Penalty         Money         `json:"penalty"`
	PaymentsApplied Money         `json:"payments_applied"`
	Balance         Money         `json:"balance"`
	Reference       string        `json:"reference,omitempty"`
	Method          string        `json:"method,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Period          *FiscalPeriod `json:"fiscal_period,omitempty"`
}

// Outstanding is the item's own unpaid portion, before the running-balance
// pass: charge plus penalty minus the payments recorded against it.
func (li LineItem) Outstanding() Money {
	return li.Amount + li.Penalty - li.PaymentsApplied
}

// Validate checks the sign invariants on monetary fields.
func (li LineItem) Validate() error {
	if li.Amount < 0 {
		return fmt.Errorf("line item %q: negative amount %s", li.Description, li.Amount)
	}
	if li.Penalty < 0 {
		return fmt.Errorf("line item %q: negative penalty %s", li.Description, li.Penalty)
	}
	if li.PaymentsApplied < 0 {
		return fmt.Errorf("line item %q: negative payments %s", li.Description, li.PaymentsApplied)
	}
	if li.Date.IsZero() {
		return fmt.Errorf("line item %q: zero date", li.Description)
	}
	return nil
}
