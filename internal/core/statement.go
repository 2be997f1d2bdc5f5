package core

// SectionSubtotal aggregates one charge category of the statement. The
// running balance is capped at zero: an overpaid section shows zero owed,
// and the surplus is tracked as a credit balance by the collaborator that
// owns payments, never as a negative section balance.
type SectionSubtotal struct {
	Subtotal        Money `json:"subtotal"`
	PenaltySubtotal Money `json:"penalty_subtotal"`
	PaymentsApplied Money `json:"payments_applied"`
	RunningBalance  Money `json:"running_balance"`
}

// ItemTally counts and totals one summary bucket.
type ItemTally struct {
	Count int   `json:"count"`
	Total Money `json:"total"`
}

// PastDueTally additionally carries the accrued penalties of the bucket.
type PastDueTally struct {
	Count        int   `json:"count"`
	Total        Money `json:"total"`
	PenaltyTotal Money `json:"penalty_total"`
}

// Summary is the top line of a statement: the closing balance plus the
// paid / past-due / coming-due buckets.
type Summary struct {
	TotalBalance Money        `json:"total_balance"`
	Paid         ItemTally    `json:"paid_items"`
	PastDue      PastDueTally `json:"past_due_items"`
	ComingDue    ItemTally    `json:"coming_due_items"`
}

// StatementLedger is the final aggregation result handed to the rendering
// collaborator. It is built fresh per call and never mutated afterwards.
type StatementLedger struct {
	LineItems       []LineItem      `json:"line_items"`
	DuesSubtotal    SectionSubtotal `json:"dues_subtotal"`
	UtilitySubtotal SectionSubtotal `json:"utility_subtotal"`
	Summary         Summary         `json:"summary"`
}
