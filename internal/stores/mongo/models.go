package mongo

import "hoaledger/internal/stores"

// Document models mirror the store records one-to-one; money fields stay
// in major units here, normalization happens in the collectors.

type billingConfigDoc struct {
	ClientID  string   `bson:"client_id"`
	Category  string   `bson:"category"`
	Rate      *float64 `bson:"penalty_rate,omitempty"`
	GraceDays *int     `bson:"penalty_days,omitempty"`
	Compound  bool     `bson:"compound"`
	Frequency string   `bson:"frequency"`
}

type clientSettingsDoc struct {
	ClientID   string `bson:"client_id"`
	StartMonth int    `bson:"fiscal_start_month"`
}

type periodPaymentDoc struct {
	Month         int     `bson:"month"`
	AmountPaid    float64 `bson:"amount_paid"`
	PenaltyStored float64 `bson:"penalty_stored"`
	DueDate       string  `bson:"due_date,omitempty"`
	Method        string  `bson:"method,omitempty"`
	Reference     string  `bson:"reference,omitempty"`
}

type duesYearDoc struct {
	ClientID        string             `bson:"client_id"`
	UnitID          string             `bson:"unit_id"`
	FiscalYear      int                `bson:"fiscal_year"`
	ScheduledAmount float64            `bson:"scheduled_amount"`
	Payments        []periodPaymentDoc `bson:"payments,omitempty"`
}

type billDoc struct {
	ClientID      string   `bson:"client_id"`
	UnitID        string   `bson:"unit_id"`
	PeriodKey     string   `bson:"period_key"`
	CurrentCharge float64  `bson:"current_charge"`
	PaidAmount    float64  `bson:"paid_amount"`
	PenaltyAmount float64  `bson:"penalty_amount"`
	DueDate       string   `bson:"due_date,omitempty"`
	Consumption   *float64 `bson:"consumption,omitempty"`
}

type allocationDoc struct {
	Amount      float64 `bson:"amount"`
	Category    string  `bson:"category,omitempty"`
	Description string  `bson:"description,omitempty"`
}

type transactionDoc struct {
	ClientID    string          `bson:"client_id"`
	UnitID      string          `bson:"unit_id"`
	Date        string          `bson:"date"`
	Description string          `bson:"description"`
	Amount      float64         `bson:"amount"`
	Method      string          `bson:"method,omitempty"`
	Reference   string          `bson:"reference,omitempty"`
	Allocations []allocationDoc `bson:"allocations,omitempty"`
}

func fromDuesYearDoc(doc duesYearDoc) stores.DuesYearRecord {
	rec := stores.DuesYearRecord{ScheduledAmount: doc.ScheduledAmount}
	for _, p := range doc.Payments {
		if p.Month < 1 || p.Month > 12 {
			continue
		}
		rec.Payments[p.Month-1] = stores.PeriodPayment{
			AmountPaid:    p.AmountPaid,
			PenaltyStored: p.PenaltyStored,
			DueDate:       p.DueDate,
			Method:        p.Method,
			Reference:     p.Reference,
		}
	}
	return rec
}

func fromBillDoc(doc billDoc) stores.BillRecord {
	return stores.BillRecord{
		CurrentCharge: doc.CurrentCharge,
		PaidAmount:    doc.PaidAmount,
		PenaltyAmount: doc.PenaltyAmount,
		DueDate:       doc.DueDate,
		Consumption:   doc.Consumption,
	}
}

func fromTransactionDoc(doc transactionDoc) stores.TransactionRecord {
	rec := stores.TransactionRecord{
		Date:        doc.Date,
		Description: doc.Description,
		Amount:      doc.Amount,
		Method:      doc.Method,
		Reference:   doc.Reference,
	}
	for _, a := range doc.Allocations {
		rec.Allocations = append(rec.Allocations, stores.Allocation{
			Amount:      a.Amount,
			Category:    a.Category,
			Description: a.Description,
		})
	}
	return rec
}
