// Package storage is the SQLite persistence layer. The repository serves
// the read-only store ports the statement builder consumes and offers
// write helpers used by ingestion tooling and fixtures.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hoaledger/internal/core"
	"hoaledger/internal/stores"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ stores.ConfigStore = (*SQLiteRepository)(nil)
	_ stores.DuesStore   = (*SQLiteRepository)(nil)
	_ stores.BillStore   = (*SQLiteRepository)(nil)
	_ stores.LedgerStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// BillingConfig implements stores.ConfigStore
func (r *SQLiteRepository) BillingConfig(ctx context.Context, clientID string, category core.Category) (stores.BillingConfigRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT penalty_rate, penalty_days, compound, frequency
		FROM billing_configs
		WHERE client_id = ? AND category = ?`,
		clientID, category.String())

	var (
		rate      sql.NullFloat64
		days      sql.NullInt64
		compound  bool
		frequency string
	)
	if err := row.Scan(&rate, &days, &compound, &frequency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stores.BillingConfigRecord{}, stores.ErrNotFound
		}
		return stores.BillingConfigRecord{}, fmt.Errorf("query billing config: %w", err)
	}

	rec := stores.BillingConfigRecord{
		ClientID:  clientID,
		Category:  category,
		Compound:  compound,
		Frequency: stores.Frequency(frequency),
	}
	if rate.Valid {
		rec.Rate = &rate.Float64
	}
	if days.Valid {
		d := int(days.Int64)
		rec.GraceDays = &d
	}
	return rec, nil
}

// FiscalConfig implements stores.ConfigStore
func (r *SQLiteRepository) FiscalConfig(ctx context.Context, clientID string) (stores.FiscalConfigRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT fiscal_start_month FROM client_settings WHERE client_id = ?`,
		clientID)

	var rec stores.FiscalConfigRecord
	if err := row.Scan(&rec.StartMonth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stores.FiscalConfigRecord{}, stores.ErrNotFound
		}
		return stores.FiscalConfigRecord{}, fmt.Errorf("query client settings: %w", err)
	}
	return rec, nil
}

// YearRecord implements stores.DuesStore
func (r *SQLiteRepository) YearRecord(ctx context.Context, clientID, unitID string, fiscalYear int) (stores.DuesYearRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, scheduled_amount FROM dues_years
		WHERE client_id = ? AND unit_id = ? AND fiscal_year = ?`,
		clientID, unitID, fiscalYear)

	var (
		yearID int64
		rec    stores.DuesYearRecord
	)
	if err := row.Scan(&yearID, &rec.ScheduledAmount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stores.DuesYearRecord{}, stores.ErrNotFound
		}
		return stores.DuesYearRecord{}, fmt.Errorf("query dues year: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT fiscal_month, amount_paid, penalty_stored,
		       COALESCE(due_date, ''), COALESCE(method, ''), COALESCE(reference, '')
		FROM dues_payments
		WHERE dues_year_id = ?`,
		yearID)
	if err != nil {
		return stores.DuesYearRecord{}, fmt.Errorf("query dues payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			month   int
			payment stores.PeriodPayment
		)
		if err := rows.Scan(&month, &payment.AmountPaid, &payment.PenaltyStored,
			&payment.DueDate, &payment.Method, &payment.Reference); err != nil {
			return stores.DuesYearRecord{}, fmt.Errorf("scan dues payment: %w", err)
		}
		if month >= 1 && month <= 12 {
			rec.Payments[month-1] = payment
		}
	}
	if err := rows.Err(); err != nil {
		return stores.DuesYearRecord{}, fmt.Errorf("iterate dues payments: %w", err)
	}
	return rec, nil
}

// MonthlyBill implements stores.BillStore
func (r *SQLiteRepository) MonthlyBill(ctx context.Context, clientID, unitID, yearMonth string) (stores.BillRecord, error) {
	return r.bill(ctx, clientID, unitID, yearMonth)
}

// QuarterlyBill implements stores.BillStore
func (r *SQLiteRepository) QuarterlyBill(ctx context.Context, clientID, unitID string, fiscalYear, quarter int) (stores.BillRecord, error) {
	return r.bill(ctx, clientID, unitID, fmt.Sprintf("%d-Q%d", fiscalYear, quarter))
}

func (r *SQLiteRepository) bill(ctx context.Context, clientID, unitID, periodKey string) (stores.BillRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT current_charge, paid_amount, penalty_amount, COALESCE(due_date, ''), consumption
		FROM utility_bills
		WHERE client_id = ? AND unit_id = ? AND period_key = ?`,
		clientID, unitID, periodKey)

	var (
		rec         stores.BillRecord
		consumption sql.NullFloat64
	)
	if err := row.Scan(&rec.CurrentCharge, &rec.PaidAmount, &rec.PenaltyAmount,
		&rec.DueDate, &consumption); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stores.BillRecord{}, stores.ErrNotFound
		}
		return stores.BillRecord{}, fmt.Errorf("query bill %s: %w", periodKey, err)
	}
	if consumption.Valid {
		rec.Consumption = &consumption.Float64
	}
	return rec, nil
}

// QueryByUnit implements stores.LedgerStore. Date filtering happens in Go
// rather than SQL because txn_date is free-form text: rows whose date does
// not parse must still reach the collector, which owns the skip-and-warn
// decision.
func (r *SQLiteRepository) QueryByUnit(ctx context.Context, clientID, unitID string, from, to time.Time) ([]stores.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, txn_date, description, amount, COALESCE(method, ''), COALESCE(reference, '')
		FROM ledger_txns
		WHERE client_id = ? AND unit_id = ?
		ORDER BY id`,
		clientID, unitID)
	if err != nil {
		return nil, fmt.Errorf("query ledger transactions: %w", err)
	}
	defer rows.Close()

	var (
		out []stores.TransactionRecord
		ids []int64
	)
	for rows.Next() {
		var (
			id  int64
			rec stores.TransactionRecord
		)
		if err := rows.Scan(&id, &rec.Date, &rec.Description, &rec.Amount,
			&rec.Method, &rec.Reference); err != nil {
			return nil, fmt.Errorf("scan ledger transaction: %w", err)
		}

		if d, err := core.ParseDate(rec.Date); err == nil {
			if d.Before(core.DateOnly(from)) || d.After(core.DateOnly(to)) {
				continue
			}
		}
		out = append(out, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger transactions: %w", err)
	}

	for i, id := range ids {
		allocs, err := r.allocations(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i].Allocations = allocs
	}
	return out, nil
}

func (r *SQLiteRepository) allocations(ctx context.Context, txnID int64) ([]stores.Allocation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT amount, COALESCE(category, ''), COALESCE(description, '')
		FROM ledger_allocations
		WHERE txn_id = ?
		ORDER BY position`,
		txnID)
	if err != nil {
		return nil, fmt.Errorf("query allocations for txn %d: %w", txnID, err)
	}
	defer rows.Close()

	var allocs []stores.Allocation
	for rows.Next() {
		var a stores.Allocation
		if err := rows.Scan(&a.Amount, &a.Category, &a.Description); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		allocs = append(allocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return allocs, nil
}

// Write helpers, used by ingestion tooling and the fixture loader.

func (r *SQLiteRepository) UpsertBillingConfig(ctx context.Context, rec stores.BillingConfigRecord) error {
	var (
		rate sql.NullFloat64
		days sql.NullInt64
	)
	if rec.Rate != nil {
		rate = sql.NullFloat64{Float64: *rec.Rate, Valid: true}
	}
	if rec.GraceDays != nil {
		days = sql.NullInt64{Int64: int64(*rec.GraceDays), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_configs (client_id, category, penalty_rate, penalty_days, compound, frequency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, category) DO UPDATE SET
			penalty_rate = excluded.penalty_rate,
			penalty_days = excluded.penalty_days,
			compound = excluded.compound,
			frequency = excluded.frequency`,
		rec.ClientID, rec.Category.String(), rate, days, rec.Compound, string(rec.Frequency))
	if err != nil {
		return fmt.Errorf("upsert billing config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertFiscalConfig(ctx context.Context, clientID string, rec stores.FiscalConfigRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_settings (client_id, fiscal_start_month)
		VALUES (?, ?)
		ON CONFLICT (client_id) DO UPDATE SET fiscal_start_month = excluded.fiscal_start_month`,
		clientID, rec.StartMonth)
	if err != nil {
		return fmt.Errorf("upsert client settings: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertYearRecord(ctx context.Context, clientID, unitID string, fiscalYear int, rec stores.DuesYearRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dues_years (client_id, unit_id, fiscal_year, scheduled_amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (client_id, unit_id, fiscal_year) DO UPDATE SET
			scheduled_amount = excluded.scheduled_amount`,
		clientID, unitID, fiscalYear, rec.ScheduledAmount); err != nil {
		return fmt.Errorf("upsert dues year: %w", err)
	}

	var yearID int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM dues_years WHERE client_id = ? AND unit_id = ? AND fiscal_year = ?`,
		clientID, unitID, fiscalYear).Scan(&yearID); err != nil {
		return fmt.Errorf("read dues year id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dues_payments WHERE dues_year_id = ?`, yearID); err != nil {
		return fmt.Errorf("clear dues payments: %w", err)
	}
	for i, payment := range rec.Payments {
		if payment == (stores.PeriodPayment{}) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dues_payments (dues_year_id, fiscal_month, amount_paid, penalty_stored, due_date, method, reference)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			yearID, i+1, payment.AmountPaid, payment.PenaltyStored,
			payment.DueDate, payment.Method, payment.Reference); err != nil {
			return fmt.Errorf("insert dues payment month %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) UpsertBill(ctx context.Context, clientID, unitID, periodKey string, rec stores.BillRecord) error {
	var consumption sql.NullFloat64
	if rec.Consumption != nil {
		consumption = sql.NullFloat64{Float64: *rec.Consumption, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO utility_bills (client_id, unit_id, period_key, current_charge, paid_amount, penalty_amount, due_date, consumption)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, unit_id, period_key) DO UPDATE SET
			current_charge = excluded.current_charge,
			paid_amount = excluded.paid_amount,
			penalty_amount = excluded.penalty_amount,
			due_date = excluded.due_date,
			consumption = excluded.consumption`,
		clientID, unitID, periodKey, rec.CurrentCharge, rec.PaidAmount,
		rec.PenaltyAmount, rec.DueDate, consumption)
	if err != nil {
		return fmt.Errorf("upsert bill %s: %w", periodKey, err)
	}
	return nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, clientID, unitID string, rec stores.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_txns (client_id, unit_id, txn_date, description, amount, method, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clientID, unitID, rec.Date, rec.Description, rec.Amount, rec.Method, rec.Reference)
	if err != nil {
		return fmt.Errorf("insert ledger transaction: %w", err)
	}
	txnID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read transaction id: %w", err)
	}

	for i, alloc := range rec.Allocations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_allocations (txn_id, position, amount, category, description)
			VALUES (?, ?, ?, ?, ?)`,
			txnID, i, alloc.Amount, alloc.Category, alloc.Description); err != nil {
			return fmt.Errorf("insert allocation %d: %w", i, err)
		}
	}

	return tx.Commit()
}
