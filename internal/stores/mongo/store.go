// Package mongo is the MongoDB implementation of the store ports, for
// deployments where billing records live in a shared document database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"hoaledger/internal/core"
	"hoaledger/internal/stores"
)

// Collection name constants.
const (
	colBillingConfigs = "billing_configs"
	colClientSettings = "client_settings"
	colDuesYears      = "dues_years"
	colUtilityBills   = "utility_bills"
	colLedgerTxns     = "ledger_txns"
)

var (
	_ stores.ConfigStore = (*Store)(nil)
	_ stores.DuesStore   = (*Store)(nil)
	_ stores.BillStore   = (*Store)(nil)
	_ stores.LedgerStore = (*Store)(nil)
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Migrate creates the indexes the lookup paths depend on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colBillingConfigs: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "category", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		colClientSettings: {
			{Keys: bson.D{{Key: "client_id", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		colDuesYears: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "unit_id", Value: 1}, {Key: "fiscal_year", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		colUtilityBills: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "unit_id", Value: 1}, {Key: "period_key", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		colLedgerTxns: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "unit_id", Value: 1}, {Key: "date", Value: 1}}},
		},
	}

	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// BillingConfig implements stores.ConfigStore
func (s *Store) BillingConfig(ctx context.Context, clientID string, category core.Category) (stores.BillingConfigRecord, error) {
	var doc billingConfigDoc
	err := s.db.Collection(colBillingConfigs).
		FindOne(ctx, bson.M{"client_id": clientID, "category": category.String()}).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return stores.BillingConfigRecord{}, stores.ErrNotFound
		}
		return stores.BillingConfigRecord{}, fmt.Errorf("get billing config: %w", err)
	}

	return stores.BillingConfigRecord{
		ClientID:  clientID,
		Category:  category,
		Rate:      doc.Rate,
		GraceDays: doc.GraceDays,
		Compound:  doc.Compound,
		Frequency: stores.Frequency(doc.Frequency),
	}, nil
}

// FiscalConfig implements stores.ConfigStore
func (s *Store) FiscalConfig(ctx context.Context, clientID string) (stores.FiscalConfigRecord, error) {
	var doc clientSettingsDoc
	err := s.db.Collection(colClientSettings).
		FindOne(ctx, bson.M{"client_id": clientID}).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return stores.FiscalConfigRecord{}, stores.ErrNotFound
		}
		return stores.FiscalConfigRecord{}, fmt.Errorf("get client settings: %w", err)
	}
	return stores.FiscalConfigRecord{StartMonth: doc.StartMonth}, nil
}

// YearRecord implements stores.DuesStore
func (s *Store) YearRecord(ctx context.Context, clientID, unitID string, fiscalYear int) (stores.DuesYearRecord, error) {
	var doc duesYearDoc
	err := s.db.Collection(colDuesYears).
		FindOne(ctx, bson.M{"client_id": clientID, "unit_id": unitID, "fiscal_year": fiscalYear}).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return stores.DuesYearRecord{}, stores.ErrNotFound
		}
		return stores.DuesYearRecord{}, fmt.Errorf("get dues year %d: %w", fiscalYear, err)
	}
	return fromDuesYearDoc(doc), nil
}

// MonthlyBill implements stores.BillStore
func (s *Store) MonthlyBill(ctx context.Context, clientID, unitID, yearMonth string) (stores.BillRecord, error) {
	return s.bill(ctx, clientID, unitID, yearMonth)
}

// QuarterlyBill implements stores.BillStore
func (s *Store) QuarterlyBill(ctx context.Context, clientID, unitID string, fiscalYear, quarter int) (stores.BillRecord, error) {
	return s.bill(ctx, clientID, unitID, fmt.Sprintf("%d-Q%d", fiscalYear, quarter))
}

func (s *Store) bill(ctx context.Context, clientID, unitID, periodKey string) (stores.BillRecord, error) {
	var doc billDoc
	err := s.db.Collection(colUtilityBills).
		FindOne(ctx, bson.M{"client_id": clientID, "unit_id": unitID, "period_key": periodKey}).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return stores.BillRecord{}, stores.ErrNotFound
		}
		return stores.BillRecord{}, fmt.Errorf("get bill %s: %w", periodKey, err)
	}
	return fromBillDoc(doc), nil
}

// QueryByUnit implements stores.LedgerStore. The cursor is filtered by
// unit only; the date filter runs in Go because dates are free-form text
// and rows that do not parse must still reach the collector.
func (s *Store) QueryByUnit(ctx context.Context, clientID, unitID string, from, to time.Time) ([]stores.TransactionRecord, error) {
	cursor, err := s.db.Collection(colLedgerTxns).Find(ctx,
		bson.M{"client_id": clientID, "unit_id": unitID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find ledger transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []stores.TransactionRecord
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode ledger transaction: %w", err)
		}
		if d, err := core.ParseDate(doc.Date); err == nil {
			if d.Before(core.DateOnly(from)) || d.After(core.DateOnly(to)) {
				continue
			}
		}
		out = append(out, fromTransactionDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger transactions: %w", err)
	}
	return out, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
