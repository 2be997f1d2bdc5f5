// Command hoaledger builds a unit's statement and prints it, or enqueues
// a build request for the statement worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"hoaledger/internal/amqp"
	"hoaledger/internal/backend"
	"hoaledger/internal/config"
	"hoaledger/internal/core"
	"hoaledger/internal/log"
	"hoaledger/internal/statement"
)

func main() {
	_ = godotenv.Load()

	// Statements print to stdout; logs stay on stderr at warn and above.
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})
	log.SetDefault(logger)

	var (
		clientID = flag.String("client", "", "client id (required)")
		unitID   = flag.String("unit", "", "unit id (required)")
		from     = flag.String("from", "", "range start, YYYY-MM-DD (required)")
		to       = flag.String("to", "", "range end, YYYY-MM-DD (required)")
		asOf     = flag.String("asof", "", "evaluation date, YYYY-MM-DD (default today)")
		enqueue  = flag.Bool("enqueue", false, "publish the request to the worker queue instead of building locally")
	)
	flag.Parse()

	if *clientID == "" || *unitID == "" || *from == "" || *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *enqueue {
		if err := publishRequest(ctx, cfg, *clientID, *unitID, *from, *to, *asOf); err != nil {
			fmt.Fprintln(os.Stderr, "enqueue:", err)
			os.Exit(1)
		}
		return
	}

	if err := buildAndPrint(ctx, cfg, logger, *clientID, *unitID, *from, *to, *asOf); err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
}

func publishRequest(ctx context.Context, cfg *config.Config, clientID, unitID, from, to, asOf string) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	msg := amqp.NewStatementRequestMessage(clientID, unitID, from, to, asOf)
	if err := client.PublishStatementRequest(ctx, msg); err != nil {
		return err
	}
	fmt.Printf("enqueued statement request %s\n", msg.RequestID)
	return nil
}

func buildAndPrint(ctx context.Context, cfg *config.Config, logger *log.Logger, clientID, unitID, from, to, asOf string) error {
	req, err := parseRequest(clientID, unitID, from, to, asOf)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.BuildTimeout)
	defer cancel()

	ledger, err := statement.NewBuilder(result.Stores, logger.WithComponent(log.ComponentStatement)).Build(ctx, req)
	if err != nil {
		return err
	}

	printLedger(os.Stdout, clientID, unitID, ledger)
	return nil
}

func parseRequest(clientID, unitID, from, to, asOf string) (statement.Request, error) {
	fromDate, err := core.ParseDate(from)
	if err != nil {
		return statement.Request{}, fmt.Errorf("parse -from: %w", err)
	}
	toDate, err := core.ParseDate(to)
	if err != nil {
		return statement.Request{}, fmt.Errorf("parse -to: %w", err)
	}
	req := statement.Request{ClientID: clientID, UnitID: unitID, From: fromDate, To: toDate}
	if asOf != "" {
		asOfDate, err := core.ParseDate(asOf)
		if err != nil {
			return statement.Request{}, fmt.Errorf("parse -asof: %w", err)
		}
		req.AsOf = asOfDate
	}
	return req, nil
}

func printLedger(w *os.File, clientID, unitID string, ledger *core.StatementLedger) {
	fmt.Fprintf(w, "Statement for %s / %s\n\n", clientID, unitID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tCHARGE\tPENALTY\tPAYMENT\tBALANCE")
	for _, item := range ledger.LineItems {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Date.Format(core.DateLayout),
			item.Description,
			item.Category,
			item.Amount,
			item.Penalty,
			item.PaymentsApplied,
			item.Balance)
	}
	tw.Flush()

	s := ledger.Summary
	fmt.Fprintf(w, "\nDues balance:    %s\n", ledger.DuesSubtotal.RunningBalance)
	fmt.Fprintf(w, "Utility balance: %s\n", ledger.UtilitySubtotal.RunningBalance)
	fmt.Fprintf(w, "Past due:        %d items, %s (penalties %s)\n", s.PastDue.Count, s.PastDue.Total, s.PastDue.PenaltyTotal)
	fmt.Fprintf(w, "Coming due:      %d items, %s\n", s.ComingDue.Count, s.ComingDue.Total)
	fmt.Fprintf(w, "Paid:            %d items, %s\n", s.Paid.Count, s.Paid.Total)
	fmt.Fprintf(w, "Total balance:   %s\n", s.TotalBalance)
}
