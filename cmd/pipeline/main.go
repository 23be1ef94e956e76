package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/config"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/edgar"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/pipeline"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/store"
)

func main() {
	mode := flag.String("mode", "", "full | ticker | incremental | filing | schedule | seed")
	ticker := flag.String("ticker", "", "company ticker (ticker and incremental modes)")
	form := flag.String("form", "10-Q", "form type for incremental mode (10-K or 10-Q)")
	years := flag.Int("years", 0, "lookback years for ticker mode (0 = default)")
	filingID := flag.String("filing", "", "filing id for filing mode")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, assuming environment variables are set")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Interrupts cancel cooperatively between companies; an in-flight filing
	// finishes or fails cleanly first.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.InitDB(ctx); err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}
	defer store.Close()

	client := edgar.NewClient(
		edgar.WithUserAgent(cfg.SECUserAgent),
		edgar.WithRateLimit(float64(cfg.SECRateLimit)),
	)

	companies := store.NewCompanyRepo()
	filings := store.NewFilingRepo()
	investments := store.NewInvestmentRepo()
	checks := store.NewScheduledCheckRepo()
	oplog := store.NewOpLogRepo()

	orchestrator := pipeline.NewOrchestrator(client, filings, investments, oplog)
	controller := pipeline.NewController(companies, filings, checks, client, orchestrator, oplog)
	controller.SetBackfillYears(cfg.BackfillYears)

	switch *mode {
	case "full":
		result, err := controller.RunFullBackfill(ctx)
		exitOn(err)
		fmt.Printf("Backfill finished: %d companies processed, %d errored, %d filings stored, %d extracted\n",
			result.CompaniesProcessed, result.CompaniesErrored, result.FilingsStored, result.FilingsExtracted)
		for _, o := range result.Outcomes {
			if o.Err != "" {
				fmt.Printf("  %s: ERROR %s\n", o.Ticker, o.Err)
			} else {
				fmt.Printf("  %s: %d stored, %d extracted\n", o.Ticker, o.Stored, o.Extracted)
			}
		}

	case "ticker":
		requireFlag(*ticker, "-ticker")
		result, err := controller.RunTickerBackfill(ctx, *ticker, *years)
		exitOn(err)
		fmt.Printf("Backfill for %s: %d filings stored, %d extracted\n",
			*ticker, result.FilingsStored, result.FilingsExtracted)

	case "incremental":
		requireFlag(*ticker, "-ticker")
		result, err := controller.RunIncrementalCheck(ctx, *ticker, *form)
		exitOn(err)
		fmt.Printf("Incremental check for %s %s: cutoff %s, %d new, %d extracted\n",
			result.Ticker, result.FormType, result.Cutoff.Format("2006-01-02"),
			result.NewStored, result.Extracted)

	case "filing":
		requireFlag(*filingID, "-filing")
		id, err := uuid.Parse(*filingID)
		if err != nil {
			logrus.WithError(err).Fatal("invalid filing id")
		}
		count, err := controller.ExtractSingleFiling(ctx, id)
		exitOn(err)
		fmt.Printf("Extracted %d investments\n", count)

	case "schedule":
		result, err := controller.RecomputeSchedule(ctx)
		exitOn(err)
		fmt.Printf("Schedule recomputed: %d companies, %d skipped, %d checks written\n",
			result.CompaniesScheduled, result.CompaniesSkipped, result.ChecksWritten)

	case "seed":
		exitOn(seedUniverse(ctx, cfg.UniverseFile, client, companies))

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// seedUniverse upserts the tracked-company universe from the YAML seed file,
// resolving missing CIKs through the SEC ticker mapping.
func seedUniverse(ctx context.Context, path string, client *edgar.Client, companies *store.CompanyRepo) error {
	universe, err := config.LoadUniverse(path)
	if err != nil {
		return err
	}

	for _, entry := range universe {
		cik := entry.CIK
		if cik == "" {
			cik, err = client.LookupCIKByTicker(ctx, entry.Ticker)
			if err != nil {
				logrus.WithError(err).WithField("ticker", entry.Ticker).Warn("CIK lookup failed, skipping")
				continue
			}
		}

		mon, day := entry.FYE()
		company := store.Company{
			Ticker:           entry.Ticker,
			CIK:              cik,
			Name:             entry.Name,
			Active:           entry.IsActive(),
			FiscalYearEndMon: mon,
			FiscalYearEndDay: day,
		}
		if _, err := companies.Upsert(ctx, company); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"ticker": entry.Ticker, "cik": cik}).Info("company seeded")
	}
	fmt.Printf("Seeded %d companies\n", len(universe))
	return nil
}

func requireFlag(value, name string) {
	if value == "" {
		logrus.Fatalf("%s is required for this mode", name)
	}
}

func exitOn(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("pipeline run failed")
	}
}
