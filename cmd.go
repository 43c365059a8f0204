package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"leadfinder/config"
	"leadfinder/metrics"
	"leadfinder/models"
	"leadfinder/services"
	"leadfinder/storage"
	"leadfinder/utils"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *utils.Logger

	inputDir   string
	outputDir  string
	types      string
	zips       string
	states     string
	store      string
	minReviews int
	debug      bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "leadfinder",
		Short: "Clean scraped business leads and find coverage gaps",
		Long: `leadfinder combines scraped business listings into one deduplicated
lead sheet and writes the searches still needed to cover every target
business type in every target zip code.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup(cmd) },
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error { return a.run(cmd.Context()) },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.inputDir, "input", "", "input folder (INPUT_DIR)")
	flags.StringVar(&a.outputDir, "output", "", "output folder (OUTPUT_DIR)")
	flags.StringVar(&a.types, "types", "", "comma-separated target business types (TARGET_BUSINESS_TYPES)")
	flags.StringVar(&a.zips, "zips", "", "comma-separated target zip codes (ZIP_CODES)")
	flags.StringVar(&a.states, "states", "", "comma-separated states for state-wide queries (STATES)")
	flags.StringVar(&a.store, "store", "", "lead store: postgres or sqlite (STORE_DRIVER)")
	flags.IntVar(&a.minReviews, "min-reviews", 0, "minimum review count (MIN_REVIEWS)")
	flags.BoolVar(&a.debug, "debug", false, "debug logging (DEBUG)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Clean, merge and deduplicate leads, then write the follow-up queries",
			RunE:  func(cmd *cobra.Command, args []string) error { return a.run(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "queries",
			Short: "Write the full category × location query matrix for a first scrape",
			RunE:  func(cmd *cobra.Command, args []string) error { return a.queries(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "categories",
			Short: "Show how the target business types are parsed",
			RunE:  func(cmd *cobra.Command, args []string) error { return a.categories() },
		},
	)

	return rootCmd
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputDir = a.inputDir
	}
	if flags.Changed("output") {
		cfg.OutputDir = a.outputDir
	}
	if flags.Changed("types") {
		cfg.BusinessTypes = a.types
	}
	if flags.Changed("zips") {
		cfg.ZipCodes = config.SplitList(a.zips)
	}
	if flags.Changed("states") {
		cfg.States = config.SplitList(a.states)
	}
	if flags.Changed("store") {
		cfg.StoreDriver = strings.ToLower(a.store)
	}
	if flags.Changed("min-reviews") {
		cfg.MinReviews = a.minReviews
	}
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}

	a.cfg = cfg
	a.logger = utils.NewLogger(cfg.Debug)
	return nil
}

func (a *app) run(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("=== leadfinder starting ===")
	logger.Info("Config: input %s | output %s | window %d | min reviews %d | workers %d",
		cfg.InputDir, cfg.OutputDir, cfg.ZipCheckLength, cfg.MinReviews, cfg.Workers)

	m := metrics.NewMetrics()
	pipeline := services.NewPipeline(cfg, logger, m)

	reader := storage.NewReader(logger, cfg.Taxonomy.SentinelFields(), pipeline.Merger.ClassifySource,
		cfg.OutputFilename, cfg.CSVOutputFilename)
	reader.OnError = func(string, error) { m.IncErrorsTotal("read_failed") }
	start := time.Now()
	raws, err := reader.ReadDir(cfg.InputDir)
	if err != nil {
		return err
	}
	m.Since("read", start)
	if len(raws) == 0 {
		logger.Warn("No input files found in %s", cfg.InputDir)
	}

	result := pipeline.Run(raws)

	// Output failures are collected so the remaining outputs are still written.
	var errs []error
	fail := func(kind string, err error) {
		logger.Error("%v", err)
		m.IncErrorsTotal(kind)
		errs = append(errs, err)
	}

	if len(result.Leads) == 0 {
		logger.Warn("No leads left after cleaning, combined sheet not written")
	} else {
		if err := writeLeads(result, cfg); err != nil {
			fail("write_failed", err)
		} else {
			logger.Info("Combined %d leads → %s", len(result.Leads), cfg.OutputPath())
		}
		if path := cfg.CSVOutputPath(); path != "" {
			if n, err := writeCSV(result, path); err != nil {
				fail("write_failed", err)
			} else {
				logger.Info("CSV copy (%d rows) → %s", n, path)
			}
		}
	}

	written, err := storage.WriteQueries(cfg.QueriesPath(), result.Lines())
	switch {
	case err != nil:
		fail("write_failed", err)
	case written:
		logger.Info("%d follow-up queries → %s", len(result.Queries), cfg.QueriesPath())
	default:
		logger.Info("No missing combinations, no query file written")
	}

	if cfg.StoreDriver != "" {
		if err := a.persist(ctx, result); err != nil {
			fail("store_failed", err)
		}
	}

	pipeline.Insights().Print(os.Stdout, result.Report)

	if cfg.MetricsPath != "" {
		if err := m.WriteTextfile(cfg.MetricsPath); err != nil {
			logger.Error("%v", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func writeLeads(result *services.Result, cfg *config.Config) error {
	w, err := storage.NewXLSXWriter(cfg.OutputPath(), cfg.Taxonomy.ColumnWidth)
	if err != nil {
		return err
	}
	return writeAll(w, result.Leads)
}

func writeCSV(result *services.Result, path string) (int, error) {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return 0, err
	}
	if err := writeAll(w, result.Leads); err != nil {
		return 0, err
	}
	return w.Rows(), nil
}

// writeAll writes leads to w and closes it.
func writeAll(w storage.LeadWriter, leads []*models.Lead) error {
	if err := w.Write(leads); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (a *app) persist(ctx context.Context, result *services.Result) error {
	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveLeads(ctx, result.Leads); err != nil {
		return err
	}
	if err := store.SaveQueries(ctx, result.Queries); err != nil {
		return err
	}
	total, err := store.CountQueries(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("Stored %d leads and %d queries in %s (%d queries on record)",
		len(result.Leads), len(result.Queries), a.cfg.StoreDriver, total)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.LeadStore, error) {
	switch cfg.StoreDriver {
	case "postgres":
		pw, err := storage.NewPostgresWriter(ctx, cfg.DSN(), utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return pw, nil
	case "sqlite":
		sw, err := storage.NewSQLiteWriter(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sw, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (a *app) queries(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger
	if len(cfg.ZipCodes) == 0 && len(cfg.States) == 0 {
		return config.ErrNoZipCodes
	}

	categories := services.NewCategorySpec(cfg.BusinessTypes)
	reqs := services.NewQueryGenerator(logger, categories, cfg.ZipCodes, cfg.States).Generate()

	written, err := storage.WriteQueries(cfg.QueriesPath(), services.QueryLines(reqs))
	if err != nil {
		return err
	}
	if written {
		logger.Info("%d queries → %s", len(reqs), cfg.QueriesPath())
	} else {
		logger.Warn("No queries generated, check TARGET_BUSINESS_TYPES")
	}

	if cfg.StoreDriver != "" {
		store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.SaveQueries(ctx, reqs)
	}
	return nil
}

func (a *app) categories() error {
	spec := services.NewCategorySpec(a.cfg.BusinessTypes)
	if spec.Empty() {
		a.logger.Warn("No target business types configured")
		return nil
	}

	group := a.cfg.Taxonomy.Consolidated
	fmt.Printf("Base (%d):\n", len(spec.Base))
	for _, b := range spec.Base {
		fmt.Printf("  %s\n", b)
	}
	fmt.Printf("\nMatch set (%d):\n  %s\n", len(spec.Match), strings.Join(spec.MatchList(), ", "))
	fmt.Printf("\nConsolidated as %q: %s\n", group.Representative, strings.Join(group.Types, ", "))
	return nil
}
