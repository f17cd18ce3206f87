package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/mailstats/internal/aggregate"
	"github.com/rewired-gh/mailstats/internal/config"
	"github.com/rewired-gh/mailstats/internal/loader"
	"github.com/rewired-gh/mailstats/internal/logger"
	"github.com/rewired-gh/mailstats/internal/models"
	"github.com/rewired-gh/mailstats/internal/report"
	"github.com/rewired-gh/mailstats/internal/storage"
	"github.com/rewired-gh/mailstats/internal/telegram"
)

var (
	configPath = flag.String("config", "", "Path to configuration file (optional)")
	outDir     = flag.String("out", "", "Output directory, overrides output.dir")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] [-out dir] <events.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if *configPath != "" {
		logger.Info("Configuration loaded from %s", *configPath)
	}

	res, err := run(cfg, inputPath, time.Now)
	if err != nil {
		logger.Fatal("Report failed: %v", err)
	}

	printSummary(os.Stdout, res.summary)

	if cfg.Telegram.Enabled {
		notify(cfg, res)
	} else {
		logger.Debug("Telegram notifications disabled")
	}
}

// chartOutput is a rendered chart and where it was written
type chartOutput struct {
	title string
	path  string
}

type result struct {
	summary *models.RunSummary
	charts  []chartOutput
}

// run executes the whole pipeline: load, count, rank, resample, render, write
func run(cfg *config.Config, inputPath string, now func() time.Time) (*result, error) {
	startTime := now()

	logger.Info("Loading events from %s", inputPath)
	ds, err := loader.Load(inputPath, loader.Options{
		Delimiter:        []rune(cfg.Input.Delimiter)[0],
		MissingRecipient: cfg.Input.MissingRecipient,
		ExcludedSenders:  cfg.Input.ExcludedSet(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	logger.Info("Loaded %d records (%d excluded as automated senders)", len(ds.Records), ds.Excluded)

	sep := cfg.Input.RecipientSeparator
	table := aggregate.MergeAndRank(ds.Records, sep)
	top := aggregate.TopSenders(table, cfg.Report.TopN)
	logger.Debug("Ranked %d people, top senders: %v", len(table), top)
	if len(top) < cfg.Report.TopN {
		logger.Warn("Only %d distinct senders available, charts will show fewer than %d lines", len(top), cfg.Report.TopN)
	}

	store := storage.New(cfg.Output.Dir, 0, 0)
	var outputs []string

	var buf bytes.Buffer
	if err := report.WriteCounts(&buf, table); err != nil {
		return nil, fmt.Errorf("failed to build count table: %w", err)
	}
	path, err := store.WriteFile(cfg.Output.CountsFile, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to write count table: %w", err)
	}
	outputs = append(outputs, path)
	logger.Info("Wrote count table with %d rows to %s", len(table), path)

	layout := report.Layout{
		WidthInches:         cfg.Report.WidthInches,
		HeightInches:        cfg.Report.HeightInches,
		TickRotationDegrees: cfg.Report.TickRotationDegrees,
		MonthFormat:         cfg.Report.MonthFormat,
	}
	volume := aggregate.SeriesFor(ds.Records, top, aggregate.MonthlyVolume)
	contacts := aggregate.SeriesFor(ds.Records, top, aggregate.MonthlyUniqueContacts)
	for i := range volume {
		logger.Debug("%s: %d messages sent, %d contacts summed over %d months",
			volume[i].Person, volume[i].Total(), contacts[i].Total(), len(volume[i].Points))
	}

	var charts []chartOutput
	for _, c := range []struct {
		chart  report.Chart
		series []models.Series
		name   string
	}{
		{report.VolumeChart(layout), volume, cfg.Output.VolumeChart},
		{report.ContactsChart(layout, cfg.Report.TopN), contacts, cfg.Output.ContactsChart},
	} {
		png, err := report.Render(c.chart, c.series)
		if err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", c.chart.Title, err)
		}
		path, err := store.WriteFile(c.name, png)
		if err != nil {
			return nil, fmt.Errorf("failed to write chart: %w", err)
		}
		outputs = append(outputs, path)
		charts = append(charts, chartOutput{title: c.chart.Title, path: path})
		logger.Info("Wrote chart %s", path)
	}

	if cfg.Output.SQLitePath != "" {
		path, err := store.ExportSQLite(cfg.Output.SQLitePath, table, map[string][]models.Series{
			storage.MetricVolume:   volume,
			storage.MetricContacts: contacts,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to export sqlite: %w", err)
		}
		outputs = append(outputs, path)
		logger.Info("Exported tables to %s", path)
	}

	summary := &models.RunSummary{
		ID:              uuid.New().String(),
		GeneratedAt:     startTime.UTC(),
		Input:           inputPath,
		RecordsRead:     ds.Read,
		RecordsExcluded: ds.Excluded,
		RecordsKept:     len(ds.Records),
		People:          len(table),
		TopSenders:      aggregate.Lookup(table, top),
		Outputs:         outputs,
	}

	if cfg.Output.SummaryFile != "" {
		summary.Outputs = append(summary.Outputs, store.Path(cfg.Output.SummaryFile))
		summary.Elapsed = now().Sub(startTime)
		if _, err := store.SaveSummary(cfg.Output.SummaryFile, summary); err != nil {
			return nil, fmt.Errorf("failed to save summary: %w", err)
		}
	}

	summary.Elapsed = now().Sub(startTime)
	logger.Info("Report %s completed in %v", summary.ID, summary.Elapsed)

	return &result{summary: summary, charts: charts}, nil
}

// notify delivers the summary and charts; failures never fail the run
func notify(cfg *config.Config, res *result) {
	client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
	if err != nil {
		logger.Warn("Failed to initialize Telegram client: %v", err)
		return
	}

	if err := client.SendSummary(res.summary); err != nil {
		logger.Warn("Failed to send summary to Telegram: %v", err)
		return
	}
	for _, c := range res.charts {
		if err := client.SendChart(c.path, c.title); err != nil {
			logger.Warn("Failed to send chart %s to Telegram: %v", c.path, err)
		}
	}
	logger.Info("Sent report to Telegram")
}
