package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rental-ledger/internal/config"
	"github.com/noah-isme/rental-ledger/internal/loader"
	"github.com/noah-isme/rental-ledger/internal/obs"
	"github.com/noah-isme/rental-ledger/internal/payment"
	"github.com/noah-isme/rental-ledger/internal/pricing"
	"github.com/noah-isme/rental-ledger/internal/report"
)

type options struct {
	input    string
	template string
	fields   string
	format   string
	out      string
	discount string
	expect   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "input", "", "dataset file (.json, .yaml or .yml)")
	fs.StringVar(&opts.template, "template", string(report.TemplateRentals), "report template: rentals or rental_modifications")
	fs.StringVar(&opts.fields, "fields", "id,price", "comma separated fields: id, price, commission, option, payment_action")
	fs.StringVar(&opts.format, "format", "json", "output format: json or xlsx")
	fs.StringVar(&opts.out, "out", "", "output file; stdout when empty")
	fs.StringVar(&opts.discount, "discount", "", "day discount schedule, overrides PRICING_DISCOUNT_SCHEDULE (\"standard\", \"none\" or \"1:0,2-4:0.10\")")
	fs.StringVar(&opts.expect, "expect", "", "expected JSON report to compare against")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.input) == "" {
		return options{}, errors.New("-input is required")
	}
	switch opts.format {
	case "json", "xlsx":
	default:
		return options{}, fmt.Errorf("unsupported -format %q", opts.format)
	}
	return opts, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	logger, runID := obs.WithRun(obs.NewLogger(cfg.LogFormat, cfg.LogLevel), cfg.AppEnv)
	ctx := logger.WithContext(context.Background())

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error().Err(err).Msg("parse flags")
		os.Exit(2)
	}

	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.TracingEnabled,
		ServiceName:   "rental-ledger",
		Endpoint:      cfg.TracingEndpoint,
		Exporter:      cfg.TracingExporter,
		SamplingRatio: cfg.TracingSamplingRatio,
		Environment:   cfg.AppEnv,
		RunID:         runID,
		Template:      opts.template,
		Input:         opts.input,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		shutdown = func(context.Context) error { return nil }
	}

	reg := prometheus.NewRegistry()
	metrics := obs.NewPricingMetrics(cfg.MetricsNamespace, reg)

	runErr := run(ctx, cfg, opts, os.Stdout, metrics)
	if runErr != nil {
		kind := failureKind(runErr)
		metrics.ObserveFailure(kind)
		logger.Error().Err(runErr).Str("kind", kind).Msg("ledger run failed")
	}

	if cfg.MetricsTextfile != "" {
		if err := obs.FlushTextfile(cfg.MetricsTextfile, reg); err != nil {
			logger.Error().Err(err).Msg("flush metrics")
		}
	}
	if err := shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("shutdown tracer")
	}
	if runErr != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer, metrics *obs.PricingMetrics) error {
	logger := zerolog.Ctx(ctx)

	template, err := report.ParseTemplate(opts.template)
	if err != nil {
		return err
	}
	fields, err := report.ParseFields(opts.fields)
	if err != nil {
		return err
	}
	schedule, err := resolveSchedule(cfg, opts.discount)
	if err != nil {
		return err
	}

	ds, err := loader.LoadFile(opts.input)
	if err != nil {
		return err
	}
	rentals, err := ds.Join()
	if err != nil {
		return err
	}

	asm := pricing.NewAssembler(cfg.PricingDefaults())
	sheets := make([]*pricing.Sheet, 0, len(rentals))
	for _, r := range rentals {
		sheet := asm.Assemble(r)
		if len(schedule) > 0 {
			sheet.ReplaceCost(pricing.RuleDay, pricing.DayCost(schedule))
		}
		sheets = append(sheets, sheet)
	}

	reporter, err := report.New(template, fields, payment.NewBuilder())
	if err != nil {
		return err
	}
	start := time.Now()
	doc, err := reporter.Generate(ctx, sheets)
	if err != nil {
		return err
	}
	metrics.ObserveDuration(time.Since(start))
	observeDocument(metrics, doc)

	logger.Info().
		Str("input", opts.input).
		Str("template", string(template)).
		Str("discount", schedule.String()).
		Int("rentals", len(rentals)).
		Int("rows", len(doc.Rows)).
		Msg("report_ready")

	if opts.expect != "" {
		if err := compareWith(doc, opts.expect); err != nil {
			return err
		}
		logger.Info().Str("expected", opts.expect).Msg("report_matches_expected")
	}
	return write(doc, opts, stdout)
}

func resolveSchedule(cfg *config.Config, flagValue string) (pricing.Schedule, error) {
	if strings.TrimSpace(flagValue) != "" {
		return pricing.ParseSchedule(flagValue)
	}
	return cfg.Schedule()
}

func compareWith(doc report.Document, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open expected report: %w", err)
	}
	defer f.Close()
	return report.Compare(doc, f)
}

func write(doc report.Document, opts options, stdout io.Writer) (err error) {
	w := stdout
	if opts.out != "" {
		f, createErr := os.Create(opts.out)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if opts.format == "xlsx" {
		return report.WriteXLSX(w, doc)
	}
	return report.WriteJSON(w, doc)
}
