package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"countrynet/internal/config"
	"countrynet/internal/model"
	"countrynet/internal/service"
	"countrynet/internal/storage"
)

const version = "1.0.0"

const (
	exitOK        = 0
	exitFailure   = 1
	exitInterrupt = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("countrynet", pflag.ContinueOnError)
	dataType := flags.StringP("data-type", "d", "asn", "Type of data to fetch: asn, ipv4, ipv6 or all")
	maxWorkers := flags.IntP("max-workers", "w", 0, "Maximum concurrent workers (0 uses the configured default)")
	quiet := flags.BoolP("quiet", "q", false, "Suppress progress output")
	rsc := flags.Bool("rsc", false, "Also emit RouterOS address-list scripts for IP allocations")
	showVersion := flags.BoolP("version", "v", false, "Print version and exit")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: countrynet [flags] COUNTRY [COUNTRY...]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Get AS numbers, IPv4, and/or IPv6 allocations for one or more countries.")
		fmt.Fprintln(os.Stderr)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	if *showVersion {
		fmt.Println("countrynet " + version)
		return exitOK
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return exitFailure
	}

	countries, err := model.NormalizeCountries(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}

	var types []model.ResourceType
	if *dataType == "all" {
		types = model.AllResourceTypes()
	} else {
		rt, err := model.ParseResourceType(*dataType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailure
		}
		types = []model.ResourceType{rt}
	}

	// Initialize logger
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if *quiet {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	logger, _ := logConfig.Build()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return exitFailure
	}
	if *maxWorkers > 0 {
		cfg.MaxWorkers = *maxWorkers
	}

	fileStorage, err := storage.NewFileStorage(cfg.OutputDir, logger)
	if err != nil {
		logger.Error("Failed to prepare output directory", zap.Error(err))
		return exitFailure
	}

	var reporter service.Reporter = service.NewConsoleReporter(os.Stdout)
	if *quiet {
		reporter = service.NopReporter{}
	}

	fetcher := service.NewFetchService(cfg, logger)
	scraper := service.NewScrapeService(fetcher, fileStorage, reporter, cfg.MaxWorkers, logger)

	if *rsc {
		exporter, err := storage.NewRouterOSExporter(cfg.OutputDir, logger)
		if err != nil {
			logger.Error("Failed to prepare RouterOS exporter", zap.Error(err))
			return exitFailure
		}
		scraper.WithScriptExporter(exporter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := scraper.Run(ctx, countries, types)

	reporter.Progress(fmt.Sprintf("Completed: %d/%d requests successful (%.1f%%)",
		stats.SuccessfulRequests, stats.TotalRequests, stats.SuccessRate()))

	if ctx.Err() != nil {
		reporter.Progress("Interrupted by user.")
		return exitInterrupt
	}
	if stats.FailedRequests > 0 {
		return exitFailure
	}
	return exitOK
}
