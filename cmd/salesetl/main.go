package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"salesetl/internal/config"
	"salesetl/internal/infrastructure"
	"salesetl/internal/pipeline"
	"salesetl/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds command line overrides; unset flags leave the config alone
type cliFlags struct {
	configPath  string
	inDir       string
	outDir      string
	salesFile   string
	customers   string
	chunkSize   int
	dbDriver    string
	dbDSN       string
	xlsxFile    string
	noSample    bool
	logLevel    string
	trace       bool
	metricsFile string
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, *flag.FlagSet, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("salesetl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file (default: search salesetl.yaml, configs/salesetl.yaml)")
	fs.StringVar(&f.inDir, "in", "", "input directory holding the sales and customers files")
	fs.StringVar(&f.outDir, "out", "", "output directory for every file loader")
	fs.StringVar(&f.salesFile, "sales", "", "sales file name (.csv or .xlsx)")
	fs.StringVar(&f.customers, "customers", "", "customers JSON file name")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "rows read per extraction chunk")
	fs.StringVar(&f.dbDriver, "db-driver", "", "table loader driver: sqlite or postgres")
	fs.StringVar(&f.dbDSN, "db-dsn", "", "table loader DSN (sqlite file name or postgres URL); empty disables the table loader")
	fs.StringVar(&f.xlsxFile, "xlsx", "", "also write an XLSX workbook with this name")
	fs.BoolVar(&f.noSample, "no-sample", false, "do not create sample inputs when they are missing")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.trace, "trace", false, "write OpenTelemetry spans to stderr")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return f, fs, nil
}

// apply copies explicitly set flags onto cfg
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "in":
			cfg.Pipeline.InputDir = f.inDir
		case "out":
			cfg.Output.OutputDir = f.outDir
		case "sales":
			cfg.Pipeline.SalesFile = f.salesFile
		case "customers":
			cfg.Pipeline.CustomersFile = f.customers
		case "chunk-size":
			cfg.Pipeline.ChunkSize = f.chunkSize
		case "db-driver":
			cfg.Output.DBDriver = strings.ToLower(f.dbDriver)
		case "db-dsn":
			cfg.Output.DBDSN = f.dbDSN
			if f.dbDSN == "" {
				cfg.Output.DBDriver = ""
			}
		case "xlsx":
			cfg.Output.XLSXFile = f.xlsxFile
		case "no-sample":
			cfg.Pipeline.CreateSample = !f.noSample
		case "log-level":
			cfg.Logging.Level = strings.ToLower(f.logLevel)
		case "trace":
			cfg.Observability.Tracing = f.trace
			if f.trace {
				cfg.Observability.TraceExporter = "stdout"
			}
		case "metrics-file":
			cfg.Observability.MetricsFile = f.metricsFile
		}
	})
}

// run executes one pipeline run and returns the process exit code: 0 when
// the load stage was reached, 1 otherwise.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, fs, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}
	if flags.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "salesetl: %v\n", err)
		return 1
	}
	flags.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "salesetl: %v\n", err)
		return 1
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "salesetl: %v\n", err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)
	logger.Info("Starting salesetl", slog.String("version", contracts.Version))

	tracing, err := infrastructure.InitializeTracing(cfg.Observability, stderr, logger)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down tracing", slog.String("error", err.Error()))
		}
	}()

	metrics := infrastructure.NewMetrics()

	runner, closeRunner, err := pipeline.Build(ctx, cfg, tracing.Tracer, metrics, logger)
	defer func() {
		if err := closeRunner(); err != nil {
			logger.Warn("Failed to release resources", slog.String("error", err.Error()))
		}
	}()
	if err != nil {
		logger.Error("Failed to set up pipeline", slog.String("error", err.Error()))
		return 1
	}

	report, runErr := runner.Run(ctx)

	if path := cfg.Observability.MetricsFile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("Failed to write metrics", slog.String("file", path), slog.String("error", err.Error()))
		}
	}

	if runErr != nil || !report.ReachedLoad {
		return 1
	}
	return 0
}
