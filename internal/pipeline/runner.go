package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesetl/internal/config"
	apperrors "salesetl/internal/errors"
	"salesetl/internal/extract"
	"salesetl/internal/infrastructure"
	"salesetl/internal/load"
	"salesetl/internal/runlock"
	"salesetl/internal/sample"
	"salesetl/internal/transform"
	"salesetl/pkg/contracts/domain"
)

// Options configures a Runner. Paths is required; everything else is
// optional.
type Options struct {
	Pipeline config.PipelineConfig
	Paths    *config.Paths
	Loaders  []load.Loader
	Lock     runlock.Locker
	Tracer   trace.Tracer
	Metrics  *infrastructure.Metrics
	Logger   *slog.Logger
}

// Runner executes pipeline runs.
type Runner struct {
	pipeline    config.PipelineConfig
	paths       *config.Paths
	sales       *extract.SalesExtractor
	customers   *extract.CustomersExtractor
	transformer *transform.Transformer
	loaders     []load.Loader
	lock        runlock.Locker
	tracer      trace.Tracer
	metrics     *infrastructure.Metrics
	logger      *slog.Logger
}

// NewRunner creates a Runner
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = infrastructure.NewMetrics()
	}

	return &Runner{
		pipeline:    opts.Pipeline,
		paths:       opts.Paths,
		sales:       extract.NewSalesExtractor(opts.Paths.SalesFile, opts.Pipeline.ChunkSize, logger),
		customers:   extract.NewCustomersExtractor(opts.Paths.CustomersFile, logger),
		transformer: transform.New(opts.Pipeline.DateLayout, logger),
		loaders:     opts.Loaders,
		lock:        opts.Lock,
		tracer:      opts.Tracer,
		metrics:     metrics,
		logger:      infrastructure.WithComponent(logger, "pipeline"),
	}
}

// Metrics returns the collector the runner reports to
func (r *Runner) Metrics() *infrastructure.Metrics {
	return r.metrics
}

// Run executes one pipeline run. It returns ErrExtractionFailed or
// ErrNothingProcessed when a stage halts the run, and ErrRunLocked when
// another run holds the lock. Loader failures do not make Run fail; they
// are reported per loader in the Report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	report := newReport(infrastructure.GetRunID(ctx))

	ctx, finish := infrastructure.StartSpan(ctx, r.tracer, "pipeline.run")

	r.logger.InfoContext(ctx, "Starting pipeline run",
		slog.String("sales_file", r.paths.SalesFile),
		slog.String("customers_file", r.paths.CustomersFile),
		slog.Int("loaders", len(r.loaders)))

	err := r.locked(ctx, func(ctx context.Context) error {
		return r.execute(ctx, report)
	})

	report.Finished = time.Now()
	finish(err)
	r.summarize(ctx, report, err)
	return report, err
}

// locked runs fn while holding the run lock, when one is configured
func (r *Runner) locked(ctx context.Context, fn func(context.Context) error) error {
	if r.lock == nil {
		return fn(ctx)
	}

	ok, err := r.lock.Acquire(ctx)
	if err != nil {
		infrastructure.WithError(r.logger, err).ErrorContext(ctx, "Failed to acquire run lock")
		return err
	}
	if !ok {
		r.logger.WarnContext(ctx, "Run lock held by another run")
		return apperrors.NewLockError("pipeline run skipped", apperrors.ErrRunLocked)
	}
	r.logger.DebugContext(ctx, "Run lock acquired")

	defer func() {
		if err := r.lock.Release(ctx); err != nil {
			infrastructure.WithError(r.logger, err).WarnContext(ctx, "Failed to release run lock")
		}
	}()
	return fn(ctx)
}

// execute runs the stages and persists the manifest
func (r *Runner) execute(ctx context.Context, report *Report) error {
	manifest := NewRunManifest(report.RunID)
	defer r.saveManifest(ctx, manifest)

	if r.pipeline.CreateSample {
		created, err := sample.EnsureInputs(r.paths, r.logger)
		if err != nil {
			infrastructure.WithError(r.logger, err).ErrorContext(ctx, "Failed to create sample data")
		}
		report.SampleCreated = created
	}

	var (
		sales     []domain.RawSale
		customers domain.CustomerIndex
		processed []domain.ProcessedSale
	)

	err := r.stage(ctx, StageExtract, manifest, report, func(ctx context.Context) (map[string]any, error) {
		sales = r.sales.ExtractSales(ctx)
		customers = r.customers.ExtractCustomers(ctx)
		report.SalesExtracted = len(sales)
		report.CustomersLoaded = len(customers)
		r.metrics.SalesExtracted.Add(float64(len(sales)))
		r.metrics.CustomersLoaded.Set(float64(len(customers)))
		manifest.AddInput("sales", &DataInfo{Location: r.paths.SalesFile, Records: len(sales)})
		manifest.AddInput("customers", &DataInfo{Location: r.paths.CustomersFile, Records: len(customers)})

		if len(sales) == 0 || len(customers) == 0 {
			return nil, apperrors.ErrExtractionFailed
		}
		return map[string]any{"sales": len(sales), "customers": len(customers)}, nil
	})
	if err != nil {
		return err
	}

	if err := r.refreshLock(ctx, manifest); err != nil {
		return err
	}

	err = r.stage(ctx, StageTransform, manifest, report, func(ctx context.Context) (map[string]any, error) {
		var result transform.Result
		processed, result = r.transformer.Transform(ctx, sales, customers)
		report.Transform = result

		r.metrics.SalesProcessed.Add(float64(result.Accepted))
		rejected := make(map[string]any, len(result.Rejected))
		for reason, n := range result.Rejected {
			r.metrics.SalesRejected.WithLabelValues(string(reason)).Add(float64(n))
			rejected[string(reason)] = n
		}

		if len(processed) == 0 {
			return nil, apperrors.ErrNothingProcessed
		}
		return map[string]any{"accepted": result.Accepted, "rejected": rejected}, nil
	})
	if err != nil {
		return err
	}

	if err := r.refreshLock(ctx, manifest); err != nil {
		return err
	}

	report.ReachedLoad = true
	_ = r.stage(ctx, StageLoad, manifest, report, func(ctx context.Context) (map[string]any, error) {
		report.Loaders = load.RunAll(ctx, r.loaders, processed, r.logger)

		results := make(map[string]any, len(report.Loaders))
		for _, res := range report.Loaders {
			r.metrics.ObserveLoader(res.Name, res.Err)
			info := &DataInfo{Location: res.Name, Records: len(processed)}
			status := StatusCompleted
			if res.Err != nil {
				info.Records = 0
				info.Error = res.Err.Error()
				status = StatusFailed
			}
			manifest.AddOutput(res.Name, info)
			results[res.Name] = status
		}
		return map[string]any{"loaders": results}, nil
	})

	if len(report.FailedLoaders()) > 0 {
		manifest.Finish(StatusPartial)
	} else {
		manifest.Finish(StatusCompleted)
	}
	return nil
}

// refreshLock keeps the run lock alive between stages. A run that lost its
// lock stops before writing anything else.
func (r *Runner) refreshLock(ctx context.Context, manifest *RunManifest) error {
	if r.lock == nil {
		return nil
	}
	if err := r.lock.Refresh(ctx); err != nil {
		infrastructure.WithError(r.logger, err).ErrorContext(ctx, "Run lock lost")
		manifest.Finish(StatusFailed)
		return err
	}
	return nil
}

type stageFunc func(ctx context.Context) (map[string]any, error)

// stage runs fn inside a span and records it in the manifest, report and metrics
func (r *Runner) stage(ctx context.Context, id string, manifest *RunManifest, report *Report, fn stageFunc) error {
	ctx, finish := infrastructure.StartSpan(ctx, r.tracer, "stage."+id, attribute.String("stage", id))
	logger := r.logger.With(slog.String("stage", id))

	manifest.RecordStageStart(id)
	logger.InfoContext(ctx, "Stage started")
	start := time.Now()

	metadata, err := fn(ctx)

	elapsed := time.Since(start)
	report.StageDurations[id] = elapsed
	r.metrics.ObserveStage(id, elapsed)
	finish(err)

	if err != nil {
		manifest.RecordStageFailure(id, err)
		logger.ErrorContext(ctx, "Stage halted",
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed))
		return err
	}

	manifest.RecordStageCompletion(id, metadata)
	logger.InfoContext(ctx, "Stage completed", slog.Duration("duration", elapsed))
	return nil
}

func (r *Runner) saveManifest(ctx context.Context, manifest *RunManifest) {
	if r.paths.ManifestFile == "" {
		return
	}
	if err := manifest.SaveToFile(r.paths.ManifestFile); err != nil {
		r.logger.WarnContext(ctx, "Failed to write run manifest",
			slog.String("file", r.paths.ManifestFile),
			slog.String("error", err.Error()))
	}
}

// summarize logs the run outcome
func (r *Runner) summarize(ctx context.Context, report *Report, err error) {
	if err != nil {
		r.logger.ErrorContext(ctx, "Pipeline run halted",
			slog.Any("report", report),
			slog.String("error", err.Error()))
		return
	}
	if failed := report.FailedLoaders(); len(failed) > 0 {
		r.logger.WarnContext(ctx, "Pipeline run completed with loader failures",
			slog.Any("report", report),
			slog.Any("failed_loaders", failed))
		return
	}
	r.logger.InfoContext(ctx, "Pipeline run completed", slog.Any("report", report))
}
