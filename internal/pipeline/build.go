package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	"salesetl/internal/config"
	"salesetl/internal/infrastructure"
	"salesetl/internal/load"
	"salesetl/internal/runlock"
)

// Build wires a Runner from configuration: it resolves paths, opens the
// table loader's database, the S3 client and the Redis lock as configured.
// The returned close function releases everything Build opened.
func Build(ctx context.Context, cfg *config.Config, tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) (*Runner, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	paths, err := cfg.Paths()
	if err != nil {
		return nil, closeAll, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, closeAll, err
	}
	paths.LogPathResolution(logger)

	var loaders []load.Loader

	if cfg.Output.DBDriver != "" {
		dsn := cfg.Output.DBDSN
		if paths.DBFile != "" {
			dsn = paths.DBFile
		}
		table, err := load.OpenTableLoader(cfg.Output.DBDriver, dsn, logger)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, table.Close)
		loaders = append(loaders, table)
	}
	if paths.CSVFile != "" {
		loaders = append(loaders, load.NewCSVLoader(paths.CSVFile, logger))
	}
	if paths.JSONFile != "" {
		loaders = append(loaders, load.NewJSONLoader(paths.JSONFile, logger))
	}
	if paths.XLSXFile != "" {
		loaders = append(loaders, load.NewXLSXLoader(paths.XLSXFile, logger))
	}
	if cfg.Publish.S3Bucket != "" {
		client, err := load.NewS3Client(ctx, cfg.Publish.S3Region)
		if err != nil {
			return nil, closeAll, err
		}
		loaders = append(loaders, load.NewS3Publisher(client,
			cfg.Publish.S3Bucket, cfg.Publish.S3Prefix,
			baseName(paths.CSVFile), baseName(paths.JSONFile), logger))
	}

	var lock runlock.Locker
	if cfg.Lock.RedisAddr != "" {
		client, err := runlock.Connect(ctx, cfg.Lock)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, client.Close)
		lock = runlock.New(client, cfg.Lock.Key, cfg.Lock.TTL)
	}

	runner := NewRunner(Options{
		Pipeline: cfg.Pipeline,
		Paths:    paths,
		Loaders:  loaders,
		Lock:     lock,
		Tracer:   tracer,
		Metrics:  metrics,
		Logger:   logger,
	})
	return runner, closeAll, nil
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
