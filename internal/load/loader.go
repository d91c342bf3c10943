package load

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salesetl/pkg/contracts/domain"
)

// Loader writes the processed sales to one target.
type Loader interface {
	Name() string
	Load(ctx context.Context, sales []domain.ProcessedSale) error
}

// Result is the outcome of one loader inside RunAll.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// RunAll runs every loader in order over the same sales. A failure is logged
// and recorded, and the remaining loaders still run.
func RunAll(ctx context.Context, loaders []Loader, sales []domain.ProcessedSale, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, 0, len(loaders))
	for _, l := range loaders {
		start := time.Now()
		err := loadOne(ctx, l, sales)
		res := Result{Name: l.Name(), Err: err, Duration: time.Since(start)}
		results = append(results, res)

		if err != nil {
			logger.ErrorContext(ctx, "Loader failed",
				slog.String("loader", res.Name),
				slog.String("error", err.Error()))
			continue
		}
		logger.InfoContext(ctx, "Loader completed",
			slog.String("loader", res.Name),
			slog.Int("count", len(sales)),
			slog.Duration("duration", res.Duration))
	}
	return results
}

// loadOne runs a single loader, turning a panic into its error
func loadOne(ctx context.Context, l Loader, sales []domain.ProcessedSale) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader panic: %v", r)
		}
	}()
	return l.Load(ctx, sales)
}

// Errors maps each loader name to its error (nil on success).
func Errors(results []Result) map[string]error {
	errs := make(map[string]error, len(results))
	for _, r := range results {
		errs[r.Name] = r.Err
	}
	return errs
}
