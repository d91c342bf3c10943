package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"salesetl/internal/load"
	"salesetl/internal/transform"
)

// Stage identifiers used in logs, spans, metrics and the manifest.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Report summarizes one run.
type Report struct {
	RunID           string
	SampleCreated   bool
	SalesExtracted  int
	CustomersLoaded int
	Transform       transform.Result
	Loaders         []load.Result
	StageDurations  map[string]time.Duration
	Started         time.Time
	Finished        time.Time

	// ReachedLoad is set once the load stage has started.
	ReachedLoad bool
}

func newReport(runID string) *Report {
	return &Report{
		RunID:          runID,
		StageDurations: make(map[string]time.Duration),
		Started:        time.Now(),
	}
}

// LoaderErrors maps each loader to its error, nil on success
func (r *Report) LoaderErrors() map[string]error {
	return load.Errors(r.Loaders)
}

// FailedLoaders returns the names of loaders that returned an error
func (r *Report) FailedLoaders() []string {
	var failed []string
	for _, l := range r.Loaders {
		if l.Err != nil {
			failed = append(failed, l.Name)
		}
	}
	return failed
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.Int("extracted", r.SalesExtracted),
		slog.Int("customers", r.CustomersLoaded),
		slog.Int("processed", r.Transform.Accepted),
		slog.Int("rejected", r.Transform.RejectedTotal()),
		slog.Int("loaders", len(r.Loaders)),
		slog.Int("loaders_failed", len(r.FailedLoaders())),
		slog.Duration("duration", r.Finished.Sub(r.Started)),
	)
}

// String renders the run outcome on one line
func (r *Report) String() string {
	return fmt.Sprintf("run %s: extracted=%d processed=%d rejected=%d loaders=%d failed=%d",
		r.RunID, r.SalesExtracted, r.Transform.Accepted, r.Transform.RejectedTotal(),
		len(r.Loaders), len(r.FailedLoaders()))
}
