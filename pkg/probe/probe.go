// Package probe runs pre-flight checks before a generator run.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single check when the probe sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc returns nil if the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single pre-flight check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure aborts the run
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes the probes in order.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}

	return results
}

// AnalyzeResults logs every result and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	for _, r := range results {
		attrs := []any{"check", r.Probe.Name, "took", r.Duration.Round(time.Microsecond)}
		switch {
		case r.Error == nil:
			slog.Debug("Pre-flight check passed", attrs...)
		case r.Probe.Critical:
			slog.Error("Pre-flight check failed", append(attrs, "error", r.Error)...)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			slog.Warn("Pre-flight check failed", append(attrs, "error", r.Error)...)
		}
	}

	return errors.Join(criticalErrors...)
}
