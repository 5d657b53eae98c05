// Package metrics exposes prometheus instrumentation for command runs and
// an Observer that feeds it.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cmdkit/outcome"
)

var (
	CommandRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_runs_completed_total",
			Help: "Total number of command runs that completed successfully",
		},
		[]string{"command"},
	)

	CommandRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_runs_failed_total",
			Help: "Total number of command runs with a failed outcome",
		},
		[]string{"command"},
	)

	CommandRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "command_run_duration_seconds",
			Help: "Duration of command runs in seconds",
		},
		[]string{"command"},
	)

	CommandRunsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "command_runs_active",
			Help: "Number of in-flight runs per command",
		},
		[]string{"command"},
	)
)

// Observer feeds the prometheus vectors from run lifecycle events. It
// implements command.Observer.
type Observer struct{}

func NewObserver() *Observer {
	return &Observer{}
}

func (Observer) RunStarted(ctx context.Context, name, runID string) {
	CommandRunsActive.WithLabelValues(name).Inc()
}

func (Observer) RunCompleted(ctx context.Context, name, runID string, oc *outcome.Outcome, elapsed time.Duration) {
	CommandRunsActive.WithLabelValues(name).Dec()
	CommandRunDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if oc.Success() {
		CommandRunsCompleted.WithLabelValues(name).Inc()
	} else {
		CommandRunsFailed.WithLabelValues(name).Inc()
	}
}
