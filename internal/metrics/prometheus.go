// Package metrics records dispatch and command execution metrics with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	metricNamespaceConstant        = "ghmcp"
	operationLabelConstant         = "operation"
	outcomeLabelConstant           = "outcome"
	exitStatusLabelConstant        = "status"
	unknownOperationLabelConstant  = "unknown"
	exitStatusSuccessLabelConstant = "success"
	exitStatusFailureLabelConstant = "failure"
	exitStatusNotLaunchedConstant  = "not_launched"
)

var (
	_ dispatch.OutcomeRecorder       = (*PrometheusRecorder)(nil)
	_ execshell.CommandEventObserver = (*PrometheusRecorder)(nil)
)

// PrometheusRecorder records dispatch outcomes and tracks running GitHub CLI processes.
// It satisfies both the dispatcher's outcome recorder and execshell.CommandEventObserver.
type PrometheusRecorder struct {
	registry         *prometheus.Registry
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	commandsTotal    *prometheus.CounterVec
	inflightCommands prometheus.Gauge
}

// NewPrometheusRecorder registers the collectors on a dedicated registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		registry: registry,
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespaceConstant,
				Name:      "dispatch_total",
				Help:      "Total number of dispatched operations by outcome",
			},
			[]string{operationLabelConstant, outcomeLabelConstant},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricNamespaceConstant,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of dispatched operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{operationLabelConstant},
		),
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespaceConstant,
				Name:      "commands_total",
				Help:      "Total number of GitHub CLI processes by exit status",
			},
			[]string{exitStatusLabelConstant},
		),
		inflightCommands: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespaceConstant,
				Name:      "inflight_commands",
				Help:      "Number of GitHub CLI processes currently running",
			},
		),
	}
}

// Gatherer exposes the registry for scraping.
func (recorder *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return recorder.registry
}

// ObserveDispatch records one finished dispatch. Operations outside the catalog
// share a single label value.
func (recorder *PrometheusRecorder) ObserveDispatch(operation githubcli.OperationName, outcome string, duration time.Duration) {
	operationLabel := string(operation)
	if _, lookupError := githubcli.LookupOperation(operation); lookupError != nil {
		operationLabel = unknownOperationLabelConstant
	}

	recorder.dispatchTotal.WithLabelValues(operationLabel, outcome).Inc()
	recorder.dispatchDuration.WithLabelValues(operationLabel).Observe(duration.Seconds())
}

// CommandStarted increments the running process gauge.
func (recorder *PrometheusRecorder) CommandStarted(execshell.ShellCommand) {
	recorder.inflightCommands.Inc()
}

// CommandCompleted decrements the running process gauge and counts the exit status.
func (recorder *PrometheusRecorder) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	recorder.inflightCommands.Dec()
	if result.ExitCode == 0 {
		recorder.commandsTotal.WithLabelValues(exitStatusSuccessLabelConstant).Inc()
		return
	}
	recorder.commandsTotal.WithLabelValues(exitStatusFailureLabelConstant).Inc()
}

// CommandExecutionFailed decrements the running process gauge for a launch failure.
func (recorder *PrometheusRecorder) CommandExecutionFailed(execshell.ShellCommand, error) {
	recorder.inflightCommands.Dec()
	recorder.commandsTotal.WithLabelValues(exitStatusNotLaunchedConstant).Inc()
}
