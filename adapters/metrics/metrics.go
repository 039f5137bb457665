// Package metrics provides Prometheus metrics for resolution runs.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/schema"
)

const namespace = "botdef"

// Collector holds all Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	// Resolution metrics
	ExtensionsTotal    *prometheus.CounterVec
	ExtensionFailures  *prometheus.CounterVec
	ExtensionDuration  *prometheus.HistogramVec
	ValidationsTotal   *prometheus.CounterVec
	PackagesPublished  *prometheus.CounterVec
	ProjectLoadSeconds prometheus.Histogram

	// HTTP metrics
	RequestsTotal *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a collector registered on a fresh registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a collector registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,

		ExtensionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extensions_total",
				Help:      "Total number of interfaces implemented by integrations",
			},
			[]string{"interface"},
		),
		ExtensionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extension_failures_total",
				Help:      "Total number of failed interface extensions by error kind",
			},
			[]string{"kind"},
		),
		ExtensionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extension_duration_seconds",
				Help:      "Time spent binding, dereferencing and merging one interface",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"interface"},
		),
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of bot validations by result",
			},
			[]string{"result"},
		),
		PackagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "packages_published_total",
				Help:      "Total number of published packages by kind",
			},
			[]string{"kind"},
		),
		ProjectLoadSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "project_load_seconds",
				Help:      "Time spent loading and resolving a project",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of catalog API requests",
			},
			[]string{"method", "route", "status"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful project reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of failed project reloads",
			},
		),
	}
}

// Registry returns the registry the collector is registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteToTextfile writes the current metrics in the node exporter textfile
// format.
func (c *Collector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// ExtensionApplied implements integration.ExtensionObserver.
func (c *Collector) ExtensionApplied(iface, _ string, elapsed time.Duration) {
	c.ExtensionsTotal.WithLabelValues(iface).Inc()
	c.ExtensionDuration.WithLabelValues(iface).Observe(elapsed.Seconds())
}

// ExtensionFailed implements integration.ExtensionObserver.
func (c *Collector) ExtensionFailed(_ string, err error) {
	c.ExtensionFailures.WithLabelValues(ErrorKind(err)).Inc()
}

// ValidationResult records the outcome of a bot validation.
func (c *Collector) ValidationResult(err error) {
	result := "ok"
	if err != nil {
		result = ErrorKind(err)
	}
	c.ValidationsTotal.WithLabelValues(result).Inc()
}

var _ integration.ExtensionObserver = (*Collector)(nil)

// ErrorKind classifies resolution errors for metric labels.
func ErrorKind(err error) string {
	var (
		cfgErr   *integration.ConfigurationError
		unbound  *schema.UnboundEntityError
		conflict *schema.MergeConflictError
		unsat    *bot.UnsatisfiedInterfaceError
		naming   *bot.NamingError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &unbound):
		return "unbound_entity"
	case errors.As(err, &conflict):
		return "merge_conflict"
	case errors.As(err, &unsat):
		return "unsatisfied_interface"
	case errors.As(err, &naming):
		return "naming"
	default:
		return "other"
	}
}
