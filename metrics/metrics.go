package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"leadfinder/models"
)

// Metrics holds the Prometheus metrics recorded during a run.
type Metrics struct {
	Registry *prometheus.Registry

	RowsTotal     *prometheus.CounterVec
	DroppedTotal  *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	LeadsFinal    prometheus.Gauge
	QueriesFinal  prometheus.Gauge
	StageDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadfinder_rows_total",
			Help: "Rows read from and kept after cleaning each input file",
		}, []string{"stage"}), // "input", "cleaned", "zip_matched"
		DroppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadfinder_rows_dropped_total",
			Help: "Rows dropped by each cleaning step",
		}, []string{"step"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leadfinder_errors_total",
			Help: "Errors encountered, by type",
		}, []string{"type"}), // e.g. "read_failed", "store_failed"
		LeadsFinal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leadfinder_leads",
			Help: "Unique leads after merge and deduplication",
		}),
		QueriesFinal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leadfinder_queries",
			Help: "Follow-up queries generated for coverage gaps",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadfinder_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
	}
}

// ObserveBatch records the step counts of one cleaned batch.
func (m *Metrics) ObserveBatch(counts models.StepCounts) {
	m.RowsTotal.WithLabelValues("input").Add(float64(counts.Input))
	m.RowsTotal.WithLabelValues("cleaned").Add(float64(counts.Output))

	for step, n := range map[string]int{
		"placeholder":  counts.Placeholder,
		"recency":      counts.Recency,
		"category":     counts.Category,
		"sub_category": counts.SubCategory,
		"address":      counts.Address,
		"country":      counts.Country,
		"reviews":      counts.Reviews,
	} {
		m.DroppedTotal.WithLabelValues(step).Add(float64(n))
	}
}

func (m *Metrics) ObserveZipMatched(n int) {
	m.RowsTotal.WithLabelValues("zip_matched").Add(float64(n))
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// Since records the time elapsed since start under stage.
func (m *Metrics) Since(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: create dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("metrics: write %q: %w", path, err)
	}
	return nil
}
