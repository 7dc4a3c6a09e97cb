// Package metrics counts parser and reconciliation outcomes in Prometheus form.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/francis-pang/expense-tally/internal/importer"
	"github.com/francis-pang/expense-tally/internal/model"
	"github.com/francis-pang/expense-tally/internal/reconcile"
)

const namespace = "expense_tally"

// Recorder implements importer.Observer and reconcile.Observer. It owns its
// registry, so several recorders can coexist in one process.
type Recorder struct {
	registry      *prometheus.Registry
	bankRows      *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	ledgerRecords prometheus.Counter
	outcomes      *prometheus.CounterVec
	lastRun       prometheus.Gauge
	requests      *prometheus.CounterVec
}

var (
	_ importer.Observer  = (*Recorder)(nil)
	_ reconcile.Observer = (*Recorder)(nil)
)

// NewRecorder registers the expense_tally collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		bankRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_rows_total",
			Help:      "Bank statement data rows handled, by result.",
		}, []string{"result"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bank_rows_dropped_total",
			Help:      "Bank statement rows dropped, by reason.",
		}, []string{"reason"}),
		ledgerRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_records_total",
			Help:      "Ledger transactions loaded.",
		}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_outcomes_total",
			Help:      "Bank transactions reconciled, by outcome.",
		}, []string{"outcome"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed reconciliation.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}
}

// RowAccepted counts a statement row that became a transaction.
func (r *Recorder) RowAccepted(model.BankTransaction) {
	r.bankRows.WithLabelValues("accepted").Inc()
}

// RowDropped counts a statement row left out of the parse, by reason.
func (r *Recorder) RowDropped(reason importer.DropReason) {
	r.bankRows.WithLabelValues("dropped").Inc()
	r.dropped.WithLabelValues(string(reason)).Inc()
}

// Reconciled counts one bank transaction outcome.
func (r *Recorder) Reconciled(o reconcile.Outcome) {
	r.outcomes.WithLabelValues(string(o)).Inc()
}

// LedgerLoaded adds n loaded ledger transactions.
func (r *Recorder) LedgerLoaded(n int) {
	r.ledgerRecords.Add(float64(n))
}

// RunCompleted stamps the last run time.
func (r *Recorder) RunCompleted(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// RequestServed counts one HTTP response.
func (r *Recorder) RequestServed(route string, code int) {
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current values to path for the node exporter
// textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
