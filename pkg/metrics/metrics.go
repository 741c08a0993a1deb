// Package metrics exposes Prometheus collectors for page fetch round trips.
package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Fetch kinds used as label values.
const (
	KindFirst = "first"
	KindNext  = "next"
	KindClose = "close"
)

// Metrics groups the collectors of one client. Collectors are registered on
// the registerer passed to New rather than on the global default so several
// clients (and tests) can coexist.
type Metrics struct {
	PagesFetched  *prometheus.CounterVec
	RowsDecoded   prometheus.Counter
	FetchDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ossql_pages_fetched_total",
				Help: "Total number of page fetch round trips",
			},
			[]string{"kind", "status"},
		),
		RowsDecoded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ossql_rows_decoded_total",
				Help: "Total number of result rows decoded",
			},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ossql_fetch_duration_seconds",
				Help:    "Page fetch round trip latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.PagesFetched, m.RowsDecoded, m.FetchDuration)
	}
	return m
}

// ObserveFetch records one round trip. A round trip abandoned through
// context cancellation, such as a prefetch dropped by Close, is counted as
// "canceled" rather than "error". A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(kind string, start time.Time, rows int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	m.PagesFetched.WithLabelValues(kind, status).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if rows > 0 {
		m.RowsDecoded.Add(float64(rows))
	}
}

// WriteText dumps every family gathered from g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
