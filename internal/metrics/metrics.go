// Package metrics exposes Prometheus counters for login flows, callbacks,
// quota fetches and the control API. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// FlowsTotal counts login flows by outcome (started, completed, error)
	FlowsTotal *prometheus.CounterVec
	// CallbacksTotal counts requests to the local callback listener by result
	CallbacksTotal *prometheus.CounterVec
	// QuotaFetchesTotal counts usage requests by result
	QuotaFetchesTotal *prometheus.CounterVec
	// QuotaUsedPercent tracks the last reported usage per account and window
	QuotaUsedPercent *prometheus.GaugeVec
	// ProxyLatency tracks the last TCP probe latency per proxy
	ProxyLatency *prometheus.GaugeVec
	// HTTPRequestsTotal counts control API requests
	HTTPRequestsTotal *prometheus.CounterVec
	// Accounts tracks the number of stored accounts
	Accounts prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FlowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oauth_flows_total",
				Help:      "Total number of OAuth flows by outcome",
			},
			[]string{"outcome"},
		),
		CallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oauth_callbacks_total",
				Help:      "Total number of OAuth callback requests by result",
			},
			[]string{"result"},
		),
		QuotaFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_fetches_total",
				Help:      "Total number of quota requests by result",
			},
			[]string{"result"},
		),
		QuotaUsedPercent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "quota_used_percent",
				Help:      "Last reported quota usage percentage",
			},
			[]string{"account_id", "window"},
		),
		ProxyLatency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "proxy_latency_milliseconds",
				Help:      "Last measured proxy TCP connect latency",
			},
			[]string{"proxy_id"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of control API requests",
			},
			[]string{"route", "method", "status"},
		),
		Accounts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accounts",
				Help:      "Number of stored accounts",
			},
		),
	}

	registry.MustRegister(
		m.FlowsTotal,
		m.CallbacksTotal,
		m.QuotaFetchesTotal,
		m.QuotaUsedPercent,
		m.ProxyLatency,
		m.HTTPRequestsTotal,
		m.Accounts,
	)
	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFlow counts a flow transition
func (m *Metrics) RecordFlow(outcome string) {
	if m == nil {
		return
	}
	m.FlowsTotal.WithLabelValues(outcome).Inc()
}

// RecordCallback counts a callback request
func (m *Metrics) RecordCallback(result string) {
	if m == nil {
		return
	}
	m.CallbacksTotal.WithLabelValues(result).Inc()
}

// RecordQuotaFetch counts a quota request
func (m *Metrics) RecordQuotaFetch(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.QuotaFetchesTotal.WithLabelValues(result).Inc()
}

// SetQuotaUsed records the usage of one window. nil clears the series.
func (m *Metrics) SetQuotaUsed(accountID, window string, percent *float64) {
	if m == nil {
		return
	}
	if percent == nil {
		m.QuotaUsedPercent.DeleteLabelValues(accountID, window)
		return
	}
	m.QuotaUsedPercent.WithLabelValues(accountID, window).Set(*percent)
}

// ForgetAccount drops all series of a removed account
func (m *Metrics) ForgetAccount(accountID string) {
	if m == nil {
		return
	}
	m.QuotaUsedPercent.DeletePartialMatch(prometheus.Labels{"account_id": accountID})
}

// SetProxyLatency records a probe result. A failed probe clears the series.
func (m *Metrics) SetProxyLatency(proxyID string, ms *uint64) {
	if m == nil {
		return
	}
	if ms == nil {
		m.ProxyLatency.DeleteLabelValues(proxyID)
		return
	}
	m.ProxyLatency.WithLabelValues(proxyID).Set(float64(*ms))
}

// SetAccounts records the account count
func (m *Metrics) SetAccounts(n int) {
	if m == nil {
		return
	}
	m.Accounts.Set(float64(n))
}

// RecordHTTPRequest counts a control API request
func (m *Metrics) RecordHTTPRequest(route, method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
}
