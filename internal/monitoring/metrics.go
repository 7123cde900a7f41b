package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_trades_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol", "side"},
	)

	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_signals_total",
			Help: "Total number of entry signals generated",
		},
		[]string{"symbol", "signal"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_current_price",
			Help: "Current price of trading symbol",
		},
		[]string{"symbol"},
	)

	candleCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_candles",
			Help: "Number of candles held in the aggregation window",
		},
		[]string{"symbol"},
	)

	// Risk metrics
	allocatedRisk = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_allocated_risk",
			Help: "Risk currently reserved from the daily pool",
		},
	)

	realizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meanrev_bot_realized_pnl_pct",
			Help: "Realized profit and loss percent for the current day",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meanrev_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(candleCount)
	prometheus.MustRegister(allocatedRisk)
	prometheus.MustRegister(realizedPnL)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordTrade records a trade metric
func RecordTrade(symbol, side string) {
	tradesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordSignal records an entry signal metric
func RecordSignal(symbol, signal string) {
	signalsTotal.WithLabelValues(symbol, signal).Inc()
}

// UpdatePrice updates the current price metric
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateCandleCount updates the aggregation window size metric
func UpdateCandleCount(symbol string, count int) {
	candleCount.WithLabelValues(symbol).Set(float64(count))
}

// UpdateRiskState updates the shared risk ledger metrics
func UpdateRiskState(allocated, pnlPct float64) {
	allocatedRisk.Set(allocated)
	realizedPnL.Set(pnlPct)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
