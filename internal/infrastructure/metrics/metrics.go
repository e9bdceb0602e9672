// internal/infrastructure/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Статусы циклов и доставок
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Metrics — счётчики бота на собственном реестре
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal     *prometheus.CounterVec
	DeliveriesTotal *prometheus.CounterVec
	RejectedTicks   *prometheus.CounterVec
	SentimentScore  prometheus.Gauge
}

// New создаёт и регистрирует метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pulse_cycles_total", Help: "Pipeline cycles by outcome"},
			[]string{"pipeline", "status"},
		),
		DeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pulse_deliveries_total", Help: "Alert deliveries by channel and outcome"},
			[]string{"channel", "status"},
		),
		RejectedTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pulse_rejected_ticks_total", Help: "Malformed heatmap records dropped"},
			[]string{"instrument", "side"},
		),
		SentimentScore: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "pulse_sentiment_score", Help: "Last observed fear and greed score"},
		),
	}
	m.registry.MustRegister(m.CyclesTotal, m.DeliveriesTotal, m.RejectedTicks, m.SentimentScore)
	return m
}

// CycleFinished учитывает завершение цикла пайплайна
func (m *Metrics) CycleFinished(pipeline, status string) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(pipeline, status).Inc()
}

// DeliveryFinished учитывает одну доставку
func (m *Metrics) DeliveryFinished(channel, status string) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabelValues(channel, status).Inc()
}

// TicksRejected учитывает отброшенные записи тепловой карты
func (m *Metrics) TicksRejected(instrument, side string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RejectedTicks.WithLabelValues(instrument, side).Add(float64(n))
}

// ObserveScore запоминает последний индекс
func (m *Metrics) ObserveScore(score int) {
	if m == nil {
		return
	}
	m.SentimentScore.Set(float64(score))
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
