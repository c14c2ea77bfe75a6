// Package metrics публикует метрики Prometheus для прогонов диалога.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Имена шагов для значений метки.
const (
	StepEncode     = "encode"
	StepTranscribe = "transcribe"
	StepChat       = "chat"
	StepSynthesize = "synthesize"
	StepPlay       = "play"
)

// Metrics содержит клиентские коллекторы.
type Metrics struct {
	registry *prometheus.Registry

	Runs            *prometheus.CounterVec
	StepDuration    *prometheus.HistogramVec
	RecordingLength prometheus.Histogram
	HistorySize     prometheus.Gauge
}

// New создаёт коллекторы в отдельном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taiwa_runs_total",
			Help: "Dialogue runs by outcome (ok or the failing step)",
		}, []string{"result"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taiwa_step_duration_seconds",
			Help:    "Duration of each pipeline step",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"step"}),
		RecordingLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taiwa_recording_seconds",
			Help:    "Length of finalized recordings",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // от 0.5с до ~1 минуты
		}),
		HistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taiwa_history_messages",
			Help: "Current number of messages in the conversation log",
		}),
	}
	reg.MustRegister(m.Runs, m.StepDuration, m.RecordingLength, m.HistorySize)
	return m
}

// Registry возвращает реестр коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStep записывает длительность шага.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RunFinished считает прогон; failedStep пуст при успехе.
func (m *Metrics) RunFinished(failedStep string) {
	if failedStep == "" {
		failedStep = "ok"
	}
	m.Runs.WithLabelValues(failedStep).Inc()
}

// Recorded записывает длину завершённой записи.
func (m *Metrics) Recorded(d time.Duration) {
	m.RecordingLength.Observe(d.Seconds())
}

// SetHistory обновляет размер истории.
func (m *Metrics) SetHistory(n int) {
	m.HistorySize.Set(float64(n))
}

// Handler отдаёт реестр в текстовом формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
