package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"updatewatch/internal/domain"
)

type PrometheusMetrics struct {
	cycles              *prometheus.CounterVec
	cycleDuration       *prometheus.HistogramVec
	fetchDuration       *prometheus.HistogramVec
	skippedTicks        prometheus.Counter
	userChoices         *prometheus.CounterVec
	dismissals          prometheus.Counter
	updateAvailable     prometheus.Gauge
	activeAnnouncements prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "updatewatch_poll_cycles_total",
				Help: "Total number of completed poll cycles",
			},
			[]string{"outcome"},
		),
		cycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "updatewatch_poll_cycle_duration_seconds",
				Help:    "Duration of poll cycles in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "updatewatch_fetch_duration_seconds",
				Help:    "Duration of feed fetches in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"feed", "status"},
		),
		skippedTicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "updatewatch_skipped_ticks_total",
				Help: "Timer ticks skipped because a poll cycle was in flight",
			},
		),
		userChoices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "updatewatch_update_choices_total",
				Help: "User responses to update prompts",
			},
			[]string{"choice"},
		),
		dismissals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "updatewatch_dismissals_total",
				Help: "Total number of dismissed announcements",
			},
		),
		updateAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "updatewatch_update_available",
				Help: "Whether the last poll found a catalog update (0 or 1)",
			},
		),
		activeAnnouncements: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "updatewatch_active_announcements",
				Help: "Announcements visible after dismissal filtering",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveCycle(outcome string, duration time.Duration) {
	p.cycles.WithLabelValues(outcome).Inc()
	p.cycleDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveFetch(feed string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.fetchDuration.WithLabelValues(feed, status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveSkippedTick() {
	p.skippedTicks.Inc()
}

func (p *PrometheusMetrics) ObserveUserChoice(choice domain.UserChoice) {
	p.userChoices.WithLabelValues(string(choice)).Inc()
}

func (p *PrometheusMetrics) ObserveDismissal() {
	p.dismissals.Inc()
}

func (p *PrometheusMetrics) SetUpdateAvailable(available bool) {
	if available {
		p.updateAvailable.Set(1)
		return
	}
	p.updateAvailable.Set(0)
}

func (p *PrometheusMetrics) SetActiveAnnouncements(count int) {
	p.activeAnnouncements.Set(float64(count))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
