package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alias1177/StudioPredictor/models"
)

// Collector implements analyze.Recorder on its own prometheus.Registry.
type Collector struct {
	Registry *prometheus.Registry

	OutcomesTotal    *prometheus.CounterVec
	SignalsTotal     *prometheus.CounterVec
	ResolutionsTotal *prometheus.CounterVec
	UndosTotal       prometheus.Counter

	// Accuracy of the most recently active session
	Accuracy prometheus.Gauge
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		Registry: reg,

		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predictor",
			Name:      "outcomes_total",
			Help:      "Submitted game outcomes.",
		}, []string{"outcome"}),

		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predictor",
			Name:      "signals_total",
			Help:      "Predictions emitted, by pattern id.",
		}, []string{"pattern"}),

		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predictor",
			Name:      "resolutions_total",
			Help:      "Predictions verified against the next outcome.",
		}, []string{"verdict"}),

		UndosTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "predictor",
			Name:      "undos_total",
			Help:      "Undone submissions.",
		}),

		Accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "predictor",
			Name:      "accuracy_percent",
			Help:      "Hit rate of the most recently active session.",
		}),
	}

	reg.MustRegister(
		c.OutcomesTotal,
		c.SignalsTotal,
		c.ResolutionsTotal,
		c.UndosTotal,
		c.Accuracy,
	)

	return c
}

func (c *Collector) ObserveSubmit(ev models.PredictionEvent) {
	c.OutcomesTotal.WithLabelValues(string(ev.Outcome)).Inc()
	if ev.Prediction != nil {
		c.SignalsTotal.WithLabelValues(strconv.Itoa(ev.Prediction.Pattern)).Inc()
	}
	if ev.Resolution != models.Pending {
		c.ResolutionsTotal.WithLabelValues(ev.Resolution.String()).Inc()
	}
}

func (c *Collector) ObserveUndo() {
	c.UndosTotal.Inc()
}

func (c *Collector) ObservePerformance(p models.Performance) {
	c.Accuracy.Set(p.Accuracy())
}

// Handler serves the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
