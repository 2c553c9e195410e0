package api

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/fortune"
	"github.com/AaronLay10/WishEngine/internal/version"
)

var (
	registerOnce sync.Once
	startTime    = time.Now()

	drawsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wish",
			Subsystem: "draw",
			Name:      "total",
			Help:      "Completed draws by machine type and outcome.",
		},
		[]string{"machine", "scene", "miss"},
	)
	drawErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wish",
			Subsystem: "draw",
			Name:      "errors_total",
			Help:      "Rejected or failed draws by error kind.",
		},
		[]string{"kind"},
	)
	drawDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wish",
			Subsystem: "draw",
			Name:      "duration_seconds",
			Help:      "Draw duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wish",
			Name:      "build_info",
			Help:      "Build information; always 1.",
		},
		[]string{"version", "commit"},
	)
	componentUp = prometheus.NewDesc(
		"wish_component_up",
		"Whether a readiness component is up (1) or not (0).",
		[]string{"component"}, nil,
	)
)

// RegisterMetrics registers the collectors with the default registry. Safe
// to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		buildInfo.WithLabelValues(version.Version, version.Commit).Set(1)
		prometheus.MustRegister(
			drawsTotal,
			drawErrors,
			drawDuration,
			buildInfo,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "wish",
				Name:      "uptime_seconds",
				Help:      "Seconds since the process started.",
			}, func() float64 { return time.Since(startTime).Seconds() }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "wish",
				Name:      "events_total",
				Help:      "Events emitted since startup.",
			}, func() float64 { return float64(events.TotalCount()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "wish",
				Name:      "ws_clients",
				Help:      "Active websocket event subscribers.",
			}, func() float64 { return float64(events.SubscriberCount()) }),
			componentCollector{},
		)
	})
}

// otherLabel stands in for label values the local catalog does not know.
const otherLabel = "other"

// drawLabels keeps the wish_draw_total labels within the catalog so an
// upstream evaluator cannot grow the series set.
func drawLabels(cat *fortune.Catalog, machine string, out *fortune.Outcome) (string, string, string) {
	if cat == nil || out == nil {
		return otherLabel, otherLabel, otherLabel
	}
	scene, miss := otherLabel, otherLabel
	if !cat.HasMachine(machine) {
		machine = otherLabel
	}
	if _, ok := cat.Scene(out.Scene.ID); ok {
		scene = out.Scene.ID
	}
	if slices.Contains(cat.MissBuckets, out.Miss) {
		miss = out.Miss
	}
	return machine, scene, miss
}

// RecordDraw counts a completed draw.
func RecordDraw(machine string, out *fortune.Outcome, d time.Duration) {
	RegisterMetrics()
	machine, scene, miss := drawLabels(currentCatalog(), machine, out)
	drawsTotal.WithLabelValues(machine, scene, miss).Inc()
	drawDuration.WithLabelValues("ok").Observe(d.Seconds())
}

// RecordDrawError counts a draw that ended in an error of the given kind.
func RecordDrawError(kind string, d time.Duration) {
	RegisterMetrics()
	drawErrors.WithLabelValues(kind).Inc()
	drawDuration.WithLabelValues("error").Observe(d.Seconds())
}

// componentCollector reports the readiness checks at scrape time.
type componentCollector struct{}

func (componentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- componentUp
}

func (componentCollector) Collect(ch chan<- prometheus.Metric) {
	for name, up := range componentStates() {
		v := 0.0
		if up {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(componentUp, prometheus.GaugeValue, v, name)
	}
}
