// Package metrics exposes engine activity and HTTP traffic as Prometheus
// collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/xp"
)

const namespace = "missionctl"

type Metrics struct {
	registry *prometheus.Registry

	// refreshMu makes each gauge refresh atomic with respect to the others
	refreshMu sync.Mutex

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	engineEvents        *prometheus.CounterVec
	xpAwarded           prometheus.Counter
	alertsSent          *prometheus.CounterVec
	habits              *prometheus.GaugeVec
	missions            *prometheus.GaugeVec
	xpTotal             prometheus.Gauge
	level               prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		engineEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_events_total",
				Help:      "Applied state changes by kind",
			},
			[]string{"kind"},
		),
		xpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP granted since process start",
		}),
		alertsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_sent_total",
				Help:      "Time's up notifications by delivery result",
			},
			[]string{"result"},
		),
		habits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "habits",
				Help:      "Habits by status",
			},
			[]string{"status"},
		),
		missions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mini_missions",
				Help:      "Mini missions by status",
			},
			[]string{"status"},
		),
		xpTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "xp",
			Help:      "Current XP ledger total",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Current level",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.engineEvents,
		m.xpAwarded,
		m.alertsSent,
		m.habits,
		m.missions,
		m.xpTotal,
		m.level,
	)
	return m
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Observe counts one engine event
func (m *Metrics) Observe(ev engine.Event) {
	m.engineEvents.WithLabelValues(string(ev.Kind)).Inc()
	if ev.XPAwarded > 0 {
		m.xpAwarded.Add(float64(ev.XPAwarded))
	}
}

// Refresh sets the collection gauges from snap
func (m *Metrics) Refresh(snap models.Snapshot) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	m.setGauges(snap)
}

func (m *Metrics) setGauges(snap models.Snapshot) {
	habits := map[string]int{
		string(models.HabitStatusActive):    0,
		string(models.HabitStatusCompleted): 0,
	}
	for _, h := range snap.Habits {
		habits[string(h.Status)]++
	}
	missions := map[string]int{
		string(models.MissionPending):    0,
		string(models.MissionInProgress): 0,
		string(models.MissionCompleted):  0,
		string(models.MissionCancelled):  0,
	}
	for _, ms := range snap.MiniMissions {
		missions[string(ms.Status)]++
	}

	for status, n := range habits {
		m.habits.WithLabelValues(status).Set(float64(n))
	}
	for status, n := range missions {
		m.missions.WithLabelValues(status).Set(float64(n))
	}
	m.xpTotal.Set(float64(snap.XP))
	m.level.Set(float64(xp.LevelFor(snap.XP).Level))
}

// refreshFrom takes the snapshot under refreshMu so the last refresh to
// finish always reflects the newest state
func (m *Metrics) refreshFrom(e *engine.Engine) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	m.setGauges(e.Snapshot())
}

// Attach feeds m from e until the returned func is called
func (m *Metrics) Attach(e *engine.Engine) func() {
	m.refreshFrom(e)
	return e.Subscribe(func(ev engine.Event) {
		m.Observe(ev)
		m.refreshFrom(e)
	})
}

// AlertSent records one delivery attempt
func (m *Metrics) AlertSent(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.alertsSent.WithLabelValues(result).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency per route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		m.httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
