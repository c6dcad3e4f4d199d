// Package metrics exports game, command, delivery and connection counters to
// Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/pixil98/go-mudmaze/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "mudmaze"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time
	now      func() time.Time

	playersOnline  prometheus.Gauge
	playersApex    prometheus.Gauge
	playersTotal   prometheus.Gauge
	escapesTotal   prometheus.Counter
	escapeDuration prometheus.Histogram
	escapeMoves    prometheus.Histogram
	mobMovesTotal  *prometheus.CounterVec
	commandsTotal  *prometheus.CounterVec
	deliveryTotal  *prometheus.CounterVec
	connections    *prometheus.GaugeVec
	connectsTotal  *prometheus.CounterVec
	uptimeSeconds  prometheus.Gauge
}

type MetricsOpt func(*Metrics)

// WithNow replaces the clock used for uptime.
func WithNow(now func() time.Time) MetricsOpt {
	return func(m *Metrics) {
		m.now = now
	}
}

func New(opts ...MetricsOpt) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		now:      time.Now,

		playersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "Players currently in the maze.",
		}),
		playersApex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online_apex",
			Help:      "Most players in the maze at once.",
		}),
		playersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_known",
			Help:      "Players who have ever joined.",
		}),
		escapesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escapes_total",
			Help:      "Completed escapes.",
		}),
		escapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "escape_duration_seconds",
			Help:      "Time taken to escape.",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 10),
		}),
		escapeMoves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "escape_moves",
			Help:      "Moves taken to escape.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 10),
		}),
		mobMovesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mob_moves_total",
			Help:      "Mob steps by kind.",
		}, []string{"kind"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands run by command word.",
		}, []string{"command"}),
		deliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_deliveries_total",
			Help:      "Player message delivery attempts by result.",
		}, []string{"result"}),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open connections by transport.",
		}, []string{"transport"}),
		connectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted connections by transport.",
		}, []string{"transport"}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds.",
		}),
	}

	for _, opt := range opts {
		opt(m)
	}
	m.started = m.now()

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.playersOnline,
		m.playersApex,
		m.playersTotal,
		m.escapesTotal,
		m.escapeDuration,
		m.escapeMoves,
		m.mobMovesTotal,
		m.commandsTotal,
		m.deliveryTotal,
		m.connections,
		m.connectsTotal,
		m.uptimeSeconds,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PlayersChanged(online, high, total int) {
	m.playersOnline.Set(float64(online))
	m.playersApex.Set(float64(high))
	m.playersTotal.Set(float64(total))
}

func (m *Metrics) Escaped(rec game.EscapeRecord) {
	m.escapesTotal.Inc()
	m.escapeDuration.Observe(rec.Time.Seconds())
	m.escapeMoves.Observe(float64(rec.Moves))
}

func (m *Metrics) MobMoved(kind game.Kind) {
	m.mobMovesTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) CommandRun(name string) {
	m.commandsTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) Delivered() { m.deliveryTotal.WithLabelValues("delivered").Inc() }
func (m *Metrics) Retried()   { m.deliveryTotal.WithLabelValues("retried").Inc() }
func (m *Metrics) Dropped()   { m.deliveryTotal.WithLabelValues("dropped").Inc() }

func (m *Metrics) Connected(transport string) {
	m.connections.WithLabelValues(transport).Inc()
	m.connectsTotal.WithLabelValues(transport).Inc()
}

func (m *Metrics) Disconnected(transport string) {
	m.connections.WithLabelValues(transport).Dec()
}

// Tick refreshes the uptime gauge.
func (m *Metrics) Tick(context.Context) error {
	m.uptimeSeconds.Set(m.now().Sub(m.started).Seconds())
	return nil
}
