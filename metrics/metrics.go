// Package metrics holds the Prometheus collectors for console sessions.
// A nil *Collectors is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command results
const (
	ResultOK      = "ok"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// Provisioning results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

type Collectors struct {
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	provisions      *prometheus.CounterVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) *Collectors {
	registry = prometheus.WrapRegistererWithPrefix("olt_console_", registry)

	c := &Collectors{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commands_total",
			Help: "Console commands sent, by result.",
		}, []string{"host", "result"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Time from sending a command until its prompt was seen.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 90},
		}, []string{"host"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mode_transitions_total",
			Help: "Completed CLI mode hops.",
		}, []string{"host", "from", "to"}),
		provisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provision_total",
			Help: "Provisioning operations, by result.",
		}, []string{"host", "operation", "result"}),
	}
	registry.MustRegister(c.commands, c.commandDuration, c.transitions, c.provisions)
	return c
}

func (c *Collectors) ObserveCommand(host, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(host, result).Inc()
	c.commandDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (c *Collectors) ObserveTransition(host, from, to string) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(host, from, to).Inc()
}

func (c *Collectors) ObserveProvision(host, operation, result string) {
	if c == nil {
		return
	}
	c.provisions.WithLabelValues(host, operation, result).Inc()
}
