// Package metrics exposes run counters for the fuzzer
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smbfuzz"

var (
	ConnectAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "The count of connection attempts",
		})

	ConnectFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_failures_total",
			Help:      "The count of failed connection attempts",
		})

	FramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "The count of frames written, by command and kind",
		}, []string{"command", "kind"})

	TransportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "The count of write and read failures",
		}, []string{"op"})

	ResponseStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_status_total",
			Help:      "The count of responses to fuzzed frames, by NT status",
		}, []string{"status"})

	LastState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reached_state",
			Help:      "The handshake state reached by the last attempt",
		})
)

func init() {
	prometheus.MustRegister(ConnectAttempts)
	prometheus.MustRegister(ConnectFailures)
	prometheus.MustRegister(FramesSent)
	prometheus.MustRegister(TransportErrors)
	prometheus.MustRegister(ResponseStatus)
	prometheus.MustRegister(LastState)
}
