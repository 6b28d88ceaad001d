package delay

import "github.com/prometheus/client_golang/prometheus"

var (
	transmitErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "delay",
		Name:      "transmit_errors_total",
		Help:      "Packets dropped because the carrier transmit failed.",
	})

	packetsReleased = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "delay",
		Name:      "packets_released_total",
		Help:      "Packets released by the scheduler, real and cover.",
	})

	coverPacketsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "delay",
		Name:      "cover_packets_emitted_total",
		Help:      "Cover traffic packets enqueued by the generator.",
	})
)

func init() {
	prometheus.MustRegister(transmitErrors, packetsReleased, coverPacketsEmitted)
}
