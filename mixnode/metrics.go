package mixnode

import "github.com/prometheus/client_golang/prometheus"

var (
	ingressRefused = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "mixnode",
		Name:      "ingress_refused_total",
		Help:      "Connections refused because the ingress queue was full.",
	})

	framesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "mixnode",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped, labeled by reason.",
	}, []string{"reason"})

	framesDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "mixnode",
		Name:      "frames_delivered_total",
		Help:      "Packets that reached their final hop at this node.",
	})

	framesForwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "mixnode",
		Name:      "frames_forwarded_total",
		Help:      "Packets written to the egress carrier.",
	})

	egressTransmitErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fogmix",
		Subsystem: "mixnode",
		Name:      "egress_transmit_errors_total",
		Help:      "Egress carrier writes that failed.",
	})
)

func init() {
	prometheus.MustRegister(ingressRefused, framesDropped, framesDelivered,
		framesForwarded, egressTransmitErrors)
}
