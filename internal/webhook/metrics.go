package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhooksDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gestion_envios",
		Subsystem: "webhook",
		Name:      "delivered_total",
		Help:      "Total number of webhook notifications delivered.",
	})

	webhooksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gestion_envios",
		Subsystem: "webhook",
		Name:      "failed_total",
		Help:      "Total number of webhook notifications that failed (timeout, connection error or non-2xx).",
	})
)
