package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gestion_envios",
		Subsystem: "kafka_consumer",
		Name:      "orders_created_total",
		Help:      "Total number of orders created from consumed messages.",
	})

	ordersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gestion_envios",
		Subsystem: "kafka_consumer",
		Name:      "orders_failed_total",
		Help:      "Total number of messages that could not be turned into orders.",
	})

	ordersDLQ = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gestion_envios",
		Subsystem: "kafka_consumer",
		Name:      "orders_dlq_total",
		Help:      "Total number of messages written to the DLQ topic.",
	})
)
