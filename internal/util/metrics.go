package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MovementsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_recorded_total",
		Help: "Total number of stock movements appended to the ledger",
	}, []string{"movement_type"})

	MovementsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_rejected_total",
		Help: "Total number of rejected stock movements",
	}, []string{"reason"})

	RecordMovementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_movement_record_latency_seconds",
		Help:    "Latency of the atomic ledger append + snapshot update",
		Buckets: prometheus.DefBuckets,
	})

	PurchaseOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_created_total",
		Help: "Total number of purchase orders created",
	})

	PurchaseOrdersReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_received_total",
		Help: "Total number of purchase orders fully received",
	})

	PurchaseOrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_orders_cancelled_total",
		Help: "Total number of purchase orders cancelled",
	})

	PurchaseOrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_orders_failed_total",
		Help: "Total number of failed purchase order operations",
	}, []string{"reason"})

	ReceiveItemsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purchase_order_receive_latency_seconds",
		Help:    "Latency of purchase order receipt processing",
		Buckets: prometheus.DefBuckets,
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Total number of low stock alerts published",
	})

	SnapshotCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_snapshot_cache_requests_total",
		Help: "Snapshot cache lookups by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
