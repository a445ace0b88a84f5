package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PackagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packages_created_total",
		Help: "Total number of packages created",
	})

	PackagesAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packages_assigned_total",
		Help: "Total number of packages assigned to workers",
	})

	PackagesArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packages_archived_total",
		Help: "Total number of packages archived",
	})

	PackagesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "packages_deleted_total",
		Help: "Total number of packages deleted by managers",
	})

	PackagesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "packages_failed_total",
		Help: "Total number of failed package operations",
	}, []string{"reason"})

	AssignConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "package_assign_conflicts_total",
		Help: "Total number of assignment attempts rejected by version conflicts",
	})

	ScansConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_scans_confirmed_total",
		Help: "Total number of successful pick-verification scans",
	})

	ScansMismatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pick_scans_mismatched_total",
		Help: "Total number of scans rejected for not matching the expected product",
	})

	ArchiveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "package_archive_latency_seconds",
		Help:    "Latency of the archive transaction",
		Buckets: prometheus.DefBuckets,
	})

	LowStockWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_warnings_total",
		Help: "Total number of low-stock warnings emitted",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

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
