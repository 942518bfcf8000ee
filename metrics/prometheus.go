// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesiq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesiq_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 导入指标
	ImportFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesiq_import_files_total",
			Help: "Total number of imported files by final status",
		},
		[]string{"format", "status"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesiq_import_rows_total",
			Help: "Total number of imported rows by validation result",
		},
		[]string{"result"},
	)

	// 后台任务指标
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesiq_jobs_total",
			Help: "Total number of finished background jobs",
		},
		[]string{"kind", "status"},
	)

	JobsRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salesiq_jobs_running",
			Help: "Number of running background jobs",
		},
		[]string{"kind"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesiq_job_duration_seconds",
			Help:    "Duration of background jobs",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	// WebSocket 指标
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "salesiq_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)
