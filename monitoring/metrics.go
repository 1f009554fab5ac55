// Package monitoring 提供预测服务的Prometheus指标
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oncopredict"

// Metrics 指标收集器
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	PredictionsTotal  *prometheus.CounterVec
	RejectionsTotal   *prometheus.CounterVec
	InferenceDuration prometheus.Histogram
	ModelReady        prometheus.Gauge
}

// NewMetrics 创建指标收集器并注册到独立的registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "predictions",
				Name:      "total",
				Help:      "Total number of successful predictions by label",
			},
			[]string{"label"},
		),

		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "predictions",
				Name:      "rejected_total",
				Help:      "Total number of failed prediction requests by error kind",
			},
			[]string{"kind"},
		),

		InferenceDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "predictions",
				Name:      "duration_seconds",
				Help:      "Time spent validating and classifying a prediction request",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),

		ModelReady: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "ready",
				Help:      "Whether the classifier loaded at startup (1=ready, 0=degraded)",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.PredictionsTotal,
		m.RejectionsTotal,
		m.InferenceDuration,
		m.ModelReady,
		// 系统指标
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回/metrics处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetModelReady 记录启动时的模型状态
func (m *Metrics) SetModelReady(ready bool) {
	if ready {
		m.ModelReady.Set(1)
		return
	}
	m.ModelReady.Set(0)
}

// ObservePrediction 记录成功的预测
func (m *Metrics) ObservePrediction(label string, elapsed time.Duration) {
	m.PredictionsTotal.WithLabelValues(label).Inc()
	m.InferenceDuration.Observe(elapsed.Seconds())
}

// ObserveRejection 记录失败的预测
func (m *Metrics) ObserveRejection(kind string, elapsed time.Duration) {
	m.RejectionsTotal.WithLabelValues(kind).Inc()
	m.InferenceDuration.Observe(elapsed.Seconds())
}

// ObserveRequest 记录HTTP请求
func (m *Metrics) ObserveRequest(route string, code int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
