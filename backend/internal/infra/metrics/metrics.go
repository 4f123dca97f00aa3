package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce       sync.Once
	signalRequests     *prometheus.CounterVec
	messageRequests    *prometheus.CounterVec
	pushDeliveries     *prometheus.CounterVec
	kpiAggregations    *prometheus.CounterVec
	kpiAggregationTime prometheus.Histogram
)

const (
	namespaceMetrics = "meetup"
)

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		signalRequests = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "signal",
					Name:      "requests_total",
					Help:      "信号接口的调用次数，按动作与结果统计。",
				},
				[]string{"action", "result"},
			),
		)
		messageRequests = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "chat",
					Name:      "messages_total",
					Help:      "聊天消息发送次数，按结果分类。",
				},
				[]string{"result"},
			),
		)
		pushDeliveries = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "push",
					Name:      "deliveries_total",
					Help:      "推送投递次数，按结果分类。",
				},
				[]string{"result"},
			),
		)
		kpiAggregations = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "kpi",
					Name:      "aggregations_total",
					Help:      "每日 KPI 聚合的执行次数，按结果分类。",
				},
				[]string{"result"},
			),
		)
		kpiAggregationTime = registerHistogram(
			prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "kpi",
					Name:      "aggregation_duration_seconds",
					Help:      "每日 KPI 聚合的耗时分布。",
					Buckets:   prometheus.DefBuckets,
				},
			),
		)

		registerRuntimeCollectors()
	})
}

// ObserveSignal 记录一次信号操作的结果。
func ObserveSignal(action, result string) {
	if signalRequests == nil {
		return
	}
	signalRequests.WithLabelValues(action, result).Inc()
}

// ObserveMessage 记录一次消息发送的结果。
func ObserveMessage(result string) {
	if messageRequests == nil {
		return
	}
	messageRequests.WithLabelValues(result).Inc()
}

// ObservePush 记录一次推送投递的结果。
func ObservePush(result string) {
	if pushDeliveries == nil {
		return
	}
	pushDeliveries.WithLabelValues(result).Inc()
}

// ObserveKpiAggregation 记录一次 KPI 聚合的结果与耗时。
func ObserveKpiAggregation(result string, elapsed time.Duration) {
	if kpiAggregations != nil {
		kpiAggregations.WithLabelValues(result).Inc()
	}
	if kpiAggregationTime != nil {
		kpiAggregationTime.Observe(elapsed.Seconds())
	}
}

// registerCounterVec 注册计数器，已存在时复用旧实例，避免热重载时 panic。
func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return vec
}

// registerHistogram 注册直方图，处理重复注册。
func registerHistogram(h prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
	}
	return h
}

// registerRuntimeCollectors 注册 Go 运行时与进程级采样器。
func registerRuntimeCollectors() {
	_ = prometheus.Register(collectors.NewGoCollector())
	_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
