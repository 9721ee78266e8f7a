// Package metrics 活动服务业务指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workflowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activity",
			Name:      "workflow_total",
			Help:      "Total number of enrollment/favorite workflow calls by result code",
		},
		[]string{"action", "result"},
	)
	workflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "activity",
			Name:      "workflow_duration_seconds",
			Help:      "Enrollment/favorite workflow duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	// CounterClamped 冗余计数在 0 时仍被要求减一
	CounterClamped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activity",
			Name:      "counter_clamped_total",
			Help:      "Decrements refused because the denormalized counter was already zero",
		},
		[]string{"counter"},
	)
	// CounterGuardRejected 条件自增因冗余计数偏大而失败
	CounterGuardRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activity",
			Name:      "counter_guard_rejected_total",
			Help:      "Joins refused by the conditional increment while active enrollments were below capacity",
		},
		[]string{"counter"},
	)
	// CounterRepaired 校准任务修正的活动数
	CounterRepaired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "activity",
			Name:      "counter_repaired_total",
			Help:      "Activities whose denormalized counters were rewritten by the reconciler",
		},
		[]string{"counter"},
	)
)

// ObserveWorkflow 记录一次报名/收藏流程
func ObserveWorkflow(action, result string, start time.Time) {
	workflowTotal.WithLabelValues(action, result).Inc()
	workflowDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
