package messaging

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	processDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "messaging",
			Name:      "process_duration_seconds",
			Help:      "Message process duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "handler"},
	)
	processTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messaging",
			Name:      "process_total",
			Help:      "Total number of processed messages",
		},
		[]string{"service", "handler", "status"},
	)
	droppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messaging",
			Name:      "dropped_total",
			Help:      "Messages acked without processing because of a non-retryable error",
		},
		[]string{"handler"},
	)
)

// NewMetricsMiddleware 消息处理耗时与结果计数
func NewMetricsMiddleware(serviceName string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			handlerName := message.HandlerNameFromCtx(msg.Context())
			start := time.Now()

			msgs, err := h(msg)

			processDuration.WithLabelValues(serviceName, handlerName).Observe(time.Since(start).Seconds())
			status := "success"
			if err != nil {
				status = "error"
			}
			processTotal.WithLabelValues(serviceName, handlerName, status).Inc()
			return msgs, err
		}
	}
}

// NewDropNonRetryableMiddleware 不可重试错误记录日志后确认消息
func NewDropNonRetryableMiddleware(logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msgs, err := h(msg)
			if err != nil && !IsRetryable(err) {
				handlerName := message.HandlerNameFromCtx(msg.Context())
				logger.Error("丢弃不可重试消息", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"handler":      handlerName,
				})
				droppedTotal.WithLabelValues(handlerName).Inc()
				return nil, nil
			}
			return msgs, err
		}
	}
}

// NewTraceMiddleware 把消息中的 trace_id 写入 logx 上下文字段
func NewTraceMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx := msg.Context()
			if traceID := msg.Metadata.Get(metaTraceID); traceID != "" {
				ctx = logx.ContextWithFields(ctx, logx.Field(metaTraceID, traceID))
			}
			if source := msg.Metadata.Get(metaSourceService); source != "" {
				ctx = logx.ContextWithFields(ctx, logx.Field(metaSourceService, source))
			}
			msg.SetContext(ctx)
			return h(msg)
		}
	}
}
