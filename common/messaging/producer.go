package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/trace"
)

const defaultPublishTimeout = 3 * time.Second

// AsyncProducer 异步事件发布器
// nil 安全：AsyncProducer 或 Client 为 nil 时所有方法静默返回
type AsyncProducer struct {
	client  *Client
	timeout time.Duration
}

// NewAsyncProducer 创建异步发布器
func NewAsyncProducer(client *Client) *AsyncProducer {
	if client == nil {
		return nil
	}
	return &AsyncProducer{client: client, timeout: defaultPublishTimeout}
}

// PublishAsync 异步发布事件
// - 开新 goroutine，不阻塞调用方
// - defer recover 防 panic 传播
// - 超时防 goroutine 泄漏
// - 发布失败只记日志，不影响主业务
func (p *AsyncProducer) PublishAsync(ctx context.Context, topic string, payload interface{}) {
	if p == nil || p.client == nil {
		return
	}

	// 请求结束后 ctx 会被取消，只保留 trace_id
	traceID := trace.TraceIDFromContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logx.Errorf("[MQ-Producer] panic recovered: topic=%s, err=%v", topic, r)
			}
		}()

		data, err := json.Marshal(payload)
		if err != nil {
			logx.Errorf("[MQ-Producer] 序列化失败: topic=%s, err=%v", topic, err)
			return
		}

		pubCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if traceID != "" {
			pubCtx = withTraceID(pubCtx, traceID)
			pubCtx = logx.ContextWithFields(pubCtx, logx.Field(metaTraceID, traceID))
		}

		if err := p.client.Publish(pubCtx, topic, data); err != nil {
			logx.WithContext(pubCtx).Errorf("[MQ-Producer] 发布失败: topic=%s, err=%v", topic, err)
			return
		}

		logx.WithContext(pubCtx).Infof("[MQ-Producer] 发布成功: topic=%s, size=%d", topic, len(data))
	}()
}
