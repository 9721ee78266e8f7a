package messaging

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	wmMiddleware "github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/trace"
)

const (
	metaTraceID       = "trace_id"
	metaSourceService = "source_service"
)

// Client Watermill 消息客户端
type Client struct {
	Publisher   message.Publisher
	Subscriber  message.Subscriber
	Router      *message.Router
	config      Config
	redisClient *redis.Client
}

// NewClient 创建基于 Redis Streams 的消息客户端
func NewClient(config Config) (*Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "connect to Redis")
	}

	logger := NewLogger(config.ServiceName)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		return nil, errors.Wrap(err, "create publisher")
	}

	subscriber, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: config.ServiceName,
		},
		logger,
	)
	if err != nil {
		return nil, errors.Wrap(err, "create subscriber")
	}

	client, err := NewClientWithPubSub(config, publisher, subscriber)
	if err != nil {
		return nil, err
	}
	client.redisClient = redisClient
	return client, nil
}

// NewClientWithPubSub 使用现成的 Publisher/Subscriber 创建客户端（测试中使用 gochannel）
func NewClientWithPubSub(config Config, publisher message.Publisher, subscriber message.Subscriber) (*Client, error) {
	logger := NewLogger(config.ServiceName)

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create router")
	}

	// 先添加的在外层
	// 1. Panic 恢复
	router.AddMiddleware(wmMiddleware.Recoverer)

	// 2. Prometheus 指标（记录重试后的最终结果）
	if config.EnableMetrics {
		router.AddMiddleware(NewMetricsMiddleware(config.ServiceName))
	}

	// 3. 重试中间件
	if config.RetryConfig.MaxRetries > 0 {
		retryMiddleware := wmMiddleware.Retry{
			MaxRetries:      config.RetryConfig.MaxRetries,
			InitialInterval: config.RetryConfig.InitialInterval,
			MaxInterval:     config.RetryConfig.MaxInterval,
			Multiplier:      config.RetryConfig.Multiplier,
			Logger:          logger,
		}
		router.AddMiddleware(retryMiddleware.Middleware)
	}

	// 4. 不可重试错误直接确认
	router.AddMiddleware(NewDropNonRetryableMiddleware(logger))

	// 5. trace_id 传播
	router.AddMiddleware(NewTraceMiddleware())

	return &Client{
		Publisher:  publisher,
		Subscriber: subscriber,
		Router:     router,
		config:     config,
	}, nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if err := c.Router.Close(); err != nil {
		return errors.Wrap(err, "close router")
	}
	if err := c.Publisher.Close(); err != nil {
		return errors.Wrap(err, "close publisher")
	}
	if err := c.Subscriber.Close(); err != nil {
		return errors.Wrap(err, "close subscriber")
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			return errors.Wrap(err, "close redis client")
		}
	}
	return nil
}

// Publish 发布消息（便捷方法），注入 trace_id 与来源服务
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if traceID := traceIDFromContext(ctx); traceID != "" {
		msg.Metadata.Set(metaTraceID, traceID)
	}
	if c.config.ServiceName != "" {
		msg.Metadata.Set(metaSourceService, c.config.ServiceName)
	}
	return c.Publisher.Publish(topic, msg)
}

type traceIDKey struct{}

func withTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func traceIDFromContext(ctx context.Context) string {
	if traceID := trace.TraceIDFromContext(ctx); traceID != "" {
		return traceID
	}
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}

// Subscribe 订阅消息，需要调用 Run 启动
func (c *Client) Subscribe(topic string, handlerName string, handler message.NoPublishHandlerFunc) {
	c.Router.AddNoPublisherHandler(
		handlerName,
		topic,
		c.Subscriber,
		handler,
	)
}

// Run 启动 Router（阻塞）
func (c *Client) Run(ctx context.Context) error {
	return c.Router.Run(ctx)
}

// Running Router 就绪后关闭返回的 channel
func (c *Client) Running() chan struct{} {
	return c.Router.Running()
}
