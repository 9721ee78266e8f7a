package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/zeromicro/go-zero/core/logx"
)

// watermillLogger Watermill 日志适配器，输出到 logx
type watermillLogger struct {
	serviceName string
	fields      watermill.LogFields
}

// NewLogger 创建 Watermill 日志适配器
func NewLogger(serviceName string) watermill.LoggerAdapter {
	return &watermillLogger{
		serviceName: serviceName,
	}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logx.Errorw(msg, l.logFields(fields, logx.Field("error", err))...)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	logx.Infow(msg, l.logFields(fields)...)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logx.Debugw(msg, l.logFields(fields)...)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logx.Debugw(msg, l.logFields(fields)...)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{
		serviceName: l.serviceName,
		fields:      l.fields.Add(fields),
	}
}

func (l *watermillLogger) logFields(fields watermill.LogFields, extra ...logx.LogField) []logx.LogField {
	all := l.fields.Add(fields)
	out := make([]logx.LogField, 0, len(all)+len(extra)+1)
	out = append(out, logx.Field("service", l.serviceName))
	for k, v := range all {
		out = append(out, logx.Field(k, v))
	}
	return append(out, extra...)
}
