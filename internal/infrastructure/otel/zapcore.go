package otel

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// logCore is a zapcore.Core that emits every entry as an OTLP log
// record through the provider.
type logCore struct {
	zapcore.LevelEnabler
	provider *Provider
	logger   log.Logger
	fields   []zapcore.Field
}

// NewZapCore builds a core that exports entries at or above level.
func NewZapCore(provider *Provider, level zapcore.Level) zapcore.Core {
	return &logCore{
		LevelEnabler: level,
		provider:     provider,
		logger:       provider.Logger(),
	}
}

// NewCombinedCore tees entries to the local core and the OTLP exporter.
func NewCombinedCore(localCore zapcore.Core, provider *Provider, level zapcore.Level) zapcore.Core {
	return zapcore.NewTee(localCore, NewZapCore(provider, level))
}

func (c *logCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)

	return &logCore{
		LevelEnabler: c.LevelEnabler,
		provider:     c.provider,
		logger:       c.logger,
		fields:       merged,
	}
}

func (c *logCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *logCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var record log.Record
	record.SetTimestamp(entry.Time)
	record.SetSeverity(severity(entry.Level))
	record.SetSeverityText(entry.Level.String())
	record.SetBody(log.StringValue(entry.Message))

	attrs := make([]log.KeyValue, 0, len(c.fields)+len(fields)+4)
	if entry.Caller.Defined {
		attrs = append(attrs,
			log.String("caller", entry.Caller.TrimmedPath()),
			log.String("caller_function", entry.Caller.Function),
		)
	}
	if entry.LoggerName != "" {
		attrs = append(attrs, log.String("logger", entry.LoggerName))
	}
	if entry.Stack != "" {
		attrs = append(attrs, log.String("stacktrace", entry.Stack))
	}

	for _, field := range c.fields {
		if kv := zapFieldToAttribute(field); kv.Key != "" {
			attrs = append(attrs, kv)
		}
	}
	for _, field := range fields {
		if kv := zapFieldToAttribute(field); kv.Key != "" {
			attrs = append(attrs, kv)
		}
	}

	record.AddAttributes(attrs...)
	c.logger.Emit(context.Background(), record)
	return nil
}

func (c *logCore) Sync() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.provider.ForceFlush(ctx)
}

func severity(level zapcore.Level) log.Severity {
	switch level {
	case zapcore.DebugLevel:
		return log.SeverityDebug
	case zapcore.InfoLevel:
		return log.SeverityInfo
	case zapcore.WarnLevel:
		return log.SeverityWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel:
		return log.SeverityError
	case zapcore.PanicLevel, zapcore.FatalLevel:
		return log.SeverityFatal
	default:
		return log.SeverityInfo
	}
}

// zapFieldToAttribute maps a zap field onto an OTLP attribute. Unmappable fields
// come back with an empty key and are dropped by the caller.
func zapFieldToAttribute(field zapcore.Field) log.KeyValue {
	switch field.Type {
	case zapcore.BoolType:
		return log.Bool(field.Key, field.Integer == 1)

	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return log.Int64(field.Key, field.Integer)

	// zap packs float bits into the Integer slot
	case zapcore.Float64Type:
		return log.Float64(field.Key, math.Float64frombits(uint64(field.Integer)))

	case zapcore.Float32Type:
		return log.Float64(field.Key, float64(math.Float32frombits(uint32(field.Integer))))

	case zapcore.StringType:
		return log.String(field.Key, field.String)

	case zapcore.TimeType, zapcore.TimeFullType:
		if t, ok := field.Interface.(time.Time); ok {
			return log.String(field.Key, t.Format(time.RFC3339Nano))
		}
		return log.Int64(field.Key, field.Integer)

	case zapcore.DurationType:
		return log.String(field.Key, time.Duration(field.Integer).String())

	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return log.String(field.Key, err.Error())
		}

	case zapcore.StringerType:
		if s, ok := field.Interface.(fmt.Stringer); ok {
			return log.String(field.Key, s.String())
		}

	case zapcore.BinaryType:
		if b, ok := field.Interface.([]byte); ok {
			return log.Bytes(field.Key, b)
		}

	case zapcore.ByteStringType:
		if b, ok := field.Interface.([]byte); ok {
			return log.String(field.Key, string(b))
		}

	case zapcore.SkipType, zapcore.NamespaceType:

	default:
		if field.Interface != nil {
			return log.String(field.Key, fmt.Sprintf("%v", field.Interface))
		}
	}
	return log.KeyValue{}
}

var _ zapcore.Core = (*logCore)(nil)
