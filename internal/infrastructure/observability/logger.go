package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// logOutput is the writer InitLogger configured, kept so OTel forwarding can
// be added alongside it.
var logOutput io.Writer = os.Stdout

// InitLogger initializes the global zerolog logger
func InitLogger(serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		logOutput = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		log.Logger = log.Output(logOutput).With().
			Str("service", serviceName).
			Logger()
	} else {
		logOutput = os.Stdout
		log.Logger = zerolog.New(logOutput).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName).
			Logger()
	}
}

// ForwardLogsToOTel copies every log event to the global OTel logger
// provider. Call it after Setup.
func ForwardLogsToOTel(scope string) {
	otelWriter := NewOTelLogWriter(global.GetLoggerProvider().Logger(scope))
	log.Logger = log.Logger.Output(zerolog.MultiLevelWriter(logOutput, otelWriter))
}

// LoggerFromContext returns the request logger stored in ctx, or the global
// logger, with trace context
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = l.With().Logger()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return &logger
}

// OTelLogWriter emits zerolog JSON events as OTel log records. Event fields
// become record attributes; trace_id and span_id link the record to its span.
type OTelLogWriter struct {
	logger otellog.Logger
}

// NewOTelLogWriter creates a writer that emits to logger.
func NewOTelLogWriter(logger otellog.Logger) *OTelLogWriter {
	return &OTelLogWriter{logger: logger}
}

// Write implements io.Writer. Events without a level are dropped.
func (w *OTelLogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter
func (w *OTelLogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level == zerolog.NoLevel || level == zerolog.Disabled {
		return len(p), nil
	}

	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		// not a JSON event; the primary output still has it
		return len(p), nil
	}

	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(otelSeverity(level))
	record.SetSeverityText(level.String())
	if msg, ok := fields[zerolog.MessageFieldName].(string); ok {
		record.SetBody(otellog.StringValue(msg))
	}

	ctx := context.Background()
	traceID, _ := fields["trace_id"].(string)
	spanID, _ := fields["span_id"].(string)
	if sc, ok := spanContextFromIDs(traceID, spanID); ok {
		ctx = trace.ContextWithSpanContext(ctx, sc)
	}

	attrs := make([]otellog.KeyValue, 0, len(fields))
	for key, value := range fields {
		switch key {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName, "trace_id", "span_id":
			continue
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: otelValue(value)})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	record.AddAttributes(attrs...)

	w.logger.Emit(ctx, record)
	return len(p), nil
}

func spanContextFromIDs(traceID, spanID string) (trace.SpanContext, bool) {
	tid, err := trace.TraceIDFromHex(traceID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	sid, err := trace.SpanIDFromHex(spanID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
	}), true
}

func otelValue(v interface{}) otellog.Value {
	switch val := v.(type) {
	case string:
		return otellog.StringValue(val)
	case bool:
		return otellog.BoolValue(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return otellog.Int64Value(n)
		}
		if f, err := val.Float64(); err == nil {
			return otellog.Float64Value(f)
		}
		return otellog.StringValue(val.String())
	case nil:
		return otellog.Value{}
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return otellog.StringValue(fmt.Sprint(val))
		}
		return otellog.StringValue(string(encoded))
	}
}

func otelSeverity(level zerolog.Level) otellog.Severity {
	switch level {
	case zerolog.TraceLevel:
		return otellog.SeverityTrace
	case zerolog.DebugLevel:
		return otellog.SeverityDebug
	case zerolog.InfoLevel:
		return otellog.SeverityInfo
	case zerolog.WarnLevel:
		return otellog.SeverityWarn
	case zerolog.ErrorLevel:
		return otellog.SeverityError
	case zerolog.FatalLevel:
		return otellog.SeverityFatal
	case zerolog.PanicLevel:
		return otellog.SeverityFatal4
	default:
		return otellog.SeverityUndefined
	}
}
