package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog logger bound to one service.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// Init builds the global logger from cfg and makes it the zerolog default.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "default"
	}
	global = New(cfg, name)
	log.Logger = global.zl
}

// New creates a logger writing to the configured output.
func New(cfg *Config, service string) *Logger {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg, service, out)
}

// NewWithWriter creates a logger writing to w. An unknown level falls back
// to info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zc zerolog.Context
	switch strings.ToLower(cfg.Format) {
	case "console", "text", "pretty":
		zc = zerolog.New(consoleWriter(w, service, cfg.NoColor)).With().Timestamp()
	default:
		zc = zerolog.New(w).With().Str("service", service)
		if cfg.Timestamp {
			zc = zc.Timestamp()
		}
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{zl: zc.Logger().Level(level), service: service}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop(), service: "nop"}
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{zl: zc.Logger(), service: l.service}
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	jobIDKey
)

// ContextWithRequestID stores a request ID for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithJobID stores a job ID for WithContext.
func ContextWithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// WithContext adds the request ID, job ID and active span found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	if id, ok := ctx.Value(jobIDKey).(string); ok && id != "" {
		zc = zc.Str(FieldJobID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return l.derive(zc)
}

// WithComponent tags every line with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithJob tags every line with a job ID.
func (l *Logger) WithJob(id string) *Logger {
	return l.derive(l.zl.With().Str(FieldJobID, id))
}

// WithError attaches err to every line.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.zl.Error(), msg, fields) }

func emit(ev *zerolog.Event, msg string, fields []map[string]any) {
	for _, m := range fields {
		for k, v := range m {
			ev = ev.Interface(k, v)
		}
	}
	ev.Msg(msg)
}

var global *Logger

// GetGlobalLogger returns the logger set by Init, or a console logger at
// info level when Init has not run.
func GetGlobalLogger() *Logger {
	if global == nil {
		global = New(&Config{Level: "info", Format: "console", Output: "stdout"}, "default")
	}
	return global
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent returns a component logger derived from the global one.
func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }

var levelTags = map[string]string{
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
	"trace": "TRC",
}

var levelColors = map[string]int{"debug": 36, "info": 32, "warn": 33, "error": 31, "fatal": 35, "panic": 35}

func consoleWriter(w io.Writer, service string, noColor bool) zerolog.ConsoleWriter {
	prefix := ""
	if service != "" && service != "default" {
		prefix = "[" + strings.ToUpper(service[:min(3, len(service))]) + "]"
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatLevel: func(i any) string {
			lvl, _ := i.(string)
			tag := "[" + levelTags[lvl] + "]"
			if levelTags[lvl] == "" {
				tag = "[" + strings.ToUpper(lvl) + "]"
			}
			if !noColor {
				if c, ok := levelColors[lvl]; ok {
					tag = fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, tag)
				}
				if prefix != "" {
					return "\x1b[34m" + prefix + "\x1b[0m" + tag
				}
			}
			return prefix + tag
		},
		FormatFieldName: func(i any) string { return fmt.Sprintf("%s:", i) },
	}
}
