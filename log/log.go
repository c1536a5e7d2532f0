// Package log is a thin zap wrapper with a replaceable default logger.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

var (
	String     = zap.String
	Int        = zap.Int
	Bool       = zap.Bool
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

type Logger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

// ParseLevel parses a level name such as "debug" or "WARN".
func ParseLevel(text string) (Level, error) { return zapcore.ParseLevel(text) }

// New creates a Logger writing JSON records to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return newLogger(zapcore.NewJSONEncoder(cfg), w, level, opts...)
}

// DevLogger creates a Logger writing human readable records to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	return newLogger(zapcore.NewConsoleEncoder(cfg), w, level, opts...)
}

func newLogger(enc zapcore.Encoder, w io.Writer, level Level, opts ...Option) *Logger {
	if w == nil {
		w = os.Stderr
	}
	atomic := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(enc, zapcore.AddSync(w), atomic)
	return &Logger{l: zap.New(core, opts...), level: atomic}
}

// NewFromZap wraps an existing zap logger, e.g. one built on a zaptest observer.
func NewFromZap(l *zap.Logger) *Logger {
	return &Logger{l: l, level: zap.NewAtomicLevelAt(l.Level())}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return NewFromZap(zap.NewNop()) }

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }

// With returns a child Logger carrying fields on every record.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

// Named adds a segment to the logger name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) Level() Level { return l.level.Level() }

func (l *Logger) SetLevel(level Level) { l.level.SetLevel(level) }

func (l *Logger) Sync() error { return l.l.Sync() }

var (
	mu  sync.RWMutex
	std = New(os.Stderr, InfoLevel)
	pkg = std.skip()
)

// skip accounts for the package level functions when reporting callers.
func (l *Logger) skip() *Logger {
	return &Logger{l: l.l.WithOptions(zap.AddCallerSkip(1)), level: l.level}
}

// Default returns the logger used by the package level functions.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// ResetDefault replaces the default logger.
func ResetDefault(l *Logger) {
	mu.Lock()
	std, pkg = l, l.skip()
	mu.Unlock()
}

func pkgLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return pkg
}

func Debug(msg string, fields ...Field) { pkgLogger().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { pkgLogger().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { pkgLogger().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { pkgLogger().Error(msg, fields...) }

func Sync() error { return Default().Sync() }
