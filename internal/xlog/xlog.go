// Package xlog provides the module logger used throughout the indexing
// core. The klaytn log package (log15-style keyval logging via
// log.NewModuleLogger) was not present in the retrieval pack, so this
// package reproduces the same call shape on top of zap, which klaytn does
// depend on directly.
package xlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseOnce sync.Once
	base     *zap.Logger
)

func rootLogger() *zap.Logger {
	baseOnce.Do(func() {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(zap.InfoLevel))
		base = zap.New(core)
	})
	return base
}

// Logger is the module-scoped logger handed to every component, mirroring
// klaytn's logger.Info("msg", "key", val, ...) convention.
type Logger struct {
	module string
	z      *zap.SugaredLogger
}

// New returns a logger tagged with the given module name, the equivalent
// of klaytn's log.NewModuleLogger(log.<Module>).
func New(module string) *Logger {
	return &Logger{module: module, z: rootLogger().Sugar().With("module", module)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// Crit logs at error level with full context and is used on the
// worker-main-loop exit path described in spec.md §7: unrecoverable
// errors are logged once with full context before the process exits.
func (l *Logger) Crit(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// With returns a child logger with additional static fields, used to
// tag a logger with e.g. the partition id or network for the lifetime of
// a worker goroutine.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{module: l.module, z: l.z.With(kv...)}
}

// Sync flushes any buffered log entries; call on clean shutdown.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}
