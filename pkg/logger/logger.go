// Package logger 基于 zap 的全局日志：文件 / stdout / stderr 按级别分流。
package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/d60-Lab/techtrends/config"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// continueOnFatal 让 Fatal 只记录不退出进程，退出由调用方决定
type continueOnFatal struct{}

func (continueOnFatal) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

type options struct {
	sentry bool
}

// Option 初始化选项
type Option func(*options)

// WithSentry 将 error 及以上级别的日志转发到 Sentry（需先 sentry.Init）
func WithSentry() Option {
	return func(o *options) { o.sentry = true }
}

// Init 按配置构建全局 logger
func Init(cfg config.LogConfig, opts ...Option) error {
	l, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// New 构建 logger：file >= Level, stdout >= StdoutLevel, stderr >= StderrLevel
func New(cfg config.LogConfig, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	stdoutLevel, err := zapcore.ParseLevel(cfg.StdoutLevel)
	if err != nil {
		return nil, fmt.Errorf("parse stdout level: %w", err)
	}
	stderrLevel, err := zapcore.ParseLevel(cfg.StderrLevel)
	if err != nil {
		return nil, fmt.Errorf("parse stderr level: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), stdoutLevel),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), stderrLevel),
	}

	if cfg.File != "" {
		fileLevel, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse file level: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), fileLevel))
	}

	zapOpts := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.WithFatalHook(continueOnFatal{}),
	}
	if o.sentry {
		zapOpts = append(zapOpts, zap.Hooks(sentryHook))
	}
	return zap.New(zapcore.NewTee(cores...), zapOpts...), nil
}

func sentryHook(e zapcore.Entry) error {
	if e.Level < zapcore.ErrorLevel {
		return nil
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if e.Level >= zapcore.FatalLevel {
			scope.SetLevel(sentry.LevelFatal)
		} else {
			scope.SetLevel(sentry.LevelError)
		}
		scope.SetTag("caller", e.Caller.TrimmedPath())
		sentry.CaptureMessage(e.Message)
	})
	return nil
}

// Set 替换全局 logger（测试中注入 observer）
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l.WithOptions(zap.WithFatalHook(continueOnFatal{}))
}

// L 返回当前全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync 刷新缓冲
func Sync() error { return L().Sync() }

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Fatal 以 fatal 级别记录，但不会退出进程
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }
