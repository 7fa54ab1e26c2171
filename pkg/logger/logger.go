package logger

import (
	"os"

	"go.uber.org/zap"
)

// Logger 日志接口，状态机与示例程序只依赖该接口
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Panic(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Panicf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})

	SetLevel(level Level)
	Sync() error
}

// Field 结构化日志字段
type Field = zap.Field

// std 供直接调用，pkgStd 供包级函数使用，多跳过包级函数这一层
var (
	std    Logger = New(os.Stderr, InfoLevel, AddCaller())
	pkgStd        = skipCaller(std, 1)
)

// callerSkipper 可以调整调用位置的日志实现
type callerSkipper interface {
	WithCallerSkip(skip int) Logger
}

func skipCaller(l Logger, skip int) Logger {
	if s, ok := l.(callerSkipper); ok {
		return s.WithCallerSkip(skip)
	}
	return l
}

// Default 返回默认日志实例
func Default() Logger { return std }

// ReplaceDefault 替换默认日志实例
func ReplaceDefault(l Logger) {
	if l == nil {
		return
	}
	std = l
	pkgStd = skipCaller(l, 1)
}

// Nop 返回丢弃所有输出的日志实例
func Nop() Logger { return &ZapLogger{l: zap.NewNop()} }

func SetLevel(level Level) { std.SetLevel(level) }

func Debug(msg string, fields ...Field) { pkgStd.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { pkgStd.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { pkgStd.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { pkgStd.Error(msg, fields...) }
func Panic(msg string, fields ...Field) { pkgStd.Panic(msg, fields...) }
func Fatal(msg string, fields ...Field) { pkgStd.Fatal(msg, fields...) }

func Debugf(format string, v ...interface{}) { pkgStd.Debugf(format, v...) }
func Infof(format string, v ...interface{})  { pkgStd.Infof(format, v...) }
func Warnf(format string, v ...interface{})  { pkgStd.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { pkgStd.Errorf(format, v...) }
func Panicf(format string, v ...interface{}) { pkgStd.Panicf(format, v...) }
func Fatalf(format string, v ...interface{}) { pkgStd.Fatalf(format, v...) }

func Sync() error { return std.Sync() }
