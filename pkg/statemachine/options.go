package statemachine

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

// Option 状态机配置选项
type Option func(*Engine)

// WithName 设置状态机名称，用于日志、追踪和指标标签
func WithName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.name = name
		}
	}
}

// WithLogger 设置日志实例，默认使用 logger.Default()
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTracer 设置派发使用的 tracer，默认取 otel 全局 TracerProvider
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMetrics 启用 prometheus 指标
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithStateReplacement 允许重复 AddState 覆盖已有实例，默认拒绝
func WithStateReplacement(enable bool) Option {
	return func(e *Engine) {
		e.replaceStates = enable
	}
}

// WithTransitionHook 注册转换观察者，按注册顺序调用
func WithTransitionHook(hook TransitionHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}
