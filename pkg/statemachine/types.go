package statemachine

import "context"

// TransitionHook 每次成功转换后调用（包括转换到自身），只用于观察
type TransitionHook func(from, to StateID)

// reaction 类型擦除后的回调
type reaction func(c *Context, ev any)

// callbackKey (事件, 状态) 精确匹配键
type callbackKey struct {
	event EventID
	state StateID
}

// Context 派发时传给响应函数的上下文，携带调用方的 context.Context，
// 并作为响应内部请求状态转换的入口
type Context struct {
	context.Context
	engine *Engine
	event  any
	errs   []error
}

// Engine 返回正在派发事件的状态机
func (c *Context) Engine() *Engine { return c.engine }

// Event 返回正在派发的事件
func (c *Context) Event() any { return c.event }

// TransitTo 在响应内部请求转换到状态 S。
// 同一响应内多次调用以最后一次为准；失败会记录下来并由 Dispatch 返回。
func TransitTo[S any](c *Context) error {
	err := Transit[S](c.engine)
	if err != nil {
		c.errs = append(c.errs, err)
	}
	return err
}
