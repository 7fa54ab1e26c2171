package statemachine

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
)

const tracerName = "github.com/junbin-yang/go-fsmkit/pkg/statemachine"

// Engine 事件驱动的有限状态机。
//
// 状态是调用方定义的任意类型，事件同样是任意具体类型。状态通过 AddState 交给
// Engine 持有，通过 Subscribe 声明"处于状态 S 时如何响应事件 E"，之后只通过
// Dispatch 驱动：Dispatch 只会命中当前状态订阅的响应，响应内部可以调用
// TransitTo 切换当前状态。
//
// Engine 不是并发安全的，同一实例上的所有操作需要由调用方串行化。
type Engine struct {
	id        uuid.UUID
	name      string
	current   StateID
	initial   StateID
	states    map[StateID]any
	callbacks map[callbackKey][]reaction

	replaceStates bool
	hooks         []TransitionHook
	log           logger.Logger
	tracer        trace.Tracer
	metrics       *Metrics
}

// New 创建状态机
func New(opts ...Option) *Engine {
	e := &Engine{
		id:        uuid.New(),
		name:      "fsm",
		current:   NoState,
		initial:   NoState,
		states:    make(map[StateID]any),
		callbacks: make(map[callbackKey][]reaction),
		log:       logger.Default(),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID 返回实例标识
func (e *Engine) ID() uuid.UUID { return e.id }

// Name 返回状态机名称
func (e *Engine) Name() string { return e.name }

func (e *Engine) fields(fields ...logger.Field) []logger.Field {
	return append([]logger.Field{logger.String("fsm", e.name), logger.Stringer("fsm_id", e.id)}, fields...)
}

// AddState 添加状态实例 s，以类型 S 作为状态。
// s 为 nil 接口时返回 ErrNilState。
// 重复添加返回 ErrDuplicateState，除非启用了 WithStateReplacement；
// 替换后已有的订阅作用于新实例。
func AddState[S any](e *Engine, s S) error {
	id := StateIDOf[S]()
	if any(s) == nil {
		return fmt.Errorf("%w: %s", ErrNilState, id)
	}
	if _, exists := e.states[id]; exists && !e.replaceStates {
		e.log.Warn("duplicate state rejected", e.fields(logger.Stringer("state", id))...)
		return fmt.Errorf("%w: %s", ErrDuplicateState, id)
	}

	e.states[id] = s
	e.log.Debug("state added", e.fields(logger.Stringer("state", id), logger.Int("state_id", int(id)))...)
	return nil
}

// Subscribe 将 react 绑定到已添加的状态 S，使其在当前状态为 S 时响应事件 E。
// react 通常是方法表达式；同一 (E, S) 可以订阅多次，派发时按订阅顺序全部调用。
func Subscribe[S any, E any](e *Engine, react func(S, *Context, E)) error {
	sid := StateIDOf[S]()
	eid := EventIDOf[E]()

	if react == nil {
		return fmt.Errorf("%w: %s on %s", ErrNilReaction, eid, sid)
	}
	if reflect.TypeOf((*E)(nil)).Elem().Kind() == reflect.Interface {
		return fmt.Errorf("%w: %s", ErrInterfaceEvent, eid)
	}
	if _, ok := e.states[sid]; !ok {
		e.log.Warn("subscribe rejected", e.fields(logger.Stringer("state", sid), logger.Stringer("event", eid))...)
		return fmt.Errorf("%w: %s", ErrStateNotAdded, sid)
	}

	key := callbackKey{event: eid, state: sid}
	e.callbacks[key] = append(e.callbacks[key], func(c *Context, ev any) {
		react(e.states[sid].(S), c, ev.(E))
	})
	e.log.Debug("reaction subscribed", e.fields(
		logger.Stringer("state", sid),
		logger.Stringer("event", eid),
		logger.Int("reactions", len(e.callbacks[key])),
	)...)
	return nil
}

// SetCurrentState 设置当前状态，用于初始化；首次成功调用同时记录 Reset 的目标。
// 不触发转换观察者。
func SetCurrentState[S any](e *Engine) error {
	if err := e.transitTo(StateIDOf[S](), false); err != nil {
		return err
	}
	if e.initial == NoState {
		e.initial = e.current
	}
	return nil
}

// Transit 将当前状态切换为 S，S 必须已添加。响应内部应使用 TransitTo。
func Transit[S any](e *Engine) error {
	return e.transitTo(StateIDOf[S](), true)
}

func (e *Engine) transitTo(to StateID, notify bool) error {
	if _, ok := e.states[to]; !ok {
		e.metrics.observeFailure(e.name, to)
		e.log.Warn("transition to unknown state", e.fields(logger.Stringer("to", to))...)
		return fmt.Errorf("%w: %s", ErrStateNotFound, to)
	}

	from := e.current
	e.current = to
	if !notify {
		e.log.Debug("current state set", e.fields(logger.Stringer("state", to))...)
		return nil
	}

	e.metrics.observeTransition(e.name, from, to)
	e.log.Debug("transition", e.fields(logger.Stringer("from", from), logger.Stringer("to", to))...)
	for _, hook := range e.hooks {
		hook(from, to)
	}
	return nil
}

// Dispatch 将事件派发给当前状态对 ev 类型的全部响应，按订阅顺序同步执行后返回。
// 当前状态没有对应订阅时什么也不做并返回 nil。
// 响应内部 TransitTo 失败的错误会合并返回。
func (e *Engine) Dispatch(ctx context.Context, ev any) error {
	if ev == nil {
		return ErrNilEvent
	}
	if ctx == nil {
		ctx = context.Background()
	}

	eid := eventIDOfValue(ev)
	from := e.current

	ctx, span := e.tracer.Start(ctx, "fsm.dispatch", trace.WithAttributes(
		attribute.String("fsm.name", e.name),
		attribute.String("fsm.id", e.id.String()),
		attribute.String("fsm.event", eid.String()),
		attribute.String("fsm.state", from.String()),
	))
	defer span.End()

	// 先取出回调列表，响应中的转换只影响后续派发
	callbacks := e.callbacks[callbackKey{event: eid, state: from}]
	if len(callbacks) == 0 {
		e.metrics.observeDispatch(e.name, eid, from, false)
		span.SetAttributes(attribute.Bool("fsm.handled", false))
		e.log.Debug("event ignored", e.fields(logger.Stringer("event", eid), logger.Stringer("state", from))...)
		return nil
	}

	c := &Context{Context: ctx, engine: e, event: ev}
	for _, cb := range callbacks {
		cb(c, ev)
	}

	e.metrics.observeDispatch(e.name, eid, from, true)
	span.SetAttributes(
		attribute.Bool("fsm.handled", true),
		attribute.Int("fsm.reactions", len(callbacks)),
		attribute.String("fsm.state.after", e.current.String()),
	)
	e.log.Debug("event dispatched", e.fields(
		logger.Stringer("event", eid),
		logger.Stringer("from", from),
		logger.Stringer("to", e.current),
		logger.Int("reactions", len(callbacks)),
	)...)

	if len(c.errs) > 0 {
		err := errors.Join(c.errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Current 返回当前状态实例
func (e *Engine) Current() (any, error) {
	s, ok := e.states[e.current]
	if !ok {
		return nil, ErrNoCurrentState
	}
	return s, nil
}

// CurrentID 返回当前状态标识，未设置时 ok 为 false
func (e *Engine) CurrentID() (StateID, bool) {
	return e.current, e.current != NoState
}

// CurrentAs 以类型 S 返回当前状态实例，当前状态不是 S 时 ok 为 false
func CurrentAs[S any](e *Engine) (S, bool) {
	if e.current != StateIDOf[S]() {
		var zero S
		return zero, false
	}
	s, ok := e.states[e.current].(S)
	return s, ok
}

// Is 判断当前状态是否为 S
func Is[S any](e *Engine) bool {
	return e.current != NoState && e.current == StateIDOf[S]()
}

// HasState 判断状态 S 是否已添加
func HasState[S any](e *Engine) bool {
	_, ok := e.states[StateIDOf[S]()]
	return ok
}

// Can 检查当前状态是否订阅了 ev 类型的事件
func (e *Engine) Can(ev any) bool {
	if ev == nil {
		return false
	}
	id, ok := eventTypes.lookup(reflect.TypeOf(ev))
	if !ok {
		return false
	}
	return len(e.callbacks[callbackKey{event: EventID(id), state: e.current}]) > 0
}

// Reset 回到第一次 SetCurrentState 设置的状态，不触发转换观察者
func (e *Engine) Reset() error {
	if e.initial == NoState {
		return ErrNoCurrentState
	}
	e.current = e.initial
	e.log.Debug("reset", e.fields(logger.Stringer("state", e.current))...)
	return nil
}

// MustAddState 同 AddState，失败时 panic
func MustAddState[S any](e *Engine, s S) {
	if err := AddState(e, s); err != nil {
		panic(err)
	}
}

// MustSubscribe 同 Subscribe，失败时 panic
func MustSubscribe[S any, E any](e *Engine, react func(S, *Context, E)) {
	if err := Subscribe(e, react); err != nil {
		panic(err)
	}
}

// MustSetCurrentState 同 SetCurrentState，失败时 panic
func MustSetCurrentState[S any](e *Engine) {
	if err := SetCurrentState[S](e); err != nil {
		panic(err)
	}
}
