package statemachine

import (
	"reflect"
	"sync"
)

// StateID 状态类型的标识，按首次注册顺序从 0 递增分配
type StateID int

// EventID 事件类型的标识，与 StateID 使用独立的计数器
type EventID int

// NoState 尚未设置当前状态时的占位值
const NoState StateID = -1

func (id StateID) String() string {
	if id == NoState {
		return "none"
	}
	return StateName(id)
}
func (id EventID) String() string { return EventName(id) }

// typeRegistry 进程级的类型 -> 序号映射，序号只增不减、永不复用
type typeRegistry struct {
	mu    sync.RWMutex
	ids   map[reflect.Type]int
	names []string
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{ids: make(map[reflect.Type]int)}
}

func (r *typeRegistry) idOf(t reflect.Type) int {
	r.mu.RLock()
	id, ok := r.ids[t]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok = r.ids[t]; ok {
		return id
	}
	id = len(r.names)
	r.ids[t] = id
	r.names = append(r.names, t.String())
	return id
}

func (r *typeRegistry) lookup(t reflect.Type) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[t]
	return id, ok
}

func (r *typeRegistry) name(id int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.names) {
		return "unknown"
	}
	return r.names[id]
}

var (
	stateTypes = newTypeRegistry()
	eventTypes = newTypeRegistry()
)

// StateIDOf 返回状态类型 S 的标识，首次调用时分配
func StateIDOf[S any]() StateID {
	return StateID(stateTypes.idOf(reflect.TypeOf((*S)(nil)).Elem()))
}

// EventIDOf 返回事件类型 E 的标识，首次调用时分配
func EventIDOf[E any]() EventID {
	return EventID(eventTypes.idOf(reflect.TypeOf((*E)(nil)).Elem()))
}

// RegisterState 显式注册状态类型，可在 init 中调用以固定分配顺序
func RegisterState[S any]() StateID { return StateIDOf[S]() }

// RegisterEvent 显式注册事件类型
func RegisterEvent[E any]() EventID { return EventIDOf[E]() }

// eventIDOfValue 按事件值的动态类型取标识
func eventIDOfValue(ev any) EventID {
	return EventID(eventTypes.idOf(reflect.TypeOf(ev)))
}

// StateName 返回状态标识对应的类型名
func StateName(id StateID) string { return stateTypes.name(int(id)) }

// EventName 返回事件标识对应的类型名
func EventName(id EventID) string { return eventTypes.name(int(id)) }
