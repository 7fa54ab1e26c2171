package statemachine

import "fmt"

var (
	// ErrStateNotFound 转换目标状态未添加到状态机
	ErrStateNotFound = fmt.Errorf("state not found")

	// ErrStateNotAdded 订阅时状态尚未添加
	ErrStateNotAdded = fmt.Errorf("subscribe before add state")

	// ErrDuplicateState 重复添加同一状态类型
	ErrDuplicateState = fmt.Errorf("duplicate state")

	// ErrNoCurrentState 当前状态尚未设置
	ErrNoCurrentState = fmt.Errorf("no current state")

	// ErrNilEvent 派发了 nil 事件
	ErrNilEvent = fmt.Errorf("nil event")

	// ErrNilState 添加的状态实例为 nil
	ErrNilState = fmt.Errorf("nil state")

	// ErrNilReaction 订阅的响应函数为 nil
	ErrNilReaction = fmt.Errorf("nil reaction")
)

// ErrInterfaceEvent 事件类型必须是具体类型，接口类型永远不会被派发命中
var ErrInterfaceEvent = fmt.Errorf("event type must be concrete")
