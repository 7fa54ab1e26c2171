package statemachine_test

import (
	"context"
	"fmt"

	"github.com/junbin-yang/go-fsmkit/pkg/logger"
	"github.com/junbin-yang/go-fsmkit/pkg/statemachine"
)

type OpenDoor struct{}
type CloseDoor struct{}
type LockDoor struct{}
type UnlockDoor struct{ Key string }

type Closed struct{}
type Opened struct{}
type Locked struct{ key string }

func (Closed) OnOpen(c *statemachine.Context, _ OpenDoor) {
	_ = statemachine.TransitTo[Opened](c)
	fmt.Println("door is open")
}

func (Closed) OnLock(c *statemachine.Context, _ LockDoor) {
	_ = statemachine.TransitTo[*Locked](c)
	fmt.Println("door is locked")
}

func (Opened) OnClose(c *statemachine.Context, _ CloseDoor) {
	_ = statemachine.TransitTo[Closed](c)
	fmt.Println("door is closed")
}

func (*Locked) OnOpen(_ *statemachine.Context, _ OpenDoor) {
	fmt.Println("can't open, locked")
}

func (l *Locked) OnUnlock(c *statemachine.Context, ev UnlockDoor) {
	if ev.Key != l.key {
		fmt.Println("key does not fit")
		return
	}
	_ = statemachine.TransitTo[Closed](c)
	fmt.Println("door is unlocked")
}

func Example() {
	fsm := statemachine.New(statemachine.WithName("door"), statemachine.WithLogger(logger.Nop()))

	statemachine.MustAddState(fsm, Closed{})
	statemachine.MustAddState(fsm, Opened{})
	statemachine.MustAddState(fsm, &Locked{key: "correct_key"})
	statemachine.MustSetCurrentState[Closed](fsm)

	statemachine.MustSubscribe(fsm, Closed.OnOpen)
	statemachine.MustSubscribe(fsm, Opened.OnClose)
	statemachine.MustSubscribe(fsm, Closed.OnLock)
	statemachine.MustSubscribe(fsm, (*Locked).OnUnlock)
	statemachine.MustSubscribe(fsm, (*Locked).OnOpen)

	ctx := context.Background()
	for _, ev := range []any{
		OpenDoor{},
		CloseDoor{},
		LockDoor{},
		OpenDoor{},
		UnlockDoor{Key: "wrong_key"},
		UnlockDoor{Key: "correct_key"},
		OpenDoor{},
	} {
		if err := fsm.Dispatch(ctx, ev); err != nil {
			fmt.Println("error:", err)
		}
	}

	fmt.Println("open:", statemachine.Is[Opened](fsm))
	// Output:
	// door is open
	// door is closed
	// door is locked
	// can't open, locked
	// key does not fit
	// door is unlocked
	// door is open
	// open: true
}

func ExampleEngine_Can() {
	fsm := statemachine.New(statemachine.WithLogger(logger.Nop()))
	statemachine.MustAddState(fsm, Closed{})
	statemachine.MustAddState(fsm, Opened{})
	statemachine.MustSetCurrentState[Closed](fsm)
	statemachine.MustSubscribe(fsm, Closed.OnOpen)

	fmt.Println(fsm.Can(OpenDoor{}), fsm.Can(CloseDoor{}))
	// Output: true false
}
