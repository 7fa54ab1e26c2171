package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type idStateA struct{}
type idStateB struct{}
type idStateC struct{ payload string }
type idEventA struct{}
type idEventB struct{ n int }

func TestIdentity_StableAndDistinct(t *testing.T) {
	a := StateIDOf[idStateA]()
	b := StateIDOf[*idStateB]()
	c := StateIDOf[idStateC]()

	assert.Equal(t, a, StateIDOf[idStateA](), "重复查询应得到相同标识")
	assert.Equal(t, b, StateIDOf[*idStateB]())
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, a, c)

	// 指针类型与值类型是不同的类型
	assert.NotEqual(t, b, StateIDOf[idStateB]())
}

func TestIdentity_AssignmentOrder(t *testing.T) {
	type orderFirst struct{}
	type orderSecond struct{}
	type orderThird struct{}

	first := RegisterState[orderFirst]()
	second := RegisterState[orderSecond]()
	third := StateIDOf[orderThird]()

	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
	assert.GreaterOrEqual(t, int(first), 0)
}

func TestIdentity_IndependentCounters(t *testing.T) {
	type sharedName struct{}

	ev1 := RegisterEvent[idEventA]()
	ev2 := EventIDOf[idEventB]()
	assert.NotEqual(t, ev1, ev2)
	assert.Equal(t, ev1, EventIDOf[idEventA]())

	// 同一个类型在两个注册表中各自分配
	sid := StateIDOf[sharedName]()
	eid := EventIDOf[sharedName]()
	assert.Equal(t, StateName(sid), EventName(eid))
}

func TestIdentity_ValueMatchesStaticType(t *testing.T) {
	assert.Equal(t, EventIDOf[idEventB](), eventIDOfValue(idEventB{n: 3}))
	assert.Equal(t, EventIDOf[*idEventB](), eventIDOfValue(&idEventB{}))

	var ev any = idEventA{}
	assert.Equal(t, EventIDOf[idEventA](), eventIDOfValue(ev))
}

func TestIdentity_Names(t *testing.T) {
	id := StateIDOf[idStateC]()
	assert.Equal(t, "statemachine.idStateC", StateName(id))
	assert.Equal(t, "statemachine.idStateC", id.String())
	assert.Equal(t, "*statemachine.idEventB", EventName(EventIDOf[*idEventB]()))

	assert.Equal(t, "none", NoState.String())
	assert.Equal(t, "unknown", StateName(StateID(1<<20)))
	assert.Equal(t, "unknown", EventName(EventID(-5)))
}

func TestIdentity_ManyTypes(t *testing.T) {
	type t0 struct{}
	type t1 struct{}
	type t2 struct{}
	type t3 struct{}
	type t4 struct{}

	ids := []StateID{StateIDOf[t3](), StateIDOf[t1](), StateIDOf[t4](), StateIDOf[t0](), StateIDOf[t2]()}
	seen := make(map[StateID]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "标识重复: %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, ids[0], StateIDOf[t3]())
	assert.Equal(t, ids[4], StateIDOf[t2]())
}
