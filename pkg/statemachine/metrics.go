package statemachine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 状态机的 prometheus 指标，可被多个状态机共享（以 machine 标签区分）
type Metrics struct {
	dispatched  *prometheus.CounterVec
	unhandled   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewMetrics 创建并注册指标，reg 为 nil 时使用 prometheus.DefaultRegisterer。
// 同名指标已注册时复用已有的 collector。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsm",
			Name:      "events_dispatched_total",
			Help:      "Events delivered to at least one reaction.",
		}, []string{"machine", "event", "state"}),
		unhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsm",
			Name:      "events_unhandled_total",
			Help:      "Events dispatched while the current state had no reaction for them.",
		}, []string{"machine", "event", "state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsm",
			Name:      "transitions_total",
			Help:      "State transitions performed.",
		}, []string{"machine", "from", "to"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fsm",
			Name:      "transition_failures_total",
			Help:      "Transitions rejected because the target state was never added.",
		}, []string{"machine", "to"}),
	}

	var err error
	if m.dispatched, err = register(reg, m.dispatched); err != nil {
		return nil, err
	}
	if m.unhandled, err = register(reg, m.unhandled); err != nil {
		return nil, err
	}
	if m.transitions, err = register(reg, m.transitions); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) observeDispatch(machine string, event EventID, state StateID, handled bool) {
	if m == nil {
		return
	}
	if handled {
		m.dispatched.WithLabelValues(machine, event.String(), state.String()).Inc()
	} else {
		m.unhandled.WithLabelValues(machine, event.String(), state.String()).Inc()
	}
}

func (m *Metrics) observeTransition(machine string, from, to StateID) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(machine, from.String(), to.String()).Inc()
}

func (m *Metrics) observeFailure(machine string, to StateID) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(machine, to.String()).Inc()
}
