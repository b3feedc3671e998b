// Package datastore tracks the readiness of the shared document datastore
// connection that lead requests depend on.
package datastore

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nirvista/leadcapture/pkg/logging"
)

// State mirrors the lifecycle of a long-lived datastore connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateConnecting
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateConnecting:
		return "connecting"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

// Pinger verifies the datastore is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Monitor holds the connection state. Requests only read it; the probe loop
// started by Run is the single writer besides Close.
type Monitor struct {
	name     string
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logging.Logger
	onChange func(State)

	state atomic.Int32
}

// NewMonitor builds a monitor in the connecting state.
func NewMonitor(name string, pinger Pinger, interval, timeout time.Duration, logger *logging.Logger) *Monitor {
	if pinger == nil {
		panic("datastore: pinger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	m := &Monitor{
		name:     name,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
	m.state.Store(int32(StateConnecting))
	return m
}

// OnChange registers fn to be called on every state transition observed by
// Check. It must be set before Run starts.
func (m *Monitor) OnChange(fn func(State)) {
	m.onChange = fn
}

// State returns the last observed connection state.
func (m *Monitor) State() State {
	if m == nil {
		return StateDisconnected
	}
	return State(m.state.Load())
}

// Ready reports whether the connection is usable for writes.
func (m *Monitor) Ready() bool {
	return m.State() == StateConnected
}

// Check pings once and records the outcome.
func (m *Monitor) Check(ctx context.Context) State {
	if m.State() == StateDisconnecting {
		return StateDisconnecting
	}
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	next := StateConnected
	err := m.pinger.Ping(pingCtx)
	if err != nil {
		next = StateDisconnected
	}
	prev := m.State()
	for {
		if prev == StateDisconnecting {
			return prev
		}
		if m.state.CompareAndSwap(int32(prev), int32(next)) {
			break
		}
		prev = m.State()
	}
	if prev != next {
		if m.onChange != nil {
			m.onChange(next)
		}
		if err != nil {
			m.logger.Error("datastore connection lost", "store", m.name, "state", next.String(), "error", err)
		} else {
			m.logger.Info("datastore connected", "store", m.name)
		}
	}
	return next
}

// Run probes until ctx is cancelled. The first probe happens immediately.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Close marks the connection as going away so new requests are refused.
func (m *Monitor) Close() {
	m.state.Store(int32(StateDisconnecting))
}
