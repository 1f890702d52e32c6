package socket

import (
	"sync"

	"github.com/ikhovind/gotaps/adapter"
)

// Manager ref-counts one adapter.Protocol handle shared between a
// Listener and every Connection multiplexed over it (one quic.Connection
// underlying N stream Connections, or one demultiplexed UDP socket
// underlying N peer Connections — spec.md §4.7). The handle's Close only
// reaches the real adapter.Protocol.Close once every holder has released
// its reference.
type Manager struct {
	mu    sync.Mutex
	proto adapter.Protocol
	refs  int
}

// NewManager wraps proto with an initial reference count of one, held by
// the caller (typically the Listener that owns proto).
func NewManager(proto adapter.Protocol) *Manager {
	return &Manager{proto: proto, refs: 1}
}

// Protocol returns the shared adapter.Protocol handle.
func (m *Manager) Protocol() adapter.Protocol {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proto
}

// Acquire increments the reference count, for a newly accepted
// Connection that will share this handle.
func (m *Manager) Acquire() {
	m.mu.Lock()
	m.refs++
	m.mu.Unlock()
}

// Release decrements the reference count and, once it reaches zero,
// closes the underlying adapter.Protocol. Safe to call more times than
// Acquire plus the initial reference — extra calls are no-ops.
func (m *Manager) Release() error {
	m.mu.Lock()
	if m.refs <= 0 {
		m.mu.Unlock()
		return nil
	}
	m.refs--
	closeNow := m.refs == 0
	proto := m.proto
	m.mu.Unlock()

	if closeNow {
		return proto.Close()
	}
	return nil
}

// RefCount reports the current reference count, for tests and metrics.
func (m *Manager) RefCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}
