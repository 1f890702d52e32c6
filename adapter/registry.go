package adapter

import "sync"

// Factory constructs a fresh Protocol instance for one candidate or one
// accepted peer; adapters are stateful per-association, so the registry
// holds factories, not shared instances.
type Factory func() Protocol

var (
	mu       sync.Mutex
	order    []Name
	registry = map[Name]Factory{}
)

// Register appends name to the registry in call order. gotaps registers
// UDP, then TCP, then QUIC at init time (spec.md §4.3: "UDP → TCP → QUIC
// in the reference registration"), which also fixes the tie-break order
// used when ranking scores equally.
func Register(name Name, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; !exists {
		order = append(order, name)
	}
	registry[name] = f
}

// Registered returns every registered adapter name, in registration
// order.
func Registered() []Name {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Name, len(order))
	copy(out, order)
	return out
}

// New constructs a fresh Protocol instance for name, or nil if name was
// never registered.
func New(name Name) Protocol {
	mu.Lock()
	f, ok := registry[name]
	mu.Unlock()
	if !ok {
		return nil
	}
	return f()
}
