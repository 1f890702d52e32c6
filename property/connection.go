package property

// ConnState is the STATE connection property (spec.md §3): the externally
// observable lifecycle stage. It is kept in lockstep with (but is not the
// same type as) connection.State, which additionally distinguishes
// ERRORED internally.
type ConnState int

const (
	Establishing ConnState = iota
	Ready
	Closing
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Establishing:
		return "ESTABLISHING"
	case Ready:
		return "READY"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectionProperties is the scalar, per-connection property bag
// (spec.md §3). STATE is the one name spec.md calls out explicitly;
// connPriority and connTimeout are carried as RFC 9622-named scalars a
// complete implementation exposes alongside it.
type ConnectionProperties struct {
	state       ConnState
	connPriority int
	connTimeout  uint64 // seconds, 0 = no timeout
}

const defaultConnPriority = 100

// BuildConnectionProperties returns a new table holding its defaults
// (ct_connection_properties_build).
func BuildConnectionProperties() *ConnectionProperties {
	return &ConnectionProperties{state: Establishing, connPriority: defaultConnPriority}
}

func (c *ConnectionProperties) State() ConnState { return c.state }

// SetState is called only by the connection state machine, never by user
// code directly (spec.md §3: "mutated only on the event-loop thread").
func (c *ConnectionProperties) SetState(s ConnState) { c.state = s }

func (c *ConnectionProperties) ConnPriority() int        { return c.connPriority }
func (c *ConnectionProperties) SetConnPriority(p int)    { c.connPriority = p }
func (c *ConnectionProperties) ConnTimeout() uint64      { return c.connTimeout }
func (c *ConnectionProperties) SetConnTimeout(sec uint64) { c.connTimeout = sec }

// DeepCopy duplicates c into a new table.
func (c *ConnectionProperties) DeepCopy() *ConnectionProperties {
	if c == nil {
		return BuildConnectionProperties()
	}
	cp := *c
	return &cp
}
