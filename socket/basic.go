package socket

import (
	"errors"
	"net"
)

// DefaultBufferSize is the default read buffer size used when a Receive
// request does not name an explicit MaxBytes.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator used by framed text protocols built atop a
// byte-stream socket.
const EOL = byte('\n')

// Phase names the stage a socket handle is passing through, for log
// correlation around Dial/accept/read/write/close sequencing.
type Phase uint8

const (
	PhaseDial Phase = iota
	PhaseNew
	PhaseRead
	PhaseCloseRead
	PhaseHandler
	PhaseWrite
	PhaseCloseWrite
	PhaseClose
)

func (p Phase) String() string {
	switch p {
	case PhaseDial:
		return "Dial Connection"
	case PhaseNew:
		return "New Connection"
	case PhaseRead:
		return "Read Incoming Stream"
	case PhaseCloseRead:
		return "Close Incoming Stream"
	case PhaseHandler:
		return "Run HandlerFunc"
	case PhaseWrite:
		return "Write Outgoing Steam"
	case PhaseCloseWrite:
		return "Close Outgoing Stream"
	case PhaseClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

// ErrorFilter drops errors that are just net.ErrClosed surfacing from a
// deliberate Close, so callers don't log or propagate noise from their
// own shutdown path: anything that wraps net.ErrClosed (including a
// *net.OpError with address context) and an error whose text is exactly
// the bare closed-connection message. An unwrapped error whose text adds
// context to that message passes through unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	if err.Error() == "use of closed network connection" {
		return nil
	}
	return err
}
