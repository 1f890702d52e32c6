package listener

import (
	"context"
	"net"
	"sort"
	"sync"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/reactor"
	"github.com/ikhovind/gotaps/security"
	"github.com/ikhovind/gotaps/socket"
)

// addresser is satisfied by every adapter whose bound address can be
// read back after Listen: the tcp, udp and quic adapters (not mock).
type addresser interface {
	Addr() net.Addr
}

// Callbacks is the Listener callback surface of spec.md §4.7.
type Callbacks struct {
	// ConnectionReceived fires once per accepted peer/stream, after the
	// Connection has already reached READY; the handler is the right
	// place to call conn.OnReceive and friends, since none are registered
	// yet when this fires.
	ConnectionReceived func(conn *connection.Connection)
	EstablishmentError func(err error)
	Stopped            func()
}

// Listener binds one protocol stack and spawns a Connection, sharing
// one socket.Manager, for every accepted peer or stream (spec.md §4.7).
type Listener struct {
	mu      sync.Mutex
	proto   adapter.Protocol
	mgr     *socket.Manager
	framed  bool
	cbs     Callbacks
	cancel  context.CancelFunc
	stopped bool
	react   *reactor.Reactor
}

// Listen resolves local, picks the single highest-ranked eligible
// adapter against sel (spec.md §4.7: "no racing on the listen path"),
// binds it, and begins accepting. sec is deep-copied so the caller's
// template may be mutated or released immediately after this call
// returns.
func Listen(ctx context.Context, local *endpoint.Local, sel *property.SelectionProperties, sec *security.Parameters, cbs Callbacks) (*Listener, error) {
	return listen(ctx, nil, local, sel, sec, cbs)
}

// ListenOnReactor is Listen, but every accepted Connection's callbacks —
// and this Listener's own ConnectionReceived/EstablishmentError/Stopped
// callbacks — run Submitted to r instead of inline, so a process sharing
// one Reactor across every Listener and Connection gets the single
// callback ordering spec.md §5 requires (package gotaps's Initialize is
// the intended caller).
func ListenOnReactor(ctx context.Context, r *reactor.Reactor, local *endpoint.Local, sel *property.SelectionProperties, sec *security.Parameters, cbs Callbacks) (*Listener, error) {
	return listen(ctx, r, local, sel, sec, cbs)
}

func listen(ctx context.Context, r *reactor.Reactor, local *endpoint.Local, sel *property.SelectionProperties, sec *security.Parameters, cbs Callbacks) (*Listener, error) {
	if sel == nil {
		sel = property.BuildSelectionProperties()
	}

	name, err := pickProtocol(sel)
	if err != nil {
		return nil, err
	}

	proto := adapter.New(name)
	if proto == nil {
		return nil, errors.New(errors.NoCandidate, nil)
	}

	framed := adapter.RequiresFraming(proto.Capabilities(), sel)

	lctx, cancel := context.WithCancel(ctx)
	l := &Listener{proto: proto, mgr: socket.NewManager(proto), framed: framed, cbs: cbs, cancel: cancel, react: r}

	if err := proto.Listen(lctx, local, sec.DeepCopy(), l.onAccept); err != nil {
		cancel()
		log.Warn("listener bind failed", log.Fields{"protocol": string(name), "error": err.Error()})
		if cbs.EstablishmentError != nil {
			l.runCallback(func() { cbs.EstablishmentError(err) })
		}
		return nil, err
	}

	log.Info("listener started", log.Fields{"protocol": string(name)})
	return l, nil
}

// runCallback executes fn inline, or Submitted to the shared reactor if
// this Listener was built with one (see connection.Connection.runCallback
// for the identical rationale).
func (l *Listener) runCallback(fn func()) {
	if l.react != nil {
		l.react.Submit(fn)
		return
	}
	fn()
}

// pickProtocol selects the single highest-ranked eligible adapter
// against sel, by the same REQUIRE/PROHIBIT-eligibility and
// PREFER-minus-AVOID scoring race.Gather uses for the establishment
// path — duplicated here rather than imported, since Gather also
// cross-products against a remote endpoint list the listen path has
// none of.
func pickProtocol(sel *property.SelectionProperties) (adapter.Name, error) {
	type ranked struct {
		name  adapter.Name
		score int
		order int
	}
	var eligible []ranked

	for i, name := range adapter.Registered() {
		proto := adapter.New(name)
		if proto == nil {
			continue
		}
		caps := proto.Capabilities()

		ok := true
		for _, pn := range property.Names() {
			pref := sel.Get(pn)
			if pref == property.Require || pref == property.Prohibit {
				if !caps.Satisfies(pn, pref) {
					ok = false
					break
				}
			}
		}
		if !ok {
			continue
		}

		score := 0
		for _, pn := range property.Names() {
			score += caps.Score(pn, sel.Get(pn))
		}
		eligible = append(eligible, ranked{name: name, score: score, order: i})
	}

	if len(eligible) == 0 {
		return "", errors.New(errors.NoCandidate, nil)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].score != eligible[j].score {
			return eligible[i].score > eligible[j].score
		}
		return eligible[i].order < eligible[j].order
	})

	return eligible[0].name, nil
}

// onAccept wraps one accepted Protocol as a Connection sharing mgr,
// bumping its reference count first (spec.md §4.7/§4.9: "connections +
// (listener ? 1 : 0)").
func (l *Listener) onAccept(proto adapter.Protocol) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		_ = proto.Abort()
		return
	}
	l.mgr.Acquire()
	framed := l.framed
	cbs := l.cbs
	react := l.react
	l.mu.Unlock()

	var conn *connection.Connection
	if react != nil {
		conn = connection.NewOnReactor(react, proto, l.mgr, connection.Callbacks{}, framed, true)
	} else {
		conn = connection.New(proto, l.mgr, connection.Callbacks{}, framed, true)
	}

	log.Debug("listener accepted connection", log.Fields{"uuid": conn.UUID().String()})
	if cbs.ConnectionReceived != nil {
		l.runCallback(func() { cbs.ConnectionReceived(conn) })
	}
}

// Addr returns the Listener's bound local address, or nil if the
// underlying adapter doesn't expose one.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	proto := l.proto
	l.mu.Unlock()

	a, ok := proto.(addresser)
	if !ok {
		return nil
	}
	return a.Addr()
}

// Stop cancels the accept loop and releases the Listener's own
// reference on the shared socket.Manager; live Connections already
// accepted are left running (spec.md §4.7: "does not forcibly close
// live Connections").
func (l *Listener) Stop() error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	cancel := l.cancel
	mgr := l.mgr
	cbs := l.cbs
	l.mu.Unlock()

	cancel()
	err := mgr.Release()

	log.Debug("listener stopped", log.Fields{})
	if cbs.Stopped != nil {
		l.runCallback(cbs.Stopped)
	}
	return err
}
