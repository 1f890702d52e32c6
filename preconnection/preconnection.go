package preconnection

import (
	"context"
	"sync"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/listener"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/race"
	"github.com/ikhovind/gotaps/reactor"
	"github.com/ikhovind/gotaps/security"
	"github.com/ikhovind/gotaps/socket"
)

// Preconnection aggregates remote endpoint(s), a local endpoint
// template, selection properties and security parameters, deep-copying
// every input on construction so the caller's copies may be mutated or
// released immediately afterward (spec.md §3/§8: "deep-copy
// isolation").
type Preconnection struct {
	remotes []*endpoint.Remote
	local   *endpoint.Local
	sel     *property.SelectionProperties
	sec     *security.Parameters

	// react, when set via SetReactor, is passed down to every Connection
	// and Listener this Preconnection creates, so their callbacks share
	// one serialized ordering (spec.md §5). Package gotaps's Initialize
	// is the intended caller of SetReactor.
	react *reactor.Reactor
}

// SetReactor arranges for every Connection/Listener this Preconnection
// subsequently creates to run its callbacks on r instead of inline.
func (p *Preconnection) SetReactor(r *reactor.Reactor) {
	p.react = r
}

// New builds a Preconnection with no local endpoint template; Listen on
// it binds the wildcard addresses on an OS-assigned port.
func New(remotes []*endpoint.Remote, sel *property.SelectionProperties, sec *security.Parameters) *Preconnection {
	return NewWithLocal(remotes, sel, sec, nil)
}

// NewWithLocal additionally deep-copies a local endpoint template, used
// as Listen's bind target. Initiate does not use it: candidates are
// established without a local endpoint.
func NewWithLocal(remotes []*endpoint.Remote, sel *property.SelectionProperties, sec *security.Parameters, local *endpoint.Local) *Preconnection {
	cp := make([]*endpoint.Remote, len(remotes))
	for i, r := range remotes {
		cp[i] = r.DeepCopy()
	}
	if sel == nil {
		sel = property.BuildSelectionProperties()
	}
	return &Preconnection{
		remotes: cp,
		local:   local.DeepCopy(),
		sel:     sel.DeepCopy(),
		sec:     sec.DeepCopy(),
	}
}

// Initiate resolves every remote endpoint, gathers and races candidates
// per spec.md §4.3/§4.4, and wraps the winner as a Connection whose own
// socket.Manager it owns outright (refcount one, released on Close).
// cbs is wired at construction since the caller already knows its
// handlers before a client-initiated Connection does anything
// observable — unlike the Listener accept path, which registers them
// after connection_received.
func (p *Preconnection) Initiate(ctx context.Context, cbs connection.Callbacks) (*connection.Connection, error) {
	resolved, err := p.resolveRemotes(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := race.Gather(p.sel, resolved)
	if err != nil {
		return nil, err
	}

	engine := race.NewEngine()
	winner, err := engine.Initiate(ctx, candidates, p.sec)
	if err != nil {
		log.Warn("preconnection initiate failed", log.Fields{"error": err.Error()})
		return nil, err
	}
	defer engine.Close()

	framed := adapter.RequiresFraming(winner.Protocol.Capabilities(), p.sel)
	mgr := socket.NewManager(winner.Protocol)
	var conn *connection.Connection
	if p.react != nil {
		conn = connection.NewOnReactor(p.react, winner.Protocol, mgr, cbs, framed, true)
	} else {
		conn = connection.New(winner.Protocol, mgr, cbs, framed, true)
	}

	log.Info("connection established", log.Fields{
		"uuid":     conn.UUID().String(),
		"protocol": string(winner.Candidate.Protocol),
	})
	return conn, nil
}

// Listen binds p's local endpoint and begins accepting per spec.md
// §4.7, delegating to package listener.
func (p *Preconnection) Listen(ctx context.Context, cbs listener.Callbacks) (*listener.Listener, error) {
	if p.react != nil {
		return listener.ListenOnReactor(ctx, p.react, p.local, p.sel, p.sec, cbs)
	}
	return listener.Listen(ctx, p.local, p.sel, p.sec, cbs)
}

func (p *Preconnection) resolveRemotes(ctx context.Context) ([]endpoint.Resolved, error) {
	if len(p.remotes) == 0 {
		return nil, errors.New(errors.InvalidArgument, nil)
	}

	var (
		mu      sync.Mutex
		all     []endpoint.Resolved
		lastErr error
	)
	var wg sync.WaitGroup
	for _, r := range p.remotes {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := endpoint.ResolveRemote(ctx, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			all = append(all, res...)
		}()
	}
	wg.Wait()

	if len(all) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errors.New(errors.DNSError, nil)
	}
	return all, nil
}
