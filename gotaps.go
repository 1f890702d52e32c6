package gotaps

import (
	"sync"

	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/preconnection"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/reactor"
	"github.com/ikhovind/gotaps/security"

	_ "github.com/ikhovind/gotaps/adapter/udp"

	_ "github.com/ikhovind/gotaps/adapter/tcp"

	_ "github.com/ikhovind/gotaps/adapter/quic"
)

// Option configures Initialize.
type Option func(*config)

type config struct {
	logLevel log.Level
	logFile  string
}

// WithLogLevel sets the minimum level the package logger emits at,
// equivalent to calling SetLogLevel right after Initialize.
func WithLogLevel(l log.Level) Option {
	return func(c *config) { c.logLevel = l }
}

// WithLogFile adds an append-mode log file at min level. Unlike calling
// AddLogFile after Initialize, it also sets the package logger's minimum
// level to min, overriding any WithLogLevel given earlier.
func WithLogFile(path string, min log.Level) Option {
	return func(c *config) { c.logFile, c.logLevel = path, min }
}

var (
	mu          sync.Mutex
	react       *reactor.Reactor
	initialized bool
)

// Initialize applies opts to the package logger and starts the shared
// reactor every Preconnection this package constructs will use. The UDP,
// TCP and QUIC adapters are registered by this package's blank imports
// when it is loaded, not by Initialize. Calling Initialize twice without
// an intervening CloseLibrary is an error.
func Initialize(opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return errors.New(errors.InvalidArgument, nil)
	}

	cfg := &config{logLevel: log.InfoLevel}
	for _, o := range opts {
		o(cfg)
	}

	log.SetLevel(cfg.logLevel)
	if cfg.logFile != "" {
		if err := log.AddFile(cfg.logFile, cfg.logLevel); err != nil {
			return err
		}
	}

	react = reactor.New()
	initialized = true
	log.Info("gotaps initialized", nil)
	return nil
}

// StartEventLoop exists for API parity with spec.md §6's
// start_event_loop: the reactor's worker goroutine is already running
// once Initialize returns, so this is a no-op kept for callers ported
// from an implementation where starting the loop is a distinct step.
func StartEventLoop() {}

// CloseLibrary stops the shared reactor, draining any work already
// queued, and allows a later Initialize call. Connections and Listeners
// already created keep running, but callbacks they Submit after the
// reactor stops are dropped, not run (reactor.Submit after Stop is a
// no-op).
func CloseLibrary() error {
	mu.Lock()
	defer mu.Unlock()

	if !initialized {
		return nil
	}
	react.Stop()
	react = nil
	initialized = false
	log.Info("gotaps closed", nil)
	return nil
}

// SetLogLevel adjusts the package logger's minimum level at any time.
func SetLogLevel(l log.Level) {
	log.SetLevel(l)
}

// AddLogFile adds an append-mode log file sink at min level.
func AddLogFile(path string, min log.Level) error {
	return log.AddFile(path, min)
}

func sharedReactor() *reactor.Reactor {
	mu.Lock()
	defer mu.Unlock()
	return react
}

// NewPreconnection builds a Preconnection the way preconnection.New
// does, additionally wiring it to the shared reactor started by
// Initialize (if any), so every Connection/Listener it creates shares
// this process's single callback ordering (spec.md §5).
func NewPreconnection(remotes []*endpoint.Remote, sel *property.SelectionProperties, sec *security.Parameters) *preconnection.Preconnection {
	p := preconnection.New(remotes, sel, sec)
	if r := sharedReactor(); r != nil {
		p.SetReactor(r)
	}
	return p
}

// NewPreconnectionWithLocal is NewPreconnection plus a local endpoint
// template, which Listen binds to.
func NewPreconnectionWithLocal(remotes []*endpoint.Remote, sel *property.SelectionProperties, sec *security.Parameters, local *endpoint.Local) *preconnection.Preconnection {
	p := preconnection.NewWithLocal(remotes, sel, sec, local)
	if r := sharedReactor(); r != nil {
		p.SetReactor(r)
	}
	return p
}
