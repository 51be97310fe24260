package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/cruciblehq/echod/internal/message"
	"github.com/eapache/queue"
)

const (

	// Default TCP address to bind.
	DefaultAddress = "localhost:8080"

	// Default maximum number of concurrent connections.
	DefaultMaxClients = 100

	// Default size of the per-connection read buffer. Sized for the common
	// case; it is not a protocol limit.
	DefaultBufferSize = 512

	// Default number of consecutive malformed messages tolerated before a
	// connection is dropped.
	DefaultMaxMalformed = 3

	// Default interval at which the accept loop checks the running flag.
	DefaultPollInterval = 10 * time.Millisecond

	// Upper bound on the time spent writing the capacity notice to a refused
	// connection.
	rejectTimeout = 100 * time.Millisecond
)

// Lifecycle states. Transitions only move forward.
const (
	stateIdle int32 = iota
	stateRunning
	stateDraining
	stateStopped
)

// Holds server configuration.
type Config struct {
	Address      string        // TCP address to bind. Empty uses [DefaultAddress].
	MaxClients   int           // Concurrent connection limit. Zero refuses every connection.
	BufferSize   int           // Read buffer size per connection. Zero or less uses [DefaultBufferSize].
	MaxMalformed int           // Malformed messages tolerated in a row. Zero drops a client on its first one.
	PollInterval time.Duration // Accept poll interval. Zero or less uses [DefaultPollInterval].
	ReusePort    bool          // Set SO_REUSEPORT on the listening socket.
}

func (c Config) withDefaults() Config {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Rejects limits that cannot be meaningful.
func (c Config) validate() error {
	if c.MaxClients < 0 {
		return fmt.Errorf("%w: max clients %d", ErrInvalidConfig, c.MaxClients)
	}
	if c.MaxMalformed < 0 {
		return fmt.Errorf("%w: max malformed %d", ErrInvalidConfig, c.MaxMalformed)
	}
	return nil
}

// Snapshot of server counters.
type Stats struct {
	Active   int64 // Admitted connections whose handler is still running.
	Spawned  int64 // Handler tasks started.
	Joined   int64 // Handler tasks joined by the accept loop.
	Rejected int64 // Connections refused at capacity.
}

// A spawned connection handler. done is closed when the handler returns.
type task struct {
	addr string
	done chan struct{}
}

// Accepts TCP connections and answers echo and add requests, one handler
// goroutine per connection, up to a fixed number of concurrent connections.
type Server struct {
	cfg      Config
	listener *net.TCPListener
	gate     *gate
	state    atomic.Int32
	ctx      context.Context    // Cancelled by Stop to unblock handler reads.
	cancel   context.CancelFunc // Cancels ctx.
	tasks    *queue.Queue       // Handler tasks in spawn order. Owned by the Run goroutine.
	spawned  atomic.Int64
	joined   atomic.Int64
	rejected atomic.Int64
}

// Creates a server bound to the configured address.
//
// MaxClients and MaxMalformed are used as given, so callers wanting the
// defaults must pass [DefaultMaxClients] and [DefaultMaxMalformed]. Negative
// limits are rejected. Binding happens here, so an unusable address is reported before [Run]
// is called.
func New(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	listener, err := listen(cfg.Address, cfg.ReusePort)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrBind, cfg.Address, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:      cfg,
		listener: listener,
		gate:     newGate(cfg.MaxClients),
		ctx:      ctx,
		cancel:   cancel,
		tasks:    queue.New(),
	}, nil
}

// Address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Whether the server is accepting connections.
func (s *Server) Running() bool {
	return s.state.Load() == stateRunning
}

// Returns current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Active:   s.gate.count(),
		Spawned:  s.spawned.Load(),
		Joined:   s.joined.Load(),
		Rejected: s.rejected.Load(),
	}
}

// Accepts connections until [Stop] is called.
//
// Blocks until every connection handler has returned. A server runs at most
// once; later calls return [ErrServerClosed].
func (s *Server) Run() error {
	if !s.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrServerClosed
	}
	defer s.listener.Close()

	slog.Info("server is running",
		"address", s.Addr().String(),
		"max_clients", s.cfg.MaxClients,
	)

	var err error
	for s.Running() {
		if err = s.accept(); err != nil {
			s.state.CompareAndSwap(stateRunning, stateDraining)
			s.cancel()
			break
		}
		s.reap()
	}

	s.drain()
	s.state.Store(stateStopped)

	slog.Info("server stopped")
	return err
}

// Signals the server to stop.
//
// Returns immediately; [Run] returns once all handlers have finished.
// Handlers blocked on a read are interrupted. Calling Stop on a server that
// is not running only logs a warning. A server stopped before it ran never
// starts.
func (s *Server) Stop() {
	if s.state.CompareAndSwap(stateRunning, stateDraining) {
		s.cancel()
		slog.Info("shutdown signal sent")
		return
	}

	if s.state.CompareAndSwap(stateIdle, stateStopped) {
		s.cancel()
		s.listener.Close()
	}

	slog.Warn("server was already stopped or not running")
}

// Waits up to one poll interval for a connection and hands it off.
//
// Accept timeouts are the normal idle path. Other accept errors are logged
// and polling continues; only a failure to arm the deadline is returned.
func (s *Server) accept() error {
	if err := s.listener.SetDeadline(time.Now().Add(s.cfg.PollInterval)); err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}

	nc, err := s.listener.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		if errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("%w: %w", ErrServer, err)
		}
		slog.Error("error accepting connection", "error", err)
		time.Sleep(s.cfg.PollInterval)
		return nil
	}

	s.admit(nc)
	return nil
}

// Applies the capacity limit to a new connection and spawns its handler.
func (s *Server) admit(nc net.Conn) {
	addr := nc.RemoteAddr().String()

	if !s.gate.tryAdmit() {
		s.rejected.Add(1)
		slog.Warn("connection refused, max clients reached",
			"client", addr,
			"max_clients", s.cfg.MaxClients,
		)
		reject(nc)
		return
	}

	slog.Info("new client connected", "client", addr)

	t := &task{addr: addr, done: make(chan struct{})}
	s.tasks.Add(t)
	s.spawned.Add(1)

	go s.handle(t, nc)
}

// Runs the handler for one connection and releases its slot.
func (s *Server) handle(t *task, nc net.Conn) {
	interrupt := context.AfterFunc(s.ctx, func() {
		nc.SetDeadline(time.Now())
	})

	defer func() {
		if r := recover(); r != nil {
			slog.Error("client handler panicked", "client", t.addr, "panic", r)
		}
		interrupt()
		nc.Close()
		s.gate.release()
		slog.Debug("client handler exiting", "client", t.addr)
		close(t.done)
	}()

	c := newConn(nc, s.cfg.BufferSize, s.cfg.MaxMalformed)
	if err := c.serve(s.Running); err != nil {
		slog.Error("error handling client", "client", t.addr, "error", err)
	}
}

// Joins every finished task so that a long-running server only keeps
// handles for live connections. Unfinished tasks keep their relative order.
func (s *Server) reap() {
	for range s.tasks.Length() {
		t := s.tasks.Remove().(*task)
		select {
		case <-t.done:
			s.joined.Add(1)
		default:
			s.tasks.Add(t)
		}
	}
}

// Joins every remaining task.
func (s *Server) drain() {
	slog.Info("cleaning up client tasks", "count", s.tasks.Length())

	for s.tasks.Length() > 0 {
		t := s.tasks.Remove().(*task)
		<-t.done
		s.joined.Add(1)
	}
}

// Writes the capacity notice, ignoring failures, and closes the connection.
func reject(nc net.Conn) {
	nc.SetWriteDeadline(time.Now().Add(rejectTimeout))
	nc.Write([]byte(message.CapacityNotice))
	nc.Close()
}
