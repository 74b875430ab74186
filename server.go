package staticd

import (
	"context"
	"fmt"
	"time"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/constants"
	"github.com/ehrlich-b/go-staticd/internal/listener"
	"github.com/ehrlich-b/go-staticd/internal/osfs"
	"github.com/ehrlich-b/go-staticd/internal/poller"
	"github.com/ehrlich-b/go-staticd/internal/reactor"
	"github.com/ehrlich-b/go-staticd/internal/response"
	"github.com/ehrlich-b/go-staticd/internal/workerpool"
)

// Server represents a running static file server: one listening
// socket, one reactor goroutine driving the poller and parsing
// requests, and a fixed pool of workers resolving files and staging
// responses.
type Server struct {
	// Addr is the bind address the server was configured with.
	Addr string

	// Port is the port actually bound, which differs from the
	// requested port only when 0 was requested (ephemeral bind).
	Port int

	// DocRoot is the document root requests resolve against.
	DocRoot string

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Internal state
	lis     *listener.Listener
	pol     poller.Poller
	pool    *workerpool.Pool
	table   *conn.Table
	workers int
	started bool

	stop chan struct{}
	done chan error

	// Metrics and observability
	metrics  *Metrics
	observer Observer
}

// Params contains parameters for creating a server.
type Params struct {
	// Addr is the IPv4 address to bind, dotted-quad or "" / "0.0.0.0"
	// for all interfaces.
	Addr string

	// Port is the TCP port to bind. 0 requests an ephemeral port
	// (useful in tests); the bound port is reported by Server.Port.
	Port int

	// DocRoot is the directory request paths resolve against.
	DocRoot string

	// Workers is the fixed worker pool size (default: 4).
	Workers int

	// MaxConnections bounds the connection slot table
	// (default: 65536). Accepts beyond this are closed immediately.
	MaxConnections int

	// FileSystem provides stat/open/mmap. nil means the real
	// filesystem.
	FileSystem FileSystem

	// PollTimeout bounds how long the reactor blocks in one poller
	// wait before rechecking for shutdown (default: 200ms).
	PollTimeout time.Duration
}

// DefaultParams returns default server parameters serving docRoot.
func DefaultParams(docRoot string) Params {
	return Params{
		Addr:           "0.0.0.0",
		DocRoot:        docRoot,
		Workers:        constants.DefaultWorkerCount,
		MaxConnections: constants.MaxFD,
		PollTimeout:    constants.ShutdownPollInterval,
	}
}

// Options contains additional options for server creation.
type Options struct {
	// Context for cancellation (if nil, uses context.Background())
	Context context.Context

	// Logger for debug/info messages (if nil, no logging)
	Logger Logger

	// Observer for metrics collection (if nil, records to the
	// server's built-in Metrics)
	Observer Observer
}

// ListenAndServe binds the configured address, starts the worker pool
// and the reactor goroutine, and returns the running server. The
// server keeps serving until the context is cancelled or Shutdown is
// called.
//
// Example:
//
//	params := staticd.DefaultParams("/var/www")
//	params.Port = 8080
//	srv, err := staticd.ListenAndServe(context.Background(), params, nil)
func ListenAndServe(ctx context.Context, params Params, options *Options) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if options == nil {
		options = &Options{}
	}
	if options.Context != nil {
		ctx = options.Context
	}

	if params.Port < 0 || params.Port > 65535 {
		return nil, NewError("LISTEN", ErrCodeConfig, fmt.Sprintf("port %d out of range", params.Port))
	}
	if params.DocRoot == "" {
		return nil, NewError("LISTEN", ErrCodeConfig, "document root not set")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = constants.DefaultWorkerCount
	}
	maxConns := params.MaxConnections
	if maxConns <= 0 {
		maxConns = constants.MaxFD
	}
	fs := params.FileSystem
	if fs == nil {
		fs = osfs.New()
	}

	lis, err := listener.New(params.Addr, params.Port)
	if err != nil {
		return nil, WrapError("LISTEN", err)
	}
	port, err := lis.Port()
	if err != nil {
		lis.Close()
		return nil, WrapError("LISTEN", err)
	}

	pol, err := poller.New()
	if err != nil {
		lis.Close()
		return nil, WrapError("POLL_CREATE", err)
	}

	// Initialize metrics and observer
	metrics := NewMetrics()
	var observer Observer
	if options.Observer != nil {
		observer = options.Observer
	} else {
		observer = NewMetricsObserver(metrics)
	}

	pool := workerpool.New(workers, options.Logger)
	table := conn.NewTable(maxConns)

	srv := &Server{
		Addr:     params.Addr,
		Port:     port,
		DocRoot:  params.DocRoot,
		lis:      lis,
		pol:      pol,
		pool:     pool,
		table:    table,
		workers:  workers,
		started:  true,
		stop:     make(chan struct{}),
		done:     make(chan error, 1),
		metrics:  metrics,
		observer: observer,
	}
	srv.ctx, srv.cancel = context.WithCancel(ctx)

	r := &reactor.Reactor{
		Pol:         pol,
		Pool:        pool,
		Table:       table,
		FS:          fs,
		DocRoot:     params.DocRoot,
		ListenFD:    lis.FD,
		Acceptor:    lis,
		Reader:      listener.SocketIO{},
		Writer:      response.UnixWriter{},
		Closer:      listener.SocketIO{},
		Logger:      options.Logger,
		Observer:    observer,
		PollTimeout: params.PollTimeout,
	}

	go func() {
		srv.done <- r.Run(srv.stop)
	}()
	go func() {
		<-srv.ctx.Done()
		srv.signalStop()
	}()

	if options.Logger != nil {
		options.Logger.Printf("staticd: serving %s on %s:%d with %d workers", params.DocRoot, params.Addr, port, workers)
	}

	return srv, nil
}

// signalStop closes the reactor's stop channel exactly once.
func (s *Server) signalStop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// ServerState represents the current state of a server.
type ServerState string

const (
	// ServerStateRunning indicates the server is actively serving.
	ServerStateRunning ServerState = "running"
	// ServerStateStopped indicates the server has been shut down.
	ServerStateStopped ServerState = "stopped"
)

// State returns the current state of the server.
func (s *Server) State() ServerState {
	if s == nil || !s.started {
		return ServerStateStopped
	}
	select {
	case <-s.ctx.Done():
		return ServerStateStopped
	default:
		return ServerStateRunning
	}
}

// IsRunning returns true if the server is currently serving.
func (s *Server) IsRunning() bool {
	return s.State() == ServerStateRunning
}

// Workers returns the worker pool size.
func (s *Server) Workers() int {
	return s.workers
}

// LiveConnections reports the number of currently registered
// connections.
func (s *Server) LiveConnections() int64 {
	if s == nil || s.table == nil {
		return 0
	}
	return s.table.LiveCount()
}

// ServerInfo contains comprehensive information about a server.
type ServerInfo struct {
	Addr            string      `json:"addr"`
	Port            int         `json:"port"`
	DocRoot         string      `json:"doc_root"`
	State           ServerState `json:"state"`
	Workers         int         `json:"workers"`
	MaxConnections  int         `json:"max_connections"`
	LiveConnections int64       `json:"live_connections"`
	Running         bool        `json:"running"`
}

// Info returns comprehensive information about the server.
func (s *Server) Info() ServerInfo {
	if s == nil {
		return ServerInfo{State: ServerStateStopped}
	}
	state := s.State()
	return ServerInfo{
		Addr:            s.Addr,
		Port:            s.Port,
		DocRoot:         s.DocRoot,
		State:           state,
		Workers:         s.workers,
		MaxConnections:  s.table.Cap(),
		LiveConnections: s.table.LiveCount(),
		Running:         state == ServerStateRunning,
	}
}

// Metrics returns the server's built-in metrics.
func (s *Server) Metrics() *Metrics {
	if s == nil {
		return nil
	}
	return s.metrics
}

// MetricsSnapshot returns a point-in-time snapshot of server metrics.
func (s *Server) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.Snapshot()
}

// Shutdown stops the server: the reactor goroutine exits, queued
// worker tasks drain, and the poller and listening socket are closed.
// Connections still open are abandoned to the closing process rather
// than individually drained; this server has no lame-duck mode.
// Shutdown is idempotent and safe to call on an already-cancelled
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return ErrInvalidParams
	}
	if !s.started {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.cancel()
	s.signalStop()

	var runErr error
	select {
	case runErr = <-s.done:
	case <-ctx.Done():
		return WrapError("SHUTDOWN", ctx.Err())
	}

	s.pool.Stop()
	s.pol.Close()
	s.lis.Close()
	if s.metrics != nil {
		s.metrics.Stop()
	}
	s.started = false

	if runErr != nil {
		return WrapError("SHUTDOWN", runErr)
	}
	return nil
}
