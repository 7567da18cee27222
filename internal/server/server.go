// Package server implements the TCP front-end from spec §4.J/§5: an
// accept loop handing each connection to a worker pool, where a handler
// decodes Operation frames, dispatches them against its own engine
// clone, and writes back one Response frame per request.
package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"kvd/internal/engine"
	"kvd/internal/pool"
	"kvd/internal/protocol"
)

// Server accepts connections on a single TCP listener and dispatches
// each one onto a pool worker. newEngine must return a handle safe to
// use from exactly one goroutine at a time - typically a Clone() of a
// shared engine.Engine - since one is taken per connection.
type Server struct {
	addr     string
	newEngine func() engine.Engine
	pool     pool.Pool
	logger   log.Logger
	metrics  *serverMetrics

	mu       sync.Mutex
	ln       net.Listener
	closing  bool
	conns    sync.WaitGroup
}

// New builds a Server. addr is the TCP address to listen on (e.g.
// "127.0.0.1:4000"), newEngine yields one engine handle per accepted
// connection, and p dispatches connection handling.
func New(addr string, newEngine func() engine.Engine, p pool.Pool, opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{
		addr:      addr,
		newEngine: newEngine,
		pool:      p,
		logger:    cfg.logger,
		metrics:   newServerMetrics(cfg.registerer),
	}
}

// Run listens on s.addr and accepts connections until Close is called
// or the listener fails. It blocks until the accept loop exits.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return engine.IoError("listen", err)
	}
	return s.serveOn(ln)
}

// serveOn runs the accept loop on an already-bound listener. Split out
// from Run so tests can observe the OS-assigned port before the loop
// starts blocking on Accept.
func (s *Server) serveOn(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	level.Info(s.logger).Log("msg", "server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			level.Error(s.logger).Log("msg", "accept failed", "err", err)
			return engine.IoError("accept", err)
		}

		s.metrics.connectionsAcceptedTotal.Inc()
		s.conns.Add(1)
		eng := s.newEngine()
		s.pool.Spawn(func() {
			defer s.conns.Done()
			s.handleConn(conn, eng)
		})
	}
}

// Addr returns the listener's bound address. It must only be called
// after Run has started listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting new connections and waits for in-flight
// connection handlers to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.conns.Wait()
	return err
}

// handleConn decodes Operation frames from conn until the peer closes
// the connection, dispatching each against eng and writing back one
// Response frame per request (spec §5: "a client disconnecting causes
// the handler to observe EOF on its next decode and exit").
//
// eng is a per-connection Clone() sharing the top-level store's writer
// (or bolt.DB) - it must never be Closed here. engine.Engine.Close is
// only ever called once, on the original handle, at server shutdown;
// closing a clone tears down the shared resource out from under every
// other connection and the writer itself (spec §6 end-to-end scenario).
func (s *Server) handleConn(conn net.Conn, eng engine.Engine) {
	defer conn.Close()

	dec := protocol.NewDecoder(conn)
	enc := protocol.NewEncoder(conn)

	for {
		op, err := dec.DecodeOperation()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			level.Error(s.logger).Log("msg", "decode operation failed", "err", err)
			_ = enc.EncodeResponse(protocol.ErrResponse(err.Error()))
			return
		}

		resp := s.dispatch(eng, op)
		if err := enc.EncodeResponse(resp); err != nil {
			level.Error(s.logger).Log("msg", "encode response failed", "err", err)
			return
		}
	}
}

// dispatch runs one Operation against eng and builds the Response
// frame. A Get/Remove miss is reported as "Key not found" on the wire
// (spec §9 Open Question); any other engine error carries its own
// message, keeping the two distinguishable to the client.
func (s *Server) dispatch(eng engine.Engine, op protocol.Operation) protocol.Response {
	switch op.Op {
	case protocol.OpSet:
		s.metrics.requestsTotal.WithLabelValues("set").Inc()
		if err := eng.Set(op.Key, op.Value); err != nil {
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse()

	case protocol.OpGet:
		s.metrics.requestsTotal.WithLabelValues("get").Inc()
		value, ok, err := eng.Get(op.Key)
		if err != nil {
			return protocol.ErrResponse(err.Error())
		}
		if !ok {
			return protocol.ErrResponse("Key not found")
		}
		return protocol.ValueResponse(value)

	case protocol.OpRemove:
		s.metrics.requestsTotal.WithLabelValues("rm").Inc()
		if err := eng.Remove(op.Key); err != nil {
			var kerr *engine.Error
			if errors.As(err, &kerr) && kerr.Kind == engine.KindKeyNotFound {
				return protocol.ErrResponse("Key not found")
			}
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse()

	default:
		return protocol.ErrResponse("unrecognized operation")
	}
}
