package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"coderbridge/internal/logging"
	"coderbridge/internal/transport"
	"coderbridge/internal/wire"
	"coderbridge/internal/workspace"
)

// Server accepts a single bridge client and dispatches its requests to a
// workspace manager.
type Server struct {
	manager workspace.Manager
	network transport.Network
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	port     int
	listener transport.Listener
	conn     transport.Conn

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// NewServer configures a server. A nil network selects loopback TCP.
func NewServer(manager workspace.Manager, network transport.Network, logger *slog.Logger) (*Server, error) {
	if manager == nil {
		return nil, errors.New("ipc server requires a workspace manager")
	}
	if network == nil {
		network = transport.NewTCP("")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		manager: manager,
		network: network,
		logger:  logging.NewComponentLogger(logger, "ipc-server"),
		state:   StateCreated,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}, nil
}

// Start binds an ephemeral port, begins serving in the background, and
// returns the port. The port is connectable as soon as Start returns.
func (s *Server) Start() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateCreated:
	case StateStopped:
		return 0, ErrServerStopped
	default:
		return 0, ErrServerStarted
	}

	listener, err := s.network.Listen()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	s.listener = listener
	s.port = listener.Port()
	s.state = StateListening

	s.logger.Info("bridge server listening", logging.Int(logging.FieldPort, s.port))
	go s.serve(listener)
	return s.port, nil
}

// Port returns the bound port, or 0 before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// State returns the current lifecycle phase.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the server has released its sockets, either because
// the client disconnected or because Stop was called.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Stop closes the listener and the active connection, unblocking a pending
// accept or read, and waits for the serving loop to exit. It is idempotent
// and safe to call concurrently.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.state != StateCreated
		s.state = StateStopped
		listener, conn := s.listener, s.conn
		s.mu.Unlock()

		s.cancel()
		var errs []error
		if listener != nil {
			if err := listener.Close(); err != nil && !transport.IsClosed(err) {
				errs = append(errs, fmt.Errorf("close listener: %w", err))
			}
		}
		if conn != nil {
			if err := conn.Close(); err != nil && !transport.IsClosed(err) {
				errs = append(errs, fmt.Errorf("close connection: %w", err))
			}
		}
		s.stopErr = errors.Join(errs...)
		if !started {
			close(s.done)
		}
	})
	<-s.done
	return s.stopErr
}

func (s *Server) stopping() bool {
	return s.ctx.Err() != nil
}

// transition moves to next unless Stop already ran.
func (s *Server) transition(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return false
	}
	s.state = next
	return true
}

func (s *Server) serve(listener transport.Listener) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		_ = listener.Close()
	}()

	if !s.transition(StateAccepting) {
		return
	}
	conn, err := listener.Accept()
	if err != nil {
		if s.stopping() || transport.IsClosed(err) {
			s.logger.Debug("accept interrupted by shutdown")
			return
		}
		logging.WarnWithContext(s.logger, "bridge accept failed", "ipc_accept_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the plugin cannot reach the workspace manager"),
			logging.String(logging.FieldErrorHint, "restart the bridge server"))
		return
	}

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.state = StateServing
	s.mu.Unlock()

	// Only the first client is ever served; release the port now.
	_ = listener.Close()
	s.logger.Info("bridge client connected", logging.Int(logging.FieldPort, s.port))

	s.handle(conn)
}

func (s *Server) handle(conn transport.Conn) {
	stream := wire.NewStream(conn)
	for {
		frame, err := stream.Receive()
		if err != nil {
			s.logReadError(err)
			return
		}

		id, resp := s.dispatch(frame)
		if !s.reply(stream, id, resp) {
			return
		}
	}
}

// reply sends resp, substituting a failure when resp cannot be encoded or is
// too large to frame. It reports whether the connection is still usable.
func (s *Server) reply(stream *wire.Stream, id string, resp wire.Response) bool {
	payload, err := wire.EncodeResponse(id, resp)
	if err == nil {
		err = stream.Send(payload)
		if err == nil {
			return true
		}
		if !errors.Is(err, wire.ErrFrameTooLarge) {
			return s.writeFailed(err)
		}
	}

	logging.WarnWithContext(s.logger, "bridge response replaced by failure", "ipc_response_rejected",
		logging.String(logging.FieldRequestType, string(resp.Kind())),
		logging.Error(err),
		logging.String(logging.FieldImpact, "the request is answered with a failure"))
	payload, encErr := wire.EncodeResponse(id, wire.Failure{Message: err.Error()})
	if encErr != nil {
		logging.ErrorWithContext(s.logger, "encode failure response", "ipc_encode_failed", logging.Error(encErr))
		return false
	}
	if err := stream.Send(payload); err != nil {
		return s.writeFailed(err)
	}
	return true
}

func (s *Server) writeFailed(err error) bool {
	if s.stopping() || transport.IsClosed(err) {
		return false
	}
	logging.WarnWithContext(s.logger, "bridge response write failed", "ipc_write_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "the client call fails with a connectivity error"),
		logging.String(logging.FieldErrorHint, "check whether the plugin process exited"))
	return false
}

func (s *Server) logReadError(err error) {
	switch {
	case s.stopping():
		s.logger.Debug("read interrupted by shutdown")
	case errors.Is(err, io.EOF) || transport.IsClosed(err):
		s.logger.Info("bridge client disconnected")
	default:
		logging.WarnWithContext(s.logger, "closing bridge connection after unreadable frame", "ipc_frame_unrecoverable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the plugin must reconnect to a new server"),
			logging.String(logging.FieldErrorHint, "check that both processes run the same coderbridge version"))
	}
}

// dispatch decodes one request and runs it against the manager. Malformed
// payloads and manager failures become failure responses.
func (s *Server) dispatch(frame []byte) (string, wire.Response) {
	id, req, err := wire.DecodeRequest(frame)
	ctx := logging.WithRequestID(s.ctx, id)
	logger := logging.WithContext(ctx, s.logger)
	if err != nil {
		logging.WarnWithContext(logger, "malformed bridge request", "ipc_request_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the request is answered with a failure"))
		return id, wire.Failure{Message: err.Error()}
	}

	logger = logger.With(logging.String(logging.FieldRequestType, string(req.Kind())))
	var resp wire.Response
	switch r := req.(type) {
	case wire.CreateWorkspace:
		err = invoke(func() error {
			return s.manager.CreateProblemWorkspace(ctx, r.Problem)
		})
		resp = wire.Ack{}
	case wire.GetSolutionSource:
		var source string
		err = invoke(func() error {
			var callErr error
			source, callErr = s.manager.GetSolutionSource(ctx, r.ClassName)
			return callErr
		})
		resp = wire.StringResult{Value: source}
	default:
		err = fmt.Errorf("%w: unsupported request %T", wire.ErrProtocol, req)
	}

	if err != nil {
		logger.Info("bridge request failed",
			logging.String(logging.FieldEventType, "ipc_request_failed"),
			logging.Error(err))
		return id, wire.Failure{Message: err.Error()}
	}
	logger.Debug("bridge request handled")
	return id, resp
}

// invoke runs fn and converts a panic into an error.
func invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workspace manager panic: %v", r)
		}
	}()
	return fn()
}
