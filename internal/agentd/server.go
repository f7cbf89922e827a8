package agentd

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/solana-keyring/keyring/internal/biometric"
	"github.com/solana-keyring/keyring/internal/store"
	"github.com/solana-keyring/keyring/internal/txsummary"
)

// Config configures a Server.
type Config struct {
	SocketPath  string
	LockTimeout time.Duration
	Confirmer   biometric.Confirmer
	Summarizer  txsummary.Summarizer
	Log         zerolog.Logger
}

// Server owns the agent socket, its accept loop, the idle-timeout timer,
// and the shared State every connection handler dispatches against (spec
// §4.2, §5).
type Server struct {
	cfg        Config
	state      *State
	confirmer  biometric.Confirmer
	summarizer txsummary.Summarizer
	log        zerolog.Logger

	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewServer prepares a server bound to st. It does not listen yet; call
// Serve.
func NewServer(st *store.Store, cfg Config) *Server {
	if cfg.Confirmer == nil {
		cfg.Confirmer = biometric.NoopConfirmer{}
	}
	if cfg.Summarizer == nil {
		cfg.Summarizer = txsummary.Default{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		state:      NewState(st, cfg.LockTimeout),
		confirmer:  cfg.Confirmer,
		summarizer: cfg.Summarizer,
		log:        cfg.Log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Serve binds the Unix socket and accepts connections until Shutdown is
// requested or ctx is cancelled. It removes a stale socket file (one that
// fails a liveness dial) and refuses to start if a live agent already
// owns the path.
func (srv *Server) Serve(ctx context.Context) error {
	if err := srv.claimSocket(); err != nil {
		return err
	}
	l, err := net.Listen("unix", srv.cfg.SocketPath)
	if err != nil {
		return err
	}
	if err := os.Chmod(srv.cfg.SocketPath, 0o600); err != nil {
		srv.log.Warn().Err(err).Msg("failed to restrict agent socket permissions")
	}
	srv.listener = l
	defer func() {
		l.Close()
		os.Remove(srv.cfg.SocketPath)
	}()

	srv.wg.Add(1)
	go srv.idleTimerLoop()

	go func() {
		select {
		case <-ctx.Done():
			srv.cancel()
		case <-srv.ctx.Done():
		}
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(srv.ctx.Err(), context.Canceled) {
				srv.wg.Wait()
				return nil
			}
			return err
		}
		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			srv.handleConn(conn)
		}()
	}
}

// claimSocket removes a dead socket file left by a prior crashed process,
// and refuses to start if the path is live (spec §4.2).
func (srv *Server) claimSocket() error {
	path := srv.cfg.SocketPath
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err == nil {
		conn.Close()
		return errors.New("agentd: an agent is already listening on " + path)
	}
	return os.Remove(path)
}

// handleConn serializes requests on one connection: each request's reply
// is written before the next is read, per spec §5's per-connection
// ordering guarantee.
func (srv *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		raw, err := readFrame(conn)
		if err != nil {
			return
		}
		req, err := decodeRequest(raw)
		if err != nil {
			resp, _ := encodeResponse(errResponse(err))
			writeFrame(conn, resp)
			continue
		}
		resp := srv.dispatch(req)
		body, err := encodeResponse(resp)
		if err != nil {
			return
		}
		if err := writeFrame(conn, body); err != nil {
			return
		}
		if req.Method == MethodShutdown {
			return
		}
	}
}

func (srv *Server) idleTimerLoop() {
	defer srv.wg.Done()
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			srv.state.checkIdle()
		case <-srv.ctx.Done():
			return
		}
	}
}

func (srv *Server) requestShutdown() {
	go func() {
		srv.state.lock()
		srv.cancel()
	}()
}
