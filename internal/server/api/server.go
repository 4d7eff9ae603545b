package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"unicode"

	"github.com/virtkbd/keymapd/internal/log"
	"github.com/virtkbd/keymapd/internal/server/api/auth"
)

// Server implements a small TCP API for querying and mutating loaded
// keyboard layouts. Request framing: `<path>[ SP <payload>] \x00`; the
// response is a single JSON (or empty success) line followed by connection
// close.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	wire   log.WireLogger
	router *Router
	config ServerConfig
}

// New creates a new API server.
func New(addr string, config ServerConfig, logger *slog.Logger, wire log.WireLogger) *Server {
	a := &Server{
		addr:   addr,
		logger: logger,
		wire:   wire,
		config: config,
	}
	if a.wire == nil {
		a.wire = log.NewWire(nil)
	}
	a.router = NewRouter()
	return a
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address once Start has succeeded.
func (a *Server) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go a.serve()
	return nil
}

// Close stops the API server.
func (a *Server) Close() {
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	apiErr := WrapError(err)
	problemJSON, _ := json.Marshal(apiErr)
	a.wire.Log(false, append(problemJSON, '\n'))
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	a.wire.Log(false, []byte(rest+"\n"))
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate runs the optional auth handshake. It returns the connection
// to continue with (AEAD-wrapped when the handshake succeeded) and a reader
// positioned at the start of the request.
func (a *Server) authenticate(conn net.Conn, r *bufio.Reader, logger *slog.Logger) (net.Conn, *bufio.Reader, error) {
	isGreeting, err := auth.IsGreeting(r)
	if err != nil {
		return nil, nil, fmt.Errorf("peek greeting: %w", err)
	}
	if !isGreeting {
		if a.config.RequireAuth && a.config.Password != "" {
			return nil, nil, ErrUnauthorized("authentication required")
		}
		return conn, r, nil
	}
	if a.config.Password == "" {
		return nil, nil, ErrUnauthorized("server has no password configured")
	}

	key, err := auth.DeriveKey(a.config.Password)
	if err != nil {
		return nil, nil, err
	}
	sessionKey, err := auth.Accept(r, conn, key)
	if err != nil {
		return nil, nil, err
	}
	wrapped, err := auth.WrapServer(conn, sessionKey)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("api session authenticated")
	return wrapped, bufio.NewReader(wrapped), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())

	c, r, err := a.authenticate(conn, bufio.NewReader(conn), connLogger)
	if err != nil {
		connLogger.Error("api auth failed", "error", err)
		a.writeError(conn, err)
		return
	}
	w := c

	// Read until null terminator
	reqData, err := r.ReadString('\x00')
	if err != nil {
		if err == io.EOF {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	a.wire.Log(true, []byte(reqData))
	reqData = strings.TrimSuffix(reqData, "\x00")

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	// Split on the first whitespace character; everything after it is the
	// payload and may contain any bytes including newlines.
	var path, payload string
	if i := strings.IndexFunc(reqData, unicode.IsSpace); i >= 0 {
		path = reqData[:i]
		payload = reqData[i+1:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Log(connCtx, log.LevelTrace, "api cmd", "path", path)

	h, params := a.router.Match(path)
	if h == nil {
		connLogger.Error("api unknown path", "path", path)
		a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
		return
	}

	req := &Request{Ctx: connCtx, Params: params, Payload: payload}
	res := &Response{}
	if err := h(req, res, connLogger); err != nil {
		connLogger.Error("api handler error", "path", path, "error", err)
		a.writeError(w, err)
		return
	}
	connLogger.Debug("api handler success", "path", path)
	a.writeOK(w, res.JSON)
}
