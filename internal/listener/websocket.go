package listener

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	transportWebSocket = "websocket"
	shutdownTimeout    = 5 * time.Second
)

// WebSocketListener serves sessions to browsers. Each text frame from the
// client is one or more input lines; each write becomes one text frame.
type WebSocketListener struct {
	port    uint16
	path    string
	origins []string
	cm      *ConnectionManager

	wg       sync.WaitGroup
	connCtx  context.Context
	upgrader websocket.Upgrader
}

type WebSocketOpt func(*WebSocketListener)

// WithPath sets the http path that accepts upgrades. Defaults to /ws.
func WithPath(p string) WebSocketOpt {
	return func(l *WebSocketListener) {
		l.path = p
	}
}

// WithAllowedOrigins restricts upgrades to the listed Origin headers. With no
// origins only same-host requests are accepted.
func WithAllowedOrigins(origins ...string) WebSocketOpt {
	return func(l *WebSocketListener) {
		l.origins = origins
	}
}

func NewWebSocketListener(port uint16, cm *ConnectionManager, opts ...WebSocketOpt) *WebSocketListener {
	l := &WebSocketListener{
		port: port,
		path: "/ws",
		cm:   cm,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     l.checkOrigin,
	}
	return l
}

func (l *WebSocketListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	return l.serve(ctx, listener)
}

func (l *WebSocketListener) serve(ctx context.Context, listener net.Listener) error {
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()
	l.connCtx = connCtx

	mux := http.NewServeMux()
	mux.HandleFunc(l.path, l.handleUpgrade)
	svr := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := svr.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "shutting down websocket server", "error", err)
		}
		cancelConns()
	}()

	slog.InfoContext(ctx, "listening for websocket", "addr", listener.Addr().String(), "path", l.path)

	err := svr.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	l.wg.Wait()
	return nil
}

func (l *WebSocketListener) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(l.origins) == 0 {
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
	return slices.Contains(l.origins, origin)
}

func (l *WebSocketListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ws.Close()

		// Unblocks the reader on shutdown
		stop := context.AfterFunc(l.connCtx, func() {
			_ = ws.Close()
		})
		defer stop()

		slog.InfoContext(l.connCtx, "websocket connection established", "remote", ws.RemoteAddr())
		l.cm.AcceptConnection(l.connCtx, transportWebSocket, newWSReadWriter(ws))
	}()
}

// wsReadWriter adapts a websocket connection to a byte stream.
type wsReadWriter struct {
	ws  *websocket.Conn
	buf bytes.Buffer
	mu  sync.Mutex
}

func newWSReadWriter(ws *websocket.Conn) *wsReadWriter {
	return &wsReadWriter{ws: ws}
}

func (c *wsReadWriter) Read(p []byte) (int, error) {
	for c.buf.Len() == 0 {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.buf.Write(bytes.ReplaceAll(msg, []byte("\r\n"), []byte("\n")))
		if !bytes.HasSuffix(msg, []byte("\n")) {
			c.buf.WriteByte('\n')
		}
	}
	return c.buf.Read(p)
}

func (c *wsReadWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
