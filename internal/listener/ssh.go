package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	transportSSH = "ssh"

	// DefaultHandshakeTimeout bounds the key exchange and the wait for a shell request.
	DefaultHandshakeTimeout = 10 * time.Second
)

type SSHOpt func(*SSHListener)

// WithHandshakeTimeout overrides DefaultHandshakeTimeout.
func WithHandshakeTimeout(d time.Duration) SSHOpt {
	return func(l *SSHListener) {
		l.handshakeTimeout = d
	}
}

// WithBanner sets the text shown to clients before the session starts.
func WithBanner(banner string) SSHOpt {
	return func(l *SSHListener) {
		l.banner = banner
	}
}

// SSHListener serves maze sessions over ssh. Clients are not authenticated;
// players pick their name inside the session.
type SSHListener struct {
	port             uint16
	cm               *ConnectionManager
	hostKey          ssh.Signer
	banner           string
	handshakeTimeout time.Duration
}

func NewSSHListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer, opts ...SSHOpt) *SSHListener {
	l := &SSHListener{
		port:             port,
		cm:               cm,
		hostKey:          hostKey,
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SSHListener) serverConfig() *ssh.ServerConfig {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	if l.banner != "" {
		config.BannerCallback = func(ssh.ConnMetadata) string {
			return l.banner + "\r\n"
		}
	}
	config.AddHostKey(l.hostKey)
	return config
}

func (l *SSHListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}
	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	config := l.serverConfig()
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SSHListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	// Cleared once the key exchange completes
	conn.SetDeadline(time.Now().Add(l.handshakeTimeout))
	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", remote, "error", err)
		return
	}
	defer sshConn.Close()
	conn.SetDeadline(time.Time{})

	slog.InfoContext(ctx, "ssh connection established", "remote", remote, "client", string(sshConn.ClientVersion()))

	stop := context.AfterFunc(ctx, func() { sshConn.Close() })
	defer stop()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", "remote", remote, "error", err)
			continue
		}

		if !l.awaitShell(ctx, requests) {
			ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, transportSSH, newCRLFReadWriter(ch))
		ch.Close()
	}
}

// awaitShell answers channel requests until the client asks for a shell.
// Clients don't forward input before that reply. Pty requests are refused so
// the client keeps local echo and line editing.
func (l *SSHListener) awaitShell(ctx context.Context, requests <-chan *ssh.Request) bool {
	ready := make(chan struct{})
	var once sync.Once
	go func() {
		for req := range requests {
			ok := req.Type == "shell"
			if req.WantReply {
				req.Reply(ok, nil)
			}
			if ok {
				once.Do(func() { close(ready) })
			}
		}
	}()

	timer := time.NewTimer(l.handshakeTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		return true
	case <-timer.C:
		slog.WarnContext(ctx, "ssh client never requested a shell")
		return false
	case <-ctx.Done():
		return false
	}
}
