package listener

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-testutil"
)

// echoRunner greets, then echoes lines back until "bye".
type echoRunner struct {
	err error
}

func (r *echoRunner) RunSession(_ context.Context, conn io.ReadWriter) error {
	if _, err := io.WriteString(conn, "hello\n"); err != nil {
		return err
	}
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "bye" {
			return r.err
		}
		if _, err := fmt.Fprintf(conn, "echo: %s\n", line); err != nil {
			return err
		}
	}
	return r.err
}

type countingObserver struct {
	mu     sync.Mutex
	opened map[string]int
	closed map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{opened: map[string]int{}, closed: map[string]int{}}
}

func (o *countingObserver) Connected(transport string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened[transport]++
}

func (o *countingObserver) Disconnected(transport string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed[transport]++
}

func (o *countingObserver) counts(transport string) (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened[transport], o.closed[transport]
}

type bufferRW struct {
	in  *strings.Reader
	out bytes.Buffer
}

func (b *bufferRW) Read(p []byte) (int, error)  { return b.in.Read(p) }
func (b *bufferRW) Write(p []byte) (int, error) { return b.out.Write(p) }

func TestCRLFReadWriter(t *testing.T) {
	tests := map[string]struct {
		in     string
		write  string
		expIn  string
		expOut string
	}{
		"telnet line endings": {
			in:     "look\r\nnorth\r\n",
			write:  "a\nb\n",
			expIn:  "look\nnorth\n",
			expOut: "a\r\nb\r\n",
		},
		"bare carriage return": {
			in:     "look\r",
			write:  "> ",
			expIn:  "look\n",
			expOut: "> ",
		},
		"unix line endings": {
			in:     "look\n",
			write:  "",
			expIn:  "look\n",
			expOut: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := &bufferRW{in: strings.NewReader(tt.in)}
			rw := newCRLFReadWriter(b)

			got, err := io.ReadAll(rw)
			if err != nil {
				t.Fatalf("reading: %v", err)
			}
			n, err := rw.Write([]byte(tt.write))
			if err != nil {
				t.Fatalf("writing: %v", err)
			}

			testutil.AssertEqual(t, "read", string(got), tt.expIn)
			testutil.AssertEqual(t, "written", b.out.String(), tt.expOut)
			testutil.AssertEqual(t, "write count", n, len(tt.write))
		})
	}
}

func TestConnectionManager_AcceptConnection(t *testing.T) {
	tests := map[string]struct {
		err error
	}{
		"clean exit": {},
		"session error": {
			err: errors.New("boom"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			obs := newCountingObserver()
			cm := NewConnectionManager(&echoRunner{err: tt.err}, WithConnectionObserver(obs))

			b := &bufferRW{in: strings.NewReader("look\nbye\n")}
			cm.AcceptConnection(context.Background(), "test", b)

			opened, closed := obs.counts("test")
			testutil.AssertEqual(t, "opened", opened, 1)
			testutil.AssertEqual(t, "closed", closed, 1)
			testutil.AssertEqual(t, "output", b.out.String(), "hello\necho: look\n")
		})
	}
}

func startWebSocket(t *testing.T, obs ConnectionObserver, opts ...WebSocketOpt) (string, context.CancelFunc, chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	cm := NewConnectionManager(&echoRunner{}, WithConnectionObserver(obs))
	l := NewWebSocketListener(0, cm, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.serve(ctx, ln)
	}()
	t.Cleanup(cancel)

	return "ws://" + ln.Addr().String() + l.path, cancel, done
}

func readText(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	if err := ws.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("setting deadline: %v", err)
	}
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("reading message: %v", err)
	}
	return string(msg)
}

func TestWebSocketListener_Session(t *testing.T) {
	obs := newCountingObserver()
	url, cancel, done := startWebSocket(t, obs)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer ws.Close()

	testutil.AssertEqual(t, "greeting", readText(t, ws), "hello\n")

	if err := ws.WriteMessage(websocket.TextMessage, []byte("look")); err != nil {
		t.Fatalf("writing: %v", err)
	}
	testutil.AssertEqual(t, "echo", readText(t, ws), "echo: look\n")

	if err := ws.WriteMessage(websocket.TextMessage, []byte("north\r\nsouth\n")); err != nil {
		t.Fatalf("writing: %v", err)
	}
	testutil.AssertEqual(t, "first line", readText(t, ws), "echo: north\n")
	testutil.AssertEqual(t, "second line", readText(t, ws), "echo: south\n")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not stop")
	}

	opened, closed := obs.counts(transportWebSocket)
	testutil.AssertEqual(t, "opened", opened, 1)
	testutil.AssertEqual(t, "closed", closed, 1)
}

func TestWebSocketListener_Origin(t *testing.T) {
	tests := map[string]struct {
		allowed []string
		origin  string
		expOk   bool
	}{
		"no origin header": {
			expOk: true,
		},
		"allowed origin": {
			allowed: []string{"https://maze.example"},
			origin:  "https://maze.example",
			expOk:   true,
		},
		"foreign origin": {
			allowed: []string{"https://maze.example"},
			origin:  "https://evil.example",
			expOk:   false,
		},
		"cross host without allow list": {
			origin: "https://evil.example",
			expOk:  false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			url, _, _ := startWebSocket(t, newCountingObserver(), WithAllowedOrigins(tt.allowed...))

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			ws, _, err := websocket.DefaultDialer.Dial(url, header)
			if ws != nil {
				defer ws.Close()
			}
			testutil.AssertEqual(t, "upgraded", err == nil, tt.expOk)
		})
	}
}
