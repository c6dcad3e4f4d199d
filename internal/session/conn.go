package session

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// conn reads lines from a connection on its own goroutine so that player
// input and incoming notifications can be waited on together.
type conn struct {
	rw    io.ReadWriter
	lines chan string
	msgs  chan string
	done  chan struct{}
}

func newConn(rw io.ReadWriter) *conn {
	c := &conn{
		rw:    rw,
		lines: make(chan string),
		msgs:  make(chan string, 64),
		done:  make(chan struct{}),
	}
	go c.readLines()
	return c
}

func (c *conn) readLines() {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.rw)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
}

// deliver hands a notification to the session. It gives up once the session
// has ended.
func (c *conn) deliver(data []byte) {
	select {
	case c.msgs <- string(data):
	case <-c.done:
	}
}

func (c *conn) close() {
	close(c.done)
}

func (c *conn) write(s string) error {
	_, err := io.WriteString(c.rw, s)
	return err
}

func (c *conn) writeLine(s string) error {
	return c.write(s + "\n")
}

// validator checks a prompt answer, returning a message to show when it is rejected.
type validator func(string) (bool, string)

// ask writes prompt and waits for an accepted line. Notifications that arrive
// while waiting are shown as they come in.
func (c *conn) ask(ctx context.Context, prompt string, valid validator) (string, error) {
	if err := c.write(prompt); err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case msg := <-c.msgs:
			if err := c.write("\n" + msg + "\n" + prompt); err != nil {
				return "", err
			}
		case line, ok := <-c.lines:
			if !ok {
				return "", io.EOF
			}
			line = strings.TrimSpace(line)
			if valid != nil {
				if ok, why := valid(line); !ok {
					if err := c.write(why + "\n" + prompt); err != nil {
						return "", err
					}
					continue
				}
			}
			return line, nil
		}
	}
}

// askYN asks a yes or no question.
func (c *conn) askYN(ctx context.Context, prompt string) (bool, error) {
	answer, err := c.ask(ctx, prompt, func(s string) (bool, string) {
		switch strings.ToLower(s) {
		case "y", "yes", "n", "no":
			return true, ""
		default:
			return false, "Enter 'yes' or 'no'."
		}
	})
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}
