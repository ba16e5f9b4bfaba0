package media

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// ipcRequest is one command sent to mpv
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
}

// ipcMessage is either a command reply or an unsolicited event
type ipcMessage struct {
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`

	Event string `json:"event,omitempty"`
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ipcClient speaks mpv's line-delimited JSON protocol over a unix socket
type ipcClient struct {
	conn net.Conn

	writeMu sync.Mutex
	nextID  atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan ipcMessage
	closed  bool

	events chan ipcMessage
}

// dialIPC connects to the socket, retrying until mpv has created it or ctx
// expires
func dialIPC(ctx context.Context, path string) (*ipcClient, error) {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return newIPCClient(conn), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mpv: %w", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func newIPCClient(conn net.Conn) *ipcClient {
	return &ipcClient{
		conn:    conn,
		pending: make(map[int64]chan ipcMessage),
		events:  make(chan ipcMessage, 64),
	}
}

// Events delivers property changes and other unsolicited messages. It is
// closed when the connection ends.
func (c *ipcClient) Events() <-chan ipcMessage {
	return c.events
}

// Command sends a command and waits for mpv's reply
func (c *ipcClient) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	reply := make(chan ipcMessage, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, playerrors.ErrElementClosed
	}
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.write(ipcRequest{Command: args, RequestID: id}); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-reply:
		if !ok {
			return nil, playerrors.ErrElementClosed
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, &playerrors.IPCError{Command: fmt.Sprint(args[0]), Reason: msg.Error}
		}
		return msg.Data, nil
	}
}

// Send writes a command without waiting for its reply
func (c *ipcClient) Send(args ...any) error {
	return c.write(ipcRequest{Command: args})
}

func (c *ipcClient) write(req ipcRequest) error {
	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode mpv command: %w", err)
	}
	line = append(line, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(line); err != nil {
		return fmt.Errorf("write mpv command: %w", err)
	}
	return nil
}

// readLoop dispatches replies and events until the connection closes
func (c *ipcClient) readLoop() error {
	defer c.shutdown()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		if msg.Event != "" {
			c.events <- msg
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	if err := scanner.Err(); err != nil && !isClosedConn(err) {
		return fmt.Errorf("read mpv socket: %w", err)
	}
	return nil
}

func (c *ipcClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, reply := range c.pending {
		close(reply)
		delete(c.pending, id)
	}
	close(c.events)
}

// Close closes the connection; readLoop then returns
func (c *ipcClient) Close() error {
	return c.conn.Close()
}

func isClosedConn(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
