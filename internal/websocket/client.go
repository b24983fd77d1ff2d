// Package websocket wraps gobwas/ws into a small client with a blocking
// receive call, so a single consumer can pull text frames in arrival order.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

type Config struct {
	URL         string
	DialTimeout time.Duration
	Headers     http.Header
	Logger      *slog.Logger
}

type Client struct {
	conn     net.Conn
	out      chan wsutil.Message
	frames   chan []byte
	done     chan struct{}
	doneOnce sync.Once
	logger   *slog.Logger
}

func Connect(ctx context.Context, config Config) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("url", config.URL))

	dialTimeout := config.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}

	hsCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	d := ws.Dialer{
		Timeout: dialTimeout,
		Header:  ws.HandshakeHeaderHTTP(config.Headers),
	}
	conn, buf, hs, err := d.Dial(hsCtx, config.URL)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	logger.Debug("handshake complete", slog.Any("handshake", hs))

	if buf != nil {
		defer ws.PutReader(buf)
	}

	client := &Client{
		conn:   conn,
		out:    make(chan wsutil.Message, 1000),
		frames: make(chan []byte, 1000),
		done:   make(chan struct{}),
		logger: logger,
	}

	go client.readLoop()
	go client.writeLoop()

	return client, nil
}

func (c *Client) setDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Next blocks until the next text frame arrives. It returns io.EOF once the
// connection has closed, for any reason.
func (c *Client) Next() ([]byte, error) {
	select {
	case frame, ok := <-c.frames:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	case <-c.done:
		return nil, io.EOF
	}
}

func (c *Client) WriteText(data []byte) error {
	return c.write(wsutil.Message{OpCode: ws.OpText, Payload: data})
}

func (c *Client) Ping(data []byte) error {
	return c.write(wsutil.Message{OpCode: ws.OpPing, Payload: data})
}

func (c *Client) write(msg wsutil.Message) error {
	// Check done first; with buffer room in out, the two-way select could
	// still pick the send after the connection ended.
	select {
	case <-c.done:
		return io.EOF
	default:
	}
	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return io.EOF
	}
}

// Close sends a close frame, waits briefly for the server to mirror it, then
// tears down the connection.
func (c *Client) Close() error {
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "closing")
	_ = c.write(wsutil.Message{OpCode: ws.OpClose, Payload: body})
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	c.setDone()
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer c.setDone()
	defer close(c.frames)
	for {
		messages, err := wsutil.ReadServerMessage(c.conn, nil)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Error("websocket read failed", slog.Any("err", err))
			}
			return
		}
		for _, msg := range messages {
			if ws.OpCode.IsControl(msg.OpCode) {
				c.logger.Debug("rcv: control", slog.Any("opcode", msg.OpCode))
				if err := wsutil.HandleServerControlMessage(c.conn, msg); err != nil {
					c.logger.Error("control message handling failed", slog.Any("err", err))
				}
				if msg.OpCode == ws.OpClose {
					c.logger.Debug("rcv: close", slog.String("reason", string(msg.Payload)))
					return
				}
				continue
			}
			if msg.OpCode != ws.OpText {
				c.logger.Debug("rcv: ignoring frame", slog.Any("opcode", msg.OpCode), slog.Int("len", len(msg.Payload)))
				continue
			}
			select {
			case c.frames <- msg.Payload:
			case <-c.done:
				return
			}
		}
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			if err := wsutil.WriteClientMessage(c.conn, msg.OpCode, msg.Payload); err != nil {
				c.logger.Error("websocket write failed", slog.Any("err", err))
				c.setDone()
				return
			}
		}
	}
}
