package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultWriteTimeout = 10 * time.Second

// WebSocketDialer dials with gorilla/websocket.
type WebSocketDialer struct {
	Dialer       *websocket.Dialer
	Header       http.Header
	WriteTimeout time.Duration
}

func NewWebSocketDialer(writeTimeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		Dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		WriteTimeout: writeTimeout,
	}
}

func (d *WebSocketDialer) Dial(ctx context.Context, url string, h Handlers) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	wt := d.WriteTimeout
	if wt <= 0 {
		wt = defaultWriteTimeout
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &wsConn{handlers: h, cancel: cancel, writeTimeout: wt}
	go c.dial(ctx, dialer, url, d.Header)
	return c, nil
}

type wsConn struct {
	handlers     Handlers
	cancel       context.CancelFunc
	writeTimeout time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	closing bool

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *wsConn) dial(ctx context.Context, dialer *websocket.Dialer, url string, header http.Header) {
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		metricDialErrorsTotal.Add(1)
		c.mu.Lock()
		closing := c.closing
		c.mu.Unlock()
		if !closing {
			c.emitError(err)
		}
		c.emitClose(CloseAbnormal, "")
		return
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		_ = conn.Close()
		c.emitClose(CloseNormal, UserInitiatedReason)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	metricConnectionsActive.Add(1)
	defer metricConnectionsActive.Add(-1)
	if c.handlers.OnOpen != nil {
		c.handlers.OnOpen()
	}
	c.readLoop(conn)
}

func (c *wsConn) readLoop(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				c.emitClose(ce.Code, ce.Text)
				return
			}
			c.mu.Lock()
			closing := c.closing
			c.mu.Unlock()
			if !closing {
				c.emitError(err)
			}
			c.emitClose(CloseAbnormal, "")
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		metricFramesReceivedTotal.Add(1)
		if c.handlers.OnMessage != nil {
			c.handlers.OnMessage(data)
		}
	}
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	closing := c.closing
	c.mu.Unlock()
	if closing {
		return ErrClosed
	}
	if conn == nil {
		return ErrNotOpen
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	metricFramesSentTotal.Add(1)
	return nil
}

// Close sends a close frame and tears the connection down. OnClose reports
// the given code and reason.
func (c *wsConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		return nil
	}
	c.emitClose(code, reason)
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
	c.writeMu.Unlock()
	if cerr := conn.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		log.Debug().Err(err).Msg("ws close")
	}
	return nil
}

func (c *wsConn) emitError(err error) {
	if c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
}

func (c *wsConn) emitClose(code int, reason string) {
	c.closeOnce.Do(func() {
		if c.handlers.OnClose != nil {
			c.handlers.OnClose(code, reason)
		}
	})
}
