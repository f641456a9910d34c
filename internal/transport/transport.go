// Package transport is the duplex text-frame connection used by the live
// session.
package transport

import (
	"context"
	"errors"
)

const (
	CloseNormal    = 1000
	CloseGoingAway = 1001
	CloseAbnormal  = 1006

	UserInitiatedReason = "user-initiated"
)

var (
	ErrNotOpen = errors.New("transport_not_open")
	ErrClosed  = errors.New("transport_closed")
)

// Handlers receive connection events. Each callback may run on a transport
// goroutine; OnClose is delivered exactly once per Conn.
type Handlers struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(code int, reason string)
	OnError   func(err error)
}

type Conn interface {
	Send(data []byte) error
	Close(code int, reason string) error
}

// Dialer opens a connection without blocking; the outcome arrives through
// Handlers. An error return means the attempt could not even be started.
type Dialer interface {
	Dial(ctx context.Context, url string, h Handlers) (Conn, error)
}
