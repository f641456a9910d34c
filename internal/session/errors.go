package session

import "errors"

var (
	ErrAlreadyConnected = errors.New("already_connected")
	ErrRetryExhausted   = errors.New("retry_exhausted")
	ErrClosed           = errors.New("session_closed")
	ErrInvalidURL       = errors.New("invalid_live_server_url")
)
