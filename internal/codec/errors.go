package codec

import "errors"

var (
	ErrMalformed      = errors.New("malformed_frame")
	ErrUnknownKind    = errors.New("unknown_message_kind")
	ErrInvalidCommand = errors.New("invalid_command")
)

// UnknownKindError is returned for a well-formed frame whose type tag is not
// part of the protocol. It matches ErrUnknownKind.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return "unknown_message_kind: " + e.Kind
}

func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}
