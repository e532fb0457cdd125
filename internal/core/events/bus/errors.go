package bus

import "errors"

var (
	ErrBusClosed  = errors.New("event bus closed")
	ErrNilHandler = errors.New("nil event handler")
	ErrEmptyType  = errors.New("empty event type")
)
