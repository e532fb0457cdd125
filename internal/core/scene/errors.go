package scene

import "errors"

var (
	ErrFinalized       = errors.New("entity already finalized")
	ErrAlreadyAttached = errors.New("module already attached to an entity")
	ErrNilModule       = errors.New("nil module")
	ErrReentrantFlush  = errors.New("registry flush called from inside an update")
)
