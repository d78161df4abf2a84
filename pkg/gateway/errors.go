package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteCall      = errors.New("remote call failed")
	ErrNotConfigured   = errors.New("kitchen client not configured")
	ErrInvalidArgument = errors.New("invalid argument")
)

// RemoteCallError is returned by every Client method that did not get a
// successful answer from the kitchen. It matches ErrRemoteCall.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

func remoteErr(op string, err error) error {
	return &RemoteCallError{Op: op, Err: err}
}
