package comm

import (
	"errors"
	"fmt"
)

// ErrNoStatus indicates a response buffer too small to hold the status byte.
var ErrNoStatus = errors.New("response buffer has no room for status")

// BusError wraps a failure of the bus or GPIO primitive.
type BusError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *BusError) Error() string {
	return fmt.Sprintf("bus %s: %v", e.Op, e.Err)
}

// Unwrap returns the primitive error.
func (e *BusError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a nonzero status byte.
type ProtocolError struct {
	Family byte
	Index  byte
	Status byte
}

// Error implements error.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("command %02x.%02x status %d", e.Family, e.Index, e.Status)
}

// IdentityError reports an unexpected WHOAMI or device mode.
type IdentityError struct {
	What string
	Want []byte
	Got  byte
}

// Error implements error.
func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s mismatch: got 0x%02x, want % x", e.What, e.Got, e.Want)
}

// ModeError reports an unsupported mode, channel or attribute combination.
type ModeError struct {
	Reason string
}

// Error implements error.
func (e *ModeError) Error() string {
	return "mode: " + e.Reason
}

// ModeErrorf creates a ModeError.
func ModeErrorf(format string, args ...interface{}) error {
	return &ModeError{Reason: fmt.Sprintf(format, args...)}
}

// ResourceError reports a failed queue or buffer allocation.
type ResourceError struct {
	What string
	Err  error
}

// Error implements error.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("allocate %s: %v", e.What, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsBusError determines if err is caused by a BusError.
func IsBusError(err error) bool {
	var e *BusError
	return errors.As(err, &e)
}

// IsProtocolError determines if err is caused by a ProtocolError.
func IsProtocolError(err error) bool {
	var e *ProtocolError
	return errors.As(err, &e)
}

// IsIdentityError determines if err is caused by an IdentityError.
func IsIdentityError(err error) bool {
	var e *IdentityError
	return errors.As(err, &e)
}

// IsModeError determines if err is caused by a ModeError.
func IsModeError(err error) bool {
	var e *ModeError
	return errors.As(err, &e)
}

// IsResourceError determines if err is caused by a ResourceError.
func IsResourceError(err error) bool {
	var e *ResourceError
	return errors.As(err, &e)
}
