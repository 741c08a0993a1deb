// Package sqlerr defines the error kinds surfaced by the type system,
// the page fetcher and the cursor.
package sqlerr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match them with errors.Is.
var (
	ErrUnrecognizedType      = errors.New("unrecognized type")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrIllegalCursorState    = errors.New("illegal cursor state")
	ErrTransport             = errors.New("transport error")
	ErrObjectClosed          = errors.New("object closed")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// Error carries the kind, the operation that failed and a human readable
// message naming the type, representation or state involved.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the kind sentinel of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind error, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// UnrecognizedType reports a domain type name missing from the registry.
func UnrecognizedType(name string) *Error {
	return New(ErrUnrecognizedType, "describe", fmt.Sprintf("unknown type %q", name), nil)
}

// UnsupportedConversion reports an illegal (domain type, representation) pair.
func UnsupportedConversion(typeName, rep string) *Error {
	return New(ErrUnsupportedConversion, "convert",
		fmt.Sprintf("conversion from %s to %s is not supported", typeName, rep), nil)
}

// ValueMismatch reports a decoded value whose shape does not fit the target.
func ValueMismatch(typeName, rep string, err error) *Error {
	return New(ErrUnsupportedConversion, "convert",
		fmt.Sprintf("cannot convert %s value to %s", typeName, rep), err)
}

// IllegalState reports an accessor used outside the active cursor state.
func IllegalState(op, state string) *Error {
	return New(ErrIllegalCursorState, op, "Illegal operation "+state+" of result set", nil)
}

// Transport wraps a failed round trip.
func Transport(op string, err error) *Error {
	return New(ErrTransport, op, "round trip failed", err)
}

// Closed reports an operation attempted after Close.
func Closed(op, object string) *Error {
	return New(ErrObjectClosed, op, object+" is closed", nil)
}

// InvalidArgument reports a usage error such as an out of range index.
func InvalidArgument(op, message string) *Error {
	return New(ErrInvalidArgument, op, message, nil)
}
