package mpd

import (
	"errors"
	"fmt"

	"github.com/polyfloyd/trollibox/src/mpd/client"
)

// ErrorKind classifies an Error the way callers (the API layer, the
// history keeper) need to react to it: by retrying, by surfacing a 404, or
// by giving up outright.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnavailable
	KindDisconnected
	KindForbidden
	KindNotFound
	KindAlreadyExists
)

func (k ErrorKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindUnavailable:
		return "unavailable"
	case KindDisconnected:
		return "disconnected"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported operation in this
// package tree.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error directly, for cases (validation of decoded
// values, action timeouts) that have no underlying client error to convert.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapAck converts a decoded MPD ack into an Error, collapsing every code
// this client doesn't specifically recognize into KindInternal.
func wrapAck(ack client.Ack) *Error {
	switch int(ack.Code) {
	case client.AckCodePermission:
		return &Error{Kind: KindForbidden, Message: ack.Message}
	case client.AckCodeNoExist:
		return &Error{Kind: KindNotFound, Message: ack.Message}
	case client.AckCodeExist:
		return &Error{Kind: KindAlreadyExists, Message: ack.Message}
	default:
		return &Error{Kind: KindInternal, Message: ack.Message}
	}
}

// wrapClientErr converts any error coming out of the client package into
// an Error, attributing closed connections to KindDisconnected so the
// manager knows to reconnect rather than surface a 5xx.
func wrapClientErr(err error) *Error {
	if err == nil {
		return nil
	}

	var ackErr *client.AckError
	if errors.As(err, &ackErr) {
		return wrapAck(ackErr.Ack)
	}

	if errors.Is(err, client.ErrClosed) {
		return &Error{Kind: KindDisconnected, Message: "connection closed"}
	}

	return &Error{Kind: KindInternal, Message: err.Error()}
}
