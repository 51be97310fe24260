package server

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrServer           = errors.New("server error")
	ErrBind             = errors.New("failed to bind")
	ErrInvalidConfig    = fmt.Errorf("invalid server configuration: %w", errdefs.ErrInvalidArgument)
	ErrServerClosed     = fmt.Errorf("server already ran: %w", errdefs.ErrFailedPrecondition)
	ErrMalformed        = errors.New("malformed message")
	ErrTooManyMalformed = errors.New("too many malformed messages")
	ErrReusePort        = fmt.Errorf("SO_REUSEPORT unavailable: %w", errdefs.ErrNotImplemented)
)

// Returned by a handler cycle when the peer closed its side of the connection.
var errPeerClosed = errors.New("peer closed connection")
