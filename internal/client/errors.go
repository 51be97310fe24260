package client

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrConnect          = fmt.Errorf("failed to connect: %w", errdefs.ErrUnavailable)
	ErrNotConnected     = fmt.Errorf("no active connection: %w", errdefs.ErrFailedPrecondition)
	ErrDisconnected     = fmt.Errorf("server disconnected: %w", errdefs.ErrUnavailable)
	ErrRejected         = fmt.Errorf("server is at full capacity: %w", errdefs.ErrResourceExhausted)
	ErrRetriesExhausted = errors.New("max retries reached")
)
