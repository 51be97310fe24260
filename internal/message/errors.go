package message

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrDecode           = fmt.Errorf("malformed message: %w", errdefs.ErrInvalidArgument)
	ErrNoVariant        = errors.New("no message variant set")
	ErrMultipleVariants = errors.New("more than one message variant set")
	ErrWireType         = errors.New("unexpected wire type")
	ErrInvalidUTF8      = errors.New("content is not valid UTF-8")
)
