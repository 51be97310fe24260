package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/cruciblehq/echod/internal/message"
)

// Serves one admitted connection. The handler is the only code that touches
// the socket after the accept loop hands it over.
type conn struct {
	nc           net.Conn
	addr         string
	buf          []byte // Reused across reads.
	failures     int    // Consecutive decode failures.
	maxMalformed int
}

func newConn(nc net.Conn, bufferSize, maxMalformed int) *conn {
	return &conn{
		nc:           nc,
		addr:         nc.RemoteAddr().String(),
		buf:          make([]byte, bufferSize),
		maxMalformed: maxMalformed,
	}
}

// Runs cycles while running reports true.
//
// Returns nil when the peer disconnects or the server stops, and the
// terminal error otherwise. Malformed messages below the threshold are
// logged and the connection stays open.
func (c *conn) serve(running func() bool) error {
	for running() {
		err := c.cycle()
		switch {
		case err == nil, errors.Is(err, ErrMalformed):
			continue
		case errors.Is(err, errPeerClosed):
			slog.Info("client disconnected", "client", c.addr)
			return nil
		case !running():
			return nil
		default:
			return err
		}
	}
	return nil
}

// Performs one read-decode-respond exchange.
//
// Whatever bytes a single read returns are decoded as one message. A decode
// failure returns an error wrapping [ErrMalformed] until more than
// maxMalformed failures happened in a row, after which it wraps
// [ErrTooManyMalformed].
func (c *conn) cycle() error {
	n, err := c.nc.Read(c.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errPeerClosed
		}
		return err
	}

	frame := c.buf[:n]

	req, err := message.DecodeClient(frame)
	if err != nil {
		c.failures++
		slog.Warn("failed to decode message",
			"client", c.addr,
			"attempt", c.failures,
			"error", err,
		)
		if c.failures > c.maxMalformed {
			slog.Warn("too many decoding errors, disconnecting client", "client", c.addr)
			return fmt.Errorf("%w: %w", ErrTooManyMalformed, err)
		}
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	c.failures = 0

	slog.Debug("message received",
		"client", c.addr,
		"kind", req.Kind(),
		"size", n,
		"digest", message.Digest(frame),
	)

	resp, err := message.Respond(req)
	if err != nil {
		return err
	}

	data, err := message.EncodeServer(resp)
	if err != nil {
		return err
	}

	if _, err := c.nc.Write(data); err != nil {
		return err
	}
	return nil
}
