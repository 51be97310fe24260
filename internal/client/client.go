package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/cruciblehq/echod/internal/message"
)

const (

	// Default timeout for connect, read, and write operations.
	DefaultTimeout = time.Second

	// Default number of consecutive attempts made by SendAndReceive.
	DefaultMaxRetries = 3

	// Default size of the receive buffer.
	DefaultBufferSize = 512
)

// Holds client configuration.
type Options struct {
	Timeout    time.Duration // Connect, read, and write timeout. Zero or less uses [DefaultTimeout].
	MaxRetries int           // Attempts made by SendAndReceive. Zero or less uses [DefaultMaxRetries].
	BufferSize int           // Receive buffer size. Zero or less uses [DefaultBufferSize].
}

// A connection to an echod server.
//
// A Client is not safe for concurrent use.
type Client struct {
	address string
	opts    Options
	conn    net.Conn
	buf     []byte
}

// Creates a client for address. No connection is made until [Client.Connect].
func New(address string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	return &Client{
		address: address,
		opts:    opts,
		buf:     make([]byte, opts.BufferSize),
	}
}

// Opens the connection.
func (c *Client) Connect() error {
	slog.Debug("connecting", "address", c.address)

	conn, err := net.DialTimeout("tcp", c.address, c.opts.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	c.conn = conn

	slog.Debug("connected", "address", c.address, "local", conn.LocalAddr().String())
	return nil
}

// Closes the connection. Disconnecting an unconnected client is a no-op.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil

	slog.Debug("disconnected", "address", c.address)
	return err
}

// Encodes and writes a request.
func (c *Client) Send(m message.ClientMessage) error {
	data, err := message.EncodeClient(m)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// Writes data to the server as is.
func (c *Client) SendRaw(data []byte) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.Timeout)); err != nil {
		return err
	}
	if _, err := c.conn.Write(data); err != nil {
		return err
	}

	slog.Debug("sent message", "size", len(data), "digest", message.Digest(data))
	return nil
}

// Reads and decodes one response with a single read.
//
// Returns [ErrDisconnected] if the server closed the connection and
// [ErrRejected] if the server refused it for lack of capacity.
func (c *Client) Receive() (message.ServerMessage, error) {
	data, err := c.read()
	if err != nil {
		return message.ServerMessage{}, err
	}

	if isCapacityNotice(data) {
		return message.ServerMessage{}, ErrRejected
	}

	return message.DecodeServer(data)
}

// Sends a request and waits for its response.
//
// A failed exchange is retried on the same connection until MaxRetries
// attempts failed in a row. Errors that retrying cannot fix, such as a
// closed or refused connection, are returned immediately.
func (c *Client) SendAndReceive(m message.ClientMessage) (message.ServerMessage, error) {
	var err error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		var resp message.ServerMessage
		if resp, err = c.exchange(m); err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return message.ServerMessage{}, err
		}
		slog.Warn("exchange failed", "attempt", attempt, "error", err)
	}

	slog.Error("max retries reached, giving up", "retries", c.opts.MaxRetries)
	return message.ServerMessage{}, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
}

func (c *Client) exchange(m message.ClientMessage) (message.ServerMessage, error) {
	if err := c.Send(m); err != nil {
		return message.ServerMessage{}, err
	}
	return c.Receive()
}

func (c *Client) read() ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.Timeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrDisconnected
		}
		return nil, err
	}

	slog.Debug("received message", "size", n)
	return c.buf[:n], nil
}

// Whether data is the capacity notice or the start of it.
func isCapacityNotice(data []byte) bool {
	notice := []byte(message.CapacityNotice)
	if len(data) > len(notice) {
		data = data[:len(notice)]
	}
	return len(data) > 0 && bytes.HasPrefix(notice, data)
}

// Whether an exchange that failed with err may succeed if repeated.
func retryable(err error) bool {
	if errors.Is(err, message.ErrDecode) {
		return true
	}
	switch {
	case errors.Is(err, ErrNotConnected),
		errors.Is(err, ErrDisconnected),
		errors.Is(err, ErrRejected),
		errors.Is(err, message.ErrNoVariant),
		errors.Is(err, message.ErrMultipleVariants),
		errors.Is(err, net.ErrClosed):
		return false
	}
	return true
}
