package server

import (
	"io"
	"net"
	"testing"

	"github.com/cruciblehq/echod/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var garbage = []byte{0xff, 0xff, 0xff}

func always() bool { return true }

// Returns a handler on one end of an in-memory pipe and the other end.
// Every write on the peer is delivered to exactly one handler read.
func pipeConn(t *testing.T) (*conn, net.Conn) {
	t.Helper()

	local, peer := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		peer.Close()
	})

	return newConn(local, DefaultBufferSize, DefaultMaxMalformed), peer
}

func encode(t *testing.T, m message.ClientMessage) []byte {
	t.Helper()
	data, err := message.EncodeClient(m)
	require.NoError(t, err)
	return data
}

// Writes a request on the peer and decodes the handler's response.
func roundTrip(t *testing.T, peer net.Conn, m message.ClientMessage) message.ServerMessage {
	t.Helper()

	_, err := peer.Write(encode(t, m))
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := peer.Read(buf)
	require.NoError(t, err)

	resp, err := message.DecodeServer(buf[:n])
	require.NoError(t, err)
	return resp
}

func TestCycleEcho(t *testing.T) {
	c, peer := pipeConn(t)

	errc := make(chan error, 1)
	go func() { errc <- c.cycle() }()

	req := encode(t, message.ClientMessage{Echo: &message.EchoMessage{Content: "Hello, World!"}})
	_, err := peer.Write(req)
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, req, buf[:n])
	assert.NoError(t, <-errc)
}

func TestCycleAdd(t *testing.T) {
	c, peer := pipeConn(t)

	errc := make(chan error, 1)
	go func() { errc <- c.cycle() }()

	resp := roundTrip(t, peer, message.ClientMessage{Add: &message.AddRequest{A: 5, B: 7}})
	require.NotNil(t, resp.Add)
	assert.Equal(t, int32(12), resp.Add.Result)
	assert.NoError(t, <-errc)
}

func TestCycleMalformedIsSoftUntilThreshold(t *testing.T) {
	c, peer := pipeConn(t)

	for i := 1; i <= DefaultMaxMalformed; i++ {
		errc := make(chan error, 1)
		go func() { errc <- c.cycle() }()

		_, err := peer.Write(garbage)
		require.NoError(t, err)

		err = <-errc
		require.ErrorIs(t, err, ErrMalformed, "failure %d", i)
		assert.ErrorIs(t, err, message.ErrDecode)
		assert.Equal(t, i, c.failures)
	}

	errc := make(chan error, 1)
	go func() { errc <- c.cycle() }()

	_, err := peer.Write(garbage)
	require.NoError(t, err)
	assert.ErrorIs(t, <-errc, ErrTooManyMalformed)
}

func TestServeSuccessResetsFailures(t *testing.T) {
	c, peer := pipeConn(t)

	done := make(chan error, 1)
	go func() { done <- c.serve(always) }()

	echo := message.ClientMessage{Echo: &message.EchoMessage{Content: "ping"}}

	// fail, fail, succeed, fail, fail, fail keeps the connection open
	for range 2 {
		_, err := peer.Write(garbage)
		require.NoError(t, err)
	}
	roundTrip(t, peer, echo)
	for range 3 {
		_, err := peer.Write(garbage)
		require.NoError(t, err)
	}

	resp := roundTrip(t, peer, echo)
	require.NotNil(t, resp.Echo)
	assert.Equal(t, "ping", resp.Echo.Content)

	// four in a row does not
	for range 4 {
		_, err := peer.Write(garbage)
		require.NoError(t, err)
	}
	assert.ErrorIs(t, <-done, ErrTooManyMalformed)
}

func TestServePeerClose(t *testing.T) {
	c, peer := pipeConn(t)

	done := make(chan error, 1)
	go func() { done <- c.serve(always) }()

	roundTrip(t, peer, message.ClientMessage{Add: &message.AddRequest{A: 1, B: 2}})
	require.NoError(t, peer.Close())

	assert.NoError(t, <-done)
}

func TestServeWriteError(t *testing.T) {
	c, peer := pipeConn(t)

	done := make(chan error, 1)
	go func() { done <- c.serve(always) }()

	_, err := peer.Write(encode(t, message.ClientMessage{Echo: &message.EchoMessage{Content: "lost"}}))
	require.NoError(t, err)
	require.NoError(t, peer.Close())

	assert.ErrorIs(t, <-done, io.ErrClosedPipe)
}

func TestServeNotRunning(t *testing.T) {
	c, _ := pipeConn(t)

	assert.NoError(t, c.serve(func() bool { return false }))
}

func TestServeZeroTolerance(t *testing.T) {
	local, peer := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		peer.Close()
	})
	c := newConn(local, DefaultBufferSize, 0)

	done := make(chan error, 1)
	go func() { done <- c.serve(always) }()

	_, err := peer.Write(garbage)
	require.NoError(t, err)
	assert.ErrorIs(t, <-done, ErrTooManyMalformed)
}
