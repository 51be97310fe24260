package message

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeClientBytes(t *testing.T) {
	tests := []struct {
		name string
		msg  ClientMessage
		want []byte
	}{
		{
			name: "echo",
			msg:  ClientMessage{Echo: &EchoMessage{Content: "hi"}},
			want: []byte{0x0a, 0x04, 0x0a, 0x02, 'h', 'i'},
		},
		{
			name: "empty echo keeps variant",
			msg:  ClientMessage{Echo: &EchoMessage{}},
			want: []byte{0x0a, 0x00},
		},
		{
			name: "add",
			msg:  ClientMessage{Add: &AddRequest{A: 10, B: 20}},
			want: []byte{0x12, 0x04, 0x08, 0x0a, 0x10, 0x14},
		},
		{
			name: "add zeros",
			msg:  ClientMessage{Add: &AddRequest{}},
			want: []byte{0x12, 0x00},
		},
		{
			name: "add negative",
			msg:  ClientMessage{Add: &AddRequest{A: -1}},
			want: []byte{0x12, 0x0b, 0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeClient(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRejectsInvalidVariants(t *testing.T) {
	_, err := EncodeClient(ClientMessage{})
	assert.ErrorIs(t, err, ErrNoVariant)

	_, err = EncodeClient(ClientMessage{Echo: &EchoMessage{}, Add: &AddRequest{}})
	assert.ErrorIs(t, err, ErrMultipleVariants)

	_, err = EncodeServer(ServerMessage{})
	assert.ErrorIs(t, err, ErrNoVariant)
}

func TestEchoRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 127, 128, 511, 512, 4096, 1 << 20, 10_000_000}

	for _, size := range sizes {
		content := strings.Repeat("x", size)

		req, err := EncodeClient(ClientMessage{Echo: &EchoMessage{Content: content}})
		require.NoError(t, err)

		decoded, err := DecodeClient(req)
		require.NoError(t, err, "size %d", size)
		require.NotNil(t, decoded.Echo)
		require.Len(t, decoded.Echo.Content, size)

		resp, err := Respond(decoded)
		require.NoError(t, err)

		out, err := EncodeServer(resp)
		require.NoError(t, err)
		assert.Equal(t, req, out, "size %d: echo response bytes differ from request", size)

		back, err := DecodeServer(out)
		require.NoError(t, err)
		require.NotNil(t, back.Echo)
		assert.Equal(t, content, back.Echo.Content)
	}
}

func TestAddRespond(t *testing.T) {
	tests := []struct {
		a, b, want int32
	}{
		{10, 20, 30},
		{5, 7, 12},
		{0, 0, 0},
		{-5, 3, -2},
		{-10, -20, -30},
		{math.MaxInt32, 1, math.MinInt32},
	}

	for _, tt := range tests {
		req, err := EncodeClient(ClientMessage{Add: &AddRequest{A: tt.a, B: tt.b}})
		require.NoError(t, err)

		decoded, err := DecodeClient(req)
		require.NoError(t, err)
		require.NotNil(t, decoded.Add)
		assert.Equal(t, tt.a, decoded.Add.A)
		assert.Equal(t, tt.b, decoded.Add.B)

		resp, err := Respond(decoded)
		require.NoError(t, err)

		out, err := EncodeServer(resp)
		require.NoError(t, err)

		back, err := DecodeServer(out)
		require.NoError(t, err)
		require.NotNil(t, back.Add)
		assert.Equal(t, tt.want, back.Add.Result, "%d + %d", tt.a, tt.b)
	}
}

func TestDecodeClientMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		cause error
	}{
		{name: "empty", input: nil, cause: ErrNoVariant},
		{name: "truncated tag", input: []byte{0xff, 0xff, 0xff}},
		{name: "truncated length", input: []byte{0x0a, 0x05, 'a'}},
		{name: "echo as varint", input: []byte{0x08, 0x01}, cause: ErrWireType},
		{name: "operand as bytes", input: []byte{0x12, 0x03, 0x0a, 0x01, 0x00}, cause: ErrWireType},
		{name: "invalid utf8", input: []byte{0x0a, 0x03, 0x0a, 0x01, 0xff}, cause: ErrInvalidUTF8},
		{name: "unknown field only", input: []byte{0x18, 0x01}, cause: ErrNoVariant},
		{name: "capacity notice", input: []byte(CapacityNotice)},
		{name: "field number zero", input: []byte{0x02, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClient(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.True(t, errdefs.IsInvalidArgument(err))
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause), "err = %v, want cause %v", err, tt.cause)
			}
		})
	}
}

func TestDecodeClientSkipsUnknownFields(t *testing.T) {
	input := []byte{0x18, 0x05, 0x0a, 0x06, 0x20, 0x01, 0x0a, 0x02, 'h', 'i'}

	m, err := DecodeClient(input)
	require.NoError(t, err)
	require.NotNil(t, m.Echo)
	assert.Equal(t, "hi", m.Echo.Content)
}

func TestDecodeClientLastVariantWins(t *testing.T) {
	input := []byte{
		0x0a, 0x02, 0x0a, 0x00,
		0x12, 0x02, 0x08, 0x07,
	}

	m, err := DecodeClient(input)
	require.NoError(t, err)
	assert.Nil(t, m.Echo)
	require.NotNil(t, m.Add)
	assert.Equal(t, int32(7), m.Add.A)
	assert.Equal(t, "add", m.Kind())
}

func TestRespondRequiresVariant(t *testing.T) {
	_, err := Respond(ClientMessage{})
	assert.ErrorIs(t, err, ErrNoVariant)
}
