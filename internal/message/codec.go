package message

import (
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the oneof variants, shared by both envelopes.
const (
	fieldEcho protowire.Number = 1
	fieldAdd  protowire.Number = 2
)

// Field numbers inside the variant messages.
const (
	fieldContent protowire.Number = 1
	fieldA       protowire.Number = 1
	fieldB       protowire.Number = 2
	fieldResult  protowire.Number = 1
)

// Encodes a client request.
func EncodeClient(m ClientMessage) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Echo != nil {
		return appendEmbedded(nil, fieldEcho, appendEcho(nil, m.Echo)), nil
	}
	var body []byte
	body = appendInt32(body, fieldA, m.Add.A)
	body = appendInt32(body, fieldB, m.Add.B)
	return appendEmbedded(nil, fieldAdd, body), nil
}

// Encodes a server response.
func EncodeServer(m ServerMessage) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Echo != nil {
		return appendEmbedded(nil, fieldEcho, appendEcho(nil, m.Echo)), nil
	}
	return appendEmbedded(nil, fieldAdd, appendInt32(nil, fieldResult, m.Add.Result)), nil
}

// Decodes a client request.
//
// When a variant field occurs more than once the last occurrence wins, as
// with any protobuf oneof. Input that sets no variant is rejected.
func DecodeClient(b []byte) (ClientMessage, error) {
	var m ClientMessage
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case fieldEcho:
			echo, err := decodeEcho(typ, v)
			if err != nil {
				return err
			}
			m = ClientMessage{Echo: echo}
		case fieldAdd:
			body, err := bytesValue(typ, v)
			if err != nil {
				return err
			}
			add := &AddRequest{}
			err = walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
				var err error
				switch num {
				case fieldA:
					add.A, err = int32Value(typ, v)
				case fieldB:
					add.B, err = int32Value(typ, v)
				}
				return err
			})
			if err != nil {
				return err
			}
			m = ClientMessage{Add: add}
		}
		return nil
	})
	if err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := m.validate(); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return m, nil
}

// Decodes a server response.
func DecodeServer(b []byte) (ServerMessage, error) {
	var m ServerMessage
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case fieldEcho:
			echo, err := decodeEcho(typ, v)
			if err != nil {
				return err
			}
			m = ServerMessage{Echo: echo}
		case fieldAdd:
			body, err := bytesValue(typ, v)
			if err != nil {
				return err
			}
			add := &AddResponse{}
			err = walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
				var err error
				if num == fieldResult {
					add.Result, err = int32Value(typ, v)
				}
				return err
			})
			if err != nil {
				return err
			}
			m = ServerMessage{Add: add}
		}
		return nil
	})
	if err != nil {
		return ServerMessage{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := m.validate(); err != nil {
		return ServerMessage{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return m, nil
}

func appendEcho(b []byte, m *EchoMessage) []byte {
	if m.Content == "" {
		return b
	}
	b = protowire.AppendTag(b, fieldContent, protowire.BytesType)
	return protowire.AppendString(b, m.Content)
}

// Appends a length-delimited submessage. An empty body is still written so
// that the variant stays set.
func appendEmbedded(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// Appends an int32 field. Zero is the proto3 default and is omitted.
// Negative values are sign-extended to ten bytes.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func decodeEcho(typ protowire.Type, v []byte) (*EchoMessage, error) {
	body, err := bytesValue(typ, v)
	if err != nil {
		return nil, err
	}
	echo := &EchoMessage{}
	err = walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldContent {
			return nil
		}
		content, err := bytesValue(typ, v)
		if err != nil {
			return err
		}
		if !utf8.Valid(content) {
			return ErrInvalidUTF8
		}
		echo.Content = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return echo, nil
}

// Calls fn with the number, wire type, and raw value of each field in b.
//
// Values of unknown fields are passed to fn like any other and are expected
// to be ignored by it.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(num, typ, b[:n]); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func bytesValue(typ protowire.Type, v []byte) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("%w %d, want bytes", ErrWireType, typ)
	}
	body, n := protowire.ConsumeBytes(v)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return body, nil
}

func int32Value(typ protowire.Type, v []byte) (int32, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("%w %d, want varint", ErrWireType, typ)
	}
	x, n := protowire.ConsumeVarint(v)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return int32(x), nil
}
