// Package message implements the wire codec spoken by the echod daemon.
//
// Messages are protobuf-encoded tagged unions. A [ClientMessage] carries
// either an [EchoMessage] or an [AddRequest]; a [ServerMessage] carries
// either an [EchoMessage] or an [AddResponse]. The encoding is compatible
// with the following schema:
//
//	message EchoMessage   { string content = 1; }
//	message AddRequest    { int32 a = 1; int32 b = 2; }
//	message AddResponse   { int32 result = 1; }
//	message ClientMessage { oneof message { EchoMessage echo_message = 1; AddRequest add_request = 2; } }
//	message ServerMessage { oneof message { EchoMessage echo_message = 1; AddResponse add_response = 2; } }
//
// There is no framing. Each encoded message is self-contained, and the
// decoder consumes exactly the bytes it is given. Bytes that do not parse as
// a known variant produce an error wrapping [ErrDecode].
//
// Example usage:
//
//	data, err := message.EncodeClient(message.ClientMessage{
//	    Add: &message.AddRequest{A: 10, B: 20},
//	})
//	if err != nil {
//	    return err
//	}
//
//	req, err := message.DecodeClient(data)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := message.Respond(req) // resp.Add.Result == 30
package message
