package message

// Sent verbatim, instead of a protobuf message, to a connection the server
// refuses because it is at capacity.
const CapacityNotice = "Server is at full capacity.\n"

// Carries a text payload that the server sends back unchanged.
type EchoMessage struct {
	Content string
}

// Asks the server to add two integers.
type AddRequest struct {
	A int32
	B int32
}

// Holds the sum computed for an [AddRequest].
type AddResponse struct {
	Result int32
}

// A request sent from a client to the server.
//
// Exactly one field must be set.
type ClientMessage struct {
	Echo *EchoMessage
	Add  *AddRequest
}

// Returns the name of the variant that is set, or "none".
func (m ClientMessage) Kind() string {
	switch {
	case m.Echo != nil && m.Add != nil:
		return "multiple"
	case m.Echo != nil:
		return "echo"
	case m.Add != nil:
		return "add"
	}
	return "none"
}

func (m ClientMessage) validate() error {
	switch m.Kind() {
	case "none":
		return ErrNoVariant
	case "multiple":
		return ErrMultipleVariants
	}
	return nil
}

// A response sent from the server to a client.
//
// Exactly one field must be set.
type ServerMessage struct {
	Echo *EchoMessage
	Add  *AddResponse
}

// Returns the name of the variant that is set, or "none".
func (m ServerMessage) Kind() string {
	switch {
	case m.Echo != nil && m.Add != nil:
		return "multiple"
	case m.Echo != nil:
		return "echo"
	case m.Add != nil:
		return "add"
	}
	return "none"
}

func (m ServerMessage) validate() error {
	switch m.Kind() {
	case "none":
		return ErrNoVariant
	case "multiple":
		return ErrMultipleVariants
	}
	return nil
}

// Computes the response for a request.
//
// Echo requests are answered with an identical [EchoMessage]. Add requests
// are answered with the int32 sum of both operands, which wraps around on
// overflow.
func Respond(req ClientMessage) (ServerMessage, error) {
	if err := req.validate(); err != nil {
		return ServerMessage{}, err
	}
	if req.Echo != nil {
		return ServerMessage{Echo: &EchoMessage{Content: req.Echo.Content}}, nil
	}
	return ServerMessage{Add: &AddResponse{Result: req.Add.A + req.Add.B}}, nil
}
