package cli

import (
	"fmt"
	"time"

	"github.com/cruciblehq/echod/internal/client"
	"github.com/cruciblehq/echod/internal/message"
)

// Connection flags shared by the request commands.
type RequestFlags struct {
	Timeout time.Duration `help:"Timeout for connecting, sending, and receiving." default:"1s"`
	Retries int           `help:"Attempts before giving up on a request." default:"3"`
}

// Connects, performs one exchange, and disconnects.
func (f RequestFlags) exchange(m message.ClientMessage) (message.ServerMessage, error) {
	c := client.New(RootCmd.Address, client.Options{
		Timeout:    f.Timeout,
		MaxRetries: f.Retries,
	})

	if err := c.Connect(); err != nil {
		return message.ServerMessage{}, err
	}
	defer c.Disconnect()

	return c.SendAndReceive(m)
}

// Represents the 'echod echo' command.
type EchoCmd struct {
	RequestFlags `embed:""`

	Text string `arg:"" help:"Text to send."`
}

// Executes the echo command.
func (c *EchoCmd) Run() error {
	resp, err := c.exchange(message.ClientMessage{Echo: &message.EchoMessage{Content: c.Text}})
	if err != nil {
		return err
	}
	if resp.Echo == nil {
		return fmt.Errorf("unexpected %s response to echo request", resp.Kind())
	}

	fmt.Println(resp.Echo.Content)
	return nil
}

// Represents the 'echod add' command.
type AddCmd struct {
	RequestFlags `embed:""`

	A int32 `arg:"" help:"First operand."`
	B int32 `arg:"" help:"Second operand."`
}

// Executes the add command.
func (c *AddCmd) Run() error {
	resp, err := c.exchange(message.ClientMessage{Add: &message.AddRequest{A: c.A, B: c.B}})
	if err != nil {
		return err
	}
	if resp.Add == nil {
		return fmt.Errorf("unexpected %s response to add request", resp.Kind())
	}

	fmt.Println(resp.Add.Result)
	return nil
}
