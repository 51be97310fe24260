// Package client implements a TCP client for the echod daemon.
//
// A [Client] holds at most one connection. Each request is written as one
// encoded message and the response is read with a single read, mirroring
// how the server processes its input. Every network operation is bounded by
// the configured timeout.
//
// [Client.SendAndReceive] retries failed exchanges on the same connection up
// to a fixed number of consecutive attempts. The client never reconnects on
// its own.
//
// Example usage:
//
//	c := client.New("localhost:8080", client.Options{Timeout: time.Second})
//	if err := c.Connect(); err != nil {
//	    return err
//	}
//	defer c.Disconnect()
//
//	resp, err := c.SendAndReceive(message.ClientMessage{
//	    Echo: &message.EchoMessage{Content: "hello"},
//	})
package client
