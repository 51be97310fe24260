package server

import (
	"context"
	"net"
)

// Binds a TCP listener on address.
func listen(address string, reusePort bool) (*net.TCPListener, error) {
	var lc net.ListenConfig
	if reusePort {
		lc.Control = reusePortControl
	}

	l, err := lc.Listen(context.Background(), "tcp", address)
	if err != nil {
		return nil, err
	}
	return l.(*net.TCPListener), nil
}
