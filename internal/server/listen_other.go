//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package server

import "syscall"

func reusePortControl(network, address string, c syscall.RawConn) error {
	return ErrReusePort
}
