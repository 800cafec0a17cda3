// internal/link/reuse_unix.go

//go:build linux || darwin || freebsd || netbsd || openbsd

package link

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddr lets a sender and a display bind the same channel port on one host.
func reuseAddr(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if serr == nil {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		}
	})
	if err != nil {
		return err
	}
	return serr
}
