// internal/link/reuse_other.go

//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package link

import "syscall"

func reuseAddr(network, address string, c syscall.RawConn) error { return nil }
