// cmd/posturelink/signal_unix.go

//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// onCalibrateSignal calls fn on every SIGUSR1, standing in for the local
// calibrate button.
func onCalibrateSignal(fn func()) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
