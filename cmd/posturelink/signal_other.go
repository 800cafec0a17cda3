// cmd/posturelink/signal_other.go

//go:build !unix

package main

func onCalibrateSignal(func()) (stop func()) { return func() {} }
