// internal/link/link.go

// Package link is the broadcast datagram transport between the sender and
// the display. Sends are fire-and-forget; receipt is delivered to a handler
// as raw bytes. No acknowledgement, sequencing or retry exists at this layer.
package link

import (
	"context"
	"errors"
)

var (
	ErrClosed       = errors.New("link: closed")
	ErrInvalidGroup = errors.New("link: group must be an IPv4 multicast address")
	ErrInvalidPort  = errors.New("link: port out of range")
)

// Handler receives one datagram. The slice is owned by the handler.
type Handler func(data []byte)

// Link is an unaddressed, unacknowledged datagram channel.
type Link interface {
	// Send returns as soon as the datagram is handed to the medium.
	Send(data []byte) error
	// Listen delivers datagrams to h until ctx is done or the link closes.
	Listen(ctx context.Context, h Handler) error
	Close() error
}
