// internal/link/udp.go
package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/ipv4"
)

// MaxDatagram is larger than any record; oversized reads are truncated and
// then fail the codec length check.
const MaxDatagram = 64

// readPoll bounds each blocking read so Listen notices cancellation.
const readPoll = 100 * time.Millisecond

// UDPConfig selects the logical channel: one multicast group and port.
type UDPConfig struct {
	Group     string
	Port      int
	Interface string // empty = system default
}

// UDP is a multicast datagram link. Multicast loopback is on so a sender
// and display on the same host hear each other; TTL 1 keeps it on-link.
type UDP struct {
	conn *ipv4.PacketConn
	raw  net.PacketConn
	dst  *net.UDPAddr
}

func DialUDP(cfg UDPConfig) (*UDP, error) {
	group := net.ParseIP(cfg.Group).To4()
	if group == nil || !group.IsMulticast() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroup, cfg.Group)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	var ifi *net.Interface
	if cfg.Interface != "" {
		var err error
		ifi, err = net.InterfaceByName(cfg.Interface)
		if err != nil {
			return nil, fmt.Errorf("link: interface %q: %w", cfg.Interface, err)
		}
	}

	lc := net.ListenConfig{Control: reuseAddr}
	raw, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("link: listen: %w", err)
	}

	p := ipv4.NewPacketConn(raw)
	addr := &net.UDPAddr{IP: group, Port: cfg.Port}

	if err := p.JoinGroup(ifi, addr); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("link: join %s: %w", cfg.Group, err)
	}
	if err := configureMulticast(p, ifi); err != nil {
		_ = raw.Close()
		return nil, err
	}

	return &UDP{conn: p, raw: raw, dst: addr}, nil
}

// multicastOptions is the socket setup DialUDP applies after joining.
type multicastOptions interface {
	SetMulticastInterface(ifi *net.Interface) error
	SetMulticastLoopback(on bool) error
	SetMulticastTTL(ttl int) error
}

// configureMulticast keeps datagrams on the local segment and loops them
// back, so both nodes can share one host. Any failure is fatal.
func configureMulticast(p multicastOptions, ifi *net.Interface) error {
	if ifi != nil {
		if err := p.SetMulticastInterface(ifi); err != nil {
			return fmt.Errorf("link: multicast interface: %w", err)
		}
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		return fmt.Errorf("link: multicast loopback: %w", err)
	}
	if err := p.SetMulticastTTL(1); err != nil {
		return fmt.Errorf("link: multicast ttl: %w", err)
	}
	return nil
}

func (u *UDP) Send(data []byte) error {
	_, err := u.conn.WriteTo(data, nil, u.dst)
	if errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

func (u *UDP) Listen(ctx context.Context, h Handler) error {
	buf := make([]byte, MaxDatagram)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = u.conn.SetReadDeadline(time.Now().Add(readPoll))
		n, _, _, err := u.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return ErrClosed
			}
			return fmt.Errorf("link: read: %w", err)
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		h(data)
	}
}

func (u *UDP) Close() error {
	return u.raw.Close()
}
