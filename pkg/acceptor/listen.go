package acceptor

import (
	"context"
	"fmt"
	"net"
)

// Listen binds a TCP listener on addr with platform socket options applied.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: controlSocket}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return ln, nil
}
