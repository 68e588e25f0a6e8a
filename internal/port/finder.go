// Package port finds a free TCP port for the inspector to listen on.
//
// The Finder probes candidates upward from a start port by binding a
// transient listener and releasing it immediately. The port is therefore only
// known to be free at probe time: another process may bind it before the
// child does. Concurrent launches racing for the same start port resolve that
// race through the same retry-on-bind-failure loop.
package port

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/ctagard/inspect/internal/errors"
)

const maxPort = 65535

// Finder probes the local host for an unbound TCP port.
type Finder struct {
	host       string
	scanWindow int
	logger     *slog.Logger
}

// Option configures a Finder
type Option func(*Finder)

// WithScanWindow bounds the number of candidates probed per Find call.
func WithScanWindow(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.scanWindow = n
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFinder creates a Finder that binds probes on host.
func NewFinder(host string, opts ...Option) *Finder {
	f := &Finder{
		host:       host,
		scanWindow: 300,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsAvailable reports whether port can currently be bound on the finder's host.
func (f *Finder) IsAvailable(port int) bool {
	if port < 1 || port > maxPort {
		return false
	}
	listener, err := net.Listen("tcp", net.JoinHostPort(f.host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// Find returns the first available port at or above start. Candidates are
// probed one at a time; at most the scan window is tried and the search never
// goes past 65535.
func (f *Finder) Find(ctx context.Context, start int) (int, error) {
	if start < 1 || start > maxPort {
		return 0, errors.ConfigInvalid("startPort", fmt.Sprintf("%d is outside 1-%d", start, maxPort))
	}

	end := start + f.scanWindow - 1
	if end > maxPort {
		end = maxPort
	}

	for port := start; port <= end; port++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if f.IsAvailable(port) {
			f.logger.Debug("found inspector port", "port", port, "attempts", port-start+1)
			return port, nil
		}
		f.logger.Debug("port in use", "port", port)
	}

	return 0, errors.PortExhausted(start, end)
}
