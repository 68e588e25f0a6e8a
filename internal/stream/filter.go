// Package stream relays a child's stderr with the inspector banner removed.
package stream

import (
	"bytes"
	"io"
	"sync"
)

const (
	// BannerPrefix starts the line Node prints when its inspector begins
	// listening, e.g. "Debugger listening on ws://127.0.0.1:9229/<uuid>".
	BannerPrefix = "Debugger listening on "

	// HelpPrefix starts the continuation line Node prints right after the
	// banner. It is only elided when it immediately follows the banner.
	HelpPrefix = "For help, see: https://nodejs.org/en/docs/inspector"

	// maxPending bounds how much of an unterminated line is held for matching.
	maxPending = 64 * 1024
)

type filterState int

const (
	stateAwaitBanner filterState = iota
	stateAwaitHelp
	statePassthrough
)

// BannerFilter is an io.WriteCloser that forwards everything written to it
// except the first inspector banner. Until the banner has been handled it
// buffers by line; afterwards writes go straight through.
type BannerFilter struct {
	mu         sync.Mutex
	w          io.Writer
	pending    []byte
	state      filterState
	suppressed bool
}

// NewBannerFilter creates a filter writing to w.
func NewBannerFilter(w io.Writer) *BannerFilter {
	return &BannerFilter{w: w}
}

// Write implements io.Writer. It always reports len(p) consumed unless the
// underlying writer fails.
func (f *BannerFilter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == statePassthrough {
		if _, err := f.w.Write(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	f.pending = append(f.pending, p...)
	for f.state != statePassthrough {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			break
		}
		line := f.pending[:i+1]
		if err := f.handleLine(line); err != nil {
			return 0, err
		}
		f.pending = f.pending[i+1:]
	}

	if f.state == statePassthrough || len(f.pending) > maxPending {
		if err := f.flushPending(); err != nil {
			return 0, err
		}
		if f.state == stateAwaitHelp {
			f.state = statePassthrough
		}
	}

	return len(p), nil
}

// handleLine decides whether a complete line is forwarded.
func (f *BannerFilter) handleLine(line []byte) error {
	text := bytes.TrimRight(line, "\r\n")

	switch f.state {
	case stateAwaitBanner:
		if bytes.HasPrefix(text, []byte(BannerPrefix)) {
			f.suppressed = true
			f.state = stateAwaitHelp
			return nil
		}
	case stateAwaitHelp:
		f.state = statePassthrough
		if bytes.HasPrefix(text, []byte(HelpPrefix)) {
			return nil
		}
	}

	_, err := f.w.Write(line)
	return err
}

func (f *BannerFilter) flushPending() error {
	if len(f.pending) == 0 {
		return nil
	}
	_, err := f.w.Write(f.pending)
	f.pending = nil
	return err
}

// Close flushes any unterminated trailing output. The underlying writer is
// not closed.
func (f *BannerFilter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = statePassthrough
	return f.flushPending()
}

// Suppressed reports whether the banner has been seen and elided.
func (f *BannerFilter) Suppressed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suppressed
}
