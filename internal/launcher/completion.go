package launcher

import (
	"context"
	"sync"

	"github.com/ctagard/inspect/pkg/types"
)

// Completion is the single outcome of a launch. It settles exactly once,
// after the child has exited and its output has been drained.
type Completion struct {
	once   sync.Once
	done   chan struct{}
	result *types.LaunchResult
	err    error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// settle records the outcome. Only the first call has any effect; it
// reports whether this call was the one that settled.
func (c *Completion) settle(result *types.LaunchResult, err error) bool {
	settled := false
	c.once.Do(func() {
		c.result = result
		c.err = err
		settled = true
		close(c.done)
	})
	return settled
}

// Done is closed once the completion has settled.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the completion settles. The error is nil exactly when
// the child exited with status 0.
func (c *Completion) Wait() (*types.LaunchResult, error) {
	<-c.done
	return c.result, c.err
}

// WaitContext is Wait bounded by ctx. Giving up on the wait does not affect
// the child.
func (c *Completion) WaitContext(ctx context.Context) (*types.LaunchResult, error) {
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
