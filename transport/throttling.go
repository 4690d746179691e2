package transport

import (
	"context"

	E "github.com/sagernet/sing/common/exceptions"

	"golang.org/x/sync/semaphore"
)

// Throttling caps the number of concurrent attempts through inner. Copies
// made by ReplaceTerminals share the same permits.
type Throttling[Over, Route, Conn any] struct {
	inner   Node[Over, Route, Conn]
	permits *semaphore.Weighted
}

func NewThrottling[Over, Route, Conn any](inner Node[Over, Route, Conn], permits int64) *Throttling[Over, Route, Conn] {
	if permits < 1 {
		permits = 1
	}
	return &Throttling[Over, Route, Conn]{inner, semaphore.NewWeighted(permits)}
}

func (c *Throttling[Over, Route, Conn]) Connector() Node[Over, Route, Conn] {
	return c.inner
}

func (c *Throttling[Over, Route, Conn]) ConnectOver(ctx context.Context, over Over, route Route) (Conn, error) {
	err := c.permits.Acquire(ctx, 1)
	if err != nil {
		var zero Conn
		return zero, E.Cause(err, "wait for connect permit")
	}
	defer c.permits.Release(1)
	return c.inner.ConnectOver(ctx, over, route)
}

func (c *Throttling[Over, Route, Conn]) ReplaceTerminals(terminals Terminals) Node[Over, Route, Conn] {
	return &Throttling[Over, Route, Conn]{c.inner.ReplaceTerminals(terminals), c.permits}
}
