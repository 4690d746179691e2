package transport

import (
	"context"
)

type ComposedRoute[OuterRoute, InnerRoute any] struct {
	Outer OuterRoute
	Inner InnerRoute
}

// Composed connects inner first and then runs outer over the result, e.g.
// TLS over TCP.
type Composed[Over, OuterRoute, InnerRoute, Inner, Conn any] struct {
	outer Node[Inner, OuterRoute, Conn]
	inner Node[Over, InnerRoute, Inner]
}

func NewComposed[Over, OuterRoute, InnerRoute, Inner, Conn any](outer Node[Inner, OuterRoute, Conn], inner Node[Over, InnerRoute, Inner]) *Composed[Over, OuterRoute, InnerRoute, Inner, Conn] {
	return &Composed[Over, OuterRoute, InnerRoute, Inner, Conn]{outer, inner}
}

func (c *Composed[Over, OuterRoute, InnerRoute, Inner, Conn]) Connectors() (Node[Inner, OuterRoute, Conn], Node[Over, InnerRoute, Inner]) {
	return c.outer, c.inner
}

func (c *Composed[Over, OuterRoute, InnerRoute, Inner, Conn]) ConnectOver(ctx context.Context, over Over, route ComposedRoute[OuterRoute, InnerRoute]) (Conn, error) {
	innerConn, err := c.inner.ConnectOver(ctx, over, route.Inner)
	if err != nil {
		var zero Conn
		return zero, err
	}
	conn, err := c.outer.ConnectOver(ctx, innerConn, route.Outer)
	if err != nil {
		closeIfCloser(innerConn)
		var zero Conn
		return zero, err
	}
	return conn, nil
}

func (c *Composed[Over, OuterRoute, InnerRoute, Inner, Conn]) ReplaceTerminals(terminals Terminals) Node[Over, ComposedRoute[OuterRoute, InnerRoute], Conn] {
	return NewComposed(c.outer.ReplaceTerminals(terminals), c.inner.ReplaceTerminals(terminals))
}
