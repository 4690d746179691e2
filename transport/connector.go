package transport

import (
	"context"
	"net"
)

// None is the Over type of connectors that start from nothing, such as a
// TCP dial.
type None = struct{}

// Connector establishes a Conn on top of an existing Over value following
// route.
type Connector[Over, Route, Conn any] interface {
	ConnectOver(ctx context.Context, over Over, route Route) (Conn, error)
}

// Node is a Connector that can be rebuilt with its terminal transports
// swapped out. Wrappers rebuild themselves around their replaced inner
// connectors; terminals return the stand-in for their role. The wrapper
// shape never changes.
type Node[Over, Route, Conn any] interface {
	Connector[Over, Route, Conn]
	ReplaceTerminals(terminals Terminals) Node[Over, Route, Conn]
}

// Terminals supplies the stand-in for every kind of terminal transport.
type Terminals interface {
	Direct() Node[None, TCPRoute, net.Conn]
	TLS() Node[net.Conn, TLSRoute, net.Conn]
	Proxied() Node[None, ProxiedRoute, net.Conn]
}

func closeIfCloser(value any) {
	if closer, isCloser := value.(interface{ Close() error }); isCloser {
		closer.Close()
	}
}
