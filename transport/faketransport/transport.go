// Package faketransport provides in-memory stand-ins for the terminal
// transports so tests can run the production connector chain without
// touching the network.
package faketransport

import (
	"context"
	"net"
	"sync"

	"github.com/sagernet/sing-connect/transport"
	M "github.com/sagernet/sing/common/metadata"
)

var _ transport.Terminals = (*Transport)(nil)

type Role uint8

const (
	RoleDirect Role = iota
	RoleTLS
	RoleProxied
)

func (r Role) String() string {
	switch r {
	case RoleDirect:
		return "direct"
	case RoleTLS:
		return "tls"
	case RoleProxied:
		return "proxied"
	default:
		return "unknown"
	}
}

type Call struct {
	Role        Role
	Destination M.Socksaddr
	ServerName  string
	Proxy       *transport.ProxyConfig
}

// Handler decides the outcome of one fake transport operation. A nil
// Handler lets every operation succeed.
type Handler func(ctx context.Context, call Call) error

type Transport struct {
	handler Handler
	access  sync.Mutex
	calls   []Call
	peers   []net.Conn
}

func New(handler Handler) *Transport {
	return &Transport{handler: handler}
}

func (t *Transport) Direct() transport.Node[transport.None, transport.TCPRoute, net.Conn] {
	return (*directConnector)(t)
}

func (t *Transport) TLS() transport.Node[net.Conn, transport.TLSRoute, net.Conn] {
	return (*tlsConnector)(t)
}

func (t *Transport) Proxied() transport.Node[transport.None, transport.ProxiedRoute, net.Conn] {
	return (*proxiedConnector)(t)
}

func (t *Transport) Calls() []Call {
	t.access.Lock()
	defer t.access.Unlock()
	calls := make([]Call, len(t.calls))
	copy(calls, t.calls)
	return calls
}

func (t *Transport) CallCount() int {
	t.access.Lock()
	defer t.access.Unlock()
	return len(t.calls)
}

// Close closes the far ends of every connection handed out.
func (t *Transport) Close() error {
	t.access.Lock()
	peers := t.peers
	t.peers = nil
	t.access.Unlock()
	for _, peer := range peers {
		peer.Close()
	}
	return nil
}

func (t *Transport) record(ctx context.Context, call Call) error {
	t.access.Lock()
	t.calls = append(t.calls, call)
	t.access.Unlock()
	if t.handler == nil {
		return ctx.Err()
	}
	return t.handler(ctx, call)
}

func (t *Transport) newConn() net.Conn {
	conn, peer := net.Pipe()
	t.access.Lock()
	t.peers = append(t.peers, peer)
	t.access.Unlock()
	return conn
}

type directConnector Transport

func (c *directConnector) ConnectOver(ctx context.Context, _ transport.None, route transport.TCPRoute) (net.Conn, error) {
	t := (*Transport)(c)
	err := t.record(ctx, Call{Role: RoleDirect, Destination: route.Destination})
	if err != nil {
		return nil, err
	}
	return t.newConn(), nil
}

func (c *directConnector) ReplaceTerminals(terminals transport.Terminals) transport.Node[transport.None, transport.TCPRoute, net.Conn] {
	return terminals.Direct()
}

type tlsConnector Transport

// ConnectOver hands back the inner connection unchanged.
func (c *tlsConnector) ConnectOver(ctx context.Context, conn net.Conn, route transport.TLSRoute) (net.Conn, error) {
	t := (*Transport)(c)
	err := t.record(ctx, Call{Role: RoleTLS, ServerName: route.ServerName})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *tlsConnector) ReplaceTerminals(terminals transport.Terminals) transport.Node[net.Conn, transport.TLSRoute, net.Conn] {
	return terminals.TLS()
}

type proxiedConnector Transport

func (c *proxiedConnector) ConnectOver(ctx context.Context, _ transport.None, route transport.ProxiedRoute) (net.Conn, error) {
	t := (*Transport)(c)
	err := t.record(ctx, Call{Role: RoleProxied, Destination: route.Destination, Proxy: route.Proxy})
	if err != nil {
		return nil, err
	}
	return t.newConn(), nil
}

func (c *proxiedConnector) ReplaceTerminals(terminals transport.Terminals) transport.Node[transport.None, transport.ProxiedRoute, net.Conn] {
	return terminals.Proxied()
}
