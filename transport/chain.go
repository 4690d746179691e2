package transport

import (
	"net"

	N "github.com/sagernet/sing/common/network"
)

// NewTransportChain builds TLS over a throttled choice between a direct
// TCP connection and a proxied one.
func NewTransportChain(dialer N.Dialer, permits int64) TransportChain {
	tlsConnector := NewStatelessTLS()
	var (
		direct  Node[None, TCPRoute, net.Conn]     = NewStatelessDirect(dialer)
		proxied Node[None, ProxiedRoute, net.Conn] = NewStatelessProxied(dialer, tlsConnector)
		outer   Node[net.Conn, TLSRoute, net.Conn] = tlsConnector
	)
	var choice Node[None, DirectOrProxyRoute[TCPRoute, ProxiedRoute], net.Conn] = NewDirectOrProxy(direct, proxied)
	var inner Node[None, DirectOrProxyRoute[TCPRoute, ProxiedRoute], net.Conn] = NewThrottling(choice, permits)
	return NewComposed(outer, inner)
}
