package transport

import (
	"net"

	M "github.com/sagernet/sing/common/metadata"
)

type TCPRoute struct {
	Destination M.Socksaddr
}

type TLSRoute struct {
	ServerName string
	NextProtos []string
}

// ProxiedRoute reaches Destination through Proxy. Destination may stay a
// domain name, in which case the proxy resolves it.
type ProxiedRoute struct {
	Proxy       *ProxyConfig
	Destination M.Socksaddr
}

type (
	TransportRoute = ComposedRoute[TLSRoute, DirectOrProxyRoute[TCPRoute, ProxiedRoute]]
	TransportChain = Node[None, TransportRoute, net.Conn]
)

func NewDirectTransportRoute(tlsRoute TLSRoute, tcpRoute TCPRoute) TransportRoute {
	return TransportRoute{
		Outer: tlsRoute,
		Inner: NewDirectRoute[TCPRoute, ProxiedRoute](tcpRoute),
	}
}

func NewProxiedTransportRoute(tlsRoute TLSRoute, proxiedRoute ProxiedRoute) TransportRoute {
	return TransportRoute{
		Outer: tlsRoute,
		Inner: NewProxyRoute[TCPRoute, ProxiedRoute](proxiedRoute),
	}
}
