package transport

import (
	"context"
)

// DirectOrProxyRoute holds exactly one of a direct route and a proxy route.
type DirectOrProxyRoute[DirectRoute, ProxyRoute any] struct {
	direct  DirectRoute
	proxy   ProxyRoute
	proxied bool
}

func NewDirectRoute[DirectRoute, ProxyRoute any](route DirectRoute) DirectOrProxyRoute[DirectRoute, ProxyRoute] {
	return DirectOrProxyRoute[DirectRoute, ProxyRoute]{direct: route}
}

func NewProxyRoute[DirectRoute, ProxyRoute any](route ProxyRoute) DirectOrProxyRoute[DirectRoute, ProxyRoute] {
	return DirectOrProxyRoute[DirectRoute, ProxyRoute]{proxy: route, proxied: true}
}

func (r DirectOrProxyRoute[DirectRoute, ProxyRoute]) Direct() (DirectRoute, bool) {
	return r.direct, !r.proxied
}

func (r DirectOrProxyRoute[DirectRoute, ProxyRoute]) Proxy() (ProxyRoute, bool) {
	return r.proxy, r.proxied
}

type DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn any] struct {
	direct Node[Over, DirectRoute, Conn]
	proxy  Node[Over, ProxyRoute, Conn]
}

func NewDirectOrProxy[Over, DirectRoute, ProxyRoute, Conn any](direct Node[Over, DirectRoute, Conn], proxy Node[Over, ProxyRoute, Conn]) *DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn] {
	return &DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn]{direct, proxy}
}

func (c *DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn]) Connectors() (Node[Over, DirectRoute, Conn], Node[Over, ProxyRoute, Conn]) {
	return c.direct, c.proxy
}

func (c *DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn]) ConnectOver(ctx context.Context, over Over, route DirectOrProxyRoute[DirectRoute, ProxyRoute]) (Conn, error) {
	if proxyRoute, isProxy := route.Proxy(); isProxy {
		return c.proxy.ConnectOver(ctx, over, proxyRoute)
	}
	return c.direct.ConnectOver(ctx, over, route.direct)
}

func (c *DirectOrProxy[Over, DirectRoute, ProxyRoute, Conn]) ReplaceTerminals(terminals Terminals) Node[Over, DirectOrProxyRoute[DirectRoute, ProxyRoute], Conn] {
	return NewDirectOrProxy(c.direct.ReplaceTerminals(terminals), c.proxy.ReplaceTerminals(terminals))
}
