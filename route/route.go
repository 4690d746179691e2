package route

import (
	"context"
	"math/rand/v2"
	"net/netip"
	"slices"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/transport"
	E "github.com/sagernet/sing/common/exceptions"
	F "github.com/sagernet/sing/common/format"
	M "github.com/sagernet/sing/common/metadata"
)

var ErrNoRoutes = E.New("no routes")

// Route is one concrete attempt: the params it serves, the front domain (or
// host) used as TLS server name, and the transport route handed to the
// chain.
type Route struct {
	Params     env.ConnectionParams
	ServerName string
	Transport  transport.TransportRoute
}

func (r Route) Key() string {
	if proxied, isProxy := r.Transport.Inner.Proxy(); isProxy {
		return F.ToString(r.Params.RouteType, " ", r.ServerName, " ", proxied.Destination, " via ", proxied.Proxy)
	}
	direct, _ := r.Transport.Inner.Direct()
	return F.ToString(r.Params.RouteType, " ", r.ServerName, " ", direct.Destination)
}

func (r Route) String() string {
	return r.Key()
}

type Resolver interface {
	Lookup(ctx context.Context, host string, ipv6 bool) ([]netip.Addr, error)
}

type ResolveOptions struct {
	Params    []env.ConnectionParams
	Fronting  C.DomainFronting
	Proxy     *transport.ProxyConfig
	AllowIPv6 bool
	// Pick returns an index in [0, n). Defaults to a uniform random choice.
	Pick func(n int) int
}

// Resolve expands params into routes in params order. Hosts are looked up
// only when no proxy is configured; through a proxy the destination stays a
// domain name.
func Resolve(ctx context.Context, resolver Resolver, options ResolveOptions) ([]Route, error) {
	pick := options.Pick
	if pick == nil {
		pick = rand.IntN
	}
	var (
		routes []Route
		errors []error
	)
	for _, params := range options.Params {
		var serverName string
		if params.IsDirect() {
			if len(params.SNIs) > 0 {
				serverName = params.SNIs[0]
			} else {
				serverName = params.Host
			}
		} else {
			if options.Fronting == C.DomainFrontingDisabled || len(params.SNIs) == 0 {
				continue
			}
			serverName = params.SNIs[pick(len(params.SNIs))]
		}
		tlsRoute := transport.TLSRoute{
			ServerName: serverName,
			NextProtos: slices.Clone(params.ALPN),
		}
		host := serverName
		if params.IsDirect() {
			host = params.Host
		}
		if options.Proxy != nil {
			routes = append(routes, Route{
				Params:     params,
				ServerName: serverName,
				Transport: transport.NewProxiedTransportRoute(tlsRoute, transport.ProxiedRoute{
					Proxy:       options.Proxy,
					Destination: M.ParseSocksaddrHostPort(host, params.Port),
				}),
			})
			continue
		}
		addresses, err := resolver.Lookup(ctx, host, options.AllowIPv6)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errors = append(errors, E.Cause(err, params.RouteType, " ", host))
			continue
		}
		for _, address := range addresses {
			if address.Is6() && !options.AllowIPv6 {
				continue
			}
			routes = append(routes, Route{
				Params:     params,
				ServerName: serverName,
				Transport: transport.NewDirectTransportRoute(tlsRoute, transport.TCPRoute{
					Destination: M.SocksaddrFrom(address, params.Port),
				}),
			})
		}
	}
	if len(routes) == 0 {
		if len(errors) > 0 {
			return nil, E.Cause(E.Errors(errors...), "resolve routes")
		}
		return nil, ErrNoRoutes
	}
	return routes, nil
}
