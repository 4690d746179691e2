package transport

import (
	"context"
	"net"
	"os"

	C "github.com/sagernet/sing-connect/constant"
	E "github.com/sagernet/sing/common/exceptions"
	M "github.com/sagernet/sing/common/metadata"
	N "github.com/sagernet/sing/common/network"
	sHTTP "github.com/sagernet/sing/protocol/http"
	"github.com/sagernet/sing/protocol/socks"

	utls "github.com/metacubex/utls"
)

var (
	_ Node[None, TCPRoute, net.Conn]     = (*StatelessDirect)(nil)
	_ Node[net.Conn, TLSRoute, net.Conn] = (*StatelessTLS)(nil)
	_ Node[None, ProxiedRoute, net.Conn] = (*StatelessProxied)(nil)
)

// StatelessDirect opens a TCP connection to the route destination.
type StatelessDirect struct {
	dialer N.Dialer
}

func NewStatelessDirect(dialer N.Dialer) *StatelessDirect {
	if dialer == nil {
		dialer = N.SystemDialer
	}
	return &StatelessDirect{dialer}
}

func (c *StatelessDirect) ConnectOver(ctx context.Context, _ None, route TCPRoute) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, C.TCPTimeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, N.NetworkTCP, route.Destination)
	if err != nil {
		return nil, E.Cause(err, "dial ", route.Destination)
	}
	return conn, nil
}

func (c *StatelessDirect) ReplaceTerminals(terminals Terminals) Node[None, TCPRoute, net.Conn] {
	return terminals.Direct()
}

// StatelessTLS runs a client handshake over an existing connection with a
// browser fingerprint.
type StatelessTLS struct {
	clientHello utls.ClientHelloID
}

func NewStatelessTLS() *StatelessTLS {
	return &StatelessTLS{utls.HelloChrome_Auto}
}

func (c *StatelessTLS) ConnectOver(ctx context.Context, conn net.Conn, route TLSRoute) (net.Conn, error) {
	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: route.ServerName,
		NextProtos: route.NextProtos,
	}, c.clientHello)
	if len(route.NextProtos) > 0 {
		err := tlsConn.BuildHandshakeState()
		if err != nil {
			return nil, E.Cause(err, "build tls handshake")
		}
		for _, extension := range tlsConn.Extensions {
			if alpnExtension, isALPN := extension.(*utls.ALPNExtension); isALPN {
				alpnExtension.AlpnProtocols = route.NextProtos
				err = tlsConn.BuildHandshakeState()
				if err != nil {
					return nil, E.Cause(err, "build tls handshake")
				}
				break
			}
		}
	}
	ctx, cancel := context.WithTimeout(ctx, C.TLSHandshakeTimeout)
	defer cancel()
	err := tlsConn.HandshakeContext(ctx)
	if err != nil {
		return nil, E.Cause(err, "tls handshake with ", route.ServerName)
	}
	return tlsConn, nil
}

func (c *StatelessTLS) ReplaceTerminals(terminals Terminals) Node[net.Conn, TLSRoute, net.Conn] {
	return terminals.TLS()
}

// StatelessProxied reaches the destination through the route's proxy.
type StatelessProxied struct {
	dialer N.Dialer
	tls    *StatelessTLS
}

func NewStatelessProxied(dialer N.Dialer, tlsConnector *StatelessTLS) *StatelessProxied {
	if dialer == nil {
		dialer = N.SystemDialer
	}
	if tlsConnector == nil {
		tlsConnector = NewStatelessTLS()
	}
	return &StatelessProxied{dialer, tlsConnector}
}

func (c *StatelessProxied) ConnectOver(ctx context.Context, _ None, route ProxiedRoute) (net.Conn, error) {
	if route.Proxy == nil {
		return nil, E.Cause(ErrInvalidProxyConfig, "missing proxy")
	}
	client, err := c.client(route.Proxy)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, C.TCPTimeout+C.TLSHandshakeTimeout)
	defer cancel()
	conn, err := client.DialContext(ctx, N.NetworkTCP, route.Destination)
	if err != nil {
		return nil, E.Cause(err, "connect to ", route.Destination, " through ", route.Proxy)
	}
	return conn, nil
}

func (c *StatelessProxied) client(proxy *ProxyConfig) (N.Dialer, error) {
	switch proxy.Type {
	case C.TypeSOCKS4A:
		return socks.NewClient(c.dialer, proxy.Server, socks.Version4A, proxy.Username, ""), nil
	case C.TypeSOCKS5:
		return socks.NewClient(c.dialer, proxy.Server, socks.Version5, proxy.Username, proxy.Password), nil
	case C.TypeHTTP:
		return sHTTP.NewClient(sHTTP.Options{
			Dialer:   c.dialer,
			Server:   proxy.Server,
			Username: proxy.Username,
			Password: proxy.Password,
		}), nil
	case C.TypeHTTPS:
		return sHTTP.NewClient(sHTTP.Options{
			Dialer:   &tlsDialer{c.dialer, c.tls},
			Server:   proxy.Server,
			Username: proxy.Username,
			Password: proxy.Password,
		}), nil
	default:
		return nil, E.Cause(ErrInvalidProxyConfig, "unsupported proxy type: ", proxy.Type)
	}
}

func (c *StatelessProxied) ReplaceTerminals(terminals Terminals) Node[None, ProxiedRoute, net.Conn] {
	return terminals.Proxied()
}

var _ N.Dialer = (*tlsDialer)(nil)

// tlsDialer wraps connections to an HTTPS proxy in TLS.
type tlsDialer struct {
	dialer N.Dialer
	tls    *StatelessTLS
}

func (d *tlsDialer) DialContext(ctx context.Context, network string, destination M.Socksaddr) (net.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, network, destination)
	if err != nil {
		return nil, err
	}
	tlsConn, err := d.tls.ConnectOver(ctx, conn, TLSRoute{ServerName: destination.AddrString()})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func (d *tlsDialer) ListenPacket(ctx context.Context, destination M.Socksaddr) (net.PacketConn, error) {
	return nil, os.ErrInvalid
}
