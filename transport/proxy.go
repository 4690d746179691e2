package transport

import (
	"net/netip"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/option"
	E "github.com/sagernet/sing/common/exceptions"
	F "github.com/sagernet/sing/common/format"
	M "github.com/sagernet/sing/common/metadata"

	"golang.org/x/net/idna"
)

var ErrInvalidProxyConfig = E.New("invalid proxy configuration")

// ProxyConfig is a validated proxy. It is never modified after
// NewProxyConfig returns, so it may be shared between attempts.
type ProxyConfig struct {
	Type     string
	Server   M.Socksaddr
	Username string
	Password string
}

func NewProxyConfig(options option.ProxyOptions) (*ProxyConfig, error) {
	proxyType := options.Type
	switch proxyType {
	case "socks":
		proxyType = C.TypeSOCKS5
	case C.TypeSOCKS4A, C.TypeSOCKS5, C.TypeHTTP, C.TypeHTTPS:
	case "":
		return nil, E.Cause(ErrInvalidProxyConfig, "missing proxy type")
	default:
		return nil, E.Cause(ErrInvalidProxyConfig, "unsupported proxy type: ", options.Type)
	}
	if options.Server == "" {
		return nil, E.Cause(ErrInvalidProxyConfig, "missing proxy server")
	}
	host := options.Server
	if _, err := netip.ParseAddr(host); err != nil {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, E.Cause(ErrInvalidProxyConfig, "bad proxy host ", options.Server, ": ", err)
		}
	}
	port := options.ServerPort
	if port == 0 {
		port = C.DefaultProxyPort(proxyType)
	}
	if proxyType == C.TypeSOCKS4A && options.Password != "" {
		return nil, E.Cause(ErrInvalidProxyConfig, "socks4a does not support password authentication")
	}
	if options.Password != "" && options.Username == "" {
		return nil, E.Cause(ErrInvalidProxyConfig, "proxy password without username")
	}
	return &ProxyConfig{
		Type:     proxyType,
		Server:   option.ServerOptions{Server: host, ServerPort: port}.Build(),
		Username: options.Username,
		Password: options.Password,
	}, nil
}

func (c *ProxyConfig) DisplayName() string {
	return C.ProxyDisplayName(c.Type)
}

func (c *ProxyConfig) String() string {
	if c.Username != "" {
		return F.ToString(c.Type, "://", c.Username, "@", c.Server)
	}
	return F.ToString(c.Type, "://", c.Server)
}
