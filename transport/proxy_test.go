package transport_test

import (
	"testing"

	"github.com/sagernet/sing-connect/option"
	"github.com/sagernet/sing-connect/transport"

	"github.com/stretchr/testify/require"
)

func TestNewProxyConfig(t *testing.T) {
	t.Parallel()
	proxy, err := transport.NewProxyConfig(option.ProxyOptions{
		Type:          "socks",
		ServerOptions: option.ServerOptions{Server: "Proxy.Example.org"},
		Username:      "user",
		Password:      "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "socks5", proxy.Type)
	require.Equal(t, "proxy.example.org", proxy.Server.Fqdn)
	require.Equal(t, uint16(1080), proxy.Server.Port)
	require.Equal(t, "socks5://user@proxy.example.org:1080", proxy.String())
	require.Equal(t, "SOCKS5", proxy.DisplayName())

	proxy, err = transport.NewProxyConfig(option.ProxyOptions{
		Type:          "https",
		ServerOptions: option.ServerOptions{Server: "198.51.100.7", ServerPort: 8443},
	})
	require.NoError(t, err)
	require.True(t, proxy.Server.IsIP())
	require.Equal(t, uint16(8443), proxy.Server.Port)
	require.Equal(t, "HTTPS", proxy.DisplayName())
}

func TestNewProxyConfigInvalid(t *testing.T) {
	t.Parallel()
	for name, options := range map[string]option.ProxyOptions{
		"missing type":     {ServerOptions: option.ServerOptions{Server: "proxy.example.org"}},
		"unknown type":     {Type: "ftp", ServerOptions: option.ServerOptions{Server: "proxy.example.org"}},
		"missing server":   {Type: "http"},
		"bad host":         {Type: "http", ServerOptions: option.ServerOptions{Server: "exa mple..org"}},
		"socks4a password": {Type: "socks4a", ServerOptions: option.ServerOptions{Server: "proxy.example.org"}, Username: "user", Password: "secret"},
		"password only":    {Type: "socks5", ServerOptions: option.ServerOptions{Server: "proxy.example.org"}, Password: "secret"},
	} {
		_, err := transport.NewProxyConfig(options)
		require.ErrorIs(t, err, transport.ErrInvalidProxyConfig, name)
	}
}
