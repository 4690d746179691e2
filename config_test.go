package connect

import (
	"testing"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	"github.com/sagernet/sing-connect/transport"

	"github.com/stretchr/testify/require"
)

func TestNewManagerFromOptions(t *testing.T) {
	manager, err := NewManagerFromOptions(option.Options{
		Environment: "production",
		UserAgent:   "test",
		Proxy: &option.ProxyOptions{
			Type:          C.TypeSOCKS5,
			ServerOptions: option.ServerOptions{Server: "127.0.0.1", ServerPort: 1080},
		},
		CensorshipCircumvention: true,
		DisableIPv6:             true,
	}, log.NewNOPLogger())
	require.NoError(t, err)
	defer manager.Close()
	require.Equal(t, C.EnvironmentProduction, manager.Environment().Name)
	usingProxy, err := manager.IsUsingProxy()
	require.NoError(t, err)
	require.True(t, usingProxy)
	require.False(t, manager.TransportState().IPv6Enabled())
	require.Equal(t, C.DomainFrontingOneDomainPerProxy, manager.Endpoints().DomainFronting())
}

func TestNewManagerFromOptionsInvalid(t *testing.T) {
	_, err := NewManagerFromOptions(option.Options{Environment: "moon"}, log.NewNOPLogger())
	require.Error(t, err)
	_, err = NewManagerFromOptions(option.Options{
		Proxy: &option.ProxyOptions{Type: C.TypeSOCKS4A},
	}, log.NewNOPLogger())
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
}
