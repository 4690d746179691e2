package transport_test

import (
	"testing"

	"github.com/sagernet/sing-connect/transport"
	M "github.com/sagernet/sing/common/metadata"

	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	t.Parallel()
	var state transport.State
	require.Equal(t, transport.ProxyModeDirect, state.Mode())
	require.True(t, state.IPv6Enabled())
	proxy, err := state.Proxy()
	require.NoError(t, err)
	require.Nil(t, proxy)

	config := &transport.ProxyConfig{Type: "http", Server: M.ParseSocksaddrHostPort("127.0.0.1", 8080)}
	state.SetProxy(config)
	proxy, err = state.Proxy()
	require.NoError(t, err)
	require.Same(t, config, proxy)

	state.SetInvalid()
	_, err = state.Proxy()
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)

	state.SetProxy(config)
	require.Equal(t, transport.ProxyModeProxy, state.Mode())

	state.SetInvalid()
	state.ClearProxy()
	proxy, err = state.Proxy()
	require.NoError(t, err)
	require.Nil(t, proxy)

	state.SetProxy(nil)
	require.Equal(t, transport.ProxyModeDirect, state.Mode())
}

func TestStateCopyIsSnapshot(t *testing.T) {
	t.Parallel()
	var state transport.State
	snapshot := state
	state.SetInvalid()
	state.SetIPv6Enabled(false)
	_, err := snapshot.Proxy()
	require.NoError(t, err)
	require.True(t, snapshot.IPv6Enabled())
	require.False(t, state.IPv6Enabled())
}
