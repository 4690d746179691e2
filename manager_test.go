package connect

import (
	"context"
	"testing"
	"time"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	"github.com/sagernet/sing-connect/transport"
	"github.com/sagernet/sing-connect/transport/faketransport"
	E "github.com/sagernet/sing/common/exceptions"

	"github.com/benbjohnson/clock"
	mDNS "github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

type failingExchanger struct{}

func (failingExchanger) ExchangeContext(ctx context.Context, message *mDNS.Msg, address string) (*mDNS.Msg, time.Duration, error) {
	return nil, 0, E.New("dns unavailable")
}

func newTestManager(t *testing.T, handler faketransport.Handler) (*Manager, *clock.Mock, *faketransport.Transport) {
	mockClock := clock.NewMock()
	manager := NewManagerWithOptions(Options{
		Environment:  env.Staging,
		UserAgent:    "test",
		Logger:       log.NewNOPLogger(),
		Clock:        mockClock,
		DNSServers:   []string{"203.0.113.1:53"},
		DNSExchanger: failingExchanger{},
	})
	fake := faketransport.New(handler)
	manager.replaceTerminals(fake)
	t.Cleanup(func() {
		manager.Close()
		fake.Close()
	})
	return manager, mockClock, fake
}

func TestNetworkChangeDebounce(t *testing.T) {
	manager, mockClock, _ := newTestManager(t, nil)
	var fired int
	manager.NetworkChangeEvent().Subscribe(func() {
		fired++
	})
	debounce := C.NetworkChangeDebounce
	start := mockClock.Now().Add(10 * debounce)
	for _, step := range []struct {
		at    time.Time
		fired int
	}{
		{start, 1},
		{start, 1},
		{start.Add(debounce / 2), 1},
		{start.Add(debounce), 2},
		{start, 2},
		{start.Add(debounce * 3 / 2), 2},
		{start.Add(4 * debounce), 3},
	} {
		manager.OnNetworkChange(step.at)
		require.Equal(t, step.fired, fired, "at %s", step.at.Sub(start))
	}
}

func TestNetworkChangeBeforeConstruction(t *testing.T) {
	manager, mockClock, _ := newTestManager(t, nil)
	var fired int
	manager.NetworkChangeEvent().Subscribe(func() {
		fired++
	})
	manager.OnNetworkChange(mockClock.Now().Add(-time.Hour))
	manager.OnNetworkChange(mockClock.Now().Add(C.NetworkChangeDebounce / 2))
	require.Zero(t, fired)
}

func TestNetworkChangeResetsBackoff(t *testing.T) {
	manager, mockClock, _ := newTestManager(t, nil)
	manager.routeState.RecordOutcome("key", E.New("refused"))
	require.NotZero(t, manager.routeState.Delay("key"))
	now := mockClock.Now().Add(time.Minute)
	manager.OnNetworkChange(now)
	require.Zero(t, manager.routeState.Delay("key"))
	require.Equal(t, now, manager.routeState.NetworkChangedAt())
}

func TestInvalidProxyFailsWithoutIO(t *testing.T) {
	manager, _, fake := newTestManager(t, nil)
	manager.SetInvalidProxy()
	_, err := manager.ConnectChat(context.Background())
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	_, err = manager.ConnectEnclave(context.Background(), env.EnclaveCDSI)
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	require.Zero(t, fake.CallCount())
}

func TestSetProxyOptionsInvalid(t *testing.T) {
	manager, _, fake := newTestManager(t, nil)
	err := manager.SetProxyOptions(option.ProxyOptions{Type: "gopher"})
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	_, err = manager.IsUsingProxy()
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	_, err = manager.ConnectChat(context.Background())
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	require.Zero(t, fake.CallCount())
}

func TestIsUsingProxy(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	usingProxy, err := manager.IsUsingProxy()
	require.NoError(t, err)
	require.False(t, usingProxy)

	require.NoError(t, manager.SetProxyOptions(option.ProxyOptions{
		Type:          C.TypeHTTP,
		ServerOptions: option.ServerOptions{Server: "proxy.example.org"},
	}))
	usingProxy, err = manager.IsUsingProxy()
	require.NoError(t, err)
	require.True(t, usingProxy)

	manager.SetInvalidProxy()
	usingProxy, err = manager.IsUsingProxy()
	require.ErrorIs(t, err, transport.ErrInvalidProxyConfig)
	require.False(t, usingProxy)

	manager.ClearProxy()
	usingProxy, err = manager.IsUsingProxy()
	require.NoError(t, err)
	require.False(t, usingProxy)
}

func TestConnectChatStaticFallback(t *testing.T) {
	manager, _, fake := newTestManager(t, nil)
	conn, err := manager.ConnectChat(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	calls := fake.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, faketransport.RoleDirect, calls[0].Role)
	require.Contains(t, env.Staging.Chat.IPv4, calls[0].Destination.Addr)
	require.Equal(t, faketransport.RoleTLS, calls[1].Role)
	require.Equal(t, env.Staging.Chat.Connect.Hostname, calls[1].ServerName)
	require.True(t, conn.Route.Params.IsDirect())
}

func TestConnectThroughProxy(t *testing.T) {
	manager, _, fake := newTestManager(t, nil)
	require.NoError(t, manager.SetProxyOptions(option.ProxyOptions{
		Type:          C.TypeSOCKS5,
		ServerOptions: option.ServerOptions{Server: "proxy.example.org", ServerPort: 1080},
	}))
	conn, err := manager.ConnectEnclave(context.Background(), env.EnclaveSVR2)
	require.NoError(t, err)
	defer conn.Close()
	calls := fake.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, faketransport.RoleProxied, calls[0].Role)
	require.Equal(t, env.Staging.SVR2.DomainConfig.Connect.Hostname, calls[0].Destination.Fqdn)
	require.Equal(t, "proxy.example.org:1080", calls[0].Proxy.Server.String())
}

func TestConnectUnknownEnclave(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	_, err := manager.ConnectEnclave(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrUnknownEnclave)
}

func TestCensorshipCircumventionToggle(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	initial := manager.Endpoints()
	require.Equal(t, C.DomainFrontingDisabled, initial.DomainFronting())
	manager.SetCensorshipCircumventionEnabled(true)
	enabled := manager.Endpoints()
	require.Equal(t, C.DomainFrontingOneDomainPerProxy, enabled.DomainFronting())
	require.Greater(t, enabled.Chat().ParamsLen(), initial.Chat().ParamsLen())
	manager.SetCensorshipCircumventionEnabled(false)
	disabled := manager.Endpoints()
	require.Equal(t, initial.Chat().ParamsLen(), disabled.Chat().ParamsLen())
	require.Equal(t, initial.CDSI().ParamsLen(), disabled.CDSI().ParamsLen())
	require.Equal(t, initial.SVR2().ParamsLen(), disabled.SVR2().ParamsLen())
	require.Equal(t, 1, initial.Chat().ParamsLen())
}

func TestSetIPv6Enabled(t *testing.T) {
	manager, _, fake := newTestManager(t, nil)
	manager.SetIPv6Enabled(false)
	require.False(t, manager.TransportState().IPv6Enabled())
	require.False(t, manager.routeState.AllowIPv6())
	conn, err := manager.ConnectChat(context.Background())
	require.NoError(t, err)
	conn.Close()
	for _, call := range fake.Calls() {
		if call.Role == faketransport.RoleDirect {
			require.True(t, call.Destination.Addr.Is4())
		}
	}
	manager.SetIPv6Enabled(true)
	require.True(t, manager.TransportState().IPv6Enabled())
	require.True(t, manager.routeState.AllowIPv6())
}

func TestConnectFallsBackToNextAddress(t *testing.T) {
	first := env.Staging.Chat.IPv4[0]
	manager, _, fake := newTestManager(t, func(ctx context.Context, call faketransport.Call) error {
		if call.Role == faketransport.RoleDirect && call.Destination.Addr == first {
			return E.New("connection refused")
		}
		return nil
	})
	conn, err := manager.ConnectChat(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	direct, _ := conn.Route.Transport.Inner.Direct()
	require.NotEqual(t, first, direct.Destination.Addr)
	require.Greater(t, fake.CallCount(), 2)
}

func TestNewManagerEnvironments(t *testing.T) {
	for _, environment := range []C.Environment{C.EnvironmentStaging, C.EnvironmentProduction} {
		manager := NewManager(environment, "test")
		require.Equal(t, environment, manager.Environment().Name)
		require.Equal(t, 1, manager.Endpoints().Chat().ParamsLen())
		require.NoError(t, manager.Close())
	}
}
