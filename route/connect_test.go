package route_test

import (
	"context"
	"net/netip"
	"testing"
	"time"

	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/route"
	"github.com/sagernet/sing-connect/transport"
	"github.com/sagernet/sing-connect/transport/faketransport"
	E "github.com/sagernet/sing/common/exceptions"
	N "github.com/sagernet/sing/common/network"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestStateBackoff(t *testing.T) {
	mockClock := clock.NewMock()
	state := route.NewState(mockClock)
	const key = "direct chat.example.org 192.0.2.1:443"
	require.Zero(t, state.Delay(key))
	state.RecordOutcome(key, E.New("refused"))
	require.Equal(t, C.RouteBackoffInitial, state.Delay(key))
	state.RecordOutcome(key, E.New("refused"))
	require.Equal(t, 2*C.RouteBackoffInitial, state.Delay(key))
	require.Equal(t, 2, state.Failures(key))
	mockClock.Add(time.Second)
	require.Equal(t, time.Second, state.Delay(key))
	mockClock.Add(time.Hour)
	require.Zero(t, state.Delay(key))
	state.RecordOutcome(key, nil)
	require.Zero(t, state.Failures(key))
}

func TestStateBackoffMax(t *testing.T) {
	state := route.NewState(clock.NewMock())
	for range 10 {
		state.RecordOutcome("key", E.New("refused"))
	}
	require.Equal(t, C.RouteBackoffMax, state.Delay("key"))
}

func TestStateNetworkChanged(t *testing.T) {
	mockClock := clock.NewMock()
	state := route.NewState(mockClock)
	state.RecordOutcome("key", E.New("refused"))
	require.NotZero(t, state.Delay("key"))
	state.NetworkChanged(mockClock.Now())
	require.Zero(t, state.Delay("key"))
	require.Equal(t, mockClock.Now(), state.NetworkChangedAt())
}

func TestStateIPv6(t *testing.T) {
	state := route.NewState(nil)
	require.True(t, state.AllowIPv6())
	state.SetAllowIPv6(false)
	require.False(t, state.AllowIPv6())
}

func resolvedRoutes(t *testing.T) []route.Route {
	routes, err := route.Resolve(context.Background(), newResolver(), route.ResolveOptions{
		Params:    testParams()[:1],
		AllowIPv6: true,
	})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	return routes
}

func fakeChain(fake *faketransport.Transport) transport.TransportChain {
	return transport.NewTransportChain(N.SystemDialer, C.DefaultConnectPermits).ReplaceTerminals(fake)
}

func TestConnectFallsThrough(t *testing.T) {
	unreachable := netip.MustParseAddr("192.0.2.1")
	fake := faketransport.New(func(ctx context.Context, call faketransport.Call) error {
		if call.Role == faketransport.RoleDirect && call.Destination.Addr == unreachable {
			return E.New("connection refused")
		}
		return nil
	})
	defer fake.Close()
	state := route.NewState(clock.NewMock())
	routes := resolvedRoutes(t)
	conn, selected, err := state.Connect(context.Background(), log.NewNOPLogger(), fakeChain(fake), routes, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, routes[1].Key(), selected.Key())
	require.Equal(t, 1, state.Failures(routes[0].Key()))

	ordered := state.Order(routes)
	require.Equal(t, routes[1].Key(), ordered[0].Key())
	require.Equal(t, routes[0].Key(), ordered[1].Key())
}

func TestConnectAllFail(t *testing.T) {
	fake := faketransport.New(func(ctx context.Context, call faketransport.Call) error {
		return E.New("connection refused")
	})
	defer fake.Close()
	state := route.NewState(clock.NewMock())
	routes := resolvedRoutes(t)
	_, _, err := state.Connect(context.Background(), log.NewNOPLogger(), fakeChain(fake), routes, time.Second)
	require.Error(t, err)
	require.Equal(t, len(routes), fake.CallCount())
	for _, resolved := range routes {
		require.Equal(t, 1, state.Failures(resolved.Key()))
	}
}

func TestConnectCancelled(t *testing.T) {
	fake := faketransport.New(nil)
	defer fake.Close()
	state := route.NewState(clock.NewMock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := state.Connect(ctx, log.NewNOPLogger(), fakeChain(fake), resolvedRoutes(t), time.Second)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, fake.CallCount())
}

func TestConnectNoRoutes(t *testing.T) {
	state := route.NewState(nil)
	_, _, err := state.Connect(context.Background(), log.NewNOPLogger(), fakeChain(faketransport.New(nil)), nil, time.Second)
	require.ErrorIs(t, err, route.ErrNoRoutes)
}
