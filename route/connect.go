package route

import (
	"cmp"
	"context"
	"net"
	"slices"
	"time"

	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/transport"
	E "github.com/sagernet/sing/common/exceptions"
)

// Order returns routes with those currently backed off moved to the end,
// shortest remaining delay first. Routes that are not backed off keep their
// relative order.
func (s *State) Order(routes []Route) []Route {
	delays := make(map[string]time.Duration, len(routes))
	for _, route := range routes {
		delays[route.Key()] = s.Delay(route.Key())
	}
	ordered := slices.Clone(routes)
	slices.SortStableFunc(ordered, func(a, b Route) int {
		return cmp.Compare(delays[a.Key()], delays[b.Key()])
	})
	return ordered
}

// Connect tries routes one at a time until one succeeds. Each try gets its
// own timeout and its outcome is recorded. A cancelled ctx ends the loop
// without penalizing the route in flight.
func (s *State) Connect(ctx context.Context, logger log.ContextLogger, chain transport.TransportChain, routes []Route, timeout time.Duration) (net.Conn, Route, error) {
	if len(routes) == 0 {
		return nil, Route{}, ErrNoRoutes
	}
	var errors []error
	for _, route := range s.Order(routes) {
		if ctx.Err() != nil {
			errors = append(errors, ctx.Err())
			break
		}
		conn, err := s.connectOne(ctx, chain, route, timeout)
		if err == nil {
			s.RecordOutcome(route.Key(), nil)
			logger.DebugContext(ctx, "connected via ", route)
			return conn, route, nil
		}
		if ctx.Err() != nil {
			errors = append(errors, E.Cause(ctx.Err(), route.String()))
			break
		}
		s.RecordOutcome(route.Key(), err)
		logger.DebugContext(ctx, "route ", route, " failed: ", err)
		errors = append(errors, E.Cause(err, route.String()))
	}
	return nil, Route{}, E.Errors(errors...)
}

func (s *State) connectOne(ctx context.Context, chain transport.TransportChain, route Route, timeout time.Duration) (net.Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return chain.ConnectOver(ctx, transport.None{}, route.Transport)
}
