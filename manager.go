package connect

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/sagernet/sing-connect/common/event"
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/dns"
	"github.com/sagernet/sing-connect/endpoint"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	"github.com/sagernet/sing-connect/route"
	"github.com/sagernet/sing-connect/transport"
	E "github.com/sagernet/sing/common/exceptions"
	N "github.com/sagernet/sing/common/network"

	"github.com/benbjohnson/clock"
)

var ErrUnknownEnclave = E.New("unknown enclave")

type Options struct {
	Environment  env.Env
	UserAgent    string
	Logger       log.ContextLogger
	Clock        clock.Clock
	DNSServers   []string
	DNSExchanger dns.Exchanger
	Dialer       N.Dialer
	// ConnectPermits bounds concurrent base transport connects. Defaults to
	// C.DefaultConnectPermits.
	ConnectPermits int64
}

// Manager owns the connection state shared by every service client of one
// application: the endpoint set, the base transport configuration, route
// backoff and network change tracking.
type Manager struct {
	environment   env.Env
	userAgent     env.UserAgent
	logger        log.ContextLogger
	clock         clock.Clock
	resolver      *dns.Resolver
	routeState    *route.State
	chain         transport.TransportChain
	networkChange *event.Event

	endpointAccess sync.Mutex
	endpoints      *endpoint.Set

	transportAccess sync.Mutex
	transportState  transport.State

	networkChangeAccess sync.Mutex
	lastNetworkChange   time.Time
}

// Connection is an established base connection together with the route
// that produced it.
type Connection struct {
	net.Conn
	Route route.Route
}

func NewManager(environment C.Environment, userAgent string) *Manager {
	return NewManagerWithOptions(Options{
		Environment: env.FromEnvironment(environment),
		UserAgent:   userAgent,
	})
}

func NewManagerWithOptions(options Options) *Manager {
	logger := options.Logger
	if logger == nil {
		logger = log.StdLogger()
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.New()
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = N.SystemDialer
	}
	permits := options.ConnectPermits
	if permits == 0 {
		permits = C.DefaultConnectPermits
	}
	networkChange := event.New()
	userAgent := env.NewUserAgent(options.UserAgent)
	return &Manager{
		environment: options.Environment,
		userAgent:   userAgent,
		logger:      logger,
		clock:       clk,
		resolver: dns.NewResolver(dns.Options{
			Logger:         logger,
			Servers:        options.DNSServers,
			Exchanger:      options.DNSExchanger,
			StaticFallback: options.Environment.StaticFallback(),
			NetworkChange:  networkChange,
		}),
		routeState:        route.NewState(clk),
		chain:             transport.NewTransportChain(dialer, permits),
		networkChange:     networkChange,
		endpoints:         endpoint.NewSet(options.Environment, userAgent, false, networkChange, logger),
		lastNetworkChange: clk.Now(),
	}
}

func (m *Manager) Environment() env.Env {
	return m.environment
}

func (m *Manager) UserAgent() env.UserAgent {
	return m.userAgent
}

func (m *Manager) SetProxy(proxy *transport.ProxyConfig) {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	m.transportState.SetProxy(proxy)
}

// SetInvalidProxy makes connection attempts fail with
// transport.ErrInvalidProxyConfig until a proxy is set or cleared.
func (m *Manager) SetInvalidProxy() {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	m.transportState.SetInvalid()
}

func (m *Manager) ClearProxy() {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	m.transportState.ClearProxy()
}

// SetProxyOptions validates options and installs the resulting proxy. On
// error the invalid proxy marker is installed instead and the error is
// returned.
func (m *Manager) SetProxyOptions(options option.ProxyOptions) error {
	proxy, err := transport.NewProxyConfig(options)
	if err != nil {
		m.SetInvalidProxy()
		return err
	}
	m.SetProxy(proxy)
	return nil
}

func (m *Manager) IsUsingProxy() (bool, error) {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	switch m.transportState.Mode() {
	case transport.ProxyModeProxy:
		return true, nil
	case transport.ProxyModeInvalid:
		return false, transport.ErrInvalidProxyConfig
	default:
		return false, nil
	}
}

func (m *Manager) SetIPv6Enabled(enabled bool) {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	m.transportState.SetIPv6Enabled(enabled)
	m.routeState.SetAllowIPv6(enabled)
}

// SetCensorshipCircumventionEnabled rebuilds the endpoint set with or
// without fronted fallback routes. Connections already in progress keep
// the set they started with.
func (m *Manager) SetCensorshipCircumventionEnabled(enabled bool) {
	endpoints := endpoint.NewSet(m.environment, m.userAgent, enabled, m.networkChange, m.logger)
	m.endpointAccess.Lock()
	m.endpoints = endpoints
	m.endpointAccess.Unlock()
}

// OnNetworkChange reports that the host network changed at now.
// Notifications closer than C.NetworkChangeDebounce to the last accepted
// one, or earlier than it, are dropped.
func (m *Manager) OnNetworkChange(now time.Time) {
	m.networkChangeAccess.Lock()
	sinceLast := now.Sub(m.lastNetworkChange)
	if sinceLast < C.NetworkChangeDebounce {
		m.networkChangeAccess.Unlock()
		m.logger.Debug("network change ignored, last change ", max(sinceLast, 0), " ago")
		return
	}
	m.lastNetworkChange = now
	m.networkChangeAccess.Unlock()
	m.logger.Info("network change detected")
	m.networkChange.Fire()
	m.routeState.NetworkChanged(now)
}

func (m *Manager) Endpoints() *endpoint.Set {
	m.endpointAccess.Lock()
	defer m.endpointAccess.Unlock()
	return m.endpoints
}

func (m *Manager) TransportState() transport.State {
	m.transportAccess.Lock()
	defer m.transportAccess.Unlock()
	return m.transportState
}

func (m *Manager) NetworkChangeEvent() *event.Event {
	return m.networkChange
}

func (m *Manager) ConnectChat(ctx context.Context) (*Connection, error) {
	endpoints := m.Endpoints()
	return m.connect(ctx, endpoints.Chat(), endpoints.DomainFronting())
}

func (m *Manager) ConnectEnclave(ctx context.Context, kind env.EnclaveKind) (*Connection, error) {
	endpoints := m.Endpoints()
	connection, loaded := endpoints.Enclave(kind)
	if !loaded {
		return nil, E.Cause(ErrUnknownEnclave, string(kind))
	}
	return m.connect(ctx, connection.Connection, endpoints.DomainFronting())
}

func (m *Manager) connect(ctx context.Context, connection *endpoint.Connection, fronting C.DomainFronting) (*Connection, error) {
	ctx = log.ContextWithNewID(ctx)
	m.transportAccess.Lock()
	state := m.transportState
	allowIPv6 := m.routeState.AllowIPv6()
	m.transportAccess.Unlock()
	proxy, err := state.Proxy()
	if err != nil {
		return nil, err
	}
	m.logger.DebugContext(ctx, "connecting to ", connection.Service())
	routes, err := route.Resolve(ctx, m.resolver, route.ResolveOptions{
		Params:    connection.Params(),
		Fronting:  fronting,
		Proxy:     proxy,
		AllowIPv6: allowIPv6 && state.IPv6Enabled(),
	})
	if err != nil {
		return nil, E.Cause(err, "connect ", connection.Service())
	}
	conn, selected, err := m.routeState.Connect(ctx, m.logger, m.chain, routes, connection.RouteTimeout())
	if err != nil {
		m.logger.ErrorContext(ctx, "connect ", connection.Service(), ": ", err)
		return nil, E.Cause(err, "connect ", connection.Service())
	}
	m.logger.InfoContext(ctx, "connected to ", connection.Service(), " via ", selected)
	return &Connection{Conn: conn, Route: selected}, nil
}

func (m *Manager) Close() error {
	return m.resolver.Close()
}

// replaceTerminals swaps the terminal transports of the chain. It must be
// called before any connection attempt.
func (m *Manager) replaceTerminals(terminals transport.Terminals) {
	m.chain = m.chain.ReplaceTerminals(terminals)
}
