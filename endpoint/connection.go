package endpoint

import (
	"slices"
	"time"

	"github.com/sagernet/sing-connect/common/event"
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
)

// Connection describes how to reach one service. It is immutable once
// built; consumers never need to synchronize on it.
type Connection struct {
	service       string
	params        []env.ConnectionParams
	timeout       time.Duration
	networkChange *event.Event
}

func NewConnection(service string, params []env.ConnectionParams, networkChange *event.Event) *Connection {
	return &Connection{
		service:       service,
		params:        slices.Clone(params),
		timeout:       C.OneRouteConnectionTimeout,
		networkChange: networkChange,
	}
}

func (c *Connection) Service() string {
	return c.service
}

// Params returns the connection params in preference order.
func (c *Connection) Params() []env.ConnectionParams {
	return slices.Clone(c.params)
}

func (c *Connection) ParamsLen() int {
	return len(c.params)
}

func (c *Connection) RouteTimeout() time.Duration {
	return c.timeout
}

// NetworkChange returns the event fired on accepted network changes. The
// connection does not own it.
func (c *Connection) NetworkChange() *event.Event {
	return c.networkChange
}

type EnclaveConnection struct {
	*Connection
	endpoint env.EnclaveEndpoint
}

func NewEnclaveConnection(endpoint env.EnclaveEndpoint, params []env.ConnectionParams, networkChange *event.Event) *EnclaveConnection {
	return &EnclaveConnection{
		Connection: NewConnection(string(endpoint.Kind), params, networkChange),
		endpoint:   endpoint,
	}
}

func (c *EnclaveConnection) Kind() env.EnclaveKind {
	return c.endpoint.Kind
}

func (c *EnclaveConnection) Endpoint() env.EnclaveEndpoint {
	return c.endpoint
}
