package env

import (
	"maps"
	"slices"

	C "github.com/sagernet/sing-connect/constant"
	F "github.com/sagernet/sing/common/format"
)

// ConnectionParams is one way of reaching a service. Direct params carry a
// single SNI equal to the host; fronted params carry the set of front
// domains from which route resolution picks.
type ConnectionParams struct {
	RouteType  string
	SNIs       []string
	Host       string
	Port       uint16
	HTTPHost   string
	PathPrefix string
	ALPN       []string
	Headers    map[string]string
}

func (p ConnectionParams) IsDirect() bool {
	return p.RouteType == C.RouteDirect
}

func (p ConnectionParams) String() string {
	if p.IsDirect() {
		return F.ToString(p.RouteType, " ", p.Host, ":", p.Port)
	}
	return F.ToString(p.RouteType, " ", p.HTTPHost, " via ", len(p.SNIs), " fronts")
}

// WithHeader returns a copy of p with the header set. p is left untouched.
func (p ConnectionParams) WithHeader(key string, value string) ConnectionParams {
	headers := make(map[string]string, len(p.Headers)+1)
	maps.Copy(headers, p.Headers)
	headers[key] = value
	p.Headers = headers
	p.SNIs = slices.Clone(p.SNIs)
	p.ALPN = slices.Clone(p.ALPN)
	return p
}

type FrontingRoute struct {
	RouteType  string
	HTTPHost   string
	SNIs       []string
	PathPrefix string
}

type ConnectionConfig struct {
	Hostname string
	Port     uint16
	ALPN     []string
	Fronting []FrontingRoute
}

func (c ConnectionConfig) DirectConnectionParams() ConnectionParams {
	return ConnectionParams{
		RouteType: C.RouteDirect,
		SNIs:      []string{c.Hostname},
		Host:      c.Hostname,
		Port:      c.Port,
		HTTPHost:  c.Hostname,
		ALPN:      slices.Clone(c.ALPN),
	}
}

// ConnectionParamsWithFallback returns the direct params followed by one
// params value per fronting route, in table order.
func (c ConnectionConfig) ConnectionParamsWithFallback() []ConnectionParams {
	params := make([]ConnectionParams, 0, 1+len(c.Fronting))
	params = append(params, c.DirectConnectionParams())
	for _, route := range c.Fronting {
		if len(route.SNIs) == 0 {
			continue
		}
		params = append(params, ConnectionParams{
			RouteType:  route.RouteType,
			SNIs:       slices.Clone(route.SNIs),
			Host:       route.SNIs[0],
			Port:       443,
			HTTPHost:   route.HTTPHost,
			PathPrefix: route.PathPrefix,
			ALPN:       slices.Clone(c.ALPN),
		})
	}
	return params
}

func AddUserAgentHeader(params []ConnectionParams, userAgent UserAgent) []ConnectionParams {
	result := make([]ConnectionParams, 0, len(params))
	for _, param := range params {
		result = append(result, param.WithHeader("User-Agent", userAgent.String()))
	}
	return result
}
