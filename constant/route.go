package constant

const (
	RouteDirect = "direct"
	RouteProxyF = "proxy-f"
	RouteProxyG = "proxy-g"
)

type DomainFronting uint8

const (
	DomainFrontingDisabled DomainFronting = iota
	DomainFrontingOneDomainPerProxy
)

func (f DomainFronting) String() string {
	switch f {
	case DomainFrontingDisabled:
		return "disabled"
	case DomainFrontingOneDomainPerProxy:
		return "one-domain-per-proxy"
	default:
		return "unknown"
	}
}

const (
	ServiceChat = "chat"
	ServiceCDSI = "cdsi"
	ServiceSVR2 = "svr2"
)
