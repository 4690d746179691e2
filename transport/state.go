package transport

type ProxyMode uint8

const (
	ProxyModeDirect ProxyMode = iota
	ProxyModeProxy
	ProxyModeInvalid
)

func (m ProxyMode) String() string {
	switch m {
	case ProxyModeDirect:
		return "direct"
	case ProxyModeProxy:
		return "proxy"
	case ProxyModeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// State is the configuration of the base transport. The zero value is a
// direct transport with IPv6 enabled. State is a plain value: copies taken
// by connection attempts are unaffected by later changes.
type State struct {
	mode         ProxyMode
	proxy        *ProxyConfig
	ipv6Disabled bool
}

// SetProxy switches to proxy. A nil proxy is the same as ClearProxy.
func (s *State) SetProxy(proxy *ProxyConfig) {
	if proxy == nil {
		s.ClearProxy()
		return
	}
	s.mode = ProxyModeProxy
	s.proxy = proxy
}

// SetInvalid makes every later Proxy call fail until the proxy is set or
// cleared again.
func (s *State) SetInvalid() {
	s.mode = ProxyModeInvalid
	s.proxy = nil
}

func (s *State) ClearProxy() {
	s.mode = ProxyModeDirect
	s.proxy = nil
}

func (s State) Mode() ProxyMode {
	return s.mode
}

// Proxy returns the configured proxy, nil for a direct transport, or
// ErrInvalidProxyConfig.
func (s State) Proxy() (*ProxyConfig, error) {
	if s.mode == ProxyModeInvalid {
		return nil, ErrInvalidProxyConfig
	}
	return s.proxy, nil
}

func (s *State) SetIPv6Enabled(enabled bool) {
	s.ipv6Disabled = !enabled
}

func (s State) IPv6Enabled() bool {
	return !s.ipv6Disabled
}
