package option

import (
	"net/url"
	"strconv"

	E "github.com/sagernet/sing/common/exceptions"
	M "github.com/sagernet/sing/common/metadata"
)

type ServerOptions struct {
	Server     string `json:"server"`
	ServerPort uint16 `json:"server_port,omitempty"`
}

func (o ServerOptions) Build() M.Socksaddr {
	return M.ParseSocksaddrHostPort(o.Server, o.ServerPort)
}

type ProxyOptions struct {
	Type string `json:"type"`
	ServerOptions
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ParseProxyURL reads a proxy written as scheme://[user[:password]@]host[:port].
// "socks" is accepted as an alias of socks5. The result is not validated
// beyond what the URL syntax requires.
func ParseProxyURL(rawURL string) (ProxyOptions, error) {
	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		return ProxyOptions{}, E.Cause(err, "parse proxy url")
	}
	if proxyURL.Opaque != "" || proxyURL.Host == "" {
		return ProxyOptions{}, E.New("missing proxy host in ", rawURL)
	}
	options := ProxyOptions{
		Type: proxyURL.Scheme,
	}
	if options.Type == "socks" {
		options.Type = "socks5"
	}
	options.Server = proxyURL.Hostname()
	if portString := proxyURL.Port(); portString != "" {
		port, err := strconv.ParseUint(portString, 10, 16)
		if err != nil {
			return ProxyOptions{}, E.Cause(err, "parse proxy port")
		}
		options.ServerPort = uint16(port)
	}
	if proxyURL.User != nil {
		options.Username = proxyURL.User.Username()
		options.Password, _ = proxyURL.User.Password()
	}
	return options, nil
}
