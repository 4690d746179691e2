package constant

const (
	TypeDirect  = "direct"
	TypeSOCKS4A = "socks4a"
	TypeSOCKS5  = "socks5"
	TypeHTTP    = "http"
	TypeHTTPS   = "https"
)

func ProxyDisplayName(proxyType string) string {
	switch proxyType {
	case TypeDirect:
		return "Direct"
	case TypeSOCKS4A:
		return "SOCKS4a"
	case TypeSOCKS5:
		return "SOCKS5"
	case TypeHTTP:
		return "HTTP"
	case TypeHTTPS:
		return "HTTPS"
	default:
		return "Unknown"
	}
}

func DefaultProxyPort(proxyType string) uint16 {
	switch proxyType {
	case TypeSOCKS4A, TypeSOCKS5:
		return 1080
	case TypeHTTP:
		return 80
	case TypeHTTPS:
		return 443
	default:
		return 0
	}
}
