package constant

import "time"

const (
	TCPTimeout                = 5 * time.Second
	TLSHandshakeTimeout       = 5 * time.Second
	DNSTimeout                = 3 * time.Second
	OneRouteConnectionTimeout = 5 * time.Second
)

// NetworkChangeDebounce is the minimum distance between two accepted
// network change notifications.
const NetworkChangeDebounce = time.Second

const (
	DNSCacheSize = 256
	DNSCacheTTL  = 5 * time.Minute
)

const (
	RouteBackoffInitial    = time.Second
	RouteBackoffMax        = 30 * time.Second
	RouteBackoffMultiplier = 2
	RouteRecordCapacity    = 1024
)

const DefaultConnectPermits = 8
