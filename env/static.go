package env

import (
	"net/netip"

	C "github.com/sagernet/sing-connect/constant"
)

var defaultALPN = []string{"http/1.1"}

func frontingRoutes(pathPrefix string) []FrontingRoute {
	return []FrontingRoute{
		{
			RouteType:  C.RouteProxyF,
			HTTPHost:   "reflector-f.relay.example.net",
			SNIs:       []string{"github.githubassets.com", "pinterest.com", "www.redditstatic.com"},
			PathPrefix: pathPrefix,
		},
		{
			RouteType:  C.RouteProxyG,
			HTTPHost:   "reflector-g.relay.example.net",
			SNIs:       []string{"www.google.com", "android.clients.google.com", "clients3.google.com"},
			PathPrefix: pathPrefix,
		},
	}
}

func addresses(values ...string) []netip.Addr {
	result := make([]netip.Addr, 0, len(values))
	for _, value := range values {
		result = append(result, netip.MustParseAddr(value))
	}
	return result
}

var Staging = Env{
	Name: C.EnvironmentStaging,
	Chat: DomainConfig{
		Connect: ConnectionConfig{
			Hostname: "chat.staging.example.org",
			Port:     443,
			ALPN:     defaultALPN,
			Fronting: frontingRoutes("/service-staging"),
		},
		IPv4: addresses("192.0.2.10", "192.0.2.11"),
		IPv6: addresses("2001:db8::10"),
	},
	CDSI: EnclaveEndpoint{
		Kind: EnclaveCDSI,
		DomainConfig: DomainConfig{
			Connect: ConnectionConfig{
				Hostname: "cdsi.staging.example.org",
				Port:     443,
				ALPN:     defaultALPN,
				Fronting: frontingRoutes("/cdsi-staging"),
			},
			IPv4: addresses("192.0.2.20"),
			IPv6: addresses("2001:db8::20"),
		},
		Measurement: "0f6fd79cdfdaa5b2e6337f534d3baf999318b0c462a7ac1f41297a3e4b424a57",
	},
	SVR2: EnclaveEndpoint{
		Kind: EnclaveSVR2,
		DomainConfig: DomainConfig{
			Connect: ConnectionConfig{
				Hostname: "svr2.staging.example.org",
				Port:     443,
				ALPN:     defaultALPN,
			},
			IPv4: addresses("192.0.2.30"),
		},
		Measurement: "a8a261420a6bb9b61aa25bf8a79e8bd20d7652531feb3381cbffd446d270be95",
	},
}

var Production = Env{
	Name: C.EnvironmentProduction,
	Chat: DomainConfig{
		Connect: ConnectionConfig{
			Hostname: "chat.example.org",
			Port:     443,
			ALPN:     defaultALPN,
			Fronting: frontingRoutes("/service"),
		},
		IPv4: addresses("198.51.100.10", "198.51.100.11", "198.51.100.12"),
		IPv6: addresses("2001:db8:1::10", "2001:db8:1::11"),
	},
	CDSI: EnclaveEndpoint{
		Kind: EnclaveCDSI,
		DomainConfig: DomainConfig{
			Connect: ConnectionConfig{
				Hostname: "cdsi.example.org",
				Port:     443,
				ALPN:     defaultALPN,
				Fronting: frontingRoutes("/cdsi"),
			},
			IPv4: addresses("198.51.100.20"),
			IPv6: addresses("2001:db8:1::20"),
		},
		Measurement: "0f6fd79cdfdaa5b2e6337f534d3baf999318b0c462a7ac1f41297a3e4b424a57",
	},
	SVR2: EnclaveEndpoint{
		Kind: EnclaveSVR2,
		DomainConfig: DomainConfig{
			Connect: ConnectionConfig{
				Hostname: "svr2.example.org",
				Port:     443,
				ALPN:     defaultALPN,
			},
			IPv4: addresses("198.51.100.30"),
		},
		Measurement: "9314436a9a144992bb3680770ea5533a7bdac0c2ce5236f5958c8890df5216c5",
	},
}
