package env

import (
	"net/netip"

	C "github.com/sagernet/sing-connect/constant"
)

type DomainConfig struct {
	Connect ConnectionConfig
	IPv4    []netip.Addr
	IPv6    []netip.Addr
}

func (c DomainConfig) StaticFallback() (string, []netip.Addr) {
	addresses := make([]netip.Addr, 0, len(c.IPv4)+len(c.IPv6))
	addresses = append(addresses, c.IPv4...)
	addresses = append(addresses, c.IPv6...)
	return c.Connect.Hostname, addresses
}

type EnclaveKind string

const (
	EnclaveCDSI EnclaveKind = C.ServiceCDSI
	EnclaveSVR2 EnclaveKind = C.ServiceSVR2
)

// EnclaveEndpoint carries the opaque measurement handed to the attestation
// layer together with how to reach the enclave.
type EnclaveEndpoint struct {
	Kind         EnclaveKind
	DomainConfig DomainConfig
	Measurement  string
}

type Env struct {
	Name C.Environment
	Chat DomainConfig
	CDSI EnclaveEndpoint
	SVR2 EnclaveEndpoint
}

// StaticFallback maps every hostname of the environment to the addresses
// used when DNS is unavailable.
func (e Env) StaticFallback() map[string][]netip.Addr {
	fallback := make(map[string][]netip.Addr)
	for _, config := range []DomainConfig{e.Chat, e.CDSI.DomainConfig, e.SVR2.DomainConfig} {
		hostname, addresses := config.StaticFallback()
		if len(addresses) > 0 {
			fallback[hostname] = addresses
		}
	}
	return fallback
}

func (e Env) Enclave(kind EnclaveKind) (EnclaveEndpoint, bool) {
	switch kind {
	case EnclaveCDSI:
		return e.CDSI, true
	case EnclaveSVR2:
		return e.SVR2, true
	default:
		return EnclaveEndpoint{}, false
	}
}

func FromEnvironment(environment C.Environment) Env {
	switch environment {
	case C.EnvironmentProduction:
		return Production
	default:
		return Staging
	}
}
