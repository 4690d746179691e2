package endpoint

import (
	"github.com/sagernet/sing-connect/common/event"
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/log"
)

// Set groups the connections of every service of one environment. A Set is
// replaced as a whole, never mutated.
type Set struct {
	chat     *Connection
	cdsi     *EnclaveConnection
	svr2     *EnclaveConnection
	fronting C.DomainFronting
}

func NewSet(environment env.Env, userAgent env.UserAgent, useFallbacks bool, networkChange *event.Event, logger log.ContextLogger) *Set {
	fallbacks := "disabled"
	if useFallbacks {
		fallbacks = "enabled"
	}
	logger.Info("creating endpoint connections (fallbacks ", fallbacks, ") for ", environment.Chat.Connect.Hostname, " and others")
	params := func(config env.DomainConfig) []env.ConnectionParams {
		var result []env.ConnectionParams
		if useFallbacks {
			result = config.Connect.ConnectionParamsWithFallback()
		} else {
			result = []env.ConnectionParams{config.Connect.DirectConnectionParams()}
		}
		return env.AddUserAgentHeader(result, userAgent)
	}
	set := &Set{
		chat: NewConnection(C.ServiceChat, params(environment.Chat), networkChange),
		cdsi: NewEnclaveConnection(environment.CDSI, params(environment.CDSI.DomainConfig), networkChange),
		svr2: NewEnclaveConnection(environment.SVR2, params(environment.SVR2.DomainConfig), networkChange),
	}
	if useFallbacks {
		set.fronting = C.DomainFrontingOneDomainPerProxy
	} else {
		set.fronting = C.DomainFrontingDisabled
	}
	return set
}

func (s *Set) Chat() *Connection {
	return s.chat
}

func (s *Set) CDSI() *EnclaveConnection {
	return s.cdsi
}

func (s *Set) SVR2() *EnclaveConnection {
	return s.svr2
}

func (s *Set) Enclave(kind env.EnclaveKind) (*EnclaveConnection, bool) {
	switch kind {
	case env.EnclaveCDSI:
		return s.cdsi, true
	case env.EnclaveSVR2:
		return s.svr2, true
	default:
		return nil, false
	}
}

func (s *Set) DomainFronting() C.DomainFronting {
	return s.fronting
}
