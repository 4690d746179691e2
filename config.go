package connect

import (
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	E "github.com/sagernet/sing/common/exceptions"
)

// NewManagerFromOptions builds a manager and applies the runtime settings
// found in options.
func NewManagerFromOptions(options option.Options, logger log.ContextLogger) (*Manager, error) {
	environment, err := C.ParseEnvironment(options.Environment)
	if err != nil {
		return nil, err
	}
	manager := NewManagerWithOptions(Options{
		Environment: env.FromEnvironment(environment),
		UserAgent:   options.UserAgent,
		Logger:      logger,
		DNSServers:  options.DNSServers,
	})
	if options.Proxy != nil {
		err = manager.SetProxyOptions(*options.Proxy)
		if err != nil {
			manager.Close()
			return nil, E.Cause(err, "proxy")
		}
	}
	manager.SetIPv6Enabled(!options.DisableIPv6)
	if options.CensorshipCircumvention {
		manager.SetCensorshipCircumventionEnabled(true)
	}
	return manager, nil
}
