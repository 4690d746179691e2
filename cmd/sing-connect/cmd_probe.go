package main

import (
	"context"
	"os"
	"time"

	"github.com/sagernet/sing-connect"
	C "github.com/sagernet/sing-connect/constant"
	"github.com/sagernet/sing-connect/env"
	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	E "github.com/sagernet/sing/common/exceptions"
	F "github.com/sagernet/sing/common/format"

	"github.com/spf13/cobra"
)

var (
	commandProbeFlagProxy    string
	commandProbeFlagFallback bool
	commandProbeFlagNoIPv6   bool
	commandProbeFlagTimeout  time.Duration
)

var commandProbe = &cobra.Command{
	Use:       "probe [chat|cdsi|svr2]",
	Short:     "Establish one base connection to a service and print the route used",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{C.ServiceChat, C.ServiceCDSI, C.ServiceSVR2},
	Run: func(cmd *cobra.Command, args []string) {
		service := C.ServiceChat
		if len(args) > 0 {
			service = args[0]
		}
		err := probe(service)
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	commandProbe.Flags().StringVarP(&commandProbeFlagProxy, "proxy", "p", "", "proxy URL (socks4a://, socks5://, http://, https://)")
	commandProbe.Flags().BoolVarP(&commandProbeFlagFallback, "fallback", "f", false, "enable censorship circumvention routes")
	commandProbe.Flags().BoolVarP(&commandProbeFlagNoIPv6, "disable-ipv6", "4", false, "only use IPv4 routes")
	commandProbe.Flags().DurationVarP(&commandProbeFlagTimeout, "timeout", "t", 30*time.Second, "overall timeout")
	mainCommand.AddCommand(commandProbe)
}

func probe(service string) error {
	options, err := readConfig()
	if err != nil {
		return err
	}
	if commandProbeFlagProxy != "" {
		proxyOptions, err := option.ParseProxyURL(commandProbeFlagProxy)
		if err != nil {
			return err
		}
		options.Proxy = &proxyOptions
	}
	options.CensorshipCircumvention = options.CensorshipCircumvention || commandProbeFlagFallback
	options.DisableIPv6 = options.DisableIPv6 || commandProbeFlagNoIPv6
	logFactory, err := newLogFactory(options)
	if err != nil {
		return err
	}
	defer closeLogFactory(logFactory)
	manager, err := connect.NewManagerFromOptions(options, logFactory.Logger())
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(globalCtx, commandProbeFlagTimeout)
	defer cancel()
	var conn *connect.Connection
	switch service {
	case C.ServiceChat:
		conn, err = manager.ConnectChat(ctx)
	case C.ServiceCDSI, C.ServiceSVR2:
		conn, err = manager.ConnectEnclave(ctx, env.EnclaveKind(service))
	default:
		return E.New("unknown service: ", service)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	transportName := C.ProxyDisplayName(C.TypeDirect)
	if proxied, isProxy := conn.Route.Transport.Inner.Proxy(); isProxy {
		transportName = proxied.Proxy.DisplayName()
	}
	os.Stdout.WriteString(F.ToString(service, ": ", conn.Route, " (", transportName, ", ", conn.RemoteAddr(), ")\n"))
	return nil
}
