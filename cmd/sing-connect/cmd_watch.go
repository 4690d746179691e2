package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagernet/sing-connect"
	"github.com/sagernet/sing-connect/common/netmon"
	"github.com/sagernet/sing-connect/log"
	E "github.com/sagernet/sing/common/exceptions"

	"github.com/spf13/cobra"
)

var commandWatch = &cobra.Command{
	Use:   "watch",
	Short: "Reconnect to the chat service on every network change",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := watch()
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	mainCommand.AddCommand(commandWatch)
}

func watch() error {
	options, err := readConfig()
	if err != nil {
		return err
	}
	logFactory, err := newLogFactory(options)
	if err != nil {
		return err
	}
	defer closeLogFactory(logFactory)
	logger := logFactory.Logger()
	manager, err := connect.NewManagerFromOptions(options, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := signal.NotifyContext(globalCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	reconnect := make(chan struct{}, 1)
	subscription := manager.NetworkChangeEvent().Subscribe(func() {
		requestReconnect(reconnect)
	})
	defer subscription.Close()

	monitor, err := netmon.New(logger, nil, manager.OnNetworkChange)
	if err != nil {
		return E.Cause(err, "create network monitor")
	}
	err = monitor.Start()
	if err != nil {
		return err
	}
	defer monitor.Close()

	requestReconnect(reconnect)
	return reconnectLoop(ctx, reconnect, func(ctx context.Context) error {
		conn, err := manager.ConnectChat(ctx)
		if err != nil {
			return err
		}
		return conn.Close()
	}, logger)
}

// requestReconnect queues one reconnect unless one is already pending.
func requestReconnect(reconnect chan<- struct{}) {
	select {
	case reconnect <- struct{}{}:
	default:
	}
}

func reconnectLoop(ctx context.Context, reconnect <-chan struct{}, connect func(ctx context.Context) error, logger log.ContextLogger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reconnect:
			err := connect(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Error(err)
			}
		}
	}
}
