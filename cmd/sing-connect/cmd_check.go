package main

import (
	"github.com/sagernet/sing-connect"
	"github.com/sagernet/sing-connect/log"

	"github.com/spf13/cobra"
)

var commandCheck = &cobra.Command{
	Use:   "check",
	Short: "Check configuration",
	Run: func(cmd *cobra.Command, args []string) {
		err := check()
		if err != nil {
			log.Fatal(err)
		}
	},
	Args: cobra.NoArgs,
}

func init() {
	mainCommand.AddCommand(commandCheck)
}

func check() error {
	options, err := readConfig()
	if err != nil {
		return err
	}
	logFactory, err := newLogFactory(options)
	if err != nil {
		return err
	}
	defer closeLogFactory(logFactory)
	manager, err := connect.NewManagerFromOptions(options, logFactory.Logger())
	if err != nil {
		return err
	}
	return manager.Close()
}
