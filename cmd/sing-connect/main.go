package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sagernet/sing-connect/log"
	"github.com/sagernet/sing-connect/option"
	E "github.com/sagernet/sing/common/exceptions"

	"github.com/spf13/cobra"
)

var (
	globalCtx    context.Context
	configPath   string
	environment  string
	disableColor bool
)

var mainCommand = &cobra.Command{
	Use:              "sing-connect",
	PersistentPreRun: preRun,
}

func init() {
	mainCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "set configuration file path")
	mainCommand.PersistentFlags().StringVarP(&environment, "env", "e", "", "override environment (staging, production)")
	mainCommand.PersistentFlags().BoolVarP(&disableColor, "disable-color", "", false, "disable color output")
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		log.Fatal(err)
	}
}

func preRun(cmd *cobra.Command, args []string) {
	globalCtx = context.Background()
	if disableColor {
		log.SetStdLogger(log.NewFactory(log.Formatter{BaseTime: time.Now(), DisableColors: true}, os.Stderr).Logger())
	}
}

func readConfig() (option.Options, error) {
	var options option.Options
	if configPath != "" {
		var (
			content []byte
			err     error
		)
		if configPath == "stdin" {
			content, err = io.ReadAll(os.Stdin)
		} else {
			content, err = os.ReadFile(configPath)
		}
		if err != nil {
			return option.Options{}, E.Cause(err, "read config at ", configPath)
		}
		options, err = option.ParseOptions(globalCtx, content)
		if err != nil {
			return option.Options{}, E.Cause(err, "decode config at ", configPath)
		}
	}
	if environment != "" {
		options.Environment = environment
	}
	return options, nil
}

func newLogFactory(options option.Options) (log.Factory, error) {
	var logOptions option.LogOptions
	if options.Log != nil {
		logOptions = *options.Log
	}
	logOptions.DisableColor = logOptions.DisableColor || disableColor
	return log.New(log.Options{
		Options:  logOptions,
		BaseTime: time.Now(),
	})
}

func closeLogFactory(factory log.Factory) {
	if closer, isCloser := factory.(io.Closer); isCloser {
		closer.Close()
	}
}
