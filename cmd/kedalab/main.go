package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/davidmdm/x/xcontext"

	"github.com/davidmdm/kedalab/internal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if internal.IsWarning(err) {
			return
		}
		os.Exit(1)
	}
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func run() error {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer done()

	var settings GlobalSettings
	RegisterGlobalFlags(flag.CommandLine, &settings)

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), rootHelp)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}

	flag.Parse()

	if len(flag.Args()) == 0 {
		flag.Usage()
		return fmt.Errorf("no command provided")
	}

	subcmdArgs := flag.Args()[1:]

	switch cmd := flag.Arg(0); cmd {
	case "up":
		{
			params, err := GetUpParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Up(ctx, *params)
		}
	case "install":
		{
			params, err := GetInstallParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Install(ctx, *params)
		}
	case "deploy", "submit":
		{
			params, err := GetDeployParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Deploy(ctx, *params)
		}
	case "health", "status":
		{
			params, err := GetHealthParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return CheckHealth(ctx, *params)
		}
	case "version":
		{
			return Version()
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
