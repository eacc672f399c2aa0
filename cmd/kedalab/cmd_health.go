package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/types"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/pkg/kedalab"
)

type HealthParams struct {
	GlobalSettings
	Namespace string
	UID       string
}

//go:embed cmd_health_help.txt
var healthHelp string

func init() {
	healthHelp = strings.TrimSpace(internal.Colorize(healthHelp))
}

func GetHealthParams(settings GlobalSettings, args []string) (*HealthParams, error) {
	flagset := flag.NewFlagSet("health", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), healthHelp)
		flagset.PrintDefaults()
	}

	params := HealthParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)
	flagset.StringVar(&params.Namespace, "namespace", "default", "namespace to search for the deployment")

	flagset.Parse(args)

	params.UID = flagset.Arg(0)
	if params.UID == "" {
		return nil, fmt.Errorf("deployment uid is required as first positional arg")
	}

	return &params, nil
}

func CheckHealth(ctx context.Context, params HealthParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	commander, err := kedalab.FromKubeConfig(params.KubeConfigPath, params.KubeContext)
	if err != nil {
		return err
	}

	health, err := commander.DeploymentHealth(ctx, params.Namespace, types.UID(params.UID))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(internal.Stdout(ctx), health)
	return err
}
