package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/internal/minikube"
	"github.com/davidmdm/kedalab/pkg/kedalab"
	"github.com/davidmdm/kedalab/pkg/workload"
)

type UpParams struct {
	GlobalSettings
	SkipCluster bool
	kedalab.UpParams
}

//go:embed cmd_up_help.txt
var upHelp string

func init() {
	upHelp = strings.TrimSpace(internal.Colorize(upHelp))
}

func GetUpParams(settings GlobalSettings, args []string) (*UpParams, error) {
	flagset := flag.NewFlagSet("up", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), upHelp)
		flagset.PrintDefaults()
	}

	params := UpParams{
		GlobalSettings: settings,
		UpParams: kedalab.UpParams{
			Install:  kedalab.DefaultInstallParams(),
			Workload: workload.Default(),
		},
	}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)
	RegisterInstallFlags(flagset, &params.Install)
	RegisterWorkloadFlags(flagset, &params.Workload)

	flagset.BoolVar(&params.SkipCluster, "skip-cluster", false, "do not check or start the local cluster. Assumes the kube context is already reachable")

	flagset.Parse(args)

	if version := params.Install.Version; version != "" && !semver.IsValid("v"+version) {
		return nil, fmt.Errorf("invalid chart version: %s", version)
	}

	return &params, nil
}

func Up(ctx context.Context, params UpParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	// Bootstrap before connecting: FromKubeConfig resolves the kube context,
	// and on a fresh machine only minikube start writes it.
	if !params.SkipCluster {
		if err := minikube.EnsureRunning(ctx); err != nil {
			return fmt.Errorf("failed to ensure cluster is running: %w", err)
		}
	}

	commander, err := kedalab.FromKubeConfig(params.KubeConfigPath, params.KubeContext)
	if err != nil {
		return err
	}
	return commander.Up(ctx, params.UpParams)
}
