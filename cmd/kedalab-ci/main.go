package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/davidmdm/x/xcontext"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/internal/minikube"
	"github.com/davidmdm/kedalab/pkg/kedalab"
)

func main() {
	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer done()

	ctx = internal.WithDebugFlag(ctx, &cfg.Debug)

	// Bootstrap before connecting: FromKubeConfig resolves the kube context,
	// and on a fresh machine only minikube start writes it.
	if !cfg.SkipCluster {
		if err := minikube.EnsureRunning(ctx); err != nil {
			return fmt.Errorf("failed to ensure cluster is running: %w", err)
		}
	}

	commander, err := kedalab.FromKubeConfig(cfg.KubeConfigPath, cfg.KubeContext)
	if err != nil {
		return err
	}

	return commander.Up(ctx, kedalab.UpParams{
		Install:  cfg.Install,
		Workload: cfg.Workload,
	})
}
