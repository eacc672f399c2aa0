package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/pkg/kedalab"
)

type InstallParams struct {
	GlobalSettings
	kedalab.InstallParams
}

//go:embed cmd_install_help.txt
var installHelp string

func init() {
	installHelp = strings.TrimSpace(internal.Colorize(installHelp))
}

func RegisterInstallFlags(flagset *flag.FlagSet, params *kedalab.InstallParams) {
	flagset.StringVar(&params.RepoName, "repo-name", params.RepoName, "chart repository name")
	flagset.StringVar(&params.RepoURL, "repo-url", params.RepoURL, "chart repository url")
	flagset.StringVar(&params.Chart, "chart", params.Chart, "chart to install")
	flagset.StringVar(&params.Release, "release", params.Release, "release name for the controller install")
	flagset.StringVar(&params.Namespace, "controller-namespace", params.Namespace, "namespace to install the controller into. Created if absent")
	flagset.StringVar(&params.Version, "chart-version", params.Version, "chart version to install. Latest if empty")
}

func GetInstallParams(settings GlobalSettings, args []string) (*InstallParams, error) {
	flagset := flag.NewFlagSet("install", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), installHelp)
		flagset.PrintDefaults()
	}

	params := InstallParams{
		GlobalSettings: settings,
		InstallParams:  kedalab.DefaultInstallParams(),
	}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)
	RegisterInstallFlags(flagset, &params.InstallParams)

	flagset.Parse(args)

	if version := params.Version; version != "" && !semver.IsValid("v"+version) {
		return nil, fmt.Errorf("invalid chart version: %s", version)
	}

	return &params, nil
}

func Install(ctx context.Context, params InstallParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	commander, err := kedalab.FromKubeConfig(params.KubeConfigPath, params.KubeContext)
	if err != nil {
		return err
	}

	if err := commander.InstallController(ctx, params.InstallParams); err != nil {
		return err
	}
	return commander.VerifyController(ctx, params.Namespace)
}
