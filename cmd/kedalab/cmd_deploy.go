package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/pkg/kedalab"
	"github.com/davidmdm/kedalab/pkg/workload"
)

type DeployParams struct {
	GlobalSettings
	kedalab.DeployParams
}

//go:embed cmd_deploy_help.txt
var deployHelp string

func init() {
	deployHelp = strings.TrimSpace(internal.Colorize(deployHelp))
}

func RegisterWorkloadFlags(flagset *flag.FlagSet, spec *workload.Workload) {
	flagset.StringVar(&spec.Name, "name", spec.Name, "workload name. Names the deployment and prefixes the service and scaledobject")
	flagset.StringVar(&spec.Image, "image", spec.Image, "container image")
	flagset.StringVar(&spec.Namespace, "namespace", spec.Namespace, "namespace to submit the workload to")
	flagset.StringVar(&spec.CPURequest, "cpu-request", spec.CPURequest, "container cpu request")
	flagset.StringVar(&spec.CPULimit, "cpu-limit", spec.CPULimit, "container cpu limit")
	flagset.StringVar(&spec.MemoryRequest, "memory-request", spec.MemoryRequest, "container memory request")
	flagset.StringVar(&spec.MemoryLimit, "memory-limit", spec.MemoryLimit, "container memory limit")
	flagset.Var(&spec.Ports, "ports", "comma separated container ports. Each gets a matching service port")
	flagset.StringVar(&spec.Trigger, "trigger", spec.Trigger, "scaledobject trigger type")
	flagset.IntVar(&spec.Threshold, "threshold", spec.Threshold, "scaledobject trigger threshold")
}

func GetDeployParams(settings GlobalSettings, args []string) (*DeployParams, error) {
	flagset := flag.NewFlagSet("deploy", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), deployHelp)
		flagset.PrintDefaults()
	}

	params := DeployParams{
		GlobalSettings: settings,
		DeployParams:   kedalab.DeployParams{Workload: workload.Default()},
	}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)
	RegisterWorkloadFlags(flagset, &params.Workload)

	flagset.BoolVar(&params.DiffOnly, "diff-only", false, "show diff between live and workload state. Does not submit anything to cluster")
	flagset.BoolVar(&params.Color, "color", term.IsTerminal(int(os.Stdout.Fd())), "use colored output in diffs")
	flagset.IntVar(&params.Context, "context", 4, "number of lines of context in diff (ignored if not using --diff-only)")
	flagset.StringVar(&params.Out, "out", "", "if present outputs workload resources to directory specified, if out is - outputs to standard out")
	flagset.DurationVar(&params.Wait, "wait", 0, "time to wait for workload to be ready")
	flagset.DurationVar(&params.Poll, "poll", 5*time.Second, "interval to poll resource state at. Used with --wait")

	flagset.Parse(args)

	return &params, nil
}

func Deploy(ctx context.Context, params DeployParams) error {
	ctx = internal.WithDebugFlag(ctx, &params.Debug)

	commander, err := kedalab.FromKubeConfig(params.KubeConfigPath, params.KubeContext)
	if err != nil {
		return err
	}
	return commander.Deploy(ctx, params.DeployParams)
}
