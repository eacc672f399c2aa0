// Package minikube drives the local cluster lifecycle through the minikube
// binary. There is no SDK for it; status and start are shell invocations.
package minikube

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/davidmdm/ansi"

	"github.com/davidmdm/kedalab/internal"
)

var cyan = ansi.MakeStyle(ansi.FgCyan).Sprint

// Status returns the report of `minikube status`. A stopped or degraded
// cluster still produces a report but exits non-zero; in that case both the
// report and an *exec.ExitError are returned.
func Status(ctx context.Context) (string, error) {
	defer internal.DebugTimer(ctx, "minikube status")()

	cmd := exec.CommandContext(ctx, "minikube", "status")

	out, err := cmd.Output()
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && len(exit.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exit.Stderr)))
		}
		return string(out), err
	}

	return string(out), nil
}

// Start boots the cluster, streaming minikube's own progress output.
func Start(ctx context.Context) error {
	defer internal.DebugTimer(ctx, "minikube start")()
	return x(ctx, exec.CommandContext(ctx, "minikube", "start"))
}

// EnsureRunning starts the cluster unless the status report already says it is
// running. Status failures that are not a state report, such as the binary
// missing from PATH, are fatal.
func EnsureRunning(ctx context.Context) error {
	status, err := Status(ctx)
	if err != nil {
		var exit *exec.ExitError
		if !errors.As(err, &exit) {
			return fmt.Errorf("failed to check minikube status: %w", err)
		}
		// minikube reports stopped and degraded states via its exit code.
	}

	if isRunning(status) {
		return nil
	}

	if err := Start(ctx); err != nil {
		return fmt.Errorf("failed to start minikube: %w", err)
	}

	return nil
}

func isRunning(status string) bool {
	return strings.Contains(status, "Running")
}

func x(ctx context.Context, cmd *exec.Cmd) error {
	stdout := internal.Stdout(ctx)

	cmd.Stdout = stdout
	cmd.Stderr = internal.Stderr(ctx)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "running:", cyan(strings.Join(cmd.Args, " ")))
	fmt.Fprintln(stdout)

	return cmd.Run()
}
