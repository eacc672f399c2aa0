// Package kedalab orchestrates the provisioning pipeline: cluster up,
// autoscaling controller installed via its chart, workloads submitted, health
// snapshotted.
package kedalab

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/internal/k8s"
	"github.com/davidmdm/kedalab/pkg/helm"
)

type Commander struct {
	k8s  *k8s.Client
	helm *helm.Client
}

func FromKubeConfig(path, kubecontext string) (*Commander, error) {
	client, err := k8s.NewClientFromKubeConfig(path, kubecontext)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize k8s client: %w", err)
	}
	return &Commander{
		k8s:  client,
		helm: helm.NewClient(path, kubecontext),
	}, nil
}

type InstallParams struct {
	RepoName string
	RepoURL  string
	helm.InstallParams
}

// DefaultInstallParams targets the keda controller from its upstream chart
// repository, released into its own namespace.
func DefaultInstallParams() InstallParams {
	return InstallParams{
		RepoName: "kedacore",
		RepoURL:  "https://kedacore.github.io/charts",
		InstallParams: helm.InstallParams{
			Chart:     "kedacore/keda",
			Release:   "keda",
			Namespace: "keda",
		},
	}
}

// InstallController registers the chart repository, refreshes repository
// indexes, and installs the controller chart, creating its namespace if
// absent.
func (commander Commander) InstallController(ctx context.Context, params InstallParams) error {
	defer internal.DebugTimer(ctx, "install controller")()

	if err := commander.helm.AddRepo(ctx, params.RepoName, params.RepoURL); err != nil {
		return fmt.Errorf("failed to add chart repository %s: %w", params.RepoName, err)
	}

	if err := commander.helm.UpdateRepos(ctx); err != nil {
		return fmt.Errorf("failed to update chart repositories: %w", err)
	}

	release, err := commander.helm.Install(ctx, params.InstallParams)
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", params.Chart, err)
	}

	_, err = fmt.Fprintf(
		internal.Stdout(ctx),
		"installed release %s (chart %s-%s) in namespace %s\n",
		release.Name, release.Chart.Metadata.Name, release.Chart.Metadata.Version, release.Namespace,
	)
	return err
}

// VerifyController lists the pods of the controller namespace and prints them.
// Presence only; no readiness assertion.
func (commander Commander) VerifyController(ctx context.Context, namespace string) error {
	defer internal.DebugTimer(ctx, "verify controller")()

	pods, err := commander.k8s.ListPods(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to list pods in namespace %s: %w", namespace, err)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)

	tbl.AppendHeader(table.Row{"pod", "ready", "status", "age"})
	for _, pod := range pods.Items {
		tbl.AppendRow(table.Row{
			pod.Name,
			readyCount(pod.Status.ContainerStatuses),
			pod.Status.Phase,
			duration.HumanDuration(time.Since(pod.CreationTimestamp.Time)),
		})
	}

	_, err = fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
	return err
}

func readyCount(statuses []corev1.ContainerStatus) string {
	ready := 0
	for _, status := range statuses {
		if status.Ready {
			ready++
		}
	}
	return fmt.Sprintf("%d/%d", ready, len(statuses))
}
