package kedalab

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/davidmdm/kedalab/internal"
)

type Health string

const (
	Healthy   Health = "Healthy"
	Unhealthy Health = "Unhealthy"
	NotFound  Health = "Not Found"
)

// HealthForDeployments classifies the deployment matching id. Both replica
// counts come from status, so an absent count compares as zero.
func HealthForDeployments(deployments []appsv1.Deployment, id types.UID) Health {
	deployment, ok := internal.Find(deployments, func(deployment appsv1.Deployment) bool {
		return deployment.UID == id
	})
	if !ok {
		return NotFound
	}

	if deployment.Status.ReadyReplicas == deployment.Status.Replicas {
		return Healthy
	}
	return Unhealthy
}

// DeploymentHealth takes a single health snapshot of the deployment with the
// given uid. One list, one comparison; callers wanting convergence poll for
// themselves.
func (commander Commander) DeploymentHealth(ctx context.Context, namespace string, id types.UID) (Health, error) {
	defer internal.DebugTimer(ctx, "deployment health")()

	deployments, err := commander.k8s.ListDeployments(ctx, namespace)
	if err != nil {
		return "", fmt.Errorf("failed to list deployments in namespace %s: %w", namespace, err)
	}

	return HealthForDeployments(deployments.Items, id), nil
}
