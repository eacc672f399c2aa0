package kedalab

import (
	"context"
	"fmt"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/pkg/workload"
)

type UpParams struct {
	Install  InstallParams
	Workload workload.Workload
}

// Up installs and verifies the controller, submits the workload, and reports
// one health snapshot for its deployment. The cluster must already be
// reachable: callers bootstrap it before building a commander, since building
// one resolves the kube context and a first minikube start is what writes it.
func (commander Commander) Up(ctx context.Context, params UpParams) error {
	defer internal.DebugTimer(ctx, "up")()

	stdout := internal.Stdout(ctx)

	if err := commander.InstallController(ctx, params.Install); err != nil {
		return err
	}

	if err := commander.VerifyController(ctx, params.Install.Namespace); err != nil {
		return err
	}

	receipt, err := commander.SubmitWorkload(ctx, params.Workload)
	if err != nil {
		return fmt.Errorf("failed to submit workload: %w", err)
	}

	fmt.Fprintf(stdout, "deployment uid: %s\n", receipt.DeploymentUID)
	fmt.Fprintf(stdout, "service: %s\n", receipt.ServiceName)
	fmt.Fprintf(stdout, "scaledobject: %s\n", receipt.ScaledObjectName)

	health, err := commander.DeploymentHealth(ctx, params.Workload.Namespace, receipt.DeploymentUID)
	if err != nil {
		return fmt.Errorf("failed to check deployment health: %w", err)
	}

	_, err = fmt.Fprintf(stdout, "deployment %s health: %s\n", params.Workload.Name, health)
	return err
}
