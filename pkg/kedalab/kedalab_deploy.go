package kedalab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"

	"github.com/davidmdm/x/xerr"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/internal/k8s"
	"github.com/davidmdm/kedalab/internal/text"
	"github.com/davidmdm/kedalab/pkg/workload"
)

// Receipt carries the identifiers the cluster assigned to a submitted
// workload.
type Receipt struct {
	DeploymentUID    types.UID
	ServiceName      string
	ScaledObjectName string
}

// SubmitWorkload creates the workload's deployment, service, and scaledobject
// in order, stopping at the first failure. Submission is not idempotent:
// resubmitting a workload surfaces the api server's conflict.
func (commander Commander) SubmitWorkload(ctx context.Context, spec workload.Workload) (*Receipt, error) {
	defer internal.DebugTimer(ctx, "submit workload "+spec.Name)()

	resources := spec.Resources()
	internal.AddManagedMetadata(resources)

	var receipt Receipt
	for _, resource := range resources {
		created, err := commander.k8s.CreateResource(ctx, resource)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", internal.Canonical(resource), err)
		}

		switch created.GetKind() {
		case "Deployment":
			receipt.DeploymentUID = created.GetUID()
		case "Service":
			receipt.ServiceName = created.GetName()
		case "ScaledObject":
			receipt.ScaledObjectName = created.GetName()
		}
	}

	return &receipt, nil
}

type DeployParams struct {
	Workload workload.Workload
	Out      string
	DiffOnly bool
	Context  int
	Color    bool
	Wait     time.Duration
	Poll     time.Duration
}

// Deploy submits the workload to the cluster. With Out set it renders the
// objects instead of submitting them, and with DiffOnly it compares them
// against the live cluster state. A positive Wait blocks until the created
// resources report ready.
func (commander Commander) Deploy(ctx context.Context, params DeployParams) error {
	defer internal.DebugTimer(ctx, "deploy "+params.Workload.Name)()

	if params.Out != "" {
		resources := params.Workload.Resources()
		internal.AddManagedMetadata(resources)
		if params.Out == "-" {
			return ExportToStdout(ctx, resources)
		}
		return ExportToFS(params.Out, params.Workload.Name, resources)
	}

	if params.DiffOnly {
		return commander.diffAgainstLive(ctx, params)
	}

	receipt, err := commander.SubmitWorkload(ctx, params.Workload)
	if err != nil {
		return err
	}

	stdout := internal.Stdout(ctx)
	fmt.Fprintf(stdout, "deployment uid: %s\n", receipt.DeploymentUID)
	fmt.Fprintf(stdout, "service: %s\n", receipt.ServiceName)
	fmt.Fprintf(stdout, "scaledobject: %s\n", receipt.ScaledObjectName)

	if params.Wait > 0 {
		resources := params.Workload.Resources()
		opts := k8s.WaitOptions{Timeout: params.Wait, Interval: params.Poll}
		if err := commander.k8s.WaitForReadyMany(ctx, resources, opts); err != nil {
			return fmt.Errorf("workload did not become ready: %w", err)
		}
	}

	return nil
}

func (commander Commander) diffAgainstLive(ctx context.Context, params DeployParams) error {
	resources := params.Workload.Resources()
	internal.AddManagedMetadata(resources)

	expected := internal.CanonicalObjectMap(resources)

	actual := make(map[string]any, len(resources))
	for _, resource := range resources {
		name := internal.Canonical(resource)

		live, err := commander.k8s.GetResource(ctx, resource)
		if err != nil {
			if kerrors.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to get %s: %w", name, err)
		}

		// Server-populated fields would swamp the diff; compare only the keys
		// the workload declares.
		actual[name] = subset(live.Object, resource.Object)
	}

	expectedFile, err := text.ToYamlFile("workload", expected)
	if err != nil {
		return fmt.Errorf("failed to encode workload state to yaml: %w", err)
	}

	actualFile, err := text.ToYamlFile("live", actual)
	if err != nil {
		return fmt.Errorf("failed to encode live state to yaml: %w", err)
	}

	diff := text.Diff(expectedFile, actualFile, params.Context, params.Color)
	if diff == "" {
		return internal.Warning("no changes between workload and live state")
	}

	_, err = fmt.Fprint(internal.Stdout(ctx), diff)
	return err
}

// ExportToFS writes each resource to dir/name as one yaml file per resource,
// replacing any previous export.
func ExportToFS(dir, name string, resources []*unstructured.Unstructured) error {
	root := filepath.Join(dir, name)

	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("failed to remove previous workload export: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create workload output directory: %w", err)
	}

	var errs []error
	for _, resource := range resources {
		path := filepath.Join(root, internal.Canonical(resource)+".yaml")
		if err := internal.WriteYAML(path, resource.Object); err != nil {
			errs = append(errs, err)
		}
	}

	return xerr.MultiErrFrom("failed to write resource(s)", errs...)
}

// ExportToStdout writes the resources to stdout as a single yaml document
// keyed by canonical name.
func ExportToStdout(ctx context.Context, resources []*unstructured.Unstructured) error {
	encoder := yaml.NewEncoder(internal.Stdout(ctx))
	encoder.SetIndent(2)

	return encoder.Encode(internal.CanonicalObjectMap(resources))
}
