package kedalab

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	appsv1 "k8s.io/api/apps/v1"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	ktesting "k8s.io/client-go/testing"

	"github.com/davidmdm/kedalab/internal"
	"github.com/davidmdm/kedalab/internal/k8s"
	"github.com/davidmdm/kedalab/pkg/workload"
)

func makeCommander(objects ...runtime.Object) (*Commander, *dynamicfake.FakeDynamicClient) {
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			{Group: "apps", Version: "v1", Resource: "deployments"}:            "DeploymentList",
			{Group: "", Version: "v1", Resource: "services"}:                   "ServiceList",
			{Group: "keda.sh", Version: "v1alpha1", Resource: "scaledobjects"}: "ScaledObjectList",
		},
	)

	mapper := meta.NewDefaultRESTMapper(nil)
	mapper.Add(schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"}, meta.RESTScopeNamespace)
	mapper.Add(schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Service"}, meta.RESTScopeNamespace)
	mapper.Add(schema.GroupVersionKind{Group: "keda.sh", Version: "v1alpha1", Kind: "ScaledObject"}, meta.RESTScopeNamespace)

	commander := &Commander{k8s: k8s.NewClientFrom(dynamicClient, fake.NewSimpleClientset(objects...), mapper)}

	return commander, dynamicClient
}

func TestSubmitWorkload(t *testing.T) {
	commander, dynamicClient := makeCommander()

	receipt, err := commander.SubmitWorkload(context.Background(), workload.Default())
	require.NoError(t, err)

	require.Equal(t, "example-deployment-service", receipt.ServiceName)
	require.Equal(t, "example-deployment-scaledobject", receipt.ScaledObjectName)

	deployment, err := dynamicClient.
		Resource(schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "deployments"}).
		Namespace("default").
		Get(context.Background(), "example-deployment", metav1.GetOptions{})
	require.NoError(t, err)
	require.Equal(t, "kedalab", deployment.GetLabels()["app.kubernetes.io/managed-by"])

	replicas, _, err := unstructured.NestedInt64(deployment.Object, "spec", "replicas")
	require.NoError(t, err)
	require.EqualValues(t, 1, replicas)

	scaledObject, err := dynamicClient.
		Resource(schema.GroupVersionResource{Group: "keda.sh", Version: "v1alpha1", Resource: "scaledobjects"}).
		Namespace("default").
		Get(context.Background(), "example-deployment-scaledobject", metav1.GetOptions{})
	require.NoError(t, err)

	value, _, err := unstructured.NestedSlice(scaledObject.Object, "spec", "triggers")
	require.NoError(t, err)
	require.Len(t, value, 1)
}

func TestSubmitWorkloadResubmitConflicts(t *testing.T) {
	commander, _ := makeCommander()

	_, err := commander.SubmitWorkload(context.Background(), workload.Default())
	require.NoError(t, err)

	_, err = commander.SubmitWorkload(context.Background(), workload.Default())
	require.Error(t, err)
	require.True(t, kerrors.IsAlreadyExists(err))
	require.Contains(t, err.Error(), "default.apps.v1.deployment.example-deployment")
}

func TestSubmitWorkloadReceiptUID(t *testing.T) {
	commander, dynamicClient := makeCommander()

	dynamicClient.PrependReactor("create", "deployments", func(action ktesting.Action) (bool, runtime.Object, error) {
		created := action.(ktesting.CreateAction).GetObject().(*unstructured.Unstructured).DeepCopy()
		created.SetUID("8a6de24a-6a0d-4a3f-9a25-5d1e3f9f4a11")
		return true, created, nil
	})

	receipt, err := commander.SubmitWorkload(context.Background(), workload.Default())
	require.NoError(t, err)
	require.Equal(t, types.UID("8a6de24a-6a0d-4a3f-9a25-5d1e3f9f4a11"), receipt.DeploymentUID)
}

func TestDeploymentHealth(t *testing.T) {
	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "example-deployment", Namespace: "default", UID: "uid-1"},
		Status:     appsv1.DeploymentStatus{Replicas: 1, ReadyReplicas: 1},
	}

	commander, _ := makeCommander(deployment)

	health, err := commander.DeploymentHealth(context.Background(), "default", "uid-1")
	require.NoError(t, err)
	require.Equal(t, Healthy, health)

	health, err = commander.DeploymentHealth(context.Background(), "default", "uid-2")
	require.NoError(t, err)
	require.Equal(t, NotFound, health)
}

func TestDeployExportToStdout(t *testing.T) {
	commander, _ := makeCommander()

	var stdout bytes.Buffer
	ctx := internal.WithStdout(context.Background(), &stdout)

	require.NoError(t, commander.Deploy(ctx, DeployParams{Workload: workload.Default(), Out: "-"}))

	var output map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &output))

	require.Contains(t, output, "default.apps.v1.deployment.example-deployment")
	require.Contains(t, output, "default.core.v1.service.example-deployment-service")
	require.Contains(t, output, "default.keda.sh.v1alpha1.scaledobject.example-deployment-scaledobject")
}

func TestDeployExportToFS(t *testing.T) {
	commander, _ := makeCommander()

	dir := t.TempDir()

	require.NoError(t, commander.Deploy(context.Background(), DeployParams{Workload: workload.Default(), Out: dir}))

	entries, err := os.ReadDir(filepath.Join(dir, "example-deployment"))
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}

	require.ElementsMatch(t, []string{
		"default.apps.v1.deployment.example-deployment.yaml",
		"default.core.v1.service.example-deployment-service.yaml",
		"default.keda.sh.v1alpha1.scaledobject.example-deployment-scaledobject.yaml",
	}, names)
}

func TestDeployDiffOnly(t *testing.T) {
	commander, _ := makeCommander()

	_, err := commander.SubmitWorkload(context.Background(), workload.Default())
	require.NoError(t, err)

	var stdout bytes.Buffer
	ctx := internal.WithStdout(context.Background(), &stdout)

	err = commander.Deploy(ctx, DeployParams{Workload: workload.Default(), DiffOnly: true})
	require.True(t, internal.IsWarning(err))
	require.EqualError(t, err, "no changes between workload and live state")
	require.Empty(t, stdout.String())

	changed := workload.Default()
	changed.Image = "nginx:1.27"

	require.NoError(t, commander.Deploy(ctx, DeployParams{Workload: changed, DiffOnly: true}))
	require.Contains(t, stdout.String(), "nginx:1.27")
	require.Contains(t, stdout.String(), "nginx:latest")
}
