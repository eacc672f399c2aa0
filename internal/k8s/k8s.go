package k8s

import (
	"cmp"
	"context"
	"fmt"
	"sync"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/davidmdm/x/xerr"

	"github.com/davidmdm/kedalab/internal"
)

const fieldManager = "kedalab"

type Client struct {
	dynamic   dynamic.Interface
	clientset kubernetes.Interface
	mapper    meta.RESTMapper
}

// NewClientFromKubeConfig builds a client for the named context of a kubeconfig.
func NewClientFromKubeConfig(path, kubecontext string) (*Client, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubecontext}

	restcfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build rest config for context %q: %w", kubecontext, err)
	}

	return NewClient(restcfg)
}

func NewClient(cfg *rest.Config) (*Client, error) {
	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client component: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create k8 clientset: %w", err)
	}

	return &Client{
		dynamic:   dynamicClient,
		clientset: clientset,
		mapper:    restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(clientset.DiscoveryClient)),
	}, nil
}

// NewClientFrom assembles a client from preconstructed components.
func NewClientFrom(dynamic dynamic.Interface, clientset kubernetes.Interface, mapper meta.RESTMapper) *Client {
	return &Client{dynamic: dynamic, clientset: clientset, mapper: mapper}
}

// CreateResource posts the resource and returns the cluster's stored copy.
// Creation is not idempotent: posting an object that already exists surfaces
// the api server's conflict.
func (client Client) CreateResource(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	resourceInterface, err := client.GetDynamicResourceInterface(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource: %w", err)
	}
	return resourceInterface.Create(ctx, resource, metav1.CreateOptions{FieldManager: fieldManager})
}

func (client Client) GetResource(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	resourceInterface, err := client.GetDynamicResourceInterface(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource: %w", err)
	}
	return resourceInterface.Get(ctx, resource.GetName(), metav1.GetOptions{})
}

func (client Client) ListDeployments(ctx context.Context, namespace string) (*appsv1.DeploymentList, error) {
	return client.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
}

func (client Client) ListPods(ctx context.Context, namespace string) (*corev1.PodList, error) {
	return client.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
}

type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// WaitForReady polls the live copy of the resource until it reports ready.
func (client Client) WaitForReady(ctx context.Context, resource *unstructured.Unstructured, opts WaitOptions) error {
	defer internal.DebugTimer(ctx, "waiting for "+internal.Canonical(resource))()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	interval := cmp.Or(opts.Interval, 2*time.Second)

	for {
		live, err := client.GetResource(ctx, resource)
		if err != nil && !kerrors.IsNotFound(err) {
			return err
		}
		if err == nil && isReady(ctx, live) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (client Client) WaitForReadyMany(ctx context.Context, resources []*unstructured.Unstructured, opts WaitOptions) error {
	var wg sync.WaitGroup
	errs := make([]error, len(resources))

	for i, resource := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.WaitForReady(ctx, resource, opts); err != nil {
				errs[i] = fmt.Errorf("%s: %w", internal.Canonical(resource), err)
			}
		}()
	}

	wg.Wait()

	return xerr.MultiErrOrderedFrom("", errs...)
}

func (client Client) GetDynamicResourceInterface(resource *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	apiResource, err := client.LookupResourceMapping(resource)
	if err != nil {
		return nil, err
	}
	if apiResource.Scope.Name() == meta.RESTScopeNameNamespace {
		return client.dynamic.Resource(apiResource.Resource).Namespace(resource.GetNamespace()), nil
	}
	return client.dynamic.Resource(apiResource.Resource), nil
}

// LookupResourceMapping resolves the rest mapping for a resource. Discovery is
// cached; a miss for a kind whose CRD landed after the cache was primed, such
// as scaledobjects right after controller install, triggers one reset and retry.
func (client Client) LookupResourceMapping(resource *unstructured.Unstructured) (*meta.RESTMapping, error) {
	gvk := schema.FromAPIVersionAndKind(resource.GetAPIVersion(), resource.GetKind())

	mapping, err := client.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if meta.IsNoMatchError(err) {
		meta.MaybeResetRESTMapper(client.mapper)
		mapping, err = client.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	}
	return mapping, err
}
