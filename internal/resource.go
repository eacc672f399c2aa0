package internal

import (
	"cmp"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// AddManagedMetadata labels resources as managed by kedalab. Selector and
// template labels are left untouched.
func AddManagedMetadata(resources []*unstructured.Unstructured) {
	for _, resource := range resources {
		labels := resource.GetLabels()
		if labels == nil {
			labels = make(map[string]string)
		}
		labels["app.kubernetes.io/managed-by"] = "kedalab"
		resource.SetLabels(labels)
	}
}

func Canonical(resource *unstructured.Unstructured) string {
	gvk := resource.GetObjectKind().GroupVersionKind()

	return strings.ToLower(strings.Join(
		[]string{
			Namespace(resource),
			cmp.Or(gvk.Group, "core"),
			gvk.Version,
			resource.GetKind(),
			resource.GetName(),
		},
		".",
	))
}

func Namespace(resource *unstructured.Unstructured) string {
	return cmp.Or(resource.GetNamespace(), "_")
}

func CanonicalObjectMap(resources []*unstructured.Unstructured) map[string]any {
	result := make(map[string]any, len(resources))
	for _, resource := range resources {
		result[Canonical(resource)] = resource.Object
	}
	return result
}
