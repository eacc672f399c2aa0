package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestIsReady(t *testing.T) {
	cases := []struct {
		Name     string
		Resource map[string]any
		Expected bool
	}{
		{
			Name: "deployment fully rolled out",
			Resource: map[string]any{
				"apiVersion": "apps/v1",
				"kind":       "Deployment",
				"status": map[string]any{
					"replicas":          int64(2),
					"availableReplicas": int64(2),
					"readyReplicas":     int64(2),
					"updatedReplicas":   int64(2),
					"conditions": []any{
						map[string]any{"type": "Available", "status": "True"},
					},
				},
			},
			Expected: true,
		},
		{
			Name: "deployment behind on ready replicas",
			Resource: map[string]any{
				"apiVersion": "apps/v1",
				"kind":       "Deployment",
				"status": map[string]any{
					"replicas":          int64(2),
					"availableReplicas": int64(2),
					"readyReplicas":     int64(1),
					"updatedReplicas":   int64(2),
					"conditions": []any{
						map[string]any{"type": "Available", "status": "True"},
					},
				},
			},
			Expected: false,
		},
		{
			Name: "deployment without available condition",
			Resource: map[string]any{
				"apiVersion": "apps/v1",
				"kind":       "Deployment",
				"status":     map[string]any{},
			},
			Expected: false,
		},
		{
			Name: "scaledobject ready",
			Resource: map[string]any{
				"apiVersion": "keda.sh/v1alpha1",
				"kind":       "ScaledObject",
				"status": map[string]any{
					"conditions": []any{
						map[string]any{"type": "Ready", "status": "True"},
					},
				},
			},
			Expected: true,
		},
		{
			Name: "scaledobject not ready",
			Resource: map[string]any{
				"apiVersion": "keda.sh/v1alpha1",
				"kind":       "ScaledObject",
				"status": map[string]any{
					"conditions": []any{
						map[string]any{"type": "Ready", "status": "False"},
					},
				},
			},
			Expected: false,
		},
		{
			Name: "service is ready on sight",
			Resource: map[string]any{
				"apiVersion": "v1",
				"kind":       "Service",
			},
			Expected: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			resource := &unstructured.Unstructured{Object: tc.Resource}
			require.Equal(t, tc.Expected, isReady(context.Background(), resource))
		})
	}
}
