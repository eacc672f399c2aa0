package kedalab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubset(t *testing.T) {
	cases := []struct {
		Name     string
		Live     map[string]any
		Manifest map[string]any
		Expected map[string]any
	}{
		{
			Name:     "drops keys the manifest does not declare",
			Live:     map[string]any{"spec": "x", "status": "y", "metadata": map[string]any{"name": "a", "uid": "b"}},
			Manifest: map[string]any{"spec": "x", "metadata": map[string]any{"name": "a"}},
			Expected: map[string]any{"spec": "x", "metadata": map[string]any{"name": "a"}},
		},
		{
			Name:     "keeps live values for declared keys",
			Live:     map[string]any{"spec": map[string]any{"replicas": int64(3)}},
			Manifest: map[string]any{"spec": map[string]any{"replicas": int64(1)}},
			Expected: map[string]any{"spec": map[string]any{"replicas": int64(3)}},
		},
		{
			Name:     "declared keys missing from live are omitted",
			Live:     map[string]any{},
			Manifest: map[string]any{"spec": "x"},
			Expected: map[string]any{},
		},
		{
			Name: "lists are projected element-wise",
			Live: map[string]any{"ports": []any{
				map[string]any{"port": int64(80), "protocol": "TCP"},
				map[string]any{"port": int64(90), "protocol": "TCP"},
			}},
			Manifest: map[string]any{"ports": []any{
				map[string]any{"port": int64(80)},
				map[string]any{"port": int64(90)},
			}},
			Expected: map[string]any{"ports": []any{
				map[string]any{"port": int64(80)},
				map[string]any{"port": int64(90)},
			}},
		},
		{
			Name:     "extra live elements are kept as found",
			Live:     map[string]any{"ports": []any{map[string]any{"port": int64(80), "protocol": "TCP"}, map[string]any{"port": int64(90), "protocol": "TCP"}}},
			Manifest: map[string]any{"ports": []any{map[string]any{"port": int64(80)}}},
			Expected: map[string]any{"ports": []any{map[string]any{"port": int64(80)}, map[string]any{"port": int64(90), "protocol": "TCP"}}},
		},
		{
			Name:     "type mismatch keeps live value",
			Live:     map[string]any{"spec": "scalar"},
			Manifest: map[string]any{"spec": map[string]any{"replicas": int64(1)}},
			Expected: map[string]any{"spec": "scalar"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			require.Equal(t, tc.Expected, subset(tc.Live, tc.Manifest))
		})
	}
}
