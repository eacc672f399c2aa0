package minikube

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRunning(t *testing.T) {
	cases := []struct {
		Name     string
		Status   string
		Expected bool
	}{
		{
			Name: "running profile",
			Status: "minikube\n" +
				"type: Control Plane\n" +
				"host: Running\n" +
				"kubelet: Running\n" +
				"apiserver: Running\n" +
				"kubeconfig: Configured\n",
			Expected: true,
		},
		{
			Name: "stopped profile",
			Status: "minikube\n" +
				"type: Control Plane\n" +
				"host: Stopped\n" +
				"kubelet: Stopped\n" +
				"apiserver: Stopped\n" +
				"kubeconfig: Stopped\n",
			Expected: false,
		},
		{
			Name:     "empty output",
			Status:   "",
			Expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			require.Equal(t, tc.Expected, isRunning(tc.Status))
		})
	}
}
