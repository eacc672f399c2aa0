package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpRunsClusterStageBeforeConnecting(t *testing.T) {
	// An unreachable minikube binary and a missing kubeconfig: the cluster
	// stage failure must surface, not the client construction one.
	t.Setenv("PATH", "")

	params, err := GetUpParams(GlobalSettings{}, []string{"-kubeconfig", filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	err = Up(context.Background(), *params)
	require.ErrorContains(t, err, "failed to ensure cluster is running")
}

func TestUpSkipClusterConnectsDirectly(t *testing.T) {
	params, err := GetUpParams(GlobalSettings{}, []string{"-skip-cluster", "-kubeconfig", filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	err = Up(context.Background(), *params)
	require.ErrorContains(t, err, "failed to initialize k8s client")
}
