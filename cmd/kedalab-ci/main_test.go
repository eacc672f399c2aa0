package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunClusterStageBeforeConnecting(t *testing.T) {
	// An unreachable minikube binary and a missing kubeconfig: the cluster
	// stage failure must surface, not the client construction one.
	t.Setenv("PATH", "")
	t.Setenv("KEDALAB_KUBECONFIG", filepath.Join(t.TempDir(), "missing"))

	cfg, err := getConfig()
	require.NoError(t, err)

	require.ErrorContains(t, run(cfg), "failed to ensure cluster is running")
}
