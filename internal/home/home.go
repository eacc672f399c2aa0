package home

import (
	"os"
	"path/filepath"
)

var Kubeconfig string

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	Kubeconfig = filepath.Join(home, ".kube/config")
}
