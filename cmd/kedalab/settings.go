package main

import (
	"flag"

	"github.com/davidmdm/kedalab/internal/home"
)

type GlobalSettings struct {
	KubeConfigPath string
	KubeContext    string
	Debug          bool
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.StringVar(&settings.KubeConfigPath, "kubeconfig", home.Kubeconfig, "path to kube config")
	flagset.StringVar(&settings.KubeContext, "kube-context", "minikube", "kubeconfig context to use")
	flagset.BoolVar(&settings.Debug, "debug", false, "print debug timings to stderr")
}
