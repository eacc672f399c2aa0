package main

import (
	"cmp"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/davidmdm/conf"

	"github.com/davidmdm/kedalab/internal/home"
	"github.com/davidmdm/kedalab/pkg/kedalab"
	"github.com/davidmdm/kedalab/pkg/workload"
)

type Config struct {
	KubeConfigPath string
	KubeContext    string
	SkipCluster    bool
	Debug          bool
	Install        kedalab.InstallParams
	Workload       workload.Workload
}

func getConfig() (cfg Config, err error) {
	conf.Var(conf.Environ, &cfg.KubeConfigPath, "KEDALAB_KUBECONFIG")
	conf.Var(conf.Environ, &cfg.KubeContext, "KEDALAB_KUBE_CONTEXT")
	conf.Var(conf.Environ, &cfg.SkipCluster, "KEDALAB_SKIP_CLUSTER")
	conf.Var(conf.Environ, &cfg.Debug, "KEDALAB_DEBUG")

	conf.Var(conf.Environ, &cfg.Install.RepoName, "KEDALAB_REPO_NAME")
	conf.Var(conf.Environ, &cfg.Install.RepoURL, "KEDALAB_REPO_URL")
	conf.Var(conf.Environ, &cfg.Install.Chart, "KEDALAB_CHART")
	conf.Var(conf.Environ, &cfg.Install.Version, "KEDALAB_CHART_VERSION")
	conf.Var(conf.Environ, &cfg.Install.Release, "KEDALAB_RELEASE")
	conf.Var(conf.Environ, &cfg.Install.Namespace, "KEDALAB_CONTROLLER_NAMESPACE")

	conf.Var(conf.Environ, &cfg.Workload.Name, "KEDALAB_WORKLOAD")
	conf.Var(conf.Environ, &cfg.Workload.Image, "KEDALAB_IMAGE")
	conf.Var(conf.Environ, &cfg.Workload.Namespace, "KEDALAB_NAMESPACE")
	conf.Var(conf.Environ, &cfg.Workload.CPURequest, "KEDALAB_CPU_REQUEST")
	conf.Var(conf.Environ, &cfg.Workload.CPULimit, "KEDALAB_CPU_LIMIT")
	conf.Var(conf.Environ, &cfg.Workload.MemoryRequest, "KEDALAB_MEMORY_REQUEST")
	conf.Var(conf.Environ, &cfg.Workload.MemoryLimit, "KEDALAB_MEMORY_LIMIT")
	conf.Var(conf.Environ, &cfg.Workload.Ports, "KEDALAB_PORTS")
	conf.Var(conf.Environ, &cfg.Workload.Trigger, "KEDALAB_TRIGGER")
	conf.Var(conf.Environ, &cfg.Workload.Threshold, "KEDALAB_THRESHOLD")

	if err = conf.Environ.Parse(); err != nil {
		return
	}

	if version := cfg.Install.Version; version != "" && !semver.IsValid("v"+version) {
		err = fmt.Errorf("invalid chart version: %s", version)
		return
	}

	cfg.KubeConfigPath = cmp.Or(cfg.KubeConfigPath, home.Kubeconfig)
	cfg.KubeContext = cmp.Or(cfg.KubeContext, "minikube")

	install := kedalab.DefaultInstallParams()
	cfg.Install.RepoName = cmp.Or(cfg.Install.RepoName, install.RepoName)
	cfg.Install.RepoURL = cmp.Or(cfg.Install.RepoURL, install.RepoURL)
	cfg.Install.Chart = cmp.Or(cfg.Install.Chart, install.Chart)
	cfg.Install.Release = cmp.Or(cfg.Install.Release, install.Release)
	cfg.Install.Namespace = cmp.Or(cfg.Install.Namespace, install.Namespace)

	spec := workload.Default()
	cfg.Workload.Name = cmp.Or(cfg.Workload.Name, spec.Name)
	cfg.Workload.Image = cmp.Or(cfg.Workload.Image, spec.Image)
	cfg.Workload.Namespace = cmp.Or(cfg.Workload.Namespace, spec.Namespace)
	cfg.Workload.CPURequest = cmp.Or(cfg.Workload.CPURequest, spec.CPURequest)
	cfg.Workload.CPULimit = cmp.Or(cfg.Workload.CPULimit, spec.CPULimit)
	cfg.Workload.MemoryRequest = cmp.Or(cfg.Workload.MemoryRequest, spec.MemoryRequest)
	cfg.Workload.MemoryLimit = cmp.Or(cfg.Workload.MemoryLimit, spec.MemoryLimit)
	cfg.Workload.Trigger = cmp.Or(cfg.Workload.Trigger, spec.Trigger)
	// Zero values read as unset: threshold 0 and an empty port list take the
	// defaults.
	if len(cfg.Workload.Ports) == 0 {
		cfg.Workload.Ports = spec.Ports
	}
	if cfg.Workload.Threshold == 0 {
		cfg.Workload.Threshold = spec.Threshold
	}

	return
}
