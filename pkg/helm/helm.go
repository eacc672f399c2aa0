// Package helm wraps the parts of the helm sdk the controller install needs:
// repository registration, index refresh, and chart installation. Linking helm
// in-process means there is no separate binary to probe for; only its
// repository config on disk may be missing, and that is treated as first-time
// setup.
package helm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"

	"github.com/davidmdm/x/xerr"

	"github.com/davidmdm/kedalab/internal"
)

type Client struct {
	settings *cli.EnvSettings
}

// NewClient builds a helm client against the named context of a kubeconfig.
// Repository config and cache locations come from the standard helm
// environment.
func NewClient(kubeconfig, kubecontext string) *Client {
	settings := cli.New()
	settings.KubeConfig = kubeconfig
	settings.KubeContext = kubecontext
	return &Client{settings: settings}
}

// AddRepo registers a chart repository and downloads its index. Re-adding a
// repository under the same name and url is a no-op; the same name with a
// different url is an error.
func (client Client) AddRepo(ctx context.Context, name, url string) error {
	defer internal.DebugTimer(ctx, "add chart repository "+name)()

	file, err := client.loadRepoFile()
	if err != nil {
		return err
	}

	if existing := file.Get(name); existing != nil {
		if existing.URL != url {
			return fmt.Errorf("repository %s already registered with url %s", name, existing.URL)
		}
		return nil
	}

	entry := repo.Entry{Name: name, URL: url}

	chartRepo, err := repo.NewChartRepository(&entry, getter.All(client.settings))
	if err != nil {
		return fmt.Errorf("failed to initialize chart repository: %w", err)
	}
	chartRepo.CachePath = client.settings.RepositoryCache

	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return fmt.Errorf("failed to download index for %s: %w", url, err)
	}

	file.Update(&entry)

	if err := file.WriteFile(client.settings.RepositoryConfig, 0o644); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}

	return nil
}

// UpdateRepos re-downloads the index of every registered repository.
func (client Client) UpdateRepos(ctx context.Context) error {
	defer internal.DebugTimer(ctx, "update chart repositories")()

	file, err := client.loadRepoFile()
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range file.Repositories {
		chartRepo, err := repo.NewChartRepository(entry, getter.All(client.settings))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
			continue
		}
		chartRepo.CachePath = client.settings.RepositoryCache

		if _, err := chartRepo.DownloadIndexFile(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
		}
	}

	return xerr.MultiErrOrderedFrom("failed to update repositories", errs...)
}

type InstallParams struct {
	Chart     string
	Release   string
	Namespace string
	Version   string
	Values    map[string]any
}

// Install locates the chart through the registered repositories and installs
// it as a new release, creating the target namespace if absent. Installing
// over an existing release fails; there are no upgrade semantics here.
func (client Client) Install(ctx context.Context, params InstallParams) (*release.Release, error) {
	defer internal.DebugTimer(ctx, "install chart "+params.Chart)()

	debug := internal.Debug(ctx)

	cfg := new(action.Configuration)

	err := cfg.Init(
		client.settings.RESTClientGetter(),
		params.Namespace,
		os.Getenv("HELM_DRIVER"),
		func(format string, args ...any) { debug.Printf(format+"\n", args...) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize helm configuration: %w", err)
	}

	install := action.NewInstall(cfg)
	install.ReleaseName = params.Release
	install.Namespace = params.Namespace
	install.CreateNamespace = true
	install.Version = params.Version

	path, err := install.ChartPathOptions.LocateChart(params.Chart, client.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to locate chart %s: %w", params.Chart, err)
	}

	chart, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	release, err := install.RunWithContext(ctx, chart, params.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to install chart %s: %w", params.Chart, err)
	}

	return release, nil
}

func (client Client) loadRepoFile() (*repo.File, error) {
	file, err := repo.LoadFile(client.settings.RepositoryConfig)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load repository config: %w", err)
		}
		// First run: no repositories registered yet.
		file = repo.NewFile()
	}
	return file, nil
}
