package install

import (
	"context"
	"fmt"
	"strings"

	"github.com/espbuild/compmgr/config"
	"github.com/espbuild/compmgr/internal/ui"
	"github.com/espbuild/compmgr/pkg/manager"
	"github.com/espbuild/compmgr/pkg/models"
	"github.com/espbuild/compmgr/pkg/registry"
	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"
)

// Components without an explicit version spec accept any version.
const defaultVersionSpec = "*"

func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install namespace/name[@constraint] ...",
		Short: "Install components matching the requested version constraints",
		Long: "Install one or more components from the component registry into the\n" +
			"components directory. Already installed components whose cached content\n" +
			"still matches are left untouched.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := executeInstall(cmd.Context(), args); err != nil {
				ui.ErrorExit(err)
			}

			return nil
		},
	}

	return cmd
}

func executeInstall(ctx context.Context, args []string) error {
	requests, err := parseComponentArgs(args)
	if err != nil {
		return err
	}

	cfg := config.FromContext(ctx)
	registryClient := registry.NewHTTPRegistryClient(cfg.Config.RegistryURL, cfg.HTTPTimeout())

	log.Debugf("Installing %d component(s) into %s from %s",
		len(requests), cfg.Config.ComponentsDir, cfg.Config.RegistryURL)

	ui.StartProgressWriter()
	defer ui.StopProgressWriter()

	advance := ui.TrackInstallProgress(len(requests))
	componentManager, err := manager.NewComponentManager(manager.ComponentManagerConfig{
		ComponentsDir: cfg.Config.ComponentsDir,
	}, registryClient, manager.ComponentManagerInteraction{
		SetStatus: ui.SetPinnedMessage,
		OnComponentResolved: func(_ *models.ResolvedComponent) {
			advance()
		},
	})
	if err != nil {
		return err
	}

	solution, err := componentManager.Install(ctx, requests)
	if err != nil {
		return err
	}

	ui.ClearPinnedMessage()
	ui.StopProgressWriter()

	ui.RenderSolution(solution)
	return nil
}

// parseComponentArgs turns CLI arguments of the form
// namespace/name[@constraint] into component requests.
func parseComponentArgs(args []string) ([]*models.ComponentRequest, error) {
	requests := make([]*models.ComponentRequest, 0, len(args))
	for _, arg := range args {
		qualifiedName, versionSpec := splitComponentArg(arg)

		req, err := models.NewComponentRequest(qualifiedName, versionSpec)
		if err != nil {
			return nil, fmt.Errorf("parsing component argument %q: %w", arg, err)
		}

		requests = append(requests, req)
	}

	return requests, nil
}

func splitComponentArg(arg string) (qualifiedName string, versionSpec string) {
	name, spec, found := strings.Cut(arg, "@")
	if !found || spec == "" {
		return name, defaultVersionSpec
	}

	return name, spec
}
