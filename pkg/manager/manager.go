// Package manager is the batch facade over the component installer: it
// takes a list of component requests and ensures each is installed under
// the components directory, returning the aggregate solution.
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/espbuild/compmgr/pkg/installer"
	"github.com/espbuild/compmgr/pkg/models"
	"github.com/espbuild/compmgr/pkg/registry"
	"github.com/safedep/dry/log"
)

// ComponentManagerConfig configures the component manager.
type ComponentManagerConfig struct {
	// ComponentsDir is the directory components are installed under.
	ComponentsDir string
}

// DefaultComponentManagerConfig returns the stock configuration, rooted
// at the conventional managed components directory.
func DefaultComponentManagerConfig() ComponentManagerConfig {
	return ComponentManagerConfig{
		ComponentsDir: "managed_components",
	}
}

// ComponentManagerInteraction carries optional UI callbacks. Nil
// members are skipped; library code never renders output itself.
type ComponentManagerInteraction struct {
	// SetStatus is called with a progress message before each component.
	SetStatus func(status string)

	// OnComponentResolved is called after each component resolves.
	OnComponentResolved func(component *models.ResolvedComponent)
}

type componentManager struct {
	config      ComponentManagerConfig
	interaction ComponentManagerInteraction
	installer   *installer.Installer
}

// NewComponentManager creates a component manager that installs through
// the given registry client.
func NewComponentManager(config ComponentManagerConfig, registryClient registry.Client,
	interaction ComponentManagerInteraction) (*componentManager, error) {
	if config.ComponentsDir == "" {
		return nil, fmt.Errorf("components directory must not be empty")
	}

	return &componentManager{
		config:      config,
		interaction: interaction,
		installer:   installer.New(registryClient),
	}, nil
}

func (m *componentManager) setStatus(status string) {
	if m.interaction.SetStatus != nil {
		m.interaction.SetStatus(status)
	}
}

func (m *componentManager) componentResolved(component *models.ResolvedComponent) {
	if m.interaction.OnComponentResolved != nil {
		m.interaction.OnComponentResolved(component)
	}
}

// Install ensures every requested component is installed, in request
// order. Each component resolves independently; the first failure aborts
// the batch. The returned solution holds one resolved component per
// request, in the same order.
func (m *componentManager) Install(ctx context.Context, requests []*models.ComponentRequest) (*models.DependencySolution, error) {
	componentsDir, err := filepath.Abs(m.config.ComponentsDir)
	if err != nil {
		return nil, fmt.Errorf("resolving components directory %s: %w", m.config.ComponentsDir, err)
	}

	if err := os.MkdirAll(componentsDir, 0o755); err != nil {
		return nil, installer.ErrFilesystem.
			Wrap(fmt.Errorf("creating components directory %s: %w", componentsDir, err))
	}

	resolved := make([]*models.ResolvedComponent, 0, len(requests))
	for _, req := range requests {
		root := filepath.Join(componentsDir, req.TargetDirName())

		log.Debugf("Ensuring component %s matching %q is installed", req.QualifiedName(), req.ConstraintSpec)
		m.setStatus(fmt.Sprintf("Installing %s %s", req.QualifiedName(), req.ConstraintSpec))

		component, err := m.installer.EnsureInstalled(ctx, req, root)
		if err != nil {
			return nil, fmt.Errorf("installing component %s: %w", req.QualifiedName(), err)
		}

		m.componentResolved(component)
		resolved = append(resolved, component)
	}

	return &models.DependencySolution{Resolved: resolved}, nil
}
