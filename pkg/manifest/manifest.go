// Package manifest reads the component manifest file shipped inside an
// installed component's root directory. The manifest is authoritative for
// the installed name and version; this package never writes it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest file at a component root's top level.
const FileName = "idf_component.yml"

// Manifest is the component manifest as declared by the upstream package.
type Manifest struct {
	Name         string            `yaml:"name,omitempty"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description,omitempty"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
}

// SemVersion parses the manifest version as a semantic version.
func (m *Manifest) SemVersion() (*semver.Version, error) {
	version, err := semver.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest version %q: %w", m.Version, err)
	}

	return version, nil
}

// Path returns the manifest file path for a component root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Read parses the manifest of a component root. Returns (nil, nil) when
// the component has no manifest file.
func Read(root string) (*Manifest, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading manifest %s: %w", Path(root), err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", Path(root), err)
	}

	return &m, nil
}

// InstalledVersionMatches reports whether a component root holds an
// installed manifest whose version satisfies the constraint. A missing
// root, missing manifest, or unparsable manifest version all report
// false without error: they mean "not installed", not failure.
func InstalledVersionMatches(constraint *semver.Constraints, root string) (bool, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return false, nil
	}

	m, err := Read(root)
	if err != nil {
		return false, err
	}

	if m == nil {
		return false, nil
	}

	version, err := m.SemVersion()
	if err != nil {
		return false, nil
	}

	return constraint.Check(version), nil
}
