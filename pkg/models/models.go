package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver"
	"github.com/espbuild/compmgr/usefulerror"
)

// ComponentRequest is a declared dependency on a registry component,
// identified by a qualified "namespace/name" and a semantic version
// constraint. Immutable once constructed.
type ComponentRequest struct {
	Namespace string
	Name      string

	// Constraint is the parsed version range the installed component
	// must satisfy.
	Constraint *semver.Constraints

	// ConstraintSpec is the original constraint string, kept for
	// diagnostics since the parsed form does not round-trip.
	ConstraintSpec string
}

// NewComponentRequest parses a qualified component name ("namespace/name")
// and a version constraint specification into a ComponentRequest.
func NewComponentRequest(qualifiedName, versionSpec string) (*ComponentRequest, error) {
	parts := strings.Split(qualifiedName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidComponentName.
			Wrap(fmt.Errorf("invalid component name %q, expected namespace/name", qualifiedName))
	}

	constraint, err := semver.NewConstraint(versionSpec)
	if err != nil {
		return nil, usefulerror.Useful().
			WithCode(usefulerror.ErrCodeConstraintParse).
			WithHumanError(fmt.Sprintf("The version constraint %q for component %q is not valid.", versionSpec, qualifiedName)).
			WithHelp("Use a semantic version range such as \"1.2.0\", \"^1.2\", or \">=1.0.0, <2.0.0\".").
			Wrap(fmt.Errorf("parsing version constraint %q for %s: %w", versionSpec, qualifiedName, err))
	}

	return &ComponentRequest{
		Namespace:      parts[0],
		Name:           parts[1],
		Constraint:     constraint,
		ConstraintSpec: versionSpec,
	}, nil
}

// QualifiedName returns the registry-facing "namespace/name" identifier.
func (r *ComponentRequest) QualifiedName() string {
	return fmt.Sprintf("%s/%s", r.Namespace, r.Name)
}

// TargetDirName returns the directory name a component installs into.
// Namespace and name are joined with "__", which neither may contain a
// slash, so distinct components never collide on disk.
func (r *ComponentRequest) TargetDirName() string {
	return fmt.Sprintf("%s__%s", r.Namespace, r.Name)
}

// PublishedVersion is a single version of a component as reported by the
// registry. Yanked versions remain visible for diagnostics but are never
// selected for installation.
type PublishedVersion struct {
	Version  string     `json:"version"`
	URL      string     `json:"url"`
	YankedAt *time.Time `json:"yanked_at,omitempty"`
}

// Yanked reports whether this version has been retracted from selection.
func (v *PublishedVersion) Yanked() bool {
	return v.YankedAt != nil
}

// ComponentMetadata is the registry's view of a component: the list of
// versions published for it.
type ComponentMetadata struct {
	Name     string             `json:"name"`
	Versions []PublishedVersion `json:"versions"`
}

// ResolvedComponent is the result of a successful install-or-validate
// cycle for one requested component.
type ResolvedComponent struct {
	Namespace     string
	Name          string
	Version       *semver.Version
	ComponentHash *string

	// Path is the absolute component root directory on disk.
	Path string
}

// QualifiedName returns the "namespace/name" identifier of the resolved
// component.
func (c *ResolvedComponent) QualifiedName() string {
	return fmt.Sprintf("%s/%s", c.Namespace, c.Name)
}

// DependencySolution holds one ResolvedComponent per requested component,
// in request order. Entries are independent of each other.
type DependencySolution struct {
	Resolved []*ResolvedComponent
}
