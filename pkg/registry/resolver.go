package registry

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/espbuild/compmgr/pkg/models"
	"github.com/safedep/dry/log"
)

// SelectBestVersion picks the highest non-yanked published version that
// satisfies the constraint, under standard semantic version precedence.
// Versions with equal precedence keep the first one encountered in the
// registry's published order (the scan only replaces the current best on
// a strictly greater candidate). Published version strings that do not
// parse as semantic versions are skipped.
//
// On failure the error lists every non-yanked published version so the
// user can see what was available.
func SelectBestVersion(metadata *models.ComponentMetadata, constraint *semver.Constraints) (*models.PublishedVersion, error) {
	var best *models.PublishedVersion
	var bestVersion *semver.Version

	for i := range metadata.Versions {
		published := &metadata.Versions[i]
		if published.Yanked() {
			continue
		}

		version, err := semver.NewVersion(published.Version)
		if err != nil {
			log.Warnf("Skipping unparsable published version %q of %s", published.Version, metadata.Name)
			continue
		}

		if !constraint.Check(version) {
			continue
		}

		if bestVersion == nil || version.GreaterThan(bestVersion) {
			best = published
			bestVersion = version
		}
	}

	if best == nil {
		return nil, ErrNoMatchingVersion.
			Wrap(fmt.Errorf("no version of %s satisfies the constraint, available versions are: %s",
				metadata.Name, availableVersions(metadata)))
	}

	return best, nil
}

// availableVersions renders the non-yanked published versions for
// diagnostics, in the registry's published order.
func availableVersions(metadata *models.ComponentMetadata) string {
	versions := make([]string, 0, len(metadata.Versions))
	for i := range metadata.Versions {
		if metadata.Versions[i].Yanked() {
			continue
		}

		versions = append(versions, metadata.Versions[i].Version)
	}

	if len(versions) == 0 {
		return "(none)"
	}

	return strings.Join(versions, ", ")
}
