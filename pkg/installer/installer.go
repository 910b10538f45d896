// Package installer ensures a single requested component is present at
// its target root, verified by content hash, downloading and unpacking
// from the registry only when the local copy is missing or stale.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/espbuild/compmgr/pkg/hashing"
	"github.com/espbuild/compmgr/pkg/manifest"
	"github.com/espbuild/compmgr/pkg/models"
	"github.com/espbuild/compmgr/pkg/registry"
	"github.com/google/uuid"
	"github.com/safedep/dry/log"
)

// Installer installs one component at a time. The registry client is
// injected so tests can substitute a fake.
type Installer struct {
	registry registry.Client
}

// New creates an Installer backed by the given registry client.
func New(registryClient registry.Client) *Installer {
	return &Installer{
		registry: registryClient,
	}
}

// EnsureInstalled drives a component through the install state machine:
// check the cache, and on a stale or missing cache remove the old
// contents, fetch the best matching version, unpack it, and record the
// new content hash. Either way it finishes by reading the on-disk
// manifest and marker into a ResolvedComponent.
func (i *Installer) EnsureInstalled(ctx context.Context, req *models.ComponentRequest, root string) (*models.ResolvedComponent, error) {
	st := i.checkCache(req, root)

	if st == stateCacheStaleOrMissing {
		if err := i.removeStale(req, root); err != nil {
			return nil, err
		}

		archivePath, err := i.fetch(ctx, req, root)
		if err != nil {
			return nil, err
		}
		defer os.Remove(archivePath)

		st = stateFetching
		log.Debugf("Component %s: %s", req.QualifiedName(), st)

		if err := i.unpack(req, archivePath, root); err != nil {
			return nil, err
		}

		st = stateUnpacked
		log.Debugf("Component %s: %s", req.QualifiedName(), st)

		if err := i.rehash(req, root); err != nil {
			return nil, err
		}

		st = stateRehashed
		log.Debugf("Component %s: %s", req.QualifiedName(), st)
	}

	resolved, err := i.resolve(req, root)
	if err != nil {
		return nil, err
	}

	log.Debugf("Component %s: %s at %s", req.QualifiedName(), stateResolved, resolved.Path)
	return resolved, nil
}

// checkCache decides the Unchecked -> {CacheValid, CacheStaleOrMissing}
// transition. The cache is valid when the root exists, the installed
// manifest version satisfies the constraint, and a cache marker, if one
// exists, is well formed and matches the recomputed content hash. A
// corrupt marker is stale, not fatal: re-fetching rewrites it.
func (i *Installer) checkCache(req *models.ComponentRequest, root string) state {
	matches, err := manifest.InstalledVersionMatches(req.Constraint, root)
	if err != nil || !matches {
		if err != nil {
			log.Warnf("Component %s: cache check failed, treating as stale: %v", req.QualifiedName(), err)
		}

		return stateCacheStaleOrMissing
	}

	if _, err := os.Stat(hashing.MarkerFilePath(root)); err == nil {
		if err := hashing.ValidateDirWithMarkerFile(root); err != nil {
			if errors.Is(err, hashing.ErrMarkerCorrupted) {
				log.Warnf("Component %s: corrupt cache marker, re-fetching: %v", req.QualifiedName(), err)
			} else {
				log.Warnf("Component %s: cache marker mismatch, re-fetching: %v", req.QualifiedName(), err)
			}

			return stateCacheStaleOrMissing
		}
	}

	log.Debugf("Component %s matching %q is already installed at %s",
		req.QualifiedName(), req.ConstraintSpec, root)
	return stateCacheValid
}

// removeStale deletes the old component root before fetching. Failing to
// remove it is fatal: installing over a half-removed directory would
// produce an inconsistent tree.
func (i *Installer) removeStale(req *models.ComponentRequest, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	log.Debugf("Removing stale component %s at %s", req.QualifiedName(), root)

	if err := os.RemoveAll(root); err != nil {
		return ErrFilesystem.
			Wrap(fmt.Errorf("removing stale component %s at %s: %w", req.QualifiedName(), root, err))
	}

	return nil
}

// fetch queries the registry, selects the best matching version, and
// downloads its archive to a staging file. The caller owns the returned
// file and removes it when done.
func (i *Installer) fetch(ctx context.Context, req *models.ComponentRequest, root string) (string, error) {
	metadata, err := i.registry.GetComponentMetadata(ctx, req.Namespace, req.Name)
	if err != nil {
		return "", fmt.Errorf("fetching metadata for %s: %w", req.QualifiedName(), err)
	}

	best, err := registry.SelectBestVersion(metadata, req.Constraint)
	if err != nil {
		return "", fmt.Errorf("resolving %s against constraint %q: %w",
			req.QualifiedName(), req.ConstraintSpec, err)
	}

	log.Debugf("Downloading component %s version %s from %s to %s",
		req.QualifiedName(), best.Version, best.URL, root)

	body, err := i.registry.DownloadArchive(ctx, best.URL)
	if err != nil {
		return "", fmt.Errorf("downloading %s version %s: %w", req.QualifiedName(), best.Version, err)
	}
	defer body.Close()

	stagingPath := filepath.Join(os.TempDir(), fmt.Sprintf("compmgr-%s.tgz", uuid.NewString()))

	staging, err := os.Create(stagingPath)
	if err != nil {
		return "", ErrFilesystem.
			Wrap(fmt.Errorf("creating staging file %s: %w", stagingPath, err))
	}

	if _, err := io.Copy(staging, body); err != nil {
		staging.Close()
		os.Remove(stagingPath)
		return "", fmt.Errorf("downloading %s version %s: %w", req.QualifiedName(), best.Version, err)
	}

	if err := staging.Close(); err != nil {
		os.Remove(stagingPath)
		return "", ErrFilesystem.
			Wrap(fmt.Errorf("writing staging file %s: %w", stagingPath, err))
	}

	return stagingPath, nil
}

// rehash computes the content hash of the freshly unpacked tree with the
// default excludes only and persists it as the cache marker.
func (i *Installer) rehash(req *models.ComponentRequest, root string) error {
	hash, err := hashing.HashDir(root, nil, true)
	if err != nil {
		return fmt.Errorf("hashing component %s at %s: %w", req.QualifiedName(), root, err)
	}

	if err := hashing.WriteMarkerFile(root, hash); err != nil {
		return ErrFilesystem.
			Wrap(fmt.Errorf("recording cache marker for %s: %w", req.QualifiedName(), err))
	}

	return nil
}

// resolve reads the on-disk manifest and cache marker into the final
// ResolvedComponent record. A missing manifest after install is an
// invariant violation, not a recoverable condition.
func (i *Installer) resolve(req *models.ComponentRequest, root string) (*models.ResolvedComponent, error) {
	m, err := manifest.Read(root)
	if err != nil {
		return nil, fmt.Errorf("reading manifest of %s: %w", req.QualifiedName(), err)
	}

	if m == nil {
		return nil, ErrManifestMissing.
			Wrap(fmt.Errorf("component %s has no %s at %s", req.QualifiedName(), manifest.FileName, root))
	}

	version, err := m.SemVersion()
	if err != nil {
		return nil, fmt.Errorf("reading manifest of %s: %w", req.QualifiedName(), err)
	}

	var componentHash *string
	if hash, err := hashing.ReadMarkerFile(root); err == nil {
		componentHash = &hash
	} else {
		log.Debugf("Component %s has no readable cache marker: %v", req.QualifiedName(), err)
	}

	return &models.ResolvedComponent{
		Namespace:     req.Namespace,
		Name:          req.Name,
		Version:       version,
		ComponentHash: componentHash,
		Path:          root,
	}, nil
}
