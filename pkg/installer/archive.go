package installer

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/espbuild/compmgr/pkg/hashing"
	"github.com/espbuild/compmgr/pkg/models"
)

// unpack extracts a gzip-compressed tar archive into the component root.
// Any failure is fatal and leaves no cache marker behind, so the next run
// re-detects the component as stale and fetches it again.
func (i *Installer) unpack(req *models.ComponentRequest, archivePath, root string) error {
	if err := extractTarGz(archivePath, root); err != nil {
		// A failed unpack must not look like a valid cache.
		os.Remove(hashing.MarkerFilePath(root))

		return ErrFilesystem.
			Wrap(fmt.Errorf("unpacking %s into %s: %w", req.QualifiedName(), root, err))
	}

	return nil
}

func extractTarGz(archivePath, root string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", root, err)
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive %s: %w", archivePath, err)
		}

		target, err := securePath(root, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", filepath.Dir(target), err)
			}

			if err := writeFileFromTar(target, tr, header); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := secureLinkTarget(root, target, header.Linkname); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", filepath.Dir(target), err)
			}

			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", target, err)
			}

		default:
			// Hard links, devices and the like have no place in a
			// component archive.
			return fmt.Errorf("unsupported entry type %q for %s in archive", header.Typeflag, header.Name)
		}
	}
}

func writeFileFromTar(target string, tr *tar.Reader, header *tar.Header) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode).Perm())
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}

	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return fmt.Errorf("writing file %s: %w", target, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", target, err)
	}

	return nil
}

// securePath resolves an archive entry name under root, rejecting
// absolute names and parent-directory escapes.
func securePath(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || cleaned == ".." {
		return "", fmt.Errorf("archive entry %q escapes the component root", name)
	}

	return filepath.Join(root, cleaned), nil
}

// secureLinkTarget rejects symlinks whose resolved destination falls
// outside the component root.
func secureLinkTarget(root, linkPath, linkTarget string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("archive symlink %q has an absolute target %q", linkPath, linkTarget)
	}

	resolved := filepath.Clean(filepath.Join(filepath.Dir(linkPath), linkTarget))
	if !strings.HasPrefix(resolved, filepath.Clean(root)+string(os.PathSeparator)) {
		return fmt.Errorf("archive symlink %q escapes the component root", linkPath)
	}

	return nil
}
