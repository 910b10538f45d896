package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	// MarkerFileName is the cache marker written at a component root
	// after a successful install. It records the directory content hash
	// and is always excluded from its own hash computation.
	MarkerFileName = ".component_hash"

	// hashBlockSize is the read block size for streaming file hashes.
	hashBlockSize = 64 * 1024
)

var sha256HexRe = regexp.MustCompile(`^[A-Fa-f0-9]{64}$`)

// HashDir computes a deterministic SHA-256 hash over the filtered contents
// of root. Entries are hashed in byte-lexicographic order of their
// slash-separated relative paths; for each file the relative path bytes
// are fed to the hash followed by the lowercase hex SHA-256 of the file
// content. Directories contribute nothing. The result is stable across
// path separator conventions.
func HashDir(root string, excludePatterns []string, excludeDefault bool) (string, error) {
	rels, err := FilteredPaths(root, excludePatterns, excludeDefault)
	if err != nil {
		return "", err
	}

	sort.Strings(rels)

	sha := sha256.New()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			continue
		}

		fileHash, err := hashFile(path)
		if err != nil {
			return "", err
		}

		sha.Write([]byte(rel))
		sha.Write([]byte(fileHash))
	}

	return hex.EncodeToString(sha.Sum(nil)), nil
}

// hashFile streams the file through SHA-256 in fixed-size blocks and
// returns the lowercase hex digest.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sha := sha256.New()
	buf := make([]byte, hashBlockSize)

	if _, err := io.CopyBuffer(sha, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}

	return hex.EncodeToString(sha.Sum(nil)), nil
}

// MarkerFilePath returns the path of the cache marker for a component root.
func MarkerFilePath(root string) string {
	return filepath.Join(root, MarkerFileName)
}

// ReadMarkerFile reads the recorded content hash from the cache marker of
// a component root. It fails when no marker is present; the component must
// be deleted and downloaded again in that case.
func ReadMarkerFile(root string) (string, error) {
	markerPath := MarkerFilePath(root)

	data, err := os.ReadFile(markerPath)
	if err != nil {
		return "", fmt.Errorf("cache marker %s is not readable, delete the component directory and install again: %w",
			markerPath, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// WriteMarkerFile records the content hash of a component root in its
// cache marker, replacing any previous marker. Last write wins; the
// marker is only written immediately after a successful install.
func WriteMarkerFile(root, hash string) error {
	markerPath := MarkerFilePath(root)

	if err := os.WriteFile(markerPath, []byte(hash), 0o644); err != nil {
		return fmt.Errorf("writing cache marker %s: %w", markerPath, err)
	}

	return nil
}

// ValidateDir recomputes the content hash of a component root and compares
// it against the expected hash. The marker file is excluded from the
// computation.
func ValidateDir(root, expectedHash string) (bool, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return false, fmt.Errorf("component root is not a directory: %s", root)
	}

	currentHash, err := HashDir(root, []string{MarkerFileName}, true)
	if err != nil {
		return false, err
	}

	return currentHash == expectedHash, nil
}

// ValidateDirWithMarkerFile verifies that a component root still matches
// the hash recorded in its cache marker. A missing marker is an error. A
// marker that is not a well-formed SHA-256 digest fails with
// ErrMarkerCorrupted so callers can treat the cache as stale instead of
// failing hard.
func ValidateDirWithMarkerFile(root string) error {
	markerPath := MarkerFilePath(root)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("component root is not a directory: %s", root)
	}

	if _, err := os.Stat(markerPath); err != nil {
		return fmt.Errorf("cache marker does not exist: %s", markerPath)
	}

	recorded, err := ReadMarkerFile(root)
	if err != nil {
		return err
	}

	if !sha256HexRe.MatchString(recorded) {
		return ErrMarkerCorrupted.
			Wrap(fmt.Errorf("cache marker %s does not contain a SHA-256 digest", markerPath))
	}

	ok, err := ValidateDir(root, recorded)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("contents of %s changed since the recorded cache marker %s, delete the component directory and install again",
			root, markerPath)
	}

	return nil
}
