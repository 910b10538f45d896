package hashing

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// defaultExcludePatterns is the built-in exclude list applied when hashing
// a component directory. It must stay byte-for-byte stable: changing any
// pattern changes the content hash of every already-installed component.
var defaultExcludePatterns = []string{
	// Python files
	"**/__pycache__",
	"**/*.pyc",
	"**/*.pyd",
	"**/*.pyo",
	// macOS files
	"**/.DS_Store",
	// Git
	"**/.git/**/*",
	// SVN
	"**/.svn/**/*",
	// dist and build artefacts
	"**/dist/**/*",
	"**/build/**/*",
	// artifacts from example projects
	"**/managed_components/**/*",
	"**/dependencies.lock",
	// CI files
	"**/.github/**/*",
	"**/.gitlab-ci.yml",
	// IDE files
	"**/.idea/**/*",
	"**/.vscode/**/*",
	// Configs
	"**/.settings/**/*",
	"**/sdkconfig",
	"**/sdkconfig.old",
	// Hash file
	"**/.component_hash",
}

// FilteredPaths enumerates every path under root, removes those matching
// the built-in exclude list (when excludeDefault is set) and the given
// extra exclude patterns, and returns the survivors as slash-separated
// paths relative to root. Directories are included; ordering is not
// guaranteed. A pattern that fails to compile fails the whole call.
func FilteredPaths(root string, excludePatterns []string, excludeDefault bool) ([]string, error) {
	paths := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		paths[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", root, err)
	}

	exclude := func(pattern string) error {
		if err := removeMatches(paths, pattern); err != nil {
			return fmt.Errorf("filtering %s: %w", root, err)
		}

		// A directory-recursive pattern also strips the directory entry
		// itself so empty directory shells do not leak into the result.
		if strings.HasSuffix(pattern, "/**/*") {
			dirPattern := strings.TrimSuffix(pattern, "/**/*")
			if err := removeMatches(paths, dirPattern); err != nil {
				return fmt.Errorf("filtering %s: %w", root, err)
			}
		}

		return nil
	}

	if excludeDefault {
		for _, pattern := range defaultExcludePatterns {
			if err := exclude(pattern); err != nil {
				return nil, err
			}
		}
	}

	for _, pattern := range excludePatterns {
		if err := exclude(pattern); err != nil {
			return nil, err
		}
	}

	result := make([]string, 0, len(paths))
	for rel := range paths {
		result = append(result, rel)
	}

	return result, nil
}

func removeMatches(paths map[string]struct{}, pattern string) error {
	re, err := compileGlob(pattern)
	if err != nil {
		return err
	}

	for rel := range paths {
		if re.MatchString(rel) {
			delete(paths, rel)
		}
	}

	return nil
}
