package hashing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFilteredPaths_DefaultExcludes(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	writeTestFile(t, root, "main.c", "int main() {}")
	writeTestFile(t, root, "include/api.h", "#pragma once")
	writeTestFile(t, root, ".component_hash", "deadbeef")
	writeTestFile(t, root, ".git/config", "[core]")
	writeTestFile(t, root, ".git/objects/ab/cd", "blob")
	writeTestFile(t, root, "dist/out.bin", "binary")
	writeTestFile(t, root, "sub/__pycache__/mod.pyc", "pyc")
	writeTestFile(t, root, "sdkconfig", "CONFIG_FOO=y")

	paths, err := FilteredPaths(root, nil, true)
	assert.NoError(err)

	got := make(map[string]bool, len(paths))
	for _, p := range paths {
		got[p] = true
	}

	assert.True(got["main.c"])
	assert.True(got["include"])
	assert.True(got["include/api.h"])

	// Directory-recursive excludes strip the directory entry too.
	assert.False(got[".git"])
	assert.False(got[".git/config"])
	assert.False(got[".git/objects/ab/cd"])
	assert.False(got["dist"])
	assert.False(got["dist/out.bin"])

	assert.False(got[".component_hash"])
	assert.False(got["sdkconfig"])
	assert.False(got["sub/__pycache__"])
	assert.False(got["sub/__pycache__/mod.pyc"])

	// Parent of an excluded directory survives.
	assert.True(got["sub"])
}

func TestFilteredPaths_NoDefaultExcludes(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	writeTestFile(t, root, "main.c", "int main() {}")
	writeTestFile(t, root, ".component_hash", "deadbeef")

	paths, err := FilteredPaths(root, nil, false)
	assert.NoError(err)
	assert.ElementsMatch([]string{"main.c", ".component_hash"}, paths)
}

func TestFilteredPaths_UserExcludes(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	writeTestFile(t, root, "main.c", "int main() {}")
	writeTestFile(t, root, "docs/readme.md", "# readme")
	writeTestFile(t, root, "docs/api/index.md", "# api")

	paths, err := FilteredPaths(root, []string{"docs/**/*"}, true)
	assert.NoError(err)

	got := make(map[string]bool, len(paths))
	for _, p := range paths {
		got[p] = true
	}

	assert.True(got["main.c"])
	assert.False(got["docs"])
	assert.False(got["docs/readme.md"])
	assert.False(got["docs/api"])
	assert.False(got["docs/api/index.md"])
}

func TestFilteredPaths_BadPattern(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	writeTestFile(t, root, "main.c", "int main() {}")

	_, err := FilteredPaths(root, []string{"[z-a]"}, true)
	assert.Error(err)
	assert.Contains(err.Error(), "[z-a]")
	assert.Contains(err.Error(), root)
}
