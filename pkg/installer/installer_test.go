package installer

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/espbuild/compmgr/pkg/hashing"
	"github.com/espbuild/compmgr/pkg/models"
	"github.com/espbuild/compmgr/pkg/registry"
	"github.com/stretchr/testify/assert"
)

// fakeRegistry serves canned metadata and archives and counts calls so
// tests can assert on cache hits performing zero network operations.
type fakeRegistry struct {
	metadata      *models.ComponentMetadata
	archives      map[string][]byte
	metadataCalls int
	downloadCalls int
}

var _ registry.Client = (*fakeRegistry)(nil)

func (f *fakeRegistry) GetComponentMetadata(ctx context.Context, namespace, name string) (*models.ComponentMetadata, error) {
	f.metadataCalls++

	if f.metadata == nil {
		return nil, registry.ErrComponentNotFound.
			Wrap(fmt.Errorf("component %s/%s not found", namespace, name))
	}

	return f.metadata, nil
}

func (f *fakeRegistry) DownloadArchive(ctx context.Context, url string) (io.ReadCloser, error) {
	f.downloadCalls++

	data, ok := f.archives[url]
	if !ok {
		return nil, registry.ErrRegistryUnavailable.
			Wrap(fmt.Errorf("no archive at %s", url))
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		})
		assert.NoError(t, err)

		_, err = tw.Write([]byte(content))
		assert.NoError(t, err)
	}

	assert.NoError(t, tw.Close())
	assert.NoError(t, gz.Close())

	return buf.Bytes()
}

func yanked() *time.Time {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &at
}

func mdnsRegistry(t *testing.T) *fakeRegistry {
	return &fakeRegistry{
		metadata: &models.ComponentMetadata{
			Name: "espressif/mdns",
			Versions: []models.PublishedVersion{
				{Version: "1.0.0", URL: "https://r/mdns-1.0.0.tgz"},
				{Version: "1.1.0", URL: "https://r/mdns-1.1.0.tgz", YankedAt: yanked()},
				{Version: "1.2.0", URL: "https://r/mdns-1.2.0.tgz"},
			},
		},
		archives: map[string][]byte{
			"https://r/mdns-1.0.0.tgz": buildArchive(t, map[string]string{
				"idf_component.yml": "name: mdns\nversion: \"1.0.0\"\n",
				"mdns.c":            "// v1.0.0",
			}),
			"https://r/mdns-1.2.0.tgz": buildArchive(t, map[string]string{
				"idf_component.yml": "name: mdns\nversion: \"1.2.0\"\n",
				"mdns.c":            "// v1.2.0",
				"include/mdns.h":    "#pragma once",
			}),
		},
	}
}

func mustRequest(t *testing.T, spec string) *models.ComponentRequest {
	t.Helper()

	req, err := models.NewComponentRequest("espressif/mdns", spec)
	assert.NoError(t, err)
	return req
}

func TestEnsureInstalled_FreshInstall(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	resolved, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	assert.Equal("espressif", resolved.Namespace)
	assert.Equal("mdns", resolved.Name)
	assert.Equal("1.2.0", resolved.Version.String())
	assert.Equal(root, resolved.Path)

	assert.NotNil(resolved.ComponentHash)
	assert.Regexp("^[a-f0-9]{64}$", *resolved.ComponentHash)

	// The unpacked tree and its marker are on disk and consistent.
	assert.FileExists(filepath.Join(root, "mdns.c"))
	assert.FileExists(filepath.Join(root, "include", "mdns.h"))
	assert.NoError(hashing.ValidateDirWithMarkerFile(root))

	assert.Equal(1, reg.metadataCalls)
	assert.Equal(1, reg.downloadCalls)
}

func TestEnsureInstalled_SecondCallIsCacheHit(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")
	inst := New(reg)

	first, err := inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	second, err := inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	// No network activity on the second call.
	assert.Equal(1, reg.metadataCalls)
	assert.Equal(1, reg.downloadCalls)

	assert.Equal(first.Version.String(), second.Version.String())
	assert.Equal(*first.ComponentHash, *second.ComponentHash)
	assert.Equal(first.Path, second.Path)
}

func TestEnsureInstalled_TruncatedMarkerTriggersRefetch(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")
	inst := New(reg)

	_, err := inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	// Corrupt the marker by truncating it.
	assert.NoError(os.WriteFile(hashing.MarkerFilePath(root), []byte("ab12cd34ef"), 0o644))

	_, err = inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	assert.Equal(2, reg.metadataCalls)
	assert.Equal(2, reg.downloadCalls)
	assert.NoError(hashing.ValidateDirWithMarkerFile(root))
}

func TestEnsureInstalled_ContentDriftTriggersRefetch(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")
	inst := New(reg)

	_, err := inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	assert.NoError(os.WriteFile(filepath.Join(root, "mdns.c"), []byte("// tampered"), 0o644))

	_, err = inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)

	assert.Equal(2, reg.downloadCalls)

	data, err := os.ReadFile(filepath.Join(root, "mdns.c"))
	assert.NoError(err)
	assert.Equal("// v1.2.0", string(data))
}

func TestEnsureInstalled_ConstraintChangeReplacesComponent(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")
	inst := New(reg)

	resolved, err := inst.EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.NoError(err)
	assert.Equal("1.2.0", resolved.Version.String())

	// The installed 1.2.0 does not satisfy =1.0.0, so the old tree is
	// removed and 1.0.0 installed in its place.
	resolved, err = inst.EnsureInstalled(context.Background(), mustRequest(t, "=1.0.0"), root)
	assert.NoError(err)
	assert.Equal("1.0.0", resolved.Version.String())

	assert.NoFileExists(filepath.Join(root, "include", "mdns.h"))

	data, err := os.ReadFile(filepath.Join(root, "mdns.c"))
	assert.NoError(err)
	assert.Equal("// v1.0.0", string(data))
}

func TestEnsureInstalled_NoMatchingVersion(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	_, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "^3.0.0"), root)
	assert.Error(err)
	assert.ErrorIs(err, registry.ErrNoMatchingVersion)
}

func TestEnsureInstalled_YankedOnlyMatchFails(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	_, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "=1.1.0"), root)
	assert.Error(err)
	assert.ErrorIs(err, registry.ErrNoMatchingVersion)
}

func TestEnsureInstalled_CorruptArchiveLeavesNoMarker(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	reg.archives["https://r/mdns-1.2.0.tgz"] = []byte("not a gzip stream")
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	_, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.Error(err)
	assert.ErrorIs(err, ErrFilesystem)

	assert.NoFileExists(hashing.MarkerFilePath(root))
}

func TestEnsureInstalled_MissingManifestIsFatal(t *testing.T) {
	assert := assert.New(t)

	reg := mdnsRegistry(t)
	reg.archives["https://r/mdns-1.2.0.tgz"] = buildArchive(t, map[string]string{
		"mdns.c": "// no manifest",
	})
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	_, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.Error(err)
	assert.ErrorIs(err, ErrManifestMissing)
}

func TestEnsureInstalled_RegistryErrorPropagates(t *testing.T) {
	assert := assert.New(t)

	reg := &fakeRegistry{}
	root := filepath.Join(t.TempDir(), "espressif__mdns")

	_, err := New(reg).EnsureInstalled(context.Background(), mustRequest(t, "^1.0.0"), root)
	assert.Error(err)
	assert.ErrorIs(err, registry.ErrComponentNotFound)
}
