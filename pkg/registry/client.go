package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/espbuild/compmgr/pkg/models"
	"github.com/safedep/dry/log"
)

// DefaultBaseURL is the public component registry.
const DefaultBaseURL = "https://components.espressif.com"

// Client defines the operations the installer needs from a component
// registry. Implementations must be safe for serial reuse; tests
// substitute a fake.
type Client interface {
	// GetComponentMetadata fetches the published versions of a component.
	GetComponentMetadata(ctx context.Context, namespace, name string) (*models.ComponentMetadata, error)

	// DownloadArchive fetches a component archive from its download URL.
	// The caller owns the returned reader.
	DownloadArchive(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPRegistryClient is the HTTP implementation of Client against the
// component registry API.
type HTTPRegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPRegistryClient)(nil)

// NewHTTPRegistryClient creates a registry client for the given base URL.
// A zero timeout means no client-side timeout.
func NewHTTPRegistryClient(baseURL string, timeout time.Duration) *HTTPRegistryClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &HTTPRegistryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetComponentMetadata fetches component metadata from the registry API.
func (c *HTTPRegistryClient) GetComponentMetadata(ctx context.Context, namespace, name string) (*models.ComponentMetadata, error) {
	url := fmt.Sprintf("%s/api/components/%s/%s", c.baseURL, namespace, name)
	log.Debugf("Fetching component metadata from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrRegistryUnavailable.
			Wrap(fmt.Errorf("fetching metadata for %s/%s: %w", namespace, name, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrComponentNotFound.
			Wrap(fmt.Errorf("component %s/%s not found in registry", namespace, name))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrRegistryUnavailable.
			Wrap(fmt.Errorf("registry returned status %s for %s/%s", resp.Status, namespace, name))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading registry response: %w", err)
	}

	var metadata models.ComponentMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, ErrRegistryUnavailable.
			Wrap(fmt.Errorf("parsing registry response for %s/%s: %w", namespace, name, err))
	}

	return &metadata, nil
}

// DownloadArchive streams a component archive. The caller must close the
// returned reader.
func (c *HTTPRegistryClient) DownloadArchive(ctx context.Context, url string) (io.ReadCloser, error) {
	log.Debugf("Downloading component archive from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrRegistryUnavailable.
			Wrap(fmt.Errorf("downloading archive from %s: %w", url, err))
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, ErrRegistryUnavailable.
			Wrap(fmt.Errorf("archive download returned status %s for %s", resp.Status, url))
	}

	return resp.Body, nil
}
