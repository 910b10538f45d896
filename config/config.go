package config

import (
	"context"
	"time"

	"github.com/espbuild/compmgr/pkg/registry"
)

const (
	// Allow overriding the config path from the environment.
	CONFIG_DIR_ENV_KEY = "COMPMGR_CONFIG_DIR"

	// Config path is computed as the user config directory + this
	// relative path when not overridden by the environment variable.
	CONFIG_DEFAULT_HOME_RELATIVE_PATH = "espbuild/compmgr"

	// Config file name. The config file path and schema should stay
	// backward compatible; breaking changes need a new file name and a
	// migration path.
	CONFIG_FILE_NAME = "config.yml"
)

// Config is the persistable configuration for compmgr, loadable from the
// config file or the environment.
type Config struct {
	// ComponentsDir is the directory components are installed under,
	// relative to the working directory unless absolute.
	ComponentsDir string `mapstructure:"components_dir"`

	// RegistryURL is the base URL of the component registry.
	RegistryURL string `mapstructure:"registry_url"`

	// HTTPTimeoutSeconds bounds registry requests at the transport
	// boundary. Zero disables the client-side timeout.
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds"`
}

// RuntimeConfig is the configuration used at runtime: static config that
// can be loaded from a source and overridden by command line flags.
type RuntimeConfig struct {
	Config Config
}

// HTTPTimeout returns the registry request timeout as a duration.
func (r *RuntimeConfig) HTTPTimeout() time.Duration {
	return time.Duration(r.Config.HTTPTimeoutSeconds) * time.Second
}

// DefaultConfig is the fail-safe contract for the runtime configuration.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Config: Config{
			ComponentsDir:      "managed_components",
			RegistryURL:        registry.DefaultBaseURL,
			HTTPTimeoutSeconds: 60,
		},
	}
}

var globalConfig = DefaultConfig()

// Current returns the effective runtime configuration.
func Current() RuntimeConfig {
	return globalConfig
}

// Bootstrap loads the persisted configuration over the defaults. Flag
// bindings applied through ApplyCobraFlags take effect after cobra
// parses the command line, so flags win over the file.
func Bootstrap() {
	loadViperConfig()
}

type contextKey struct{}

// Inject stores the runtime configuration in the context for retrieval
// by command implementations.
func (r RuntimeConfig) Inject(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// FromContext retrieves the runtime configuration from the context,
// falling back to defaults when none was injected.
func FromContext(ctx context.Context) RuntimeConfig {
	if r, ok := ctx.Value(contextKey{}).(RuntimeConfig); ok {
		return r
	}

	return DefaultConfig()
}
