package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ApplyCobraFlags binds the configuration flags to the command. These
// flags are a local concern of the config package; this helper attaches
// them to the Cobra command so they override the loaded config.
func ApplyCobraFlags(cmd *cobra.Command) {
	bindFlags(cmd.PersistentFlags())
}

func bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&globalConfig.Config.ComponentsDir, "components-dir",
		globalConfig.Config.ComponentsDir, "Directory to install components into")
	flags.StringVar(&globalConfig.Config.RegistryURL, "registry-url",
		globalConfig.Config.RegistryURL, "Base URL of the component registry")
	flags.IntVar(&globalConfig.Config.HTTPTimeoutSeconds, "http-timeout",
		globalConfig.Config.HTTPTimeoutSeconds, "Registry request timeout in seconds (0 disables)")
}
