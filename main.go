package main

import (
	"fmt"
	"os"

	"github.com/espbuild/compmgr/cmd/install"
	"github.com/espbuild/compmgr/cmd/version"
	"github.com/espbuild/compmgr/config"
	"github.com/safedep/dry/log"
	"github.com/spf13/cobra"
)

var debug bool

func main() {
	cmd := &cobra.Command{
		Use:              "compmgr",
		TraverseChildren: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				os.Setenv("APP_LOG_LEVEL", "debug")
			}

			log.InitZapLogger("compmgr", "")

			cmd.SetContext(config.Current().Inject(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			return fmt.Errorf("compmgr: %s is not a valid command", args[0])
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Load the config file first so its values become the flag defaults;
	// flags set on the command line then win over the file.
	config.Bootstrap()
	config.ApplyCobraFlags(cmd)

	cmd.AddCommand(install.NewInstallCommand())
	cmd.AddCommand(version.NewVersionCommand())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
