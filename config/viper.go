package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// loadViperConfig loads the configuration using Viper if available.
// This function will panic for system errors since it is part of the
// init path.
func loadViperConfig() {
	configPath, err := ConfigFilePath()
	if err != nil {
		panic(fmt.Errorf("failed to get config file path: %w", err))
	}

	// A missing config file means the defaults apply (see config.go).
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return
	}

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("COMPMGR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file %s: %w", configPath, err))
	}

	// Start from the current values so keys absent from the file keep
	// their defaults.
	loadedConfig := globalConfig.Config
	if err := v.Unmarshal(&loadedConfig); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	globalConfig.Config = loadedConfig
}
