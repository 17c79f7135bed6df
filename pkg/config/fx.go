package config

import (
	"os"

	"github.com/pseudomuto/dbmgr/pkg/consts"
	"go.uber.org/fx"
)

// EnvConfigFile overrides the location of the configuration file.
const EnvConfigFile = "DBMGR_CONFIG"

var Module = fx.Module("config", fx.Provide(
	// Loads dbmgr.yaml (or $DBMGR_CONFIG) when it exists. Returns nil otherwise so
	// commands such as init and new work outside a configured project.
	func() (*Config, error) {
		path := os.Getenv(EnvConfigFile)
		if path == "" {
			path = consts.ConfigFile
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, nil
		}

		cfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, &ConfigurationError{Field: "file", Err: err}
		}

		return cfg, nil
	},
))
