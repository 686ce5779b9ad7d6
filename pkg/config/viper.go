// Package config bootstraps the global Viper instance used by the CLI. It
// resolves the config file from the --config flag or a set of search paths,
// then layers environment variables and defaults on top.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	appconfig "github.com/JakeFAU/regwatch/internal/config"
)

// SearchPaths are checked in order for a file named config.{yaml,json,toml}
// when no explicit path is given.
var SearchPaths = []string{
	".",
	"/etc/regwatch/",
	"$HOME/.regwatch",
}

// InitConfig prepares the global Viper and reads the config file. It returns
// the file that was used, or "" when none was found on the search paths. An
// explicit cfgFile that cannot be read is an error.
func InitConfig(cfgFile string) (string, error) {
	v := viper.GetViper()
	appconfig.Bind(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		for _, p := range SearchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load runs InitConfig and decodes the result.
func Load(cfgFile string) (appconfig.Config, string, error) {
	used, err := InitConfig(cfgFile)
	if err != nil {
		return appconfig.Config{}, "", err
	}
	cfg, err := appconfig.Decode(viper.GetViper())
	if err != nil {
		return appconfig.Config{}, "", err
	}
	return cfg, used, nil
}
