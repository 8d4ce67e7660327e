package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the process-level options shared by all commands.
type Settings struct {
	DataDir    string
	LogLevel   string
	LogFormat  string
	Integrator string
}

// LoadSettings layers defaults, an optional uwvsim.yaml and UWVSIM_*
// environment variables into v. An explicit configFile must exist.
func LoadSettings(v *viper.Viper, configFile string) (Settings, error) {
	v.SetDefault("data_dir", "runs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("integrator", DefaultIntegrator)

	v.SetEnvPrefix("UWVSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("uwvsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/uwvsim")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}

	return Settings{
		DataDir:    v.GetString("data_dir"),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		Integrator: v.GetString("integrator"),
	}, nil
}
