package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LOGHOUND"

// loadConfig fills every flag of fs that was not set on the command line from
// the config file or LOGHOUND_* environment variables. Keys match flag names,
// e.g. min-level in YAML or LOGHOUND_MIN_LEVEL in the environment.
func loadConfig(fs *pflag.FlagSet, cfgFile string) error {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("loghound")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		dir, err := os.UserConfigDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(dir, "loghound"))
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var errs []error

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" {
			return
		}

		if !v.IsSet(f.Name) {
			return
		}

		var err error

		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(stringSlice(v, f.Name))
		} else {
			err = fs.Set(f.Name, v.GetString(f.Name))
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("config %s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

// stringSlice reads key as a list. Environment values are comma-separated.
func stringSlice(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string

	for s := range strings.SplitSeq(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
