// Copyright 2025.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

// EnvPrefix prefixes every environment override, e.g. LAZYSRV_PROBE_TIMEOUT_SECONDS.
const EnvPrefix = "LAZYSRV"

const (
	FlagStore   = "store"
	FlagDebug   = "debug"
	FlagNoProbe = "no-probe"
	FlagConfig  = "config"
)

// Resolve layers environment variables and command-line flags over base,
// which normally comes from the YAML config file.
// Precedence: flag > env > base.
func Resolve(base domain.Config, flags *pflag.FlagSet) (domain.Config, error) {
	v := viper.New()

	v.SetDefault("store_path", base.StorePath)
	v.SetDefault("backup_count", base.BackupCount)
	v.SetDefault("enforce_unique_names", base.EnforceUniqueNames)
	v.SetDefault("probe.enabled", base.Probe.Enabled)
	v.SetDefault("probe.port", base.Probe.Port)
	v.SetDefault("probe.timeout_seconds", base.Probe.TimeoutSeconds)
	v.SetDefault("probe.known_hosts", base.Probe.KnownHostsPath)
	v.SetDefault("log_file", base.LogFile)
	v.SetDefault("debug", base.Debug)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup(FlagStore); f != nil {
			if err := v.BindPFlag("store_path", f); err != nil {
				return base, err
			}
		}
		if f := flags.Lookup(FlagDebug); f != nil {
			if err := v.BindPFlag("debug", f); err != nil {
				return base, err
			}
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return base, err
	}

	if flags != nil && flags.Changed(FlagNoProbe) {
		if off, err := flags.GetBool(FlagNoProbe); err == nil && off {
			cfg.Probe.Enabled = false
		}
	}

	return cfg, nil
}
