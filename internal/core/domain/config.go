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

package domain

import (
	"path/filepath"
	"time"
)

const (
	DefaultStoreFileName  = "Servers.xml"
	DefaultBackupCount    = 5
	DefaultProbePort      = 22
	DefaultProbeTimeout   = 10
	DefaultLogFileName    = "lazysrv.log"
	DefaultConfigFileName = "lazysrv.yaml"
)

// Config represents the application configuration
type Config struct {
	// StorePath is the XML file holding the server profiles
	StorePath string `yaml:"store_path" mapstructure:"store_path"`

	// BackupCount is how many timestamped copies of the store are kept; 0 disables backups
	BackupCount int `yaml:"backup_count" mapstructure:"backup_count"`

	// EnforceUniqueNames rejects a commit whose name is already used by another profile
	EnforceUniqueNames bool `yaml:"enforce_unique_names" mapstructure:"enforce_unique_names"`

	Probe ProbeConfig `yaml:"probe" mapstructure:"probe"`

	LogFile string `yaml:"log_file" mapstructure:"log_file"`
	Debug   bool   `yaml:"debug" mapstructure:"debug"`
}

// ProbeConfig controls the SSH connectivity check run before a profile is saved.
type ProbeConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	Port           int    `yaml:"port" mapstructure:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	KnownHostsPath string `yaml:"known_hosts" mapstructure:"known_hosts"`
}

// Timeout returns the probe timeout, falling back to the default for non-positive values.
func (p ProbeConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultProbeTimeout * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the default configuration with the provided config directory
func DefaultConfig(configDirPath string) Config {
	if configDirPath == "" {
		// Fall back to the working directory.
		configDirPath = "."
	}

	return Config{
		StorePath:          filepath.Join(configDirPath, DefaultStoreFileName),
		BackupCount:        DefaultBackupCount,
		EnforceUniqueNames: true,
		Probe: ProbeConfig{
			Enabled:        true,
			Port:           DefaultProbePort,
			TimeoutSeconds: DefaultProbeTimeout,
		},
		LogFile: filepath.Join(configDirPath, "logs", DefaultLogFileName),
	}
}
