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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Adembc/lazysrv/internal/adapters/config"
	"github.com/Adembc/lazysrv/internal/adapters/data/file"
	"github.com/Adembc/lazysrv/internal/adapters/filesystem"
	"github.com/Adembc/lazysrv/internal/adapters/flags"
	"github.com/Adembc/lazysrv/internal/adapters/logger"
	"github.com/Adembc/lazysrv/internal/adapters/probe"
	"github.com/Adembc/lazysrv/internal/adapters/ui"
	"github.com/Adembc/lazysrv/internal/core/domain"
	"github.com/Adembc/lazysrv/internal/core/ports"
	"github.com/Adembc/lazysrv/internal/core/services"
)

// application holds what every command needs once flags are parsed.
type application struct {
	flags        ports.FlagsProvider
	cfg          domain.Config
	log          *zap.SugaredLogger
	service      ports.ProfileService
	readPassword func(prompt string) (string, error)
}

func newRootCmd() (*cobra.Command, *application) {
	app := &application{readPassword: promptPassword}

	rootCmd := &cobra.Command{
		Use:     ui.AppName,
		Short:   "Server profile manager with an SSH connectivity check",
		Version: fmt.Sprintf("%s (%s)", version, gitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.bootstrap(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.NewTUI(app.log, app.service, version, gitCommit).Run()
		},
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	app.flags = flags.NewCobraFlags(rootCmd)

	rootCmd.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newAddCmd(app),
		newUpdateCmd(app),
		newDeleteCmd(app),
		newTestCmd(app),
		newExportCmd(app),
		newConfigCmd(app),
	)
	return rootCmd, app
}

// bootstrap resolves config and wires the adapters. A preset service is kept.
func (a *application) bootstrap(cmd *cobra.Command) error {
	if a.service != nil {
		if a.log == nil {
			a.log = zap.NewNop().Sugar()
		}
		return nil
	}

	osConfig := config.NewOSConfig()
	home := osConfig.HomeDir()

	configPath := a.flags.GetFlag(config.FlagConfig)
	if configPath == "" {
		configPath = osConfig.GetEnvOrDefault(config.EnvPrefix+"_CONFIG", osConfig.ConfigPath(domain.DefaultConfigFileName))
	}
	configPath = config.ExpandHome(home, configPath)

	base, err := file.NewConfigManager(configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", configPath, err)
	}

	cfg, err := config.Resolve(base, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to resolve config: %w", err)
	}
	if a.flags.IsDebug() {
		cfg.Debug = true
	}
	if cfg.StorePath == "" {
		cfg.StorePath = osConfig.ConfigPath(domain.DefaultStoreFileName)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = osConfig.LogPath(domain.DefaultLogFileName)
	}
	cfg.StorePath = config.ExpandHome(home, cfg.StorePath)
	cfg.LogFile = config.ExpandHome(home, cfg.LogFile)
	cfg.Probe.KnownHostsPath = config.ExpandHome(home, cfg.Probe.KnownHostsPath)
	a.cfg = cfg

	log, err := logger.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	a.log = log

	prober, err := probe.NewSSHProber(a.log, cfg.Probe)
	if err != nil {
		a.log.Errorw("failed to initialise probe", "error", err)
		return err
	}

	repo := file.NewProfileRepo(a.log, filesystem.NewOSFileSystem(), cfg.StorePath, cfg.BackupCount)
	a.service = services.NewProfileService(a.log, repo, prober, &file.SSHConfigWriter{}, cfg)

	a.log.Infow("initialised", "store", cfg.StorePath, "probe", cfg.Probe.Enabled, "config", configPath)
	return nil
}

func (a *application) close() {
	if a.log != nil {
		//nolint:errcheck // log.Sync may return an error which is safe to ignore here
		a.log.Sync()
	}
}

// promptPassword reads a password without echo when stdin is a terminal,
// otherwise it reads one line.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if !term.IsTerminal(fd) {
		return readLine(os.Stdin)
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
