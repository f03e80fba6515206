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
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Adembc/lazysrv/internal/adapters/data/file"
	"github.com/Adembc/lazysrv/internal/core/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newListCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List server profiles, optionally filtered by name, host or user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			profiles, err := app.service.ListProfiles(query)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No servers.")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderProfileTable(profiles))
			return err
		},
	}
}

func renderProfileTable(profiles []domain.ServerProfile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.Host, p.User})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "HOST", "USER").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func newShowCmd(app *application) *cobra.Command {
	var (
		id           int
		showPassword bool
	)
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one server profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				profile domain.ServerProfile
				err     error
			)
			switch {
			case len(args) == 1:
				profile, err = app.service.GetProfileByName(args[0])
			case id > 0:
				profile, err = app.service.GetProfile(id)
			default:
				return errors.New("a profile name or --id is required")
			}
			if err != nil {
				return err
			}

			secret := strings.Repeat("*", 8)
			if showPassword {
				secret = profile.Secret
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprintf(out, "ID:       %d\nName:     %s\nHost:     %s\nUser:     %s\nPassword: %s\n",
				profile.ID, profile.Name, profile.Host, profile.User, secret)
			return err
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Look the profile up by id")
	cmd.Flags().BoolVar(&showPassword, "show-password", false, "Print the stored password")
	return cmd
}

type fieldFlags struct {
	name, host, user, password string
	askPassword                bool
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.host, "host", "", "Host or IP, optionally with :port")
	cmd.Flags().StringVar(&f.user, "user", "", "Login user")
	cmd.Flags().StringVar(&f.password, "password", "", "Login password (prompted when omitted)")
}

// apply overlays the flags that were set on base.
func (f *fieldFlags) apply(cmd *cobra.Command, base domain.ProfileFields) domain.ProfileFields {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("host") {
		base.Host = f.host
	}
	if cmd.Flags().Changed("user") {
		base.User = f.user
	}
	if cmd.Flags().Changed("password") {
		base.Secret = f.password
	}
	return base
}

func newAddCmd(app *application) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a server profile after checking that it accepts the credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.service.BeginEdit(0)
			if err != nil {
				return err
			}
			fields := ff.apply(cmd, session.InitialFields())
			if !cmd.Flags().Changed("password") {
				if fields.Secret, err = app.readPassword("Password: "); err != nil {
					return err
				}
			}

			profile, err := app.service.Commit(cmd.Context(), session, fields)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", profile)
			return err
		},
	}
	ff.register(cmd)
	return cmd
}

func newUpdateCmd(app *application) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a server profile; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			session, err := app.service.BeginEdit(id)
			if err != nil {
				return err
			}
			fields := ff.apply(cmd, session.InitialFields())
			if ff.askPassword {
				if fields.Secret, err = app.readPassword("New password: "); err != nil {
					return err
				}
			}

			profile, err := app.service.Commit(cmd.Context(), session, fields)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", profile)
			return err
		},
	}
	ff.register(cmd)
	cmd.Flags().BoolVar(&ff.askPassword, "ask-password", false, "Prompt for a new password")
	return cmd
}

func newDeleteCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a server profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.service.DeleteProfile(id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return err
		},
	}
}

func newTestCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Check that a stored profile can still log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.service.GetProfileByName(args[0])
			if err != nil {
				return err
			}
			if err := app.service.TestConnection(cmd.Context(), profile.Fields()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Connection to %s@%s OK\n", profile.User, profile.Host)
			return err
		},
	}
}

func newExportCmd(app *application) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export-ssh-config",
		Short: "Write the profiles as OpenSSH Host blocks (passwords are never exported)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				return app.service.ExportSSHConfig(cmd.OutOrStdout())
			}
			return exportToFile(app, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: stdout)")
	return cmd
}

func exportToFile(app *application, path string) (err error) {
	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.StoreFilePerms)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return app.service.ExportSSHConfig(f)
}

func newConfigCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeYAML(cmd.OutOrStdout(), app.cfg)
		},
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", s)
	}
	return id, nil
}
