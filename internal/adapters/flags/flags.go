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

package flags

import (
	"github.com/spf13/cobra"

	"github.com/Adembc/lazysrv/internal/adapters/config"
	"github.com/Adembc/lazysrv/internal/core/ports"
)

type CobraFlags struct {
	rootCmd *cobra.Command
}

func NewCobraFlags(rootCmd *cobra.Command) ports.FlagsProvider {
	g := &CobraFlags{rootCmd: rootCmd}
	g.globalFlags()
	return g
}

func (g *CobraFlags) globalFlags() {
	pf := g.rootCmd.PersistentFlags()
	pf.Bool(config.FlagDebug, false, "Enable debug logging")
	pf.String(config.FlagConfig, "", "Config file path (default: ~/.lazysrv/lazysrv.yaml)")
	pf.String(config.FlagStore, "", "Server store file (default: ~/.lazysrv/Servers.xml)")
	pf.Bool(config.FlagNoProbe, false, "Save profiles without the SSH connectivity check")
}

func (g *CobraFlags) IsDebug() bool {
	flag, _ := g.rootCmd.PersistentFlags().GetBool(config.FlagDebug)
	return flag
}

func (g *CobraFlags) GetFlag(name string) string {
	value, _ := g.rootCmd.PersistentFlags().GetString(name)
	return value
}
