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

package file

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

const ManagedByComment = "# Exported by lazysrv"

// SSHConfigWriter renders profiles as OpenSSH Host blocks. Secrets are never
// written.
type SSHConfigWriter struct{}

func (w *SSHConfigWriter) Write(writer io.Writer, profiles []domain.ServerProfile) error {
	bufWriter := bufio.NewWriter(writer)

	fmt.Fprintf(bufWriter, "%s\n\n", ManagedByComment)

	for i, profile := range profiles {
		if i > 0 {
			bufWriter.WriteString("\n")
		}
		w.writeProfile(bufWriter, profile)
	}

	return bufWriter.Flush()
}

func (w *SSHConfigWriter) writeProfile(writer *bufio.Writer, profile domain.ServerProfile) {
	fmt.Fprintf(writer, "Host %s\n", HostAlias(profile.Name))

	host, port := profile.Host, ""
	if h, p, err := net.SplitHostPort(profile.Host); err == nil {
		host, port = h, p
	}

	if host != "" {
		fmt.Fprintf(writer, "    HostName %s\n", host)
	}

	if profile.User != "" {
		fmt.Fprintf(writer, "    User %s\n", profile.User)
	}

	if port != "" {
		fmt.Fprintf(writer, "    Port %s\n", port)
	}
}

// HostAlias turns a profile name into a single-token Host pattern.
func HostAlias(name string) string {
	alias := strings.Join(strings.Fields(name), "-")
	if alias == "" {
		return "unnamed"
	}
	return alias
}
