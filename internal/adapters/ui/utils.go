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

package ui

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

const (
	nameColumnWidth = 24
	hostColumnWidth = 28
)

func headerText(version, commit string) string {
	return fmt.Sprintf("[::b] %s[-:-:-] [#8A8A8A]%s (%s)[-]", AppName, version, commit)
}

func DefaultStatusText() string {
	return "[#8A8A8A] a add • e edit • d delete • t test • c copy • / search • ? help • q quit[-]"
}

func formTitle(session domain.EditSession) string {
	if session.IsNew() {
		return " Add Server "
	}
	return fmt.Sprintf(" Edit Server #%d ", session.ProfileID)
}

// cellPad pads a string with spaces so its display width is at least `width` cells.
// Wide runes (CJK, emoji) count as two cells.
func cellPad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to at most width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// formatProfileLine escapes stored text after padding, so brackets in a name
// render literally instead of being read as tview style tags.
func formatProfileLine(p domain.ServerProfile) (primary, secondary string) {
	name := tview.Escape(cellPad(truncate(p.Name, nameColumnWidth), nameColumnWidth))
	host := tview.Escape(cellPad(truncate(p.Host, hostColumnWidth), hostColumnWidth))
	primary = fmt.Sprintf("%3d  %s %s %s", p.ID, name, host, tview.Escape(p.User))
	secondary = ""
	return
}

func maskSecret(secret string) string {
	if secret == "" {
		return "-"
	}
	return strings.Repeat("•", min(utf8.RuneCountInString(secret), 8))
}

// BuildSSHCommand constructs a ready-to-run ssh command for the given profile.
// Format: ssh user@host [-p PORT if the host carries one]
func BuildSSHCommand(p domain.ServerProfile) string {
	parts := []string{"ssh"}

	host, port := p.Host, ""
	if h, pt, err := net.SplitHostPort(p.Host); err == nil {
		host, port = h, pt
	}

	switch {
	case p.User != "" && host != "":
		parts = append(parts, quoteIfNeeded(fmt.Sprintf("%s@%s", p.User, host)))
	case host != "":
		parts = append(parts, quoteIfNeeded(host))
	default:
		parts = append(parts, quoteIfNeeded(p.Name))
	}

	if port != "" && port != "22" {
		parts = append(parts, "-p", port)
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded returns the value quoted if it contains spaces.
func quoteIfNeeded(val string) string {
	if strings.ContainsAny(val, " \t") {
		return fmt.Sprintf("%q", val)
	}
	return val
}

// errorText turns a service error into a sentence for a modal or the status bar.
func errorText(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		var parts []string
		if len(ve.Fields) > 0 {
			parts = append(parts, "Please fill in: "+strings.Join(ve.Fields, ", "))
		}
		if len(ve.Invalid) > 0 {
			parts = append(parts, "Unsupported characters in: "+strings.Join(ve.Invalid, ", "))
		}
		return strings.Join(parts, ". ")
	case errors.Is(err, domain.ErrDuplicateName):
		return "A server with this name already exists."
	case errors.Is(err, domain.ErrProfileNotFound):
		return "The server no longer exists."
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
