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
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

type ProfileDetails struct {
	*tview.TextView
}

func NewProfileDetails() *ProfileDetails {
	details := &ProfileDetails{
		TextView: tview.NewTextView(),
	}
	details.build()
	return details
}

func (pd *ProfileDetails) build() {
	pd.TextView.SetDynamicColors(true).
		SetWrap(true).
		SetBorder(true).
		SetTitle("Details").
		SetBorderColor(tcell.Color238).
		SetTitleColor(tcell.Color250)
}

func (pd *ProfileDetails) UpdateProfile(p domain.ServerProfile) {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("[::b]%s[-:-:-]\n\n", tview.Escape(p.Name)))
	text.WriteString(fmt.Sprintf("ID: [white]%d[-]\n", p.ID))
	text.WriteString(fmt.Sprintf("Host: [white]%s[-]\nUser: [white]%s[-]\n", tview.Escape(p.Host), tview.Escape(p.User)))
	text.WriteString(fmt.Sprintf("Password: [white]%s[-]\n\n", maskSecret(p.Secret)))
	text.WriteString(fmt.Sprintf("SSH: [white]%s[-]\n\n", tview.Escape(BuildSSHCommand(p))))

	text.WriteString("[::b]Commands:[-:-:-]\n")
	text.WriteString("  c: Copy SSH command\n  t: Test connection\n  r: Refresh list\n  a: Add new server\n  e: Edit entry\n  d: Delete entry")

	pd.TextView.SetText(text.String())
}

func (pd *ProfileDetails) ShowEmpty() {
	pd.TextView.SetText("No servers match the current filter.")
}
