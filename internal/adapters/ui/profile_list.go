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
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

type ProfileList struct {
	*tview.List
	profiles          []domain.ServerProfile
	onSelectionChange func(domain.ServerProfile)
}

func NewProfileList() *ProfileList {
	list := &ProfileList{
		List: tview.NewList(),
	}
	list.build()
	return list
}

func (pl *ProfileList) build() {
	pl.List.ShowSecondaryText(false)
	pl.List.SetHighlightFullLine(true)
	pl.List.SetSelectedBackgroundColor(tcell.Color24)
	pl.List.SetSelectedTextColor(tcell.Color255)
	pl.List.SetBorder(true).
		SetTitle(" Servers ").
		SetBorderColor(tcell.Color238).
		SetTitleColor(tcell.Color250)

	pl.List.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if index >= 0 && index < len(pl.profiles) && pl.onSelectionChange != nil {
			pl.onSelectionChange(pl.profiles[index])
		}
	})
}

// UpdateProfiles replaces the list content, keeping the cursor on the same
// profile id when it is still present.
func (pl *ProfileList) UpdateProfiles(profiles []domain.ServerProfile) {
	selectedID := 0
	if p, ok := pl.GetSelectedProfile(); ok {
		selectedID = p.ID
	}

	pl.profiles = profiles
	pl.List.Clear()
	for _, p := range profiles {
		primary, secondary := formatProfileLine(p)
		pl.List.AddItem(primary, secondary, 0, nil)
	}

	if selectedID != 0 {
		pl.SelectProfile(selectedID)
	}
}

// SelectProfile moves the cursor to the profile with the given id.
func (pl *ProfileList) SelectProfile(id int) bool {
	for i, p := range pl.profiles {
		if p.ID == id {
			pl.List.SetCurrentItem(i)
			return true
		}
	}
	return false
}

func (pl *ProfileList) GetSelectedProfile() (domain.ServerProfile, bool) {
	idx := pl.List.GetCurrentItem()
	if idx >= 0 && idx < len(pl.profiles) {
		return pl.profiles[idx], true
	}
	return domain.ServerProfile{}, false
}

func (pl *ProfileList) OnSelectionChange(fn func(domain.ServerProfile)) *ProfileList {
	pl.onSelectionChange = fn
	return pl
}
