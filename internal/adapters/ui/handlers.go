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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

// =============================================================================
// Event Handlers (handle user input/events)
// =============================================================================

func (t *tui) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	// Don't handle global keys when search has focus
	if t.app.GetFocus() == t.searchBar {
		return event
	}

	switch event.Rune() {
	case 'q':
		t.handleQuit()
		return nil
	case '/':
		t.handleSearchToggle()
		return nil
	case 'a':
		t.handleProfileAdd()
		return nil
	case 'e':
		t.handleProfileEdit()
		return nil
	case 'd':
		t.handleProfileDelete()
		return nil
	case 'c':
		t.handleCopyCommand()
		return nil
	case 't':
		t.handleProfileTest()
		return nil
	case 'r':
		t.handleRefresh()
		return nil
	case '?':
		t.handleHelpShow()
		return nil
	}

	if event.Key() == tcell.KeyEnter {
		t.handleProfileEdit()
		return nil
	}

	return event
}

func (t *tui) handleQuit() {
	t.app.Stop()
}

func (t *tui) handleCopyCommand() {
	if profile, ok := t.profileList.GetSelectedProfile(); ok {
		cmd := BuildSSHCommand(profile)
		if err := clipboard.WriteAll(cmd); err == nil {
			t.showStatusTemp("Copied: " + cmd)
		} else {
			t.logger.Warnw("clipboard write failed", "error", err)
			t.showStatusTemp("Failed to copy to clipboard")
		}
	}
}

func (t *tui) handleRefresh() {
	t.refreshProfileList()
	t.showStatusTemp("Reloaded")
}

func (t *tui) handleSearchInput(query string) {
	filtered, err := t.profileService.ListProfiles(query)
	if err != nil {
		t.showStatusError(errorText(err))
		return
	}
	t.profileList.UpdateProfiles(filtered)
	if len(filtered) == 0 {
		t.details.ShowEmpty()
	}
}

func (t *tui) handleSearchToggle() {
	t.showSearchBar()
}

func (t *tui) handleProfileSelectionChange(profile domain.ServerProfile) {
	t.details.UpdateProfile(profile)
}

func (t *tui) handleProfileAdd() {
	session, err := t.profileService.BeginEdit(0)
	if err != nil {
		t.showStatusError(errorText(err))
		return
	}
	t.showProfileForm(session)
}

func (t *tui) handleProfileEdit() {
	if profile, ok := t.profileList.GetSelectedProfile(); ok {
		session, err := t.profileService.BeginEdit(profile.ID)
		if err != nil {
			t.showStatusError(errorText(err))
			t.refreshProfileList()
			return
		}
		t.showProfileForm(session)
	}
}

// handleProfileSave commits off the UI goroutine because the probe blocks on
// the network. Results are applied through QueueUpdateDraw.
func (t *tui) handleProfileSave(form *ProfileForm, session domain.EditSession, fields domain.ProfileFields) {
	if t.busy {
		return
	}
	t.busy = true
	form.SetTitle(" Checking connection… ")

	go func() {
		profile, err := t.profileService.Commit(context.Background(), session, fields)
		t.app.QueueUpdateDraw(func() {
			t.busy = false
			form.SetTitle(formTitle(session))
			if err != nil {
				if errors.Is(err, domain.ErrProfileNotFound) {
					t.refreshProfileList()
				}
				t.showErrorModal("Save failed", err, form)
				return
			}
			t.refreshProfileList()
			t.profileList.SelectProfile(profile.ID)
			t.details.UpdateProfile(profile)
			t.returnToMain()
			t.showStatusTemp("Saved " + profile.Name)
		})
	}()
}

func (t *tui) handleConnectionTest(form *ProfileForm, fields domain.ProfileFields) {
	if t.busy {
		return
	}
	t.busy = true
	form.SetTitle(" Checking connection… ")

	go func() {
		err := t.profileService.TestConnection(context.Background(), fields)
		t.app.QueueUpdateDraw(func() {
			t.busy = false
			form.SetTitle(formTitle(form.session))
			if err != nil {
				t.showErrorModal("Test failed", err, form)
				return
			}
			t.showInfoModal("Connection OK", form)
		})
	}()
}

func (t *tui) handleProfileTest() {
	profile, ok := t.profileList.GetSelectedProfile()
	if !ok || t.busy {
		return
	}
	t.busy = true
	t.showStatusTemp("Testing " + profile.Name + "…")

	go func() {
		err := t.profileService.TestConnection(context.Background(), profile.Fields())
		t.app.QueueUpdateDraw(func() {
			t.busy = false
			if err != nil {
				t.showStatusError(errorText(err))
				return
			}
			t.showStatusTemp("Connection OK: " + profile.Name)
		})
	}()
}

func (t *tui) handleProfileDelete() {
	if profile, ok := t.profileList.GetSelectedProfile(); ok {
		t.showDeleteConfirmModal(profile)
	}
}

func (t *tui) handleFormCancel() {
	t.returnToMain()
}

func (t *tui) handleHelpShow() {
	t.showHelpModal()
}

func (t *tui) handleModalClose() {
	t.returnToMain()
}

// =============================================================================
// UI Display Functions (show UI elements/modals)
// =============================================================================

func (t *tui) showSearchBar() {
	t.left.Clear()
	t.left.AddItem(t.searchBar, 3, 0, true)
	t.left.AddItem(t.profileList, 0, 1, false)
	t.app.SetFocus(t.searchBar)
	t.searchVisible = true
}

func (t *tui) showProfileForm(session domain.EditSession) {
	form := NewProfileForm(session)
	form.OnSave(func(s domain.EditSession, f domain.ProfileFields) { t.handleProfileSave(form, s, f) }).
		OnTest(func(f domain.ProfileFields) { t.handleConnectionTest(form, f) }).
		OnCancel(t.handleFormCancel)
	t.app.SetRoot(form, true)
	t.app.SetFocus(form)
}

func (t *tui) showDeleteConfirmModal(profile domain.ServerProfile) {
	msg := fmt.Sprintf("Delete server %s (%s@%s)?\n\nThis action cannot be undone.",
		profile.Name, profile.User, profile.Host)

	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"Cancel", "Confirm"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			if buttonIndex == 1 {
				if err := t.profileService.DeleteProfile(profile.ID); err != nil {
					t.showStatusError(errorText(err))
				} else {
					t.showStatusTemp("Deleted " + profile.Name)
				}
				t.refreshProfileList()
			}
			t.handleModalClose()
		})

	t.app.SetRoot(modal, true)
}

// showErrorModal keeps the user's input: closing returns to back.
func (t *tui) showErrorModal(title string, err error, back tview.Primitive) {
	modal := tview.NewModal().
		SetText(title + "\n\n" + errorText(err)).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			t.app.SetRoot(back, true)
		})
	t.app.SetRoot(modal, true)
}

func (t *tui) showInfoModal(text string, back tview.Primitive) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			t.app.SetRoot(back, true)
		})
	t.app.SetRoot(modal, true)
}

func (t *tui) showHelpModal() {
	text := "Keyboard shortcuts:\n\n" +
		"  ↑/↓            Navigate\n" +
		"  Enter / e      Edit server\n" +
		"  a              Add server\n" +
		"  d              Delete server\n" +
		"  t              Test connection\n" +
		"  c              Copy SSH command\n" +
		"  r              Reload from disk\n" +
		"  /              Focus search\n" +
		"  q              Quit\n" +
		"  ?              Help\n"

	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			t.handleModalClose()
		})

	t.app.SetRoot(modal, true)
}

// =============================================================================
// UI State Management (hide UI elements)
// =============================================================================

func (t *tui) hideSearchBar() {
	t.left.Clear()
	t.left.AddItem(t.hintBar, 1, 0, false)
	t.left.AddItem(t.profileList, 0, 1, true)
	t.app.SetFocus(t.profileList)
	t.searchVisible = false
}

// =============================================================================
// Internal Operations (perform actual work)
// =============================================================================

func (t *tui) refreshProfileList() {
	query := ""
	if t.searchVisible {
		query = t.searchBar.InputField.GetText()
	}
	filtered, err := t.profileService.ListProfiles(query)
	if err != nil {
		t.showStatusError(errorText(err))
		return
	}
	t.profileList.UpdateProfiles(filtered)
	if p, ok := t.profileList.GetSelectedProfile(); ok {
		t.details.UpdateProfile(p)
	} else {
		t.details.ShowEmpty()
	}
}

func (t *tui) returnToMain() {
	t.app.SetRoot(t.root, true)
}

// showStatusTemp displays a temporary message in the status bar and then restores the default text.
func (t *tui) showStatusTemp(msg string) {
	t.showStatus("[#A0FFA0]"+tview.Escape(msg)+"[-]", 2*time.Second)
}

func (t *tui) showStatusError(msg string) {
	t.showStatus("[#FF8080]"+tview.Escape(msg)+"[-]", 5*time.Second)
}

func (t *tui) showStatus(text string, d time.Duration) {
	if t.statusBar == nil {
		return
	}
	t.statusBar.SetText(text)
	time.AfterFunc(d, func() {
		if t.app != nil {
			t.app.QueueUpdateDraw(func() {
				if t.statusBar != nil {
					t.statusBar.SetText(DefaultStatusText())
				}
			})
		}
	})
}
