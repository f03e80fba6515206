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
	"github.com/rivo/tview"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

const (
	labelName     = "Name:"
	labelHost     = "Host:"
	labelUser     = "User:"
	labelPassword = "Password:"
	fieldWidth    = 40
)

// ProfileForm collects the values of one edit session. Which profile is being
// edited lives in the session, not in the form.
type ProfileForm struct {
	*tview.Form
	session  domain.EditSession
	onSave   func(domain.EditSession, domain.ProfileFields)
	onTest   func(domain.ProfileFields)
	onCancel func()
}

func NewProfileForm(session domain.EditSession) *ProfileForm {
	form := &ProfileForm{
		Form:    tview.NewForm(),
		session: session,
	}
	form.build()
	return form
}

func (pf *ProfileForm) build() {
	pf.Form.SetBorder(true).
		SetTitle(formTitle(pf.session)).
		SetTitleAlign(tview.AlignLeft)

	initial := pf.session.InitialFields()
	pf.Form.AddInputField(labelName, initial.Name, fieldWidth, nil, nil)
	pf.Form.AddInputField(labelHost, initial.Host, fieldWidth, nil, nil)
	pf.Form.AddInputField(labelUser, initial.User, fieldWidth, nil, nil)
	pf.Form.AddPasswordField(labelPassword, initial.Secret, fieldWidth, '*', nil)

	pf.Form.AddButton("Save", func() {
		if pf.onSave != nil {
			pf.onSave(pf.session, pf.Fields())
		}
	})
	pf.Form.AddButton("Test", func() {
		if pf.onTest != nil {
			pf.onTest(pf.Fields())
		}
	})
	pf.Form.AddButton("Cancel", pf.cancel)
	pf.Form.SetCancelFunc(pf.cancel)
}

func (pf *ProfileForm) cancel() {
	if pf.onCancel != nil {
		pf.onCancel()
	}
}

// Fields returns the current, untrimmed input values.
func (pf *ProfileForm) Fields() domain.ProfileFields {
	return domain.ProfileFields{
		Name:   pf.text(labelName),
		Host:   pf.text(labelHost),
		User:   pf.text(labelUser),
		Secret: pf.text(labelPassword),
	}
}

func (pf *ProfileForm) text(label string) string {
	if field, ok := pf.Form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}

func (pf *ProfileForm) OnSave(fn func(domain.EditSession, domain.ProfileFields)) *ProfileForm {
	pf.onSave = fn
	return pf
}

func (pf *ProfileForm) OnTest(fn func(domain.ProfileFields)) *ProfileForm {
	pf.onTest = fn
	return pf
}

func (pf *ProfileForm) OnCancel(fn func()) *ProfileForm {
	pf.onCancel = fn
	return pf
}
