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
	"fmt"
	"strings"
	"unicode/utf8"
)

// ServerProfile is one stored server connection record.
type ServerProfile struct {
	ID     int
	Name   string
	Host   string
	User   string
	Secret string
}

// Fields returns the mutable part of the profile.
func (p ServerProfile) Fields() ProfileFields {
	return ProfileFields{
		Name:   p.Name,
		Host:   p.Host,
		User:   p.User,
		Secret: p.Secret,
	}
}

// WithFields returns a copy of p carrying f. The ID is kept.
func (p ServerProfile) WithFields(f ProfileFields) ServerProfile {
	p.Name = f.Name
	p.Host = f.Host
	p.User = f.User
	p.Secret = f.Secret
	return p
}

func (p ServerProfile) String() string {
	return fmt.Sprintf("#%d %s (%s@%s)", p.ID, p.Name, p.User, p.Host)
}

// ProfileFields holds the values a caller supplies on add or update.
type ProfileFields struct {
	Name   string
	Host   string
	User   string
	Secret string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f ProfileFields) Trimmed() ProfileFields {
	return ProfileFields{
		Name:   strings.TrimSpace(f.Name),
		Host:   strings.TrimSpace(f.Host),
		User:   strings.TrimSpace(f.User),
		Secret: strings.TrimSpace(f.Secret),
	}
}

// Validate reports every required field that is empty after trimming, and
// every field holding text the store cannot keep byte for byte.
func (f ProfileFields) Validate() error {
	t := f.Trimmed()
	var missing, invalid []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", t.Name},
		{"host", t.Host},
		{"user", t.User},
		{"password", t.Secret},
	} {
		switch {
		case field.value == "":
			missing = append(missing, field.name)
		case !StorableText(field.value):
			invalid = append(invalid, field.name)
		}
	}
	if len(missing) > 0 || len(invalid) > 0 {
		return &ValidationError{Fields: missing, Invalid: invalid}
	}
	return nil
}

// StorableText reports whether s is valid UTF-8 made only of characters
// allowed by XML 1.0, so it reloads unchanged from the store file.
func StorableText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t', r == '\n', r == '\r':
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}

// EditSession is the state of one add-or-update interaction.
// A zero ProfileID means a new profile will be created on commit.
type EditSession struct {
	ProfileID int
	Original  *ServerProfile
}

// NewEditSession starts an edit for a profile that does not exist yet.
func NewEditSession() EditSession {
	return EditSession{}
}

// EditSessionFor starts an edit of an existing profile.
func EditSessionFor(p ServerProfile) EditSession {
	orig := p
	return EditSession{ProfileID: p.ID, Original: &orig}
}

func (s EditSession) IsNew() bool {
	return s.ProfileID == 0
}

// Op names the commit branch: "add" or "update".
func (s EditSession) Op() string {
	if s.IsNew() {
		return OpAdd
	}
	return OpUpdate
}

// InitialFields returns the values a form should be pre-filled with.
func (s EditSession) InitialFields() ProfileFields {
	if s.Original == nil {
		return ProfileFields{}
	}
	return s.Original.Fields()
}
