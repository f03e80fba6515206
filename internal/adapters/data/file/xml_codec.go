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
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

var errEmptyStore = errors.New("store file is empty")

// utf8BOM is written by some serializers in front of the XML declaration.
const utf8BOM = "\xef\xbb\xbf"

// serversDocument mirrors the layout XmlSerializer produces for a .NET
// List<Servers>, so existing store files load unchanged.
type serversDocument struct {
	XMLName xml.Name       `xml:"ArrayOfServers"`
	Servers []serverRecord `xml:"Servers"`
}

type serverRecord struct {
	ID       int    `xml:"Id"`
	Name     string `xml:"Name"`
	IP       string `xml:"Ip"`
	User     string `xml:"User"`
	Password string `xml:"Password"`
}

func recordFromProfile(p domain.ServerProfile) serverRecord {
	return serverRecord{
		ID:       p.ID,
		Name:     p.Name,
		IP:       p.Host,
		User:     p.User,
		Password: p.Secret,
	}
}

func (r serverRecord) toProfile() domain.ServerProfile {
	return domain.ServerProfile{
		ID:     r.ID,
		Name:   r.Name,
		Host:   r.IP,
		User:   r.User,
		Secret: r.Password,
	}
}

// decodeProfiles parses the store document. Ids must be positive and unique.
// A file with no document in it is rejected like any other unreadable store.
func decodeProfiles(data []byte) ([]domain.ServerProfile, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyStore
	}

	var doc serversDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	profiles := make([]domain.ServerProfile, 0, len(doc.Servers))
	seen := make(map[int]struct{}, len(doc.Servers))
	for i, rec := range doc.Servers {
		if rec.ID <= 0 {
			return nil, fmt.Errorf("record %d has invalid id %d", i+1, rec.ID)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate id %d", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		profiles = append(profiles, rec.toProfile())
	}
	return profiles, nil
}

// encodeProfiles refuses text that encoding/xml would silently replace with
// U+FFFD, so a saved record always reloads byte for byte.
func encodeProfiles(profiles []domain.ServerProfile) ([]byte, error) {
	doc := serversDocument{Servers: make([]serverRecord, 0, len(profiles))}
	for _, p := range profiles {
		if field := unstorableField(p); field != "" {
			return nil, fmt.Errorf("server %d: %s contains characters that cannot be stored", p.ID, field)
		}
		doc.Servers = append(doc.Servers, recordFromProfile(p))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode server store: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(out) + 1)
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func unstorableField(p domain.ServerProfile) string {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", p.Name},
		{"host", p.Host},
		{"user", p.User},
		{"password", p.Secret},
	} {
		if !domain.StorableText(f.value) {
			return f.name
		}
	}
	return ""
}
