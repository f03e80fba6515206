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

package ports

import (
	"context"
	"io"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

type ProfileService interface {
	ListProfiles(query string) ([]domain.ServerProfile, error)
	GetProfile(id int) (domain.ServerProfile, error)
	GetProfileByName(name string) (domain.ServerProfile, error)
	BeginEdit(id int) (domain.EditSession, error)
	BeginEditByName(name string) (domain.EditSession, error)
	Commit(ctx context.Context, session domain.EditSession, fields domain.ProfileFields) (domain.ServerProfile, error)
	DeleteProfile(id int) error
	TestConnection(ctx context.Context, fields domain.ProfileFields) error
	ExportSSHConfig(w io.Writer) error
}
