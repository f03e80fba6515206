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
	"io"

	"github.com/Adembc/lazysrv/internal/core/domain"
)

// ProfileRepository owns the persisted collection of server profiles.
// Lookups return domain.ErrProfileNotFound when nothing matches.
type ProfileRepository interface {
	LoadAll() ([]domain.ServerProfile, error)
	FindByName(name string) (domain.ServerProfile, error)
	FindByID(id int) (domain.ServerProfile, error)
	Add(fields domain.ProfileFields) (domain.ServerProfile, error)
	Update(id int, fields domain.ProfileFields) (domain.ServerProfile, error)
	Delete(id int) error
}

// ProfileExporter renders profiles into another configuration format.
type ProfileExporter interface {
	Write(w io.Writer, profiles []domain.ServerProfile) error
}
