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
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Adembc/lazysrv/internal/core/domain"
	"github.com/Adembc/lazysrv/internal/core/ports"
)

const (
	StoreFilePerms = 0o600
	StoreDirPerms  = 0o700
	TempPattern    = "-*.tmp"
	BackupSuffix   = ".lazysrv.backup"
)

// profileRepo is the XML-backed server profile store. Every mutation reads the
// whole file, changes the in-memory list and writes the whole list back.
// mu serializes all access so at most one mutation is in flight per process.
type profileRepo struct {
	mu          sync.Mutex
	fileSystem  ports.FileSystem
	filePath    string
	backupCount int
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewProfileRepo(logger *zap.SugaredLogger, fs ports.FileSystem, filePath string, backupCount int) *profileRepo {
	return &profileRepo{
		fileSystem:  fs,
		filePath:    filePath,
		backupCount: backupCount,
		logger:      logger,
		now:         time.Now,
	}
}

// LoadAll returns every stored profile in file order. A missing file is an
// empty store, not an error.
func (r *profileRepo) LoadAll() ([]domain.ServerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// FindByName returns the first profile whose name matches exactly.
func (r *profileRepo) FindByName(name string) (domain.ServerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return domain.ServerProfile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.ServerProfile{}, fmt.Errorf("%w: name %q", domain.ErrProfileNotFound, name)
}

func (r *profileRepo) FindByID(id int) (domain.ServerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return domain.ServerProfile{}, err
	}
	if i := indexOf(profiles, id); i >= 0 {
		return profiles[i], nil
	}
	return domain.ServerProfile{}, fmt.Errorf("%w: id %d", domain.ErrProfileNotFound, id)
}

// Add assigns the next id, appends the profile and rewrites the store.
// Names are not checked for collisions here.
func (r *profileRepo) Add(fields domain.ProfileFields) (domain.ServerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return domain.ServerProfile{}, err
	}

	profile := domain.ServerProfile{ID: nextID(profiles)}.WithFields(fields)
	profiles = append(profiles, profile)

	if err := r.save(profiles); err != nil {
		return domain.ServerProfile{}, err
	}
	r.logger.Infow("server profile added", "id", profile.ID, "name", profile.Name, "host", profile.Host)
	return profile, nil
}

// Update overwrites the mutable fields of the profile with the given id.
// When the id is absent nothing is written.
func (r *profileRepo) Update(id int, fields domain.ProfileFields) (domain.ServerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return domain.ServerProfile{}, err
	}

	i := indexOf(profiles, id)
	if i < 0 {
		return domain.ServerProfile{}, fmt.Errorf("%w: id %d", domain.ErrProfileNotFound, id)
	}
	profiles[i] = profiles[i].WithFields(fields)

	if err := r.save(profiles); err != nil {
		return domain.ServerProfile{}, err
	}
	r.logger.Infow("server profile updated", "id", id, "name", profiles[i].Name, "host", profiles[i].Host)
	return profiles[i], nil
}

func (r *profileRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return err
	}

	i := indexOf(profiles, id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrProfileNotFound, id)
	}
	removed := profiles[i]
	profiles = append(profiles[:i], profiles[i+1:]...)

	if err := r.save(profiles); err != nil {
		return err
	}
	r.logger.Infow("server profile deleted", "id", id, "name", removed.Name)
	return nil
}

func (r *profileRepo) load() ([]domain.ServerProfile, error) {
	data, err := r.fileSystem.ReadFile(r.filePath)
	if err != nil {
		if r.fileSystem.IsNotExist(err) {
			return []domain.ServerProfile{}, nil
		}
		return nil, fmt.Errorf("failed to read server store %s: %w", r.filePath, err)
	}

	profiles, err := decodeProfiles(data)
	if err != nil {
		r.logger.Errorw("server store is corrupt", "path", r.filePath, "error", err)
		return nil, &domain.CorruptStoreError{Path: r.filePath, Err: err}
	}
	return profiles, nil
}

func (r *profileRepo) save(profiles []domain.ServerProfile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return &domain.StorageWriteError{Path: r.filePath, Err: err}
	}
	if err := r.writeAtomic(data); err != nil {
		r.logger.Errorw("failed to write server store", "path", r.filePath, "error", err)
		return &domain.StorageWriteError{Path: r.filePath, Err: err}
	}
	return nil
}

// writeAtomic writes data to a temp file in the store directory and renames it
// over the store, so readers see either the old or the new file.
func (r *profileRepo) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.filePath)
	if err := r.fileSystem.MkdirAll(dir, StoreDirPerms); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := r.fileSystem.CreateTemp(dir, "."+filepath.Base(r.filePath)+TempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	replaced := false
	defer func() {
		if replaced {
			return
		}
		if removeErr := r.fileSystem.Remove(tmpName); removeErr != nil && !r.fileSystem.IsNotExist(removeErr) {
			r.logger.Warnf("failed to remove temporary file %s: %v", tmpName, removeErr)
		}
	}()

	if err := r.fileSystem.Chmod(tmpName, StoreFilePerms); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := r.createBackup(); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := r.fileSystem.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("failed to atomically replace store file: %w", err)
	}
	replaced = true

	r.logger.Debugw("server store written", "path", r.filePath, "bytes", len(data))
	return nil
}

func indexOf(profiles []domain.ServerProfile, id int) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextID is max(existing ids)+1, or 1 for an empty store.
func nextID(profiles []domain.ServerProfile) int {
	maxID := 0
	for _, p := range profiles {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}
