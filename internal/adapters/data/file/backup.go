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
	"sort"
	"strings"
)

// createBackup copies the current store next to itself with a timestamp and
// prunes old copies beyond backupCount. Nothing happens on first write.
func (r *profileRepo) createBackup() error {
	if r.backupCount <= 0 {
		return nil
	}

	data, err := r.fileSystem.ReadFile(r.filePath)
	if err != nil {
		if r.fileSystem.IsNotExist(err) {
			return nil
		}
		return err
	}

	backupPath := fmt.Sprintf("%s-%d%s", r.filePath, r.now().UnixNano(), BackupSuffix)
	if err := r.fileSystem.WriteFile(backupPath, data, StoreFilePerms); err != nil {
		return fmt.Errorf("failed to copy store to backup: %w", err)
	}
	r.logger.Debugw("created store backup", "path", backupPath)

	return r.pruneBackups()
}

func (r *profileRepo) pruneBackups() error {
	backups, err := r.findBackupFiles()
	if err != nil {
		return err
	}
	if len(backups) <= r.backupCount {
		return nil
	}

	// Newest first; the timestamp has a fixed width so names sort by age.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	for _, path := range backups[r.backupCount:] {
		if err := r.fileSystem.Remove(path); err != nil {
			r.logger.Warnf("failed to remove old backup %s: %v", path, err)
			continue
		}
		r.logger.Debugw("removed old store backup", "path", path)
	}
	return nil
}

func (r *profileRepo) findBackupFiles() ([]string, error) {
	dir := filepath.Dir(r.filePath)
	entries, err := r.fileSystem.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	prefix := filepath.Base(r.filePath) + "-"
	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, BackupSuffix) {
			continue
		}
		backups = append(backups, filepath.Join(dir, name))
	}
	return backups, nil
}
