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

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Adembc/lazysrv/internal/core/domain"
	"github.com/Adembc/lazysrv/internal/core/ports"
)

type profileService struct {
	profileRepository  ports.ProfileRepository
	prober             ports.Prober
	exporter           ports.ProfileExporter
	logger             *zap.SugaredLogger
	probeEnabled       bool
	probeTimeout       time.Duration
	enforceUniqueNames bool

	// commitMu serializes the name check with the write that follows it.
	commitMu sync.Mutex
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(logger *zap.SugaredLogger, pr ports.ProfileRepository, prober ports.Prober,
	exporter ports.ProfileExporter, cfg domain.Config,
) *profileService {
	return &profileService{
		profileRepository:  pr,
		prober:             prober,
		exporter:           exporter,
		logger:             logger,
		probeEnabled:       cfg.Probe.Enabled,
		probeTimeout:       cfg.Probe.Timeout(),
		enforceUniqueNames: cfg.EnforceUniqueNames,
	}
}

// ListProfiles returns the stored profiles in file order, optionally filtered
// by a case-insensitive match on name, host or user.
func (s *profileService) ListProfiles(query string) ([]domain.ServerProfile, error) {
	profiles, err := s.profileRepository.LoadAll()
	if err != nil {
		s.logger.Errorw("failed to list server profiles", "error", err)
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return profiles, nil
	}

	filtered := make([]domain.ServerProfile, 0, len(profiles))
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Host), query) ||
			strings.Contains(strings.ToLower(p.User), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *profileService) GetProfile(id int) (domain.ServerProfile, error) {
	return s.profileRepository.FindByID(id)
}

func (s *profileService) GetProfileByName(name string) (domain.ServerProfile, error) {
	return s.profileRepository.FindByName(name)
}

// BeginEdit starts an edit session. id 0 means a new profile.
func (s *profileService) BeginEdit(id int) (domain.EditSession, error) {
	if id == 0 {
		return domain.NewEditSession(), nil
	}
	profile, err := s.profileRepository.FindByID(id)
	if err != nil {
		return domain.EditSession{}, err
	}
	return domain.EditSessionFor(profile), nil
}

// BeginEditByName starts an edit of the first profile with the given name.
func (s *profileService) BeginEditByName(name string) (domain.EditSession, error) {
	profile, err := s.profileRepository.FindByName(name)
	if err != nil {
		return domain.EditSession{}, err
	}
	return domain.EditSessionFor(profile), nil
}

// Commit validates fields, probes the host and only then adds or updates the
// profile. The probe session is released on every path. The stored profile is
// returned so the caller can refresh its view.
func (s *profileService) Commit(ctx context.Context, session domain.EditSession, fields domain.ProfileFields) (domain.ServerProfile, error) {
	op := session.Op()
	fields = fields.Trimmed()

	if err := fields.Validate(); err != nil {
		s.logger.Warnw("validation failed on "+op, "error", err, "profile_id", session.ProfileID)
		return domain.ServerProfile{}, err
	}

	if s.enforceUniqueNames {
		if err := s.checkNameAvailable(fields.Name, session.ProfileID); err != nil {
			s.logger.Warnw("name check failed on "+op, "error", err, "name", fields.Name)
			return domain.ServerProfile{}, err
		}
	}

	if s.probeEnabled {
		probe, err := s.openProbe(ctx, op, fields)
		if err != nil {
			return domain.ServerProfile{}, err
		}
		defer s.closeProbe(probe, fields)
	}

	profile, err := s.store(session, fields)
	if err != nil {
		s.logger.Errorw("failed to "+op+" server profile", "error", err, "profile_id", session.ProfileID, "name", fields.Name)
		return domain.ServerProfile{}, err
	}

	s.logger.Infow("server profile saved", "op", op, "id", profile.ID, "name", profile.Name)
	return profile, nil
}

// store repeats the name check under commitMu, since another commit may have
// taken the name while the probe was running.
func (s *profileService) store(session domain.EditSession, fields domain.ProfileFields) (domain.ServerProfile, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if s.enforceUniqueNames {
		if err := s.checkNameAvailable(fields.Name, session.ProfileID); err != nil {
			return domain.ServerProfile{}, err
		}
	}
	if session.IsNew() {
		return s.profileRepository.Add(fields)
	}
	return s.profileRepository.Update(session.ProfileID, fields)
}

// DeleteProfile removes a profile from the repository.
func (s *profileService) DeleteProfile(id int) error {
	err := s.profileRepository.Delete(id)
	if err != nil {
		s.logger.Errorw("failed to delete server profile", "error", err, "profile_id", id)
	}
	return err
}

// TestConnection runs the probe alone, without touching the store.
func (s *profileService) TestConnection(ctx context.Context, fields domain.ProfileFields) error {
	fields = fields.Trimmed()
	if err := fields.Validate(); err != nil {
		return err
	}
	probe, err := s.openProbe(ctx, domain.OpTest, fields)
	if err != nil {
		return err
	}
	s.closeProbe(probe, fields)
	return nil
}

// ExportSSHConfig writes every profile as an OpenSSH Host block.
func (s *profileService) ExportSSHConfig(w io.Writer) error {
	if s.exporter == nil {
		return errors.New("no exporter configured")
	}
	profiles, err := s.profileRepository.LoadAll()
	if err != nil {
		s.logger.Errorw("failed to load profiles for export", "error", err)
		return err
	}
	if err := s.exporter.Write(w, profiles); err != nil {
		s.logger.Errorw("failed to export profiles", "error", err)
		return err
	}
	return nil
}

func (s *profileService) checkNameAvailable(name string, id int) error {
	profiles, err := s.profileRepository.LoadAll()
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.Name == name && p.ID != id {
			return fmt.Errorf("%w: %q (id %d)", domain.ErrDuplicateName, name, p.ID)
		}
	}
	return nil
}

func (s *profileService) openProbe(ctx context.Context, op string, fields domain.ProfileFields) (ports.ProbeSession, error) {
	if s.prober == nil {
		return nil, &domain.ConnectFailure{Op: op, Host: fields.Host, User: fields.User, Err: errors.New("no connectivity probe configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	start := time.Now()
	session, err := s.prober.Open(ctx, ports.ProbeTarget{Host: fields.Host, User: fields.User, Secret: fields.Secret})
	if err != nil {
		s.logger.Errorw("connectivity probe failed", "op", op, "host", fields.Host, "user", fields.User, "error", err)
		return nil, &domain.ConnectFailure{Op: op, Host: fields.Host, User: fields.User, Err: err}
	}
	s.logger.Infow("connectivity probe succeeded", "op", op, "host", fields.Host, "user", fields.User, "elapsed", time.Since(start))
	return session, nil
}

func (s *profileService) closeProbe(session ports.ProbeSession, fields domain.ProfileFields) {
	if err := session.Close(); err != nil {
		s.logger.Warnw("failed to close probe session", "host", fields.Host, "error", err)
	}
}
