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

package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/Adembc/lazysrv/internal/core/domain"
	"github.com/Adembc/lazysrv/internal/core/ports"
)

// SSHProber proves that a host accepts a user/password pair by completing an
// SSH handshake and authentication. No command, shell or tunnel is opened.
type SSHProber struct {
	port            int
	timeout         time.Duration
	hostKeyCallback ssh.HostKeyCallback
	logger          *zap.SugaredLogger
}

func NewSSHProber(logger *zap.SugaredLogger, cfg domain.ProbeConfig) (*SSHProber, error) {
	hostKeyCallback := ssh.InsecureIgnoreHostKey() // #nosec G106 -- host keys are checked only when known_hosts is configured
	if cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts %s: %w", cfg.KnownHostsPath, err)
		}
		hostKeyCallback = cb
	}

	port := cfg.Port
	if port <= 0 {
		port = domain.DefaultProbePort
	}

	return &SSHProber{
		port:            port,
		timeout:         cfg.Timeout(),
		hostKeyCallback: hostKeyCallback,
		logger:          logger,
	}, nil
}

// Open dials the target and authenticates. The handshake is bounded by both
// the prober timeout and the context.
func (p *SSHProber) Open(ctx context.Context, target ports.ProbeTarget) (ports.ProbeSession, error) {
	addr := p.address(target.Host)
	config := &ssh.ClientConfig{
		User: target.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Secret),
			ssh.KeyboardInteractive(answerAll(target.Secret)),
		},
		HostKeyCallback: p.hostKeyCallback,
		Timeout:         p.timeout,
	}

	p.logger.Debugw("probe start", "addr", addr, "user", target.User)

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if !stop() {
		if err == nil {
			_ = c.Close()
		}
		return nil, fmt.Errorf("ssh handshake with %s aborted: %w", addr, ctx.Err())
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	p.logger.Debugw("probe authenticated", "addr", addr, "user", target.User)
	return &session{client: ssh.NewClient(c, chans, reqs), addr: addr, logger: p.logger}, nil
}

// address appends the configured port unless host already carries one.
func (p *SSHProber) address(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(p.port))
}

// answerAll replies to every keyboard-interactive prompt with the password.
func answerAll(secret string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = secret
		}
		return answers, nil
	}
}

type session struct {
	client *ssh.Client
	addr   string
	logger *zap.SugaredLogger
}

func (s *session) Close() error {
	err := s.client.Close()
	s.logger.Debugw("probe session closed", "addr", s.addr, "error", err)
	return err
}
