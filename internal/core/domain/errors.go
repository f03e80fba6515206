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
	"errors"
	"fmt"
	"strings"
)

const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpTest   = "test"
)

var (
	ErrProfileNotFound = errors.New("server profile not found")
	ErrDuplicateName   = errors.New("a server profile with this name already exists")
)

// ValidationError lists the required fields that were left empty and the
// fields whose text cannot be stored.
type ValidationError struct {
	Fields  []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, "please fill in all fields, missing: "+strings.Join(e.Fields, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "unsupported characters in: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// CorruptStoreError means the backing file exists but could not be decoded.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt server store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// StorageWriteError means rewriting the backing file failed. The previous
// file content is left in place.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write server store %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// ConnectFailure means the SSH probe could not reach or authenticate against
// the host. Op tells whether an add or an update was being committed.
type ConnectFailure struct {
	Op   string
	Host string
	User string
	Err  error
}

func (e *ConnectFailure) Error() string {
	var action string
	switch e.Op {
	case OpAdd:
		action = "adding the server"
	case OpUpdate:
		action = "modifying the server"
	default:
		action = "testing the connection"
	}
	return fmt.Sprintf("error %s: could not connect to %s@%s: %v", action, e.User, e.Host, e.Err)
}

func (e *ConnectFailure) Unwrap() error { return e.Err }
