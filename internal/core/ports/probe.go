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

import "context"

// ProbeTarget is what the connectivity check authenticates with.
type ProbeTarget struct {
	Host   string
	User   string
	Secret string
}

// ProbeSession is an open SSH connection that must be closed by the caller.
type ProbeSession interface {
	Close() error
}

// Prober opens an SSH session purely to prove the credentials work.
type Prober interface {
	Open(ctx context.Context, target ProbeTarget) (ProbeSession, error)
}
