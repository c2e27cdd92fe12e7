// Copyright 2025 PolyCrypt GmbH
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

package fundslock

import (
	"perun.network/perun-utxo-backend/vm"
)

// Validator is the funds lock program. It is stateless; every verdict only depends on the
// transaction the host exposes.
type Validator struct {
	verifier Verifier
	locks    ChannelLocks
}

var _ vm.Program = (*Validator)(nil)

// NewValidator returns a funds lock that checks signatures with verifier and derives the lock
// hashes of control records with locks.
func NewValidator(verifier Verifier, locks ChannelLocks) *Validator {
	return &Validator{verifier: verifier, locks: locks}
}

// Run accepts the transaction iff the script has arguments, the group's witness authorizes the
// spend and the group conserves its amounts. Checks run in this order and the first failure is
// returned.
func (v *Validator) Run(host vm.Host) error {
	args := host.Args()
	if len(args) == 0 {
		return newErrKind(ErrNoArgs)
	}
	if err := VerifyParticipant(host, args, v.verifier, v.locks); err != nil {
		return err
	}
	return CheckConservation(host)
}
