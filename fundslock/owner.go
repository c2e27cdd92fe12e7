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
	"bytes"
	"errors"

	"perun.network/perun-utxo-backend/vm"
)

// HasOwnedControlRecord reports whether any input of the transaction, not only of the group, is
// locked by the lock whose hash equals args.
func HasOwnedControlRecord(host vm.Host, args []byte) (bool, error) {
	_, ok, err := findControlRecord(host, args)
	return ok, err
}

func findControlRecord(host vm.Host, args []byte) (int, bool, error) {
	for i := 0; ; i++ {
		lockHash, err := host.RecordLockHash(i, vm.SourceInput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			return 0, false, nil
		} else if err != nil {
			return 0, false, newErrInner(ErrCapabilityFailure, err)
		}
		if bytes.Equal(lockHash[:], args) {
			return i, true, nil
		}
	}
}
