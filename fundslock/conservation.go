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
	"errors"
	"fmt"

	"perun.network/perun-utxo-backend/vm"
	"perun.network/perun-utxo-backend/wire"
)

// ErrUncoveredAmount is returned for funds records whose capacity is smaller than their amount.
var ErrUncoveredAmount = errors.New("capacity does not cover amount")

// SumGroup adds up the amounts of all records of source, starting at index 0 and stopping at
// the first vm.ErrIndexOutOfBound.
func SumGroup(host vm.Host, source vm.Source) (wire.Amount, error) {
	var total wire.Amount
	for i := 0; ; i++ {
		data, err := host.RecordData(i, source)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			return total, nil
		} else if err != nil {
			return wire.Amount{}, newErrInner(ErrCapabilityFailure, err)
		}
		amount, err := wire.DecodeAmount(data)
		if err != nil {
			return wire.Amount{}, newErrInner(ErrEncoding, fmt.Errorf("record %d of %v: %w", i, source, err))
		}
		if total, err = total.Add(amount); err != nil {
			return wire.Amount{}, newErrInner(ErrAmountMismatch, fmt.Errorf("summing %v: %w", source, err))
		}
	}
}

// CheckConservation requires the group's input amounts to equal its output amounts and every
// group output to hold at least its amount in capacity.
func CheckConservation(host vm.Host) error {
	in, err := SumGroup(host, vm.SourceGroupInput)
	if err != nil {
		return err
	}
	out, err := SumGroup(host, vm.SourceGroupOutput)
	if err != nil {
		return err
	}
	if !in.Equal(out) {
		return newErrInner(ErrAmountMismatch, fmt.Errorf("inputs hold %v, outputs hold %v", in, out))
	}
	return CheckCapacityCoverage(host)
}

// CheckCapacityCoverage requires every group output to hold at least its amount in capacity.
func CheckCapacityCoverage(host vm.Host) error {
	for i := 0; ; i++ {
		data, err := host.RecordData(i, vm.SourceGroupOutput)
		if errors.Is(err, vm.ErrIndexOutOfBound) {
			return nil
		} else if err != nil {
			return newErrInner(ErrCapabilityFailure, err)
		}
		amount, err := wire.DecodeAmount(data)
		if err != nil {
			return newErrInner(ErrEncoding, fmt.Errorf("output %d: %w", i, err))
		}
		capacity, err := host.RecordCapacity(i, vm.SourceGroupOutput)
		if err != nil {
			return newErrInner(ErrCapabilityFailure, err)
		}
		if amount.Hi() != 0 || amount.Lo() > capacity {
			return newErrInner(ErrAmountMismatch, fmt.Errorf("output %d: %w: amount %v, capacity %d",
				i, ErrUncoveredAmount, amount, capacity))
		}
	}
}
