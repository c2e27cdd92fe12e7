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

package transaction

import (
	"errors"
	"fmt"

	pchannel "perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/vm"
	"perun.network/perun-utxo-backend/wire"
)

// DefaultMinPaymentCapacity is the minimum capacity of a payout record: the occupied capacity of
// a record with a one byte lock argument.
const DefaultMinPaymentCapacity = ledger.CapacityFieldSize + ledger.HashLength + 1

// Env names the deployed scripts transitions refer to.
type Env struct {
	// ChannelLock guards channel-state records. Its args are the channel id.
	ChannelLock ledger.ScriptRef
	// ChannelType marks channel-state records. Its args are the channel id.
	ChannelType ledger.ScriptRef
	// FundsLock guards the funds of a channel. Its args are the channel lock hash.
	FundsLock ledger.ScriptRef
	// AlwaysSuccess guards channel tokens.
	AlwaysSuccess ledger.ScriptRef
	// PaymentLock guards payouts and change. Its args are the participant's payment args.
	PaymentLock ledger.ScriptRef

	MinPaymentCapacity uint64
}

// Valid checks that every script of e is set.
func (e Env) Valid() error {
	refs := []struct {
		name string
		ref  ledger.ScriptRef
	}{
		{"channel lock", e.ChannelLock},
		{"channel type", e.ChannelType},
		{"funds lock", e.FundsLock},
		{"always success", e.AlwaysSuccess},
		{"payment lock", e.PaymentLock},
	}
	for _, r := range refs {
		if r.ref.CodeHash.IsZero() {
			return fmt.Errorf("%s script not set", r.name)
		}
	}
	if e.MinPaymentCapacity == 0 {
		return errors.New("minimum payment capacity not set")
	}
	return nil
}

// CellDeps returns the cell deps of every script in e.
func (e Env) CellDeps() []ledger.CellDep {
	return []ledger.CellDep{
		e.AlwaysSuccess.Dep,
		e.ChannelType.Dep,
		e.ChannelLock.Dep,
		e.FundsLock.Dep,
		e.PaymentLock.Dep,
	}
}

// ChannelLockFor returns the lock of the channel-state record of channel id.
func (e Env) ChannelLockFor(id pchannel.ID) ledger.Script {
	return e.ChannelLock.Script(append([]byte(nil), id[:]...))
}

// ChannelLockHash returns the hash of ChannelLockFor(id).
func (e Env) ChannelLockHash(id pchannel.ID) [vm.HashLength]byte {
	return e.ChannelLockFor(id).Hash()
}

// ChannelTypeFor returns the type of the channel-state record of channel id.
func (e Env) ChannelTypeFor(id pchannel.ID) ledger.Script {
	return e.ChannelType.Script(append([]byte(nil), id[:]...))
}

// FundsLockFor returns the lock of the funds belonging to the channel guarded by channelLock.
func (e Env) FundsLockFor(channelLock ledger.Script) ledger.Script {
	h := channelLock.Hash()
	return e.FundsLock.Script(h[:])
}

// FundsLockForChannel is FundsLockFor(ChannelLockFor(id)).
func (e Env) FundsLockForChannel(id pchannel.ID) ledger.Script {
	return e.FundsLockFor(e.ChannelLockFor(id))
}

// PaymentLockFor returns the lock of the payout records of part.
func (e Env) PaymentLockFor(part wire.Participant) ledger.Script {
	return ledger.Script{CodeHash: part.PaymentLockHash, Args: append([]byte(nil), part.PaymentArgs...)}
}

// AlwaysSuccessLock returns a lock anybody can unlock.
func (e Env) AlwaysSuccessLock() ledger.Script {
	return e.AlwaysSuccess.Script(nil)
}
