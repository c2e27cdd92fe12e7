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
	"fmt"

	pchannel "perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/vm"
	"perun.network/perun-utxo-backend/wire"
)

var (
	ErrNoControlRecord      = errors.New("channel control record is not consumed")
	ErrForeignControlRecord = errors.New("control record does not belong to the channel")
	ErrChannelFunded        = errors.New("funded channels cannot be aborted")
	ErrUnknownParty         = errors.New("unknown party index")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrSignatureCount       = errors.New("expected one signature per party")
	ErrNotReleasingFunds    = errors.New("action does not release funds")
)

// ChannelLocks derives the lock hash of a channel's control record from the channel id.
type ChannelLocks interface {
	ChannelLockHash(id pchannel.ID) [vm.HashLength]byte
}

// Verifier checks signatures. Verify reports whether sig is a valid signature of msg under the
// SEC1 encoded pubKey.
type Verifier interface {
	Verify(pubKey, msg, sig []byte) bool
}

// VerifyParticipant checks that the group's witness authorizes the transaction.
//
// The witness must carry an action in its lock field. The control record identified by args must
// be consumed by the same transaction, its parameters must hash to its channel id and locks must
// derive args from that id. Its parties must have signed the transaction hash:
// party Index for an AbortAction on a channel that is not funded yet, every party for a
// CloseAction. Other actions never spend funds records.
func VerifyParticipant(host vm.Host, args []byte, verifier Verifier, locks ChannelLocks) error {
	if len(args) == 0 {
		return newErrKind(ErrNoArgs)
	}
	action, err := loadAction(host)
	if err != nil {
		return err
	}

	idx, owned, err := findControlRecord(host, args)
	if err != nil {
		return err
	}
	if !owned {
		return newErrInner(ErrAuthorizationFailure, ErrNoControlRecord)
	}
	data, err := host.RecordData(idx, vm.SourceInput)
	if err != nil {
		return newErrInner(ErrCapabilityFailure, err)
	}
	var ch wire.Channel
	if err := ch.UnmarshalBinary(data); err != nil {
		return newErrInner(ErrEncoding, fmt.Errorf("control record: %w", err))
	}
	if err := checkChannelBinding(ch, args, locks); err != nil {
		return err
	}

	txHash := host.TxHash()
	switch a := action.(type) {
	case wire.AbortAction:
		return authorizeAbort(ch, a, txHash[:], verifier)
	case wire.CloseAction:
		return authorizeClose(ch, a, txHash[:], verifier)
	case wire.OpenAction, wire.FundAction, wire.DisputeAction:
		return newErrInner(ErrAuthorizationFailure, fmt.Errorf("%w: %v", ErrNotReleasingFunds, a.Tag()))
	default:
		return newErrInner(ErrAuthorizationFailure, wire.ErrUnknownAction)
	}
}

func loadAction(host vm.Host) (wire.Action, error) {
	raw, err := host.Witness(0, vm.SourceGroupInput)
	if errors.Is(err, vm.ErrIndexOutOfBound) {
		return nil, newErrKind(ErrNoWitness)
	} else if err != nil {
		return nil, newErrInner(ErrCapabilityFailure, err)
	}
	if len(raw) == 0 {
		return nil, newErrKind(ErrNoWitness)
	}
	var wa wire.WitnessArgs
	if err := wa.UnmarshalBinary(raw); err != nil {
		return nil, newErrInner(ErrEncoding, fmt.Errorf("witness: %w", err))
	}
	if len(wa.Lock) == 0 {
		return nil, newErrKind(ErrNoWitness)
	}
	action, err := wire.DecodeAction(wa.Lock)
	if err != nil {
		return nil, newErrInner(ErrEncoding, fmt.Errorf("witness action: %w", err))
	}
	return action, nil
}

// checkChannelBinding ties the control record to args. Anybody can create a record under the
// channel lock, but only the channel's own parameters hash to the id the lock is derived from.
func checkChannelBinding(ch wire.Channel, args []byte, locks ChannelLocks) error {
	id, err := ch.Params.ID()
	if err != nil {
		return newErrInner(ErrEncoding, fmt.Errorf("control record params: %w", err))
	}
	if id != ch.State.ChannelID {
		return newErrInner(ErrAuthorizationFailure, fmt.Errorf("%w: params hash to %x, state names %x",
			ErrForeignControlRecord, id, ch.State.ChannelID))
	}
	if lockHash := locks.ChannelLockHash(id); !bytes.Equal(lockHash[:], args) {
		return newErrInner(ErrAuthorizationFailure, fmt.Errorf("%w: channel %x", ErrForeignControlRecord, id))
	}
	return nil
}

func authorizeAbort(ch wire.Channel, a wire.AbortAction, msg []byte, verifier Verifier) error {
	if ch.Control.Funded {
		return newErrInner(ErrAuthorizationFailure, ErrChannelFunded)
	}
	if int(a.Index) >= len(ch.Params.Parties) {
		return newErrInner(ErrAuthorizationFailure, ErrUnknownParty)
	}
	if !verifier.Verify(ch.Params.Parties[a.Index].PubKey, msg, a.Sig) {
		return newErrInner(ErrAuthorizationFailure, fmt.Errorf("party %d: %w", a.Index, ErrInvalidSignature))
	}
	return nil
}

func authorizeClose(ch wire.Channel, a wire.CloseAction, msg []byte, verifier Verifier) error {
	if len(a.Sigs) != len(ch.Params.Parties) {
		return newErrInner(ErrAuthorizationFailure, ErrSignatureCount)
	}
	for i, part := range ch.Params.Parties {
		if !verifier.Verify(part.PubKey, msg, a.Sigs[i]) {
			return newErrInner(ErrAuthorizationFailure, fmt.Errorf("party %d: %w", i, ErrInvalidSignature))
		}
	}
	return nil
}
