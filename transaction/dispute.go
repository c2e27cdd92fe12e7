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
	"fmt"

	"perun.network/perun-utxo-backend/channel"
	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

// DisputeArgs describe the registration of a state signed by every party.
type DisputeArgs struct {
	Channel ChannelInput
	State   wire.State
	Sigs    [][]byte
	// Timestamp is the time of the dispute in seconds since the Unix epoch. The challenge
	// duration starts then.
	Timestamp uint64
}

// checkState checks that state belongs to ch, preserves the channel's funds and carries a
// signature of every party.
func checkState(ch wire.Channel, state wire.State, sigs [][]byte) error {
	if state.ChannelID != ch.State.ChannelID {
		return ErrChannelMismatch
	}
	if len(state.Balances) != ch.Params.NumParts() {
		return fmt.Errorf("%w: %d balances for %d parties", ErrAmountMismatch, len(state.Balances), ch.Params.NumParts())
	}
	funded, err := ch.Control.Funding.Sum()
	if err != nil {
		return err
	}
	total, err := state.Balances.Sum()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAmountMismatch, err)
	}
	if !total.Equal(funded) {
		return fmt.Errorf("%w: state holds %v, channel holds %v", ErrAmountMismatch, total, funded)
	}
	if err := channel.VerifyStateSigs(ch.Params, state, sigs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// Dispute builds the transition registering State on the ledger. It consumes the channel-state
// record and creates the successor record holding State, marked disputed at Timestamp. A state
// can only replace a state of a lower version, or of the same version if the channel is not
// disputed yet.
func (b *Builder) Dispute(args DisputeArgs) (*ledger.Transaction, error) {
	if err := checkChannel(args.Channel); err != nil {
		return nil, err
	}
	ch := args.Channel.Channel
	if !ch.Control.Funded {
		return nil, ErrNotFunded
	}
	if args.State.Version < ch.State.Version || (ch.Control.Disputed && args.State.Version == ch.State.Version) {
		return nil, fmt.Errorf("%w: version %d, registered %d", ErrStaleState, args.State.Version, ch.State.Version)
	}
	if err := checkState(ch, args.State, args.Sigs); err != nil {
		return nil, err
	}

	next := ch.Clone()
	next.State = args.State.Clone()
	next.Control.Disputed = true
	next.Control.Timestamp = args.Timestamp
	chRecord, chData, err := b.successorOutput(args.Channel, next)
	if err != nil {
		return nil, err
	}
	witness, err := encodeWitness(wire.NewInputTypeWitness(wire.DisputeAction{Sigs: args.Sigs}))
	if err != nil {
		return nil, err
	}
	tx := &ledger.Transaction{
		CellDeps: b.env.CellDeps(),
		Inputs:   []ledger.OutPoint{args.Channel.OutPoint},
	}
	tx.AddOutput(chRecord, chData)
	tx.SetWitness(0, witness)

	b.log.Log().WithField("channel", ch.State.ChannelID).Debugf("built dispute transaction %v for version %d",
		tx.Hash(), args.State.Version)
	return tx, nil
}
