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

	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

// AbortArgs describe the abortion of a channel that is not funded yet.
type AbortArgs struct {
	Channel    ChannelInput
	Funds      []FundInput
	PartyIndex uint8
}

// Abort builds the transition cancelling a channel before it is funded. It consumes the
// channel-state record and every funds record of the channel and creates a single reclaim record
// under the channel's funds lock that holds all their capacity and amounts. signer must be party
// PartyIndex; it signs the transaction for the funds lock.
func (b *Builder) Abort(args AbortArgs, signer pwallet.Account) (*ledger.Transaction, error) {
	if err := checkChannel(args.Channel); err != nil {
		return nil, err
	}
	ch := args.Channel.Channel
	idx := int(args.PartyIndex)
	if idx >= ch.Params.NumParts() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParty, idx)
	}
	if ch.Control.Funded {
		return nil, ErrAlreadyFunded
	}
	if err := checkSigner(signer, ch.Params.Parties[idx]); err != nil {
		return nil, err
	}
	capacity, amount, err := sumFunds(args.Channel.Capacity, args.Funds)
	if err != nil {
		return nil, err
	}

	tx := &ledger.Transaction{
		CellDeps: b.env.CellDeps(),
		Inputs:   make([]ledger.OutPoint, 0, 1+len(args.Funds)),
	}
	tx.Inputs = append(tx.Inputs, args.Channel.OutPoint)
	for _, f := range args.Funds {
		tx.Inputs = append(tx.Inputs, f.OutPoint)
	}
	tx.AddOutput(b.fundsOutput(ch.State.ChannelID, amount, capacity))

	chWitness, err := encodeWitness(wire.NewInputTypeWitness(wire.AbortAction{Index: args.PartyIndex}))
	if err != nil {
		return nil, err
	}
	tx.SetWitness(0, chWitness)
	if len(args.Funds) > 0 {
		sigs, err := signTx(tx, signer)
		if err != nil {
			return nil, err
		}
		fundsWitness, err := encodeWitness(wire.NewLockWitness(wire.AbortAction{Index: args.PartyIndex, Sig: sigs[0]}))
		if err != nil {
			return nil, err
		}
		tx.SetWitness(1, fundsWitness)
	}
	b.log.Log().WithField("channel", ch.State.ChannelID).Debugf("built abort transaction %v", tx.Hash())
	return tx, nil
}
