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
	"math/bits"

	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

// CloseArgs describe the settlement of a channel.
type CloseArgs struct {
	Channel ChannelInput
	Funds   []FundInput
	// State is the final state, or the registered state of a disputed channel.
	State wire.State
	// Sigs holds a signature of State by every party.
	Sigs [][]byte
}

// Close builds the transition settling a funded channel. It consumes the channel-state record and
// every funds record of the channel and creates one payout record per party, in party order,
// under the channel's funds lock. Payout i holds balance i of State and that much capacity on
// top of its occupied capacity. signers must hold the keys of all parties, in party order; they
// sign the transaction for the funds lock.
func (b *Builder) Close(args CloseArgs, signers []pwallet.Account) (*ledger.Transaction, error) {
	if err := checkChannel(args.Channel); err != nil {
		return nil, err
	}
	ch := args.Channel.Channel
	if !ch.Control.Funded {
		return nil, ErrNotFunded
	}
	registered := ch.Control.Disputed && args.State.Version >= ch.State.Version
	if !args.State.Finalized && !registered {
		return nil, ErrNotFinal
	}
	if err := checkState(ch, args.State, args.Sigs); err != nil {
		return nil, err
	}
	if len(signers) != ch.Params.NumParts() {
		return nil, fmt.Errorf("expected %d signers, got %d", ch.Params.NumParts(), len(signers))
	}
	for i, s := range signers {
		if err := checkSigner(s, ch.Params.Parties[i]); err != nil {
			return nil, fmt.Errorf("signer %d: %w", i, err)
		}
	}
	capacity, amount, err := sumFunds(args.Channel.Capacity, args.Funds)
	if err != nil {
		return nil, err
	}
	total, err := args.State.Balances.Sum()
	if err != nil {
		return nil, err
	}
	if !total.Equal(amount) {
		return nil, fmt.Errorf("%w: state holds %v, funds records hold %v", ErrAmountMismatch, total, amount)
	}

	tx := &ledger.Transaction{
		CellDeps: b.env.CellDeps(),
		Inputs:   make([]ledger.OutPoint, 0, 1+len(args.Funds)),
	}
	tx.Inputs = append(tx.Inputs, args.Channel.OutPoint)
	for _, f := range args.Funds {
		tx.Inputs = append(tx.Inputs, f.OutPoint)
	}
	var payouts uint64
	for i, bal := range args.State.Balances {
		c, err := amountToCapacity(bal)
		if err != nil {
			return nil, fmt.Errorf("balance %d: %w", i, err)
		}
		r, data := b.fundsOutput(ch.State.ChannelID, bal, 0)
		occupied := r.OccupiedCapacity(data)
		var carry uint64
		if r.Capacity, carry = bits.Add64(c, occupied, 0); carry != 0 {
			return nil, ErrCapacityOverflow
		}
		if payouts, carry = bits.Add64(payouts, r.Capacity, 0); carry != 0 {
			return nil, ErrCapacityOverflow
		}
		tx.AddOutput(r, data)
	}
	if payouts > capacity {
		return nil, fmt.Errorf("%w: payouts need %d, channel holds %d", ErrInsufficientFunds, payouts, capacity)
	}

	chWitness, err := encodeWitness(wire.NewInputTypeWitness(wire.CloseAction{State: args.State, Sigs: args.Sigs}))
	if err != nil {
		return nil, err
	}
	tx.SetWitness(0, chWitness)
	if len(args.Funds) > 0 {
		sigs, err := signTx(tx, signers...)
		if err != nil {
			return nil, err
		}
		fundsWitness, err := encodeWitness(wire.NewLockWitness(wire.CloseAction{State: args.State, Sigs: sigs}))
		if err != nil {
			return nil, err
		}
		tx.SetWitness(1, fundsWitness)
	}
	b.log.Log().WithField("channel", ch.State.ChannelID).Debugf("built close transaction %v", tx.Hash())
	return tx, nil
}
