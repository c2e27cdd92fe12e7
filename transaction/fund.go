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

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

// FundArgs describe the funding of a channel by one of its parties.
type FundArgs struct {
	Channel          ChannelInput
	PartyIndex       uint8
	MyFunds          ledger.OutPoint
	MyAvailableFunds uint64
}

// FundResult is a fund transition and the records it creates.
type FundResult struct {
	Tx          *ledger.Transaction
	ChannelCell ledger.OutPoint
	FundsCells  []ledger.OutPoint
	Channel     wire.Channel
}

// Fund builds the transition in which party PartyIndex pays its share of the initial balances.
// It consumes the channel-state record and the party's funds and creates, in this order, the
// successor channel-state record, the party's funds record and the party's change. The channel is
// marked funded once every party has paid.
func (b *Builder) Fund(args FundArgs) (*FundResult, error) {
	if err := checkChannel(args.Channel); err != nil {
		return nil, err
	}
	ch := args.Channel.Channel
	idx := int(args.PartyIndex)
	if idx >= ch.Params.NumParts() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParty, idx)
	}
	if ch.Control.Funded || ch.Control.Funding[idx].Equal(ch.State.Balances[idx]) {
		return nil, ErrAlreadyFunded
	}
	amount := ch.State.Balances[idx]
	wanted, err := amountToCapacity(amount)
	if err != nil {
		return nil, err
	}

	next := ch.Clone()
	next.Control.Funding[idx] = amount
	next.Control.Funded = next.FullyFunded()
	chRecord, chData, err := b.successorOutput(args.Channel, next)
	if err != nil {
		return nil, err
	}
	fundRecord, fundData := b.fundsOutput(ch.State.ChannelID, amount, wanted)
	if occupied := fundRecord.OccupiedCapacity(fundData); wanted < occupied {
		return nil, fmt.Errorf("%w: %d < %d", ErrCommitmentTooSmall, wanted, occupied)
	}
	change, err := createFundingFrom(args.MyAvailableFunds, wanted)
	if err != nil {
		return nil, err
	}
	changeRecord := ledger.Record{
		Capacity: change,
		Lock:     b.env.PaymentLockFor(ch.Params.Parties[idx]),
	}
	if occupied := changeRecord.OccupiedCapacity(nil); change < occupied {
		return nil, fmt.Errorf("%w: change %d below occupied capacity %d", ErrInsufficientFunds, change, occupied)
	}

	witness, err := encodeWitness(wire.NewInputTypeWitness(wire.FundAction{Index: args.PartyIndex}))
	if err != nil {
		return nil, err
	}
	tx := &ledger.Transaction{
		CellDeps: b.env.CellDeps(),
		Inputs:   []ledger.OutPoint{args.Channel.OutPoint, args.MyFunds},
	}
	tx.AddOutput(chRecord, chData)
	tx.AddOutput(fundRecord, fundData)
	tx.AddOutput(changeRecord, nil)
	tx.SetWitness(0, witness)

	h := tx.Hash()
	b.log.Log().WithField("channel", ch.State.ChannelID).Debugf("built fund transaction %v for party %d", h, idx)
	return &FundResult{
		Tx:          tx,
		ChannelCell: ledger.OutPoint{TxHash: h, Index: 0},
		FundsCells:  []ledger.OutPoint{{TxHash: h, Index: 1}},
		Channel:     next,
	}, nil
}

// ChannelInput returns the channel-state record created by the fund transition.
func (r *FundResult) ChannelInput() ChannelInput {
	return ChannelInput{
		OutPoint: r.ChannelCell,
		Capacity: r.Tx.Outputs[0].Capacity,
		Channel:  r.Channel,
	}
}

// FundInputs returns the funds records created by the fund transition.
func (r *FundResult) FundInputs() []FundInput {
	amount, _ := wire.DecodeAmount(r.Tx.OutputsData[1])
	return []FundInput{{
		OutPoint: r.FundsCells[0],
		Capacity: r.Tx.Outputs[1].Capacity,
		Amount:   amount,
	}}
}
