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

// OpenArgs describe the opening of a channel by one of its parties.
type OpenArgs struct {
	Agreement         *channel.FundingAgreement
	PartyIndex        uint8
	Nonce             [wire.NonceLength]byte
	ChallengeDuration uint64
	// ChannelToken is consumed to pay for the channel-state record.
	ChannelToken ledger.OutPoint
	// MyFunds is the opener's record its commitment is taken from.
	MyFunds          ledger.OutPoint
	MyAvailableFunds uint64
}

// OpenResult is an open transition and the records it creates.
type OpenResult struct {
	Tx          *ledger.Transaction
	ChannelCell ledger.OutPoint
	FundsCells  []ledger.OutPoint
	Channel     wire.Channel
}

// Output positions of an open transition.
const (
	openChannelOutput = iota
	openFundsOutput
	openChangeOutput
)

// Open builds the transition opening a channel. It consumes the channel token and the opener's
// funds and creates, in this order, the channel-state record, the opener's funds record and the
// opener's change.
func (b *Builder) Open(args OpenArgs) (*OpenResult, error) {
	params, err := channel.MakeParams(args.Agreement, b.env.PaymentLock.CodeHash, b.env.MinPaymentCapacity,
		args.Nonce, args.ChallengeDuration)
	if err != nil {
		return nil, fmt.Errorf("making params: %w", err)
	}
	ch, err := channel.InitialChannel(params, args.Agreement, args.PartyIndex)
	if err != nil {
		return nil, fmt.Errorf("making initial channel: %w", err)
	}
	chRecord, chData, err := b.channelOutput(ch)
	if err != nil {
		return nil, err
	}

	wanted, err := args.Agreement.ExpectedFundingFor(args.PartyIndex)
	if err != nil {
		return nil, err
	}
	fundRecord, fundData := b.fundsOutput(ch.State.ChannelID, wire.NewAmount(wanted), wanted)
	if occupied := fundRecord.OccupiedCapacity(fundData); wanted < occupied {
		return nil, fmt.Errorf("%w: %d < %d", ErrCommitmentTooSmall, wanted, occupied)
	}
	change, err := createFundingFrom(args.MyAvailableFunds, wanted)
	if err != nil {
		return nil, err
	}
	changeRecord := ledger.Record{
		Capacity: change,
		Lock:     b.env.PaymentLockFor(params.Parties[args.PartyIndex]),
	}
	if occupied := changeRecord.OccupiedCapacity(nil); change < occupied {
		return nil, fmt.Errorf("%w: change %d below occupied capacity %d", ErrInsufficientFunds, change, occupied)
	}

	witness, err := encodeWitness(wire.NewOutputTypeWitness(wire.OpenAction{}))
	if err != nil {
		return nil, err
	}
	tx := &ledger.Transaction{
		CellDeps: b.env.CellDeps(),
		Inputs:   []ledger.OutPoint{args.ChannelToken, args.MyFunds},
	}
	tx.AddOutput(chRecord, chData)
	tx.AddOutput(fundRecord, fundData)
	tx.AddOutput(changeRecord, nil)
	tx.SetWitness(0, witness)

	h := tx.Hash()
	b.log.Log().WithField("channel", ch.State.ChannelID).Debugf("built open transaction %v", h)
	return &OpenResult{
		Tx:          tx,
		ChannelCell: ledger.OutPoint{TxHash: h, Index: openChannelOutput},
		FundsCells:  []ledger.OutPoint{{TxHash: h, Index: openFundsOutput}},
		Channel:     ch,
	}, nil
}

// ChannelInput returns the channel-state record created by the open transition.
func (r *OpenResult) ChannelInput() ChannelInput {
	return ChannelInput{
		OutPoint: r.ChannelCell,
		Capacity: r.Tx.Outputs[openChannelOutput].Capacity,
		Channel:  r.Channel,
	}
}

// FundInputs returns the funds records created by the open transition.
func (r *OpenResult) FundInputs() []FundInput {
	amount, _ := wire.DecodeAmount(r.Tx.OutputsData[openFundsOutput])
	return []FundInput{{
		OutPoint: r.FundsCells[0],
		Capacity: r.Tx.Outputs[openFundsOutput].Capacity,
		Amount:   amount,
	}}
}

func createFundingFrom(available, wanted uint64) (uint64, error) {
	if wanted > available {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrInsufficientFunds, wanted, available)
	}
	return available - wanted, nil
}
