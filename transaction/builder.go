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
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	pchannel "perun.network/go-perun/channel"
	"perun.network/go-perun/log"
	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAlreadyFunded      = errors.New("channel already funded")
	ErrNotFunded          = errors.New("channel not funded")
	ErrStaleState         = errors.New("state is not newer than the registered state")
	ErrNotFinal           = errors.New("state is neither final nor registered in a dispute")
	ErrInvalidSignature   = errors.New("invalid state signature")
	ErrAmountMismatch     = errors.New("balances do not match the channel funds")
	ErrChannelMismatch    = errors.New("state belongs to another channel")
	ErrUnknownParty       = errors.New("unknown party index")
	ErrWrongSigner        = errors.New("signer does not match party")
	ErrCapacityOverflow   = errors.New("capacity overflows")
	ErrCommitmentTooSmall = errors.New("commitment below the occupied capacity of a funds record")
	ErrInvalidChannel     = errors.New("invalid channel")
)

// ChannelInput is a live channel-state record.
type ChannelInput struct {
	OutPoint ledger.OutPoint
	Capacity uint64
	Channel  wire.Channel
}

// FundInput is a live funds record of a channel.
type FundInput struct {
	OutPoint ledger.OutPoint
	Capacity uint64
	Amount   wire.Amount
}

// Builder assembles channel transitions for the scripts deployed in an Env.
type Builder struct {
	env Env
	log log.Embedding
}

// NewBuilder returns a Builder for env.
func NewBuilder(env Env) (*Builder, error) {
	if err := env.Valid(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return &Builder{
		env: env,
		log: log.MakeEmbedding(log.Default()),
	}, nil
}

// Env returns the environment of b.
func (b *Builder) Env() Env {
	return b.env
}

// channelOutput creates the channel-state record holding ch with its occupied capacity.
func (b *Builder) channelOutput(ch wire.Channel) (ledger.Record, []byte, error) {
	data, err := ch.MarshalBinary()
	if err != nil {
		return ledger.Record{}, nil, fmt.Errorf("encoding channel: %w", err)
	}
	typ := b.env.ChannelTypeFor(ch.State.ChannelID)
	r := ledger.Record{
		Lock: b.env.ChannelLockFor(ch.State.ChannelID),
		Type: &typ,
	}
	r.Capacity = r.OccupiedCapacity(data)
	return r, data, nil
}

// successorOutput creates the channel-state record replacing in with next. The record keeps the
// capacity of in.
func (b *Builder) successorOutput(in ChannelInput, next wire.Channel) (ledger.Record, []byte, error) {
	r, data, err := b.channelOutput(next)
	if err != nil {
		return ledger.Record{}, nil, err
	}
	if in.Capacity < r.Capacity {
		return ledger.Record{}, nil, fmt.Errorf("%w: channel record needs %d, has %d",
			ErrInsufficientFunds, r.Capacity, in.Capacity)
	}
	r.Capacity = in.Capacity
	return r, data, nil
}

// fundsOutput creates a funds record of the channel holding amount.
func (b *Builder) fundsOutput(id pchannel.ID, amount wire.Amount, capacity uint64) (ledger.Record, []byte) {
	return ledger.Record{
		Capacity: capacity,
		Lock:     b.env.FundsLockForChannel(id),
	}, wire.EncodeAmount(amount)
}

// sumFunds returns the total capacity of the channel record and the funds records and the total
// amount of the funds records.
func sumFunds(channelCapacity uint64, funds []FundInput) (uint64, wire.Amount, error) {
	capacity := channelCapacity
	var amount wire.Amount
	for i, f := range funds {
		var carry uint64
		if capacity, carry = bits.Add64(capacity, f.Capacity, 0); carry != 0 {
			return 0, wire.Amount{}, ErrCapacityOverflow
		}
		var err error
		if amount, err = amount.Add(f.Amount); err != nil {
			return 0, wire.Amount{}, fmt.Errorf("funds record %d: %w", i, err)
		}
	}
	return capacity, amount, nil
}

func encodeWitness(w wire.WitnessArgs, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return w.MarshalBinary()
}

// checkSigner checks that signer holds the key of party.
func checkSigner(signer pwallet.Account, party wire.Participant) error {
	addr, err := signer.Address().MarshalBinary()
	if err != nil {
		return err
	}
	if !bytes.Equal(addr, party.PubKey) {
		return ErrWrongSigner
	}
	return nil
}

// checkChannel rejects channel-state records whose balances are not aligned with the parties.
func checkChannel(in ChannelInput) error {
	if err := in.Channel.Valid(); err != nil {
		return fmt.Errorf("%w %v: %v", ErrInvalidChannel, in.OutPoint, err)
	}
	return nil
}

// signTx lets every signer sign the hash of tx.
func signTx(tx *ledger.Transaction, signers ...pwallet.Account) ([][]byte, error) {
	h := tx.Hash()
	sigs := make([][]byte, len(signers))
	for i, s := range signers {
		sig, err := s.SignData(h[:])
		if err != nil {
			return nil, fmt.Errorf("signing transaction: %w", err)
		}
		sigs[i] = sig
	}
	return sigs, nil
}

// amountToCapacity converts an amount of the capacity asset to capacity units.
func amountToCapacity(a wire.Amount) (uint64, error) {
	if a.Hi() != 0 {
		return 0, fmt.Errorf("%w: amount %v exceeds capacity range", ErrCapacityOverflow, a)
	}
	return a.Lo(), nil
}
