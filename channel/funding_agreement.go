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

package channel

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"perun.network/perun-utxo-backend/wire"
)

var (
	ErrUnknownIndex        = errors.New("unknown participant index")
	ErrUnsupportedAsset    = errors.New("unsupported asset")
	ErrBalancesLength      = errors.New("balances do not match the number of participants")
	ErrTooManyParticipants = fmt.Errorf("at most %d participants", wire.MaxParties)
	ErrNonDenseIndex       = errors.New("participant indices must match their position")
)

// FundingAgreementEntry is what a single participant commits to a channel.
type FundingAgreementEntry struct {
	Amounts []AssetAmount
	Index   uint8
	PubKey  *ecdsa.PublicKey
}

// capacity returns the entry's CapacityAsset amount.
func (e FundingAgreementEntry) capacity() (uint64, error) {
	for _, a := range e.Amounts {
		if a.Asset == CapacityAsset {
			return a.Amount, nil
		}
	}
	return 0, fmt.Errorf("participant %d: %w", e.Index, ErrUnsupportedAsset)
}

// Commitment is a party's public key with the capacity it commits.
type Commitment struct {
	PubKey   *ecdsa.PublicKey
	Capacity uint64
}

// FundingAgreement describes who owes what to a channel. Entry i belongs to participant i.
type FundingAgreement struct {
	entries []FundingAgreementEntry
}

// NewFundingAgreement creates an agreement from entries. The index of every entry must equal its
// position.
func NewFundingAgreement(entries ...FundingAgreementEntry) (*FundingAgreement, error) {
	if len(entries) > wire.MaxParties {
		return nil, ErrTooManyParticipants
	}
	for i, e := range entries {
		if int(e.Index) != i {
			return nil, fmt.Errorf("entry %d has index %d: %w", i, e.Index, ErrNonDenseIndex)
		}
	}
	return &FundingAgreement{entries: append([]FundingAgreementEntry(nil), entries...)}, nil
}

// NewFundingAgreementWithCapacities creates an agreement where every party commits a single
// CapacityAsset amount. Indices are assigned by position.
func NewFundingAgreementWithCapacities(commitments ...Commitment) (*FundingAgreement, error) {
	entries := make([]FundingAgreementEntry, len(commitments))
	for i, c := range commitments {
		entries[i] = FundingAgreementEntry{
			Amounts: []AssetAmount{NewCapacityAmount(c.Capacity)},
			Index:   uint8(i),
			PubKey:  c.PubKey,
		}
	}
	return NewFundingAgreement(entries...)
}

// Entries returns a copy of the agreement's entries.
func (f *FundingAgreement) Entries() []FundingAgreementEntry {
	return append([]FundingAgreementEntry(nil), f.entries...)
}

// NumParts returns the number of participants.
func (f *FundingAgreement) NumParts() int {
	return len(f.entries)
}

// MkParticipants projects the agreement into the on-record participants. Every participant is
// paid out to the lock paymentLockHash with its index as lock args.
func (f *FundingAgreement) MkParticipants(paymentLockHash [wire.HashLength]byte, minCapacity uint64) []wire.Participant {
	parts := make([]wire.Participant, len(f.entries))
	for i, e := range f.entries {
		parts[i] = wire.Participant{
			PaymentLockHash:    paymentLockHash,
			PaymentMinCapacity: minCapacity,
			PaymentArgs:        []byte{e.Index},
			UnlockArgs:         []byte{},
			PubKey:             wire.PublicKeyToBytes(e.PubKey),
		}
	}
	return parts
}

// MkBalances returns the balances of a channel in which the participants funded have paid their
// share and all others have not paid anything.
func (f *FundingAgreement) MkBalances(funded ...uint8) (wire.Balances, error) {
	isFunded := make(map[uint8]bool, len(funded))
	for _, idx := range funded {
		isFunded[idx] = true
	}
	bals := make(wire.Balances, 0, len(f.entries))
	for _, e := range f.entries {
		if !isFunded[e.Index] {
			bals = append(bals, wire.Amount{})
			continue
		}
		c, err := e.capacity()
		if err != nil {
			return nil, err
		}
		bals = append(bals, wire.NewAmount(c))
	}
	if len(bals) != f.NumParts() {
		return nil, ErrBalancesLength
	}
	return bals, nil
}

// InitialBalances returns the balances once every participant has funded.
func (f *FundingAgreement) InitialBalances() (wire.Balances, error) {
	all := make([]uint8, len(f.entries))
	for i := range all {
		all[i] = uint8(i)
	}
	return f.MkBalances(all...)
}

// ExpectedFundingFor returns the capacity participant index has to fund.
func (f *FundingAgreement) ExpectedFundingFor(index uint8) (uint64, error) {
	if int(index) >= len(f.entries) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownIndex, index)
	}
	return f.entries[index].capacity()
}

// Total returns the sum of all commitments.
func (f *FundingAgreement) Total() (wire.Amount, error) {
	bals, err := f.InitialBalances()
	if err != nil {
		return wire.Amount{}, err
	}
	return bals.Sum()
}
