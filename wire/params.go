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

package wire

import (
	"crypto/sha256"
	"errors"
	"fmt"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"
	"perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	NonceLength = 32
	// MaxParties is bounded by the one byte participant index.
	MaxParties = 255

	SymbolParamsParties           xdr.ScSymbol = "parties"
	SymbolParamsNonce             xdr.ScSymbol = "nonce"
	SymbolParamsChallengeDuration xdr.ScSymbol = "challenge_duration"
)

var (
	ErrTooFewParties = errors.New("expected at least two parties")
	ErrSharedPayout  = errors.New("parties must not share a payout lock")
)

// Params are the fixed parameters of a channel.
type Params struct {
	Parties           []Participant
	Nonce             [NonceLength]byte
	ChallengeDuration uint64
}

// NumParts returns the number of channel parties.
func (p Params) NumParts() int {
	return len(p.Parties)
}

// ID derives the channel id as the hash of the encoded parameters.
func (p Params) ID() (channel.ID, error) {
	bytes, err := p.MarshalBinary()
	if err != nil {
		return channel.ID{}, err
	}
	return sha256.Sum256(bytes), nil
}

// Valid checks the party set: at least two and at most MaxParties parties, well-formed keys and
// pairwise distinct payout locks.
func (p Params) Valid() error {
	if len(p.Parties) < 2 { //nolint:gomnd
		return ErrTooFewParties
	}
	if len(p.Parties) > MaxParties {
		return fmt.Errorf("expected at most %d parties", MaxParties)
	}
	for i, part := range p.Parties {
		if _, err := part.PublicKey(); err != nil {
			return fmt.Errorf("party %d: %w", i, err)
		}
		for j := 0; j < i; j++ {
			if part.SamePayout(p.Parties[j]) {
				return fmt.Errorf("parties %d and %d: %w", j, i, ErrSharedPayout)
			}
		}
	}
	return nil
}

func (p Params) ToScVal() (xdr.ScVal, error) {
	parties := make(xdr.ScVec, 0, len(p.Parties))
	for _, part := range p.Parties {
		v, err := part.ToScVal()
		if err != nil {
			return xdr.ScVal{}, err
		}
		parties = append(parties, v)
	}
	partiesVal, err := scval.WrapVec(parties)
	if err != nil {
		return xdr.ScVal{}, err
	}
	nonce, err := scval.WrapScBytes(p.Nonce[:])
	if err != nil {
		return xdr.ScVal{}, err
	}
	challengeDuration, err := scval.WrapUint64(xdr.Uint64(p.ChallengeDuration))
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolParamsParties,
			SymbolParamsNonce,
			SymbolParamsChallengeDuration,
		},
		[]xdr.ScVal{partiesVal, nonce, challengeDuration},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (p *Params) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 3, "Params") //nolint:gomnd
	if err != nil {
		return err
	}
	partiesVec, err := getVec(m, SymbolParamsParties)
	if err != nil {
		return err
	}
	parties := make([]Participant, len(partiesVec))
	for i, pv := range partiesVec {
		if err := parties[i].FromScVal(pv); err != nil {
			return fmt.Errorf("party %d: %w", i, err)
		}
	}
	nonce, err := getBytes(m, SymbolParamsNonce)
	if err != nil {
		return err
	}
	if len(nonce) != NonceLength {
		return errors.New("invalid nonce length")
	}
	challengeDuration, err := getUint64(m, SymbolParamsChallengeDuration)
	if err != nil {
		return err
	}
	p.Parties = parties
	copy(p.Nonce[:], nonce)
	p.ChallengeDuration = challengeDuration
	return nil
}

func (p Params) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(p, e)
}

func (p *Params) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, p.FromScVal(v)
}

func (p Params) MarshalBinary() ([]byte, error) {
	return marshalScVal(p)
}

func (p *Params) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return p.FromScVal(v)
}

func ParamsFromScVal(v xdr.ScVal) (Params, error) {
	var p Params
	err := (&p).FromScVal(v)
	return p, err
}

// MakeNonce converts a go-perun nonce into its fixed-width wire form.
func MakeNonce(nonce channel.Nonce) ([NonceLength]byte, error) {
	var n [NonceLength]byte
	if nonce.Sign() < 0 || nonce.BitLen() > NonceLength*8 {
		return n, errors.New("nonce out of range")
	}
	nonce.FillBytes(n[:])
	return n, nil
}

// ToNonce converts a wire nonce into a go-perun nonce.
func ToNonce(nonce [NonceLength]byte) channel.Nonce {
	return channel.NonceFromBytes(nonce[:])
}
