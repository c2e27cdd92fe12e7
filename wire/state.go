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
	"errors"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"
	"perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/wire/scval"
)

const ChannelIDLength = 32

const (
	SymbolStateChannelID xdr.ScSymbol = "channel_id"
	SymbolStateBalances  xdr.ScSymbol = "balances"
	SymbolStateVersion   xdr.ScSymbol = "version"
	SymbolStateFinalized xdr.ScSymbol = "finalized"
)

// State is an off-chain channel state as registered on the ledger.
type State struct {
	ChannelID channel.ID
	Balances  Balances
	Version   uint64
	Finalized bool
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Balances = s.Balances.Clone()
	return s
}

func (s State) ToScVal() (xdr.ScVal, error) {
	channelID, err := scval.WrapScBytes(s.ChannelID[:])
	if err != nil {
		return xdr.ScVal{}, err
	}
	balances, err := s.Balances.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	version, err := scval.WrapUint64(xdr.Uint64(s.Version))
	if err != nil {
		return xdr.ScVal{}, err
	}
	finalized, err := scval.WrapBool(s.Finalized)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolStateChannelID,
			SymbolStateBalances,
			SymbolStateVersion,
			SymbolStateFinalized,
		},
		[]xdr.ScVal{channelID, balances, version, finalized},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (s *State) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 4, "State") //nolint:gomnd
	if err != nil {
		return err
	}
	channelID, err := getBytes(m, SymbolStateChannelID)
	if err != nil {
		return err
	}
	if len(channelID) != ChannelIDLength {
		return errors.New("invalid channel id length")
	}
	balancesVal, err := GetScMapValueFromSymbol(SymbolStateBalances, m)
	if err != nil {
		return err
	}
	balances, err := BalancesFromScVal(balancesVal)
	if err != nil {
		return err
	}
	version, err := getUint64(m, SymbolStateVersion)
	if err != nil {
		return err
	}
	finalized, err := getBool(m, SymbolStateFinalized)
	if err != nil {
		return err
	}
	copy(s.ChannelID[:], channelID)
	s.Balances = balances
	s.Version = version
	s.Finalized = finalized
	return nil
}

func (s State) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(s, e)
}

func (s *State) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, s.FromScVal(v)
}

func (s State) MarshalBinary() ([]byte, error) {
	return marshalScVal(s)
}

func (s *State) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return s.FromScVal(v)
}

func StateFromScVal(v xdr.ScVal) (State, error) {
	var s State
	err := (&s).FromScVal(v)
	return s, err
}
