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
	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	SymbolControlFunding   xdr.ScSymbol = "funding"
	SymbolControlFunded    xdr.ScSymbol = "funded"
	SymbolControlDisputed  xdr.ScSymbol = "disputed"
	SymbolControlTimestamp xdr.ScSymbol = "timestamp"
)

// Control is the on-ledger bookkeeping of a channel: how much each party has funded so far and
// whether the channel is funded or disputed.
type Control struct {
	Funding   Balances
	Funded    bool
	Disputed  bool
	Timestamp uint64
}

// Clone returns a deep copy of c.
func (c Control) Clone() Control {
	c.Funding = c.Funding.Clone()
	return c
}

func (c Control) ToScVal() (xdr.ScVal, error) {
	funding, err := c.Funding.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	funded, err := scval.WrapBool(c.Funded)
	if err != nil {
		return xdr.ScVal{}, err
	}
	disputed, err := scval.WrapBool(c.Disputed)
	if err != nil {
		return xdr.ScVal{}, err
	}
	timestamp, err := scval.WrapUint64(xdr.Uint64(c.Timestamp))
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolControlFunding,
			SymbolControlFunded,
			SymbolControlDisputed,
			SymbolControlTimestamp,
		},
		[]xdr.ScVal{funding, funded, disputed, timestamp},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (c *Control) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 4, "Control") //nolint:gomnd
	if err != nil {
		return err
	}
	fundingVal, err := GetScMapValueFromSymbol(SymbolControlFunding, m)
	if err != nil {
		return err
	}
	funding, err := BalancesFromScVal(fundingVal)
	if err != nil {
		return err
	}
	funded, err := getBool(m, SymbolControlFunded)
	if err != nil {
		return err
	}
	disputed, err := getBool(m, SymbolControlDisputed)
	if err != nil {
		return err
	}
	timestamp, err := getUint64(m, SymbolControlTimestamp)
	if err != nil {
		return err
	}
	c.Funding = funding
	c.Funded = funded
	c.Disputed = disputed
	c.Timestamp = timestamp
	return nil
}

func (c Control) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(c, e)
}

func (c *Control) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, c.FromScVal(v)
}

func (c Control) MarshalBinary() ([]byte, error) {
	return marshalScVal(c)
}

func (c *Control) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return c.FromScVal(v)
}

func ControlFromScVal(v xdr.ScVal) (Control, error) {
	var c Control
	err := (&c).FromScVal(v)
	return c, err
}
