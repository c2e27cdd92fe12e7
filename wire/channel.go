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

	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	SymbolChannelParams  xdr.ScSymbol = "params"
	SymbolChannelState   xdr.ScSymbol = "state"
	SymbolChannelControl xdr.ScSymbol = "control"
)

var ErrBalancesLength = errors.New("balances must hold one entry per party")

// Channel is the data payload of a channel-state record.
type Channel struct {
	Params  Params
	State   State
	Control Control
}

// MakeChannel creates a new Channel.
func MakeChannel(p Params, s State, c Control) Channel {
	return Channel{
		Params:  p,
		State:   s,
		Control: c,
	}
}

// Valid checks that state balances and funding are index-aligned with the parties.
func (c Channel) Valid() error {
	if err := c.Params.Valid(); err != nil {
		return err
	}
	n := c.Params.NumParts()
	if len(c.State.Balances) != n || len(c.Control.Funding) != n {
		return ErrBalancesLength
	}
	return nil
}

// FullyFunded reports whether every party has funded its share of the current state.
func (c Channel) FullyFunded() bool {
	return c.Control.Funding.Equal(c.State.Balances)
}

// Clone returns a deep copy of c. Params are shared.
func (c Channel) Clone() Channel {
	c.State = c.State.Clone()
	c.Control = c.Control.Clone()
	return c
}

// ToScVal converts a Channel to an xdr.ScVal.
func (c Channel) ToScVal() (xdr.ScVal, error) {
	params, err := c.Params.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	state, err := c.State.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	control, err := c.Control.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolChannelParams,
			SymbolChannelState,
			SymbolChannelControl,
		},
		[]xdr.ScVal{params, state, control},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

// FromScVal converts an xdr.ScVal to a Channel. Channels that are not Valid are rejected.
func (c *Channel) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 3, "Channel") //nolint:gomnd
	if err != nil {
		return err
	}
	paramsVal, err := GetScMapValueFromSymbol(SymbolChannelParams, m)
	if err != nil {
		return err
	}
	params, err := ParamsFromScVal(paramsVal)
	if err != nil {
		return err
	}
	stateVal, err := GetScMapValueFromSymbol(SymbolChannelState, m)
	if err != nil {
		return err
	}
	state, err := StateFromScVal(stateVal)
	if err != nil {
		return err
	}
	controlVal, err := GetScMapValueFromSymbol(SymbolChannelControl, m)
	if err != nil {
		return err
	}
	control, err := ControlFromScVal(controlVal)
	if err != nil {
		return err
	}
	ch := Channel{Params: params, State: state, Control: control}
	if err := ch.Valid(); err != nil {
		return err
	}
	*c = ch
	return nil
}

// EncodeTo encodes a Channel to an xdr.Encoder.
func (c Channel) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(c, e)
}

// DecodeFrom decodes a Channel from an xdr.Decoder.
func (c *Channel) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, c.FromScVal(v)
}

// MarshalBinary encodes a Channel to a binary format.
func (c Channel) MarshalBinary() ([]byte, error) {
	return marshalScVal(c)
}

// UnmarshalBinary decodes a Channel from a binary format.
func (c *Channel) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return c.FromScVal(v)
}

// ChannelFromScVal converts an xdr.ScVal to a Channel.
func ChannelFromScVal(v xdr.ScVal) (Channel, error) {
	var c Channel
	err := (&c).FromScVal(v)
	return c, err
}
