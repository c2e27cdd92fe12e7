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
	"fmt"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

// Balances holds one amount per participant, index-aligned with the channel's parties.
type Balances []Amount

// MakeBalances returns n zero balances.
func MakeBalances(n int) Balances {
	return make(Balances, n)
}

// Sum returns the total of all balances.
func (b Balances) Sum() (Amount, error) {
	return SumAmounts(b...)
}

// Equal reports whether b and c hold the same amounts in the same order.
func (b Balances) Equal(c Balances) bool {
	if len(b) != len(c) {
		return false
	}
	for i := range b {
		if !b[i].Equal(c[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of b.
func (b Balances) Clone() Balances {
	return append(Balances{}, b...)
}

// ToScVal encodes Balances as a vector of u128.
func (b Balances) ToScVal() (xdr.ScVal, error) {
	vec := make(xdr.ScVec, 0, len(b))
	for _, a := range b {
		v, err := a.ToScVal()
		if err != nil {
			return xdr.ScVal{}, err
		}
		vec = append(vec, v)
	}
	return scval.WrapVec(vec)
}

// FromScVal decodes Balances from a vector of u128.
func (b *Balances) FromScVal(v xdr.ScVal) error {
	vec, ok := v.GetVec()
	if !ok || vec == nil {
		return errors.New("expected vec decoding Balances")
	}
	bals := make(Balances, len(*vec))
	for i, e := range *vec {
		if err := bals[i].FromScVal(e); err != nil {
			return fmt.Errorf("balance %d: %w", i, err)
		}
	}
	*b = bals
	return nil
}

// BalancesFromScVal decodes a Balances from an xdr.ScVal.
func BalancesFromScVal(v xdr.ScVal) (Balances, error) {
	var b Balances
	err := (&b).FromScVal(v)
	return b, err
}

// EncodeTo encodes the Balances to an xdr.Encoder.
func (b Balances) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(b, e)
}

// DecodeFrom decodes the Balances from an xdr.Decoder.
func (b *Balances) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, n, err := decodeScVal(d)
	if err != nil {
		return n, err
	}
	return n, b.FromScVal(v)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b Balances) MarshalBinary() ([]byte, error) {
	return marshalScVal(b)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Balances) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return b.FromScVal(v)
}
