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
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

// AmountLength is the length of an encoded Amount.
const AmountLength = 16

var (
	// ErrAmountEncoding is returned when decoding a payload that is not exactly AmountLength bytes.
	ErrAmountEncoding = errors.New("amount must be encoded as 16 little-endian bytes")
	// ErrAmountOverflow is returned when an amount does not fit into 128 bits.
	ErrAmountOverflow = errors.New("amount exceeds 128 bits")
)

// Amount is an unsigned 128-bit amount. The zero value is 0.
type Amount struct {
	v uint256.Int
}

// NewAmount returns x as an Amount.
func NewAmount(x uint64) Amount {
	var a Amount
	a.v.SetUint64(x)
	return a
}

// AmountFromParts assembles an Amount from its high and low 64-bit words.
func AmountFromParts(hi, lo uint64) Amount {
	var a Amount
	a.v[0] = lo
	a.v[1] = hi
	return a
}

// MaxAmount returns 2^128-1.
func MaxAmount() Amount {
	return AmountFromParts(^uint64(0), ^uint64(0))
}

// AmountFromBig converts b to an Amount. It fails for negative values and values wider than 128 bits.
func AmountFromBig(b *big.Int) (Amount, error) {
	if b.Sign() < 0 {
		return Amount{}, errors.New("expected non-negative amount")
	}
	v, overflow := uint256.FromBig(b)
	if overflow || v.BitLen() > 128 { //nolint:gomnd
		return Amount{}, ErrAmountOverflow
	}
	return Amount{v: *v}, nil
}

// Hi returns the upper 64 bits.
func (a Amount) Hi() uint64 { return a.v[1] }

// Lo returns the lower 64 bits.
func (a Amount) Lo() uint64 { return a.v[0] }

// Big returns a as a big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// IsZero reports whether a is 0.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Equal reports whether a and b are equal.
func (a Amount) Equal(b Amount) bool {
	return a.v.Eq(&b.v)
}

// Add returns a+b. Overflowing 128 bits is an error, the sum never wraps.
func (a Amount) Add(b Amount) (Amount, error) {
	var sum Amount
	if _, overflow := sum.v.AddOverflow(&a.v, &b.v); overflow || sum.v.BitLen() > 128 { //nolint:gomnd
		return Amount{}, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-b and fails if b is larger than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, errors.New("amount underflow")
	}
	var diff Amount
	diff.v.Sub(&a.v, &b.v)
	return diff, nil
}

// String returns the decimal representation of a.
func (a Amount) String() string {
	return a.Big().String()
}

// Encode returns the 16 byte little-endian encoding of a.
func (a Amount) Encode() [AmountLength]byte {
	var b [AmountLength]byte
	binary.LittleEndian.PutUint64(b[:8], a.Lo())
	binary.LittleEndian.PutUint64(b[8:], a.Hi())
	return b
}

// EncodeAmount returns the record payload for a.
func EncodeAmount(a Amount) []byte {
	b := a.Encode()
	return b[:]
}

// DecodeAmount decodes a record payload. Any length other than AmountLength is rejected.
func DecodeAmount(data []byte) (Amount, error) {
	if len(data) != AmountLength {
		return Amount{}, ErrAmountEncoding
	}
	return AmountFromParts(
		binary.LittleEndian.Uint64(data[8:]),
		binary.LittleEndian.Uint64(data[:8]),
	), nil
}

// ToScVal encodes an Amount as xdr u128.
func (a Amount) ToScVal() (xdr.ScVal, error) {
	return scval.WrapUInt128Parts(xdr.UInt128Parts{
		Hi: xdr.Uint64(a.Hi()),
		Lo: xdr.Uint64(a.Lo()),
	})
}

// FromScVal decodes an Amount from xdr u128.
func (a *Amount) FromScVal(v xdr.ScVal) error {
	parts, ok := v.GetU128()
	if !ok {
		return errors.New("expected u128 decoding Amount")
	}
	*a = AmountFromParts(uint64(parts.Hi), uint64(parts.Lo))
	return nil
}

// SumAmounts adds up amounts, failing on overflow.
func SumAmounts(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}
