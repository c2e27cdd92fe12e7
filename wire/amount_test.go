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

package wire_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-utxo-backend/wire"
)

func TestAmountCodec(t *testing.T) {
	rng := pkgtest.Prng(t)
	for i := 0; i < 32; i++ {
		a := wire.AmountFromParts(rng.Uint64(), rng.Uint64())
		enc := wire.EncodeAmount(a)
		require.Len(t, enc, wire.AmountLength)
		dec, err := wire.DecodeAmount(enc)
		require.NoError(t, err)
		require.True(t, a.Equal(dec))
	}

	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0},
		wire.EncodeAmount(wire.AmountFromParts(2, 1)))
}

func TestDecodeAmount_BadLength(t *testing.T) {
	for _, l := range []int{0, 1, 8, 15, 17, 32} {
		_, err := wire.DecodeAmount(make([]byte, l))
		require.ErrorIs(t, err, wire.ErrAmountEncoding, "length %d", l)
	}
}

func TestAmountAdd(t *testing.T) {
	sum, err := wire.NewAmount(40).Add(wire.NewAmount(2))
	require.NoError(t, err)
	require.True(t, sum.Equal(wire.NewAmount(42)))

	carry, err := wire.AmountFromParts(0, ^uint64(0)).Add(wire.NewAmount(1))
	require.NoError(t, err)
	require.True(t, carry.Equal(wire.AmountFromParts(1, 0)))

	_, err = wire.MaxAmount().Add(wire.NewAmount(1))
	require.ErrorIs(t, err, wire.ErrAmountOverflow)

	_, err = wire.SumAmounts(wire.MaxAmount(), wire.NewAmount(0), wire.NewAmount(1))
	require.ErrorIs(t, err, wire.ErrAmountOverflow)
}

func TestAmountFromBig(t *testing.T) {
	b := new(big.Int).Lsh(big.NewInt(1), 127)
	a, err := wire.AmountFromBig(b)
	require.NoError(t, err)
	require.Equal(t, 0, a.Big().Cmp(b))

	_, err = wire.AmountFromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	require.Error(t, err)
	_, err = wire.AmountFromBig(big.NewInt(-1))
	require.Error(t, err)
}
