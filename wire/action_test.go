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
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-utxo-backend/wire"
	"perun.network/perun-utxo-backend/wire/scval"
)

func TestAction(t *testing.T) {
	rng := pkgtest.Prng(t)
	sig := func() []byte {
		s := make([]byte, 64)
		rng.Read(s)
		return s
	}
	var id [32]byte
	rng.Read(id[:])

	actions := []wire.Action{
		wire.OpenAction{},
		wire.FundAction{Index: 1},
		wire.AbortAction{Index: 2, Sig: sig()},
		wire.DisputeAction{Sigs: [][]byte{sig(), sig()}},
		wire.CloseAction{
			State: wire.State{
				ChannelID: id,
				Balances:  wire.Balances{wire.NewAmount(100), wire.NewAmount(200)},
				Version:   3,
				Finalized: true,
			},
			Sigs: [][]byte{sig(), sig()},
		},
	}
	for _, a := range actions {
		enc, err := wire.EncodeAction(a)
		require.NoError(t, err)
		dec, err := wire.DecodeAction(enc)
		require.NoError(t, err)
		require.Equal(t, a.Tag(), dec.Tag())
		require.Equal(t, a, dec, a.Tag().String())
	}
}

func TestDecodeAction_Malformed(t *testing.T) {
	unknown := scval.MustWrapVec(xdr.ScVec{scval.MustWrapScSymbol("settle"), scval.MustWrapVoid()})
	b, err := unknown.MarshalBinary()
	require.NoError(t, err)
	_, err = wire.DecodeAction(b)
	require.ErrorIs(t, err, wire.ErrUnknownAction)

	_, err = wire.DecodeAction([]byte{1, 2, 3})
	require.Error(t, err)

	enc, err := wire.EncodeAction(wire.FundAction{Index: 0})
	require.NoError(t, err)
	_, err = wire.DecodeAction(append(enc, 0, 0, 0, 0))
	require.Error(t, err)
}

func TestWitnessArgs(t *testing.T) {
	w, err := wire.NewLockWitness(wire.FundAction{Index: 4})
	require.NoError(t, err)
	require.Nil(t, w.InputType)
	require.Nil(t, w.OutputType)

	enc, err := w.MarshalBinary()
	require.NoError(t, err)
	var dec wire.WitnessArgs
	require.NoError(t, dec.UnmarshalBinary(enc))
	require.Equal(t, w, dec)

	a, err := wire.DecodeAction(dec.Lock)
	require.NoError(t, err)
	require.Equal(t, wire.FundAction{Index: 4}, a)

	w, err = wire.NewOutputTypeWitness(wire.OpenAction{})
	require.NoError(t, err)
	enc, err = w.MarshalBinary()
	require.NoError(t, err)
	dec = wire.WitnessArgs{}
	require.NoError(t, dec.UnmarshalBinary(enc))
	require.Nil(t, dec.Lock)
	require.Nil(t, dec.InputType)
	require.NotEmpty(t, dec.OutputType)
}
