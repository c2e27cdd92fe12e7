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

package channel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-utxo-backend/channel"
	chtest "perun.network/perun-utxo-backend/channel/test"
	"perun.network/perun-utxo-backend/wire"
)

func TestCalcID(t *testing.T) {
	rng := pkgtest.Prng(t)
	_, agreement := chtest.NewAgreement(rng, 100, 200)
	lockHash := [wire.HashLength]byte{7}

	params, err := channel.MakeParams(agreement, lockHash, 61, chtest.NewRandomNonce(rng), chtest.DefaultChallengeDuration)
	require.NoError(t, err)
	id1, err := channel.CalcID(params)
	require.NoError(t, err)
	id2, err := channel.CalcID(params)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	params.Nonce = chtest.NewRandomNonce(rng)
	id3, err := channel.CalcID(params)
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)
}

func TestSignState(t *testing.T) {
	rng := pkgtest.Prng(t)
	accs, agreement := chtest.NewAgreement(rng, 100, 200)
	params, err := channel.MakeParams(agreement, [wire.HashLength]byte{}, 61, chtest.NewRandomNonce(rng), chtest.DefaultChallengeDuration)
	require.NoError(t, err)
	ch, err := channel.InitialChannel(params, agreement, 0)
	require.NoError(t, err)

	sigs := make([][]byte, len(accs))
	for i, acc := range accs {
		sigs[i], err = channel.SignState(acc, ch.State)
		require.NoError(t, err)
		ok, err := channel.VerifyState(acc.PubKeyBytes(), ch.State, sigs[i])
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, channel.VerifyStateSigs(params, ch.State, sigs))
	require.Error(t, channel.VerifyStateSigs(params, ch.State, sigs[:1]))
	require.Error(t, channel.VerifyStateSigs(params, ch.State, [][]byte{sigs[1], sigs[0]}))

	next := ch.State.Clone()
	next.Version++
	ok, err := channel.VerifyState(accs[0].PubKeyBytes(), next, sigs[0])
	require.NoError(t, err)
	require.False(t, ok, "signature of another version")
}

func TestInitialChannel(t *testing.T) {
	rng := pkgtest.Prng(t)
	_, agreement := chtest.NewAgreement(rng, 100, 200, 300)
	params, err := channel.MakeParams(agreement, [wire.HashLength]byte{}, 61, chtest.NewRandomNonce(rng), chtest.DefaultChallengeDuration)
	require.NoError(t, err)

	ch, err := channel.InitialChannel(params, agreement, 1)
	require.NoError(t, err)
	require.NoError(t, ch.Valid())
	id, err := channel.CalcID(params)
	require.NoError(t, err)
	require.Equal(t, id, ch.State.ChannelID)
	require.Zero(t, ch.State.Version)
	require.True(t, amounts(100, 200, 300).Equal(ch.State.Balances))
	require.True(t, amounts(0, 200, 0).Equal(ch.Control.Funding))
	require.False(t, ch.Control.Funded)

	_, err = channel.InitialChannel(params, agreement, 3)
	require.ErrorIs(t, err, channel.ErrUnknownIndex)

	// A channel where nobody but the opener commits anything is funded right away.
	_, solo := chtest.NewAgreement(rng, 100, 0)
	soloParams, err := channel.MakeParams(solo, [wire.HashLength]byte{}, 61, chtest.NewRandomNonce(rng), chtest.DefaultChallengeDuration)
	require.NoError(t, err)
	ch, err = channel.InitialChannel(soloParams, solo, 0)
	require.NoError(t, err)
	require.True(t, ch.Control.Funded)
}
