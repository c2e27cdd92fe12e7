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

func amounts(xs ...uint64) wire.Balances {
	bals := make(wire.Balances, len(xs))
	for i, x := range xs {
		bals[i] = wire.NewAmount(x)
	}
	return bals
}

func TestFundingAgreement_MkBalances(t *testing.T) {
	rng := pkgtest.Prng(t)
	_, agreement := chtest.NewAgreement(rng, 100, 200, 300)

	tests := []struct {
		name   string
		funded []uint8
		want   wire.Balances
	}{
		{"nobody", nil, amounts(0, 0, 0)},
		{"single", []uint8{1}, amounts(0, 200, 0)},
		{"everybody", []uint8{0, 1, 2}, amounts(100, 200, 300)},
		{"unordered", []uint8{2, 0}, amounts(100, 0, 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bals, err := agreement.MkBalances(tt.funded...)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(bals), "want %v, got %v", tt.want, bals)
		})
	}

	initial, err := agreement.InitialBalances()
	require.NoError(t, err)
	require.True(t, amounts(100, 200, 300).Equal(initial))

	total, err := agreement.Total()
	require.NoError(t, err)
	require.True(t, wire.NewAmount(600).Equal(total))
}

func TestFundingAgreement_ExpectedFundingFor(t *testing.T) {
	rng := pkgtest.Prng(t)
	_, agreement := chtest.NewAgreement(rng, 100, 200, 300)
	require.Equal(t, 3, agreement.NumParts())

	for i, want := range []uint64{100, 200, 300} {
		got, err := agreement.ExpectedFundingFor(uint8(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := agreement.ExpectedFundingFor(3)
	require.ErrorIs(t, err, channel.ErrUnknownIndex)
}

func TestFundingAgreement_UnsupportedAsset(t *testing.T) {
	rng := pkgtest.Prng(t)
	accs, _ := chtest.NewAgreement(rng, 0, 0)
	agreement, err := channel.NewFundingAgreement(
		channel.FundingAgreementEntry{
			Index:   0,
			PubKey:  accs[0].PublicKey(),
			Amounts: []channel.AssetAmount{channel.NewCapacityAmount(10)},
		},
		channel.FundingAgreementEntry{
			Index:   1,
			PubKey:  accs[1].PublicKey(),
			Amounts: []channel.AssetAmount{{Asset: 1, Amount: 20}},
		},
	)
	require.NoError(t, err)

	_, err = agreement.ExpectedFundingFor(1)
	require.ErrorIs(t, err, channel.ErrUnsupportedAsset)
	_, err = agreement.MkBalances(1)
	require.ErrorIs(t, err, channel.ErrUnsupportedAsset)

	bals, err := agreement.MkBalances(0)
	require.NoError(t, err, "unfunded entries are not looked up")
	require.True(t, amounts(10, 0).Equal(bals))
}

func TestNewFundingAgreement_Indices(t *testing.T) {
	rng := pkgtest.Prng(t)
	accs, _ := chtest.NewAgreement(rng, 0)
	_, err := channel.NewFundingAgreement(channel.FundingAgreementEntry{Index: 1, PubKey: accs[0].PublicKey()})
	require.ErrorIs(t, err, channel.ErrNonDenseIndex)

	commitments := make([]channel.Commitment, wire.MaxParties+1)
	for i := range commitments {
		commitments[i] = channel.Commitment{PubKey: accs[0].PublicKey()}
	}
	_, err = channel.NewFundingAgreementWithCapacities(commitments...)
	require.ErrorIs(t, err, channel.ErrTooManyParticipants)
}

func TestFundingAgreement_MkParticipants(t *testing.T) {
	rng := pkgtest.Prng(t)
	accs, agreement := chtest.NewAgreement(rng, 100, 200)
	lockHash := [wire.HashLength]byte{1, 2, 3}

	parts := agreement.MkParticipants(lockHash, 61)
	require.Len(t, parts, 2)
	for i, p := range parts {
		require.Equal(t, lockHash, p.PaymentLockHash)
		require.Equal(t, uint64(61), p.PaymentMinCapacity)
		require.Equal(t, []byte{uint8(i)}, p.PaymentArgs)
		require.Empty(t, p.UnlockArgs)
		require.Equal(t, accs[i].PubKeyBytes(), p.PubKey)
		require.Len(t, p.PubKey, wire.PubKeyLength)
	}
	require.False(t, parts[0].SamePayout(parts[1]))
}
