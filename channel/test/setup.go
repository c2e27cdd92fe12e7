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

package test

import (
	"math/rand"

	"perun.network/perun-utxo-backend/channel"
	"perun.network/perun-utxo-backend/wallet"
	wtest "perun.network/perun-utxo-backend/wallet/test"
	"perun.network/perun-utxo-backend/wire"
)

// DefaultChallengeDuration is the challenge duration of test channels in seconds.
const DefaultChallengeDuration = 60

// NewAgreement creates one random account per capacity and an agreement in which account i
// commits caps[i].
func NewAgreement(rng *rand.Rand, caps ...uint64) ([]*wallet.Account, *channel.FundingAgreement) {
	accs := wtest.NewRandomAccounts(rng, len(caps))
	commitments := make([]channel.Commitment, len(caps))
	for i, c := range caps {
		commitments[i] = channel.Commitment{PubKey: accs[i].PublicKey(), Capacity: c}
	}
	agreement, err := channel.NewFundingAgreementWithCapacities(commitments...)
	if err != nil {
		panic(err)
	}
	return accs, agreement
}

// NewRandomNonce returns a random channel nonce.
func NewRandomNonce(rng *rand.Rand) [wire.NonceLength]byte {
	var nonce [wire.NonceLength]byte
	rng.Read(nonce[:])
	return nonce
}
