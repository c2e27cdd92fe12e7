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

	"perun.network/go-perun/wallet"
	"perun.network/go-perun/wallet/test"

	uwallet "perun.network/perun-utxo-backend/wallet"
)

// Randomizer creates random participants and wallets of the utxo backend.
type Randomizer struct{}

// NewRandomAddress implements test.Randomizer
func (Randomizer) NewRandomAddress(rng *rand.Rand) wallet.Address {
	return NewRandomAccount(rng).Address()
}

// NewWallet implements test.Randomizer
func (Randomizer) NewWallet() test.Wallet {
	return uwallet.NewEphemeralWallet()
}

// RandomWallet implements test.Randomizer
func (r Randomizer) RandomWallet() test.Wallet {
	return r.NewWallet()
}

var _ test.Randomizer = Randomizer{}

// NewRandomAccount creates an account from rng. It panics on failure.
func NewRandomAccount(rng *rand.Rand) *uwallet.Account {
	acc, err := uwallet.NewRandomAccount(rng)
	if err != nil {
		panic(err)
	}
	return acc
}

// NewRandomAccounts creates n accounts from rng.
func NewRandomAccounts(rng *rand.Rand, n int) []*uwallet.Account {
	accs := make([]*uwallet.Account, n)
	for i := range accs {
		accs[i] = NewRandomAccount(rng)
	}
	return accs
}
