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
	"context"
	"math/rand"

	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/channel"
	ctest "perun.network/perun-utxo-backend/channel/test"
	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/transaction"
	"perun.network/perun-utxo-backend/wallet"
	"perun.network/perun-utxo-backend/wire"
)

// DefaultTokenCapacity is the capacity of channel tokens. It covers the channel-state record of
// small channels.
const DefaultTokenCapacity = 10_000

// Setup is a ledger with the channel scripts deployed and the accounts of a funding agreement.
type Setup struct {
	Ledger    *ledger.Ledger
	Env       transaction.Env
	Builder   *transaction.Builder
	Accounts  []*wallet.Account
	Agreement *channel.FundingAgreement
	Nonce     [wire.NonceLength]byte
}

// NewSetup deploys the channel scripts on a fresh ledger and creates an agreement in which
// account i commits caps[i].
func NewSetup(rng *rand.Rand, caps ...uint64) *Setup {
	l := ledger.NewLedger()
	env := transaction.Deploy(l, wallet.Verifier{})
	builder, err := transaction.NewBuilder(env)
	if err != nil {
		panic(err)
	}
	accs, agreement := ctest.NewAgreement(rng, caps...)
	return &Setup{
		Ledger:    l,
		Env:       env,
		Builder:   builder,
		Accounts:  accs,
		Agreement: agreement,
		Nonce:     ctest.NewRandomNonce(rng),
	}
}

// Participant returns the on-record participant idx.
func (s *Setup) Participant(idx uint8) wire.Participant {
	return s.Agreement.MkParticipants(s.Env.PaymentLock.CodeHash, s.Env.MinPaymentCapacity)[idx]
}

// Token creates a channel token holding capacity.
func (s *Setup) Token(capacity uint64) ledger.OutPoint {
	return s.Ledger.AddRecord(ledger.Record{Capacity: capacity, Lock: s.Env.AlwaysSuccessLock()}, nil)
}

// Funds creates a record of party idx holding capacity under its payment lock.
func (s *Setup) Funds(idx uint8, capacity uint64) ledger.OutPoint {
	return s.Ledger.AddRecord(ledger.Record{
		Capacity: capacity,
		Lock:     s.Env.PaymentLockFor(s.Participant(idx)),
	}, nil)
}

// OpenArgs returns the arguments for party idx opening the channel of s with a fresh token and a
// funds record holding available.
func (s *Setup) OpenArgs(idx uint8, available uint64) transaction.OpenArgs {
	return transaction.OpenArgs{
		Agreement:         s.Agreement,
		PartyIndex:        idx,
		Nonce:             s.Nonce,
		ChallengeDuration: ctest.DefaultChallengeDuration,
		ChannelToken:      s.Token(DefaultTokenCapacity),
		MyFunds:           s.Funds(idx, available),
		MyAvailableFunds:  available,
	}
}

// Signers returns the accounts of all parties as go-perun accounts.
func (s *Setup) Signers() []pwallet.Account {
	signers := make([]pwallet.Account, len(s.Accounts))
	for i, acc := range s.Accounts {
		signers[i] = acc
	}
	return signers
}

// SignState signs state with every account, in party order.
func (s *Setup) SignState(state wire.State) [][]byte {
	sigs := make([][]byte, len(s.Accounts))
	for i, acc := range s.Accounts {
		sig, err := channel.SignState(acc, state)
		if err != nil {
			panic(err)
		}
		sigs[i] = sig
	}
	return sigs
}

// OpenAndFund opens the channel of s as party 0 and lets every other party fund it. It returns
// the funded channel-state record and the channel's funds records.
func (s *Setup) OpenAndFund(ctx context.Context, extra uint64) (transaction.ChannelInput, []transaction.FundInput, error) {
	openArgs := s.OpenArgs(0, s.mustExpect(0)+extra)
	res, err := s.Builder.Open(openArgs)
	if err != nil {
		return transaction.ChannelInput{}, nil, err
	}
	if _, err := s.Ledger.Submit(ctx, res.Tx); err != nil {
		return transaction.ChannelInput{}, nil, err
	}
	chIn, funds := res.ChannelInput(), res.FundInputs()
	for i := 1; i < s.Agreement.NumParts(); i++ {
		idx := uint8(i)
		available := s.mustExpect(idx) + extra
		fres, err := s.Builder.Fund(transaction.FundArgs{
			Channel:          chIn,
			PartyIndex:       idx,
			MyFunds:          s.Funds(idx, available),
			MyAvailableFunds: available,
		})
		if err != nil {
			return transaction.ChannelInput{}, nil, err
		}
		if _, err := s.Ledger.Submit(ctx, fres.Tx); err != nil {
			return transaction.ChannelInput{}, nil, err
		}
		chIn = fres.ChannelInput()
		funds = append(funds, fres.FundInputs()...)
	}
	return chIn, funds, nil
}

func (s *Setup) mustExpect(idx uint8) uint64 {
	c, err := s.Agreement.ExpectedFundingFor(idx)
	if err != nil {
		panic(err)
	}
	return c
}
