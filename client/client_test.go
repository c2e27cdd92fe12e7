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

package client_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	pchannel "perun.network/go-perun/channel"
	plogrus "perun.network/go-perun/log/logrus"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-utxo-backend/channel"
	ctest "perun.network/perun-utxo-backend/channel/test"
	"perun.network/perun-utxo-backend/client"
	"perun.network/perun-utxo-backend/event"
	"perun.network/perun-utxo-backend/ledger"
	ttest "perun.network/perun-utxo-backend/transaction/test"
	"perun.network/perun-utxo-backend/wire"
)

func TestMain(m *testing.M) {
	plogrus.Set(logrus.WarnLevel, &logrus.TextFormatter{})
	os.Exit(m.Run())
}

func newClients(s *ttest.Setup) []*client.Client {
	clients := make([]*client.Client, len(s.Accounts))
	for i, acc := range s.Accounts {
		clients[i] = client.New(s.Ledger, s.Builder, acc)
	}
	return clients
}

func channelID(t *testing.T, s *ttest.Setup) pchannel.ID {
	t.Helper()
	params, err := channel.MakeParams(s.Agreement, s.Env.PaymentLock.CodeHash, s.Env.MinPaymentCapacity,
		s.Nonce, ctest.DefaultChallengeDuration)
	require.NoError(t, err)
	id, err := channel.CalcID(params)
	require.NoError(t, err)
	return id
}

func TestClient_OpenFundDisputeClose(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	alice, bob := newClients(s)[0], newClients(s)[1]
	ctx := context.Background()
	id := channelID(t, s)

	_, err := bob.GetChannelInfo(ctx, id)
	require.ErrorIs(t, err, client.ErrChannelNotFound)

	open, err := alice.Open(ctx, s.OpenArgs(0, 400))
	require.NoError(t, err)
	require.Equal(t, id, open.Channel.State.ChannelID)

	info, err := bob.GetChannelInfo(ctx, id)
	require.NoError(t, err)
	require.Equal(t, open.ChannelCell, info.OutPoint)
	require.False(t, info.Channel.Control.Funded)

	_, err = bob.Fund(ctx, id, 1, s.Funds(1, 300), 300)
	require.NoError(t, err)
	info, err = alice.GetChannelInfo(ctx, id)
	require.NoError(t, err)
	require.True(t, info.Channel.Control.Funded)

	funds, err := alice.GetFunds(ctx, id)
	require.NoError(t, err)
	require.Len(t, funds, 2)
	total, err := wire.SumAmounts(funds[0].Amount, funds[1].Amount)
	require.NoError(t, err)
	require.True(t, total.Equal(wire.NewAmount(500)))

	state := info.Channel.State.Clone()
	state.Version = 7
	state.Balances = wire.Balances{wire.NewAmount(120), wire.NewAmount(380)}
	sigs := s.SignState(state)
	require.NoError(t, bob.Dispute(ctx, id, state, sigs, uint64(time.Now().Unix())))

	info, err = alice.GetChannelInfo(ctx, id)
	require.NoError(t, err)
	require.True(t, info.Channel.Control.Disputed)
	require.Equal(t, state, info.Channel.State)

	require.NoError(t, alice.Close(ctx, id, state, sigs, s.Signers()))
	_, err = alice.GetChannelInfo(ctx, id)
	require.ErrorIs(t, err, client.ErrChannelNotFound)

	payouts, err := alice.GetFunds(ctx, id)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	got := []uint64{payouts[0].Amount.Lo(), payouts[1].Amount.Lo()}
	require.ElementsMatch(t, []uint64{120, 380}, got)
}

func TestClient_OpenAbort(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	clients := newClients(s)
	ctx := context.Background()

	open, err := clients[0].Open(ctx, s.OpenArgs(0, 400))
	require.NoError(t, err)
	id := open.Channel.State.ChannelID

	require.Error(t, clients[1].Abort(ctx, id, 0), "bob cannot sign for alice")
	require.NoError(t, clients[1].Abort(ctx, id, 1))

	_, err = clients[0].GetChannelInfo(ctx, id)
	require.ErrorIs(t, err, client.ErrChannelNotFound)
	reclaim, err := clients[0].GetFunds(ctx, id)
	require.NoError(t, err)
	require.Len(t, reclaim, 1)
	require.True(t, reclaim[0].Amount.Equal(wire.NewAmount(300)))

	require.ErrorIs(t, clients[0].Abort(ctx, id, 0), client.ErrChannelNotFound)
}

func newFunder(c *client.Client, iters int) *client.Funder {
	f := client.NewFunder(c)
	f.SetPollingInterval(5 * time.Millisecond)
	f.SetMaxIters(iters)
	return f
}

func TestFunder(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	clients := newClients(s)
	id := channelID(t, s)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	openArgs := s.OpenArgs(0, 400)
	reqs := []client.FundingReq{
		{Open: &openArgs, Index: 0},
		{ChannelID: id, Index: 1, MyFunds: s.Funds(1, 300), MyAvailableFunds: 300},
	}
	errs := make(chan error, len(reqs))
	for i, req := range reqs {
		f := newFunder(clients[i], 200)
		go func(req client.FundingReq) { errs <- f.Fund(ctx, req) }(req)
	}
	for range reqs {
		require.NoError(t, <-errs)
	}

	info, err := clients[0].GetChannelInfo(ctx, id)
	require.NoError(t, err)
	require.True(t, info.Channel.Control.Funded)
}

func TestFunder_Timeout(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	clients := newClients(s)
	id := channelID(t, s)

	openArgs := s.OpenArgs(0, 400)
	err := newFunder(clients[0], 3).Fund(context.Background(), client.FundingReq{Open: &openArgs, Index: 0})
	require.ErrorIs(t, err, client.ErrFundingTimeout)

	_, err = clients[0].GetChannelInfo(context.Background(), id)
	require.ErrorIs(t, err, client.ErrChannelNotFound)
	reclaim, err := clients[0].GetFunds(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, reclaim, 1)

	// A party waiting for a channel that never opens gives up as well.
	err = newFunder(clients[1], 2).Fund(context.Background(), client.FundingReq{
		ChannelID: pchannel.ID{1}, Index: 1, MyFunds: s.Funds(1, 300), MyAvailableFunds: 300,
	})
	require.ErrorIs(t, err, client.ErrFundingTimeout)
}

func TestSubscription(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	clients := newClients(s)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	open, err := clients[0].Open(ctx, s.OpenArgs(0, 400))
	require.NoError(t, err)
	id := open.Channel.State.ChannelID

	sub, err := clients[1].Subscribe(ctx, id, 5*time.Millisecond)
	require.NoError(t, err)
	defer sub.Close()

	_, err = clients[1].Fund(ctx, id, 1, s.Funds(1, 300), 300)
	require.NoError(t, err)
	state := open.Channel.State.Clone()
	state.Version = 1
	state.Finalized = true
	sigs := s.SignState(state)
	require.NoError(t, clients[0].Close(ctx, id, state, sigs, s.Signers()))

	ev := sub.Next()
	require.NotNil(t, ev)
	typ, err := ev.GetType()
	require.NoError(t, err)
	require.Equal(t, event.EventTypeFundedChannel, typ)

	ev = sub.Next()
	require.NotNil(t, ev)
	require.NoError(t, event.AssertCloseEvent(ev))
	require.Equal(t, id, ev.GetID())

	require.Nil(t, sub.Next())
	require.NoError(t, sub.Err())
	require.NoError(t, sub.Close())
}

func TestClient_MalformedChannelRecord(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	alice := newClients(s)[0]
	ctx := context.Background()

	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)
	bad := open.Channel.Clone()
	bad.Control.Funding = bad.Control.Funding[:1]
	data, err := bad.MarshalBinary()
	require.NoError(t, err)
	id := bad.State.ChannelID
	s.Ledger.AddRecord(ledger.Record{Capacity: ttest.DefaultTokenCapacity, Lock: s.Env.ChannelLockFor(id)}, data)

	_, err = alice.GetChannelInfo(ctx, id)
	require.ErrorIs(t, err, event.ErrEventDecode)
	require.ErrorContains(t, err, wire.ErrBalancesLength.Error())
	_, err = alice.Fund(ctx, id, 1, s.Funds(1, 300), 300)
	require.ErrorIs(t, err, event.ErrEventDecode)
}
