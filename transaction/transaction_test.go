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

package transaction_test

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	pchannel "perun.network/go-perun/channel"
	plogrus "perun.network/go-perun/log/logrus"
	pwallet "perun.network/go-perun/wallet"
	pkgtest "polycry.pt/poly-go/test"

	"perun.network/perun-utxo-backend/fundslock"
	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/transaction"
	ttest "perun.network/perun-utxo-backend/transaction/test"
	wtest "perun.network/perun-utxo-backend/wallet/test"
	"perun.network/perun-utxo-backend/wire"
)

func TestMain(m *testing.M) {
	plogrus.Set(logrus.WarnLevel, &logrus.TextFormatter{})
	os.Exit(m.Run())
}

func decodeWitness(t *testing.T, raw []byte) wire.WitnessArgs {
	t.Helper()
	var w wire.WitnessArgs
	require.NoError(t, w.UnmarshalBinary(raw))
	return w
}

func TestOpen(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	args := s.OpenArgs(0, 500)

	res, err := s.Builder.Open(args)
	require.NoError(t, err)
	tx := res.Tx
	require.Equal(t, []ledger.OutPoint{args.ChannelToken, args.MyFunds}, tx.Inputs)
	require.Len(t, tx.Outputs, 3)

	id := res.Channel.State.ChannelID
	require.True(t, tx.Outputs[0].Lock.Equal(s.Env.ChannelLockFor(id)))
	require.NotNil(t, tx.Outputs[0].Type)
	require.True(t, tx.Outputs[0].Type.Equal(s.Env.ChannelTypeFor(id)))
	require.Equal(t, tx.Outputs[0].OccupiedCapacity(tx.OutputsData[0]), tx.Outputs[0].Capacity)

	require.True(t, tx.Outputs[1].Lock.Equal(s.Env.FundsLockForChannel(id)))
	require.EqualValues(t, 300, tx.Outputs[1].Capacity)
	amount, err := wire.DecodeAmount(tx.OutputsData[1])
	require.NoError(t, err)
	require.True(t, amount.Equal(wire.NewAmount(300)))

	require.True(t, tx.Outputs[2].Lock.Equal(s.Env.PaymentLockFor(s.Participant(0))))
	require.EqualValues(t, 200, tx.Outputs[2].Capacity)

	w := decodeWitness(t, tx.Witnesses[0])
	require.Nil(t, w.Lock)
	require.Nil(t, w.InputType)
	a, err := wire.DecodeAction(w.OutputType)
	require.NoError(t, err)
	require.Equal(t, wire.OpenAction{}, a)

	ch := res.Channel
	require.False(t, ch.Control.Funded)
	require.True(t, ch.Control.Funding[0].Equal(wire.NewAmount(300)))
	require.True(t, ch.Control.Funding[1].IsZero())

	h, err := s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, h, res.ChannelCell.TxHash)
	require.True(t, s.Ledger.IsLive(res.ChannelCell))
	require.Equal(t, []ledger.OutPoint{res.ChannelCell}, s.Ledger.LiveRecordsByLock(s.Env.ChannelLockFor(id)))
	require.Equal(t, res.FundsCells, s.Ledger.LiveRecordsByLock(s.Env.FundsLockForChannel(id)))
}

func TestOpen_Errors(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)

	args := s.OpenArgs(0, 299)
	_, err := s.Builder.Open(args)
	require.ErrorIs(t, err, transaction.ErrInsufficientFunds)

	// The change record must be able to exist.
	args = s.OpenArgs(0, 320)
	_, err = s.Builder.Open(args)
	require.ErrorIs(t, err, transaction.ErrInsufficientFunds)

	small := ttest.NewSetup(rng, 50, 200)
	_, err = small.Builder.Open(small.OpenArgs(0, 500))
	require.ErrorIs(t, err, transaction.ErrCommitmentTooSmall)

	args = s.OpenArgs(0, 500)
	args.PartyIndex = 2
	_, err = s.Builder.Open(args)
	require.Error(t, err)
}

func TestOpen_SingleOpening(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	args := s.OpenArgs(0, 500)

	res, err := s.Builder.Open(args)
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), res.Tx)
	require.NoError(t, err)

	again := s.OpenArgs(0, 500)
	again.ChannelToken = args.ChannelToken
	res, err = s.Builder.Open(again)
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), res.Tx)
	require.ErrorIs(t, err, ledger.ErrDeadRecord)
}

func TestFund(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), open.Tx)
	require.NoError(t, err)

	_, err = s.Builder.Fund(transaction.FundArgs{
		Channel: open.ChannelInput(), PartyIndex: 0, MyFunds: s.Funds(0, 400), MyAvailableFunds: 400,
	})
	require.ErrorIs(t, err, transaction.ErrAlreadyFunded)

	_, err = s.Builder.Fund(transaction.FundArgs{
		Channel: open.ChannelInput(), PartyIndex: 1, MyFunds: s.Funds(1, 220), MyAvailableFunds: 220,
	})
	require.ErrorIs(t, err, transaction.ErrInsufficientFunds)

	res, err := s.Builder.Fund(transaction.FundArgs{
		Channel: open.ChannelInput(), PartyIndex: 1, MyFunds: s.Funds(1, 250), MyAvailableFunds: 250,
	})
	require.NoError(t, err)
	tx := res.Tx
	require.Equal(t, open.ChannelCell, tx.Inputs[0])
	require.Len(t, tx.Outputs, 3)
	require.Equal(t, open.Tx.Outputs[0].Capacity, tx.Outputs[0].Capacity)
	require.EqualValues(t, 200, tx.Outputs[1].Capacity)
	require.EqualValues(t, 50, tx.Outputs[2].Capacity)
	require.True(t, res.Channel.Control.Funded)
	require.True(t, res.Channel.FullyFunded())

	w := decodeWitness(t, tx.Witnesses[0])
	a, err := wire.DecodeAction(w.InputType)
	require.NoError(t, err)
	require.Equal(t, wire.FundAction{Index: 1}, a)

	_, err = s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)

	_, err = s.Builder.Fund(transaction.FundArgs{
		Channel: res.ChannelInput(), PartyIndex: 1, MyFunds: s.Funds(1, 250), MyAvailableFunds: 250,
	})
	require.ErrorIs(t, err, transaction.ErrAlreadyFunded)
}

func TestAbort(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), open.Tx)
	require.NoError(t, err)
	args := transaction.AbortArgs{Channel: open.ChannelInput(), Funds: open.FundInputs(), PartyIndex: 0}

	_, err = s.Builder.Abort(args, s.Accounts[1])
	require.ErrorIs(t, err, transaction.ErrWrongSigner)

	tx, err := s.Builder.Abort(args, s.Accounts[0])
	require.NoError(t, err)
	require.Equal(t, []ledger.OutPoint{open.ChannelCell, open.FundsCells[0]}, tx.Inputs)
	require.Len(t, tx.Outputs, 1)
	id := open.Channel.State.ChannelID
	require.True(t, tx.Outputs[0].Lock.Equal(s.Env.FundsLockForChannel(id)))
	require.Equal(t, open.Tx.Outputs[0].Capacity+300, tx.Outputs[0].Capacity)
	amount, err := wire.DecodeAmount(tx.OutputsData[0])
	require.NoError(t, err)
	require.True(t, amount.Equal(wire.NewAmount(300)))
	require.Len(t, tx.Witnesses, 2)

	// A transaction changed after signing is rejected by the funds lock.
	tampered := *tx
	tampered.Outputs = []ledger.Record{tx.Outputs[0]}
	tampered.Outputs[0].Capacity--
	_, err = s.Ledger.Submit(context.Background(), &tampered)
	require.ErrorIs(t, err, ledger.ErrScriptFailed)
	require.True(t, fundslock.IsKind(err, fundslock.ErrAuthorizationFailure))

	_, err = s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)
	require.False(t, s.Ledger.IsLive(open.ChannelCell))
	require.Empty(t, s.Ledger.LiveRecordsByLock(s.Env.ChannelLockFor(id)))
}

func TestAbort_Funded(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	chIn, funds, err := s.OpenAndFund(context.Background(), 100)
	require.NoError(t, err)

	_, err = s.Builder.Abort(transaction.AbortArgs{Channel: chIn, Funds: funds, PartyIndex: 0}, s.Accounts[0])
	require.ErrorIs(t, err, transaction.ErrAlreadyFunded)
}

// controlRecord puts ch under the channel lock of channel id.
func controlRecord(t *testing.T, s *ttest.Setup, id pchannel.ID, ch wire.Channel, capacity uint64) transaction.ChannelInput {
	t.Helper()
	data, err := ch.MarshalBinary()
	require.NoError(t, err)
	op := s.Ledger.AddRecord(ledger.Record{
		Capacity: capacity,
		Lock:     s.Env.ChannelLockFor(id),
	}, data)
	return transaction.ChannelInput{OutPoint: op, Capacity: capacity, Channel: ch}
}

// liveFunds returns the live funds records of ch.
func liveFunds(t *testing.T, s *ttest.Setup, ch wire.Channel) []transaction.FundInput {
	t.Helper()
	var funds []transaction.FundInput
	for _, op := range s.Ledger.LiveRecordsByLock(s.Env.FundsLockForChannel(ch.State.ChannelID)) {
		r, data, err := s.Ledger.Record(op)
		require.NoError(t, err)
		amount, err := wire.DecodeAmount(data)
		require.NoError(t, err)
		funds = append(funds, transaction.FundInput{OutPoint: op, Capacity: r.Capacity, Amount: amount})
	}
	return funds
}

func TestAbort_ForgedControlRecord(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 3000, 2000)
	chIn, funds, err := s.OpenAndFund(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, chIn.Channel.Control.Funded)
	mallory := wtest.NewRandomAccount(rng)

	// Anybody can create a record under the channel lock. This one names mallory as party 0 and
	// marks the channel unfunded.
	forged := chIn.Channel.Clone()
	forged.Params.Parties = append([]wire.Participant(nil), chIn.Channel.Params.Parties...)
	forged.Params.Parties[0].PubKey = mallory.PubKeyBytes()
	forged.Control.Funded = false
	id := chIn.Channel.State.ChannelID
	forgedIn := controlRecord(t, s, id, forged, chIn.Capacity)

	tx, err := s.Builder.Abort(transaction.AbortArgs{Channel: forgedIn, Funds: funds, PartyIndex: 0}, mallory)
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), tx)
	require.ErrorIs(t, err, ledger.ErrScriptFailed)
	require.True(t, fundslock.IsKind(err, fundslock.ErrAuthorizationFailure))
	require.ErrorIs(t, err, fundslock.ErrForeignControlRecord)

	// Naming the id of the forged parameters does not help: that id derives another lock.
	forged.State.ChannelID, err = forged.Params.ID()
	require.NoError(t, err)
	forgedIn = controlRecord(t, s, id, forged, chIn.Capacity)
	tx, err = s.Builder.Abort(transaction.AbortArgs{Channel: forgedIn, Funds: funds, PartyIndex: 0}, mallory)
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), tx)
	require.ErrorIs(t, err, ledger.ErrScriptFailed)
	require.ErrorIs(t, err, fundslock.ErrForeignControlRecord)

	for _, f := range funds {
		require.True(t, s.Ledger.IsLive(f.OutPoint))
	}
}

func TestAbort_UncoveredReclaim(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200, 100)
	ctx := context.Background()
	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)
	_, err = s.Ledger.Submit(ctx, open.Tx)
	require.NoError(t, err)
	fund, err := s.Builder.Fund(transaction.FundArgs{
		Channel:          open.ChannelInput(),
		PartyIndex:       1,
		MyFunds:          s.Funds(1, 300),
		MyAvailableFunds: 300,
	})
	require.NoError(t, err)
	_, err = s.Ledger.Submit(ctx, fund.Tx)
	require.NoError(t, err)
	funds := append(open.FundInputs(), fund.FundInputs()...)

	tx, err := s.Builder.Abort(transaction.AbortArgs{Channel: fund.ChannelInput(), Funds: funds, PartyIndex: 0}, s.Accounts[0])
	require.NoError(t, err)

	// Party 0 keeps the amounts in the reclaim record but moves its capacity to its own lock.
	skim := *tx
	skim.Outputs = append([]ledger.Record(nil), tx.Outputs...)
	skim.OutputsData = append([][]byte(nil), tx.OutputsData...)
	skim.Witnesses = append([][]byte(nil), tx.Witnesses...)
	occupied := skim.Outputs[0].OccupiedCapacity(skim.OutputsData[0])
	taken := skim.Outputs[0].Capacity - occupied
	skim.Outputs[0].Capacity = occupied
	skim.AddOutput(ledger.Record{Capacity: taken, Lock: s.Env.PaymentLockFor(s.Participant(0))}, nil)
	h := skim.Hash()
	sig, err := s.Accounts[0].SignData(h[:])
	require.NoError(t, err)
	w, err := wire.NewLockWitness(wire.AbortAction{Index: 0, Sig: sig})
	require.NoError(t, err)
	raw, err := w.MarshalBinary()
	require.NoError(t, err)
	skim.SetWitness(1, raw)

	_, err = s.Ledger.Submit(ctx, &skim)
	require.ErrorIs(t, err, ledger.ErrScriptFailed)
	require.True(t, fundslock.IsKind(err, fundslock.ErrAmountMismatch))
	require.ErrorIs(t, err, fundslock.ErrUncoveredAmount)

	_, err = s.Ledger.Submit(ctx, tx)
	require.NoError(t, err)
}

func TestAbort_StaleControlRecordKeepsFunds(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	ctx := context.Background()
	chIn, funds, err := s.OpenAndFund(ctx, 100)
	require.NoError(t, err)

	// A party recreates the unfunded control record of its own channel and aborts with it. The
	// funds lock accepts, but the value stays under the funds lock.
	stale := chIn.Channel.Clone()
	stale.Control.Funded = false
	staleIn := controlRecord(t, s, stale.State.ChannelID, stale, chIn.Capacity)
	tx, err := s.Builder.Abort(transaction.AbortArgs{Channel: staleIn, Funds: funds, PartyIndex: 1}, s.Accounts[1])
	require.NoError(t, err)
	_, err = s.Ledger.Submit(ctx, tx)
	require.NoError(t, err)

	reclaimed := liveFunds(t, s, chIn.Channel)
	require.Len(t, reclaimed, 1)
	require.True(t, reclaimed[0].Amount.Equal(wire.NewAmount(500)))
	require.GreaterOrEqual(t, reclaimed[0].Capacity, uint64(500))

	// The genuine channel is untouched and still settles.
	require.True(t, s.Ledger.IsLive(chIn.OutPoint))
	state := chIn.Channel.State.Clone()
	state.Version = 1
	state.Finalized = true
	state.Balances = wire.Balances{wire.NewAmount(100), wire.NewAmount(400)}
	closeTx, err := s.Builder.Close(transaction.CloseArgs{
		Channel: chIn,
		Funds:   reclaimed,
		State:   state,
		Sigs:    s.SignState(state),
	}, s.Signers())
	require.NoError(t, err)
	_, err = s.Ledger.Submit(ctx, closeTx)
	require.NoError(t, err)
}

func TestBuilder_InvalidChannel(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)
	bad := open.ChannelInput()
	bad.Channel = bad.Channel.Clone()
	bad.Channel.Control.Funding = bad.Channel.Control.Funding[:1]

	_, err = s.Builder.Fund(transaction.FundArgs{
		Channel:          bad,
		PartyIndex:       1,
		MyFunds:          s.Funds(1, 300),
		MyAvailableFunds: 300,
	})
	require.ErrorIs(t, err, transaction.ErrInvalidChannel)
	_, err = s.Builder.Abort(transaction.AbortArgs{Channel: bad, PartyIndex: 1}, s.Accounts[1])
	require.ErrorIs(t, err, transaction.ErrInvalidChannel)
	_, err = s.Builder.Dispute(transaction.DisputeArgs{Channel: bad, State: bad.Channel.State})
	require.ErrorIs(t, err, transaction.ErrInvalidChannel)
	_, err = s.Builder.Close(transaction.CloseArgs{Channel: bad, State: bad.Channel.State}, s.Signers())
	require.ErrorIs(t, err, transaction.ErrInvalidChannel)
}

func TestDispute(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	chIn, _, err := s.OpenAndFund(context.Background(), 100)
	require.NoError(t, err)

	state := chIn.Channel.State.Clone()
	state.Version = 1
	state.Balances = wire.Balances{wire.NewAmount(100), wire.NewAmount(400)}
	args := transaction.DisputeArgs{Channel: chIn, State: state, Sigs: s.SignState(state), Timestamp: 1234}

	bad := args
	bad.Sigs = s.SignState(chIn.Channel.State)
	_, err = s.Builder.Dispute(bad)
	require.ErrorIs(t, err, transaction.ErrInvalidSignature)

	bad = args
	bad.State = state.Clone()
	bad.State.Balances[1] = wire.NewAmount(401)
	bad.Sigs = s.SignState(bad.State)
	_, err = s.Builder.Dispute(bad)
	require.ErrorIs(t, err, transaction.ErrAmountMismatch)

	bad = args
	bad.State = state.Clone()
	bad.State.ChannelID[0] ^= 1
	bad.Sigs = s.SignState(bad.State)
	_, err = s.Builder.Dispute(bad)
	require.ErrorIs(t, err, transaction.ErrChannelMismatch)

	tx, err := s.Builder.Dispute(args)
	require.NoError(t, err)
	require.Equal(t, []ledger.OutPoint{chIn.OutPoint}, tx.Inputs)
	require.Len(t, tx.Outputs, 1)
	require.Equal(t, chIn.Capacity, tx.Outputs[0].Capacity)
	var next wire.Channel
	require.NoError(t, next.UnmarshalBinary(tx.OutputsData[0]))
	require.True(t, next.Control.Disputed)
	require.EqualValues(t, 1234, next.Control.Timestamp)
	require.Equal(t, state, next.State)
	_, err = s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)

	disputed := transaction.ChannelInput{OutPoint: tx.OutPoint(0), Capacity: chIn.Capacity, Channel: next}
	args.Channel = disputed
	_, err = s.Builder.Dispute(args)
	require.ErrorIs(t, err, transaction.ErrStaleState)

	newer := state.Clone()
	newer.Version = 2
	_, err = s.Builder.Dispute(transaction.DisputeArgs{
		Channel: disputed, State: newer, Sigs: s.SignState(newer), Timestamp: 1300,
	})
	require.NoError(t, err)
}

func TestDispute_NotFunded(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	open, err := s.Builder.Open(s.OpenArgs(0, 400))
	require.NoError(t, err)

	state := open.Channel.State
	_, err = s.Builder.Dispute(transaction.DisputeArgs{
		Channel: open.ChannelInput(), State: state, Sigs: s.SignState(state),
	})
	require.ErrorIs(t, err, transaction.ErrNotFunded)
}

func TestClose(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	chIn, funds, err := s.OpenAndFund(context.Background(), 100)
	require.NoError(t, err)

	state := chIn.Channel.State.Clone()
	state.Version = 5
	state.Balances = wire.Balances{wire.NewAmount(450), wire.NewAmount(50)}
	args := transaction.CloseArgs{Channel: chIn, Funds: funds, State: state, Sigs: s.SignState(state)}

	_, err = s.Builder.Close(args, s.Signers())
	require.ErrorIs(t, err, transaction.ErrNotFinal)

	args.State.Finalized = true
	args.Sigs = s.SignState(args.State)

	_, err = s.Builder.Close(args, s.Signers()[:1])
	require.Error(t, err)
	_, err = s.Builder.Close(args, []pwallet.Account{s.Accounts[1], s.Accounts[0]})
	require.ErrorIs(t, err, transaction.ErrWrongSigner)

	short := args
	short.Funds = funds[:1]
	_, err = s.Builder.Close(short, s.Signers())
	require.ErrorIs(t, err, transaction.ErrAmountMismatch)

	tx, err := s.Builder.Close(args, s.Signers())
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 3)
	require.Len(t, tx.Outputs, 2)
	id := state.ChannelID
	for i, want := range []uint64{450, 50} {
		out := tx.Outputs[i]
		require.True(t, out.Lock.Equal(s.Env.FundsLockForChannel(id)))
		amount, err := wire.DecodeAmount(tx.OutputsData[i])
		require.NoError(t, err)
		require.True(t, amount.Equal(wire.NewAmount(want)))
		require.Equal(t, want+out.OccupiedCapacity(tx.OutputsData[i]), out.Capacity)
	}

	_, err = s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)
	require.Empty(t, s.Ledger.LiveRecordsByLock(s.Env.ChannelLockFor(id)))
	require.Len(t, s.Ledger.LiveRecordsByLock(s.Env.FundsLockForChannel(id)), 2)
}

func TestClose_AfterDispute(t *testing.T) {
	rng := pkgtest.Prng(t)
	s := ttest.NewSetup(rng, 300, 200)
	chIn, funds, err := s.OpenAndFund(context.Background(), 100)
	require.NoError(t, err)

	state := chIn.Channel.State.Clone()
	state.Version = 3
	sigs := s.SignState(state)
	dtx, err := s.Builder.Dispute(transaction.DisputeArgs{Channel: chIn, State: state, Sigs: sigs, Timestamp: 10})
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), dtx)
	require.NoError(t, err)

	var next wire.Channel
	require.NoError(t, next.UnmarshalBinary(dtx.OutputsData[0]))
	disputed := transaction.ChannelInput{OutPoint: dtx.OutPoint(0), Capacity: dtx.Outputs[0].Capacity, Channel: next}

	older := state.Clone()
	older.Version = 2
	_, err = s.Builder.Close(transaction.CloseArgs{
		Channel: disputed, Funds: funds, State: older, Sigs: s.SignState(older),
	}, s.Signers())
	require.ErrorIs(t, err, transaction.ErrNotFinal)

	tx, err := s.Builder.Close(transaction.CloseArgs{Channel: disputed, Funds: funds, State: state, Sigs: sigs}, s.Signers())
	require.NoError(t, err)
	_, err = s.Ledger.Submit(context.Background(), tx)
	require.NoError(t, err)
}
