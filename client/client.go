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

package client

import (
	"context"
	"errors"
	"fmt"

	pchannel "perun.network/go-perun/channel"
	"perun.network/go-perun/log"
	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/event"
	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/transaction"
	"perun.network/perun-utxo-backend/wallet"
	"perun.network/perun-utxo-backend/wire"
)

var (
	ErrChannelNotFound  = errors.New("no live channel-state record")
	ErrAmbiguousChannel = errors.New("more than one live channel-state record")
)

// Ledger is the ledger a Client submits transitions to.
type Ledger interface {
	Submit(ctx context.Context, tx *ledger.Transaction) (ledger.Hash, error)
	Record(op ledger.OutPoint) (ledger.Record, []byte, error)
	RecordData(op ledger.OutPoint) ([]byte, error)
	LiveRecordsByLock(lock ledger.Script) []ledger.OutPoint
	SpentBy(op ledger.OutPoint) (ledger.Hash, bool)
	Transaction(hash ledger.Hash) (*ledger.Transaction, bool)
}

// Client submits the channel transitions of a single party.
type Client struct {
	ledger  Ledger
	builder *transaction.Builder
	account *wallet.Account
	log     log.Embedding
}

// New returns a client acting for account.
func New(l Ledger, builder *transaction.Builder, account *wallet.Account) *Client {
	return &Client{
		ledger:  l,
		builder: builder,
		account: account,
		log:     log.MakeEmbedding(log.Default()),
	}
}

// Account returns the account of the client.
func (c *Client) Account() *wallet.Account {
	return c.account
}

// Open opens a channel.
func (c *Client) Open(ctx context.Context, args transaction.OpenArgs) (*transaction.OpenResult, error) {
	res, err := c.builder.Open(args)
	if err != nil {
		return nil, fmt.Errorf("building open transaction: %w", err)
	}
	if err := c.submit(ctx, res.Tx, event.AssertOpenEvent); err != nil {
		return nil, err
	}
	return res, nil
}

// Fund pays the share of party index into channel id.
func (c *Client) Fund(ctx context.Context, id pchannel.ID, index uint8, myFunds ledger.OutPoint, available uint64) (*transaction.FundResult, error) {
	chIn, err := c.GetChannelInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := c.builder.Fund(transaction.FundArgs{
		Channel:          chIn,
		PartyIndex:       index,
		MyFunds:          myFunds,
		MyAvailableFunds: available,
	})
	if err != nil {
		return nil, fmt.Errorf("building fund transaction: %w", err)
	}
	if err := c.submit(ctx, res.Tx, event.AssertFundedEvent); err != nil {
		return nil, err
	}
	return res, nil
}

// Abort cancels channel id before it is funded. index is the client's party index.
func (c *Client) Abort(ctx context.Context, id pchannel.ID, index uint8) error {
	chIn, err := c.GetChannelInfo(ctx, id)
	if err != nil {
		return err
	}
	funds, err := c.GetFunds(ctx, id)
	if err != nil {
		return err
	}
	tx, err := c.builder.Abort(transaction.AbortArgs{Channel: chIn, Funds: funds, PartyIndex: index}, c.account)
	if err != nil {
		return fmt.Errorf("building abort transaction: %w", err)
	}
	return c.submit(ctx, tx, event.AssertAbortEvent)
}

// Dispute registers state on channel id at the Unix time timestamp.
func (c *Client) Dispute(ctx context.Context, id pchannel.ID, state wire.State, sigs [][]byte, timestamp uint64) error {
	chIn, err := c.GetChannelInfo(ctx, id)
	if err != nil {
		return err
	}
	tx, err := c.builder.Dispute(transaction.DisputeArgs{Channel: chIn, State: state, Sigs: sigs, Timestamp: timestamp})
	if err != nil {
		return fmt.Errorf("building dispute transaction: %w", err)
	}
	return c.submit(ctx, tx, event.AssertDisputeEvent)
}

// Close settles channel id on state. signers must hold the keys of all parties in party order.
func (c *Client) Close(ctx context.Context, id pchannel.ID, state wire.State, sigs [][]byte, signers []pwallet.Account) error {
	chIn, err := c.GetChannelInfo(ctx, id)
	if err != nil {
		return err
	}
	funds, err := c.GetFunds(ctx, id)
	if err != nil {
		return err
	}
	tx, err := c.builder.Close(transaction.CloseArgs{Channel: chIn, Funds: funds, State: state, Sigs: sigs}, signers)
	if err != nil {
		return fmt.Errorf("building close transaction: %w", err)
	}
	return c.submit(ctx, tx, event.AssertCloseEvent)
}

// GetChannelInfo returns the live channel-state record of channel id.
func (c *Client) GetChannelInfo(ctx context.Context, id pchannel.ID) (transaction.ChannelInput, error) {
	if err := ctx.Err(); err != nil {
		return transaction.ChannelInput{}, err
	}
	ops := c.ledger.LiveRecordsByLock(c.builder.Env().ChannelLockFor(id))
	switch len(ops) {
	case 0:
		return transaction.ChannelInput{}, ErrChannelNotFound
	case 1:
	default:
		return transaction.ChannelInput{}, ErrAmbiguousChannel
	}
	r, data, err := c.ledger.Record(ops[0])
	if err != nil {
		return transaction.ChannelInput{}, err
	}
	ch, err := event.GetChannelFromData(data)
	if err != nil {
		return transaction.ChannelInput{}, err
	}
	return transaction.ChannelInput{OutPoint: ops[0], Capacity: r.Capacity, Channel: ch}, nil
}

// GetFunds returns the live funds records of channel id.
func (c *Client) GetFunds(ctx context.Context, id pchannel.ID) ([]transaction.FundInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ops := c.ledger.LiveRecordsByLock(c.builder.Env().FundsLockForChannel(id))
	funds := make([]transaction.FundInput, 0, len(ops))
	for _, op := range ops {
		r, data, err := c.ledger.Record(op)
		if err != nil {
			return nil, err
		}
		amount, err := wire.DecodeAmount(data)
		if err != nil {
			return nil, fmt.Errorf("funds record %v: %w", op, err)
		}
		funds = append(funds, transaction.FundInput{OutPoint: op, Capacity: r.Capacity, Amount: amount})
	}
	return funds, nil
}

// submit submits tx and checks the event it emits.
func (c *Client) submit(ctx context.Context, tx *ledger.Transaction, assert func(event.PerunEvent) error) error {
	h, err := c.ledger.Submit(ctx, tx)
	if err != nil {
		return fmt.Errorf("submitting transaction: %w", err)
	}
	ev, err := event.Decode(tx, c.ledger)
	if err != nil {
		return err
	}
	if err := assert(ev); err != nil {
		return err
	}
	t, _ := ev.GetType()
	c.log.Log().WithField("tx", h).WithField("channel", ev.GetID()).Debugf("%v event", t)
	return nil
}
