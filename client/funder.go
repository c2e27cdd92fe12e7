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
	"time"

	pchannel "perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/transaction"
	"perun.network/perun-utxo-backend/wire"
)

// MaxIterationsUntilAbort is the number of polls after which an unfunded channel is aborted.
const MaxIterationsUntilAbort = 20

// DefaultPollingInterval is the time between two polls of the channel-state record.
const DefaultPollingInterval = time.Duration(6) * time.Second

// ErrFundingTimeout is returned when a channel was not fully funded in time and got aborted.
var ErrFundingTimeout = errors.New("funding timed out")

// FundingReq is the funding request of one party. Open is set for the party opening the channel,
// in which case ChannelID is ignored.
type FundingReq struct {
	Open             *transaction.OpenArgs
	ChannelID        pchannel.ID
	Index            uint8
	MyFunds          ledger.OutPoint
	MyAvailableFunds uint64
}

// Funder drives a channel to the funded state on behalf of one party.
type Funder struct {
	client          *Client
	maxIters        int
	pollingInterval time.Duration
}

// NewFunder returns a Funder acting through c with the default polling configuration.
func NewFunder(c *Client) *Funder {
	return &Funder{
		client:          c,
		maxIters:        MaxIterationsUntilAbort,
		pollingInterval: DefaultPollingInterval,
	}
}

// SetMaxIters sets the number of polls before the channel is aborted.
func (f *Funder) SetMaxIters(maxIters int) {
	f.maxIters = maxIters
}

// SetPollingInterval sets the time between two polls. It also bounds the abort on timeout.
func (f *Funder) SetPollingInterval(d time.Duration) {
	f.pollingInterval = d
}

// Fund opens the channel if requested, pays in the party's share and waits until every party has
// funded. If that does not happen within the configured iterations or ctx is done, the channel is
// aborted and ErrFundingTimeout is returned.
func (f *Funder) Fund(ctx context.Context, req FundingReq) error {
	id := req.ChannelID
	paid := false
	if req.Open != nil {
		if req.Open.PartyIndex != req.Index {
			return fmt.Errorf("opening index %d differs from funding index %d", req.Open.PartyIndex, req.Index)
		}
		res, err := f.client.Open(ctx, *req.Open)
		if err != nil {
			return fmt.Errorf("opening channel: %w", err)
		}
		id = res.Channel.State.ChannelID
		paid = true
	}
	log := f.client.log.Log().WithField("channel", id).WithField("index", req.Index)

	for i := 0; i < f.maxIters; i++ {
		select {
		case <-ctx.Done():
			return f.abort(id, req.Index, ctx.Err())
		case <-time.After(f.pollingInterval):
		}
		chIn, err := f.client.GetChannelInfo(ctx, id)
		if err != nil {
			log.Debugf("polling for opened channel: %v", err)
			continue
		}
		ctrl := chIn.Channel.Control
		if ctrl.Funded {
			log.Debug("channel funded")
			return nil
		}
		if paid || int(req.Index) >= len(ctrl.Funding) {
			continue
		}
		if ctrl.Funding[req.Index].Equal(chIn.Channel.State.Balances[req.Index]) {
			paid = true
			continue
		}
		if _, err := f.client.Fund(ctx, id, req.Index, req.MyFunds, req.MyAvailableFunds); err != nil {
			// Another party may have spent the channel record first.
			if errors.Is(err, ledger.ErrDeadRecord) {
				continue
			}
			return err
		}
		paid = true
	}
	return f.abort(id, req.Index, nil)
}

func (f *Funder) abort(id pchannel.ID, index uint8, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.pollingInterval)
	defer cancel()
	chIn, err := f.client.GetChannelInfo(ctx, id)
	if errors.Is(err, ErrChannelNotFound) {
		return fmt.Errorf("%w: channel never opened", ErrFundingTimeout)
	} else if err != nil {
		return err
	}
	missing := unfunded(chIn.Channel)
	if chIn.Channel.Control.Funded {
		return nil
	}
	if err := f.client.Abort(ctx, id, index); err != nil {
		return fmt.Errorf("aborting channel: %w", err)
	}
	if cause != nil {
		return fmt.Errorf("%w: parties %v unfunded: %v", ErrFundingTimeout, missing, cause)
	}
	return fmt.Errorf("%w: parties %v unfunded", ErrFundingTimeout, missing)
}

func unfunded(ch wire.Channel) []int {
	var missing []int
	for i, bal := range ch.State.Balances {
		if i >= len(ch.Control.Funding) || !ch.Control.Funding[i].Equal(bal) {
			missing = append(missing, i)
		}
	}
	return missing
}
