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
	"fmt"
	"time"

	pchannel "perun.network/go-perun/channel"
	"perun.network/go-perun/log"
	pkgsync "polycry.pt/poly-go/sync"

	"perun.network/perun-utxo-backend/event"
	"perun.network/perun-utxo-backend/ledger"
)

const (
	DefaultBufferSize                  = 1024
	DefaultSubscriptionPollingInterval = time.Duration(5) * time.Second
)

// Subscription follows the channel-state records of a channel and reports every transition
// consuming one of them. It ends after an abort or a close.
type Subscription struct {
	client       *Client
	cid          pchannel.ID
	at           ledger.OutPoint
	events       chan event.PerunEvent
	subErrors    chan error
	cancel       context.CancelFunc
	closer       *pkgsync.Closer
	pollInterval time.Duration
	log          log.Embedding
}

// Subscribe starts following the live channel-state record of channel id. A zero pollInterval
// selects DefaultSubscriptionPollingInterval.
func (c *Client) Subscribe(ctx context.Context, id pchannel.ID, pollInterval time.Duration) (*Subscription, error) {
	chIn, err := c.GetChannelInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if pollInterval == 0 {
		pollInterval = DefaultSubscriptionPollingInterval
	}
	sub := &Subscription{
		client:       c,
		cid:          id,
		at:           chIn.OutPoint,
		events:       make(chan event.PerunEvent, DefaultBufferSize),
		subErrors:    make(chan error, 1),
		closer:       new(pkgsync.Closer),
		pollInterval: pollInterval,
		log:          log.MakeEmbedding(log.Default()),
	}
	ctx, sub.cancel = context.WithCancel(ctx)
	go sub.run(ctx)
	return sub, nil
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.events)
	logger := s.log.Log().WithField("channel", s.cid)
	logger.Debug("listening for channel transitions")
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
		h, spent := s.client.ledger.SpentBy(s.at)
		if !spent {
			continue
		}
		tx, ok := s.client.ledger.Transaction(h)
		if !ok {
			s.subErrors <- fmt.Errorf("transaction %v consuming %v not found", h, s.at)
			return
		}
		ev, err := event.Decode(tx, s.client.ledger)
		if err != nil {
			s.subErrors <- err
			return
		}
		t, err := ev.GetType()
		if err != nil {
			s.subErrors <- err
			return
		}
		logger.Debugf("found %v event", t)
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
		if t == event.EventTypeAborted || t == event.EventTypeClosed {
			return
		}
		s.at = tx.OutPoint(0)
	}
}

// Next blocks until the next event. It returns nil once the subscription ended or was closed.
func (s *Subscription) Next() event.PerunEvent {
	if s.closer.IsClosed() {
		return nil
	}
	select {
	case ev, ok := <-s.events:
		if !ok {
			return nil
		}
		return ev
	case <-s.closer.Closed():
		return nil
	}
}

// Err returns the error that ended the subscription, if any. It is valid after Next returned nil.
func (s *Subscription) Err() error {
	select {
	case err := <-s.subErrors:
		s.subErrors <- err
		return err
	default:
		return nil
	}
}

func (s *Subscription) Close() error {
	s.cancel()
	if s.closer.IsClosed() {
		return nil
	}
	return s.closer.Close()
}
