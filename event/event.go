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

package event

import (
	"errors"
	"fmt"

	pchannel "perun.network/go-perun/channel"

	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/wire"
)

type Version = uint64
type EventType int

const (
	EventTypeOpen          EventType = iota
	EventTypeFundChannel             // participant/s funding channel
	EventTypeFundedChannel           // participants have funded channel
	EventTypeAborted                 // channel aborted before it was funded
	EventTypeDisputed                // participant has disputed the channel
	EventTypeClosed                  // channel settled
	EventTypeError                   // inconsistent event
)

func (t EventType) String() string {
	switch t {
	case EventTypeOpen:
		return "open"
	case EventTypeFundChannel:
		return "fund"
	case EventTypeFundedChannel:
		return "funded"
	case EventTypeAborted:
		return "abort"
	case EventTypeDisputed:
		return "dispute"
	case EventTypeClosed:
		return "close"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

var (
	ErrNotChannelTransition = errors.New("transaction is not a channel transition")
	ErrEventDecode          = errors.New("error while decoding event")
	ErrNoOpenEvent          = errors.New("open event not found")
	ErrNoFundEvent          = errors.New("fund event not found")
	ErrNoAbortEvent         = errors.New("abort event not found")
	ErrNoCloseEvent         = errors.New("close event not found")
	ErrNoDisputeEvent       = errors.New("dispute event not found")
)

type (
	PerunEvent interface {
		GetID() pchannel.ID
		GetChannel() wire.Channel
		GetVersion() Version
		GetType() (EventType, error)
	}

	// OpenEvent carries the channel as created.
	OpenEvent struct {
		channel wire.Channel
	}
	// FundEvent carries the channel after party Index funded.
	FundEvent struct {
		channel wire.Channel
		Index   uint8
	}
	// AbortEvent carries the channel as it was before party Index aborted it.
	AbortEvent struct {
		channel wire.Channel
		Index   uint8
	}
	// DisputedEvent carries the channel with the registered state.
	DisputedEvent struct {
		channel wire.Channel
		Timeout pchannel.Timeout
	}
	// CloseEvent carries the channel as it was before it was settled on State.
	CloseEvent struct {
		channel wire.Channel
		State   wire.State
	}
)

func (e *OpenEvent) GetChannel() wire.Channel    { return e.channel }
func (e *OpenEvent) GetID() pchannel.ID          { return e.channel.State.ChannelID }
func (e *OpenEvent) GetVersion() Version         { return e.channel.State.Version }
func (e *OpenEvent) GetType() (EventType, error) { return EventTypeOpen, nil }

func (e *FundEvent) GetChannel() wire.Channel { return e.channel }
func (e *FundEvent) GetID() pchannel.ID       { return e.channel.State.ChannelID }
func (e *FundEvent) GetVersion() Version      { return e.channel.State.Version }

func (e *FundEvent) GetType() (EventType, error) {
	if int(e.Index) >= len(e.channel.Control.Funding) {
		return EventTypeError, errors.New("funding event has no consistent type: unknown party")
	}
	if e.channel.Control.Funded {
		return EventTypeFundedChannel, nil
	}
	return EventTypeFundChannel, nil
}

func (e *AbortEvent) GetChannel() wire.Channel    { return e.channel }
func (e *AbortEvent) GetID() pchannel.ID          { return e.channel.State.ChannelID }
func (e *AbortEvent) GetVersion() Version         { return e.channel.State.Version }
func (e *AbortEvent) GetType() (EventType, error) { return EventTypeAborted, nil }

func (e *DisputedEvent) GetChannel() wire.Channel    { return e.channel }
func (e *DisputedEvent) GetID() pchannel.ID          { return e.channel.State.ChannelID }
func (e *DisputedEvent) GetVersion() Version         { return e.channel.State.Version }
func (e *DisputedEvent) GetType() (EventType, error) { return EventTypeDisputed, nil }

func (e *CloseEvent) GetChannel() wire.Channel    { return e.channel }
func (e *CloseEvent) GetID() pchannel.ID          { return e.channel.State.ChannelID }
func (e *CloseEvent) GetVersion() Version         { return e.State.Version }
func (e *CloseEvent) GetType() (EventType, error) { return EventTypeClosed, nil }

// Resolver returns the data of records consumed by a transaction.
type Resolver interface {
	RecordData(op ledger.OutPoint) ([]byte, error)
}

// Decode classifies a committed transition by the channel action in its first witness. Events of
// transitions creating a successor channel-state record carry the successor; aborts and closes
// carry the consumed channel, looked up with resolver.
func Decode(tx *ledger.Transaction, resolver Resolver) (PerunEvent, error) {
	action, err := channelAction(tx)
	if err != nil {
		return nil, err
	}
	switch a := action.(type) {
	case wire.OpenAction:
		ch, err := outputChannel(tx)
		if err != nil {
			return nil, err
		}
		return &OpenEvent{channel: ch}, nil
	case wire.FundAction:
		ch, err := outputChannel(tx)
		if err != nil {
			return nil, err
		}
		return &FundEvent{channel: ch, Index: a.Index}, nil
	case wire.DisputeAction:
		ch, err := outputChannel(tx)
		if err != nil {
			return nil, err
		}
		return &DisputedEvent{
			channel: ch,
			Timeout: MakeTimeoutAt(ch.Control.Timestamp, ch.Params.ChallengeDuration),
		}, nil
	case wire.AbortAction:
		ch, err := inputChannel(tx, resolver)
		if err != nil {
			return nil, err
		}
		return &AbortEvent{channel: ch, Index: a.Index}, nil
	case wire.CloseAction:
		ch, err := inputChannel(tx, resolver)
		if err != nil {
			return nil, err
		}
		return &CloseEvent{channel: ch, State: a.State}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %T", ErrEventDecode, action)
	}
}

// DecodeEvents decodes the events of txs in order.
func DecodeEvents(resolver Resolver, txs ...*ledger.Transaction) ([]PerunEvent, error) {
	evs := make([]PerunEvent, 0, len(txs))
	for _, tx := range txs {
		ev, err := Decode(tx, resolver)
		if err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

func channelAction(tx *ledger.Transaction) (wire.Action, error) {
	if len(tx.Witnesses) == 0 || len(tx.Witnesses[0]) == 0 {
		return nil, ErrNotChannelTransition
	}
	var wa wire.WitnessArgs
	if err := wa.UnmarshalBinary(tx.Witnesses[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventDecode, err)
	}
	raw := wa.InputType
	if len(raw) == 0 {
		raw = wa.OutputType
	}
	if len(raw) == 0 {
		return nil, ErrNotChannelTransition
	}
	action, err := wire.DecodeAction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventDecode, err)
	}
	return action, nil
}

func outputChannel(tx *ledger.Transaction) (wire.Channel, error) {
	if len(tx.OutputsData) == 0 {
		return wire.Channel{}, fmt.Errorf("%w: no channel output", ErrEventDecode)
	}
	return GetChannelFromData(tx.OutputsData[0])
}

func inputChannel(tx *ledger.Transaction, resolver Resolver) (wire.Channel, error) {
	if len(tx.Inputs) == 0 {
		return wire.Channel{}, fmt.Errorf("%w: no channel input", ErrEventDecode)
	}
	data, err := resolver.RecordData(tx.Inputs[0])
	if err != nil {
		return wire.Channel{}, fmt.Errorf("resolving channel input: %w", err)
	}
	return GetChannelFromData(data)
}

// GetChannelFromData decodes the data of a channel-state record.
func GetChannelFromData(data []byte) (wire.Channel, error) {
	var ch wire.Channel
	if err := ch.UnmarshalBinary(data); err != nil {
		return wire.Channel{}, fmt.Errorf("%w: %v", ErrEventDecode, err)
	}
	return ch, nil
}

// assertEvent checks that ev has one of the types want. It returns notFound otherwise.
func assertEvent(ev PerunEvent, notFound error, want ...EventType) error {
	if ev == nil {
		return notFound
	}
	t, err := ev.GetType()
	if err != nil {
		return err
	}
	for _, w := range want {
		if t == w {
			return nil
		}
	}
	return fmt.Errorf("%w: got %v", notFound, t)
}

func AssertOpenEvent(ev PerunEvent) error {
	return assertEvent(ev, ErrNoOpenEvent, EventTypeOpen)
}

func AssertFundedEvent(ev PerunEvent) error {
	return assertEvent(ev, ErrNoFundEvent, EventTypeFundChannel, EventTypeFundedChannel)
}

func AssertAbortEvent(ev PerunEvent) error {
	return assertEvent(ev, ErrNoAbortEvent, EventTypeAborted)
}

func AssertDisputeEvent(ev PerunEvent) error {
	return assertEvent(ev, ErrNoDisputeEvent, EventTypeDisputed)
}

func AssertCloseEvent(ev PerunEvent) error {
	return assertEvent(ev, ErrNoCloseEvent, EventTypeClosed)
}
