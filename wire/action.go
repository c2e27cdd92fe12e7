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

package wire

import (
	"errors"
	"fmt"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

// ActionTag identifies a channel action.
type ActionTag uint8

const (
	ActionOpen ActionTag = iota
	ActionFund
	ActionAbort
	ActionDispute
	ActionClose
)

const (
	SymbolActionOpen    xdr.ScSymbol = "open"
	SymbolActionFund    xdr.ScSymbol = "fund"
	SymbolActionAbort   xdr.ScSymbol = "abort"
	SymbolActionDispute xdr.ScSymbol = "dispute"
	SymbolActionClose   xdr.ScSymbol = "close"

	SymbolActionIndex xdr.ScSymbol = "index"
	SymbolActionSig   xdr.ScSymbol = "sig"
	SymbolActionSigs  xdr.ScSymbol = "sigs"
	SymbolActionState xdr.ScSymbol = "state"
)

var ErrUnknownAction = errors.New("unknown channel action")

var actionSymbols = map[ActionTag]xdr.ScSymbol{
	ActionOpen:    SymbolActionOpen,
	ActionFund:    SymbolActionFund,
	ActionAbort:   SymbolActionAbort,
	ActionDispute: SymbolActionDispute,
	ActionClose:   SymbolActionClose,
}

// String returns the wire symbol of the tag.
func (t ActionTag) String() string {
	if s, ok := actionSymbols[t]; ok {
		return string(s)
	}
	return fmt.Sprintf("ActionTag(%d)", uint8(t))
}

// Action is a channel action carried in a witness. The set of actions is closed: OpenAction,
// FundAction, AbortAction, DisputeAction and CloseAction.
type Action interface {
	Tag() ActionTag
	payload() (xdr.ScVal, error)
	isAction()
}

type (
	// OpenAction creates a channel-state record.
	OpenAction struct{}

	// FundAction records the funding of party Index.
	FundAction struct {
		Index uint8
	}

	// AbortAction cancels a channel that is not fully funded. Sig is party Index's signature.
	AbortAction struct {
		Index uint8
		Sig   []byte
	}

	// DisputeAction registers a state signed by all parties.
	DisputeAction struct {
		Sigs [][]byte
	}

	// CloseAction settles a channel on State. Sigs holds one signature per party.
	CloseAction struct {
		State State
		Sigs  [][]byte
	}
)

func (OpenAction) Tag() ActionTag    { return ActionOpen }
func (FundAction) Tag() ActionTag    { return ActionFund }
func (AbortAction) Tag() ActionTag   { return ActionAbort }
func (DisputeAction) Tag() ActionTag { return ActionDispute }
func (CloseAction) Tag() ActionTag   { return ActionClose }

func (OpenAction) isAction()    {}
func (FundAction) isAction()    {}
func (AbortAction) isAction()   {}
func (DisputeAction) isAction() {}
func (CloseAction) isAction()   {}

func (OpenAction) payload() (xdr.ScVal, error) {
	return scval.WrapVoid()
}

func (a FundAction) payload() (xdr.ScVal, error) {
	index, err := scval.WrapUint32(xdr.Uint32(a.Index))
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap([]xdr.ScSymbol{SymbolActionIndex}, []xdr.ScVal{index})
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (a AbortAction) payload() (xdr.ScVal, error) {
	index, err := scval.WrapUint32(xdr.Uint32(a.Index))
	if err != nil {
		return xdr.ScVal{}, err
	}
	sig, err := scval.WrapScBytes(a.Sig)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolActionIndex, SymbolActionSig},
		[]xdr.ScVal{index, sig},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (a DisputeAction) payload() (xdr.ScVal, error) {
	sigs, err := wrapSigs(a.Sigs)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap([]xdr.ScSymbol{SymbolActionSigs}, []xdr.ScVal{sigs})
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (a CloseAction) payload() (xdr.ScVal, error) {
	state, err := a.State.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	sigs, err := wrapSigs(a.Sigs)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolActionState, SymbolActionSigs},
		[]xdr.ScVal{state, sigs},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func wrapSigs(sigs [][]byte) (xdr.ScVal, error) {
	vec := make(xdr.ScVec, 0, len(sigs))
	for _, sig := range sigs {
		v, err := scval.WrapScBytes(sig)
		if err != nil {
			return xdr.ScVal{}, err
		}
		vec = append(vec, v)
	}
	return scval.WrapVec(vec)
}

func unwrapSigs(m xdr.ScMap) ([][]byte, error) {
	vec, err := getVec(m, SymbolActionSigs)
	if err != nil {
		return nil, err
	}
	sigs := make([][]byte, len(vec))
	for i, v := range vec {
		sig, ok := v.GetBytes()
		if !ok {
			return nil, fmt.Errorf("expected bytes for signature %d", i)
		}
		sigs[i] = append([]byte{}, sig...)
	}
	return sigs, nil
}

func getIndex(m xdr.ScMap) (uint8, error) {
	index, err := getUint32(m, SymbolActionIndex)
	if err != nil {
		return 0, err
	}
	if index > MaxParties-1 {
		return 0, errors.New("party index out of range")
	}
	return uint8(index), nil
}

// ActionToScVal encodes an action as the vector [tag, payload].
func ActionToScVal(a Action) (xdr.ScVal, error) {
	sym, ok := actionSymbols[a.Tag()]
	if !ok {
		return xdr.ScVal{}, ErrUnknownAction
	}
	tag, err := scval.WrapScSymbol(sym)
	if err != nil {
		return xdr.ScVal{}, err
	}
	payload, err := a.payload()
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapVec(xdr.ScVec{tag, payload})
}

// ActionFromScVal decodes an action encoded by ActionToScVal.
//
//nolint:funlen
func ActionFromScVal(v xdr.ScVal) (Action, error) {
	vec, ok := v.GetVec()
	if !ok || vec == nil || len(*vec) != 2 { //nolint:gomnd
		return nil, errors.New("expected vec of length 2 decoding Action")
	}
	sym, ok := (*vec)[0].GetSym()
	if !ok {
		return nil, errors.New("expected symbol as action tag")
	}
	payload := (*vec)[1]

	switch sym {
	case SymbolActionOpen:
		if payload.Type != xdr.ScValTypeScvVoid {
			return nil, errors.New("expected void payload for open")
		}
		return OpenAction{}, nil
	case SymbolActionFund:
		m, err := symbolMap(payload, 1, "FundAction")
		if err != nil {
			return nil, err
		}
		index, err := getIndex(m)
		if err != nil {
			return nil, err
		}
		return FundAction{Index: index}, nil
	case SymbolActionAbort:
		m, err := symbolMap(payload, 2, "AbortAction") //nolint:gomnd
		if err != nil {
			return nil, err
		}
		index, err := getIndex(m)
		if err != nil {
			return nil, err
		}
		sig, err := getBytes(m, SymbolActionSig)
		if err != nil {
			return nil, err
		}
		return AbortAction{Index: index, Sig: append([]byte{}, sig...)}, nil
	case SymbolActionDispute:
		m, err := symbolMap(payload, 1, "DisputeAction")
		if err != nil {
			return nil, err
		}
		sigs, err := unwrapSigs(m)
		if err != nil {
			return nil, err
		}
		return DisputeAction{Sigs: sigs}, nil
	case SymbolActionClose:
		m, err := symbolMap(payload, 2, "CloseAction") //nolint:gomnd
		if err != nil {
			return nil, err
		}
		stateVal, err := GetScMapValueFromSymbol(SymbolActionState, m)
		if err != nil {
			return nil, err
		}
		state, err := StateFromScVal(stateVal)
		if err != nil {
			return nil, err
		}
		sigs, err := unwrapSigs(m)
		if err != nil {
			return nil, err
		}
		return CloseAction{State: state, Sigs: sigs}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, sym)
	}
}

// EncodeAction returns the binary encoding of a.
func EncodeAction(a Action) ([]byte, error) {
	return marshalScVal(actionVal{a})
}

// DecodeAction decodes a binary encoded action.
func DecodeAction(data []byte) (Action, error) {
	v, err := unmarshalScVal(data)
	if err != nil {
		return nil, err
	}
	return ActionFromScVal(v)
}

// EncodeActionTo encodes a to an xdr.Encoder.
func EncodeActionTo(a Action, e *xdr3.Encoder) error {
	return encodeScVal(actionVal{a}, e)
}

type actionVal struct{ Action }

func (a actionVal) ToScVal() (xdr.ScVal, error) {
	return ActionToScVal(a.Action)
}
