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
	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	SymbolWitnessLock       xdr.ScSymbol = "lock"
	SymbolWitnessInputType  xdr.ScSymbol = "input_type"
	SymbolWitnessOutputType xdr.ScSymbol = "output_type"
)

// WitnessArgs is the content of a witness slot. Lock is read by the lock script of the input at
// the slot's position, InputType and OutputType by type scripts. A nil field is absent.
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// NewLockWitness returns WitnessArgs carrying the encoded action in Lock.
func NewLockWitness(a Action) (WitnessArgs, error) {
	b, err := EncodeAction(a)
	if err != nil {
		return WitnessArgs{}, err
	}
	return WitnessArgs{Lock: b}, nil
}

// NewInputTypeWitness returns WitnessArgs carrying the encoded action in InputType.
func NewInputTypeWitness(a Action) (WitnessArgs, error) {
	b, err := EncodeAction(a)
	if err != nil {
		return WitnessArgs{}, err
	}
	return WitnessArgs{InputType: b}, nil
}

// NewOutputTypeWitness returns WitnessArgs carrying the encoded action in OutputType.
func NewOutputTypeWitness(a Action) (WitnessArgs, error) {
	b, err := EncodeAction(a)
	if err != nil {
		return WitnessArgs{}, err
	}
	return WitnessArgs{OutputType: b}, nil
}

func (w WitnessArgs) ToScVal() (xdr.ScVal, error) {
	lock, err := scval.WrapOptionalBytes(w.Lock)
	if err != nil {
		return xdr.ScVal{}, err
	}
	inputType, err := scval.WrapOptionalBytes(w.InputType)
	if err != nil {
		return xdr.ScVal{}, err
	}
	outputType, err := scval.WrapOptionalBytes(w.OutputType)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolWitnessLock,
			SymbolWitnessInputType,
			SymbolWitnessOutputType,
		},
		[]xdr.ScVal{lock, inputType, outputType},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

func (w *WitnessArgs) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 3, "WitnessArgs") //nolint:gomnd
	if err != nil {
		return err
	}
	lock, err := getOptionalBytes(m, SymbolWitnessLock)
	if err != nil {
		return err
	}
	inputType, err := getOptionalBytes(m, SymbolWitnessInputType)
	if err != nil {
		return err
	}
	outputType, err := getOptionalBytes(m, SymbolWitnessOutputType)
	if err != nil {
		return err
	}
	w.Lock = lock
	w.InputType = inputType
	w.OutputType = outputType
	return nil
}

func (w WitnessArgs) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(w, e)
}

func (w *WitnessArgs) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, w.FromScVal(v)
}

func (w WitnessArgs) MarshalBinary() ([]byte, error) {
	return marshalScVal(w)
}

func (w *WitnessArgs) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return w.FromScVal(v)
}
