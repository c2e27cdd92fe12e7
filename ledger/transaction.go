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

package ledger

import (
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire"
	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	SymbolTxCellDeps    xdr.ScSymbol = "cell_deps"
	SymbolTxInputs      xdr.ScSymbol = "inputs"
	SymbolTxOutputs     xdr.ScSymbol = "outputs"
	SymbolTxOutputsData xdr.ScSymbol = "outputs_data"
)

// Transaction consumes its inputs and creates its outputs. OutputsData[i] is the data of
// Outputs[i]. Witnesses are positional: Witnesses[i] belongs to Inputs[i].
type Transaction struct {
	CellDeps    []CellDep
	Inputs      []OutPoint
	Outputs     []Record
	OutputsData [][]byte
	Witnesses   [][]byte
}

// Hash returns the transaction id. Witnesses are not covered, so they can carry signatures of it.
func (tx *Transaction) Hash() Hash {
	b, err := marshal(tx)
	if err != nil {
		panic(err) // encoding a transaction cannot fail
	}
	return HashBytes(b)
}

// AddOutput appends an output together with its data.
func (tx *Transaction) AddOutput(r Record, data []byte) {
	tx.Outputs = append(tx.Outputs, r)
	tx.OutputsData = append(tx.OutputsData, data)
}

// SetWitness sets the witness of input index, extending the witness list as needed.
func (tx *Transaction) SetWitness(index int, witness []byte) {
	for len(tx.Witnesses) <= index {
		tx.Witnesses = append(tx.Witnesses, nil)
	}
	tx.Witnesses[index] = witness
}

// OutPoint returns the outpoint of the index-th output of tx.
func (tx *Transaction) OutPoint(index uint32) OutPoint {
	return OutPoint{TxHash: tx.Hash(), Index: index}
}

// ToScVal encodes every part of the transaction except its witnesses.
func (tx *Transaction) ToScVal() (xdr.ScVal, error) {
	deps := make(xdr.ScVec, len(tx.CellDeps))
	for i, d := range tx.CellDeps {
		v, err := d.OutPoint.ToScVal()
		if err != nil {
			return xdr.ScVal{}, err
		}
		deps[i] = v
	}
	inputs := make(xdr.ScVec, len(tx.Inputs))
	for i, in := range tx.Inputs {
		v, err := in.ToScVal()
		if err != nil {
			return xdr.ScVal{}, err
		}
		inputs[i] = v
	}
	outputs := make(xdr.ScVec, len(tx.Outputs))
	for i, out := range tx.Outputs {
		v, err := out.ToScVal()
		if err != nil {
			return xdr.ScVal{}, err
		}
		outputs[i] = v
	}
	data := make(xdr.ScVec, len(tx.OutputsData))
	for i, d := range tx.OutputsData {
		v, err := scval.WrapScBytes(d)
		if err != nil {
			return xdr.ScVal{}, err
		}
		data[i] = v
	}
	m, err := wire.MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolTxCellDeps, SymbolTxInputs, SymbolTxOutputs, SymbolTxOutputsData},
		[]xdr.ScVal{
			scval.MustWrapVec(deps),
			scval.MustWrapVec(inputs),
			scval.MustWrapVec(outputs),
			scval.MustWrapVec(data),
		},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}
