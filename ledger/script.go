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
	"bytes"

	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire"
	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	SymbolScriptCodeHash xdr.ScSymbol = "code_hash"
	SymbolScriptArgs     xdr.ScSymbol = "args"
)

// Script selects the program guarding or interpreting a record and its static arguments.
type Script struct {
	CodeHash Hash
	Args     []byte
}

// Hash returns the script's identity, the hash of its encoding.
func (s Script) Hash() Hash {
	b, err := marshal(s)
	if err != nil {
		panic(err) // encoding a script cannot fail
	}
	return HashBytes(b)
}

// Equal reports whether s and t are the same script.
func (s Script) Equal(t Script) bool {
	return s.CodeHash == t.CodeHash && bytes.Equal(s.Args, t.Args)
}

// Size returns the number of bytes the script occupies in a record.
func (s Script) Size() uint64 {
	return HashLength + uint64(len(s.Args))
}

func (s Script) ToScVal() (xdr.ScVal, error) {
	codeHash, err := scval.WrapScBytes(s.CodeHash[:])
	if err != nil {
		return xdr.ScVal{}, err
	}
	args, err := scval.WrapScBytes(s.Args)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := wire.MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolScriptCodeHash, SymbolScriptArgs},
		[]xdr.ScVal{codeHash, args},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}
