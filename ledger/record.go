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
	"fmt"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire"
	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	// CapacityFieldSize is the space taken by a record's capacity field.
	CapacityFieldSize = 8

	SymbolOutPointTxHash xdr.ScSymbol = "tx_hash"
	SymbolOutPointIndex  xdr.ScSymbol = "index"
	SymbolRecordCapacity xdr.ScSymbol = "capacity"
	SymbolRecordLock     xdr.ScSymbol = "lock"
	SymbolRecordType     xdr.ScSymbol = "type"
)

// OutPoint references the output Index of the transaction TxHash.
type OutPoint struct {
	TxHash Hash
	Index  uint32
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%v:%d", o.TxHash, o.Index)
}

func (o OutPoint) ToScVal() (xdr.ScVal, error) {
	txHash, err := scval.WrapScBytes(o.TxHash[:])
	if err != nil {
		return xdr.ScVal{}, err
	}
	index, err := scval.WrapUint32(xdr.Uint32(o.Index))
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := wire.MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolOutPointTxHash, SymbolOutPointIndex},
		[]xdr.ScVal{txHash, index},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

// CellDep references a record whose data a transaction reads without consuming it, usually the
// code of a script.
type CellDep struct {
	OutPoint OutPoint
}

// Record is a ledger output. Its data payload is stored next to it.
type Record struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// OccupiedCapacity returns the minimum capacity a record needs to store itself and data.
func (r Record) OccupiedCapacity(data []byte) uint64 {
	c := CapacityFieldSize + r.Lock.Size() + uint64(len(data))
	if r.Type != nil {
		c += r.Type.Size()
	}
	return c
}

func (r Record) ToScVal() (xdr.ScVal, error) {
	capacity, err := scval.WrapUint64(xdr.Uint64(r.Capacity))
	if err != nil {
		return xdr.ScVal{}, err
	}
	lock, err := r.Lock.ToScVal()
	if err != nil {
		return xdr.ScVal{}, err
	}
	typ := scval.MustWrapVoid()
	if r.Type != nil {
		if typ, err = r.Type.ToScVal(); err != nil {
			return xdr.ScVal{}, err
		}
	}
	m, err := wire.MakeSymbolScMap(
		[]xdr.ScSymbol{SymbolRecordCapacity, SymbolRecordLock, SymbolRecordType},
		[]xdr.ScVal{capacity, lock, typ},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

type scValer interface {
	ToScVal() (xdr.ScVal, error)
}

func marshal(s scValer) ([]byte, error) {
	v, err := s.ToScVal()
	if err != nil {
		return nil, err
	}
	buf := bytes.Buffer{}
	if err := v.EncodeTo(xdr3.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
