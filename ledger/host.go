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
	"fmt"

	"perun.network/perun-utxo-backend/vm"
)

// resolvedRecord is a live record referenced by a transaction under validation.
type resolvedRecord struct {
	outPoint OutPoint
	record   Record
	data     []byte
}

// scriptGroup collects the inputs and outputs of a transaction that share a script.
type scriptGroup struct {
	script  Script
	hash    Hash
	inputs  []int
	outputs []int
}

// txHost is the vm.Host of a single script group.
type txHost struct {
	tx     *Transaction
	txHash Hash
	inputs []resolvedRecord
	deps   []resolvedRecord
	group  *scriptGroup
}

var _ vm.Host = (*txHost)(nil)

func (h *txHost) Args() []byte {
	return append([]byte(nil), h.group.script.Args...)
}

func (h *txHost) TxHash() [vm.HashLength]byte {
	return h.txHash
}

func (h *txHost) Witness(index int, source vm.Source) ([]byte, error) {
	if index < 0 {
		return nil, vm.ErrIndexOutOfBound
	}
	pos := index
	switch source {
	case vm.SourceInput:
		if index >= len(h.inputs) {
			return nil, vm.ErrIndexOutOfBound
		}
	case vm.SourceGroupInput:
		if index >= len(h.group.inputs) {
			return nil, vm.ErrIndexOutOfBound
		}
		pos = h.group.inputs[index]
	default:
		return nil, fmt.Errorf("witness lookup: unsupported source %v", source)
	}
	if pos >= len(h.tx.Witnesses) {
		return nil, vm.ErrIndexOutOfBound
	}
	return append([]byte(nil), h.tx.Witnesses[pos]...), nil
}

func (h *txHost) RecordData(index int, source vm.Source) ([]byte, error) {
	_, data, err := h.lookup(index, source)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

func (h *txHost) RecordLockHash(index int, source vm.Source) ([vm.HashLength]byte, error) {
	r, _, err := h.lookup(index, source)
	if err != nil {
		return Hash{}, err
	}
	return r.Lock.Hash(), nil
}

func (h *txHost) RecordCapacity(index int, source vm.Source) (uint64, error) {
	r, _, err := h.lookup(index, source)
	if err != nil {
		return 0, err
	}
	return r.Capacity, nil
}

func (h *txHost) lookup(index int, source vm.Source) (Record, []byte, error) {
	if index < 0 {
		return Record{}, nil, vm.ErrIndexOutOfBound
	}
	switch source {
	case vm.SourceInput:
		if index >= len(h.inputs) {
			return Record{}, nil, vm.ErrIndexOutOfBound
		}
		return h.inputs[index].record, h.inputs[index].data, nil
	case vm.SourceOutput:
		if index >= len(h.tx.Outputs) {
			return Record{}, nil, vm.ErrIndexOutOfBound
		}
		return h.tx.Outputs[index], h.tx.OutputsData[index], nil
	case vm.SourceGroupInput:
		if index >= len(h.group.inputs) {
			return Record{}, nil, vm.ErrIndexOutOfBound
		}
		in := h.inputs[h.group.inputs[index]]
		return in.record, in.data, nil
	case vm.SourceGroupOutput:
		if index >= len(h.group.outputs) {
			return Record{}, nil, vm.ErrIndexOutOfBound
		}
		pos := h.group.outputs[index]
		return h.tx.Outputs[pos], h.tx.OutputsData[pos], nil
	case vm.SourceCellDep:
		if index >= len(h.deps) {
			return Record{}, nil, vm.ErrIndexOutOfBound
		}
		return h.deps[index].record, h.deps[index].data, nil
	default:
		return Record{}, nil, fmt.Errorf("record lookup: unsupported source %v", source)
	}
}

// lockGroups groups the inputs and outputs of tx by lock script. Only scripts guarding at least
// one input form a group. Groups are ordered by first appearance.
func lockGroups(tx *Transaction, inputs []resolvedRecord) []*scriptGroup {
	var groups []*scriptGroup
	byHash := make(map[Hash]*scriptGroup)
	for i, in := range inputs {
		h := in.record.Lock.Hash()
		g, ok := byHash[h]
		if !ok {
			g = &scriptGroup{script: in.record.Lock, hash: h}
			byHash[h] = g
			groups = append(groups, g)
		}
		g.inputs = append(g.inputs, i)
	}
	for i, out := range tx.Outputs {
		if g, ok := byHash[out.Lock.Hash()]; ok {
			g.outputs = append(g.outputs, i)
		}
	}
	return groups
}

// typeGroups groups the inputs and outputs of tx by type script.
func typeGroups(tx *Transaction, inputs []resolvedRecord) []*scriptGroup {
	var groups []*scriptGroup
	byHash := make(map[Hash]*scriptGroup)
	group := func(s *Script) *scriptGroup {
		h := s.Hash()
		g, ok := byHash[h]
		if !ok {
			g = &scriptGroup{script: *s, hash: h}
			byHash[h] = g
			groups = append(groups, g)
		}
		return g
	}
	for i, in := range inputs {
		if in.record.Type != nil {
			g := group(in.record.Type)
			g.inputs = append(g.inputs, i)
		}
	}
	for i, out := range tx.Outputs {
		if out.Type != nil {
			g := group(out.Type)
			g.outputs = append(g.outputs, i)
		}
	}
	return groups
}
