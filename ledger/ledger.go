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
	"context"
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/pkg/errors"
	"perun.network/go-perun/log"
	"polycry.pt/poly-go/sync"

	"perun.network/perun-utxo-backend/vm"
)

// ScriptRef names deployed script code: the code hash scripts refer to and the cell dep a
// transaction must include to run it.
type ScriptRef struct {
	CodeHash Hash
	Dep      CellDep
}

// Script returns the script running the referenced code with args.
func (r ScriptRef) Script(args []byte) Script {
	return Script{CodeHash: r.CodeHash, Args: args}
}

type entry struct {
	record   Record
	data     []byte
	consumed bool
	spentBy  Hash
}

// Ledger is an in-memory UTXO ledger. It validates submitted transactions by running the
// programs of their script groups and commits them atomically.
type Ledger struct {
	log.Embedding

	mu       sync.Mutex
	cfg      Config
	records  map[OutPoint]*entry
	programs map[Hash]vm.Program
	txs      map[Hash]*Transaction
	genesis  uint64
}

// NewLedger returns an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ledger{
		Embedding: log.MakeEmbedding(log.Default()),
		cfg:       cfg,
		records:   make(map[OutPoint]*entry),
		programs:  make(map[Hash]vm.Program),
		txs:       make(map[Hash]*Transaction),
	}
}

// Deploy stores a code record for program and registers program under the record's code hash.
// The code record cannot be spent.
func (l *Ledger) Deploy(name string, program vm.Program) ScriptRef {
	data := []byte(name)
	codeHash := HashBytes(data)
	r := Record{}
	r.Capacity = r.OccupiedCapacity(data)

	l.mu.Lock()
	defer l.mu.Unlock()
	op := l.addGenesis(r, data)
	l.programs[codeHash] = program
	l.Log().WithField("code", codeHash).Debugf("deployed script %q", name)
	return ScriptRef{CodeHash: codeHash, Dep: CellDep{OutPoint: op}}
}

// AddRecord creates a live record without a transaction.
func (l *Ledger) AddRecord(r Record, data []byte) OutPoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addGenesis(r, append([]byte(nil), data...))
}

func (l *Ledger) addGenesis(r Record, data []byte) OutPoint {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], l.genesis)
	l.genesis++
	op := OutPoint{TxHash: HashBytes([]byte("genesis"), counter[:])}
	l.records[op] = &entry{record: r, data: data}
	return op
}

// Submit validates tx and commits it. A rejected transaction leaves the ledger unchanged.
func (l *Ledger) Submit(ctx context.Context, tx *Transaction) (Hash, error) {
	if !l.mu.TryLockCtx(ctx) {
		return Hash{}, errors.Wrap(ctx.Err(), "locking ledger")
	}
	defer l.mu.Unlock()

	txHash := tx.Hash()
	if err := l.verify(txHash, tx); err != nil {
		l.Log().WithField("tx", txHash).WithError(err).Debug("transaction rejected")
		return Hash{}, err
	}
	l.commit(txHash, tx)
	l.Log().WithField("tx", txHash).Debugf("transaction committed: %d inputs, %d outputs",
		len(tx.Inputs), len(tx.Outputs))
	return txHash, nil
}

// Record returns a record and its data, whether it is live or not.
func (l *Ledger) Record(op OutPoint) (Record, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.records[op]
	if !ok {
		return Record{}, nil, errors.Wrapf(ErrUnknownRecord, "%v", op)
	}
	return e.record, append([]byte(nil), e.data...), nil
}

// RecordData returns the data of a record, whether it is live or not.
func (l *Ledger) RecordData(op OutPoint) ([]byte, error) {
	_, data, err := l.Record(op)
	return data, err
}

// IsLive reports whether op references a record that has not been consumed.
func (l *Ledger) IsLive(op OutPoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.records[op]
	return ok && !e.consumed
}

// SpentBy returns the hash of the transaction that consumed op. It returns false while op is live
// or unknown.
func (l *Ledger) SpentBy(op OutPoint) (Hash, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.records[op]
	if !ok || !e.consumed {
		return Hash{}, false
	}
	return e.spentBy, true
}

// Transaction returns a committed transaction.
func (l *Ledger) Transaction(hash Hash) (*Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[hash]
	return tx, ok
}

// LiveRecordsByLock returns the live records guarded by lock, ordered by outpoint.
func (l *Ledger) LiveRecordsByLock(lock Script) []OutPoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ops []OutPoint
	for op, e := range l.records {
		if !e.consumed && e.record.Lock.Equal(lock) {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if c := bytes.Compare(ops[i].TxHash[:], ops[j].TxHash[:]); c != 0 {
			return c < 0
		}
		return ops[i].Index < ops[j].Index
	})
	return ops
}

func (l *Ledger) verify(txHash Hash, tx *Transaction) error {
	if err := l.checkShape(tx); err != nil {
		return err
	}
	inputs, err := l.resolveInputs(tx.Inputs)
	if err != nil {
		return err
	}
	deps, err := l.resolveDeps(tx.CellDeps)
	if err != nil {
		return err
	}
	if err := checkCapacity(tx, inputs); err != nil {
		return err
	}

	code := make(map[Hash]bool, len(deps))
	for _, d := range deps {
		code[HashBytes(d.data)] = true
	}
	for _, g := range lockGroups(tx, inputs) {
		host := &txHost{tx: tx, txHash: txHash, inputs: inputs, deps: deps, group: g}
		if err := l.runGroup(code, host, false); err != nil {
			return err
		}
	}
	for _, g := range typeGroups(tx, inputs) {
		host := &txHost{tx: tx, txHash: txHash, inputs: inputs, deps: deps, group: g}
		if err := l.runGroup(code, host, true); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) checkShape(tx *Transaction) error {
	switch {
	case len(tx.Inputs) == 0:
		return ErrNoInputs
	case len(tx.Inputs) > l.cfg.MaxInputs:
		return errors.Wrapf(ErrTooManyInputs, "%d > %d", len(tx.Inputs), l.cfg.MaxInputs)
	case len(tx.Outputs) > l.cfg.MaxOutputs:
		return errors.Wrapf(ErrTooManyOutputs, "%d > %d", len(tx.Outputs), l.cfg.MaxOutputs)
	case len(tx.OutputsData) != len(tx.Outputs):
		return errors.Wrap(ErrMalformed, "outputs and outputs data differ in length")
	case len(tx.Witnesses) > len(tx.Inputs):
		return errors.Wrap(ErrMalformed, "more witnesses than inputs")
	}
	for i, w := range tx.Witnesses {
		if len(w) > l.cfg.MaxWitnessSize {
			return errors.Wrapf(ErrMalformed, "witness %d exceeds %d bytes", i, l.cfg.MaxWitnessSize)
		}
	}
	return nil
}

func (l *Ledger) resolveInputs(ops []OutPoint) ([]resolvedRecord, error) {
	seen := make(map[OutPoint]bool, len(ops))
	inputs := make([]resolvedRecord, len(ops))
	for i, op := range ops {
		if seen[op] {
			return nil, errors.Wrapf(ErrDoubleSpend, "input %d: %v", i, op)
		}
		seen[op] = true
		e, err := l.live(op)
		if err != nil {
			return nil, errors.WithMessagef(err, "input %d", i)
		}
		inputs[i] = resolvedRecord{outPoint: op, record: e.record, data: e.data}
	}
	return inputs, nil
}

func (l *Ledger) resolveDeps(deps []CellDep) ([]resolvedRecord, error) {
	resolved := make([]resolvedRecord, len(deps))
	for i, d := range deps {
		e, err := l.live(d.OutPoint)
		if err != nil {
			return nil, errors.WithMessagef(err, "cell dep %d", i)
		}
		resolved[i] = resolvedRecord{outPoint: d.OutPoint, record: e.record, data: e.data}
	}
	return resolved, nil
}

func (l *Ledger) live(op OutPoint) (*entry, error) {
	e, ok := l.records[op]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRecord, "%v", op)
	}
	if e.consumed {
		return nil, errors.Wrapf(ErrDeadRecord, "%v", op)
	}
	return e, nil
}

func checkCapacity(tx *Transaction, inputs []resolvedRecord) error {
	var in, out, carry uint64
	for _, r := range inputs {
		if in, carry = bits.Add64(in, r.record.Capacity, 0); carry != 0 {
			return errors.Wrap(ErrMalformed, "input capacity overflows")
		}
	}
	for i, r := range tx.Outputs {
		if occupied := r.OccupiedCapacity(tx.OutputsData[i]); r.Capacity < occupied {
			return errors.Wrapf(ErrInsufficientCapacity, "output %d: %d < %d", i, r.Capacity, occupied)
		}
		if out, carry = bits.Add64(out, r.Capacity, 0); carry != 0 {
			return errors.Wrap(ErrCapacityOverflow, "output capacity overflows")
		}
	}
	if out > in {
		return errors.Wrapf(ErrCapacityOverflow, "%d > %d", out, in)
	}
	return nil
}

func (l *Ledger) runGroup(code map[Hash]bool, host *txHost, isType bool) error {
	g := host.group
	if !code[g.script.CodeHash] {
		return errors.Wrapf(ErrMissingCellDep, "script %v", g.hash)
	}
	program, ok := l.programs[g.script.CodeHash]
	if !ok {
		return errors.Wrapf(ErrUnknownScript, "code %v", g.script.CodeHash)
	}
	if err := program.Run(host); err != nil {
		return &ScriptError{Script: g.hash, Type: isType, Err: err}
	}
	return nil
}

func (l *Ledger) commit(txHash Hash, tx *Transaction) {
	for _, op := range tx.Inputs {
		e := l.records[op]
		e.consumed = true
		e.spentBy = txHash
	}
	for i, r := range tx.Outputs {
		op := OutPoint{TxHash: txHash, Index: uint32(i)}
		l.records[op] = &entry{record: r, data: append([]byte(nil), tx.OutputsData[i]...)}
	}
	l.txs[txHash] = tx
}
