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

// Package vm defines the interface between the ledger's execution environment and the scripts
// it runs. A script only sees the transaction under validation through a Host.
package vm

import (
	"errors"
	"fmt"
)

// HashLength is the length of transaction hashes and lock identities.
const HashLength = 32

// ErrIndexOutOfBound signals the end of a record or witness list. It is the only way a Host
// reports end-of-list; every other error is a failure of the Host itself.
var ErrIndexOutOfBound = errors.New("index out of bound")

// Source selects which list of records or witnesses a Host lookup reads from.
type Source uint8

const (
	// SourceInput is every input of the transaction.
	SourceInput Source = iota
	// SourceOutput is every output of the transaction.
	SourceOutput
	// SourceGroupInput is the inputs of the running script's group.
	SourceGroupInput
	// SourceGroupOutput is the outputs of the running script's group.
	SourceGroupOutput
	// SourceCellDep is the transaction's cell dependencies.
	SourceCellDep
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "Input"
	case SourceOutput:
		return "Output"
	case SourceGroupInput:
		return "GroupInput"
	case SourceGroupOutput:
		return "GroupOutput"
	case SourceCellDep:
		return "CellDep"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Host gives a running script read access to the transaction it validates.
//
// Record lookups address the index-th record of source. For group sources of witnesses, the
// index-th witness is the one at the transaction position of the group's index-th input.
type Host interface {
	// Args returns the static arguments of the running script.
	Args() []byte
	// TxHash returns the hash of the transaction, which excludes its witnesses.
	TxHash() [HashLength]byte
	// Witness returns the raw witness at index of source.
	Witness(index int, source Source) ([]byte, error)
	// RecordData returns the data payload of a record.
	RecordData(index int, source Source) ([]byte, error)
	// RecordLockHash returns the lock identity of a record.
	RecordLockHash(index int, source Source) ([HashLength]byte, error)
	// RecordCapacity returns the capacity of a record.
	RecordCapacity(index int, source Source) (uint64, error)
}
