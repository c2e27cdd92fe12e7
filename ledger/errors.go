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

	"github.com/pkg/errors"
)

var (
	ErrNoInputs             = errors.New("transaction has no inputs")
	ErrTooManyInputs        = errors.New("too many inputs")
	ErrTooManyOutputs       = errors.New("too many outputs")
	ErrMalformed            = errors.New("malformed transaction")
	ErrUnknownRecord        = errors.New("unknown record")
	ErrDeadRecord           = errors.New("record already consumed")
	ErrDoubleSpend          = errors.New("record spent twice in the same transaction")
	ErrInsufficientCapacity = errors.New("output capacity below occupied capacity")
	ErrCapacityOverflow     = errors.New("outputs exceed input capacity")
	ErrMissingCellDep       = errors.New("script code not referenced by a cell dep")
	ErrUnknownScript        = errors.New("no program registered for script code")
	ErrScriptFailed         = errors.New("script rejected transaction")
)

// ScriptError is returned if the program of a script group rejects a transaction.
type ScriptError struct {
	// Script is the hash of the failing script.
	Script Hash
	// Type is true for type scripts, false for lock scripts.
	Type bool
	Err  error
}

func (e *ScriptError) Error() string {
	kind := "lock"
	if e.Type {
		kind = "type"
	}
	return fmt.Sprintf("%s script %v: %v", kind, e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Is makes every ScriptError match ErrScriptFailed.
func (e *ScriptError) Is(target error) bool {
	return target == ErrScriptFailed
}
