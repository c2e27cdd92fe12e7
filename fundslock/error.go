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

package fundslock

import (
	"errors"
	"fmt"
)

// ErrorKind uniquely identifies the kind of Error returned by the funds lock.
type ErrorKind uint8

const (
	// ErrNoArgs represents an error case where the script has no static
	// arguments.
	ErrNoArgs ErrorKind = iota

	// ErrNoWitness represents an error case where the group's witness slot
	// is missing or carries no lock witness.
	ErrNoWitness

	// ErrEncoding represents an error case where an amount, witness or
	// control record payload is malformed.
	ErrEncoding

	// ErrAmountMismatch represents an error case where the amounts of the
	// group's outputs do not add up to the amounts of its inputs.
	ErrAmountMismatch

	// ErrAuthorizationFailure represents an error case where the witness
	// does not authorize the spend.
	ErrAuthorizationFailure

	// ErrCapabilityFailure represents an error case where the host failed
	// for another reason than reaching the end of a list.
	ErrCapabilityFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNoArgs:
		return "missing script arguments"
	case ErrNoWitness:
		return "missing witness"
	case ErrEncoding:
		return "encoding error"
	case ErrAmountMismatch:
		return "amount mismatch"
	case ErrAuthorizationFailure:
		return "authorization failure"
	case ErrCapabilityFailure:
		return "host failure"
	default:
		return "unknown"
	}
}

// Error represents an error returned by the funds lock.
type Error struct {
	Kind  ErrorKind
	Inner error
}

func newErrKind(kind ErrorKind) Error {
	return Error{Kind: kind}
}

func newErrInner(kind ErrorKind, inner error) Error {
	return Error{Kind: kind, Inner: inner}
}

func (e Error) Error() string {
	if e.Inner == nil {
		return e.Kind.String()
	}
	return fmt.Errorf("%v: %w", e.Kind, e.Inner).Error()
}

func (e Error) String() string {
	return e.Error()
}

func (e Error) Unwrap() error {
	return e.Inner
}

// IsKind reports whether err is a funds lock Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e Error
	return errors.As(err, &e) && e.Kind == kind
}
