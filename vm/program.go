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

package vm

// Program is a script's logic. Run returns nil iff the script accepts the transaction. It must
// only depend on what host returns.
type Program interface {
	Run(host Host) error
}

// ProgramFunc adapts a function to a Program.
type ProgramFunc func(host Host) error

// Run calls f(host).
func (f ProgramFunc) Run(host Host) error {
	return f(host)
}

// AlwaysSuccess accepts every transaction.
var AlwaysSuccess Program = ProgramFunc(func(Host) error { return nil })
