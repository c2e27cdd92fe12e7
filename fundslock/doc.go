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

// Package fundslock implements the lock script guarding the funds committed to a payment channel.
//
// A funds record carries a 16 byte little-endian amount as its data. The script's static
// arguments are the lock hash of the channel's control record, i.e. the channel-state record.
// The control record is only trusted if its parameters hash to its channel id and that id
// derives the lock hash in the arguments.
// A group of funds records may only be spent if
//   - the witness of the group authorizes the spend on behalf of the channel's parties and
//   - the amounts of the group's outputs add up to the amounts of its inputs, each output
//     holding at least its amount in capacity.
package fundslock
