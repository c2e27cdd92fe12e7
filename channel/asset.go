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

package channel

import (
	"fmt"

	"perun.network/perun-utxo-backend/wire"
)

// Asset identifies a fungible value type held in a channel.
type Asset uint32

// CapacityAsset is the ledger's base resource. It is the only supported asset.
const CapacityAsset Asset = 0

// Supported reports whether channels can hold a.
func (a Asset) Supported() bool {
	return a == CapacityAsset
}

func (a Asset) String() string {
	if a == CapacityAsset {
		return "capacity"
	}
	return fmt.Sprintf("asset(%d)", uint32(a))
}

// AssetAmount is an amount of a single asset.
type AssetAmount struct {
	Asset  Asset
	Amount uint64
}

// NewCapacityAmount returns amount units of CapacityAsset.
func NewCapacityAmount(amount uint64) AssetAmount {
	return AssetAmount{Asset: CapacityAsset, Amount: amount}
}

// WireAmount converts the amount to its on-record form.
func (a AssetAmount) WireAmount() wire.Amount {
	return wire.NewAmount(a.Amount)
}
