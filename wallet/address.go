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

package wallet

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/wire"
)

// PubKeyLength is the length of a SEC1 uncompressed secp256k1 public key.
const PubKeyLength = wire.PubKeyLength

// compile time check that we implement the perun Address interface.
var _ wallet.Address = (*Participant)(nil)

// Participant is the off-chain identity of a channel party, its public key. Channel states are
// signed by the matching private key.
type Participant struct {
	PubKey [PubKeyLength]byte
}

// NewParticipant returns the participant identified by pk.
func NewParticipant(pk *ecdsa.PublicKey) *Participant {
	p := &Participant{}
	copy(p.PubKey[:], crypto.FromECDSAPub(pk))
	return p
}

// PublicKey parses the participant's public key.
func (p Participant) PublicKey() (*ecdsa.PublicKey, error) {
	return crypto.UnmarshalPubkey(p.PubKey[:])
}

// MarshalBinary encodes the participant into binary form.
func (p Participant) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), p.PubKey[:]...), nil
}

// UnmarshalBinary decodes the participant from binary form.
func (p *Participant) UnmarshalBinary(data []byte) error {
	if len(data) != PubKeyLength {
		return fmt.Errorf("invalid public key size: %d", len(data))
	}
	copy(p.PubKey[:], data)
	return nil
}

// String returns the hex encoded public key.
func (p Participant) String() string {
	return hexutil.Encode(p.PubKey[:])
}

func (p Participant) Equal(other wallet.Address) bool {
	otherAddress, ok := other.(*Participant)
	if !ok {
		return false
	}
	return p.PubKey == otherAddress.PubKey
}

// Cmp orders participants by their encoded public keys.
func (p Participant) Cmp(other wallet.Address) int {
	return bytes.Compare(p.PubKey[:], AsParticipant(other).PubKey[:])
}

// ZeroAddress returns the participant with an all-zero public key. It cannot sign.
func ZeroAddress() *Participant {
	return &Participant{}
}

func AsParticipant(address wallet.Address) *Participant {
	p, ok := address.(*Participant)
	if !ok {
		panic("address has invalid type")
	}
	return p
}

func ToParticipant(address wallet.Address) (*Participant, error) {
	p, ok := address.(*Participant)
	if !ok {
		return nil, fmt.Errorf("address has invalid type")
	}
	return p, nil
}
