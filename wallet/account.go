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
	"crypto/ecdsa"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"perun.network/go-perun/wallet"
)

// Account is a secp256k1 key pair.
type Account struct {
	privateKey *ecdsa.PrivateKey
}

// NewRandomAccount creates a new account with a private key read from rng.
func NewRandomAccount(rng io.Reader) (*Account, error) {
	seed := make([]byte, 32)
	for {
		if _, err := io.ReadFull(rng, seed); err != nil {
			return nil, err
		}
		// Seeds outside the curve order are rejected, retry.
		if k, err := crypto.ToECDSA(seed); err == nil {
			return &Account{privateKey: k}, nil
		}
	}
}

// NewAccount wraps an existing private key.
func NewAccount(k *ecdsa.PrivateKey) *Account {
	return &Account{privateKey: k}
}

// Address returns the Participant this account belongs to.
func (a Account) Address() wallet.Address {
	return a.Participant()
}

// Participant returns the Participant this account belongs to.
func (a Account) Participant() *Participant {
	return NewParticipant(&a.privateKey.PublicKey)
}

// PublicKey returns the account's public key.
func (a Account) PublicKey() *ecdsa.PublicKey {
	return &a.privateKey.PublicKey
}

// PubKeyBytes returns the SEC1 uncompressed public key.
func (a Account) PubKeyBytes() []byte {
	return crypto.FromECDSAPub(&a.privateKey.PublicKey)
}

// SignData signs the keccak256 hash of data. The signature is the 64 byte [R || S] form.
func (a Account) SignData(data []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, errors.New("account has no private key")
	}
	sig, err := crypto.Sign(crypto.Keccak256(data), a.privateKey)
	if err != nil {
		return nil, err
	}
	return sig[:SignatureLength], nil
}
