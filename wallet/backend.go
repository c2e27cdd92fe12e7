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
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/fundslock"
)

// SignatureLength is the length of a signature in bytes.
const SignatureLength = 64

type backend struct{}

var Backend = backend{}

func init() {
	wallet.SetBackend(Backend)
}

func (b backend) NewAddress() wallet.Address {
	return &Participant{}
}

// DecodeSig decodes a signature of length SignatureLength from the reader.
func (b backend) DecodeSig(reader io.Reader) (wallet.Sig, error) {
	sig := make([]byte, SignatureLength)
	if _, err := io.ReadFull(reader, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

func (b backend) VerifySignature(msg []byte, sig wallet.Sig, a wallet.Address) (bool, error) {
	p, ok := a.(*Participant)
	if !ok {
		return false, errors.New("participant has invalid type")
	}
	return VerifySignature(p.PubKey[:], msg, sig), nil
}

// VerifySignature reports whether sig is a signature of msg by the SEC1 encoded pubKey.
func VerifySignature(pubKey, msg, sig []byte) bool {
	if len(sig) != SignatureLength {
		return false
	}
	return crypto.VerifySignature(pubKey, crypto.Keccak256(msg), sig)
}

// Verifier verifies signatures made by accounts of this package.
type Verifier struct{}

var _ fundslock.Verifier = Verifier{}

func (Verifier) Verify(pubKey, msg, sig []byte) bool {
	return VerifySignature(pubKey, msg, sig)
}
