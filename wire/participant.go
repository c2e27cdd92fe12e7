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

package wire

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

const (
	// PubKeyLength is the length of an uncompressed SEC1 secp256k1 public key.
	PubKeyLength = 65
	// HashLength is the length of lock identities and code hashes.
	HashLength = 32

	SymbolPaymentLockHash    xdr.ScSymbol = "payment_lock_hash"
	SymbolPaymentMinCapacity xdr.ScSymbol = "payment_min_capacity"
	SymbolPaymentArgs        xdr.ScSymbol = "payment_args"
	SymbolUnlockArgs         xdr.ScSymbol = "unlock_args"
	SymbolPubKey             xdr.ScSymbol = "pub_key"
)

var ErrInvalidPubKey = errors.New("invalid public key")

// Participant is a channel party as stored in the channel-state record.
type Participant struct {
	// PaymentLockHash is the code hash of the lock guarding the participant's payouts.
	PaymentLockHash [HashLength]byte
	// PaymentMinCapacity is the minimum capacity of a payout record.
	PaymentMinCapacity uint64
	// PaymentArgs are the arguments of the payout lock.
	PaymentArgs []byte
	// UnlockArgs are the arguments the participant uses to unlock channel records.
	UnlockArgs []byte
	// PubKey is the SEC1 uncompressed secp256k1 key that signs channel states.
	PubKey []byte
}

// PublicKey returns the participant's key as an ecdsa.PublicKey.
func (p Participant) PublicKey() (*ecdsa.PublicKey, error) {
	return BytesToPublicKey(p.PubKey)
}

// SamePayout reports whether p and q pay out to the same lock.
func (p Participant) SamePayout(q Participant) bool {
	return p.PaymentLockHash == q.PaymentLockHash && bytes.Equal(p.PaymentArgs, q.PaymentArgs)
}

// ToScVal encodes a Participant to an xdr.ScVal.
func (p Participant) ToScVal() (xdr.ScVal, error) {
	if len(p.PubKey) != PubKeyLength {
		return xdr.ScVal{}, ErrInvalidPubKey
	}
	lockHash, err := scval.WrapScBytes(p.PaymentLockHash[:])
	if err != nil {
		return xdr.ScVal{}, err
	}
	minCapacity, err := scval.WrapUint64(xdr.Uint64(p.PaymentMinCapacity))
	if err != nil {
		return xdr.ScVal{}, err
	}
	paymentArgs, err := scval.WrapScBytes(p.PaymentArgs)
	if err != nil {
		return xdr.ScVal{}, err
	}
	unlockArgs, err := scval.WrapScBytes(p.UnlockArgs)
	if err != nil {
		return xdr.ScVal{}, err
	}
	pubKey, err := scval.WrapScBytes(p.PubKey)
	if err != nil {
		return xdr.ScVal{}, err
	}
	m, err := MakeSymbolScMap(
		[]xdr.ScSymbol{
			SymbolPaymentLockHash,
			SymbolPaymentMinCapacity,
			SymbolPaymentArgs,
			SymbolUnlockArgs,
			SymbolPubKey,
		},
		[]xdr.ScVal{lockHash, minCapacity, paymentArgs, unlockArgs, pubKey},
	)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return scval.WrapScMap(m)
}

// FromScVal decodes a Participant from an xdr.ScVal.
func (p *Participant) FromScVal(v xdr.ScVal) error {
	m, err := symbolMap(v, 5, "Participant") //nolint:gomnd
	if err != nil {
		return err
	}
	lockHash, err := getBytes(m, SymbolPaymentLockHash)
	if err != nil {
		return err
	}
	if len(lockHash) != HashLength {
		return errors.New("invalid payment lock hash length")
	}
	minCapacity, err := getUint64(m, SymbolPaymentMinCapacity)
	if err != nil {
		return err
	}
	paymentArgs, err := getBytes(m, SymbolPaymentArgs)
	if err != nil {
		return err
	}
	unlockArgs, err := getBytes(m, SymbolUnlockArgs)
	if err != nil {
		return err
	}
	pubKey, err := getBytes(m, SymbolPubKey)
	if err != nil {
		return err
	}
	if len(pubKey) != PubKeyLength {
		return ErrInvalidPubKey
	}
	copy(p.PaymentLockHash[:], lockHash)
	p.PaymentMinCapacity = minCapacity
	p.PaymentArgs = append([]byte{}, paymentArgs...)
	p.UnlockArgs = append([]byte{}, unlockArgs...)
	p.PubKey = append([]byte{}, pubKey...)
	return nil
}

// EncodeTo encodes a Participant to an xdr.Encoder.
func (p Participant) EncodeTo(e *xdr3.Encoder) error {
	return encodeScVal(p, e)
}

// DecodeFrom decodes a Participant from an xdr.Decoder.
func (p *Participant) DecodeFrom(d *xdr3.Decoder) (int, error) {
	v, i, err := decodeScVal(d)
	if err != nil {
		return i, err
	}
	return i, p.FromScVal(v)
}

// MarshalBinary encodes a Participant to binary data.
func (p Participant) MarshalBinary() ([]byte, error) {
	return marshalScVal(p)
}

// UnmarshalBinary decodes a Participant from binary data.
func (p *Participant) UnmarshalBinary(data []byte) error {
	v, err := unmarshalScVal(data)
	if err != nil {
		return err
	}
	return p.FromScVal(v)
}

// ParticipantFromScVal creates a Participant from an xdr.ScVal.
func ParticipantFromScVal(v xdr.ScVal) (Participant, error) {
	var p Participant
	err := (&p).FromScVal(v)
	return p, err
}

// PublicKeyToBytes returns the SEC1 uncompressed encoding 0x04 || X || Y of pubKey.
func PublicKeyToBytes(pubKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(pubKey)
}

// BytesToPublicKey parses a SEC1 uncompressed secp256k1 public key.
func BytesToPublicKey(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) != PubKeyLength || data[0] != 0x04 { //nolint:gomnd
		return nil, ErrInvalidPubKey
	}
	pk, err := crypto.UnmarshalPubkey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	return pk, nil
}
