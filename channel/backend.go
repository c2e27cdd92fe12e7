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

	pchannel "perun.network/go-perun/channel"
	pwallet "perun.network/go-perun/wallet"

	"perun.network/perun-utxo-backend/wallet"
	"perun.network/perun-utxo-backend/wire"
)

// CalcID derives the channel id from the channel's parameters.
func CalcID(params wire.Params) (pchannel.ID, error) {
	return params.ID()
}

// EncodeState returns the encoding of state that parties sign.
func EncodeState(state wire.State) ([]byte, error) {
	return state.MarshalBinary()
}

// SignState signs state with account.
func SignState(account pwallet.Account, state wire.State) (pwallet.Sig, error) {
	bytes, err := EncodeState(state)
	if err != nil {
		return nil, err
	}
	return account.SignData(bytes)
}

// VerifyState reports whether sig is a signature of state by the SEC1 encoded pubKey.
func VerifyState(pubKey []byte, state wire.State, sig []byte) (bool, error) {
	bytes, err := EncodeState(state)
	if err != nil {
		return false, err
	}
	return wallet.VerifySignature(pubKey, bytes, sig), nil
}

// VerifyStateSigs checks that sigs holds a valid signature of state by every party of params, in
// party order.
func VerifyStateSigs(params wire.Params, state wire.State, sigs [][]byte) error {
	if len(sigs) != params.NumParts() {
		return fmt.Errorf("expected %d signatures, got %d", params.NumParts(), len(sigs))
	}
	for i, part := range params.Parties {
		ok, err := VerifyState(part.PubKey, state, sigs[i])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("invalid signature of party %d", i)
		}
	}
	return nil
}

// MakeParams creates the parameters of a channel between the parties of agreement.
func MakeParams(agreement *FundingAgreement, paymentLockHash [wire.HashLength]byte, minCapacity uint64,
	nonce [wire.NonceLength]byte, challengeDuration uint64) (wire.Params, error) {
	params := wire.Params{
		Parties:           agreement.MkParticipants(paymentLockHash, minCapacity),
		Nonce:             nonce,
		ChallengeDuration: challengeDuration,
	}
	return params, params.Valid()
}

// InitialChannel returns the channel as created by participant opener: the initial state holds
// every party's commitment and only the opener has funded.
func InitialChannel(params wire.Params, agreement *FundingAgreement, opener uint8) (wire.Channel, error) {
	if agreement.NumParts() != params.NumParts() {
		return wire.Channel{}, ErrBalancesLength
	}
	if int(opener) >= agreement.NumParts() {
		return wire.Channel{}, fmt.Errorf("%w: %d", ErrUnknownIndex, opener)
	}
	id, err := CalcID(params)
	if err != nil {
		return wire.Channel{}, err
	}
	bals, err := agreement.InitialBalances()
	if err != nil {
		return wire.Channel{}, err
	}
	funding, err := agreement.MkBalances(opener)
	if err != nil {
		return wire.Channel{}, err
	}
	ch := wire.MakeChannel(
		params,
		wire.State{ChannelID: id, Balances: bals},
		wire.Control{Funding: funding},
	)
	ch.Control.Funded = ch.FullyFunded()
	return ch, nil
}
