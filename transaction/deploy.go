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

package transaction

import (
	"perun.network/perun-utxo-backend/fundslock"
	"perun.network/perun-utxo-backend/ledger"
	"perun.network/perun-utxo-backend/vm"
)

// Script names under which Deploy stores the channel scripts.
const (
	ChannelLockName   = "perun-channel-lockscript"
	ChannelTypeName   = "perun-channel-typescript"
	FundsLockName     = "perun-funds-lockscript"
	AlwaysSuccessName = "always-success"
	PaymentLockName   = "payment-lockscript"
)

// Deployer stores script code on a ledger.
type Deployer interface {
	Deploy(name string, program vm.Program) ledger.ScriptRef
}

// Deploy deploys the channel scripts and returns the resulting environment. The funds lock
// verifies signatures with verifier and only trusts control records under the deployed channel
// lock. The channel lock, the channel type and the payment lock accept every transition.
func Deploy(d Deployer, verifier fundslock.Verifier) Env {
	env := Env{
		ChannelLock:        d.Deploy(ChannelLockName, vm.AlwaysSuccess),
		ChannelType:        d.Deploy(ChannelTypeName, vm.AlwaysSuccess),
		AlwaysSuccess:      d.Deploy(AlwaysSuccessName, vm.AlwaysSuccess),
		PaymentLock:        d.Deploy(PaymentLockName, vm.AlwaysSuccess),
		MinPaymentCapacity: DefaultMinPaymentCapacity,
	}
	env.FundsLock = d.Deploy(FundsLockName, fundslock.NewValidator(verifier, env))
	return env
}
