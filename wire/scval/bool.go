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

package scval

import (
	"errors"

	"github.com/stellar/go/xdr"
)

var ErrNotBool = errors.New("expected bool")

func WrapBool(b bool) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvBool, b)
}

// UnwrapBool returns the bool held by v.
func UnwrapBool(v xdr.ScVal) (bool, error) {
	b, ok := v.GetB()
	if !ok {
		return false, ErrNotBool
	}
	return b, nil
}
