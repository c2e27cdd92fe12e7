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

import "github.com/stellar/go/xdr"

func WrapScMap(m xdr.ScMap) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvMap, &m)
}

func WrapVec(vec xdr.ScVec) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvVec, &vec)
}

func MustWrapVec(vec xdr.ScVec) xdr.ScVal {
	v, err := WrapVec(vec)
	if err != nil {
		panic(err)
	}
	return v
}

func WrapScSymbol(symbol xdr.ScSymbol) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvSymbol, symbol)
}

func MustWrapScSymbol(symbol xdr.ScSymbol) xdr.ScVal {
	v, err := WrapScSymbol(symbol)
	if err != nil {
		panic(err)
	}
	return v
}

func WrapScBytes(b xdr.ScBytes) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvBytes, b)
}

func WrapUint64(i xdr.Uint64) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvU64, i)
}

func WrapUint32(i xdr.Uint32) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvU32, i)
}

func WrapUInt128Parts(parts xdr.UInt128Parts) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvU128, parts)
}

// WrapVoid returns the unit value, used to encode absent optional fields.
func WrapVoid() (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvVoid, nil)
}

func MustWrapVoid() xdr.ScVal {
	v, err := WrapVoid()
	if err != nil {
		panic(err)
	}
	return v
}

// WrapOptionalBytes wraps b as bytes, or as void if b is nil.
func WrapOptionalBytes(b []byte) (xdr.ScVal, error) {
	if b == nil {
		return WrapVoid()
	}
	return WrapScBytes(b)
}
