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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stellar/go/xdr"

	"perun.network/perun-utxo-backend/wire/scval"
)

// ErrKeyNotFound is returned if a symbol map does not contain a requested key.
var ErrKeyNotFound = errors.New("key not found")

// MakeSymbolScMap creates a xdr.ScMap from a slice of symbols and a slice of values.
// The entries are sorted lexicographically by symbol. We expect that keys does not contain duplicates.
func MakeSymbolScMap(keys []xdr.ScSymbol, values []xdr.ScVal) (xdr.ScMap, error) {
	if len(keys) != len(values) {
		return xdr.ScMap{}, errors.New("keys and values must have the same length")
	}
	m := make(xdr.ScMap, len(keys))
	for i, k := range keys {
		m[i] = xdr.ScMapEntry{
			Key: scval.MustWrapScSymbol(k),
			Val: values[i],
		}
	}
	sort.Slice(m, func(i, j int) bool {
		return strings.Compare(string(m[i].Key.MustSym()), string(m[j].Key.MustSym())) < 0
	})
	return m, nil
}

func GetScMapEntry(key xdr.ScVal, m xdr.ScMap) (xdr.ScMapEntry, error) {
	for _, v := range m {
		if v.Key.Equals(key) {
			return v, nil
		}
	}
	return xdr.ScMapEntry{}, ErrKeyNotFound
}

func GetMapValue(key xdr.ScVal, m xdr.ScMap) (xdr.ScVal, error) {
	entry, err := GetScMapEntry(key, m)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return entry.Val, nil
}

func GetScMapValueFromSymbol(key xdr.ScSymbol, m xdr.ScMap) (xdr.ScVal, error) {
	keyVal, err := scval.WrapScSymbol(key)
	if err != nil {
		return xdr.ScVal{}, err
	}
	v, err := GetMapValue(keyVal, m)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// symbolMap unwraps v as a map with exactly n entries.
func symbolMap(v xdr.ScVal, n int, what string) (xdr.ScMap, error) {
	m, ok := v.GetMap()
	if !ok || m == nil {
		return nil, fmt.Errorf("expected map decoding %s", what)
	}
	if len(*m) != n {
		return nil, fmt.Errorf("expected map of length %d decoding %s", n, what)
	}
	return *m, nil
}

func getBytes(m xdr.ScMap, key xdr.ScSymbol) ([]byte, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return nil, err
	}
	b, ok := v.GetBytes()
	if !ok {
		return nil, fmt.Errorf("expected bytes for %s", key)
	}
	return b, nil
}

// getOptionalBytes returns nil for a void value.
func getOptionalBytes(m xdr.ScMap, key xdr.ScSymbol) ([]byte, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return nil, err
	}
	if v.Type == xdr.ScValTypeScvVoid {
		return nil, nil
	}
	b, ok := v.GetBytes()
	if !ok {
		return nil, fmt.Errorf("expected bytes or void for %s", key)
	}
	return append([]byte{}, b...), nil
}

func getUint64(m xdr.ScMap, key xdr.ScSymbol) (uint64, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return 0, err
	}
	u, ok := v.GetU64()
	if !ok {
		return 0, fmt.Errorf("expected uint64 for %s", key)
	}
	return uint64(u), nil
}

func getUint32(m xdr.ScMap, key xdr.ScSymbol) (uint32, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return 0, err
	}
	u, ok := v.GetU32()
	if !ok {
		return 0, fmt.Errorf("expected uint32 for %s", key)
	}
	return uint32(u), nil
}

func getBool(m xdr.ScMap, key xdr.ScSymbol) (bool, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return false, err
	}
	b, err := scval.UnwrapBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getVec(m xdr.ScMap, key xdr.ScSymbol) (xdr.ScVec, error) {
	v, err := GetScMapValueFromSymbol(key, m)
	if err != nil {
		return nil, err
	}
	vec, ok := v.GetVec()
	if !ok || vec == nil {
		return nil, fmt.Errorf("expected vec for %s", key)
	}
	return *vec, nil
}
