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
	"errors"

	xdr3 "github.com/stellar/go-xdr/xdr3"
	"github.com/stellar/go/xdr"
)

// ErrTrailingBytes is returned if a payload holds more than one encoded value.
var ErrTrailingBytes = errors.New("trailing bytes after encoded value")

// scValer is implemented by every type that has an xdr.ScVal representation.
type scValer interface {
	ToScVal() (xdr.ScVal, error)
}

func encodeScVal(s scValer, e *xdr3.Encoder) error {
	v, err := s.ToScVal()
	if err != nil {
		return err
	}
	return v.EncodeTo(e)
}

func decodeScVal(d *xdr3.Decoder) (xdr.ScVal, int, error) {
	var v xdr.ScVal
	n, err := d.Decode(&v)
	return v, n, err
}

func marshalScVal(s scValer) ([]byte, error) {
	buf := bytes.Buffer{}
	e := xdr3.NewEncoder(&buf)
	err := encodeScVal(s, e)
	return buf.Bytes(), err
}

// unmarshalScVal decodes exactly one xdr.ScVal from data.
func unmarshalScVal(data []byte) (xdr.ScVal, error) {
	r := bytes.NewReader(data)
	v, _, err := decodeScVal(xdr3.NewDecoder(r))
	if err != nil {
		return xdr.ScVal{}, err
	}
	if r.Len() != 0 {
		return xdr.ScVal{}, ErrTrailingBytes
	}
	return v, nil
}
