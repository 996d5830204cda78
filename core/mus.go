// Copyright 2025 Poiesic Systems
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


package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes ID values in MUS format.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// DocumentVectorMUS serializes DocumentVector values in MUS format for the
// vector index. Timestamps are stored as Unix microseconds, vector components
// as raw float32 bits.
var DocumentVectorMUS = documentVectorMUS{}

type documentVectorMUS struct{}

func (documentVectorMUS) Marshal(v DocumentVector, bs []byte) (n int) {
	n = ord.String.Marshal(v.Path, bs)
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += varint.Int64.Marshal(v.IndexedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func (documentVectorMUS) Unmarshal(bs []byte) (v DocumentVector, n int, err error) {
	var n1 int
	v.Path, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt = time.UnixMicro(micros).UTC()
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length < 0 {
		length = 0
	}
	v.Vector = make([]float32, length)
	for i := 0; i < length; i++ {
		var bits uint32
		bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v.Vector[i] = math.Float32frombits(bits)
	}
	return
}

func (documentVectorMUS) Size(v DocumentVector) (size int) {
	size = ord.String.Size(v.Path)
	size += ord.String.Size(v.Fingerprint)
	size += ord.String.Size(v.Model)
	size += varint.Int64.Size(v.IndexedAt.UnixMicro())
	size += varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}
