// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package layout computes the field-memory layout model used by the
// emitter: strides, padding, and the pure string-building helpers that
// turn a field reference into buffer-index or image-coordinate
// expressions. Nothing in this package has side effects; every
// function is a deterministic function of its arguments.
package layout

import "github.com/hpe-cct/cct-core-sub004/internal/addressing"

// MemoryBlockSize is the platform memory-block size, in elements, that
// row strides are padded to. This matches the "fieldRowStride rounded
// up to the platform's memory-block size" rule in spec §3.
const MemoryBlockSize = 64

// Memory is the derived layout of a field type: how far apart
// successive layers, rows, tensor parts and tensor elements sit in a
// flattened buffer.
type Memory struct {
	Layers, Rows, Columns int

	TensorStride   int // distance between successive tensor elements
	PartStride     int // distance between the real and imaginary part of a complex element
	LayerStride    int // distance between successive layers
	RowStride      int // distance between successive rows (unpadded)
	FieldRowStride int // RowStride rounded up to MemoryBlockSize
}

func roundUpTo(block, v int) int {
	if block <= 1 {
		return v
	}
	return v + (block-v%block)%block
}

// New computes the Memory layout for ft, with an optional row-padding
// block size (0 selects MemoryBlockSize).
func New(ft addressing.FieldType, blockSize int) Memory {
	if blockSize <= 0 {
		blockSize = MemoryBlockSize
	}

	layers, rows, cols := ft.Field.Layers(), ft.Field.Rows(), ft.Field.Columns()
	if ft.Field.Rank() == 0 {
		layers, rows, cols = 1, 1, 1
	}

	tensorPoints := ft.Tensor.Points()

	m := Memory{
		Layers:       layers,
		Rows:         rows,
		Columns:      cols,
		TensorStride: 1,
	}

	switch ft.Element {
	case addressing.Complex32:
		// Real and imaginary parts live tensorPoints apart; a further
		// tensor element stride of 1 interleaves points within each part.
		m.PartStride = tensorPoints
	default:
		m.PartStride = 0
	}

	m.RowStride = cols * tensorPoints * partMultiplier(ft.Element)
	m.FieldRowStride = roundUpTo(blockSize, m.RowStride)
	m.LayerStride = rows * m.FieldRowStride

	return m
}

func partMultiplier(e addressing.ElementType) int {
	if e == addressing.Complex32 {
		return 2
	}
	return 1
}
