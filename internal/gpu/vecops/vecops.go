// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vecops provides CPU reference implementations of the GPU
// vector kernels.
//
// The functions mirror vector_ops.wgsl exactly, including the broadcast
// behavior of the scalar-valued operations. They serve as the
// conformance oracle in tests and as the CPU side of benchmark
// comparisons.
package vecops

import (
	"errors"
	"fmt"
	"math"
)

// Operation codes. Values match the op uniform consumed by the GPU
// kernel in vector_ops.wgsl.
const (
	OpAdd uint32 = iota
	OpSub
	OpDot
	OpMul
	OpCross
	OpDistance

	opCount
)

// Lanes is the number of float32 lanes per vector element.
const Lanes = 4

var (
	// ErrInvalidOp is returned for op codes outside the kernel set.
	ErrInvalidOp = errors.New("vecops: invalid operation code")

	// ErrLengthMismatch is returned when the slices disagree in length
	// or are not whole vec4 sequences.
	ErrLengthMismatch = errors.New("vecops: slice lengths must match and be multiples of four")
)

// Apply computes dst = op(a, b) element-wise over vec4 lanes.
//
// Slices are flat xyzw sequences; all three must have the same length,
// divisible by four. dst may alias a or b: every element's inputs are
// read before its lanes are written.
func Apply(op uint32, a, b, dst []float32) error {
	if op >= opCount {
		return fmt.Errorf("%w: %d", ErrInvalidOp, op)
	}
	n := len(dst)
	if len(a) != n || len(b) != n || n%Lanes != 0 {
		return fmt.Errorf("%w: len(a)=%d len(b)=%d len(dst)=%d",
			ErrLengthMismatch, len(a), len(b), n)
	}

	switch op {
	case OpAdd:
		for i := 0; i < n; i++ {
			dst[i] = a[i] + b[i]
		}
	case OpSub:
		for i := 0; i < n; i++ {
			dst[i] = a[i] - b[i]
		}
	case OpMul:
		for i := 0; i < n; i++ {
			dst[i] = a[i] * b[i]
		}
	case OpDot:
		for i := 0; i < n; i += Lanes {
			d := a[i]*b[i] + a[i+1]*b[i+1] + a[i+2]*b[i+2] + a[i+3]*b[i+3]
			dst[i], dst[i+1], dst[i+2], dst[i+3] = d, d, d, d
		}
	case OpCross:
		for i := 0; i < n; i += Lanes {
			x := a[i+1]*b[i+2] - a[i+2]*b[i+1]
			y := a[i+2]*b[i+0] - a[i+0]*b[i+2]
			z := a[i+0]*b[i+1] - a[i+1]*b[i+0]
			dst[i], dst[i+1], dst[i+2], dst[i+3] = x, y, z, 0
		}
	case OpDistance:
		for i := 0; i < n; i += Lanes {
			dx := float64(a[i+0] - b[i+0])
			dy := float64(a[i+1] - b[i+1])
			dz := float64(a[i+2] - b[i+2])
			dw := float64(a[i+3] - b[i+3])
			d := float32(math.Sqrt(dx*dx + dy*dy + dz*dz + dw*dw))
			dst[i], dst[i+1], dst[i+2], dst[i+3] = d, d, d, d
		}
	}
	return nil
}

// Valid reports whether op is a known operation code.
func Valid(op uint32) bool { return op < opCount }

// Name returns the lower-case name of an operation code, or "unknown".
func Name(op uint32) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpDot:
		return "dot"
	case OpMul:
		return "mul"
	case OpCross:
		return "cross"
	case OpDistance:
		return "distance"
	default:
		return "unknown"
	}
}
