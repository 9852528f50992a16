package quadrax

import (
	"encoding/binary"
	"math"
)

// Vec4 represents a 4-component float vector, the element type of every
// quadrax buffer. The memory layout on the GPU matches WGSL vec4<f32>:
// four little-endian float32 lanes, 16 bytes per element.
type Vec4 struct {
	X, Y, Z, W float32
}

// Vec4Size is the byte size of one Vec4 element on the GPU.
const Vec4Size = 16

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Add returns the sum of two vectors.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z, W: v.W + w.W}
}

// Sub returns the difference of two vectors.
func (v Vec4) Sub(w Vec4) Vec4 {
	return Vec4{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z, W: v.W - w.W}
}

// Scale returns the vector scaled by a scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// MulElem returns the component-wise product of two vectors.
// This mirrors the OpMul kernel operation.
func (v Vec4) MulElem(w Vec4) Vec4 {
	return Vec4{X: v.X * w.X, Y: v.Y * w.Y, Z: v.Z * w.Z, W: v.W * w.W}
}

// Neg returns the negation of the vector.
func (v Vec4) Neg() Vec4 {
	return Vec4{X: -v.X, Y: -v.Y, Z: -v.Z, W: -v.W}
}

// Dot returns the 4D dot product of two vectors.
func (v Vec4) Dot(w Vec4) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z + v.W*w.W
}

// Cross returns the 3D cross product of the xyz lanes, with W set to
// zero. This mirrors the OpCross kernel operation.
func (v Vec4) Cross(w Vec4) Vec4 {
	return Vec4{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
		W: 0,
	}
}

// Length returns the 4D length (magnitude) of the vector.
func (v Vec4) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// LengthSq returns the squared length of the vector.
// This is faster than Length() when you only need to compare magnitudes.
func (v Vec4) LengthSq() float32 {
	return v.Dot(v)
}

// Distance returns the 4D Euclidean distance between two vectors.
// This mirrors the OpDistance kernel operation.
func (v Vec4) Distance(w Vec4) float32 {
	return v.Sub(w).Length()
}

// Normalize returns a unit vector in the same direction.
// Returns zero vector if the original vector has zero length.
func (v Vec4) Normalize() Vec4 {
	length := v.Length()
	if length == 0 {
		return Vec4{}
	}
	return v.Scale(1 / length)
}

// IsZero returns true if all four lanes are exactly zero.
func (v Vec4) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0 && v.W == 0
}

// Approx returns true if two vectors are approximately equal within epsilon.
func (v Vec4) Approx(w Vec4, epsilon float32) bool {
	return abs32(v.X-w.X) < epsilon && abs32(v.Y-w.Y) < epsilon &&
		abs32(v.Z-w.Z) < epsilon && abs32(v.W-w.W) < epsilon
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Lerp performs linear interpolation between two vectors.
// t=0 returns v, t=1 returns w, intermediate values interpolate.
func (v Vec4) Lerp(w Vec4, t float32) Vec4 {
	return Vec4{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
		W: v.W + (w.W-v.W)*t,
	}
}

// vec4sToBytes serializes vectors into the little-endian shader layout.
func vec4sToBytes(src []Vec4) []byte {
	buf := make([]byte, len(src)*Vec4Size)
	le := binary.LittleEndian
	for i, v := range src {
		off := i * Vec4Size
		le.PutUint32(buf[off+0:off+4], math.Float32bits(v.X))
		le.PutUint32(buf[off+4:off+8], math.Float32bits(v.Y))
		le.PutUint32(buf[off+8:off+12], math.Float32bits(v.Z))
		le.PutUint32(buf[off+12:off+16], math.Float32bits(v.W))
	}
	return buf
}

// bytesToVec4s deserializes the little-endian shader layout into dst.
// src must hold at least len(dst)*Vec4Size bytes.
func bytesToVec4s(src []byte, dst []Vec4) {
	le := binary.LittleEndian
	for i := range dst {
		off := i * Vec4Size
		dst[i] = Vec4{
			X: math.Float32frombits(le.Uint32(src[off+0 : off+4])),
			Y: math.Float32frombits(le.Uint32(src[off+4 : off+8])),
			Z: math.Float32frombits(le.Uint32(src[off+8 : off+12])),
			W: math.Float32frombits(le.Uint32(src[off+12 : off+16])),
		}
	}
}
