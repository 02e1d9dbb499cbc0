// Package geometry provides the 3-D point math used by topology reconstruction.
package geometry

import (
	"fmt"
	"math"
)

// Vec3 is a point in model space. Units follow the source export (mm in
// practice, but nothing here depends on it).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the Euclidean distance between two points.
func (v Vec3) DistanceTo(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// minCell is the cell size used when a non-positive tolerance is configured,
// small enough that distinct coordinates stay in distinct cells.
const minCell = 1e-9

// Bucket is the integer cell index of a point quantized at a tolerance.
// Cells are half-open floor intervals of width tol per axis, so two points
// within tol of each other land in the same or an adjacent cell, never
// further apart. Candidate pairs therefore come from a cell plus its
// neighbourhood and are confirmed by actual distance.
type Bucket struct {
	X, Y, Z int64
}

// BucketOf quantizes a point to its tolerance cell.
func BucketOf(v Vec3, tol float64) Bucket {
	if tol <= 0 {
		tol = minCell
	}
	return Bucket{
		X: int64(math.Floor(v.X / tol)),
		Y: int64(math.Floor(v.Y / tol)),
		Z: int64(math.Floor(v.Z / tol)),
	}
}

// Key returns a stable string form of the cell index, for map keys in
// serialized diagnostics. Integer indices avoid float formatting, so keys
// stay distinct at any tolerance.
func (b Bucket) Key() string {
	return fmt.Sprintf("%d|%d|%d", b.X, b.Y, b.Z)
}

// Neighborhood returns the cell itself and its 26 adjacent cells.
func (b Bucket) Neighborhood() []Bucket {
	out := make([]Bucket, 0, 27)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				out = append(out, Bucket{X: b.X + dx, Y: b.Y + dy, Z: b.Z + dz})
			}
		}
	}
	return out
}
