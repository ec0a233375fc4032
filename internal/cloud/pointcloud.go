// Package cloud holds the in-memory point-cloud model: loading,
// downsampling, inversion and bounds.
package cloud

import (
	"math/rand"

	"github.com/unjin-lab/pano3d/pkg/math"
)

// PointCloud holds positions with optional per-point colors.
// Colors are RGB in [0,1]; when present len(Colors) == len(Points).
type PointCloud struct {
	Points []math.Vec3
	Colors []math.Vec3
}

// Len returns the number of points.
func (c *PointCloud) Len() int {
	return len(c.Points)
}

// HasColors reports whether every point carries a color.
func (c *PointCloud) HasColors() bool {
	return len(c.Points) > 0 && len(c.Colors) == len(c.Points)
}

// Downsample returns a cloud with at most n points chosen uniformly
// without replacement, keeping position/color pairing. A cloud that
// already fits is returned as-is, same backing slices.
func Downsample(c *PointCloud, n int, rng *rand.Rand) *PointCloud {
	if n <= 0 {
		return &PointCloud{}
	}
	if c.Len() <= n {
		return c
	}

	keep := rng.Perm(c.Len())[:n]
	out := &PointCloud{Points: make([]math.Vec3, n)}
	if c.HasColors() {
		out.Colors = make([]math.Vec3, n)
	}
	for i, j := range keep {
		out.Points[i] = c.Points[j]
		if out.Colors != nil {
			out.Colors[i] = c.Colors[j]
		}
	}
	return out
}

// Invert negates every position in place, turning the panorama sphere
// inside out so the camera views it from within. Applying it twice
// restores the original positions.
func (c *PointCloud) Invert() {
	for i := range c.Points {
		c.Points[i] = c.Points[i].Negate()
	}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent per axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds computes the axis-aligned bounding box. An empty cloud yields
// a zero box.
func (c *PointCloud) Bounds() Bounds {
	if len(c.Points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: c.Points[0], Max: c.Points[0]}
	for _, p := range c.Points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
