// Package camera models a pinhole camera: intrinsics derived from a
// field of view, an explicit orientation frame, and the horizontal-only
// constraint.
package camera

import (
	gomath "math"

	"github.com/unjin-lab/pano3d/pkg/math"
)

// Intrinsics is a pinhole camera for a window of Width x Height pixels.
type Intrinsics struct {
	Width  int
	Height int
	Fx     float32
	Fy     float32
	Cx     float32
	Cy     float32
}

// NewIntrinsics derives square-pixel focal lengths from the horizontal
// field of view: Fx = Fy = width / (2·tan(fov/2)), principal point at
// the window center. fov 90 over a 1000px window gives focal length 500.
func NewIntrinsics(width, height int, fovDeg float32) Intrinsics {
	f := float32(float64(width) / (2 * gomath.Tan(float64(fovDeg)*gomath.Pi/360)))
	return Intrinsics{
		Width:  width,
		Height: height,
		Fx:     f,
		Fy:     f,
		Cx:     float32(width) / 2,
		Cy:     float32(height) / 2,
	}
}

// Projection builds the GL projection matrix equivalent to the
// intrinsics, recovering the vertical field of view from Fy.
func (in Intrinsics) Projection(near, far float32) math.Mat4 {
	fovY := 2 * float32(gomath.Atan(float64(in.Height)/(2*float64(in.Fy))))
	aspect := float32(in.Width) / float32(in.Height)
	return math.Perspective(fovY, aspect, near, far)
}

// Frame is an explicit orthonormal camera frame in world space.
// Forward is the look direction (initially -Z).
type Frame struct {
	Position math.Vec3
	Right    math.Vec3
	Up       math.Vec3
	Forward  math.Vec3
}

// InsideOut returns the startup frame for viewing an inverted panorama
// sphere from within: at (0, 0, distance) with identity orientation.
func InsideOut(distance float32) Frame {
	return Frame{
		Position: math.Vec3{Z: distance},
		Right:    math.Vec3{X: 1},
		Up:       math.Vec3{Y: 1},
		Forward:  math.Vec3{Z: -1},
	}
}

// View returns the world-to-camera matrix for the frame.
func (f Frame) View() math.Mat4 {
	r, u := f.Right, f.Up
	b := f.Forward.Negate()

	m := math.Identity()
	m[0], m[4], m[8] = r.X, r.Y, r.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = b.X, b.Y, b.Z
	m[12] = -r.Dot(f.Position)
	m[13] = -u.Dot(f.Position)
	m[14] = -b.Dot(f.Position)
	return m
}

// Yaw rotates the frame about the world Y axis.
func (f Frame) Yaw(rad float32) Frame {
	rot := math.RotateY(rad)
	f.Right = rot.TransformDirection(f.Right)
	f.Up = rot.TransformDirection(f.Up)
	f.Forward = rot.TransformDirection(f.Forward)
	return f
}

// Pitch rotates the frame about its own right axis.
func (f Frame) Pitch(rad float32) Frame {
	rot := math.RotateAxis(f.Right.Normalize(), rad)
	f.Up = rot.TransformDirection(f.Up)
	f.Forward = rot.TransformDirection(f.Forward)
	return f
}

// Dolly moves the frame along its look direction.
func (f Frame) Dolly(d float32) Frame {
	f.Position = f.Position.Add(f.Forward.Scale(d))
	return f
}

// Pan moves the frame along its right and up axes.
func (f Frame) Pan(dx, dy float32) Frame {
	f.Position = f.Position.Add(f.Right.Scale(dx)).Add(f.Up.Scale(dy))
	return f
}

// HorizontalLock keeps the camera at its captured height and levels the
// orientation every frame while active.
type HorizontalLock struct {
	InitialHeight float32
}

// Level projects the frame back onto the horizontal plane: the position
// is pinned to the initial height, up snaps to ±Y by sign, forward loses
// its vertical component, and right is recomputed to keep the triad
// orthonormal. A level frame passes through unchanged; a near-vertical
// forward degrades to a finite direction via the epsilon guard.
func (h HorizontalLock) Level(f Frame) Frame {
	f.Position.Y = h.InitialHeight

	upY := float32(1)
	if f.Up.Y < 0 {
		upY = -1
	}
	f.Up = math.Vec3{Y: upY}

	flat := math.Vec3{X: f.Forward.X, Z: f.Forward.Z}
	f.Forward = flat.Scale(1 / (flat.Length() + 1e-10))

	right := f.Forward.Cross(f.Up)
	f.Right = right.Scale(1 / (right.Length() + 1e-10))

	return f
}
