package camera

import (
	gomath "math"
	"testing"

	"github.com/unjin-lab/pano3d/pkg/math"
)

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func vecNear(a, b math.Vec3, eps float32) bool {
	return absf(a.X-b.X) < eps && absf(a.Y-b.Y) < eps && absf(a.Z-b.Z) < eps
}

func TestNewIntrinsics(t *testing.T) {
	in := NewIntrinsics(1000, 500, 90)

	if absf(in.Fx-500) > 1e-3 {
		t.Errorf("Fx = %f, want 500", in.Fx)
	}
	if in.Fy != in.Fx {
		t.Errorf("Fy = %f, want square pixels (Fx %f)", in.Fy, in.Fx)
	}
	if in.Cx != 500 || in.Cy != 250 {
		t.Errorf("principal point = (%f, %f), want (500, 250)", in.Cx, in.Cy)
	}
}

func TestProjectionMatchesPerspective(t *testing.T) {
	// With a square window the vertical fov recovered from Fy equals the
	// configured fov, so the projection must match a plain perspective.
	in := NewIntrinsics(1000, 1000, 90)

	got := in.Projection(0.01, 100)
	want := math.Perspective(gomath.Pi/2, 1, 0.01, 100)
	for i := range got {
		if absf(got[i]-want[i]) > 1e-4 {
			t.Fatalf("element %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestInsideOutViewMatchesLookAt(t *testing.T) {
	f := InsideOut(2.5)

	got := f.View()
	want := math.LookAt(
		math.Vec3{Z: 2.5},
		math.Vec3{Z: 1.5},
		math.Vec3{Y: 1},
	)
	for i := range got {
		if absf(got[i]-want[i]) > 1e-6 {
			t.Fatalf("element %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestViewMovesWorldToCameraSpace(t *testing.T) {
	f := InsideOut(5)

	// The world origin sits 5 units in front of the camera, on -Z.
	p := f.View().TransformPoint(math.Vec3{})
	if !vecNear(p, math.Vec3{Z: -5}, 1e-6) {
		t.Errorf("origin in camera space = %v, want (0, 0, -5)", p)
	}
}

func TestYawQuarterTurn(t *testing.T) {
	f := InsideOut(0).Yaw(gomath.Pi / 2)

	if !vecNear(f.Forward, math.Vec3{X: -1}, 1e-6) {
		t.Errorf("Forward = %v, want (-1, 0, 0)", f.Forward)
	}
	if !vecNear(f.Up, math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("Up = %v, want (0, 1, 0)", f.Up)
	}
	if !vecNear(f.Right, math.Vec3{Z: -1}, 1e-6) {
		t.Errorf("Right = %v, want (0, 0, -1)", f.Right)
	}
}

func TestPitchKeepsRight(t *testing.T) {
	f := InsideOut(0).Pitch(0.7)

	if !vecNear(f.Right, math.Vec3{X: 1}, 1e-6) {
		t.Errorf("Right = %v, want (1, 0, 0)", f.Right)
	}
	if absf(f.Forward.Length()-1) > 1e-6 {
		t.Errorf("|Forward| = %f, want 1", f.Forward.Length())
	}
	if absf(f.Up.Dot(f.Forward)) > 1e-6 {
		t.Errorf("Up·Forward = %f, want 0", f.Up.Dot(f.Forward))
	}
}

func TestDollyMovesAlongForward(t *testing.T) {
	f := InsideOut(0).Dolly(2)

	if !vecNear(f.Position, math.Vec3{Z: -2}, 1e-6) {
		t.Errorf("Position = %v, want (0, 0, -2)", f.Position)
	}
}

func TestPanMovesInPlane(t *testing.T) {
	f := InsideOut(0).Pan(1, 2)

	if !vecNear(f.Position, math.Vec3{X: 1, Y: 2}, 1e-6) {
		t.Errorf("Position = %v, want (1, 2, 0)", f.Position)
	}
}

func TestLevelPinsHeight(t *testing.T) {
	lock := HorizontalLock{InitialHeight: 1.5}

	f := InsideOut(0)
	f.Position.Y = 7

	leveled := lock.Level(f)
	if leveled.Position.Y != 1.5 {
		t.Errorf("Position.Y = %f, want 1.5", leveled.Position.Y)
	}
}

func TestLevelFrameIsNoOp(t *testing.T) {
	lock := HorizontalLock{InitialHeight: 0}
	f := InsideOut(0)

	leveled := lock.Level(f)
	if leveled != f {
		t.Errorf("Level changed an already-level frame: %+v", leveled)
	}
}

func TestLevelIdempotent(t *testing.T) {
	lock := HorizontalLock{InitialHeight: 0}
	f := InsideOut(0).Pitch(0.9).Yaw(0.4)

	once := lock.Level(f)
	twice := lock.Level(once)
	if once.Position != twice.Position ||
		!vecNear(once.Right, twice.Right, 1e-6) ||
		!vecNear(once.Up, twice.Up, 1e-6) ||
		!vecNear(once.Forward, twice.Forward, 1e-6) {
		t.Errorf("second Level changed the frame:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestLevelAfterPitch(t *testing.T) {
	lock := HorizontalLock{InitialHeight: 0}
	f := lock.Level(InsideOut(0).Pitch(0.8))

	if f.Forward.Y != 0 {
		t.Errorf("Forward.Y = %f, want 0", f.Forward.Y)
	}
	if absf(f.Forward.Length()-1) > 1e-5 {
		t.Errorf("|Forward| = %f, want 1", f.Forward.Length())
	}
	if absf(f.Right.Length()-1) > 1e-5 {
		t.Errorf("|Right| = %f, want 1", f.Right.Length())
	}
	if !vecNear(f.Up, math.Vec3{Y: 1}, 1e-6) {
		t.Errorf("Up = %v, want (0, 1, 0)", f.Up)
	}
	if absf(f.Right.Dot(f.Forward)) > 1e-5 || absf(f.Right.Dot(f.Up)) > 1e-5 || absf(f.Up.Dot(f.Forward)) > 1e-5 {
		t.Errorf("frame not orthogonal: %+v", f)
	}
}

func TestLevelUpsideDown(t *testing.T) {
	lock := HorizontalLock{InitialHeight: 0}

	f := InsideOut(0)
	f.Up = math.Vec3{X: 0.1, Y: -0.9, Z: 0.2}

	leveled := lock.Level(f)
	if !vecNear(leveled.Up, math.Vec3{Y: -1}, 1e-6) {
		t.Errorf("Up = %v, want (0, -1, 0)", leveled.Up)
	}
}
