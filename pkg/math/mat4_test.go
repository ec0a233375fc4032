package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := Vec3{1, 2, 3}
	result := m.TransformPoint(p)

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	p := Vec3{1, 2, 3}
	result := m.TransformPoint(p)

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2)) // 90 degrees
	p := Vec3{1, 0, 0}                 // Point on X axis
	result := m.TransformPoint(p)

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestRotateAxisMatchesRotateY(t *testing.T) {
	angle := float32(0.7)
	a := RotateAxis(Vec3{0, 1, 0}, angle)
	b := RotateY(angle)

	for i := 0; i < 16; i++ {
		if abs(a[i]-b[i]) > 0.0001 {
			t.Errorf("RotateAxis(Y) element %d: got %f, want %f", i, a[i], b[i])
		}
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Should be a valid projection matrix (not identity)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	// The eye position should map to the origin in view space
	got := m.TransformPoint(eye)
	if abs(got.X) > 0.0001 || abs(got.Y) > 0.0001 || abs(got.Z) > 0.0001 {
		t.Errorf("LookAt should map eye to origin, got %v", got)
	}
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
}

func TestTranspose(t *testing.T) {
	m := Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	tr := m.Transpose()

	want := Mat4{
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
		4, 8, 12, 16,
	}
	if tr != want {
		t.Errorf("Transpose: got %v, want %v", tr, want)
	}
	if tr.Transpose() != m {
		t.Error("double transpose should return the original matrix")
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(3, -2, 7).Mul(RotateY(0.5)).Mul(Scale(2, 2, 2))
	inv := m.Inverse()
	result := m.Mul(inv)

	id := Identity()
	for i := 0; i < 16; i++ {
		if abs(result[i]-id[i]) > 0.0001 {
			t.Errorf("M * M^-1 should be identity, element %d: got %f", i, result[i])
		}
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200, 300)
	d := Vec3{0, 0, -1}
	got := m.TransformDirection(d)
	if got != d {
		t.Errorf("TransformDirection under pure translation: got %v, want %v", got, d)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
