package render

import (
	"testing"

	"github.com/unjin-lab/pano3d/internal/cloud"
	"github.com/unjin-lab/pano3d/pkg/math"
)

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
	}{
		{"black", 0, 0, 0},
		{"white", 1, 1, 1},
		{"gray", 0.5, 0.5, 0.5},
		{"darkgray", 0.2, 0.2, 0.2},
		{"magenta", 0, 0, 0},
		{"", 0, 0, 0},
	}

	for _, tt := range tests {
		r, g, b := BackgroundColor(tt.name)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("BackgroundColor(%q) = (%g, %g, %g), expected (%g, %g, %g)",
				tt.name, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestBackgroundNames(t *testing.T) {
	names := BackgroundNames()
	if len(names) != 4 {
		t.Fatalf("expected 4 names, got %d", len(names))
	}
	if names[0] != "black" {
		t.Errorf("expected black first, got %q", names[0])
	}
}

func TestGenerateAxisVertices(t *testing.T) {
	vertices := GenerateAxisVertices(2.0)

	if len(vertices) != AxisVertexCount*6 {
		t.Fatalf("expected %d floats, got %d", AxisVertexCount*6, len(vertices))
	}

	// Each axis endpoint carries the axis color.
	endpoints := []struct {
		vertex int
		pos    [3]float32
		color  [3]float32
	}{
		{1, [3]float32{2, 0, 0}, [3]float32{1, 0, 0}},
		{3, [3]float32{0, 2, 0}, [3]float32{0, 1, 0}},
		{5, [3]float32{0, 0, 2}, [3]float32{0, 0, 1}},
	}
	for _, e := range endpoints {
		base := e.vertex * 6
		for i := 0; i < 3; i++ {
			if vertices[base+i] != e.pos[i] {
				t.Errorf("vertex %d position[%d] = %g, expected %g",
					e.vertex, i, vertices[base+i], e.pos[i])
			}
			if vertices[base+3+i] != e.color[i] {
				t.Errorf("vertex %d color[%d] = %g, expected %g",
					e.vertex, i, vertices[base+3+i], e.color[i])
			}
		}
	}

	// Each axis starts at the origin.
	for _, vertex := range []int{0, 2, 4} {
		base := vertex * 6
		if vertices[base] != 0 || vertices[base+1] != 0 || vertices[base+2] != 0 {
			t.Errorf("vertex %d should sit at the origin", vertex)
		}
	}
}

func TestInterleave(t *testing.T) {
	c := &cloud.PointCloud{
		Points: []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		Colors: []math.Vec3{{X: 0.1, Y: 0.2, Z: 0.3}, {X: 0.4, Y: 0.5, Z: 0.6}},
	}

	vertices := interleave(c)

	expected := []float32{
		1, 2, 3, 0.1, 0.2, 0.3,
		4, 5, 6, 0.4, 0.5, 0.6,
	}
	if len(vertices) != len(expected) {
		t.Fatalf("expected %d floats, got %d", len(expected), len(vertices))
	}
	for i := range expected {
		if vertices[i] != expected[i] {
			t.Errorf("vertices[%d] = %g, expected %g", i, vertices[i], expected[i])
		}
	}
}

func TestInterleaveColorlessCloud(t *testing.T) {
	c := &cloud.PointCloud{
		Points: []math.Vec3{{X: 1, Y: 2, Z: 3}},
	}

	vertices := interleave(c)

	expected := []float32{1, 2, 3, 1, 1, 1}
	if len(vertices) != len(expected) {
		t.Fatalf("expected %d floats, got %d", len(expected), len(vertices))
	}
	for i := range expected {
		if vertices[i] != expected[i] {
			t.Errorf("vertices[%d] = %g, expected %g", i, vertices[i], expected[i])
		}
	}
}
