package render

// GenerateAxisVertices creates line vertices for the coordinate gizmo
// at the origin: X red, Y green, Z blue.
// Returns 6 vertices (3 axes × 2 endpoints), format: [x, y, z, r, g, b]
// per vertex, matching the point cloud vertex layout.
func GenerateAxisVertices(length float32) []float32 {
	return []float32{
		// X axis (red)
		0, 0, 0, 1, 0, 0,
		length, 0, 0, 1, 0, 0,
		// Y axis (green)
		0, 0, 0, 0, 1, 0,
		0, length, 0, 0, 1, 0,
		// Z axis (blue)
		0, 0, 0, 0, 0, 1,
		0, 0, length, 0, 0, 1,
	}
}

// AxisVertexCount is the number of vertices for the axis gizmo (3 axes × 2).
const AxisVertexCount = 6

// DefaultAxisLength is the default gizmo extent in world units.
const DefaultAxisLength = 1.0
