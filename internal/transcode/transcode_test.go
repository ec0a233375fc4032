package transcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unjin-lab/pano3d/pkg/formats"
)

// One triangle: (0,0,0), (1,0,0), (0,1,0), indexed 0,1,2.
const triangleDoc = `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":1}]}],"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"},{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"}],"bufferViews":[{"buffer":0,"byteLength":36},{"buffer":0,"byteOffset":36,"byteLength":6}],"buffers":[{"byteLength":42}]}`

// Same triangle with +Z normals on every vertex.
const triangleWithNormalsDoc = `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":0,"NORMAL":1},"indices":2}]}],"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"},{"bufferView":1,"componentType":5126,"count":3,"type":"VEC3"},{"bufferView":2,"componentType":5123,"count":3,"type":"SCALAR"}],"bufferViews":[{"buffer":0,"byteLength":36},{"buffer":0,"byteOffset":36,"byteLength":36},{"buffer":0,"byteOffset":72,"byteLength":6}],"buffers":[{"byteLength":78}]}`

func triangleBin(withNormals bool) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	if withNormals {
		binary.Write(&b, binary.LittleEndian, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1})
	}
	binary.Write(&b, binary.LittleEndian, []uint16{0, 1, 2})
	return b.Bytes()
}

func buildGLB(t *testing.T, doc string, bin []byte) []byte {
	t.Helper()

	jsonChunk := []byte(doc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte(nil), bin...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	out := make([]byte, 0, total)
	out = append(out, "glTF"...)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(jsonChunk)))
	out = append(out, "JSON"...)
	out = append(out, jsonChunk...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(binChunk)))
	out = append(out, "BIN\x00"...)
	out = append(out, binChunk...)
	return out
}

func TestSupports(t *testing.T) {
	for _, format := range []string{"glb", "obj", "ply"} {
		assert.True(t, Supports(format), "Supports(%q)", format)
	}
	for _, format := range []string{"stl", "GLB", "", "gltf"} {
		assert.False(t, Supports(format), "Supports(%q)", format)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "model/gltf-binary", ContentType("glb"))
	assert.Equal(t, "application/octet-stream", ContentType("obj"))
	assert.Equal(t, "application/octet-stream", ContentType("ply"))
}

func TestConvertGLBPassthrough(t *testing.T) {
	data := buildGLB(t, triangleDoc, triangleBin(false))

	out, err := Convert(data, "glb")
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestConvertGLBPassthroughSkipsParsing(t *testing.T) {
	// Whatever the upstream served is relayed, valid container or not.
	data := []byte("definitely not a gltf container")

	out, err := Convert(data, "glb")
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestConvertOBJ(t *testing.T) {
	data := buildGLB(t, triangleDoc, triangleBin(false))

	out, err := Convert(data, "obj")
	require.NoError(t, err)

	want := "v 0.000000 0.000000 0.000000\n" +
		"v 1.000000 0.000000 0.000000\n" +
		"v 0.000000 1.000000 0.000000\n" +
		"f 1 2 3\n"
	assert.Equal(t, want, string(out))
}

func TestConvertOBJWithNormals(t *testing.T) {
	data := buildGLB(t, triangleWithNormalsDoc, triangleBin(true))

	out, err := Convert(data, "obj")
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "vn 0.000000 0.000000 1.000000\n")
	assert.Contains(t, text, "f 1//1 2//2 3//3\n")
	assert.NotContains(t, text, "vt ")
}

func TestConvertPLY(t *testing.T) {
	data := buildGLB(t, triangleDoc, triangleBin(false))

	out, err := Convert(data, "ply")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("ply\nformat binary_little_endian 1.0\n")))
	assert.Contains(t, string(out), "element vertex 3\n")
	assert.Contains(t, string(out), "element face 1\n")
	assert.Contains(t, string(out), "property list uchar uint vertex_indices\n")

	headerEnd := bytes.Index(out, []byte("end_header\n"))
	require.GreaterOrEqual(t, headerEnd, 0)
	payload := out[headerEnd+len("end_header\n"):]

	// 3 vertices of 12 bytes, then one face: count byte + 3 uint32.
	require.Len(t, payload, 3*12+13)
	assert.Equal(t, gomath.Float32bits(1), binary.LittleEndian.Uint32(payload[12:16]),
		"second vertex x should be 1.0")
	assert.Equal(t, byte(3), payload[36])
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(payload[37:41]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(payload[41:45]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(payload[45:49]))
}

func TestConvertPLYWithNormals(t *testing.T) {
	data := buildGLB(t, triangleWithNormalsDoc, triangleBin(true))

	out, err := Convert(data, "ply")
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "property float nx\nproperty float ny\nproperty float nz\n")

	headerEnd := bytes.Index(out, []byte("end_header\n"))
	require.GreaterOrEqual(t, headerEnd, 0)
	payload := out[headerEnd+len("end_header\n"):]

	// 3 vertices of 24 bytes, then one face record.
	require.Len(t, payload, 3*24+13)
	assert.Equal(t, gomath.Float32bits(1), binary.LittleEndian.Uint32(payload[20:24]),
		"first vertex nz should be 1.0")
}

func TestConvertParseFailure(t *testing.T) {
	_, err := Convert([]byte("not-a-glb-container"), "obj")

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "obj", convErr.Format)
	assert.True(t, errors.Is(err, formats.ErrInvalidGLBMagic))
}

func TestConvertUnsupportedTag(t *testing.T) {
	_, err := Convert(buildGLB(t, triangleDoc, triangleBin(false)), "stl")

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "stl", convErr.Format)
}
