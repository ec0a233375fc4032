// Package transcode converts GLB models into other mesh formats.
package transcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/unjin-lab/pano3d/pkg/formats"
)

// Formats lists the supported output format tags.
var Formats = []string{"glb", "obj", "ply"}

// Supports reports whether format is a recognized output tag.
func Supports(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	if format == "glb" {
		return "model/gltf-binary"
	}
	return "application/octet-stream"
}

// ConversionError wraps any parse or export failure for a format.
type ConversionError struct {
	Format string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting to %s: %v", e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Convert renders GLB bytes into the requested format. glb is a
// byte-identity passthrough: the payload is not even parsed, so
// whatever the upstream served is whatever the caller gets.
func Convert(glb []byte, format string) ([]byte, error) {
	switch format {
	case "glb":
		return glb, nil
	case "obj":
		out, err := toOBJ(glb)
		if err != nil {
			return nil, &ConversionError{Format: format, Err: err}
		}
		return out, nil
	case "ply":
		out, err := toPLY(glb)
		if err != nil {
			return nil, &ConversionError{Format: format, Err: err}
		}
		return out, nil
	default:
		return nil, &ConversionError{Format: format, Err: errors.New("unsupported format tag")}
	}
}

// toOBJ writes the world-space triangle soup as Wavefront OBJ text.
// Face elements reference only the attributes the model carries.
func toOBJ(glb []byte) ([]byte, error) {
	model, err := formats.ParseGLB(glb)
	if err != nil {
		return nil, err
	}
	tris, err := model.Triangles()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, p := range tris.Positions {
		fmt.Fprintf(&b, "v %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	for _, t := range tris.TexCoords {
		fmt.Fprintf(&b, "vt %.6f %.6f\n", t.X, t.Y)
	}
	for _, n := range tris.Normals {
		fmt.Fprintf(&b, "vn %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
	}

	hasUV := len(tris.TexCoords) > 0
	hasNormals := len(tris.Normals) > 0
	for i := 0; i+2 < len(tris.Indices); i += 3 {
		b.WriteString("f")
		for _, idx := range tris.Indices[i : i+3] {
			ref := idx + 1 // OBJ indices are 1-based
			switch {
			case hasUV && hasNormals:
				fmt.Fprintf(&b, " %d/%d/%d", ref, ref, ref)
			case hasUV:
				fmt.Fprintf(&b, " %d/%d", ref, ref)
			case hasNormals:
				fmt.Fprintf(&b, " %d//%d", ref, ref)
			default:
				fmt.Fprintf(&b, " %d", ref)
			}
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// toPLY writes the triangle soup as binary little-endian PLY 1.0.
func toPLY(glb []byte) ([]byte, error) {
	model, err := formats.ParseGLB(glb)
	if err != nil {
		return nil, err
	}
	tris, err := model.Triangles()
	if err != nil {
		return nil, err
	}

	hasNormals := len(tris.Normals) > 0
	hasUV := len(tris.TexCoords) > 0

	var b bytes.Buffer
	b.WriteString("ply\n")
	b.WriteString("format binary_little_endian 1.0\n")
	fmt.Fprintf(&b, "element vertex %d\n", len(tris.Positions))
	b.WriteString("property float x\nproperty float y\nproperty float z\n")
	if hasNormals {
		b.WriteString("property float nx\nproperty float ny\nproperty float nz\n")
	}
	if hasUV {
		b.WriteString("property float s\nproperty float t\n")
	}
	fmt.Fprintf(&b, "element face %d\n", len(tris.Indices)/3)
	b.WriteString("property list uchar uint vertex_indices\n")
	b.WriteString("end_header\n")

	for i, p := range tris.Positions {
		writeLE(&b, p.X, p.Y, p.Z)
		if hasNormals {
			n := tris.Normals[i]
			writeLE(&b, n.X, n.Y, n.Z)
		}
		if hasUV {
			t := tris.TexCoords[i]
			writeLE(&b, t.X, t.Y)
		}
	}
	for i := 0; i+2 < len(tris.Indices); i += 3 {
		b.WriteByte(3)
		binary.Write(&b, binary.LittleEndian, tris.Indices[i:i+3])
	}
	return b.Bytes(), nil
}

func writeLE(b *bytes.Buffer, vals ...float32) {
	binary.Write(b, binary.LittleEndian, vals)
}
