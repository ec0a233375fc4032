// Package formats provides parsers for binary 3D model containers.
// GLB (glTF 2.0 binary) container parser.
package formats

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	gomath "math"
	"os"

	"github.com/unjin-lab/pano3d/pkg/math"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version")
	ErrTruncatedGLBData      = errors.New("truncated GLB data")
	ErrMissingJSONChunk      = errors.New("missing GLB JSON chunk")
	ErrInvalidGLBIndex       = errors.New("GLB index out of range")
	ErrAccessorOutOfBounds   = errors.New("GLB accessor out of bounds")
	ErrUnsupportedGLBFeature = errors.New("unsupported GLB feature")
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"

	glbTriangleMode = 4

	// Node graphs are trees per the glTF spec; the depth guard catches
	// malformed files with cycles.
	maxGLBNodeDepth = 256
)

// GLBComponentType is the storage type of accessor components.
type GLBComponentType int

const (
	GLBComponentByte          GLBComponentType = 5120
	GLBComponentUnsignedByte  GLBComponentType = 5121
	GLBComponentShort         GLBComponentType = 5122
	GLBComponentUnsignedShort GLBComponentType = 5123
	GLBComponentUnsignedInt   GLBComponentType = 5125
	GLBComponentFloat         GLBComponentType = 5126
)

// Size returns the component size in bytes, or 0 for unknown types.
func (c GLBComponentType) Size() int {
	switch c {
	case GLBComponentByte, GLBComponentUnsignedByte:
		return 1
	case GLBComponentShort, GLBComponentUnsignedShort:
		return 2
	case GLBComponentUnsignedInt, GLBComponentFloat:
		return 4
	default:
		return 0
	}
}

// componentsPerElement maps an accessor type tag to its component count.
func componentsPerElement(accessorType string) int {
	switch accessorType {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	default:
		return 0
	}
}

// GLBAsset identifies the glTF version of the embedded document.
type GLBAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// GLBBuffer describes a raw byte buffer. In a GLB container buffer 0 has
// no URI and refers to the binary chunk.
type GLBBuffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
}

// GLBBufferView is a slice of a buffer, optionally with an element stride.
type GLBBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// GLBAccessor describes typed elements within a buffer view.
type GLBAccessor struct {
	BufferView    *int             `json:"bufferView"`
	ByteOffset    int              `json:"byteOffset"`
	ComponentType GLBComponentType `json:"componentType"`
	Count         int              `json:"count"`
	Type          string           `json:"type"`
	Sparse        json.RawMessage  `json:"sparse"`
}

// GLBPrimitive is a draw call within a mesh.
type GLBPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Mode       *int           `json:"mode"`
	Material   *int           `json:"material"`
}

// GLBMesh groups primitives sharing a node transform.
type GLBMesh struct {
	Name       string         `json:"name"`
	Primitives []GLBPrimitive `json:"primitives"`
}

// GLBNode is one element of the scene hierarchy. Either Matrix or the
// translation/rotation/scale components describe its local transform.
type GLBNode struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Mesh        *int      `json:"mesh"`
	Matrix      []float32 `json:"matrix"`
	Translation []float32 `json:"translation"`
	Rotation    []float32 `json:"rotation"` // x, y, z, w
	Scale       []float32 `json:"scale"`
}

// GLBScene lists root nodes.
type GLBScene struct {
	Nodes []int `json:"nodes"`
}

// GLBDocument is the subset of the glTF 2.0 schema needed to recover
// triangle geometry.
type GLBDocument struct {
	Asset              GLBAsset        `json:"asset"`
	Scene              *int            `json:"scene"`
	Scenes             []GLBScene      `json:"scenes"`
	Nodes              []GLBNode       `json:"nodes"`
	Meshes             []GLBMesh       `json:"meshes"`
	Accessors          []GLBAccessor   `json:"accessors"`
	BufferViews        []GLBBufferView `json:"bufferViews"`
	Buffers            []GLBBuffer     `json:"buffers"`
	ExtensionsRequired []string        `json:"extensionsRequired"`
}

// GLB is a parsed glTF binary container: the JSON document plus the
// embedded binary chunk.
type GLB struct {
	Document GLBDocument
	BIN      []byte
}

// ParseGLB parses a GLB container from raw bytes.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < 12 {
		return nil, ErrTruncatedGLBData
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])

	if magic != glbMagic {
		return nil, ErrInvalidGLBMagic
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, version)
	}
	if int(length) > len(data) {
		return nil, ErrTruncatedGLBData
	}

	var jsonChunk, binChunk []byte
	offset := 12
	for offset+8 <= int(length) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8
		if offset+chunkLen > int(length) {
			return nil, ErrTruncatedGLBData
		}

		switch chunkType {
		case glbChunkJSON:
			if jsonChunk == nil {
				jsonChunk = data[offset : offset+chunkLen]
			}
		case glbChunkBIN:
			if binChunk == nil {
				binChunk = data[offset : offset+chunkLen]
			}
		}
		offset += chunkLen
	}

	if jsonChunk == nil {
		return nil, ErrMissingJSONChunk
	}

	var doc GLBDocument
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, fmt.Errorf("decoding GLB JSON: %w", err)
	}
	if len(doc.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("%w: required extensions %v", ErrUnsupportedGLBFeature, doc.ExtensionsRequired)
	}

	return &GLB{Document: doc, BIN: binChunk}, nil
}

// ParseGLBFile parses a GLB container from a file.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseGLB(data)
}

// GLBTriangles is flattened triangle geometry in world space. Normals and
// TexCoords are parallel to Positions, and empty when any contributing
// primitive lacks the attribute.
type GLBTriangles struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2
	Indices   []uint32
}

// Triangles flattens the default scene into world-space triangle soup,
// applying all node transforms. Non-triangle primitives (points, lines)
// are skipped.
func (g *GLB) Triangles() (*GLBTriangles, error) {
	tri := &GLBTriangles{}

	for _, root := range g.rootNodes() {
		if err := g.collectNode(root, math.Identity(), tri, 0); err != nil {
			return nil, err
		}
	}

	// Attribute slices must stay parallel to positions; a primitive
	// without the attribute invalidates the whole slice.
	if len(tri.Normals) != len(tri.Positions) {
		tri.Normals = nil
	}
	if len(tri.TexCoords) != len(tri.Positions) {
		tri.TexCoords = nil
	}

	return tri, nil
}

// rootNodes returns the scene roots: the default scene when present,
// otherwise every node nothing references as a child.
func (g *GLB) rootNodes() []int {
	doc := &g.Document
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (g *GLB) collectNode(idx int, parent math.Mat4, tri *GLBTriangles, depth int) error {
	if depth > maxGLBNodeDepth {
		return fmt.Errorf("%w: node hierarchy deeper than %d", ErrUnsupportedGLBFeature, maxGLBNodeDepth)
	}
	if idx < 0 || idx >= len(g.Document.Nodes) {
		return fmt.Errorf("%w: node %d", ErrInvalidGLBIndex, idx)
	}
	node := &g.Document.Nodes[idx]
	world := parent.Mul(node.localMatrix())

	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(g.Document.Meshes) {
			return fmt.Errorf("%w: mesh %d", ErrInvalidGLBIndex, *node.Mesh)
		}
		mesh := &g.Document.Meshes[*node.Mesh]
		for i := range mesh.Primitives {
			if err := g.collectPrimitive(&mesh.Primitives[i], world, tri); err != nil {
				return err
			}
		}
	}

	for _, child := range node.Children {
		if err := g.collectNode(child, world, tri, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix returns the node's local transform. An explicit matrix wins;
// otherwise T * R * S is composed from the individual components.
func (n *GLBNode) localMatrix() math.Mat4 {
	if len(n.Matrix) == 16 {
		var m math.Mat4
		copy(m[:], n.Matrix)
		return m
	}

	m := math.Identity()
	if len(n.Translation) == 3 {
		m = math.Translate(n.Translation[0], n.Translation[1], n.Translation[2])
	}
	if len(n.Rotation) == 4 {
		q := math.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}
		m = m.Mul(q.ToMat4())
	}
	if len(n.Scale) == 3 {
		m = m.Mul(math.Scale(n.Scale[0], n.Scale[1], n.Scale[2]))
	}
	return m
}

func (g *GLB) collectPrimitive(prim *GLBPrimitive, world math.Mat4, tri *GLBTriangles) error {
	if prim.Mode != nil && *prim.Mode != glbTriangleMode {
		return nil
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("%w: primitive without POSITION", ErrUnsupportedGLBFeature)
	}
	positions, err := g.accessorVec3(posIdx)
	if err != nil {
		return err
	}

	base := uint32(len(tri.Positions))
	for _, p := range positions {
		tri.Positions = append(tri.Positions, world.TransformPoint(p))
	}

	if normIdx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := g.accessorVec3(normIdx)
		if err != nil {
			return err
		}
		normalMat := world.Inverse().Transpose()
		for _, n := range normals {
			tri.Normals = append(tri.Normals, normalMat.TransformDirection(n).Normalize())
		}
	}

	if texIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		texCoords, err := g.accessorVec2(texIdx)
		if err != nil {
			return err
		}
		tri.TexCoords = append(tri.TexCoords, texCoords...)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = g.accessorIndices(*prim.Indices)
		if err != nil {
			return err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if idx >= uint32(len(positions)) {
			return fmt.Errorf("%w: index %d with %d vertices", ErrAccessorOutOfBounds, idx, len(positions))
		}
		tri.Indices = append(tri.Indices, base+idx)
	}

	return nil
}

// accessorBytes resolves an accessor to its backing bytes and stride.
// A nil data slice with no error means the accessor is zero-filled.
func (g *GLB) accessorBytes(idx int) (*GLBAccessor, []byte, int, error) {
	doc := &g.Document
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d", ErrInvalidGLBIndex, idx)
	}
	acc := &doc.Accessors[idx]
	if len(acc.Sparse) > 0 {
		return nil, nil, 0, fmt.Errorf("%w: sparse accessor", ErrUnsupportedGLBFeature)
	}

	elemSize := acc.ComponentType.Size() * componentsPerElement(acc.Type)
	if elemSize == 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor type %s component %d", ErrUnsupportedGLBFeature, acc.Type, acc.ComponentType)
	}

	if acc.BufferView == nil {
		return acc, nil, 0, nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, nil, 0, fmt.Errorf("%w: buffer view %d", ErrInvalidGLBIndex, *acc.BufferView)
	}
	view := &doc.BufferViews[*acc.BufferView]
	if view.Buffer != 0 || (view.Buffer < len(doc.Buffers) && doc.Buffers[view.Buffer].URI != "") {
		return nil, nil, 0, fmt.Errorf("%w: external buffer %d", ErrUnsupportedGLBFeature, view.Buffer)
	}
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset+view.ByteLength > len(g.BIN) {
		return nil, nil, 0, fmt.Errorf("%w: buffer view %d", ErrAccessorOutOfBounds, *acc.BufferView)
	}
	data := g.BIN[view.ByteOffset : view.ByteOffset+view.ByteLength]

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return nil, nil, 0, fmt.Errorf("%w: accessor %d", ErrAccessorOutOfBounds, idx)
	}
	if acc.Count > 0 {
		last := acc.ByteOffset + (acc.Count-1)*stride + elemSize
		if last > len(data) {
			return nil, nil, 0, fmt.Errorf("%w: accessor %d needs %d bytes, view has %d", ErrAccessorOutOfBounds, idx, last, len(data))
		}
	}

	return acc, data, stride, nil
}

func (g *GLB) accessorVec3(idx int) ([]math.Vec3, error) {
	acc, data, stride, err := g.accessorBytes(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != GLBComponentFloat || acc.Type != "VEC3" {
		return nil, fmt.Errorf("%w: accessor %d is %s/%d, want float VEC3", ErrUnsupportedGLBFeature, idx, acc.Type, acc.ComponentType)
	}

	out := make([]math.Vec3, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := 0; i < acc.Count; i++ {
		off := acc.ByteOffset + i*stride
		out[i] = math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(data[off+8 : off+12])),
		}
	}
	return out, nil
}

func (g *GLB) accessorVec2(idx int) ([]math.Vec2, error) {
	acc, data, stride, err := g.accessorBytes(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != GLBComponentFloat || acc.Type != "VEC2" {
		return nil, fmt.Errorf("%w: accessor %d is %s/%d, want float VEC2", ErrUnsupportedGLBFeature, idx, acc.Type, acc.ComponentType)
	}

	out := make([]math.Vec2, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := 0; i < acc.Count; i++ {
		off := acc.ByteOffset + i*stride
		out[i] = math.Vec2{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8])),
		}
	}
	return out, nil
}

func (g *GLB) accessorIndices(idx int) ([]uint32, error) {
	acc, data, stride, err := g.accessorBytes(idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("%w: index accessor %d is %s, want SCALAR", ErrUnsupportedGLBFeature, idx, acc.Type)
	}

	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := 0; i < acc.Count; i++ {
		off := acc.ByteOffset + i*stride
		switch acc.ComponentType {
		case GLBComponentUnsignedByte:
			out[i] = uint32(data[off])
		case GLBComponentUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(data[off : off+2]))
		case GLBComponentUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(data[off : off+4])
		default:
			return nil, fmt.Errorf("%w: index component %d", ErrUnsupportedGLBFeature, acc.ComponentType)
		}
	}
	return out, nil
}
