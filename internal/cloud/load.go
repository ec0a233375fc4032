package cloud

import (
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	"github.com/seqsense/pcgol/pc"

	"github.com/unjin-lab/pano3d/pkg/math"
)

// ErrUnsupportedFormat is returned for file extensions Load cannot read.
var ErrUnsupportedFormat = errors.New("unsupported point cloud format")

// Load reads a point cloud from a .ply or .pcd file, dispatching on the
// extension. A missing file keeps fs.ErrNotExist in its error chain.
func Load(path string) (*PointCloud, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return loadPLY(path)
	case ".pcd":
		return loadPCD(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadPLY(path string) (*PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	mesh, err := ply.ReadMesh(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	positions := mesh.Float3Attribute(modeling.PositionAttribute)

	out := &PointCloud{Points: make([]math.Vec3, positions.Len())}
	for i := 0; i < positions.Len(); i++ {
		out.Points[i] = vec3From(positions.At(i))
	}

	// polyform scales uchar colors to [0,1] floats on read.
	if mesh.HasFloat3Attribute(modeling.ColorAttribute) {
		colors := mesh.Float3Attribute(modeling.ColorAttribute)
		if colors.Len() == positions.Len() {
			out.Colors = make([]math.Vec3, colors.Len())
			for i := range out.Colors {
				out.Colors[i] = vec3From(colors.At(i))
			}
		}
	}

	return out, nil
}

// vec3From narrows polyform's float64 vectors to the renderer's float32.
func vec3From(v vector3.Float64) math.Vec3 {
	return math.Vec3{X: float32(v.X()), Y: float32(v.Y()), Z: float32(v.Z())}
}

func loadPCD(path string) (*PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pcd, err := pc.Unmarshal(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	it, err := pcd.Vec3Iterator()
	if err != nil {
		return nil, fmt.Errorf("reading positions from %s: %w", path, err)
	}

	out := &PointCloud{Points: make([]math.Vec3, 0, pcd.Points)}
	for it.IsValid() {
		v := it.Vec3()
		out.Points = append(out.Points, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		it.Incr()
	}

	// PCL packs color bits into a float32 "rgb" field.
	if rgb, err := pcd.Float32Iterator("rgb"); err == nil {
		colors := make([]math.Vec3, 0, len(out.Points))
		for rgb.IsValid() {
			bits := gomath.Float32bits(rgb.Float32())
			colors = append(colors, math.Vec3{
				X: float32(bits>>16&0xFF) / 255,
				Y: float32(bits>>8&0xFF) / 255,
				Z: float32(bits&0xFF) / 255,
			})
			rgb.Incr()
		}
		if len(colors) == len(out.Points) {
			out.Colors = colors
		}
	}

	return out, nil
}
