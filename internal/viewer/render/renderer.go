// Package render provides OpenGL point cloud rendering.
package render

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/unjin-lab/pano3d/internal/cloud"
	"github.com/unjin-lab/pano3d/internal/logger"
	"github.com/unjin-lab/pano3d/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	PointSize  float32
	Background string
	ShowAxis   bool
}

// Renderer draws the uploaded point cloud and the axis gizmo.
type Renderer struct {
	config Config

	// Shader program for point splatting
	program     uint32
	uProjection int32
	uView       int32
	uPointSize  int32

	cloudVAO   uint32
	cloudVBO   uint32
	cloudCount int32

	axisVAO   uint32
	axisVBO   uint32
	axisCount int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Splat size comes from the uPointSize uniform
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	bgR, bgG, bgB := BackgroundColor(cfg.Background)
	gl.ClearColor(bgR, bgG, bgB, 1.0)

	// Create shader program
	var err error
	r.program, err = r.createPointProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.uProjection = mustUniform(r.program, "uProjection")
	r.uView = mustUniform(r.program, "uView")
	r.uPointSize = mustUniform(r.program, "uPointSize")

	if cfg.ShowAxis {
		r.createAxis()
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.dropCloud()
	if r.axisVAO != 0 {
		gl.DeleteVertexArrays(1, &r.axisVAO)
	}
	if r.axisVBO != 0 {
		gl.DeleteBuffers(1, &r.axisVBO)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// PointSize returns the current splat size in pixels.
func (r *Renderer) PointSize() float32 {
	return r.config.PointSize
}

// SetPointSize changes the splat size. Values below 1 are clamped.
func (r *Renderer) SetPointSize(size float32) {
	if size < 1 {
		size = 1
	}
	r.config.PointSize = size
}

// UploadCloud replaces the GPU-resident point cloud.
func (r *Renderer) UploadCloud(c *cloud.PointCloud) {
	r.dropCloud()
	if c.Len() == 0 {
		return
	}

	vertices := interleave(c)

	// Create VAO (Vertex Array Object)
	gl.GenVertexArrays(1, &r.cloudVAO)
	gl.BindVertexArray(r.cloudVAO)

	// Create VBO (Vertex Buffer Object)
	gl.GenBuffers(1, &r.cloudVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.cloudVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	// Unbind
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.cloudCount = int32(c.Len())
	logger.Debug("point cloud uploaded",
		zap.Int("points", c.Len()),
		zap.Bool("colors", c.HasColors()),
	)
}

// Draw renders one frame with the given camera matrices.
func (r *Renderer) Draw(projection, view math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uProjection, 1, false, projection.Ptr())
	gl.UniformMatrix4fv(r.uView, 1, false, view.Ptr())
	gl.Uniform1f(r.uPointSize, r.config.PointSize)

	if r.cloudCount > 0 {
		gl.BindVertexArray(r.cloudVAO)
		gl.DrawArrays(gl.POINTS, 0, r.cloudCount)
	}
	if r.axisCount > 0 {
		gl.BindVertexArray(r.axisVAO)
		gl.DrawArrays(gl.LINES, 0, r.axisCount)
	}
	gl.BindVertexArray(0)
}

// createPointProgram creates the point splatting shader program.
func (r *Renderer) createPointProgram() (uint32, error) {
	// Vertex shader - projects points into clip space
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec3 aColor;

		uniform mat4 uProjection;
		uniform mat4 uView;
		uniform float uPointSize;

		out vec3 vertexColor;

		void main() {
			gl_Position = uProjection * uView * vec4(aPos, 1.0);
			gl_PointSize = uPointSize;
			vertexColor = aColor;
		}
	` + "\x00"

	// Fragment shader - colors pixels
	fragmentShaderSource := `
		#version 410 core

		in vec3 vertexColor;
		out vec4 FragColor;

		void main() {
			FragColor = vec4(vertexColor, 1.0);
		}
	` + "\x00"

	program, err := compileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return 0, err
	}

	logger.Debug("shader program created", zap.Uint32("program", program))
	return program, nil
}

// createAxis creates the axis gizmo geometry.
func (r *Renderer) createAxis() {
	vertices := GenerateAxisVertices(DefaultAxisLength)

	gl.GenVertexArrays(1, &r.axisVAO)
	gl.BindVertexArray(r.axisVAO)

	gl.GenBuffers(1, &r.axisVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.axisVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.axisCount = AxisVertexCount
	logger.Debug("axis gizmo created",
		zap.Uint32("vao", r.axisVAO),
		zap.Uint32("vbo", r.axisVBO),
	)
}

func (r *Renderer) dropCloud() {
	if r.cloudVAO != 0 {
		gl.DeleteVertexArrays(1, &r.cloudVAO)
		r.cloudVAO = 0
	}
	if r.cloudVBO != 0 {
		gl.DeleteBuffers(1, &r.cloudVBO)
		r.cloudVBO = 0
	}
	r.cloudCount = 0
}

// interleave packs positions and colors into the point vertex layout:
// [x, y, z, r, g, b] per point. A colorless cloud renders white.
func interleave(c *cloud.PointCloud) []float32 {
	vertices := make([]float32, 0, c.Len()*6)
	for i, p := range c.Points {
		vertices = append(vertices, p.X, p.Y, p.Z)
		if c.HasColors() {
			col := c.Colors[i]
			vertices = append(vertices, col.X, col.Y, col.Z)
		} else {
			vertices = append(vertices, 1, 1, 1)
		}
	}
	return vertices
}
