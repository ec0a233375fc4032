// Package viewer implements the interactive inside-out point cloud viewer.
package viewer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/unjin-lab/pano3d/internal/cloud"
	"github.com/unjin-lab/pano3d/internal/viewer/camera"
	"github.com/unjin-lab/pano3d/internal/viewer/input"
	"github.com/unjin-lab/pano3d/internal/viewer/render"
	"github.com/unjin-lab/pano3d/internal/viewer/window"
)

// Interaction tuning.
const (
	nearPlane = 0.01
	farPlane  = 1000.0

	lookSpeed  = 0.005 // radians per pixel dragged
	panSpeed   = 0.005 // world units per pixel dragged
	dollySpeed = 0.25  // world units per wheel notch
	sizeStep   = 1.0   // point size change per keypress
)

// Config holds viewer configuration.
type Config struct {
	Title          string
	Width          int
	Height         int
	PointSize      float32
	FOVDegrees     float32
	CameraDistance float32
	Background     string
	ShowAxis       bool
	HorizontalOnly bool
}

// App is the interactive viewer instance.
type App struct {
	config  Config
	running bool

	window   *window.Window
	renderer *render.Renderer
	input    *input.Input

	intrinsics camera.Intrinsics
	frame      camera.Frame
	lock       *camera.HorizontalLock
}

// New creates a viewer showing the given cloud.
func New(cfg Config, c *cloud.PointCloud) (*App, error) {
	slog.Info("initializing viewer",
		"title", cfg.Title,
		"width", cfg.Width,
		"height", cfg.Height,
		"points", c.Len(),
	)

	a := &App{
		config:  cfg,
		running: false,
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		VSync:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	a.renderer, err = render.New(render.Config{
		Width:      cfg.Width,
		Height:     cfg.Height,
		PointSize:  cfg.PointSize,
		Background: cfg.Background,
		ShowAxis:   cfg.ShowAxis,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.renderer.UploadCloud(c)

	a.input = input.New()

	a.intrinsics = camera.NewIntrinsics(cfg.Width, cfg.Height, cfg.FOVDegrees)
	a.frame = camera.InsideOut(cfg.CameraDistance)
	if cfg.HorizontalOnly {
		a.lock = &camera.HorizontalLock{InitialHeight: a.frame.Position.Y}
	}

	a.logControls()
	slog.Info("viewer initialized",
		"fov", cfg.FOVDegrees,
		"point_size", cfg.PointSize,
		"background", cfg.Background,
		"distance", cfg.CameraDistance,
	)
	return a, nil
}

// Run starts the viewer loop. Blocks until the user quits.
func (a *App) Run() error {
	a.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	slog.Info("starting viewer loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			a.handleEvent(event)
		}

		// 2. Reproject onto the horizontal plane, every frame while locked
		if a.lock != nil {
			a.frame = a.lock.Level(a.frame)
		}

		// 3. Render
		a.renderer.Draw(a.intrinsics.Projection(nearPlane, farPlane), a.frame.View())

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			slog.Debug("fps", "count", frameCount, "dt", fmt.Sprintf("%.2fms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (a *App) Close() {
	slog.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventResize:
		a.resize(event.Width, event.Height)
	case input.EventKeyDown:
		a.handleKey(event.Key)
	case input.EventDrag:
		a.handleDrag(event)
	case input.EventWheel:
		a.frame = a.frame.Dolly(float32(event.DY) * dollySpeed)
	}
}

// resize re-derives the intrinsics so the configured fov survives a
// window resize.
func (a *App) resize(width, height int) {
	a.renderer.Resize(width, height)
	a.intrinsics = camera.NewIntrinsics(width, height, a.config.FOVDegrees)
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		a.running = false
	case sdl.SCANCODE_R:
		a.reset()
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		a.renderer.SetPointSize(a.renderer.PointSize() + sizeStep)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		a.renderer.SetPointSize(a.renderer.PointSize() - sizeStep)
	}
}

// handleDrag grabs the scene: content follows the cursor.
func (a *App) handleDrag(event input.Event) {
	if event.Shift || event.Button == sdl.BUTTON_RIGHT {
		a.frame = a.frame.Pan(float32(-event.DX)*panSpeed, float32(event.DY)*panSpeed)
		return
	}
	a.frame = a.frame.Yaw(float32(event.DX) * lookSpeed)
	if a.lock == nil {
		a.frame = a.frame.Pitch(float32(event.DY) * lookSpeed)
	}
}

// reset returns to the inside-out startup view.
func (a *App) reset() {
	a.frame = camera.InsideOut(a.config.CameraDistance)
	if a.lock != nil {
		a.lock.InitialHeight = a.frame.Position.Y
	}
}

// logControls announces the mouse and key bindings. The window itself
// has no UI, so this is the only place the user learns them.
func (a *App) logControls() {
	if a.config.HorizontalOnly {
		slog.Info("controls: left drag looks around (horizontal only, vertical locked)")
	} else {
		slog.Info("controls: left drag looks around")
	}
	slog.Info("controls: mouse wheel zooms in and out")
	slog.Info("controls: shift drag or right drag moves the camera")
	slog.Info("controls: +/- changes point size, R resets the view")
	slog.Info("controls: Q or ESC quits")
}
