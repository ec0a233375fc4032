package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")

	// Viewer flags.
	flagPLY        = flag.String("ply", "", "Point cloud file to display")
	flagPoints     = flag.Int("points", 0, "Maximum number of points to display")
	flagSize       = flag.Float64("size", 0, "Point size in pixels")
	flagFOV        = flag.Float64("fov", 0, "Horizontal field of view in degrees")
	flagDistance   = flag.Float64("distance", 0, "Camera distance from the cloud center")
	flagBGColor    = flag.String("bgcolor", "", "Background color: black, white, gray or darkgray")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagNoInvert   = flag.Bool("no-invert", false, "Skip negating point coordinates on load")
	flagNoNormals  = flag.Bool("no-normals", false, "Accepted for script compatibility; has no effect")
	flagNoAxis     = flag.Bool("no-axis", false, "Hide the axis gizmo")
	flagHorizontal = flag.Bool("horizontal-only", false, "Keep the camera at its initial height")

	// Server flags.
	flagPort    = flag.Int("port", 0, "HTTP listen port")
	flagDataDir = flag.String("data-dir", "", "Directory for uploads and task metadata")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Only flags the
// user actually set are applied, so zero is a valid override value.
func applyFlags(cfg *Config) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlagSet(cfg, set)
}

func applyFlagSet(cfg *Config, set map[string]bool) {
	if set["debug"] {
		cfg.Logging.Level = "debug"
	}
	if set["ply"] {
		cfg.Viewer.PLYPath = *flagPLY
	}
	if set["points"] {
		cfg.Viewer.MaxPoints = *flagPoints
	}
	if set["size"] {
		cfg.Viewer.PointSize = float32(*flagSize)
	}
	if set["fov"] {
		cfg.Viewer.FOVDegrees = float32(*flagFOV)
	}
	if set["distance"] {
		cfg.Viewer.CameraDistance = float32(*flagDistance)
	}
	if set["bgcolor"] {
		cfg.Viewer.Background = *flagBGColor
	}
	if set["width"] {
		cfg.Viewer.Width = *flagWidth
	}
	if set["height"] {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagNoInvert {
		cfg.Viewer.Invert = false
	}
	if *flagNoAxis {
		cfg.Viewer.ShowAxis = false
	}
	if *flagHorizontal {
		cfg.Viewer.HorizontalOnly = true
	}
	if set["port"] {
		cfg.Server.Port = *flagPort
	}
	if set["data-dir"] {
		cfg.Server.DataDir = *flagDataDir
	}

	// --no-normals is parsed but deliberately unused: the renderer never
	// consumed normals and existing launch scripts still pass it.
	_ = flagNoNormals
}
