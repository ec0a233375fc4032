package render

// BackgroundColor maps a named background to RGB. Unknown names fall
// back to black so a typo on the command line never aborts the viewer.
func BackgroundColor(name string) (r, g, b float32) {
	switch name {
	case "white":
		return 1.0, 1.0, 1.0
	case "gray":
		return 0.5, 0.5, 0.5
	case "darkgray":
		return 0.2, 0.2, 0.2
	default:
		return 0.0, 0.0, 0.0
	}
}

// BackgroundNames lists the recognized background palette names.
func BackgroundNames() []string {
	return []string{"black", "white", "gray", "darkgray"}
}
