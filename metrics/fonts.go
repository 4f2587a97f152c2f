package metrics

// CoreFont maps a user-facing font family name to one of the standard PDF
// base-14 families understood by the rendering engine. Families without a
// base-14 equivalent (Arial, Verdana) fall back to Helvetica, which has
// near-identical average metrics.
func CoreFont(family string) string {
	switch family {
	case "Times New Roman", "Times":
		return "Times"
	case "Courier New", "Courier":
		return "Courier"
	default:
		// Arial, Helvetica, Verdana and anything unknown.
		return "Helvetica"
	}
}
