package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Chart renders values as an ASCII line chart. Long series are
// downsampled to width points.
func Chart(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(3),
	)
}
