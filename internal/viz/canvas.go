package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width x Height grid of braille cells, addressed in dots:
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set turns on the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps a world rectangle onto canvas dots with equal scale on
// both axes. World X is drawn upwards and world Y to the right, so a NED
// track reads like a chart with north up.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// FitViewport returns the smallest square viewport around the points with
// a margin, never narrower than minSpan.
func FitViewport(xs, ys []float64, minSpan float64) Viewport {
	if len(xs) == 0 {
		h := minSpan / 2
		return Viewport{MinX: -h, MaxX: h, MinY: -h, MaxY: h}
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	span := math.Max(math.Max(maxX-minX, maxY-minY)*1.1, minSpan)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return Viewport{MinX: cx - span/2, MaxX: cx + span/2, MinY: cy - span/2, MaxY: cy + span/2}
}

// Project returns the dot for world point (x, y) on c.
func (v Viewport) Project(c *Canvas, x, y float64) (int, int) {
	w, h := c.Dots()
	side := math.Min(float64(w), float64(h))
	ox := (float64(w) - side) / 2
	oy := (float64(h) - side) / 2
	px := ox + (y-v.MinY)/(v.MaxY-v.MinY)*(side-1)
	py := oy + (v.MaxX-x)/(v.MaxX-v.MinX)*(side-1)
	return int(math.Round(px)), int(math.Round(py))
}

// DrawTrack joins consecutive world points with lines.
func (c *Canvas) DrawTrack(v Viewport, xs, ys []float64) {
	for i := range xs {
		px, py := v.Project(c, xs[i], ys[i])
		if i == 0 {
			c.Set(px, py)
			continue
		}
		qx, qy := v.Project(c, xs[i-1], ys[i-1])
		c.DrawLine(qx, qy, px, py)
	}
}
