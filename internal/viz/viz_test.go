package viz

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/scenario"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}

	c.Clear()
	if c.String() != string([]rune{0x2800, 0x2800}) {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestViewportKeepsNorthUp(t *testing.T) {
	c := NewCanvas(10, 5)
	vp := FitViewport([]float64{0, 10}, []float64{0, 0}, 1)

	_, yStart := vp.Project(c, 0, 0)
	_, yEnd := vp.Project(c, 10, 0)
	if yEnd >= yStart {
		t.Errorf("north should move up the canvas: %d -> %d", yStart, yEnd)
	}

	w, h := c.Dots()
	for _, x := range []float64{0, 10} {
		px, py := vp.Project(c, x, 0)
		if px < 0 || px >= w || py < 0 || py >= h {
			t.Errorf("point (%g, 0) projected off canvas: (%d, %d)", x, px, py)
		}
	}
}

func TestFitViewportMinSpan(t *testing.T) {
	vp := FitViewport(nil, nil, 10)
	if vp.MaxX-vp.MinX != 10 || vp.MaxY-vp.MinY != 10 {
		t.Errorf("expected 10 m span, got %+v", vp)
	}
	vp = FitViewport([]float64{1}, []float64{2}, 4)
	if vp.MinX != -1 || vp.MaxY != 4 {
		t.Errorf("expected centered 4 m span, got %+v", vp)
	}
}

func TestDrawTrackMarksCanvas(t *testing.T) {
	c := NewCanvas(10, 5)
	xs, ys := []float64{0, 5, 5}, []float64{0, 0, 5}
	c.DrawTrack(FitViewport(xs, ys, 1), xs, ys)
	if !strings.ContainsFunc(c.String(), func(r rune) bool { return r > 0x2800 }) {
		t.Error("expected dots on the canvas")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "ocean" {
		t.Error("expected ocean fallback")
	}
	seen := map[string]bool{}
	th := ThemeOcean
	for range Themes {
		seen[th.Name] = true
		th = th.Next()
	}
	if len(seen) != len(ThemeNames()) || th.Name != "ocean" {
		t.Errorf("Next does not cycle all themes: %v", seen)
	}
}

func TestChart(t *testing.T) {
	if Chart(nil, "x", 10, 3) != "" {
		t.Error("expected empty chart for no data")
	}
	out := Chart([]float64{0, 1, 2, 1}, "speed", 10, 3)
	if !strings.Contains(out, "speed") {
		t.Errorf("expected caption in chart:\n%s", out)
	}
}

func newLive(t *testing.T) *Live {
	t.Helper()
	r, err := scenario.New(config.GetPreset("unit", "surge"))
	if err != nil {
		t.Fatal(err)
	}
	return NewLive(r, ThemeOcean, 2)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveTickSteps(t *testing.T) {
	m := newLive(t)
	m.Update(TickMsg(time.Now()))

	if got := m.runner.Vehicle().Cycles(); got != 2 {
		t.Errorf("expected 2 cycles per tick, got %d", got)
	}
	if len(m.xs) != 3 {
		t.Errorf("expected 3 track points, got %d", len(m.xs))
	}
	if !strings.Contains(m.View(), "SURGE") {
		t.Error("expected scenario name in view")
	}
}

func TestLiveKeys(t *testing.T) {
	m := newLive(t)

	m.Update(key(" "))
	m.Update(TickMsg(time.Now()))
	if m.runner.Vehicle().Cycles() != 0 {
		t.Error("paused view should not step")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status")
	}

	m.Update(key("up"))
	if got := m.runner.Manual().U[vehicle.Surge]; got != 1+nudgeStep {
		t.Errorf("expected nudged surge command, got %g", got)
	}

	m.Update(key(" "))
	m.Update(TickMsg(time.Now()))
	m.Update(key("r"))
	if m.runner.Vehicle().Cycles() != 0 || len(m.xs) != 1 {
		t.Error("reset should clear the run")
	}

	m.Update(key("t"))
	if m.theme.Name != ThemeRetroGreen.Name {
		t.Errorf("expected retro theme, got %s", m.theme.Name)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func testResult() *dynamo.Result {
	res := dynamo.NewResult(3)
	for i := 0; i < 4; i++ {
		x := make(dynamo.State, vehicle.StateDim)
		x[vehicle.IdxPosition] = float64(i)
		x[vehicle.IdxPosition+1] = float64(i * i)
		res.States = append(res.States, x)
		res.Times = append(res.Times, 0.1*float64(i))
	}
	return res
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	series := filepath.Join(dir, "series.png")
	track := filepath.Join(dir, "track.png")

	if err := SaveTimeSeries(series, "surge", testResult(), []int{0, vehicle.IdxPosition}); err != nil {
		t.Fatal(err)
	}
	if err := SaveTrack(track, "surge", testResult()); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{series, track} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", path)
		}
	}

	if err := SaveTimeSeries(series, "bad", testResult(), []int{42}); err == nil {
		t.Error("expected error for an out-of-range state index")
	}
	if err := SaveTrack(track, "empty", dynamo.NewResult(0)); err == nil {
		t.Error("expected error for an empty result")
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, "surge run", testResult(), []int{0, vehicle.IdxPosition}); err != nil {
		t.Fatal(err)
	}
	page := buf.String()
	for _, want := range []string{"<html", "echarts", "surge run", `"track"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if err := WriteHTML(&buf, "bad", testResult(), []int{42}); err == nil {
		t.Error("expected error for an out-of-range state index")
	}
	if err := WriteHTML(&buf, "empty", dynamo.NewResult(0), nil); err == nil {
		t.Error("expected error for an empty result")
	}
}
