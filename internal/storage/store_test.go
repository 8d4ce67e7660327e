package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

func sampleResult() *dynamo.Result {
	x0 := make(dynamo.State, vehicle.StateDim)
	x1 := make(dynamo.State, vehicle.StateDim)
	x1[0] = 0.1
	x1[11] = -0.25
	return &dynamo.Result{
		States:     []dynamo.State{x0, x1},
		Controls:   []dynamo.Control{{1, 0, 0, 0, 0, 0}},
		Times:      []float64{0.0, 0.1},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"kinetic_energy": 1.5,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("unit", "surge")
	result := sampleResult()
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "surge_") {
		t.Errorf("expected run id prefixed with scenario, got %s", runID)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(runID, "surge_")); err != nil {
		t.Errorf("run id suffix is not a uuid: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Vehicle != "unit" {
		t.Errorf("expected vehicle 'unit', got '%s'", meta.Vehicle)
	}
	if meta.Cycles != 50 {
		t.Errorf("expected 50 cycles, got %d", meta.Cycles)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}

	loaded, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if diff := cmp.Diff(result, loaded); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}

	sc, err := st.LoadScenario(runID)
	if err != nil {
		t.Fatalf("load scenario failed: %v", err)
	}
	if sc.Name != "surge" || sc.Cycles != cfg.Cycles {
		t.Errorf("scenario not restored: %+v", sc)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(config.GetPreset("unit", "surge"), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(config.GetPreset("unit", "buoyancy"), sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first {
		t.Errorf("expected oldest run first, got %s", runs[0].ID)
	}

	id, err := st.Resolve("surge")
	if err != nil || id != first {
		t.Errorf("resolve surge: %s, %v", id, err)
	}
	if _, err := st.Resolve("yaw"); err == nil {
		t.Error("expected error for unknown prefix")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.DefaultScenario(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "scenario.yaml", "states.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	want := "time,u,v,w,p,q,r,x,y,z,roll,pitch,yaw,u0,u1,u2,u3,u4,u5"
	if lines[0] != want {
		t.Errorf("header\n got %s\nwant %s", lines[0], want)
	}
	if !strings.HasSuffix(lines[2], ",0,0,0,0,0,0") {
		t.Errorf("expected zero controls on the last row, got %s", lines[2])
	}
}

func TestLoadResultRejectsShortRow(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "broken")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "states.csv"), []byte("time,x0\n0,1\n0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadResult("broken"); err == nil {
		t.Error("expected error for a short row")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "run", Scenario: "surge"}
	if err := ExportJSON(&buf, meta, vehicle.StateNames(), sampleResult()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Run.ID != "run" || len(got.States) != 2 || len(got.Labels) != vehicle.StateDim {
		t.Errorf("unexpected export: %+v", got)
	}
	if got.States[1][11] != -0.25 {
		t.Errorf("expected yaw -0.25, got %g", got.States[1][11])
	}
}

func TestNewMetadataErrors(t *testing.T) {
	res := sampleResult()
	res.Errors = []error{errors.New("diverged")}
	meta := NewMetadata(config.DefaultScenario(), res)
	if len(meta.Errors) != 1 || meta.Errors[0] != "diverged" {
		t.Errorf("expected recorded error, got %v", meta.Errors)
	}
}
