// Package storage keeps one directory per scenario run: metadata.json, the
// scenario that produced it and the sampled trajectory as states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/dynamo"
	"github.com/san-kum/uwvsim/internal/vehicle"
)

const (
	metadataFile = "metadata.json"
	scenarioFile = "scenario.yaml"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Scenario       string             `json:"scenario"`
	Vehicle        string             `json:"vehicle"`
	Timestamp      time.Time          `json:"timestamp"`
	Mode           string             `json:"mode"`
	SamplingPeriod float64            `json:"sampling_period"`
	SubSteps       int                `json:"sub_steps"`
	Cycles         int                `json:"cycles"`
	Steps          int                `json:"steps"`
	Integrator     string             `json:"integrator"`
	Controller     string             `json:"controller"`
	Metrics        map[string]float64 `json:"metrics"`
	Errors         []string           `json:"errors,omitempty"`
}

// NewMetadata describes a result produced by cfg under a fresh run ID.
func NewMetadata(cfg *config.Scenario, result *dynamo.Result) RunMetadata {
	meta := RunMetadata{
		ID:             fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()),
		Scenario:       cfg.Name,
		Vehicle:        cfg.Vehicle,
		Timestamp:      time.Now().UTC(),
		Mode:           string(cfg.Mode),
		SamplingPeriod: cfg.SamplingPeriod,
		SubSteps:       cfg.SubSteps,
		Cycles:         cfg.Cycles,
		Steps:          result.StepsTaken,
		Integrator:     cfg.Integrator,
		Controller:     cfg.Controller.Type,
		Metrics:        result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(cfg *config.Scenario, result *dynamo.Result) (string, error) {
	meta := NewMetadata(cfg, result)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, scenarioFile), cfg); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteCSV writes one row per sample: time, the named state entries, then
// the command applied from that sample (zeros on the last row).
func WriteCSV(out io.Writer, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	if len(result.States[0]) == vehicle.StateDim {
		header = append(header, vehicle.StateNames()...)
	} else {
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}

	numControls := 0
	if len(result.Controls) > 0 && len(result.Controls[0]) > 0 {
		numControls = len(result.Controls[0])
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}

	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}

		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}

		if i < len(result.Controls) && len(result.Controls[i]) > 0 {
			for _, val := range result.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
		} else if numControls > 0 {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// Resolve expands a unique ID prefix to a full run ID.
func (s *Store) Resolve(prefix string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	var found []string
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			found = append(found, r.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("run not found: %s", prefix)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("run prefix %s is ambiguous (%d matches)", prefix, len(found))
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadScenario reads the scenario a run was produced from.
func (s *Store) LoadScenario(runID string) (*config.Scenario, error) {
	return config.Load(filepath.Join(s.baseDir, runID, scenarioFile))
}

// LoadResult reads states.csv back into a result. Columns named u<i> are
// controls; the last row's controls are dropped as written.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	result := dynamo.NewResult(0)
	if len(records) < 2 {
		return result, nil
	}

	header := records[0]
	firstControl := len(header)
	for j, name := range header {
		if j > 0 && strings.HasPrefix(name, "u") && len(name) > 1 {
			if _, err := strconv.Atoi(name[1:]); err == nil {
				firstControl = j
				break
			}
		}
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(header) {
			return nil, fmt.Errorf("%s line %d: %d fields, want %d", statesFile, i+1, len(record), len(header))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statesFile, i+1, err)
			}
			vals[j] = v
		}

		result.Times = append(result.Times, vals[0])
		result.States = append(result.States, dynamo.State(vals[1:firstControl]))
		if i < len(records)-1 && firstControl < len(vals) {
			result.Controls = append(result.Controls, dynamo.Control(vals[firstControl:]))
		}
	}
	result.StepsTaken = len(result.States) - 1

	if meta, err := s.Load(runID); err == nil {
		result.Metrics = meta.Metrics
	}
	return result, nil
}
