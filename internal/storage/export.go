package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/uwvsim/internal/dynamo"
)

type ExportData struct {
	Run      RunMetadata        `json:"run"`
	Labels   []string           `json:"labels"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Controls [][]float64        `json:"controls"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes the whole run as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, labels []string, result *dynamo.Result) error {
	data := ExportData{
		Run:      meta,
		Labels:   labels,
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Controls: make([][]float64, len(result.Controls)),
		Metrics:  result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
