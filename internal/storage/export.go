package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/heartswarm/internal/dynamo"
)

type ExportData struct {
	Run     RunMetadata     `json:"run"`
	Steps   int             `json:"steps"`
	Samples []dynamo.Sample `json:"samples"`
	// Dropped counts samples left out for holding non-finite values.
	Dropped int `json:"dropped,omitempty"`
}

func finiteSample(smp dynamo.Sample) bool {
	return finite(smp.MeanDistance) && finite(smp.Energy) && smp.Center.IsValid()
}

// ExportJSON writes a stored run, metadata and samples, as indented JSON.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	kept := samples[:0]
	for _, smp := range samples {
		if finiteSample(smp) {
			kept = append(kept, smp)
		}
	}

	data := ExportData{
		Run:     *meta,
		Steps:   len(kept),
		Samples: kept,
		Dropped: len(samples) - len(kept),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile is ExportJSON into a new file at path.
func (s *Store) ExportJSONFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.ExportJSON(runID, file)
}
