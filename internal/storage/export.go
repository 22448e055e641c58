package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/adaptsim/internal/experiment"
)

type ExportData struct {
	Metadata StudyMetadata      `json:"metadata"`
	Points   []Point            `json:"points"`
	Rounds   []experiment.Round `json:"rounds"`
}

// Export writes a saved study as one indented JSON document.
func (s *Store) Export(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	points, err := s.LoadPoints(id)
	if err != nil {
		return err
	}
	rounds, err := s.LoadRounds(id)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Metadata: *meta, Points: points, Rounds: rounds})
}
