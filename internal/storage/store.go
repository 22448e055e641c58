package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/adaptsim/internal/config"
	"github.com/san-kum/adaptsim/internal/experiment"
)

// Store keeps finished study reports under one directory per study. The
// files are a record for inspection and export; a sampler is never
// rebuilt from them.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type StudyMetadata struct {
	ID         string                `json:"id"`
	Model      string                `json:"model"`
	Timestamp  time.Time             `json:"timestamp"`
	Integrator string                `json:"integrator"`
	Dt         float64               `json:"dt"`
	Duration   float64               `json:"duration"`
	Output     string                `json:"output"`
	Metric     string                `json:"metric,omitempty"`
	Mode       string                `json:"mode"`
	Params     []config.ParamConfig  `json:"params"`
	Sampling   config.SamplingConfig `json:"sampling"`
	Initial    int                   `json:"initial"`
	Samples    int                   `json:"samples"`
	Rounds     int                   `json:"rounds"`
	Converged  bool                  `json:"converged"`
	MaxError   float64               `json:"max_error"`
}

// Save writes metadata.json, points.csv, rounds.csv and snapshots.csv for
// a finished study and returns its ID.
func (s *Store) Save(cfg *config.Config, rep *experiment.Report) (string, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_%d", rep.Model, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	_, samples := rep.Points.Dims()
	meta := StudyMetadata{
		ID:         id,
		Model:      rep.Model,
		Timestamp:  now,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Output:     cfg.Output,
		Metric:     cfg.Metric,
		Mode:       rep.Mode.String(),
		Params:     cfg.Params,
		Sampling:   cfg.Sampling,
		Initial:    rep.Initial,
		Samples:    samples,
		Rounds:     len(rep.Rounds),
		Converged:  rep.Converged,
	}
	if len(rep.Errors) > 0 {
		meta.MaxError = floats.Max(rep.Errors)
	}

	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writePoints(filepath.Join(dir, "points.csv"), rep); err != nil {
		return "", err
	}
	if err := writeRounds(filepath.Join(dir, "rounds.csv"), rep); err != nil {
		return "", err
	}
	if err := writeMatrix(filepath.Join(dir, "snapshots.csv"), "y", rep.Snapshots); err != nil {
		return "", err
	}
	return id, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// writePoints writes one row per sample: index, the parameter values, its
// final leave-one-out error and whether it belongs to the initial design.
func writePoints(path string, rep *experiment.Report) error {
	header := append([]string{"sample"}, rep.Params...)
	header = append(header, "error", "initial")

	_, n := rep.Points.Dims()
	rows := make([][]string, n)
	for j := 0; j < n; j++ {
		row := []string{strconv.Itoa(j)}
		for _, v := range mat.Col(nil, j, rep.Points) {
			row = append(row, formatFloat(v))
		}
		errStr := ""
		if j < len(rep.Errors) {
			errStr = formatFloat(rep.Errors[j])
		}
		row = append(row, errStr, strconv.FormatBool(j < rep.Initial))
		rows[j] = row
	}
	return writeCSV(path, header, rows)
}

func writeRounds(path string, rep *experiment.Report) error {
	header := []string{"round", "max_error", "uniform"}
	header = append(header, rep.Params...)

	rows := make([][]string, len(rep.Rounds))
	for i, r := range rep.Rounds {
		row := []string{strconv.Itoa(r.Index), formatFloat(r.MaxError), strconv.FormatBool(r.Uniform)}
		for _, v := range r.Point {
			row = append(row, formatFloat(v))
		}
		rows[i] = row
	}
	return writeCSV(path, header, rows)
}

// writeMatrix writes the columns of m as rows.
func writeMatrix(path, prefix string, m mat.Matrix) error {
	r, c := m.Dims()
	header := make([]string, r)
	for i := range header {
		header[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	rows := make([][]string, c)
	for j := 0; j < c; j++ {
		row := make([]string, r)
		for i := 0; i < r; i++ {
			row[i] = formatFloat(m.At(i, j))
		}
		rows[j] = row
	}
	return writeCSV(path, header, rows)
}

// List returns the metadata of every saved study, oldest first.
func (s *Store) List() ([]StudyMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []StudyMetadata{}, nil
		}
		return nil, err
	}

	studies := make([]StudyMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		studies = append(studies, *meta)
	}
	sort.Slice(studies, func(i, j int) bool {
		return studies[i].Timestamp.Before(studies[j].Timestamp)
	})
	return studies, nil
}

func (s *Store) Load(id string) (*StudyMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta StudyMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Point is one row of points.csv.
type Point struct {
	Sample  int
	Mu      []float64
	Error   float64
	Initial bool
}

func (s *Store) LoadPoints(id string) ([]Point, error) {
	records, err := readCSV(filepath.Join(s.baseDir, id, "points.csv"))
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			return nil, fmt.Errorf("storage: short points row %v", rec)
		}
		sample, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, err
		}
		mu, err := parseFloats(rec[1 : len(rec)-2])
		if err != nil {
			return nil, err
		}
		p := Point{Sample: sample, Mu: mu}
		if e := rec[len(rec)-2]; e != "" {
			if p.Error, err = strconv.ParseFloat(e, 64); err != nil {
				return nil, err
			}
		}
		if p.Initial, err = strconv.ParseBool(rec[len(rec)-1]); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Store) LoadRounds(id string) ([]experiment.Round, error) {
	records, err := readCSV(filepath.Join(s.baseDir, id, "rounds.csv"))
	if err != nil {
		return nil, err
	}

	rounds := make([]experiment.Round, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			return nil, fmt.Errorf("storage: short rounds row %v", rec)
		}
		var r experiment.Round
		if r.Index, err = strconv.Atoi(rec[0]); err != nil {
			return nil, err
		}
		if r.MaxError, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, err
		}
		if r.Uniform, err = strconv.ParseBool(rec[2]); err != nil {
			return nil, err
		}
		if r.Point, err = parseFloats(rec[3:]); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

// LoadSnapshots returns the saved snapshots, one per row.
func (s *Store) LoadSnapshots(id string) ([][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, id, "snapshots.csv"))
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(records))
	for i, rec := range records {
		if out[i], err = parseFloats(rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readCSV returns the records after the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
