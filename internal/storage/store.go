package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/rigidsim/internal/dynamo"
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
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Bodies      []string           `json:"bodies"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Errors      []string           `json:"errors,omitempty"`
}

// Trajectory is the per-snapshot table stored with a run.
type Trajectory struct {
	Header []string
	Times  []float64
	Rows   [][]float64
}

// Column returns the named column, without the time column, or nil.
func (t *Trajectory) Column(name string) []float64 {
	idx := slices.Index(t.Header, name)
	if idx < 1 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx-1 < len(row) {
			out = append(out, row[idx-1])
		}
	}
	return out
}

func newRunID(scene string) string {
	return fmt.Sprintf("%s_%s", scene, uuid.NewString()[:8])
}

func (s *Store) Save(scene string, cfg dynamo.Config, result *dynamo.Result) (string, error) {
	runID := newRunID(scene)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       scene,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	if len(result.Snapshots) > 0 {
		for _, b := range result.Snapshots[0].Bodies {
			meta.Bodies = append(meta.Bodies, b.Name)
		}
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "states.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	if len(result.Snapshots) == 0 {
		w.Flush()
		return runID, w.Error()
	}

	header := []string{"time", "kinetic", "potential", "contacts"}
	for _, name := range meta.Bodies {
		for _, c := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, name+"_"+c)
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for _, snap := range result.Snapshots {
		row := []string{
			format(snap.Time),
			format(snap.KineticEnergy),
			format(snap.PotentialEnergy),
			strconv.Itoa(snap.Contacts),
		}
		for i := range meta.Bodies {
			// bodies that split off mid-run have no column
			if i >= len(snap.Bodies) {
				row = append(row, "", "", "", "", "", "")
				continue
			}
			b := snap.Bodies[i]
			row = append(row,
				format(b.Position[0]), format(b.Position[1]), format(b.Position[2]),
				format(b.Velocity[0]), format(b.Velocity[1]), format(b.Velocity[2]))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return runID, w.Error()
}

// List returns every stored run, oldest first.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
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

	traj := &Trajectory{}
	if len(records) == 0 {
		return traj, nil
	}
	traj.Header = records[0]

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		traj.Times = append(traj.Times, t)

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		traj.Rows = append(traj.Rows, row)
	}

	return traj, nil
}
