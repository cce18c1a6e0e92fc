package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	snap := func(t, y float64) dynamo.Snapshot {
		return dynamo.Snapshot{
			Time:            t,
			KineticEnergy:   t * 2,
			PotentialEnergy: y,
			Contacts:        1,
			Bodies: []dynamo.BodyState{
				{Name: "floor"},
				{Name: "cube", Position: mgl64.Vec3{0, y, 0}, Velocity: mgl64.Vec3{0, -t, 0}},
			},
		}
	}
	return &dynamo.Result{
		Snapshots:   []dynamo.Snapshot{snap(0, 3), snap(0.5, 2.5), snap(1, 1)},
		Metrics:     map[string]float64{"energy_drift": 0.01},
		EnergyDrift: 0.01,
		StepsTaken:  100,
		Errors:      []error{&dynamo.SimulationError{Step: 99, Wrapped: errors.New("boom")}},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := dynamo.Config{Dt: 0.01, Duration: 1, Seed: 7}
	id, err := s.Save("drop", cfg, sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(id, "drop_") {
		t.Errorf("unexpected run id %s", id)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Seed != 7 || meta.Steps != 100 || meta.Metrics["energy_drift"] != 0.01 {
		t.Errorf("metadata not preserved: %+v", meta)
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1] != "cube" {
		t.Errorf("expected body names, got %v", meta.Bodies)
	}
	if len(meta.Errors) != 1 || !strings.Contains(meta.Errors[0], "boom") {
		t.Errorf("expected stored error, got %v", meta.Errors)
	}

	traj, err := s.LoadTrajectory(id)
	if err != nil {
		t.Fatalf("load trajectory: %v", err)
	}
	if len(traj.Times) != 3 || traj.Times[2] != 1 {
		t.Errorf("unexpected times %v", traj.Times)
	}
	if got := traj.Column("cube_y"); len(got) != 3 || got[0] != 3 || got[2] != 1 {
		t.Errorf("unexpected cube_y column %v", got)
	}
	if got := traj.Column("kinetic"); got[1] != 1 {
		t.Errorf("unexpected kinetic column %v", got)
	}
	if traj.Column("missing") != nil || traj.Column("time") != nil {
		t.Error("expected nil for unknown and time columns")
	}
}

func TestListIsOrdered(t *testing.T) {
	s := New(t.TempDir())
	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected no runs, got %v, %v", runs, err)
	}

	for _, scene := range []string{"a", "b", "c"} {
		if _, err := s.Save(scene, dynamo.Config{Dt: 0.01, Duration: 1}, sampleResult()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err = s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("runs not ordered by timestamp")
		}
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(t.TempDir() + "/nope")
	runs, err := s.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list for missing dir, got %v, %v", runs, err)
	}
}

func TestSaveEmptyResult(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save("empty", dynamo.Config{Dt: 0.1, Duration: 1}, &dynamo.Result{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	traj, err := s.LoadTrajectory(id)
	if err != nil {
		t.Fatalf("load trajectory: %v", err)
	}
	if len(traj.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(traj.Rows))
	}
}
