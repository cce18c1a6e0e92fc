package stream

import (
	"context"
	"time"

	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/sim"
)

type Body struct {
	Name            string     `json:"name"`
	Position        [3]float64 `json:"position"`
	Velocity        [3]float64 `json:"velocity"`
	AngularVelocity [3]float64 `json:"angular_velocity"`
}

// Message is the JSON sent for each published snapshot.
type Message struct {
	Type      string  `json:"type"`
	Step      int     `json:"step"`
	Time      float64 `json:"time"`
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Contacts  int     `json:"contacts"`
	Bodies    []Body  `json:"bodies"`
}

func NewMessage(s dynamo.Snapshot) Message {
	m := Message{
		Type:      "snapshot",
		Step:      s.Step,
		Time:      s.Time,
		Kinetic:   s.KineticEnergy,
		Potential: s.PotentialEnergy,
		Contacts:  s.Contacts,
		Bodies:    make([]Body, len(s.Bodies)),
	}
	for i, b := range s.Bodies {
		m.Bodies[i] = Body{
			Name:            b.Name,
			Position:        b.Position,
			Velocity:        b.Velocity,
			AngularVelocity: b.AngularVelocity,
		}
	}
	return m
}

// Options control publishing. Every publishes one snapshot per that many
// steps. With Realtime set, stepping is paced to wall-clock time.
type Options struct {
	Every    int
	Realtime bool
}

// Publish runs s for cfg and broadcasts snapshots to h as it goes.
func Publish(ctx context.Context, h *Hub, s *sim.Simulator, cfg dynamo.Config, opts Options) error {
	every := max(opts.Every, 1)
	start := time.Now()
	step := 0
	err := s.RunWithCallback(ctx, cfg, func(snap dynamo.Snapshot) bool {
		if step%every == 0 {
			h.Broadcast(NewMessage(snap))
		}
		step++
		if opts.Realtime {
			ahead := time.Duration(snap.Time*float64(time.Second)) - time.Since(start)
			if ahead > 0 {
				select {
				case <-ctx.Done():
					return false
				case <-time.After(ahead):
				}
			}
		}
		return true
	})
	if err == nil {
		err = ctx.Err()
	}
	return err
}
