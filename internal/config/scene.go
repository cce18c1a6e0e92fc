package config

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/physical"
	"github.com/san-kum/rigidsim/internal/world"
)

// Build creates a world holding the scene. seed drives the per-body jitter.
func (c *Config) Build(seed int64) (*world.World, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	opts := world.DefaultOptions()
	opts.Gravity = vec(c.World.Gravity)
	opts.Restitution = c.World.Restitution
	if c.World.BoundsMargin > 0 {
		opts.BoundsMargin = c.World.BoundsMargin
	}
	opts.Workers = c.Workers
	w := world.New(opts)
	arena := w.Arena()

	rng := rand.New(rand.NewSource(seed))
	handles := make(map[string]physical.Handle, len(c.Bodies))

	for i, b := range c.Bodies {
		name := b.name(i)
		shape, err := b.Shape.Build()
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}

		pos := vec(b.Position)
		if b.Jitter > 0 {
			pos = pos.Add(mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}.Mul(b.Jitter))
		}
		f := frame.NewGlobal(frame.PositionFromVec(pos), frame.RotationFromVec(vec(b.Rotation)))
		part, err := physical.NewPart(name, shape, density(b.Density), f)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}

		var h physical.Handle
		if j := b.Joint; j != nil {
			h, err = arena.AttachPartWithConstraint(handles[j.Parent], part, j.constraint(), frame.At(vec(j.OnParent)), frame.At(vec(j.OnChild)))
		} else {
			h, err = w.AddPart(part, b.Static)
		}
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}

		for _, pc := range b.Parts {
			ps, err := pc.Shape.Build()
			if err != nil {
				return nil, fmt.Errorf("body %q part %q: %w", name, pc.Name, err)
			}
			p, err := physical.NewPart(pc.Name, ps, density(pc.Density), frame.GlobalIdentity())
			if err != nil {
				return nil, fmt.Errorf("body %q part %q: %w", name, pc.Name, err)
			}
			attach := frame.New(vec(pc.Offset), frame.RotationFromVec(vec(pc.Rotation)))
			if err := arena.AttachPart(h, p, attach); err != nil {
				return nil, fmt.Errorf("body %q part %q: %w", name, pc.Name, err)
			}
		}

		if b.Joint == nil && !b.Static {
			motion := frame.Motion{Velocity: vec(b.Velocity), AngularVelocity: vec(b.AngularVelocity)}
			if err := arena.SetMotion(h, motion); err != nil {
				return nil, fmt.Errorf("body %q: %w", name, err)
			}
		}
		handles[name] = h
	}

	return w, nil
}

func (j *JointConfig) constraint() physical.HardConstraint {
	switch j.Kind {
	case "motor":
		return physical.NewMotorConstraint(j.Speed)
	case "piston":
		return physical.NewPistonConstraint(j.Min, j.Max, j.Speed)
	default:
		return physical.FixedConstraint{}
	}
}
