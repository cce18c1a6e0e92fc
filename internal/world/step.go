package world

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/physical"
)

type pairTag struct {
	a, b         *physical.Part
	rootA, rootB physical.Handle
	origin       frame.Position
}

// Step applies gravity, advances every dynamic tree by dt, then finds and
// resolves contacts between different trees.
func (w *World) Step(ctx context.Context, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, r := range w.roots {
		if w.static[r] {
			continue
		}
		mass, err := w.arena.TotalMass(r)
		if err != nil {
			return fmt.Errorf("world: step %v: %w", r, err)
		}
		if err := w.arena.ApplyForceAtCenterOfMass(r, w.opts.Gravity.Mul(mass)); err != nil {
			return fmt.Errorf("world: step %v: %w", r, err)
		}
		if err := w.arena.Update(r, dt); err != nil {
			return fmt.Errorf("world: step %v: %w", r, err)
		}
	}

	pairs := w.broadPhase()
	found := collision.DetectAllPooled(pairs, w.opts.Workers, w.pool)

	w.contacts = w.contacts[:0]
	for _, c := range found {
		tag := c.Pair.Tag.(pairTag)
		contact := Contact{
			A:     tag.a,
			B:     tag.b,
			Point: tag.origin.Add(c.Intersection),
			Exit:  c.Exit,
		}
		w.contacts = append(w.contacts, contact)
		w.resolve(tag.rootA, tag.rootB, contact)
	}

	w.step++
	w.time += dt
	return nil
}

// broadPhase pairs up parts of different trees whose bounds overlap. Shapes
// are placed relative to the first part of each pair.
func (w *World) broadPhase() []collision.Pair {
	groups := make([]*group, 0, len(w.roots))
	for _, r := range w.roots {
		g := w.groups[r]
		if g == nil {
			continue
		}
		g.ExpandBounds()
		groups = append(groups, g)
	}

	var pairs []collision.Pair
	for i, gi := range groups {
		outer := gi.bounds.Expand(w.opts.BoundsMargin)
		for _, gj := range groups[i+1:] {
			if w.static[gi.root] && w.static[gj.root] {
				continue
			}
			if !outer.Overlaps(gj.bounds) {
				continue
			}
			for _, pa := range gi.parts {
				ba := pa.Bounds()
				for _, pb := range gj.parts {
					if !ba.Overlaps(pb.Bounds()) {
						continue
					}
					origin := pa.Frame().Position
					pairs = append(pairs, collision.Pair{
						A:   collision.Transformed{Poly: pa.Shape(), Frame: pa.Frame().RelativeTo(origin)},
						B:   collision.Transformed{Poly: pb.Shape(), Frame: pb.Frame().RelativeTo(origin)},
						Tag: pairTag{a: pa, b: pb, rootA: gi.root, rootB: gj.root, origin: origin},
					})
				}
			}
		}
	}
	return pairs
}

// resolve pushes both trees apart along the exit vector in proportion to
// their inverse masses, then cancels the approaching normal velocity at the
// contact point, keeping the restitution fraction of it.
func (w *World) resolve(rootA, rootB physical.Handle, c Contact) {
	depth := c.Exit.Len()
	if depth == 0 {
		return
	}
	invA, invB := w.inverseMass(rootA), w.inverseMass(rootB)
	total := invA + invB
	if total == 0 {
		return
	}
	normal := c.Exit.Mul(1 / depth)

	if invA > 0 {
		w.arena.ApplyDragAtCenterOfMass(rootA, c.Exit.Mul(-1/total))
	}
	if invB > 0 {
		w.arena.ApplyDragAtCenterOfMass(rootB, c.Exit.Mul(1/total))
	}

	approach := w.pointVelocity(rootB, c.Point).Sub(w.pointVelocity(rootA, c.Point)).Dot(normal)
	if approach >= 0 {
		return
	}

	kA, offsetA := w.responseAlong(rootA, c.Point, normal)
	kB, offsetB := w.responseAlong(rootB, c.Point, normal)
	j := -(1 + w.opts.Restitution) * approach / (kA + kB)

	if kA > 0 {
		w.arena.ApplyImpulse(rootA, offsetA, normal.Mul(-j))
	}
	if kB > 0 {
		w.arena.ApplyImpulse(rootB, offsetB, normal.Mul(j))
	}
}

func (w *World) inverseMass(root physical.Handle) float64 {
	if w.static[root] {
		return 0
	}
	m, err := w.arena.TotalMass(root)
	if err != nil {
		return 0
	}
	return 1 / m
}

// pointVelocity is the world velocity of the tree's material point at p.
func (w *World) pointVelocity(root physical.Handle, p frame.Position) mgl64.Vec3 {
	if w.static[root] {
		return mgl64.Vec3{}
	}
	motion, _ := w.arena.CenterOfMassMotion(root)
	com, _ := w.arena.CenterOfMass(root)
	return motion.MotionOfPoint(p.Sub(com)).Velocity
}

// responseAlong returns the inverse effective mass of the point p pushed
// along normal, and p relative to the center of mass in world axes.
func (w *World) responseAlong(root physical.Handle, p frame.Position, normal mgl64.Vec3) (float64, mgl64.Vec3) {
	if w.static[root] {
		return 0, mgl64.Vec3{}
	}
	com, _ := w.arena.CenterOfMass(root)
	f, _ := w.arena.Frame(root)
	offset := p.Sub(com)
	m, err := w.arena.InertiaOfPointInDirection(root, f.RelativeToLocal(offset), f.RelativeToLocal(normal))
	if err != nil || m <= 0 {
		return 0, offset
	}
	return 1 / m, offset
}
