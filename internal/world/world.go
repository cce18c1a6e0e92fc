// Package world is a reference collaborator for the physical tree: it keeps
// the set of root physicals being simulated, groups their parts for the broad
// phase and drives one step of gravity, integration, collision detection and
// contact response.
package world

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/physical"
)

const (
	DefaultRestitution  = 0.3
	DefaultBoundsMargin = 0.05
)

type Options struct {
	Gravity mgl64.Vec3
	// Workers bounds the narrow phase fan-out; 0 means GOMAXPROCS.
	Workers int
	// Restitution is the fraction of approaching normal velocity kept after
	// a contact, in [0, 1].
	Restitution  float64
	BoundsMargin float64
	Logger       *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Gravity:      mgl64.Vec3{0, -9.81, 0},
		Restitution:  DefaultRestitution,
		BoundsMargin: DefaultBoundsMargin,
	}
}

// Contact is a penetration found during the last step. Point is a world
// position on A near the deepest contact; moving B by Exit separates the two.
type Contact struct {
	A, B  *physical.Part
	Point frame.Position
	Exit  mgl64.Vec3
}

type World struct {
	arena *physical.Arena
	opts  Options
	log   *slog.Logger

	roots      []physical.Handle
	static     map[physical.Handle]bool
	groups     map[physical.Handle]*group
	partGroups map[*physical.Part]*group

	pool     *collision.BufferPool
	contacts []Contact
	step     int
	time     float64
}

func New(opts Options) *World {
	if opts.Restitution < 0 {
		opts.Restitution = 0
	}
	if opts.Restitution > 1 {
		opts.Restitution = 1
	}
	w := &World{
		opts:       opts,
		static:     make(map[physical.Handle]bool),
		groups:     make(map[physical.Handle]*group),
		partGroups: make(map[*physical.Part]*group),
		pool:       collision.NewBufferPool(),
	}
	w.SetLogger(opts.Logger)
	w.arena = physical.NewArena(w)
	return w
}

func (w *World) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	w.log = l
}

func (w *World) SetWorkers(n int) { w.opts.Workers = n }

// Arena holds every physical of the world, tracked or not.
func (w *World) Arena() *physical.Arena { return w.arena }

func (w *World) Gravity() mgl64.Vec3 { return w.opts.Gravity }

// Roots lists the tracked roots in the order they joined the world.
func (w *World) Roots() []physical.Handle {
	return append([]physical.Handle(nil), w.roots...)
}

func (w *World) IsStatic(root physical.Handle) bool { return w.static[root] }

// Contacts returns the contacts resolved during the last step.
func (w *World) Contacts() []Contact {
	return append([]Contact(nil), w.contacts...)
}

func (w *World) Time() float64 { return w.time }

// Add starts tracking a root physical. Static roots are never integrated and
// act as if infinitely heavy in contacts.
func (w *World) Add(root physical.Handle, static bool) error {
	if !w.arena.IsRoot(root) {
		return fmt.Errorf("world: add %v: %w", root, physical.ErrNotRoot)
	}
	if w.arena.InWorld(root) {
		return fmt.Errorf("world: %v already tracked", root)
	}
	if err := w.arena.SetInWorld(root, true); err != nil {
		return err
	}
	w.register(root, static)
	return nil
}

// AddPart wraps a free part in a new root and tracks it.
func (w *World) AddPart(part *physical.Part, static bool) (physical.Handle, error) {
	h, err := w.arena.NewRoot(part)
	if err != nil {
		return physical.Handle{}, err
	}
	if err := w.Add(h, static); err != nil {
		return physical.Handle{}, err
	}
	return h, nil
}

// Remove stops tracking root. The physical stays in the arena.
func (w *World) Remove(root physical.Handle) error {
	if !slices.Contains(w.roots, root) {
		return fmt.Errorf("world: %v not tracked", root)
	}
	if err := w.arena.SetInWorld(root, false); err != nil {
		return err
	}
	w.unregister(root)
	return nil
}

func (w *World) register(root physical.Handle, static bool) {
	w.roots = append(w.roots, root)
	if static {
		w.static[root] = true
	}
	g := w.groupOf(root)
	parts, _ := w.arena.TreeParts(root)
	for _, p := range parts {
		g.Add(p)
	}
	g.ExpandBounds()
}

func (w *World) unregister(root physical.Handle) {
	w.roots = slices.DeleteFunc(w.roots, func(h physical.Handle) bool { return h == root })
	delete(w.static, root)
	if g, ok := w.groups[root]; ok {
		for _, p := range g.parts {
			if w.partGroups[p] == g {
				delete(w.partGroups, p)
			}
		}
		delete(w.groups, root)
	}
}

func (w *World) RemoveMainPhysical(root physical.Handle) {
	w.log.Debug("remove physical", "root", root)
	w.unregister(root)
}

func (w *World) SplitPhysical(from, newRoot physical.Handle) {
	w.log.Debug("split physical", "from", from, "root", newRoot)
	w.register(newRoot, false)
	if g, ok := w.groups[from]; ok {
		g.ExpandBounds()
	}
}

func (w *World) MergePartAndPhysical(root physical.Handle, part *physical.Part) {
	w.log.Debug("merge part", "root", root, "part", part)
	w.groupOf(root).Add(part)
}

func (w *World) FindGroup(part *physical.Part) physical.Group {
	if g, ok := w.partGroups[part]; ok {
		return g
	}
	root, err := w.arena.Root(part.Owner())
	if err != nil {
		panic(fmt.Sprintf("world: group of free part %s", part))
	}
	return w.groupOf(root)
}

// Validate runs the physical validity pass on every tracked root.
func (w *World) Validate() error {
	for _, r := range w.roots {
		if err := w.arena.Validate(r); err != nil {
			return fmt.Errorf("%w: %v: %w", dynamo.ErrInvalidState, r, err)
		}
	}
	return nil
}

// TotalKineticEnergy sums the kinetic energy of every tracked tree.
func (w *World) TotalKineticEnergy() float64 {
	total := 0.0
	for _, r := range w.roots {
		e, _ := w.arena.TreeKineticEnergy(r)
		total += e
	}
	return total
}

// Snapshot reports the state of every tracked root. Potential energy is
// taken relative to the world origin.
func (w *World) Snapshot() dynamo.Snapshot {
	s := dynamo.Snapshot{
		Step:     w.step,
		Time:     w.time,
		Bodies:   make([]dynamo.BodyState, 0, len(w.roots)),
		Contacts: len(w.contacts),
	}
	for _, r := range w.roots {
		body, _ := w.arena.Body(r)
		mass, _ := w.arena.TotalMass(r)
		com, _ := w.arena.CenterOfMass(r)
		motion, _ := w.arena.CenterOfMassMotion(r)
		ke, _ := w.arena.TreeKineticEnergy(r)

		s.Bodies = append(s.Bodies, dynamo.BodyState{
			Name:            body.MainPart().String(),
			Position:        com.Vec3(),
			Velocity:        motion.Velocity,
			AngularVelocity: motion.AngularVelocity,
			Mass:            mass,
			KineticEnergy:   ke,
		})
		s.KineticEnergy += ke
		if !w.static[r] {
			s.PotentialEnergy -= mass * w.opts.Gravity.Dot(com.Vec3())
		}
	}
	for _, c := range w.contacts {
		s.MaxPenetration = max(s.MaxPenetration, c.Exit.Len())
	}
	return s
}
