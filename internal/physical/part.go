package physical

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/polyhedron"
)

type PartID string

func makePartID() PartID {
	return PartID(uuid.NewString())
}

// Part is a piece of solid geometry with uniform density. A part belongs to
// at most one physical; its frame is managed by that physical once attached.
type Part struct {
	ID   PartID
	Name string

	shape   *polyhedron.Polyhedron
	density float64
	frame   frame.GlobalFrame
	owner   Handle

	mass     float64
	localCOM mgl64.Vec3
	inertia  mgl64.Mat3
}

func NewPart(name string, shape *polyhedron.Polyhedron, density float64, f frame.GlobalFrame) (*Part, error) {
	if density <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDensity, density)
	}
	volume := shape.Volume()
	if volume <= 0 {
		return nil, fmt.Errorf("%w: part %q", ErrZeroVolume, name)
	}
	return &Part{
		ID:       makePartID(),
		Name:     name,
		shape:    shape,
		density:  density,
		frame:    frame.NewGlobal(f.Position, f.Rotation),
		mass:     volume * density,
		localCOM: shape.CenterOfMass(),
		inertia:  shape.InertiaAroundCenterOfMass().Mul(density),
	}, nil
}

func (p *Part) Shape() *polyhedron.Polyhedron { return p.shape }
func (p *Part) Density() float64              { return p.density }
func (p *Part) Frame() frame.GlobalFrame      { return p.frame }
func (p *Part) Mass() float64                 { return p.mass }

// Owner is the zero Handle for a free part.
func (p *Part) Owner() Handle { return p.owner }

func (p *Part) LocalCenterOfMass() mgl64.Vec3 { return p.localCOM }

// LocalInertia is taken about the part's center of mass, in part axes.
func (p *Part) LocalInertia() mgl64.Mat3 { return p.inertia }

func (p *Part) CenterOfMass() frame.Position {
	return p.frame.LocalToGlobal(p.localCOM)
}

func (p *Part) Bounds() frame.Bounds {
	return p.shape.BoundsIn(p.frame)
}

// SetFrame moves a free part. Owned parts move through their physical.
func (p *Part) SetFrame(f frame.GlobalFrame) error {
	if !p.owner.IsZero() {
		return ErrPartAlreadyOwned
	}
	p.frame = frame.NewGlobal(f.Position, f.Rotation)
	return nil
}

func (p *Part) String() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}
