package physical

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

// AttachedPart is a non-main part of a rigid body and its frame relative to
// the main part.
type AttachedPart struct {
	Part       *Part
	Attachment frame.Frame
}

// RigidBody is a set of parts welded together. The main part defines the
// body's frame; every other part keeps a fixed attachment relative to it.
type RigidBody struct {
	main  *Part
	parts []AttachedPart

	mass     float64
	localCOM mgl64.Vec3
	inertia  mgl64.Mat3
}

func newRigidBody(main *Part) RigidBody {
	b := RigidBody{main: main}
	b.refresh()
	return b
}

func (b *RigidBody) MainPart() *Part { return b.main }

func (b *RigidBody) Frame() frame.GlobalFrame { return b.main.frame }

func (b *RigidBody) PartCount() int { return len(b.parts) + 1 }

// Parts lists the main part first, then attached parts in attach order.
func (b *RigidBody) Parts() []*Part {
	out := make([]*Part, 0, b.PartCount())
	out = append(out, b.main)
	for _, ap := range b.parts {
		out = append(out, ap.Part)
	}
	return out
}

func (b *RigidBody) Mass() float64 { return b.mass }

func (b *RigidBody) LocalCenterOfMass() mgl64.Vec3 { return b.localCOM }

// Inertia is taken about LocalCenterOfMass, in the main part's axes.
func (b *RigidBody) Inertia() mgl64.Mat3 { return b.inertia }

// attachment returns the frame of part relative to the main part.
func (b *RigidBody) attachment(part *Part) (frame.Frame, bool) {
	if part == b.main {
		return frame.Identity(), true
	}
	if i := b.indexOf(part); i >= 0 {
		return b.parts[i].Attachment, true
	}
	return frame.Frame{}, false
}

func (b *RigidBody) indexOf(part *Part) int {
	return slices.IndexFunc(b.parts, func(ap AttachedPart) bool { return ap.Part == part })
}

func (b *RigidBody) attach(part *Part, attachment frame.Frame) {
	part.frame = b.main.frame.LocalToGlobalFrame(attachment)
	b.parts = append(b.parts, AttachedPart{Part: part, Attachment: attachment})
	b.refresh()
}

// attachBody welds every part of other onto b, other's main part landing at
// attachment.
func (b *RigidBody) attachBody(other *RigidBody, attachment frame.Frame) {
	b.parts = append(b.parts, AttachedPart{Part: other.main, Attachment: attachment})
	for _, ap := range other.parts {
		b.parts = append(b.parts, AttachedPart{Part: ap.Part, Attachment: attachment.LocalToGlobalFrame(ap.Attachment)})
	}
	b.syncFrames()
	b.refresh()
}

// detach removes a non-main part, keeping the order of the rest.
func (b *RigidBody) detach(part *Part) bool {
	i := b.indexOf(part)
	if i < 0 {
		return false
	}
	b.parts = slices.Delete(b.parts, i, i+1)
	b.refresh()
	return true
}

// makeMainPart promotes an attached part and returns its former attachment,
// which is the new body frame expressed in the old one.
func (b *RigidBody) makeMainPart(part *Part) (frame.Frame, bool) {
	i := b.indexOf(part)
	if i < 0 {
		return frame.Frame{}, false
	}
	newCenter := b.parts[i].Attachment
	oldMain := b.main

	for j := range b.parts {
		if j == i {
			continue
		}
		b.parts[j].Attachment = newCenter.GlobalToLocalFrame(b.parts[j].Attachment)
	}
	b.parts[i] = AttachedPart{Part: oldMain, Attachment: newCenter.Inverse()}
	b.main = part
	b.refresh()
	return newCenter, true
}

func (b *RigidBody) setFrame(f frame.GlobalFrame) {
	b.main.frame = f
	b.syncFrames()
}

func (b *RigidBody) translate(v mgl64.Vec3) {
	b.setFrame(b.main.frame.Translated(v))
}

func (b *RigidBody) rotateAroundLocalPoint(localPoint mgl64.Vec3, rotation mgl64.Mat3) {
	b.setFrame(b.main.frame.RotatedAroundLocalPoint(localPoint, rotation))
}

func (b *RigidBody) syncFrames() {
	for _, ap := range b.parts {
		ap.Part.frame = b.main.frame.LocalToGlobalFrame(ap.Attachment)
	}
}

func (b *RigidBody) refresh() {
	b.mass = b.main.mass
	com := b.main.localCOM.Mul(b.main.mass)
	for _, ap := range b.parts {
		b.mass += ap.Part.mass
		com = com.Add(ap.Attachment.LocalToGlobal(ap.Part.localCOM).Mul(ap.Part.mass))
	}
	b.localCOM = com.Mul(1 / b.mass)

	b.inertia = frame.ParallelAxis(b.main.inertia, b.main.mass, b.main.localCOM.Sub(b.localCOM))
	for _, ap := range b.parts {
		offset := ap.Attachment.LocalToGlobal(ap.Part.localCOM).Sub(b.localCOM)
		rotated := frame.TransformInertia(ap.Part.inertia, ap.Attachment.Rotation)
		b.inertia = b.inertia.Add(frame.ParallelAxis(rotated, ap.Part.mass, offset))
	}
}

func (b *RigidBody) bounds() frame.Bounds {
	bounds := b.main.Bounds()
	for _, ap := range b.parts {
		bounds = bounds.Union(ap.Part.Bounds())
	}
	return bounds
}
