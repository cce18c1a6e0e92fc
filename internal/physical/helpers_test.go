package physical

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/polyhedron"
)

type recordingWorld struct {
	calls  []string
	groups map[*Part]bool
}

func newRecordingWorld() *recordingWorld {
	return &recordingWorld{groups: make(map[*Part]bool)}
}

func (w *recordingWorld) RemoveMainPhysical(root Handle) {
	w.calls = append(w.calls, "remove")
}

func (w *recordingWorld) SplitPhysical(from, newRoot Handle) {
	w.calls = append(w.calls, "split")
}

func (w *recordingWorld) MergePartAndPhysical(root Handle, part *Part) {
	w.calls = append(w.calls, "merge")
	w.groups[part] = true
}

func (w *recordingWorld) FindGroup(part *Part) Group {
	w.calls = append(w.calls, "group")
	return recordingGroup{w}
}

type recordingGroup struct{ w *recordingWorld }

func (g recordingGroup) Add(part *Part) { g.w.groups[part] = true }
func (g recordingGroup) ExpandBounds()  { g.w.calls = append(g.w.calls, "expand") }

func boxPart(name string, w, h, d, density float64, at mgl64.Vec3) *Part {
	p, err := NewPart(name, polyhedron.Box(w, h, d), density, frame.GlobalAt(frame.PositionFromVec(at)))
	Expect(err).NotTo(HaveOccurred())
	return p
}

func cubePart(name string, at mgl64.Vec3) *Part {
	return boxPart(name, 1, 1, 1, 2, at)
}

func expectVecNear(got, want mgl64.Vec3) {
	ExpectWithOffset(1, got.ApproxEqualThreshold(want, 1e-9)).To(BeTrue(), fmt.Sprintf("got %v, want %v", got, want))
}

func expectMatNear(got, want mgl64.Mat3) {
	ExpectWithOffset(1, got.ApproxEqualThreshold(want, 1e-9)).To(BeTrue(), fmt.Sprintf("got %v, want %v", got, want))
}

func partPosition(p *Part) mgl64.Vec3 {
	return p.Frame().Position.Vec3()
}

// treeMass sums the masses of the parts reachable from root.
func treeMass(a *Arena, root Handle) float64 {
	parts, err := a.TreeParts(root)
	Expect(err).NotTo(HaveOccurred())
	total := 0.0
	for _, p := range parts {
		total += p.Mass()
	}
	return total
}

func expectConsistent(a *Arena, root Handle) {
	ExpectWithOffset(1, a.Validate(root)).To(Succeed())
	mass, err := a.TotalMass(root)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, mass).To(BeNumerically("~", treeMass(a, root), 1e-12))
}
