package physical

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/polyhedron"
)

var _ = Describe("Part", func() {
	It("derives mass properties from shape and density", func() {
		p := boxPart("slab", 1, 2, 3, 2, mgl64.Vec3{})
		Expect(p.Mass()).To(BeNumerically("~", 12, 1e-12))
		expectVecNear(p.LocalCenterOfMass(), mgl64.Vec3{})
		expectMatNear(p.LocalInertia(), mgl64.Diag3(mgl64.Vec3{13, 10, 5}))
		Expect(p.ID).NotTo(BeEmpty())
	})

	It("rejects non-positive density and inside-out shapes", func() {
		_, err := NewPart("bad", polyhedron.Box(1, 1, 1), 0, frame.GlobalIdentity())
		Expect(err).To(MatchError(ErrInvalidDensity))

		cube := polyhedron.Box(1, 1, 1)
		tris := make([]polyhedron.Triangle, cube.TriangleCount())
		for i := range tris {
			t := cube.Triangle(i)
			tris[i] = polyhedron.Triangle{A: t.A, B: t.C, C: t.B}
		}
		_, err = NewPart("inverted", polyhedron.NewUnchecked(cube.Vertices(), tris), 1, frame.GlobalIdentity())
		Expect(err).To(MatchError(ErrZeroVolume))
	})
})

var _ = Describe("Arena", func() {
	var (
		arena *Arena
		world *recordingWorld
	)

	BeforeEach(func() {
		world = newRecordingWorld()
		arena = NewArena(world)
	})

	Describe("NewRoot", func() {
		It("owns the part and aggregates its mass", func() {
			p := cubePart("a", mgl64.Vec3{1, 2, 3})
			h, err := arena.NewRoot(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Owner()).To(Equal(h))
			Expect(arena.IsRoot(h)).To(BeTrue())

			com, err := arena.CenterOfMass(h)
			Expect(err).NotTo(HaveOccurred())
			expectVecNear(com.Vec3(), mgl64.Vec3{1, 2, 3})
			expectConsistent(arena, h)
		})

		It("refuses a part that is already owned", func() {
			p := cubePart("a", mgl64.Vec3{})
			_, err := arena.NewRoot(p)
			Expect(err).NotTo(HaveOccurred())
			_, err = arena.NewRoot(p)
			Expect(err).To(MatchError(ErrPartAlreadyOwned))
		})

		It("rejects stale handles after release", func() {
			p := cubePart("a", mgl64.Vec3{})
			h, _ := arena.NewRoot(p)
			_, err := arena.DetachPart(p, false)
			Expect(err).NotTo(HaveOccurred())

			Expect(arena.Valid(h)).To(BeFalse())
			_, err = arena.Frame(h)
			Expect(err).To(MatchError(ErrStaleHandle))

			// the slot is reused with a new generation
			h2, _ := arena.NewRoot(cubePart("b", mgl64.Vec3{}))
			Expect(h2).NotTo(Equal(h))
			Expect(arena.Valid(h)).To(BeFalse())
		})
	})

	Describe("AttachPart", func() {
		var (
			root Handle
			main *Part
		)

		BeforeEach(func() {
			main = cubePart("main", mgl64.Vec3{})
			root, _ = arena.NewRoot(main)
		})

		It("places the part at its attachment and restores mass on detach", func() {
			before, _ := arena.TotalMass(root)
			extra := boxPart("extra", 1, 2, 3, 2, mgl64.Vec3{100, 0, 0})

			Expect(arena.AttachPart(root, extra, frame.At(mgl64.Vec3{2, 0, 0}))).To(Succeed())
			expectVecNear(partPosition(extra), mgl64.Vec3{2, 0, 0})
			Expect(extra.Owner()).To(Equal(root))
			expectConsistent(arena, root)

			com, _ := arena.CenterOfMass(root)
			expectVecNear(com.Vec3(), mgl64.Vec3{2 * 12.0 / 14.0, 0, 0})

			_, err := arena.DetachPart(extra, false)
			Expect(err).NotTo(HaveOccurred())
			after, _ := arena.TotalMass(root)
			Expect(after).To(Equal(before))
			Expect(extra.Owner().IsZero()).To(BeTrue())
		})

		It("refuses to attach a part twice", func() {
			extra := cubePart("extra", mgl64.Vec3{})
			Expect(arena.AttachPart(root, extra, frame.At(mgl64.Vec3{1, 0, 0}))).To(Succeed())
			Expect(arena.AttachPart(root, extra, frame.At(mgl64.Vec3{2, 0, 0}))).To(MatchError(ErrPartInThisPhysical))
		})

		It("welds the whole physical of an owned part", func() {
			otherMain := cubePart("otherMain", mgl64.Vec3{})
			other, _ := arena.NewRoot(otherMain)
			side := cubePart("side", mgl64.Vec3{})
			Expect(arena.AttachPart(other, side, frame.At(mgl64.Vec3{0, 1, 0}))).To(Succeed())

			// side lands at (3,0,0); otherMain keeps its offset from side
			Expect(arena.AttachPart(root, side, frame.At(mgl64.Vec3{3, 0, 0}))).To(Succeed())

			Expect(arena.Valid(other)).To(BeFalse())
			Expect(otherMain.Owner()).To(Equal(root))
			Expect(side.Owner()).To(Equal(root))
			expectVecNear(partPosition(side), mgl64.Vec3{3, 0, 0})
			expectVecNear(partPosition(otherMain), mgl64.Vec3{3, -1, 0})

			count, _ := arena.PartCount(root)
			Expect(count).To(Equal(3))
			expectConsistent(arena, root)
		})

		It("refuses to weld a tree onto itself", func() {
			child := cubePart("child", mgl64.Vec3{})
			ch, err := arena.AttachPartWithConstraint(root, child, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())
			Expect(arena.AttachPhysical(root, ch, frame.Identity())).To(MatchError(ErrCycle))
		})
	})

	Describe("MakeMainPart", func() {
		It("re-expresses attachments without moving anything", func() {
			a := cubePart("a", mgl64.Vec3{})
			h, _ := arena.NewRoot(a)
			b := boxPart("b", 1, 2, 1, 1, mgl64.Vec3{})
			Expect(arena.AttachPart(h, b, frame.New(mgl64.Vec3{2, 0, 0}, mgl64.Rotate3DZ(math.Pi/2)))).To(Succeed())
			c := cubePart("c", mgl64.Vec3{})
			_, err := arena.AttachPartWithConstraint(h, c, FixedConstraint{}, frame.At(mgl64.Vec3{0, 0, 2}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())

			comBefore, _ := arena.CenterOfMass(h)
			aBefore, bBefore, cBefore := partPosition(a), partPosition(b), partPosition(c)

			Expect(arena.MakeMainPart(h, a)).To(MatchError(ErrMainPartSelf))
			Expect(arena.MakeMainPart(h, b)).To(Succeed())

			body, _ := arena.Body(h)
			Expect(body.MainPart()).To(BeIdenticalTo(b))
			expectVecNear(partPosition(a), aBefore)
			expectVecNear(partPosition(b), bBefore)

			// re-deriving the child frame from the new main part keeps it in place
			Expect(arena.Update(h, 0)).To(Succeed())
			expectVecNear(partPosition(c), cBefore)

			comAfter, _ := arena.CenterOfMass(h)
			expectVecNear(comAfter.Vec3(), comBefore.Vec3())
			expectConsistent(arena, h)
		})
	})

	Describe("constraints", func() {
		var (
			root Handle
			base *Part
		)

		BeforeEach(func() {
			base = cubePart("base", mgl64.Vec3{})
			root, _ = arena.NewRoot(base)
		})

		It("places a fixed child through both attachment frames", func() {
			arm := cubePart("arm", mgl64.Vec3{})
			ch, err := arena.AttachPartWithConstraint(root, arm, FixedConstraint{},
				frame.At(mgl64.Vec3{0.5, 0, 0}), frame.At(mgl64.Vec3{-0.5, 0, 0}))
			Expect(err).NotTo(HaveOccurred())

			expectVecNear(partPosition(arm), mgl64.Vec3{1, 0, 0})
			parent, _ := arena.Parent(ch)
			Expect(parent).To(Equal(root))
			r, _ := arena.Root(ch)
			Expect(r).To(Equal(root))

			mass, _ := arena.TotalMass(root)
			Expect(mass).To(BeNumerically("~", 4, 1e-12))
			expectConsistent(arena, root)
		})

		It("matches a welded body when the constraint is fixed", func() {
			welded := cubePart("welded", mgl64.Vec3{})
			Expect(arena.AttachPart(root, welded, frame.At(mgl64.Vec3{1, 0, 0}))).To(Succeed())
			weldedInertia, _ := arena.TotalInertia(root)

			other := NewArena(nil)
			otherRoot, _ := other.NewRoot(cubePart("base", mgl64.Vec3{}))
			_, err := other.AttachPartWithConstraint(otherRoot, cubePart("arm", mgl64.Vec3{}), FixedConstraint{},
				frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())
			jointInertia, _ := other.TotalInertia(otherRoot)

			expectMatNear(jointInertia, weldedInertia)
		})

		It("spins a motorized child about the joint axis", func() {
			speed := 2.0
			arm := cubePart("arm", mgl64.Vec3{})
			ch, err := arena.AttachPartWithConstraint(root, arm, NewMotorConstraint(speed),
				frame.At(mgl64.Vec3{0, 0, 1}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())

			dt := 0.01
			for i := 0; i < 50; i++ {
				Expect(arena.Update(root, dt)).To(Succeed())
			}

			f, _ := arena.Frame(ch)
			expectMatNear(f.Rotation, mgl64.Rotate3DZ(speed*50*dt))
			expectVecNear(f.Position.Vec3(), mgl64.Vec3{0, 0, 1})

			m, _ := arena.Motion(ch)
			expectVecNear(m.AngularVelocity, mgl64.Vec3{0, 0, speed})
			expectVecNear(m.Velocity, mgl64.Vec3{})
			expectConsistent(arena, root)
		})

		It("extends a piston child between its limits", func() {
			arm := cubePart("arm", mgl64.Vec3{})
			ch, err := arena.AttachPartWithConstraint(root, arm, NewPistonConstraint(0, 2, math.Pi),
				frame.At(mgl64.Vec3{0, 0, 1}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 100; i++ {
				Expect(arena.Update(root, 0.01)).To(Succeed())
				f, _ := arena.Frame(ch)
				Expect(f.Position.Vec3()[2]).To(And(BeNumerically(">=", 1-1e-9), BeNumerically("<=", 3+1e-9)))
			}

			// half a cycle: fully extended
			f, _ := arena.Frame(ch)
			Expect(f.Position.Vec3()[2]).To(BeNumerically("~", 3, 1e-6))
		})

		It("refuses to attach an ancestor as a child", func() {
			arm := cubePart("arm", mgl64.Vec3{})
			ch, _ := arena.AttachPartWithConstraint(root, arm, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			err := arena.AttachPhysicalWithConstraint(ch, root, FixedConstraint{}, frame.Identity(), frame.Identity())
			Expect(err).To(MatchError(ErrCycle))
			Expect(arena.AttachPhysicalWithConstraint(ch, ch, FixedConstraint{}, frame.Identity(), frame.Identity())).To(MatchError(ErrCycle))
			expectConsistent(arena, root)
		})

		It("moves a connected subtree under a new parent", func() {
			arm := cubePart("arm", mgl64.Vec3{})
			hand := cubePart("hand", mgl64.Vec3{})
			armH, _ := arena.AttachPartWithConstraint(root, arm, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			handH, _ := arena.AttachPartWithConstraint(armH, hand, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())

			otherRoot, _ := arena.NewRoot(cubePart("other", mgl64.Vec3{10, 0, 0}))
			Expect(arena.AttachPhysicalWithConstraint(otherRoot, armH, FixedConstraint{}, frame.At(mgl64.Vec3{0, 2, 0}), frame.Identity())).To(Succeed())

			r, _ := arena.Root(handH)
			Expect(r).To(Equal(otherRoot))
			expectVecNear(partPosition(arm), mgl64.Vec3{10, 2, 0})
			expectVecNear(partPosition(hand), mgl64.Vec3{11, 2, 0})
			children, _ := arena.Children(root)
			Expect(children).To(BeEmpty())
			expectConsistent(arena, root)
			expectConsistent(arena, otherRoot)
		})
	})

	Describe("detaching", func() {
		It("turns a detached child into a root that keeps its motion", func() {
			root, _ := arena.NewRoot(cubePart("base", mgl64.Vec3{}))
			arm := cubePart("arm", mgl64.Vec3{})
			ch, _ := arena.AttachPartWithConstraint(root, arm, FixedConstraint{}, frame.At(mgl64.Vec3{2, 0, 0}), frame.Identity())
			Expect(arena.SetMotion(root, frame.Motion{AngularVelocity: mgl64.Vec3{0, 0, 1}})).To(Succeed())

			before, _ := arena.Motion(ch)
			newRoot, err := arena.DetachChild(ch)
			Expect(err).NotTo(HaveOccurred())
			Expect(newRoot).To(Equal(ch))
			Expect(arena.IsRoot(ch)).To(BeTrue())

			after, _ := arena.Motion(ch)
			expectVecNear(after.Velocity, before.Velocity)
			expectVecNear(after.AngularVelocity, before.AngularVelocity)
			expectVecNear(after.Velocity, mgl64.Vec3{0, 1, 0})

			mass, _ := arena.TotalMass(root)
			Expect(mass).To(BeNumerically("~", 2, 1e-12))
			expectConsistent(arena, root)
			expectConsistent(arena, ch)

			_, err = arena.DetachChild(ch)
			Expect(err).To(MatchError(ErrNotConnected))
		})

		It("promotes the last part when the main part leaves", func() {
			a := cubePart("a", mgl64.Vec3{})
			h, _ := arena.NewRoot(a)
			b := cubePart("b", mgl64.Vec3{})
			c := cubePart("c", mgl64.Vec3{})
			Expect(arena.AttachPart(h, b, frame.At(mgl64.Vec3{1, 0, 0}))).To(Succeed())
			Expect(arena.AttachPart(h, c, frame.At(mgl64.Vec3{0, 1, 0}))).To(Succeed())

			aH, err := arena.DetachPart(a, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(aH).NotTo(Equal(h))
			Expect(a.Owner()).To(Equal(aH))

			body, _ := arena.Body(h)
			Expect(body.MainPart()).To(BeIdenticalTo(c))
			expectVecNear(partPosition(b), mgl64.Vec3{1, 0, 0})
			expectVecNear(partPosition(c), mgl64.Vec3{0, 1, 0})
			expectConsistent(arena, h)
			expectConsistent(arena, aH)
		})

		It("splits children off when their parent loses its only part", func() {
			root, _ := arena.NewRoot(cubePart("base", mgl64.Vec3{}))
			mid := cubePart("mid", mgl64.Vec3{})
			tip := cubePart("tip", mgl64.Vec3{})
			midH, _ := arena.AttachPartWithConstraint(root, mid, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			tipH, _ := arena.AttachPartWithConstraint(midH, tip, FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			live := arena.Len()

			h, err := arena.DetachPart(mid, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.IsZero()).To(BeTrue())
			Expect(mid.Owner().IsZero()).To(BeTrue())
			Expect(arena.Valid(midH)).To(BeFalse())
			Expect(arena.IsRoot(tipH)).To(BeTrue())
			Expect(arena.Len()).To(Equal(live - 1))

			expectVecNear(partPosition(tip), mgl64.Vec3{2, 0, 0})
			expectConsistent(arena, root)
			expectConsistent(arena, tipH)
		})

		It("refuses to detach a free part", func() {
			_, err := arena.DetachPart(cubePart("free", mgl64.Vec3{}), true)
			Expect(err).To(MatchError(ErrPartNotOwned))
		})

		It("keeps every tree consistent through a sequence of edits", func() {
			root, _ := arena.NewRoot(cubePart("base", mgl64.Vec3{}))
			var parts []*Part
			for i := 0; i < 4; i++ {
				p := cubePart("p", mgl64.Vec3{})
				parts = append(parts, p)
				if i%2 == 0 {
					Expect(arena.AttachPart(root, p, frame.At(mgl64.Vec3{float64(i + 1), 0, 0}))).To(Succeed())
				} else {
					_, err := arena.AttachPartWithConstraint(root, p, NewMotorConstraint(1), frame.At(mgl64.Vec3{0, float64(i), 0}), frame.Identity())
					Expect(err).NotTo(HaveOccurred())
				}
				expectConsistent(arena, root)
			}

			for _, p := range parts {
				Expect(arena.Update(root, 0.01)).To(Succeed())
				h, err := arena.DetachPart(p, true)
				Expect(err).NotTo(HaveOccurred())
				expectConsistent(arena, root)
				expectConsistent(arena, h)
			}

			mass, _ := arena.TotalMass(root)
			Expect(mass).To(BeNumerically("~", 2, 1e-12))
		})
	})

	Describe("world notifications", func() {
		It("reports merges, splits and removals for tracked roots only", func() {
			root, _ := arena.NewRoot(cubePart("base", mgl64.Vec3{}))
			free := cubePart("free", mgl64.Vec3{})
			Expect(arena.AttachPart(root, free, frame.At(mgl64.Vec3{1, 0, 0}))).To(Succeed())
			Expect(world.calls).To(BeEmpty())

			Expect(arena.SetInWorld(root, true)).To(Succeed())
			joint := cubePart("joint", mgl64.Vec3{})
			ch, err := arena.AttachPartWithConstraint(root, joint, FixedConstraint{}, frame.At(mgl64.Vec3{0, 1, 0}), frame.Identity())
			Expect(err).NotTo(HaveOccurred())
			Expect(world.calls).To(Equal([]string{"merge"}))

			_, err = arena.DetachChild(ch)
			Expect(err).NotTo(HaveOccurred())
			Expect(arena.InWorld(ch)).To(BeTrue())
			Expect(world.calls).To(Equal([]string{"merge", "split"}))

			_, err = arena.DetachPart(free, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(world.calls).To(Equal([]string{"merge", "split", "split", "remove"}))

			world.calls = nil
			Expect(arena.AttachPhysical(root, ch, frame.At(mgl64.Vec3{0, 0, 1}))).To(Succeed())
			Expect(world.calls).To(Equal([]string{"remove", "group", "expand"}))
			Expect(world.groups).To(HaveKey(joint))
		})
	})

	Describe("dynamics", func() {
		It("integrates constant force exactly", func() {
			root, _ := arena.NewRoot(cubePart("cube", mgl64.Vec3{}))
			dt := 0.1
			for i := 0; i < 10; i++ {
				Expect(arena.ApplyForceAtCenterOfMass(root, mgl64.Vec3{0, 4, 0})).To(Succeed())
				Expect(arena.Update(root, dt)).To(Succeed())
			}
			// positions round to fixed point on every step
			com, _ := arena.CenterOfMass(root)
			Expect(com.Vec3().ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-8)).To(BeTrue())
			m, _ := arena.Motion(root)
			expectVecNear(m.Velocity, mgl64.Vec3{0, 2, 0})
		})

		It("turns an off-center force into spin", func() {
			root, _ := arena.NewRoot(cubePart("cube", mgl64.Vec3{}))
			Expect(arena.ApplyForce(root, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})).To(Succeed())
			Expect(arena.Update(root, 0.01)).To(Succeed())

			m, _ := arena.Motion(root)
			// I = m/6 = 1/3, moment 1
			expectVecNear(m.AngularVelocity, mgl64.Vec3{0, 0, 0.03})
		})

		It("applies impulses and drags through the response operators", func() {
			root, _ := arena.NewRoot(cubePart("cube", mgl64.Vec3{}))
			Expect(arena.ApplyImpulseAtCenterOfMass(root, mgl64.Vec3{2, 0, 0})).To(Succeed())
			m, _ := arena.Motion(root)
			expectVecNear(m.Velocity, mgl64.Vec3{1, 0, 0})

			Expect(arena.ApplyAngularImpulse(root, mgl64.Vec3{0, 0, 1.0 / 3})).To(Succeed())
			m, _ = arena.Motion(root)
			expectVecNear(m.AngularVelocity, mgl64.Vec3{0, 0, 1})

			Expect(arena.ApplyDragAtCenterOfMass(root, mgl64.Vec3{0, 0, 4})).To(Succeed())
			com, _ := arena.CenterOfMass(root)
			expectVecNear(com.Vec3(), mgl64.Vec3{0, 0, 2})
		})

		It("conserves kinetic energy of a free spinning cube", func() {
			root, _ := arena.NewRoot(boxPart("cube", 1, 1, 1, 1, mgl64.Vec3{}))
			Expect(arena.SetMotion(root, frame.Motion{
				Velocity:        mgl64.Vec3{1, 0, 0},
				AngularVelocity: mgl64.Vec3{0.3, 0.2, 0.5},
			})).To(Succeed())

			start, _ := arena.TreeKineticEnergy(root)
			Expect(start).To(BeNumerically("~", 0.5+0.38/12, 1e-12))

			for _, dt := range []float64{0.01, 0.001} {
				for i := 0; i < 1000; i++ {
					Expect(arena.Update(root, dt)).To(Succeed())
				}
				e, _ := arena.TreeKineticEnergy(root)
				Expect(e).To(BeNumerically("~", start, 1e-9))
			}
			Expect(arena.Validate(root)).To(Succeed())
		})

		It("exposes response matrices and effective inertia", func() {
			root, _ := arena.NewRoot(cubePart("cube", mgl64.Vec3{}))

			r, err := arena.ResponseMatrix(root, mgl64.Vec3{})
			Expect(err).NotTo(HaveOccurred())
			expectMatNear(r, mgl64.Ident3().Mul(0.5))

			inertia, _ := arena.InertiaOfPointInDirection(root, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
			Expect(inertia).To(BeNumerically("~", 2, 1e-12))

			// 1/m + r²/I = 0.5 + 0.25*3
			inertia, _ = arena.InertiaOfPointInDirection(root, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0, 1, 0})
			Expect(inertia).To(BeNumerically("~", 0.8, 1e-12))

			between, _ := arena.ResponseMatrixBetween(root, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.5, 0, 0})
			same, _ := arena.ResponseMatrix(root, mgl64.Vec3{0.5, 0, 0})
			expectMatNear(between, same)

			_, err = arena.ResponseMatrix(Handle{}, mgl64.Vec3{})
			Expect(err).To(MatchError(ErrStaleHandle))
		})

		It("moves whole trees through SetFrame and SetPartFrame", func() {
			a := cubePart("a", mgl64.Vec3{})
			root, _ := arena.NewRoot(a)
			b := cubePart("b", mgl64.Vec3{})
			Expect(arena.AttachPart(root, b, frame.At(mgl64.Vec3{1, 0, 0}))).To(Succeed())
			c := cubePart("c", mgl64.Vec3{})
			ch, _ := arena.AttachPartWithConstraint(root, c, FixedConstraint{}, frame.At(mgl64.Vec3{0, 1, 0}), frame.Identity())

			Expect(arena.SetPartFrame(b, frame.GlobalAt(frame.PositionOf(10, 0, 0)))).To(Succeed())
			expectVecNear(partPosition(a), mgl64.Vec3{9, 0, 0})
			expectVecNear(partPosition(c), mgl64.Vec3{9, 1, 0})

			Expect(arena.SetFrame(ch, frame.GlobalAt(frame.PositionOf(0, 0, 5)))).To(Succeed())
			expectVecNear(partPosition(a), mgl64.Vec3{0, -1, 5})
			expectVecNear(partPosition(b), mgl64.Vec3{1, -1, 5})
		})

		It("rejects dynamics on connected physicals", func() {
			root, _ := arena.NewRoot(cubePart("base", mgl64.Vec3{}))
			ch, _ := arena.AttachPartWithConstraint(root, cubePart("arm", mgl64.Vec3{}), FixedConstraint{}, frame.At(mgl64.Vec3{1, 0, 0}), frame.Identity())
			Expect(arena.Update(ch, 0.1)).To(MatchError(ErrNotRoot))
			Expect(arena.MakeMainPhysical(ch)).To(MatchError(ErrReRootUnsupported))
			Expect(arena.ApplyForceToPhysical(ch, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})).To(Succeed())
		})
	})
})
