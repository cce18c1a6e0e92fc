// Package physical keeps trees of rigid bodies joined by hard constraints and
// advances them in time.
//
// Nodes live in an [Arena] and are referenced by [Handle]. The root of every
// tree carries the aggregate mass properties and the motion of the whole
// tree; every other node is connected to its parent through a
// [HardConstraint]. Parts and children refer back to their node by handle,
// so releasing a node never leaves a dangling pointer behind.
//
// An Arena is not safe for concurrent use.
package physical

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

// Handle refers to a node in an Arena. The zero Handle refers to nothing.
type Handle struct {
	index int
	gen   uint32
}

func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "physical(nil)"
	}
	return fmt.Sprintf("physical(%d.%d)", h.index, h.gen)
}

type node struct {
	gen  uint32
	live bool

	body     RigidBody
	children []Handle
	root     Handle

	// exactly one of conn and motor is set
	conn  *connection
	motor *motorState
}

type connection struct {
	parent         Handle
	constraint     HardConstraint
	attachOnThis   frame.Frame
	attachOnParent frame.Frame
}

type motorState struct {
	totalMass      float64
	totalCOM       mgl64.Vec3
	totalInertia   mgl64.Mat3
	forceResponse  mgl64.Mat3
	momentResponse mgl64.Mat3

	totalForce  mgl64.Vec3
	totalMoment mgl64.Vec3

	// motion of the tree's center of mass
	motion frame.Motion

	inWorld bool
}

type Arena struct {
	nodes []*node
	free  []int
	world World
}

func NewArena(world World) *Arena {
	return &Arena{world: world}
}

func (a *Arena) SetWorld(w World) { a.world = w }

func (a *Arena) alloc() (Handle, *node) {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, &node{})
		idx = len(a.nodes) - 1
	}
	n := a.nodes[idx]
	gen := n.gen + 1
	*n = node{gen: gen, live: true}
	return Handle{index: idx, gen: gen}, n
}

func (a *Arena) release(h Handle) {
	n := a.nodes[h.index]
	gen := n.gen
	*n = node{gen: gen}
	a.free = append(a.free, h.index)
}

func (a *Arena) get(h Handle) (*node, error) {
	if h.IsZero() || h.index < 0 || h.index >= len(a.nodes) {
		return nil, ErrStaleHandle
	}
	n := a.nodes[h.index]
	if !n.live || n.gen != h.gen {
		return nil, ErrStaleHandle
	}
	return n, nil
}

// mustGet is for handles taken from live tree links, which the arena keeps valid.
func (a *Arena) mustGet(h Handle) *node {
	n, err := a.get(h)
	if err != nil {
		panic("physical: tree links to released node")
	}
	return n
}

// Len is the number of live nodes.
func (a *Arena) Len() int {
	return len(a.nodes) - len(a.free)
}

func (a *Arena) Valid(h Handle) bool {
	_, err := a.get(h)
	return err == nil
}

// NewRoot makes a free part the only part of a new tree.
func (a *Arena) NewRoot(part *Part) (Handle, error) {
	if !part.owner.IsZero() {
		return Handle{}, ErrPartAlreadyOwned
	}
	return a.newRoot(part, frame.Motion{}, false), nil
}

func (a *Arena) newRoot(part *Part, motion frame.Motion, inWorld bool) Handle {
	h, n := a.alloc()
	n.body = newRigidBody(part)
	n.root = h
	n.motor = &motorState{motion: motion, inWorld: inWorld}
	part.owner = h
	a.refresh(n)
	return h
}

// SetInWorld marks a root as tracked by the arena's World, which is then
// notified of structural changes below it.
func (a *Arena) SetInWorld(root Handle, inWorld bool) error {
	n, err := a.get(root)
	if err != nil {
		return err
	}
	if n.motor == nil {
		return ErrNotRoot
	}
	n.motor.inWorld = inWorld
	return nil
}

func (a *Arena) InWorld(h Handle) bool {
	n, err := a.get(h)
	if err != nil {
		return false
	}
	return a.mustGet(n.root).motor.inWorld
}

func (a *Arena) tracked(root *node) bool {
	return a.world != nil && root.motor.inWorld
}

func (a *Arena) IsRoot(h Handle) bool {
	n, err := a.get(h)
	return err == nil && n.motor != nil
}

func (a *Arena) Root(h Handle) (Handle, error) {
	n, err := a.get(h)
	if err != nil {
		return Handle{}, err
	}
	return n.root, nil
}

// Parent returns the zero Handle for a root.
func (a *Arena) Parent(h Handle) (Handle, error) {
	n, err := a.get(h)
	if err != nil {
		return Handle{}, err
	}
	if n.conn == nil {
		return Handle{}, nil
	}
	return n.conn.parent, nil
}

func (a *Arena) Children(h Handle) ([]Handle, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	return append([]Handle(nil), n.children...), nil
}

func (a *Arena) Body(h Handle) (*RigidBody, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	return &n.body, nil
}

// Parts returns the parts of h's own rigid body, main part first.
func (a *Arena) Parts(h Handle) ([]*Part, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	return n.body.Parts(), nil
}

// TreeParts returns the parts of h and all its descendants, pre-order.
func (a *Arena) TreeParts(h Handle) ([]*Part, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	var out []*Part
	a.walk(n, func(m *node) { out = append(out, m.body.Parts()...) })
	return out, nil
}

// PartCount counts the parts of h and all its descendants.
func (a *Arena) PartCount(h Handle) (int, error) {
	n, err := a.get(h)
	if err != nil {
		return 0, err
	}
	count := 0
	a.walk(n, func(m *node) { count += m.body.PartCount() })
	return count, nil
}

func (a *Arena) Frame(h Handle) (frame.GlobalFrame, error) {
	n, err := a.get(h)
	if err != nil {
		return frame.GlobalFrame{}, err
	}
	return n.body.Frame(), nil
}

// Bounds is the union of the bounds of every part in h's tree below and
// including h.
func (a *Arena) Bounds(h Handle) (frame.Bounds, error) {
	n, err := a.get(h)
	if err != nil {
		return frame.Bounds{}, err
	}
	b := frame.EmptyBounds()
	a.walk(n, func(m *node) { b = b.Union(m.body.bounds()) })
	return b, nil
}

// walk visits n and its descendants in pre-order.
func (a *Arena) walk(n *node, fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		a.walk(a.mustGet(c), fn)
	}
}

func (a *Arena) setRootRecursive(n *node, root Handle) {
	a.walk(n, func(m *node) { m.root = root })
}

// isAncestorOrSelf reports whether anc is h or one of h's ancestors.
func (a *Arena) isAncestorOrSelf(anc, h Handle) bool {
	for {
		if h == anc {
			return true
		}
		n := a.mustGet(h)
		if n.conn == nil {
			return false
		}
		h = n.conn.parent
	}
}

func (a *Arena) removeChild(parent *node, child Handle) {
	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return
		}
	}
}

// relativeFrameToParent is c's body frame in its parent's body frame.
func relativeFrameToParent(c *connection) frame.Frame {
	return c.attachOnParent.LocalToGlobalFrame(
		c.constraint.RelativeFrame().LocalToGlobalFrame(c.attachOnThis.Inverse()))
}

// updateChildFrames re-derives every descendant frame from n's frame, pre-order.
func (a *Arena) updateChildFrames(n *node) {
	parentFrame := n.body.Frame()
	for _, ch := range n.children {
		c := a.mustGet(ch)
		c.body.setFrame(parentFrame.LocalToGlobalFrame(relativeFrameToParent(c.conn)))
		a.updateChildFrames(c)
	}
}
