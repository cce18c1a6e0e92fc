package physical

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/frame"
)

// AttachPart welds part onto h's rigid body at attachment, relative to h's
// main part. If part already belongs to another physical, that whole
// physical is welded on so that part lands at attachment.
func (a *Arena) AttachPart(h Handle, part *Part, attachment frame.Frame) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	if part.owner == h {
		return ErrPartInThisPhysical
	}
	if !part.owner.IsZero() {
		owner, err := a.get(part.owner)
		if err != nil {
			return err
		}
		partAttach, _ := owner.body.attachment(part)
		return a.AttachPhysical(h, part.owner, attachment.LocalToGlobalFrame(partAttach.Inverse()))
	}

	root := a.mustGet(n.root)
	if a.tracked(root) {
		a.world.MergePartAndPhysical(n.root, part)
	}
	part.owner = h
	n.body.attach(part, attachment)
	a.refresh(root)
	return nil
}

// AttachPhysical welds other's rigid body onto h at attachment. other's
// children move over to h with their constraints intact, and other's node is
// released.
func (a *Arena) AttachPhysical(h, other Handle, attachment frame.Frame) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	o, err := a.get(other)
	if err != nil {
		return err
	}
	if n.root == o.root {
		return fmt.Errorf("%w: both physicals are in the same tree", ErrCycle)
	}

	if o.conn != nil {
		if _, err := a.DetachChild(other); err != nil {
			return err
		}
	}
	if a.tracked(o) {
		a.world.RemoveMainPhysical(other)
	}

	root := a.mustGet(n.root)
	if a.tracked(root) {
		a.addTreeToGroup(n.body.main, o)
	}

	for _, p := range o.body.Parts() {
		p.owner = h
	}
	for _, ch := range o.children {
		c := a.mustGet(ch)
		c.conn.parent = h
		c.conn.attachOnParent = attachment.LocalToGlobalFrame(c.conn.attachOnParent)
		a.setRootRecursive(c, n.root)
		n.children = append(n.children, ch)
	}
	n.body.attachBody(&o.body, attachment)
	a.release(other)

	a.updateChildFrames(n)
	a.refresh(root)
	return nil
}

// AttachPartWithConstraint connects part to h through constraint.
// attachToThis is the joint frame on h, attachToThat the joint frame on part.
// A part already owned by another physical brings that whole physical along.
func (a *Arena) AttachPartWithConstraint(h Handle, part *Part, constraint HardConstraint, attachToThis, attachToThat frame.Frame) (Handle, error) {
	n, err := a.get(h)
	if err != nil {
		return Handle{}, err
	}
	if part.owner == h {
		return Handle{}, ErrPartInThisPhysical
	}
	if !part.owner.IsZero() {
		owner, err := a.get(part.owner)
		if err != nil {
			return Handle{}, err
		}
		partAttach, _ := owner.body.attachment(part)
		other := part.owner
		err = a.AttachPhysicalWithConstraint(h, other, constraint, attachToThis, partAttach.LocalToGlobalFrame(attachToThat))
		return other, err
	}

	root := a.mustGet(n.root)
	if a.tracked(root) {
		a.world.MergePartAndPhysical(n.root, part)
	}

	ch, c := a.alloc()
	c.body = newRigidBody(part)
	c.root = n.root
	c.conn = &connection{
		parent:         h,
		constraint:     constraint,
		attachOnThis:   attachToThat,
		attachOnParent: attachToThis,
	}
	part.owner = ch
	n.children = append(n.children, ch)

	a.updateChildFrames(n)
	a.refresh(root)
	return ch, nil
}

// AttachPhysicalWithConstraint makes other a child of h through constraint.
// A connected other is first cut from its current parent. other must not be
// h or one of h's ancestors.
func (a *Arena) AttachPhysicalWithConstraint(h, other Handle, constraint HardConstraint, attachToThis, attachToThat frame.Frame) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	o, err := a.get(other)
	if err != nil {
		return err
	}
	if a.isAncestorOrSelf(other, h) {
		return fmt.Errorf("%w: physical is an ancestor of the attach target", ErrCycle)
	}

	if o.conn != nil {
		if _, err := a.DetachChild(other); err != nil {
			return err
		}
	}
	if a.tracked(o) {
		a.world.RemoveMainPhysical(other)
	}

	root := a.mustGet(n.root)
	if a.tracked(root) {
		a.addTreeToGroup(n.body.main, o)
	}

	o.motor = nil
	o.conn = &connection{
		parent:         h,
		constraint:     constraint,
		attachOnThis:   attachToThat,
		attachOnParent: attachToThis,
	}
	a.setRootRecursive(o, n.root)
	n.children = append(n.children, other)

	a.updateChildFrames(n)
	a.refresh(root)
	return nil
}

// MakeMainPhysical turns h into the root of its tree. Only roots qualify.
func (a *Arena) MakeMainPhysical(h Handle) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	if n.conn != nil {
		return ErrReRootUnsupported
	}
	return nil
}

// MakeMainPart promotes part to main part of h's rigid body. Attachment and
// joint frames are re-expressed relative to the new main part; nothing moves.
func (a *Arena) MakeMainPart(h Handle, part *Part) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	if part.owner != h {
		return ErrPartNotInPhysical
	}
	if part == n.body.main {
		return ErrMainPartSelf
	}
	a.makeMainPart(n, part)
	a.refresh(a.mustGet(n.root))
	return nil
}

func (a *Arena) makeMainPart(n *node, part *Part) {
	newCenter, _ := n.body.makeMainPart(part)
	for _, ch := range n.children {
		c := a.mustGet(ch)
		c.conn.attachOnParent = newCenter.GlobalToLocalFrame(c.conn.attachOnParent)
	}
	if n.conn != nil {
		n.conn.attachOnThis = newCenter.GlobalToLocalFrame(n.conn.attachOnThis)
	}
}

// addTreeToGroup puts every part under o into the broad-phase group of anchor.
func (a *Arena) addTreeToGroup(anchor *Part, o *node) {
	group := a.world.FindGroup(anchor)
	a.walk(o, func(m *node) {
		for _, p := range m.body.Parts() {
			group.Add(p)
		}
	})
	group.ExpandBounds()
}
