package physical

import "github.com/san-kum/rigidsim/internal/frame"

// DetachChild cuts child from its parent and makes it the root of its own
// tree. The new root keeps the motion it had at the moment of the cut.
func (a *Arena) DetachChild(child Handle) (Handle, error) {
	n, err := a.get(child)
	if err != nil {
		return Handle{}, err
	}
	if n.conn == nil {
		return Handle{}, ErrNotConnected
	}

	oldRootH := n.root
	oldRoot := a.mustGet(oldRootH)
	bodyMotion := a.motion(n)

	a.removeChild(a.mustGet(n.conn.parent), child)
	n.conn = nil
	n.motor = &motorState{inWorld: oldRoot.motor.inWorld}
	a.setRootRecursive(n, child)
	a.refresh(n)

	comOffset := n.body.Frame().LocalToRelative(n.motor.totalCOM.Sub(n.body.localCOM))
	n.motor.motion = bodyMotion.MotionOfPoint(comOffset)

	a.refresh(oldRoot)
	if a.tracked(oldRoot) {
		a.world.SplitPhysical(oldRootH, child)
	}
	return child, nil
}

// DetachAllChildPhysicals detaches every child of h into its own root.
func (a *Arena) DetachAllChildPhysicals(h Handle) ([]Handle, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	children := append([]Handle(nil), n.children...)
	for _, ch := range children {
		if _, err := a.DetachChild(ch); err != nil {
			return nil, err
		}
	}
	return children, nil
}

// DetachPart removes part from its physical. With staysInWorld the part
// becomes the single part of a new root, which is returned; otherwise the
// part ends up free and the zero Handle is returned.
//
// Removing the last part of a physical first detaches its children and cuts
// it from its parent; the emptied physical then simply is the part's new
// root. Removing the main part of a multi-part body promotes the last
// attached part to main part.
func (a *Arena) DetachPart(part *Part, staysInWorld bool) (Handle, error) {
	if part.owner.IsZero() {
		return Handle{}, ErrPartNotOwned
	}
	h := part.owner
	n, err := a.get(h)
	if err != nil {
		return Handle{}, err
	}

	if n.body.PartCount() == 1 {
		if _, err := a.DetachAllChildPhysicals(h); err != nil {
			return Handle{}, err
		}
		if n.conn != nil {
			if _, err := a.DetachChild(h); err != nil {
				return Handle{}, err
			}
		}
		if staysInWorld {
			return h, nil
		}
		if a.tracked(n) {
			a.world.RemoveMainPhysical(h)
		}
		a.release(h)
		part.owner = Handle{}
		return Handle{}, nil
	}

	bodyCOM := n.body.Frame().LocalToGlobal(n.body.localCOM)
	partMotion := a.motion(n).MotionOfPoint(part.CenterOfMass().Sub(bodyCOM))

	if part == n.body.main {
		a.makeMainPart(n, n.body.parts[len(n.body.parts)-1].Part)
	}

	rootH := n.root
	root := a.mustGet(rootH)

	n.body.detach(part)
	part.owner = Handle{}
	a.refresh(root)

	newH := a.newRoot(part, partMotion, root.motor.inWorld)
	if a.tracked(root) {
		a.world.SplitPhysical(rootH, newH)
	}
	if staysInWorld {
		return newH, nil
	}

	if a.tracked(root) {
		a.world.RemoveMainPhysical(newH)
	}
	a.release(newH)
	part.owner = Handle{}
	return Handle{}, nil
}

// centerOfMass is the world position of a root's center of mass.
func (a *Arena) centerOfMass(root *node) frame.Position {
	return root.body.Frame().LocalToGlobal(root.motor.totalCOM)
}
