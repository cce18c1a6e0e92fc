package physical

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/frame"
)

// Validate checks the back-references of root's tree and looks for NaN or
// infinite values in its dynamic state. It is meant for debugging runs.
func (a *Arena) Validate(root Handle) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	if n.root != root {
		return fmt.Errorf("%w: root does not point at itself", ErrBrokenTree)
	}

	m := n.motor
	switch {
	case !frame.IsVecValid(m.totalForce), !frame.IsVecValid(m.totalMoment):
		return fmt.Errorf("%w: accumulated force or moment", ErrInvalidState)
	case math.IsNaN(m.totalMass) || math.IsInf(m.totalMass, 0) || m.totalMass <= 0:
		return fmt.Errorf("%w: total mass %g", ErrInvalidState, m.totalMass)
	case !frame.IsVecValid(m.totalCOM):
		return fmt.Errorf("%w: center of mass", ErrInvalidState)
	case !frame.IsMatValid(m.forceResponse), !frame.IsMatValid(m.momentResponse):
		return fmt.Errorf("%w: response operators", ErrInvalidState)
	case !frame.IsVecValid(m.motion.Velocity), !frame.IsVecValid(m.motion.AngularVelocity):
		return fmt.Errorf("%w: motion", ErrInvalidState)
	}

	return a.validateNode(root, root)
}

func (a *Arena) validateNode(h, root Handle) error {
	n, err := a.get(h)
	if err != nil {
		return fmt.Errorf("%w: dangling child %v", ErrBrokenTree, h)
	}
	if n.root != root {
		return fmt.Errorf("%w: node %v has root %v, want %v", ErrBrokenTree, h, n.root, root)
	}
	if (n.conn == nil) == (n.motor == nil) {
		return fmt.Errorf("%w: node %v must be either root or connected", ErrBrokenTree, h)
	}
	if h != root && n.conn == nil {
		return fmt.Errorf("%w: node %v is a root inside another tree", ErrBrokenTree, h)
	}
	if n.conn != nil && (!frame.IsFrameValid(n.conn.attachOnThis) || !frame.IsFrameValid(n.conn.attachOnParent)) {
		return fmt.Errorf("%w: attachment frames of %v", ErrInvalidState, h)
	}

	for _, p := range n.body.Parts() {
		if p.owner != h {
			return fmt.Errorf("%w: part %s owned by %v, found in %v", ErrBrokenTree, p, p.owner, h)
		}
		if !frame.IsGlobalFrameValid(p.frame) {
			return fmt.Errorf("%w: frame of part %s", ErrInvalidState, p)
		}
	}

	for _, ch := range n.children {
		c, err := a.get(ch)
		if err != nil {
			return fmt.Errorf("%w: dangling child %v of %v", ErrBrokenTree, ch, h)
		}
		if c.conn == nil || c.conn.parent != h {
			return fmt.Errorf("%w: child %v does not point back at %v", ErrBrokenTree, ch, h)
		}
		if err := a.validateNode(ch, root); err != nil {
			return err
		}
	}
	return nil
}
