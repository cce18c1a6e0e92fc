package physical

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
)

func (a *Arena) rootNode(h Handle) (*node, error) {
	n, err := a.get(h)
	if err != nil {
		return nil, err
	}
	if n.motor == nil {
		return nil, ErrNotRoot
	}
	return n, nil
}

// RefreshPhysicalProperties recomputes the aggregate mass, center of mass,
// inertia and response operators of root's tree.
func (a *Arena) RefreshPhysicalProperties(root Handle) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.refresh(n)
	return nil
}

func (a *Arena) refresh(root *node) {
	com, mass := a.recursiveCenterOfMass(root)
	m := root.motor
	m.totalCOM = com
	m.totalMass = mass
	m.totalInertia = a.recursiveInertia(root, frame.Identity(), com)
	m.forceResponse = mgl64.Ident3().Mul(1 / mass)
	m.momentResponse = m.totalInertia.Inv()
}

// recursiveCenterOfMass returns the center of mass of n's subtree in n's
// body frame, and its mass.
func (a *Arena) recursiveCenterOfMass(n *node) (mgl64.Vec3, float64) {
	total := n.body.localCOM.Mul(n.body.mass)
	mass := n.body.mass
	for _, ch := range n.children {
		c := a.mustGet(ch)
		rel := relativeFrameToParent(c.conn)
		com, m := a.recursiveCenterOfMass(c)
		total = total.Add(rel.LocalToGlobal(com).Mul(m))
		mass += m
	}
	return total.Mul(1 / mass), mass
}

// recursiveInertia sums the inertia of n's subtree about com, in the root's
// body axes. offset is n's body frame in the root's body frame.
func (a *Arena) recursiveInertia(n *node, offset frame.Frame, com mgl64.Vec3) mgl64.Mat3 {
	rotated := frame.TransformInertia(n.body.inertia, offset.Rotation)
	total := frame.ParallelAxis(rotated, n.body.mass, offset.LocalToGlobal(n.body.localCOM).Sub(com))
	for _, ch := range n.children {
		c := a.mustGet(ch)
		childOffset := offset.LocalToGlobalFrame(relativeFrameToParent(c.conn))
		total = total.Add(a.recursiveInertia(c, childOffset, com))
	}
	return total
}

// Update advances root's tree by dt: accumulated force and moment change the
// velocity of the center of mass, the whole tree moves rigidly, and every
// constraint then steps and re-places its child.
func (a *Arena) Update(root Handle, dt float64) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.refresh(n)
	m := n.motor
	f := n.body.Frame()

	accel := m.forceResponse.Mul3x1(m.totalForce)
	localMoment := f.RelativeToLocal(m.totalMoment)
	angularAccel := f.LocalToRelative(m.momentResponse.Mul3x1(localMoment))

	m.totalForce = mgl64.Vec3{}
	m.totalMoment = mgl64.Vec3{}

	oldVelocity := m.motion.Velocity
	m.motion.Velocity = oldVelocity.Add(accel.Mul(dt))
	m.motion.AngularVelocity = m.motion.AngularVelocity.Add(angularAccel.Mul(dt))

	movement := oldVelocity.Mul(dt).Add(accel.Mul(dt * dt / 2))
	rotation := frame.RotationFromVec(m.motion.AngularVelocity.Mul(dt))

	n.body.rotateAroundLocalPoint(m.totalCOM, rotation)
	a.translateRecursive(n, movement)
	a.updateAttached(n, dt)
	return nil
}

func (a *Arena) updateAttached(n *node, dt float64) {
	parentFrame := n.body.Frame()
	for _, ch := range n.children {
		c := a.mustGet(ch)
		c.conn.constraint.Update(dt)
		c.body.setFrame(parentFrame.LocalToGlobalFrame(relativeFrameToParent(c.conn)))
		a.updateAttached(c, dt)
	}
}

func (a *Arena) translateRecursive(n *node, v mgl64.Vec3) {
	a.walk(n, func(m *node) { m.body.translate(v) })
}

// ApplyForceAtCenterOfMass accumulates a force until the next Update.
func (a *Arena) ApplyForceAtCenterOfMass(root Handle, force mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.totalForce = n.motor.totalForce.Add(force)
	return nil
}

// ApplyForce accumulates a force acting at origin, given relative to the
// center of mass in world axes.
func (a *Arena) ApplyForce(root Handle, origin, force mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.totalForce = n.motor.totalForce.Add(force)
	n.motor.totalMoment = n.motor.totalMoment.Add(origin.Cross(force))
	return nil
}

func (a *Arena) ApplyMoment(root Handle, moment mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.totalMoment = n.motor.totalMoment.Add(moment)
	return nil
}

func (a *Arena) ApplyImpulseAtCenterOfMass(root Handle, impulse mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.motion.Velocity = n.motor.motion.Velocity.Add(n.motor.forceResponse.Mul3x1(impulse))
	return nil
}

// ApplyImpulse changes velocity immediately. origin is relative to the
// center of mass in world axes.
func (a *Arena) ApplyImpulse(root Handle, origin, impulse mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.motion.Velocity = n.motor.motion.Velocity.Add(n.motor.forceResponse.Mul3x1(impulse))
	a.applyAngularImpulse(n, origin.Cross(impulse))
	return nil
}

func (a *Arena) ApplyAngularImpulse(root Handle, angularImpulse mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.applyAngularImpulse(n, angularImpulse)
	return nil
}

func (a *Arena) applyAngularImpulse(n *node, angularImpulse mgl64.Vec3) {
	f := n.body.Frame()
	local := n.motor.momentResponse.Mul3x1(f.RelativeToLocal(angularImpulse))
	n.motor.motion.AngularVelocity = n.motor.motion.AngularVelocity.Add(f.LocalToRelative(local))
}

// ApplyDragAtCenterOfMass moves the tree immediately by drag scaled with the
// inverse mass. Drag is the positional analogue of an impulse.
func (a *Arena) ApplyDragAtCenterOfMass(root Handle, drag mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.translateRecursive(n, n.motor.forceResponse.Mul3x1(drag))
	return nil
}

func (a *Arena) ApplyDrag(root Handle, origin, drag mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.translateRecursive(n, n.motor.forceResponse.Mul3x1(drag))
	a.applyAngularDrag(n, origin.Cross(drag))
	return nil
}

func (a *Arena) ApplyAngularDrag(root Handle, angularDrag mgl64.Vec3) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	a.applyAngularDrag(n, angularDrag)
	return nil
}

func (a *Arena) applyAngularDrag(n *node, angularDrag mgl64.Vec3) {
	f := n.body.Frame()
	local := n.motor.momentResponse.Mul3x1(f.RelativeToLocal(angularDrag))
	n.body.rotateAroundLocalPoint(n.motor.totalCOM, frame.RotationFromVec(f.LocalToRelative(local)))
	a.updateChildFrames(n)
}

// comOffsetOf returns the offset from the tree's center of mass to h's frame
// origin, in world axes.
func (a *Arena) comOffsetOf(h Handle) (Handle, mgl64.Vec3, error) {
	n, err := a.get(h)
	if err != nil {
		return Handle{}, mgl64.Vec3{}, err
	}
	root := a.mustGet(n.root)
	return n.root, n.body.Frame().Position.Sub(a.centerOfMass(root)), nil
}

// ApplyForceToPhysical applies force at origin, given relative to h's frame
// position in world axes, to h's whole tree.
func (a *Arena) ApplyForceToPhysical(h Handle, origin, force mgl64.Vec3) error {
	root, offset, err := a.comOffsetOf(h)
	if err != nil {
		return err
	}
	return a.ApplyForce(root, origin.Add(offset), force)
}

func (a *Arena) ApplyImpulseToPhysical(h Handle, origin, impulse mgl64.Vec3) error {
	root, offset, err := a.comOffsetOf(h)
	if err != nil {
		return err
	}
	return a.ApplyImpulse(root, origin.Add(offset), impulse)
}

func (a *Arena) ApplyDragToPhysical(h Handle, origin, drag mgl64.Vec3) error {
	root, offset, err := a.comOffsetOf(h)
	if err != nil {
		return err
	}
	return a.ApplyDrag(root, origin.Add(offset), drag)
}

func (a *Arena) TotalMass(root Handle) (float64, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return 0, err
	}
	return n.motor.totalMass, nil
}

// CenterOfMass is the world position of the tree's center of mass.
func (a *Arena) CenterOfMass(root Handle) (frame.Position, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return frame.Position{}, err
	}
	return a.centerOfMass(n), nil
}

// TotalInertia is taken about the tree's center of mass, in the root's axes.
func (a *Arena) TotalInertia(root Handle) (mgl64.Mat3, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return mgl64.Mat3{}, err
	}
	return n.motor.totalInertia, nil
}

// SetMotion sets the motion of the tree's center of mass.
func (a *Arena) SetMotion(root Handle, m frame.Motion) error {
	n, err := a.rootNode(root)
	if err != nil {
		return err
	}
	n.motor.motion = m
	return nil
}

// CenterOfMassMotion is the motion of the tree's center of mass.
func (a *Arena) CenterOfMassMotion(root Handle) (frame.Motion, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return frame.Motion{}, err
	}
	return n.motor.motion, nil
}

// Motion returns the motion of the center of mass of h's own rigid body.
func (a *Arena) Motion(h Handle) (frame.Motion, error) {
	n, err := a.get(h)
	if err != nil {
		return frame.Motion{}, err
	}
	return a.motion(n), nil
}

func (a *Arena) motion(n *node) frame.Motion {
	if n.motor != nil {
		offset := n.body.Frame().LocalToRelative(n.body.localCOM.Sub(n.motor.totalCOM))
		return n.motor.motion.MotionOfPoint(offset)
	}

	c := n.conn
	parent := a.mustGet(c.parent)
	pf := parent.body.Frame()

	onParent := pf.LocalToRelative(c.attachOnParent.Position.Sub(parent.body.localCOM))
	atJoint := a.motion(parent).MotionOfPoint(onParent)

	jointAxes := pf.Rotation.Mul3(c.attachOnParent.Rotation)
	relative := c.constraint.RelativeMotion().Rotated(jointAxes)
	jointOffset := jointAxes.Mul3x1(c.constraint.RelativeFrame().Position)
	pastJoint := atJoint.AddRelativeMotion(relative).MotionOfPoint(jointOffset)

	onSelf := n.body.Frame().LocalToRelative(c.attachOnThis.Position.Sub(n.body.localCOM))
	return pastJoint.MotionOfPoint(onSelf.Mul(-1))
}

// KineticEnergy of h's own rigid body.
func (a *Arena) KineticEnergy(h Handle) (float64, error) {
	n, err := a.get(h)
	if err != nil {
		return 0, err
	}
	return a.kineticEnergy(n), nil
}

func (a *Arena) kineticEnergy(n *node) float64 {
	m := a.motion(n)
	local := n.body.Frame().RelativeToLocal(m.AngularVelocity)
	linear := n.body.mass * m.Velocity.LenSqr() / 2
	angular := n.body.inertia.Mul3x1(local).Dot(local) / 2
	return linear + angular
}

// TreeKineticEnergy sums KineticEnergy over h and its descendants.
func (a *Arena) TreeKineticEnergy(h Handle) (float64, error) {
	n, err := a.get(h)
	if err != nil {
		return 0, err
	}
	total := 0.0
	a.walk(n, func(m *node) { total += a.kineticEnergy(m) })
	return total, nil
}

// ResponseMatrix maps a force at r (relative to the center of mass, root
// axes) to the resulting acceleration of that same point.
func (a *Arena) ResponseMatrix(root Handle, r mgl64.Vec3) (mgl64.Mat3, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return mgl64.Mat3{}, err
	}
	cross := frame.CrossMatrix(r)
	rotational := cross.Transpose().Mul3(n.motor.momentResponse).Mul3(cross)
	return n.motor.forceResponse.Add(rotational), nil
}

// ResponseMatrixBetween maps a force at actionPoint to the acceleration of
// responsePoint. Both are relative to the center of mass in root axes.
func (a *Arena) ResponseMatrixBetween(root Handle, actionPoint, responsePoint mgl64.Vec3) (mgl64.Mat3, error) {
	n, err := a.rootNode(root)
	if err != nil {
		return mgl64.Mat3{}, err
	}
	rotational := frame.CrossMatrix(responsePoint).Mul3(n.motor.momentResponse).Mul3(frame.CrossMatrix(actionPoint))
	return n.motor.forceResponse.Sub(rotational), nil
}

// InertiaOfPointInDirection is the effective mass felt when pushing the
// point along direction, both in root axes relative to the center of mass.
func (a *Arena) InertiaOfPointInDirection(root Handle, point, direction mgl64.Vec3) (float64, error) {
	response, err := a.ResponseMatrix(root, point)
	if err != nil {
		return 0, err
	}
	accel := response.Mul3x1(direction)
	return direction.LenSqr() / accel.Dot(direction), nil
}

// SetFrame moves h's whole tree so that h's body frame becomes f.
func (a *Arena) SetFrame(h Handle, f frame.GlobalFrame) error {
	n, err := a.get(h)
	if err != nil {
		return err
	}
	root := a.mustGet(n.root)
	f = frame.NewGlobal(f.Position, f.Rotation)
	if n != root {
		rootInH := n.body.Frame().GlobalToLocalFrame(root.body.Frame())
		f = f.LocalToGlobalFrame(rootInH)
	}
	root.body.setFrame(f)
	a.updateChildFrames(root)
	return nil
}

// SetPartFrame moves the tree holding part so that part ends up at f.
func (a *Arena) SetPartFrame(part *Part, f frame.GlobalFrame) error {
	if part.owner.IsZero() {
		return part.SetFrame(f)
	}
	n, err := a.get(part.owner)
	if err != nil {
		return err
	}
	attach, _ := n.body.attachment(part)
	return a.SetFrame(part.owner, f.LocalToGlobalFrame(attach.Inverse()))
}
