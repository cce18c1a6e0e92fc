package physical

// World is told about structural changes of roots it tracks. Calls happen
// only for roots marked with SetInWorld.
type World interface {
	// RemoveMainPhysical stops tracking root and all parts below it.
	RemoveMainPhysical(root Handle)
	// SplitPhysical starts tracking newRoot, whose parts used to be under from.
	SplitPhysical(from, newRoot Handle)
	// MergePartAndPhysical adds a previously free part to root.
	MergePartAndPhysical(root Handle, part *Part)
	// FindGroup returns the broad-phase group holding part.
	FindGroup(part *Part) Group
}

// Group is a broad-phase bucket of parts. Callers add all members first and
// expand the bounds once.
type Group interface {
	Add(part *Part)
	ExpandBounds()
}
