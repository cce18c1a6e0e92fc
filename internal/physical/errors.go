package physical

import "errors"

// Structural errors. Operations returning one of these leave the tree
// untouched.
var (
	ErrPartAlreadyOwned   = errors.New("physical: part already belongs to a physical")
	ErrPartInThisPhysical = errors.New("physical: part already attached to this physical")
	ErrPartNotOwned       = errors.New("physical: part does not belong to a physical")
	ErrPartNotInPhysical  = errors.New("physical: part is not in this physical")
	ErrMainPartSelf       = errors.New("physical: part is already the main part")
	ErrCycle              = errors.New("physical: attachment would create a cycle")
	ErrNotRoot            = errors.New("physical: operation requires a root physical")
	ErrNotConnected       = errors.New("physical: physical has no parent")
	ErrReRootUnsupported  = errors.New("physical: re-rooting a connected physical is not supported")
	ErrStaleHandle        = errors.New("physical: stale or invalid handle")
	ErrNoParts            = errors.New("physical: physical has no parts")

	ErrInvalidDensity = errors.New("physical: density must be positive")
	ErrZeroVolume     = errors.New("physical: shape has no volume")

	// ErrInvalidState reports NaN or infinite values found by Validate.
	ErrInvalidState = errors.New("physical: invalid state (NaN or Inf detected)")
	ErrBrokenTree   = errors.New("physical: tree back-references are inconsistent")
)
