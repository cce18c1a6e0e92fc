package frame

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	fixFractionBits = 32
	fixOne          = 1 << fixFractionBits
)

// Fix is a signed fixed-point number with 32 fractional bits.
type Fix int64

func FixFromFloat(f float64) Fix {
	return Fix(math.Round(f * fixOne))
}

func (f Fix) Float() float64 {
	return float64(f) / fixOne
}

// Position is a world-space point stored in fixed point.
type Position struct {
	X, Y, Z Fix
}

func PositionOf(x, y, z float64) Position {
	return Position{FixFromFloat(x), FixFromFloat(y), FixFromFloat(z)}
}

func PositionFromVec(v mgl64.Vec3) Position {
	return PositionOf(v[0], v[1], v[2])
}

func (p Position) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X.Float(), p.Y.Float(), p.Z.Float()}
}

func (p Position) Add(v mgl64.Vec3) Position {
	return Position{
		X: p.X + FixFromFloat(v[0]),
		Y: p.Y + FixFromFloat(v[1]),
		Z: p.Z + FixFromFloat(v[2]),
	}
}

// Sub returns p-o. The subtraction happens in fixed point, so nearby
// positions far from the origin still produce an exact offset.
func (p Position) Sub(o Position) mgl64.Vec3 {
	return mgl64.Vec3{(p.X - o.X).Float(), (p.Y - o.Y).Float(), (p.Z - o.Z).Float()}
}
