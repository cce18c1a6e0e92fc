package config

import (
	"maps"
	"slices"
)

func floor() BodyConfig {
	return BodyConfig{
		Name:     "floor",
		Shape:    ShapeConfig{Kind: "box", Size: [3]float64{20, 1, 20}},
		Position: [3]float64{0, -0.5, 0},
		Static:   true,
	}
}

func earth() WorldConfig {
	return WorldConfig{Gravity: [3]float64{0, DefaultGravity, 0}, Restitution: DefaultRestitution}
}

var Presets = map[string]*Config{
	"drop": {
		Name: "drop", Dt: 0.005, Duration: 5.0, Validate: true,
		World: earth(),
		Bodies: []BodyConfig{
			floor(),
			{Name: "cube", Shape: ShapeConfig{Kind: "box"}, Position: [3]float64{0, 3, 0}, Rotation: [3]float64{0.3, 0, 0.2}},
		},
	},
	"stack": {
		Name: "stack", Dt: 0.005, Duration: 8.0, Validate: true,
		World: earth(),
		Bodies: []BodyConfig{
			floor(),
			{Name: "bottom", Shape: ShapeConfig{Kind: "box"}, Position: [3]float64{0, 0.55, 0}},
			{Name: "middle", Shape: ShapeConfig{Kind: "box"}, Position: [3]float64{0, 1.65, 0}, Jitter: 0.05},
			{Name: "top", Shape: ShapeConfig{Kind: "box"}, Position: [3]float64{0, 2.75, 0}, Jitter: 0.05},
		},
	},
	"collide": {
		Name: "collide", Dt: 0.002, Duration: 3.0, Validate: true,
		World: WorldConfig{Restitution: 0.8},
		Bodies: []BodyConfig{
			{Name: "left", Shape: ShapeConfig{Kind: "icosphere", Radius: 0.5, Subdivisions: 2}, Position: [3]float64{-3, 0, 0}, Velocity: [3]float64{2, 0, 0}},
			{Name: "right", Shape: ShapeConfig{Kind: "box"}, Position: [3]float64{3, 0.2, 0}, Velocity: [3]float64{-2, 0, 0}},
		},
	},
	"spinner": {
		Name: "spinner", Dt: 0.005, Duration: 10.0, Validate: true,
		Bodies: []BodyConfig{
			{Name: "hub", Shape: ShapeConfig{Kind: "box", Size: [3]float64{0.5, 0.5, 0.5}}, Density: 5},
			{
				Name: "rotor", Shape: ShapeConfig{Kind: "box", Size: [3]float64{3, 0.2, 0.1}},
				Joint: &JointConfig{Kind: "motor", Parent: "hub", OnParent: [3]float64{0, 0, 0.3}, OnChild: [3]float64{0, 0, -0.1}, Speed: 2},
			},
		},
	},
	"piston": {
		Name: "piston", Dt: 0.005, Duration: 10.0, Validate: true,
		Bodies: []BodyConfig{
			{Name: "cylinder", Shape: ShapeConfig{Kind: "box", Size: [3]float64{1, 1, 2}}, Density: 4},
			{
				Name: "rod", Shape: ShapeConfig{Kind: "box", Size: [3]float64{0.3, 0.3, 1}},
				Joint: &JointConfig{Kind: "piston", Parent: "cylinder", OnParent: [3]float64{0, 0, 1}, OnChild: [3]float64{0, 0, -0.5}, Min: 0, Max: 1.5, Speed: 3},
			},
		},
	},
	"tumble": {
		Name: "tumble", Dt: 0.005, Duration: 6.0, Validate: true,
		World: earth(),
		Bodies: []BodyConfig{
			floor(),
			{
				Name: "hammer", Shape: ShapeConfig{Kind: "box", Size: [3]float64{0.2, 2, 0.2}},
				Position: [3]float64{0, 3, 0}, AngularVelocity: [3]float64{0, 0, 3},
				Parts: []PartConfig{
					{Name: "head", Shape: ShapeConfig{Kind: "box", Size: [3]float64{0.8, 0.4, 0.4}}, Density: 4, Offset: [3]float64{0, 1.2, 0}},
				},
			},
			{Name: "pyramid", Shape: ShapeConfig{Kind: "tetrahedron", Size: [3]float64{1.2}}, Position: [3]float64{2, 1, 0}},
			{Name: "egg", Shape: ShapeConfig{Kind: "icosphere", Radius: 0.5, Subdivisions: 2, Scale: [3]float64{1, 1.4, 1}}, Position: [3]float64{-2, 2, 0}},
		},
	},
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// Clone deep-copies the scene so that callers may edit it.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		b.Parts = slices.Clone(b.Parts)
		if b.Joint != nil {
			j := *b.Joint
			b.Joint = &j
		}
		out.Bodies[i] = b
	}
	return &out
}
