package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/polyhedron"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultDensity     = 1.0
	DefaultRestitution = 0.3
	DefaultGravity     = -9.81
)

// Config describes a scene and how long to run it.
type Config struct {
	Name     string       `yaml:"name" toml:"name"`
	Dt       float64      `yaml:"dt" toml:"dt"`
	Duration float64      `yaml:"duration" toml:"duration"`
	Seed     int64        `yaml:"seed" toml:"seed"`
	Workers  int          `yaml:"workers" toml:"workers"`
	Validate bool         `yaml:"validate" toml:"validate"`
	World    WorldConfig  `yaml:"world" toml:"world"`
	Bodies   []BodyConfig `yaml:"bodies" toml:"bodies"`
}

type WorldConfig struct {
	Gravity      [3]float64 `yaml:"gravity" toml:"gravity"`
	Restitution  float64    `yaml:"restitution" toml:"restitution"`
	BoundsMargin float64    `yaml:"bounds_margin" toml:"bounds_margin"`
}

// ShapeConfig selects a primitive. Size is the box extent, or the edge
// length of a tetrahedron in its first component. Scale, when set, stretches
// the primitive along its local axes.
type ShapeConfig struct {
	Kind         string     `yaml:"kind" toml:"kind"`
	Size         [3]float64 `yaml:"size,omitempty" toml:"size,omitempty"`
	Radius       float64    `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Subdivisions int        `yaml:"subdivisions,omitempty" toml:"subdivisions,omitempty"`
	Scale        [3]float64 `yaml:"scale,omitempty" toml:"scale,omitempty"`
}

// PartConfig is an extra part welded to a body's main part.
type PartConfig struct {
	Name     string      `yaml:"name" toml:"name"`
	Shape    ShapeConfig `yaml:"shape" toml:"shape"`
	Density  float64     `yaml:"density,omitempty" toml:"density,omitempty"`
	Offset   [3]float64  `yaml:"offset" toml:"offset"`
	Rotation [3]float64  `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
}

// JointConfig connects a body to an earlier body. OnParent and OnChild are
// the joint positions in each body's frame.
type JointConfig struct {
	Kind     string     `yaml:"kind" toml:"kind"`
	Parent   string     `yaml:"parent" toml:"parent"`
	OnParent [3]float64 `yaml:"on_parent" toml:"on_parent"`
	OnChild  [3]float64 `yaml:"on_child" toml:"on_child"`
	Speed    float64    `yaml:"speed,omitempty" toml:"speed,omitempty"`
	Min      float64    `yaml:"min,omitempty" toml:"min,omitempty"`
	Max      float64    `yaml:"max,omitempty" toml:"max,omitempty"`
}

// BodyConfig is a root physical, or a connected one when Joint is set.
// Rotation and AngularVelocity are rotation vectors.
type BodyConfig struct {
	Name            string       `yaml:"name" toml:"name"`
	Shape           ShapeConfig  `yaml:"shape" toml:"shape"`
	Density         float64      `yaml:"density,omitempty" toml:"density,omitempty"`
	Position        [3]float64   `yaml:"position" toml:"position"`
	Rotation        [3]float64   `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	Velocity        [3]float64   `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	AngularVelocity [3]float64   `yaml:"angular_velocity,omitempty" toml:"angular_velocity,omitempty"`
	Static          bool         `yaml:"static,omitempty" toml:"static,omitempty"`
	Jitter          float64      `yaml:"jitter,omitempty" toml:"jitter,omitempty"`
	Parts           []PartConfig `yaml:"parts,omitempty" toml:"parts,omitempty"`
	Joint           *JointConfig `yaml:"joint,omitempty" toml:"joint,omitempty"`
}

func DefaultConfig() *Config {
	return GetPreset("drop")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a scene from YAML, or from TOML when path ends in .toml.
// Unset world settings take the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		World: WorldConfig{
			Gravity:     [3]float64{0, DefaultGravity, 0},
			Restitution: DefaultRestitution,
		},
	}
	unmarshal := yaml.Unmarshal
	if isTOML(path) {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	marshal := yaml.Marshal
	if isTOML(path) {
		marshal = toml.Marshal
	}
	data, err := marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunConfig is the simulator side of the scene.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Seed:          c.Seed,
		Workers:       c.Workers,
		ValidateState: c.Validate,
	}
}

// Check reports the first problem that would stop the scene from building.
func (c *Config) Check() error {
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("scene %q has no bodies", c.Name)
	}
	seen := make(map[string]bool)
	for i, b := range c.Bodies {
		name := b.name(i)
		if seen[name] {
			return fmt.Errorf("duplicate body name %q", name)
		}
		if _, err := b.Shape.Build(); err != nil {
			return fmt.Errorf("body %q: %w", name, err)
		}
		for _, p := range b.Parts {
			if _, err := p.Shape.Build(); err != nil {
				return fmt.Errorf("body %q part %q: %w", name, p.Name, err)
			}
		}
		if j := b.Joint; j != nil {
			if b.Static {
				return fmt.Errorf("body %q: a jointed body cannot be static", name)
			}
			if !seen[j.Parent] {
				return fmt.Errorf("body %q: joint parent %q must be declared before it", name, j.Parent)
			}
			switch j.Kind {
			case "fixed", "motor", "piston":
			default:
				return fmt.Errorf("body %q: unknown joint kind %q", name, j.Kind)
			}
		}
		seen[name] = true
	}
	return nil
}

// Tunable lists the scalar settings SetParam accepts.
var Tunable = []string{"dt", "duration", "gravity", "restitution", "bounds_margin"}

// SetParam overrides one scalar setting by name. Gravity sets the vertical
// component.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
	case "duration":
		c.Duration = v
	case "gravity":
		c.World.Gravity[1] = v
	case "restitution":
		c.World.Restitution = v
	case "bounds_margin":
		c.World.BoundsMargin = v
	default:
		return fmt.Errorf("unknown parameter %q (tunable: %v)", name, Tunable)
	}
	return nil
}

func (b BodyConfig) name(i int) string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("body%d", i)
}

func density(d float64) float64 {
	if d <= 0 {
		return DefaultDensity
	}
	return d
}

func vec(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

// Build makes the polyhedron the shape describes.
func (s ShapeConfig) Build() (*polyhedron.Polyhedron, error) {
	var p *polyhedron.Polyhedron
	switch s.Kind {
	case "", "box":
		size := s.Size
		if size == [3]float64{} {
			size = [3]float64{1, 1, 1}
		}
		if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
			return nil, fmt.Errorf("box size must be positive, got %v", size)
		}
		p = polyhedron.Box(size[0], size[1], size[2])
	case "tetrahedron":
		edge := s.Size[0]
		if edge == 0 {
			edge = 1
		}
		if edge < 0 {
			return nil, fmt.Errorf("tetrahedron edge must be positive, got %f", edge)
		}
		p = polyhedron.Tetrahedron(edge)
	case "icosphere":
		r := s.Radius
		if r == 0 {
			r = 0.5
		}
		if r < 0 || s.Subdivisions < 0 || s.Subdivisions > 5 {
			return nil, fmt.Errorf("icosphere needs a positive radius and 0-5 subdivisions")
		}
		p = polyhedron.Icosphere(r, s.Subdivisions)
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}

	if s.Scale != [3]float64{} {
		return p.Scaled(vec(s.Scale))
	}
	return p, nil
}
