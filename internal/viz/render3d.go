package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/frame"
	"github.com/san-kum/rigidsim/internal/physical"
	"github.com/san-kum/rigidsim/internal/polyhedron"
	"github.com/san-kum/rigidsim/internal/world"
)

// Camera orbits a target point. Yaw turns around the vertical axis and
// pitch tilts toward it.
type Camera struct {
	Target     mgl64.Vec3
	Yaw, Pitch float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: 0.6, Pitch: 0.35, Distance: 20, Zoom: 1}
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = mgl64.Clamp(c.Pitch+dpitch, -math.Pi/2+0.05, math.Pi/2-0.05)
}

// Focus aims the camera at the middle of the scene.
func (c *Camera) Focus(w *world.World) { c.Target = sceneCenter(w) }

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(-c.Yaw))
}

// Project maps a world point to canvas dots of a sw by sh canvas. It
// returns the depth along the view direction and whether the point lies in
// front of the camera.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rel := c.view().Mul3x1(p.Sub(c.Target))
	depth := c.Distance - rel.Z()
	if depth < 0.1 {
		return 0, 0, depth, false
	}
	scale := c.Zoom * c.Distance / depth * float64(min(sw, sh)) / 12
	sx := int(math.Round(rel.X()*scale)) + sw/2
	sy := int(math.Round(-rel.Y()*scale)) + sh/2
	return sx, sy, depth, true
}

// Wireframe is a set of world-space segments.
type Wireframe struct {
	Edges [][2]mgl64.Vec3
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

func (w *Wireframe) AddEdge(a, b mgl64.Vec3) {
	w.Edges = append(w.Edges, [2]mgl64.Vec3{a, b})
}

// AddShape adds every distinct triangle edge of shape placed at f.
func (w *Wireframe) AddShape(shape *polyhedron.Polyhedron, f frame.GlobalFrame) {
	verts := make([]mgl64.Vec3, shape.VertexCount())
	for i := range verts {
		verts[i] = f.LocalToGlobal(shape.Vertex(i)).Vec3()
	}
	seen := make(map[[2]int]bool, shape.TriangleCount()*3)
	for i := 0; i < shape.TriangleCount(); i++ {
		t := shape.Triangle(i)
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if seen[e] {
				continue
			}
			seen[e] = true
			w.AddEdge(verts[e[0]], verts[e[1]])
		}
	}
}

func (w *Wireframe) AddPart(p *physical.Part) {
	w.AddShape(p.Shape(), p.Frame())
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws w onto c, far edges first.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.PixelSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e[0], cw, ch)
		x2, y2, d2, v2 := cam.Project(e[1], cw, ch)
		if !v1 || !v2 || offscreen(x1, y1, cw, ch) && offscreen(x2, y2, cw, ch) {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

func offscreen(x, y, w, h int) bool {
	return x < -w || y < -h || x > 2*w || y > 2*h
}

// DrawWorld clears c and draws every part of every tracked body, reusing
// wire as scratch space.
func DrawWorld(c *Canvas, wire *Wireframe, w *world.World, cam *Camera) {
	c.Clear()
	wire.Clear()
	for _, r := range w.Roots() {
		parts, err := w.Arena().TreeParts(r)
		if err != nil {
			continue
		}
		for _, p := range parts {
			wire.AddPart(p)
		}
	}
	Render3D(c, wire, cam)
}
