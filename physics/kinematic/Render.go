package kinematic

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samuelfneumann/soarm/physics"
)

var (
	backgroundColour = colorful.Hsv(210, 0.15, 0.95)
	armColour        = colorful.Hsv(0, 0, 0.35)
)

// projector maps world coordinates onto image coordinates for a camera
type projector struct {
	view          View
	centre        r3.Vector
	scale         float64
	width, height float64
}

// point returns the image coordinates of world point p
func (p projector) point(v r3.Vector) (float64, float64) {
	x := p.width/2 + (v.X-p.centre.X)*p.scale
	if p.view == SideView {
		return x, p.height/2 - (v.Z-p.centre.Z)*p.scale
	}
	return x, p.height/2 - (v.Y-p.centre.Y)*p.scale
}

// Render draws the scene from the named camera onto a height x width
// image
func (s *Sim) Render(camera string, height, width int) (image.Image, error) {
	if s.closed {
		return nil, physics.ErrClosed
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("render: invalid image size %vx%v", height,
			width)
	}

	var cam *Camera
	for i := range s.model.Cameras {
		if s.model.Cameras[i].Name == camera {
			cam = &s.model.Cameras[i]
			break
		}
	}
	if cam == nil {
		return nil, fmt.Errorf("render: %w: %q", physics.ErrNoCamera, camera)
	}

	proj := projector{
		view:   cam.View,
		centre: cam.Centre,
		scale:  float64(width) / cam.Span,
		width:  float64(width),
		height: float64(height),
	}
	if cam.View == TipView {
		proj.centre = s.tip
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColour)
	dc.Clear()

	// Draw far geometries first
	order := make([]geomState, len(s.geoms))
	copy(order, s.geoms)
	sort.SliceStable(order, func(i, j int) bool {
		if cam.View == SideView {
			return order[i].pos.Y > order[j].pos.Y
		}
		return order[i].pos.Z+order[i].HalfSize.Z <
			order[j].pos.Z+order[j].HalfSize.Z
	})

	for _, g := range order {
		dc.SetColor(colorful.Hsv(g.Hue, 0.65, 0.85))
		x, y := proj.point(g.pos)

		if cam.View == SideView {
			box := g.footprint(0)
			hx := (box.UpperBound.X - box.LowerBound.X) / 2
			dc.DrawRectangle(x-hx*proj.scale, y-g.HalfSize.Z*proj.scale,
				2*hx*proj.scale, 2*g.HalfSize.Z*proj.scale)
			dc.Fill()
			continue
		}

		dc.Push()
		dc.RotateAbout(-g.yaw, x, y)
		dc.DrawRectangle(x-g.HalfSize.X*proj.scale, y-g.HalfSize.Y*proj.scale,
			2*g.HalfSize.X*proj.scale, 2*g.HalfSize.Y*proj.scale)
		dc.Fill()
		dc.Pop()
	}

	// Arm, from the shoulder to the gripper tip
	shoulder := s.model.Base.Add(r3.Vector{Z: ShoulderHeight})
	x1, y1 := proj.point(shoulder)
	x2, y2 := proj.point(s.tip)
	dc.SetColor(armColour)
	dc.SetLineWidth(math.Max(2, 0.01*proj.scale))
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	return dc.Image(), nil
}
