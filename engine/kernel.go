package engine

import (
	"github.com/chewxy/math32"

	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/tracer"
	"github.com/achilleasa/raylive/types"
)

// Rays hitting closer than this are ignored to avoid self intersections.
const minHitDistance float32 = 1e-3

// Everything the tracers need to render one frame. A setup is built before
// dispatching blocks and is never mutated afterwards.
type frameSetup struct {
	width, height int
	samples       uint32

	origin     types.Vec3
	lowerLeft  types.Vec3
	horizontal types.Vec3
	vertical   types.Vec3

	scene  *scene.Scene
	pixels []byte
}

// Build the frame setup from the current params. Must be called while
// holding e.mu.
func (e *Engine) frameSetup() *frameSetup {
	cam := e.camera()
	q := cam.Orientation()

	viewportW := cam.Aspect.Ratio() * cam.ViewportHeight
	horizontal := q.Rotate(types.XYZ(viewportW, 0, 0))
	vertical := q.Rotate(types.XYZ(0, cam.ViewportHeight, 0))
	focal := q.Rotate(types.XYZ(0, 0, cam.FocalLength))

	samples := cam.AntiAlias
	if samples == 0 {
		samples = 1
	}

	return &frameSetup{
		width:      e.params.Width,
		height:     e.height,
		samples:    samples,
		origin:     cam.Position,
		lowerLeft:  cam.Position.Sub(horizontal.Mul(0.5)).Sub(vertical.Mul(0.5)).Sub(focal),
		horizontal: horizontal,
		vertical:   vertical,
		scene:      e.params.Scene,
		pixels:     e.memory[:e.params.Width*e.height*4],
	}
}

// Trace the rows of a block. Row 0 is the top of the image.
func (fs *frameSetup) trace(req *tracer.BlockRequest) error {
	uDen := float32(max(fs.width-1, 1))
	vDen := float32(max(fs.height-1, 1))
	invSamples := 1.0 / float32(req.SamplesPerPixel)

	for row := req.BlockY; row < req.BlockY+req.BlockH; row++ {
		j := float32(fs.height - 1 - int(row))
		offset := int(row) * fs.width * 4
		for i := 0; i < fs.width; i++ {
			var color types.Vec3
			for s := uint32(0); s < req.SamplesPerPixel; s++ {
				var jt jitter
				if req.SamplesPerPixel > 1 {
					jt = jitterTab[(int(req.Seed)+int(s)+i*7+int(row)*13)%len(jitterTab)]
				}
				u := (float32(i) + jt.dx) / uDen
				v := (j + jt.dy) / vDen
				color = color.Add(fs.colorAt(u, v))
			}
			color = color.Mul(invSamples)

			fs.pixels[offset] = toByte(color[0])
			fs.pixels[offset+1] = toByte(color[1])
			fs.pixels[offset+2] = toByte(color[2])
			fs.pixels[offset+3] = 255
			offset += 4
		}
	}
	return nil
}

func (fs *frameSetup) colorAt(u, v float32) types.Vec3 {
	dir := fs.lowerLeft.Add(fs.horizontal.Mul(u)).Add(fs.vertical.Mul(v)).Sub(fs.origin)

	hitT := float32(math32.MaxFloat32)
	var hit *scene.Sphere
	for idx := range fs.scene.Spheres {
		sp := &fs.scene.Spheres[idx]
		if t, ok := intersectSphere(fs.origin, dir, sp); ok && t < hitT {
			hitT, hit = t, sp
		}
	}

	if hit == nil {
		unitDir := dir.Normalize()
		t := 0.5 * (unitDir[1] + 1.0)
		return fs.scene.Horizon.Lerp(fs.scene.Zenith, t)
	}

	point := fs.origin.Add(dir.Mul(hitT))
	normal := point.Sub(hit.Center).Mul(1 / hit.Radius)
	shade := normal.Add(types.XYZ(1, 1, 1)).Mul(0.5)
	if hit.Color.IsZero() {
		return shade
	}
	return shade.Lerp(hit.Color, 0.5)
}

// Find the nearest positive ray parameter where the ray enters the sphere.
func intersectSphere(origin, dir types.Vec3, sp *scene.Sphere) (float32, bool) {
	oc := origin.Sub(sp.Center)
	a := dir.Dot(dir)
	halfB := oc.Dot(dir)
	c := oc.Dot(oc) - sp.Radius*sp.Radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}

	sqrtD := math32.Sqrt(discriminant)
	t := (-halfB - sqrtD) / a
	if t < minHitDistance {
		t = (-halfB + sqrtD) / a
		if t < minHitDistance {
			return 0, false
		}
	}
	return t, true
}

func toByte(c float32) byte {
	return byte(types.Clamp(c, 0, 0.999) * 256)
}
