package camera

import (
	"math"
	"math/rand"

	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"
)

const MaxVerticalFOV = 170.0

type Camera interface {
	// ImageToRay returns a primary ray through a random point of the pixel
	// at (curRow, curCol).  Row 0 is the top of the image.
	ImageToRay(curRow, curCol int, rng *rand.Rand) ray.Ray
}

// Options describes a camera pointed at a target.
type Options struct {
	ImageRows int
	ImageCols int

	Eye    vec3.T
	LookAt vec3.T

	// Up is a hint for the camera's vertical.  Zero means world +Y.
	Up vec3.T

	// VerticalFOV is in degrees and is clamped to [0, MaxVerticalFOV].
	VerticalFOV float64

	// DefocusAngle is the cone angle, in degrees, subtended at the focus
	// plane by the lens aperture.  Zero disables depth of field.
	DefocusAngle float64

	// FocusDistance is the distance from Eye to the plane of perfect focus.
	// Zero means the distance from Eye to LookAt.
	FocusDistance float64
}

// LookAtCamera is a thin-lens camera.  All of its fields are derived once in
// New and never change, so it can be shared between render workers.
type LookAtCamera struct {
	rows, cols int

	center      vec3.T
	pixel00     vec3.T
	pixelDeltaU vec3.T
	pixelDeltaV vec3.T

	// w points backwards, away from the target.
	w vec3.T

	defocusAngle float64
	defocusDiskU vec3.T
	defocusDiskV vec3.T
}

func New(o Options) (*LookAtCamera, error) {
	if o.ImageRows <= 0 || o.ImageCols <= 0 {
		return nil, newConfigError("image size", "dimensions must be positive (got %dx%d)", o.ImageCols, o.ImageRows)
	}
	if !o.Eye.IsFinite() {
		return nil, newConfigError("eye", "must be finite (got %v)", o.Eye)
	}
	if !o.LookAt.IsFinite() {
		return nil, newConfigError("look-at", "must be finite (got %v)", o.LookAt)
	}
	if !o.Up.IsFinite() {
		return nil, newConfigError("up", "must be finite (got %v)", o.Up)
	}
	if !isFinite(o.VerticalFOV) {
		return nil, newConfigError("vertical FOV", "must be finite (got %v)", o.VerticalFOV)
	}
	if !isFinite(o.DefocusAngle) || o.DefocusAngle < 0 {
		return nil, newConfigError("defocus angle", "must be finite and not negative (got %v)", o.DefocusAngle)
	}
	if !isFinite(o.FocusDistance) || o.FocusDistance < 0 {
		return nil, newConfigError("focus distance", "must be finite and not negative (got %v)", o.FocusDistance)
	}

	forward := vec3.SubVV(o.LookAt, o.Eye)
	if forward.NormSquared() == 0 {
		return nil, newConfigError("look-at", "coincides with the eye at %v", o.Eye)
	}

	up := o.Up
	if up == (vec3.T{}) {
		up = vec3.T{0, 1, 0}
	}

	w := vec3.Normalize(vec3.Neg(forward))
	right := vec3.CProd(up, w)
	if right.NearZero() {
		return nil, newConfigError("up", "%v is parallel to the view direction", up)
	}
	u := vec3.Normalize(right)
	v := vec3.CProd(w, u)

	focus := o.FocusDistance
	if focus == 0 {
		focus = forward.Norm()
	}

	fov := ray.Span{Lo: 0, Hi: MaxVerticalFOV}.Clamp(o.VerticalFOV)
	viewportHeight := 2 * math.Tan(degreesToRadians(fov)/2) * focus
	viewportWidth := viewportHeight * float64(o.ImageCols) / float64(o.ImageRows)

	// Viewport edges: across the top, and down the left side.
	viewportU := vec3.MulVS(u, viewportWidth)
	viewportV := vec3.MulVS(v, -viewportHeight)

	c := &LookAtCamera{
		rows:         o.ImageRows,
		cols:         o.ImageCols,
		center:       o.Eye,
		w:            w,
		pixelDeltaU:  vec3.DivVS(viewportU, float64(o.ImageCols)),
		pixelDeltaV:  vec3.DivVS(viewportV, float64(o.ImageRows)),
		defocusAngle: o.DefocusAngle,
	}

	upperLeft := vec3.SubVV(o.Eye, vec3.MulVS(w, focus))
	upperLeft = vec3.SubVV(upperLeft, vec3.DivVS(viewportU, 2))
	upperLeft = vec3.SubVV(upperLeft, vec3.DivVS(viewportV, 2))
	c.pixel00 = vec3.AddVV(upperLeft, vec3.MulVS(vec3.AddVV(c.pixelDeltaU, c.pixelDeltaV), 0.5))

	defocusRadius := focus * math.Tan(degreesToRadians(o.DefocusAngle)/2)
	c.defocusDiskU = vec3.MulVS(u, defocusRadius)
	c.defocusDiskV = vec3.MulVS(v, defocusRadius)

	return c, nil
}

func (c *LookAtCamera) ImageSize() (rows, cols int) {
	return c.rows, c.cols
}

func (c *LookAtCamera) Eye() vec3.T {
	return c.center
}

// Forward is the unit view direction.
func (c *LookAtCamera) Forward() vec3.T {
	return vec3.Neg(c.w)
}

func (c *LookAtCamera) ImageToRay(curRow, curCol int, rng *rand.Rand) ray.Ray {
	offsetU := rng.Float64() - 0.5
	offsetV := rng.Float64() - 0.5

	pixelSample := vec3.AddVV(c.pixel00, vec3.MulVS(c.pixelDeltaU, float64(curCol)+offsetU))
	pixelSample = vec3.AddVV(pixelSample, vec3.MulVS(c.pixelDeltaV, float64(curRow)+offsetV))

	origin := c.center
	if c.defocusAngle > 0 {
		origin = c.defocusDiskSample(rng)
	}

	return ray.Ray{
		Point: origin,
		Slope: vec3.SubVV(pixelSample, origin),
	}
}

func (c *LookAtCamera) defocusDiskSample(rng *rand.Rand) vec3.T {
	p := vec3.UnitDiskDistribution(rng)
	return vec3.AddVV(c.center, vec3.AddVV(vec3.MulVS(c.defocusDiskU, p[0]), vec3.MulVS(c.defocusDiskV, p[1])))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}
