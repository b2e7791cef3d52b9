package partition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshdecomp/mesh"
)

// Cartesian buckets cell centroids on a regular grid laid over the rotated
// bounding box of the mesh.
//
// The bucket hint is uniformly rescaled by (total/(nx*ny*nz))^(1/3), which
// does not guarantee nx*ny*nz == total afterward. Bucket ids past total-1 are
// returned as is; Validate reports them.
type Cartesian struct {
	N        [3]int
	Axis     r3.Vec
	Angle    float64
	rotation *r3.Rotation
}

func NewCartesian(n [3]int, axis [4]float64) (c *Cartesian) {
	c = &Cartesian{
		N:     n,
		Axis:  r3.Vec{X: axis[0], Y: axis[1], Z: axis[2]},
		Angle: axis[3],
	}
	if r3.Norm(c.Axis) > 0 && c.Angle != 0 {
		rot := r3.NewRotation(c.Angle, c.Axis)
		c.rotation = &rot
	}
	return
}

func (c *Cartesian) rotate(p r3.Vec) r3.Vec {
	if c.rotation == nil {
		return p
	}
	return c.rotation.Rotate(p)
}

// Buckets rescales the hint so the bucket count approximates total
func (c *Cartesian) Buckets(total int) (n [3]int, err error) {
	prod := 1
	for j := 0; j < 3; j++ {
		if c.N[j] < 1 {
			return n, fmt.Errorf("cartesian bucket hint must be positive, have %v", c.N)
		}
		prod *= c.N[j]
	}
	v := math.Cbrt(float64(total) / float64(prod))
	for j := 0; j < 3; j++ {
		// tolerance keeps exact cubes from truncating one bucket short
		n[j] = int(v*float64(c.N[j]) + 1e-9)
		if n[j] < 1 {
			n[j] = 1
		}
	}
	return
}

func (c *Cartesian) Assign(m *mesh.Mesh, total int) (a Assignment, err error) {
	var (
		n          [3]int
		minV, maxV [3]float64
		delta      [3]float64
	)
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	if n, err = c.Buckets(total); err != nil {
		return
	}
	for j := range minV {
		minV[j], maxV[j] = math.Inf(1), math.Inf(-1)
	}
	for _, v := range m.Vertices {
		C := comps(c.rotate(v))
		for j := 0; j < 3; j++ {
			minV[j] = math.Min(minV[j], C[j])
			maxV[j] = math.Max(maxV[j], C[j])
		}
	}
	for j := 0; j < 3; j++ {
		delta[j] = (maxV[j] - minV[j]) / float64(n[j])
	}
	a = make(Assignment, m.NumReal)
	for i := range a {
		var (
			C   = comps(c.rotate(m.CellCentroid(i)))
			idx [3]int
		)
		for j := 0; j < 3; j++ {
			if delta[j] > 0 {
				idx[j] = int((C[j] - minV[j]) / delta[j])
			}
			// a centroid on the far face belongs to the last bucket along that axis
			idx[j] = max(0, min(idx[j], n[j]-1))
		}
		a[i] = idx[0]*n[1]*n[2] + idx[1]*n[2] + idx[2]
	}
	return
}

func comps(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }
