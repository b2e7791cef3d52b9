package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// NewBoxMesh builds a structured nx x ny x nz hexahedral mesh of unit cells
// spanning [0,nx]x[0,ny]x[0,nz], with six boundary groups xmin..zmax.
// It is a fixture shared by the partitioning and decomposition tests.
func NewBoxMesh(nx, ny, nz int) (m *Mesh) {
	var (
		nX = (nx + 1) * ny * nz
		nY = nx * (ny + 1) * nz
		nZ = nx * ny * (nz + 1)
	)
	vid := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	fx := func(i, j, k int) int { return i + (nx+1)*(j+ny*k) }
	fy := func(i, j, k int) int { return nX + i + nx*(j+(ny+1)*k) }
	fz := func(i, j, k int) int { return nX + nY + i + nx*(j+ny*k) }

	m = NewMesh()
	m.Vertices = make([]r3.Vec, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Vertices[vid(i, j, k)] = r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}
			}
		}
	}
	m.Facets = make([]Facet, nX+nY+nZ)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Facets[fx(i, j, k)] = Facet{vid(i, j, k), vid(i, j+1, k), vid(i, j+1, k+1), vid(i, j, k+1)}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i < nx; i++ {
				m.Facets[fy(i, j, k)] = Facet{vid(i, j, k), vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j, k)}
			}
		}
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				m.Facets[fz(i, j, k)] = Facet{vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k)}
			}
		}
	}
	m.Cells = make([]Cell, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				m.Cells[i+nx*(j+ny*k)] = Cell{
					fx(i, j, k), fx(i+1, j, k),
					fy(i, j, k), fy(i, j+1, k),
					fz(i, j, k), fz(i, j, k+1),
				}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			m.Boundaries["xmin"] = append(m.Boundaries["xmin"], fx(0, j, k))
			m.Boundaries["xmax"] = append(m.Boundaries["xmax"], fx(nx, j, k))
		}
	}
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			m.Boundaries["ymin"] = append(m.Boundaries["ymin"], fy(i, 0, k))
			m.Boundaries["ymax"] = append(m.Boundaries["ymax"], fy(i, ny, k))
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m.Boundaries["zmin"] = append(m.Boundaries["zmin"], fz(i, j, 0))
			m.Boundaries["zmax"] = append(m.Boundaries["zmax"], fz(i, j, nz))
		}
	}
	if err := m.BuildConnectivity(); err != nil {
		panic(err)
	}
	return
}

// NewTwoCellMesh is two unit hexahedra sharing a single facet
func NewTwoCellMesh() *Mesh {
	return NewBoxMesh(2, 1, 1)
}
