package mesh

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Facet is an ordered list of vertex ids
type Facet []int

// Cell is an unordered list of facet ids
type Cell []int

// Mesh represents a polyhedral finite volume mesh with facet based connectivity
type Mesh struct {
	// Geometry
	Vertices []r3.Vec

	// Topology
	Facets []Facet
	Cells  []Cell

	// Named boundary groups: boundary name -> facet ids
	Boundaries map[string][]int

	// Connectivity (built by BuildConnectivity)
	FO []int // Facet owner cell, -1 for a facet no cell references
	FN []int // Facet neighbor cell, >= NumReal for boundary facets

	// Cells [0, NumReal) are real interior cells. Boundary facets get one
	// placeholder neighbor id each in [NumReal, NumCellsField).
	NumReal       int
	NumCellsField int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Boundaries: make(map[string][]int),
	}
}

// BuildConnectivity derives facet owner/neighbor cells and the boundary
// placeholder ids. The lowest cell id that lists a facet owns it.
func (m *Mesh) BuildConnectivity() (err error) {
	var (
		nf = len(m.Facets)
		nv = len(m.Vertices)
	)
	m.NumReal = len(m.Cells)
	m.FO = make([]int, nf)
	m.FN = make([]int, nf)
	for f := range m.FO {
		m.FO[f], m.FN[f] = -1, -1
	}
	for f, facet := range m.Facets {
		for _, v := range facet {
			if v < 0 || v >= nv {
				return fmt.Errorf("facet %d references vertex %d, mesh has %d vertices",
					f, v, nv)
			}
		}
	}
	for c, cell := range m.Cells {
		for _, f := range cell {
			switch {
			case f < 0 || f >= nf:
				return fmt.Errorf("cell %d references facet %d, mesh has %d facets",
					c, f, nf)
			case m.FO[f] < 0:
				m.FO[f] = c
			case m.FO[f] == c:
				return fmt.Errorf("cell %d lists facet %d twice", c, f)
			case m.FN[f] < 0:
				m.FN[f] = c
			default:
				return fmt.Errorf("facet %d is shared by more than two cells: %d, %d, %d",
					f, m.FO[f], m.FN[f], c)
			}
		}
	}
	// Boundary placeholder cells, one per boundary facet in facet order
	next := m.NumReal
	for f := range m.Facets {
		if m.FO[f] >= 0 && m.FN[f] < 0 {
			m.FN[f] = next
			next++
		}
	}
	m.NumCellsField = next
	for name, faces := range m.Boundaries {
		for _, f := range faces {
			if f < 0 || f >= nf {
				return fmt.Errorf("boundary %s references facet %d, mesh has %d facets",
					name, f, nf)
			}
		}
	}
	return
}

// IsInterior reports whether facet f separates two real cells
func (m *Mesh) IsInterior(f int) bool {
	return m.FO[f] >= 0 && m.FN[f] >= 0 && m.FN[f] < m.NumReal
}

// BoundaryNames returns boundary group names in sorted order
func (m *Mesh) BoundaryNames() (names []string) {
	names = make([]string, 0, len(m.Boundaries))
	for name := range m.Boundaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// PruneBoundaries removes empty groups and groups carrying "interior" in their name
func (m *Mesh) PruneBoundaries() {
	for name, faces := range m.Boundaries {
		if len(faces) == 0 || strings.Contains(name, "interior") {
			delete(m.Boundaries, name)
		}
	}
}

// CellCentroid is the volume weighted centroid of cell c. The cell is split
// into pyramids from each facet to the vertex average, each facet into a fan
// of triangles about its own vertex average. A degenerate cell falls back to
// the vertex average.
func (m *Mesh) CellCentroid(c int) (C r3.Vec) {
	var (
		est  = m.vertexAverage(c)
		vol  float64
		sumC r3.Vec
	)
	for _, f := range m.Cells[c] {
		fc, fa := m.facetCentre(f)
		pv := math.Abs(r3.Dot(fa, r3.Sub(fc, est))) / 3
		vol += pv
		// pyramid centroid sits a quarter of the way from the base to the apex
		sumC = r3.Add(sumC, r3.Scale(pv, r3.Add(r3.Scale(0.75, fc), r3.Scale(0.25, est))))
	}
	if vol <= 0 {
		return est
	}
	return r3.Scale(1/vol, sumC)
}

func (m *Mesh) vertexAverage(c int) (C r3.Vec) {
	seen := make(map[int]struct{})
	for _, f := range m.Cells[c] {
		for _, v := range m.Facets[f] {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			C = r3.Add(C, m.Vertices[v])
		}
	}
	if len(seen) > 0 {
		C = r3.Scale(1/float64(len(seen)), C)
	}
	return
}

// facetCentre returns the area weighted centre and the area vector of facet f
func (m *Mesh) facetCentre(f int) (fc, fa r3.Vec) {
	var (
		fv  = m.Facets[f]
		p0  r3.Vec
		sum float64
	)
	for _, v := range fv {
		p0 = r3.Add(p0, m.Vertices[v])
	}
	p0 = r3.Scale(1/float64(len(fv)), p0)
	for i, v := range fv {
		a, b := m.Vertices[v], m.Vertices[fv[(i+1)%len(fv)]]
		ta := r3.Scale(0.5, r3.Cross(r3.Sub(a, p0), r3.Sub(b, p0)))
		w := r3.Norm(ta)
		fa = r3.Add(fa, ta)
		fc = r3.Add(fc, r3.Scale(w/3, r3.Add(p0, r3.Add(a, b))))
		sum += w
	}
	if sum == 0 {
		return p0, fa
	}
	return r3.Scale(1/sum, fc), fa
}

// Statistics summarizes mesh sizes
type Statistics struct {
	Vertices, Facets, Cells int
	InteriorFacets          int
	BoundaryFacets          int
	BoundaryGroups          map[string]int
}

func (m *Mesh) Statistics() (st Statistics) {
	st = Statistics{
		Vertices:       len(m.Vertices),
		Facets:         len(m.Facets),
		Cells:          len(m.Cells),
		BoundaryGroups: make(map[string]int, len(m.Boundaries)),
	}
	for f := range m.Facets {
		if m.IsInterior(f) {
			st.InteriorFacets++
		} else if m.FO[f] >= 0 {
			st.BoundaryFacets++
		}
	}
	for name, faces := range m.Boundaries {
		st.BoundaryGroups[name] = len(faces)
	}
	return
}
