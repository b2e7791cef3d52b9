package decompose

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/meshdecomp/mesh"
	"github.com/notargets/meshdecomp/partition"
)

// PartitionMesh is the self-contained local mesh of one partition and the
// maps tying its local ids back to the global mesh
type PartitionMesh struct {
	ID   int
	Mesh *mesh.Mesh

	VertexGlobal []int        // local vertex -> global vertex
	FacetGlobal  []int        // local facet -> global facet
	CellGlobal   CellIndexLog // local cell -> global cell

	VertexMap LocalIndexMap // global vertex -> local vertex
	FacetMap  LocalIndexMap // global facet -> local facet
}

type marks struct {
	vertices, facets []bool
	cells            []int
}

// Slice splits m into total partition meshes following the assignment a.
// Marking runs once over the real cells; compaction and renumbering of each
// partition then run as independent tasks.
func Slice(ctx context.Context, m *mesh.Mesh, a partition.Assignment, total int) (parts []*PartitionMesh, err error) {
	if err = partition.Validate(a, m.NumReal, total); err != nil {
		return
	}
	mk := make([]marks, total)
	for id := range mk {
		mk[id].vertices = make([]bool, len(m.Vertices))
		mk[id].facets = make([]bool, len(m.Facets))
	}
	for c := 0; c < m.NumReal; c++ {
		p := &mk[a[c]]
		p.cells = append(p.cells, c)
		for _, f := range m.Cells[c] {
			p.facets[f] = true
			for _, v := range m.Facets[f] {
				p.vertices[v] = true
			}
		}
	}
	parts = make([]*PartitionMesh, total)
	g, _ := errgroup.WithContext(ctx)
	for id := range parts {
		g.Go(func() (err error) {
			pm := &PartitionMesh{ID: id}
			if err = pm.build(m, mk[id]); err != nil {
				return fmt.Errorf("partition %d: %w", id, err)
			}
			parts[id] = pm
			return
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return
}

// build compacts the marked entities into dense local ids and rewrites the
// local connectivity through the maps
func (pm *PartitionMesh) build(m *mesh.Mesh, mk marks) (err error) {
	pm.VertexMap, pm.VertexGlobal = NewLocalIndexMap(mk.vertices)
	pm.FacetMap, pm.FacetGlobal = NewLocalIndexMap(mk.facets)
	pm.CellGlobal = CellIndexLog(mk.cells)

	lm := mesh.NewMesh()
	lm.Vertices = make([]r3.Vec, len(pm.VertexGlobal))
	for l, g := range pm.VertexGlobal {
		lm.Vertices[l] = m.Vertices[g]
	}
	lm.Facets = make([]mesh.Facet, len(pm.FacetGlobal))
	for l, g := range pm.FacetGlobal {
		facet := make(mesh.Facet, len(m.Facets[g]))
		for j, v := range m.Facets[g] {
			var ok bool
			if facet[j], ok = pm.VertexMap.Lookup(v); !ok {
				return fmt.Errorf("%w: facet %d vertex %d", ErrIndexSentinelLeak, g, v)
			}
		}
		lm.Facets[l] = facet
	}
	lm.Cells = make([]mesh.Cell, len(pm.CellGlobal))
	for l, g := range pm.CellGlobal {
		cell := make(mesh.Cell, len(m.Cells[g]))
		for j, f := range m.Cells[g] {
			var ok bool
			if cell[j], ok = pm.FacetMap.Lookup(f); !ok {
				return fmt.Errorf("%w: cell %d facet %d", ErrIndexSentinelLeak, g, f)
			}
		}
		lm.Cells[l] = cell
	}
	// Native boundary groups keep only the facets present here
	for name, faces := range m.Boundaries {
		var local []int
		for _, f := range faces {
			if lf, ok := pm.FacetMap.Lookup(f); ok {
				local = append(local, lf)
			}
		}
		if len(local) > 0 {
			lm.Boundaries[name] = local
		}
	}
	if err = lm.BuildConnectivity(); err != nil {
		return
	}
	pm.Mesh = lm
	return
}
