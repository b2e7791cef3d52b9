package decompose

import (
	"fmt"
	"sort"

	"github.com/notargets/meshdecomp/mesh"
	"github.com/notargets/meshdecomp/partition"
	"github.com/notargets/meshdecomp/types"
)

// GhostBoundaries holds, for each ordered partition pair (A,B), the facets
// of A that face a cell of B. Entry k of (A,B) and entry k of (B,A) are the
// same global facet.
type GhostBoundaries struct {
	Total  int
	local  map[types.PartPair][]int // local facet ids on the owner side of the key
	global map[types.PartPair][]int
}

func NewGhostBoundaries(total int) *GhostBoundaries {
	return &GhostBoundaries{
		Total:  total,
		local:  make(map[types.PartPair][]int),
		global: make(map[types.PartPair][]int),
	}
}

// BuildGhostBoundaries finds every interior facet whose two cells fall in
// different partitions and records it on both sides. Each group is also
// added to its owner's partition mesh as an interMesh boundary.
func BuildGhostBoundaries(m *mesh.Mesh, a partition.Assignment, parts []*PartitionMesh) (gb *GhostBoundaries, err error) {
	total := len(parts)
	gb = NewGhostBoundaries(total)
	for f := range m.Facets {
		if !m.IsInterior(f) {
			continue
		}
		co, cn := a[m.FO[f]], a[m.FN[f]]
		if co == cn {
			continue
		}
		var lo, ln int
		if lo, err = lookupFacet(parts, co, f); err != nil {
			return nil, err
		}
		if ln, err = lookupFacet(parts, cn, f); err != nil {
			return nil, err
		}
		gb.add(co, cn, lo, ln, f)
	}
	if err = gb.Validate(); err != nil {
		return nil, err
	}
	for _, pp := range gb.Pairs() {
		parts[pp.Owner()].Mesh.Boundaries[pp.BoundaryName()] = gb.local[pp]
	}
	return
}

func lookupFacet(parts []*PartitionMesh, id, f int) (lf int, err error) {
	var ok bool
	if lf, ok = parts[id].FacetMap.Lookup(f); !ok {
		err = fmt.Errorf("%w: ghost facet %d in partition %d", ErrIndexSentinelLeak, f, id)
	}
	return
}

// add pushes both sides together so the two lists stay index aligned
func (gb *GhostBoundaries) add(a, b, la, lb, f int) {
	ab, ba := types.NewPartPair(a, b), types.NewPartPair(b, a)
	gb.local[ab] = append(gb.local[ab], la)
	gb.local[ba] = append(gb.local[ba], lb)
	gb.global[ab] = append(gb.global[ab], f)
	gb.global[ba] = append(gb.global[ba], f)
}

// Get returns the local facet ids of a that face partition b
func (gb *GhostBoundaries) Get(a, b int) []int {
	return gb.local[types.NewPartPair(a, b)]
}

// Global returns the global facet ids of the (a,b) group
func (gb *GhostBoundaries) Global(a, b int) []int {
	return gb.global[types.NewPartPair(a, b)]
}

// Pairs lists the non-empty groups ordered by owner, then neighbor
func (gb *GhostBoundaries) Pairs() (pairs []types.PartPair) {
	for pp := range gb.local {
		pairs = append(pairs, pp)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i] < pairs[j] })
	return
}

// Neighbors returns the partitions sharing at least one facet with a, ascending
func (gb *GhostBoundaries) Neighbors(a int) (nbrs []int) {
	for b := 0; b < gb.Total; b++ {
		if len(gb.Get(a, b)) > 0 {
			nbrs = append(nbrs, b)
		}
	}
	return
}

// NumFacets counts each shared facet once
func (gb *GhostBoundaries) NumFacets() (n int) {
	for pp, faces := range gb.global {
		if pp.Owner() < pp.Neighbor() {
			n += len(faces)
		}
	}
	return
}

// Validate checks that every group has a twin of equal length listing the
// same global facets in the same order
func (gb *GhostBoundaries) Validate() error {
	for pp, faces := range gb.global {
		if pp.Owner() == pp.Neighbor() {
			return fmt.Errorf("partition %d has a ghost boundary with itself", pp.Owner())
		}
		twin, ok := gb.global[pp.Reverse()]
		if !ok {
			return fmt.Errorf("partition %d sends to %d, but %d has no boundary with %d",
				pp.Owner(), pp.Neighbor(), pp.Neighbor(), pp.Owner())
		}
		if len(twin) != len(faces) || len(gb.local[pp]) != len(faces) {
			return fmt.Errorf("count mismatch: %s has %d facets, %s has %d",
				pp.BoundaryName(), len(faces), pp.Reverse().BoundaryName(), len(twin))
		}
		for k := range faces {
			if faces[k] != twin[k] {
				return fmt.Errorf("%s entry %d is facet %d, %s entry %d is facet %d",
					pp.BoundaryName(), k, faces[k], pp.Reverse().BoundaryName(), k, twin[k])
			}
		}
	}
	return nil
}
