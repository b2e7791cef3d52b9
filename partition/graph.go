package partition

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	metis "github.com/notargets/go-metis"

	"github.com/notargets/meshdecomp/mesh"
)

// KwayFunc partitions a CSR graph into nparts balanced parts and returns the
// part index of every graph vertex
type KwayFunc func(xadj, adjncy []int32, nparts int32) (part []int32, err error)

// MetisKway calls METIS k-way partitioning with unit vertex and edge weights
func MetisKway(xadj, adjncy []int32, nparts int32) (part []int32, err error) {
	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeCut
	// nil weights are unit weights
	if part, _, err = metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, nil, nparts, nil, nil, opts,
	); err != nil {
		return nil, err
	}
	return
}

// Graph partitions the dual graph of the real interior cells
type Graph struct {
	Kway KwayFunc
}

func NewGraph(kway KwayFunc) *Graph {
	if kway == nil {
		kway = MetisKway
	}
	return &Graph{Kway: kway}
}

func (g *Graph) Assign(m *mesh.Mesh, total int) (a Assignment, err error) {
	var (
		part []int32
	)
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	xadj, adjncy := DualGraph(m)
	if part, err = g.Kway(xadj, adjncy, int32(total)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalPartitioner, err)
	}
	if len(part) != m.NumReal {
		return nil, fmt.Errorf("%w: returned %d parts for %d cells",
			ErrExternalPartitioner, len(part), m.NumReal)
	}
	a = make(Assignment, m.NumReal)
	for i, p := range part {
		a[i] = int(p)
	}
	return
}

// DualGraph returns the cell adjacency of the real cells in CSR form. Cells i
// and j are adjacent when they share a facet and both are real cells. Rows
// are in cell id order and neighbors within a row ascend.
//
// The adjacency is the off diagonal pattern of A*Aᵀ, where A is the
// cell-by-facet incidence matrix.
func DualGraph(m *mesh.Mesh) (xadj, adjncy []int32) {
	var (
		nc = m.NumReal
		nf = len(m.Facets)
	)
	xadj = make([]int32, nc+1)
	if nc == 0 || nf == 0 {
		return xadj, []int32{}
	}
	SpCToF_Tmp := sparse.NewDOK(nc, nf)
	for c := 0; c < nc; c++ {
		for _, f := range m.Cells[c] {
			SpCToF_Tmp.Set(c, f, 1)
		}
	}
	SpCToF := SpCToF_Tmp.ToCSR()
	SpCToC := sparse.NewCSR(nc, nc, nil, nil, nil)
	SpCToC.Mul(SpCToF, SpCToF.T())

	raw := SpCToC.RawMatrix()
	adjncy = make([]int32, 0, len(raw.Ind))
	for c := 0; c < nc; c++ {
		row := make([]int, 0, raw.Indptr[c+1]-raw.Indptr[c])
		for k := raw.Indptr[c]; k < raw.Indptr[c+1]; k++ {
			if j := raw.Ind[k]; j != c && raw.Data[k] != 0 {
				row = append(row, j)
			}
		}
		sort.Ints(row)
		for _, j := range row {
			adjncy = append(adjncy, int32(j))
		}
		xadj[c+1] = int32(len(adjncy))
	}
	return
}
