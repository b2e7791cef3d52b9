package field

import (
	"fmt"
	"sort"

	"github.com/notargets/meshdecomp/types"
)

// Component counts of the supported cell field kinds
const (
	Scalar          = 1
	Vector          = 3
	SymmetricTensor = 6
	Tensor          = 9
)

const GhostTypeLabel = "GHOST"

const (
	internalKeyword  = "internal"
	blockOpen        = "{"
	blockClose       = "}"
	boundaryTypeWord = "type"
)

// Entry is one "key value..." line inside a boundary block
type Entry struct {
	Key    string
	Values []string
}

// BoundaryBlock is the boundary condition metadata of one boundary group.
// Blocks travel with the field unchanged, independent of partitioning.
type BoundaryBlock struct {
	Name      string
	TypeLabel string // as written in the file
	Type      types.BCFLAG
	Entries   []Entry
}

// GhostBlock marks an inter-partition boundary group as a communication channel
func GhostBlock(name string) BoundaryBlock {
	return BoundaryBlock{Name: name, TypeLabel: GhostTypeLabel, Type: types.BC_Ghost}
}

func (bb BoundaryBlock) IsGhost() bool { return bb.Type == types.BC_Ghost }

// Field holds dof values of one named cell field. Dof d occupies
// Values[d*NComp : (d+1)*NComp].
type Field struct {
	Name       string
	NComp      int
	Values     []float64
	Boundaries []BoundaryBlock
}

func ValidNComp(ncomp int) bool {
	switch ncomp {
	case Scalar, Vector, SymmetricTensor, Tensor:
		return true
	}
	return false
}

// New allocates a zero field with ndof dofs
func New(name string, ncomp, ndof int) (f *Field, err error) {
	if !ValidNComp(ncomp) {
		return nil, fmt.Errorf("field %s: unsupported component count %d", name, ncomp)
	}
	if ndof < 0 {
		return nil, fmt.Errorf("field %s: negative dof count %d", name, ndof)
	}
	return &Field{
		Name:   name,
		NComp:  ncomp,
		Values: make([]float64, ndof*ncomp),
	}, nil
}

func (f *Field) NumDofs() int { return len(f.Values) / f.NComp }

// Dof returns the components of dof d, aliasing the field storage
func (f *Field) Dof(d int) []float64 {
	return f.Values[d*f.NComp : (d+1)*f.NComp]
}

// NativeBoundaries returns the boundary blocks that are not ghost channels
func (f *Field) NativeBoundaries() (bbs []BoundaryBlock) {
	for _, bb := range f.Boundaries {
		if !bb.IsGhost() {
			bbs = append(bbs, bb)
		}
	}
	return
}

// Registry finds fields by name
type Registry struct {
	fields map[string]*Field
}

func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]*Field)}
}

func (r *Registry) Add(f *Field) { r.fields[f.Name] = f }

func (r *Registry) FindField(name string) (f *Field, ok bool) {
	f, ok = r.fields[name]
	return
}

// Names returns the registered field names in sorted order
func (r *Registry) Names() (names []string) {
	names = make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (r *Registry) Len() int { return len(r.fields) }

// Destroy drops every registered field
func (r *Registry) Destroy() {
	r.fields = make(map[string]*Field)
}
