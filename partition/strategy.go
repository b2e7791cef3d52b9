package partition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/meshdecomp/mesh"
)

var (
	ErrUnknownStrategy       = errors.New("unknown partition strategy")
	ErrPartitionCountInvalid = errors.New("partition count must be at least 1")
	ErrExternalPartitioner   = errors.New("external graph partitioner failed")
	ErrPartitionOutOfRange   = errors.New("partition id out of range")
)

// Assignment maps each real interior cell id to its partition id
type Assignment []int

// Strategy assigns every real interior cell (id < NumReal) a partition in [0,total)
type Strategy interface {
	Assign(m *mesh.Mesh, total int) (Assignment, error)
}

// Type selects one of the partition strategies
type Type uint8

const (
	XYZ Type = iota
	CELLID
	GRAPH
	NONE
)

func (t Type) String() string {
	switch t {
	case XYZ:
		return "XYZ"
	case CELLID:
		return "CELLID"
	case GRAPH:
		return "GRAPH"
	case NONE:
		return "NONE"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// NewType parses a strategy label; METIS is accepted as a synonym for GRAPH
func NewType(label string) (t Type, err error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "XYZ":
		return XYZ, nil
	case "CELLID", "INDEX":
		return CELLID, nil
	case "GRAPH", "METIS":
		return GRAPH, nil
	case "NONE", "":
		return NONE, nil
	}
	return NONE, fmt.Errorf("%w: %q", ErrUnknownStrategy, label)
}

// Config carries the strategy specific parameters
type Config struct {
	Type Type
	// Cartesian bucket count hint, rescaled to the partition count
	N [3]int
	// Rotation axis (x,y,z) and angle in radians applied before bucketing
	Axis [4]float64
	// Graph partitioner, nil selects METIS
	Kway KwayFunc
}

// New returns the strategy selected by cfg.Type
func New(cfg Config) (s Strategy, err error) {
	switch cfg.Type {
	case NONE:
		return Trivial{}, nil
	case CELLID:
		return Index{}, nil
	case XYZ:
		return NewCartesian(cfg.N, cfg.Axis), nil
	case GRAPH:
		return NewGraph(cfg.Kway), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, cfg.Type)
}

// Validate checks an assignment is total over the real cells and inside [0,total)
func Validate(a Assignment, numReal, total int) (err error) {
	if total < 1 {
		return fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	if len(a) != numReal {
		return fmt.Errorf("assignment covers %d cells, mesh has %d real cells",
			len(a), numReal)
	}
	for c, p := range a {
		if p < 0 || p >= total {
			return fmt.Errorf("%w: cell %d assigned to %d, total is %d",
				ErrPartitionOutOfRange, c, p, total)
		}
	}
	return
}

// Counts returns the number of cells in each partition
func (a Assignment) Counts(total int) (counts []int) {
	counts = make([]int, total)
	for _, p := range a {
		if p >= 0 && p < total {
			counts[p]++
		}
	}
	return
}

// Trivial places every cell in partition 0
type Trivial struct{}

func (Trivial) Assign(m *mesh.Mesh, total int) (a Assignment, err error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	return make(Assignment, m.NumReal), nil
}

// Index slices the cell id range into total contiguous chunks. It ignores
// geometry and locality entirely and is only a coarse fallback.
type Index struct{}

func (Index) Assign(m *mesh.Mesh, total int) (a Assignment, err error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	a = make(Assignment, m.NumReal)
	for i := range a {
		// floor(i / (NumReal/total)) in exact integer arithmetic
		a[i] = i * total / m.NumReal
	}
	return
}
