package types

import (
	"fmt"
	"math"
)

/*
PartPair packs an ordered (owner, neighbor) partition pair into one comparable key.
Unlike an undirected edge key the order is kept: (A,B) and (B,A) are distinct, which
is what a pair of matched send/receive boundary lists needs.
*/
type PartPair uint64

func NewPartPair(owner, neighbor int) PartPair {
	var (
		limit = math.MaxUint32
	)
	if owner < 0 || owner > limit || neighbor < 0 || neighbor > limit {
		panic(fmt.Errorf("unable to pack partitions %d and %d into a pair key",
			owner, neighbor))
	}
	return PartPair(uint64(owner)<<32 | uint64(neighbor))
}

func (pp PartPair) Owner() int    { return int(pp >> 32) }
func (pp PartPair) Neighbor() int { return int(pp & math.MaxUint32) }

// Reverse returns the key of the matching boundary on the neighbor's side
func (pp PartPair) Reverse() PartPair {
	return NewPartPair(pp.Neighbor(), pp.Owner())
}

// BoundaryName follows the interMesh_<owner>_<neighbor> group naming
func (pp PartPair) BoundaryName() string {
	return fmt.Sprintf("interMesh_%d_%d", pp.Owner(), pp.Neighbor())
}
