package types

import "strings"

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Dirichlet
	BC_Slip
	BC_Far
	BC_Wall
	BC_Cyl
	BC_Neuman
	BC_Out
	BC_Symmetry
	BC_Periodic
	// BC_Ghost marks an inter-partition communication boundary, not a wall
	BC_Ghost
)

var BCNameMap = map[string]BCFLAG{
	"none":      BC_None,
	"inflow":    BC_In,
	"in":        BC_In,
	"out":       BC_Out,
	"outflow":   BC_Out,
	"wall":      BC_Wall,
	"far":       BC_Far,
	"cyl":       BC_Cyl,
	"dirichlet": BC_Dirichlet,
	"neuman":    BC_Neuman,
	"neumann":   BC_Neuman,
	"slip":      BC_Slip,
	"symmetry":  BC_Symmetry,
	"periodic":  BC_Periodic,
	"ghost":     BC_Ghost,
}

var bcCanonicalNames = [...]string{
	"NONE", "INFLOW", "DIRICHLET", "SLIP", "FAR", "WALL", "CYL",
	"NEUMAN", "OUTFLOW", "SYMMETRY", "PERIODIC", "GHOST",
}

func (bc BCFLAG) String() string {
	if int(bc) < len(bcCanonicalNames) {
		return bcCanonicalNames[bc]
	}
	return "UNKNOWN"
}

// NewBCFLAG parses a boundary type label, case insensitive
func NewBCFLAG(label string) (bc BCFLAG, ok bool) {
	bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]
	return
}
