package decompose

// CellIndexLog lists the global cell ids of a partition in local cell order
type CellIndexLog []int

// LocalDofIndex maps sub node sub of the cell at local position pos to its
// global dof. Sub nodes run high to low within a cell block.
func LocalDofIndex(cLoc CellIndexLog, pos, sub, block int) int {
	return cLoc[pos]*block + block - 1 - sub
}

// Expand turns the cell log into the dof log: entry pos*block+sub holds
// LocalDofIndex(cLoc, pos, sub, block)
func (cl CellIndexLog) Expand(block int) (dofs []int) {
	dofs = make([]int, len(cl)*block)
	for pos := range cl {
		for sub := 0; sub < block; sub++ {
			dofs[pos*block+sub] = LocalDofIndex(cl, pos, sub, block)
		}
	}
	return
}
