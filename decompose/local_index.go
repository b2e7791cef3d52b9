package decompose

// LocalID is a local entity id, or nothing when the entity is absent
type LocalID struct {
	id int
	ok bool
}

func Present(id int) LocalID { return LocalID{id: id, ok: true} }

func (l LocalID) Get() (int, bool) { return l.id, l.ok }

// LocalIndexMap maps every global id to its local id within one partition.
// The zero LocalID marks a global entity the partition does not reference.
type LocalIndexMap []LocalID

// NewLocalIndexMap assigns dense local ids to the marked global ids in
// ascending global order and returns the map with the inverse list
func NewLocalIndexMap(marked []bool) (lm LocalIndexMap, global []int) {
	lm = make(LocalIndexMap, len(marked))
	for g, m := range marked {
		if m {
			lm[g] = Present(len(global))
			global = append(global, g)
		}
	}
	return
}

func (lm LocalIndexMap) Lookup(g int) (int, bool) {
	if g < 0 || g >= len(lm) {
		return 0, false
	}
	return lm[g].Get()
}

// Count is the number of present entries
func (lm LocalIndexMap) Count() (n int) {
	for _, l := range lm {
		if l.ok {
			n++
		}
	}
	return
}
