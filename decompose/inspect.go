package decompose

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/meshdecomp/mesh"
	"github.com/notargets/meshdecomp/types"
)

// PartitionSummary describes one partition as found on disk
type PartitionSummary struct {
	ID        int
	MeshStep  int
	IndexStep int
	Stats     mesh.Statistics
	Ghosts    map[int]int // neighbor -> shared facet count
}

// Inspect reads every partition mesh and index log of a decomposition at or
// before the configured step and checks them against each other
func Inspect(ctx context.Context, sc *SimulationContext) (parts []PartitionSummary, err error) {
	var (
		step  = sc.Params.Step
		total = sc.Total()
	)
	if err = sc.OpenStore(); err != nil {
		return
	}
	ghosts := make(map[types.PartPair]int)
	for id := 0; id < total; id++ {
		var (
			pm *mesh.Mesh
			ps = PartitionSummary{ID: id, Ghosts: make(map[int]int)}
		)
		if pm, ps.MeshStep, err = mesh.ReadMeshFile(sc.PartitionDir(id), sc.Params.MeshName, step); err != nil {
			return nil, fmt.Errorf("partition %d: %w", id, err)
		}
		found, log, lerr := sc.Store.Latest(ctx, id, step)
		if lerr != nil {
			return nil, fmt.Errorf("partition %d: %w", id, lerr)
		}
		if log.NumCells() != pm.NumReal {
			return nil, fmt.Errorf("partition %d: index log at step %d lists %d cells, mesh has %d",
				id, found, log.NumCells(), pm.NumReal)
		}
		ps.IndexStep = found
		ps.Stats = pm.Statistics()
		for name, faces := range pm.Boundaries {
			if !strings.HasPrefix(name, ghostPrefix) {
				continue
			}
			a, b, ok := parseGhostName(name)
			if !ok || a != id {
				return nil, fmt.Errorf("partition %d: unexpected ghost boundary %s", id, name)
			}
			ps.Ghosts[b] = len(faces)
			ghosts[types.NewPartPair(a, b)] = len(faces)
		}
		parts = append(parts, ps)
	}
	for pp, n := range ghosts {
		if m := ghosts[pp.Reverse()]; m != n {
			return parts, fmt.Errorf("count mismatch: %s has %d facets, %s has %d",
				pp.BoundaryName(), n, pp.Reverse().BoundaryName(), m)
		}
	}
	return
}

const ghostPrefix = "interMesh_"

func parseGhostName(name string) (a, b int, ok bool) {
	ids := strings.Split(strings.TrimPrefix(name, ghostPrefix), "_")
	if len(ids) != 2 {
		return
	}
	var err error
	if a, err = strconv.Atoi(ids[0]); err != nil {
		return
	}
	if b, err = strconv.Atoi(ids[1]); err != nil {
		return
	}
	return a, b, true
}
