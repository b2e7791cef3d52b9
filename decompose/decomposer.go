package decompose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/meshdecomp/field"
	"github.com/notargets/meshdecomp/mesh"
	"github.com/notargets/meshdecomp/partition"
	"github.com/notargets/meshdecomp/store"
	"github.com/notargets/meshdecomp/types"
	"github.com/notargets/meshdecomp/utils"
)

// DecomposeReport summarizes a decomposition
type DecomposeReport struct {
	Step, MeshStep int
	Total          int
	Strategy       partition.Type
	Counts         []int // cells per partition
	GhostFacets    int
	Fields         []string // fields written to every partition
	Skipped        []string // configured fields absent at the step
	Shortcut       bool     // total == 1, nothing was written
}

type Decomposer struct {
	sc *SimulationContext
}

func NewDecomposer(sc *SimulationContext) *Decomposer {
	return &Decomposer{sc: sc}
}

// Decompose splits the global mesh and fields at the configured step into
// Total partitions, each written to its own directory together with its
// index log
func (d *Decomposer) Decompose(ctx context.Context) (rpt *DecomposeReport, err error) {
	var (
		sc    = d.sc
		step  = sc.Params.Step
		total = sc.Total()
		block = sc.Block()
		start = time.Now()
		s     partition.Strategy
		a     partition.Assignment
		parts []*PartitionMesh
		gb    *GhostBoundaries
	)
	rpt = &DecomposeReport{Step: step, Total: total}
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	if total == 1 {
		rpt.Shortcut = true
		sc.Log.Info().Int("step", step).Msg("single partition, nothing to decompose")
		return
	}
	sc.Log.Info().Int("step", step).Int("total", total).Msg("decomposing grid")

	if err = sc.LoadMesh(step); err != nil {
		return nil, err
	}
	rpt.MeshStep = sc.MeshStep
	if rpt.Skipped, err = sc.LoadFields(step); err != nil {
		return nil, err
	}
	rpt.Fields = sc.Fields.Names()
	m := sc.Mesh
	for _, name := range rpt.Fields {
		f, _ := sc.Fields.FindField(name)
		if f.NumDofs() != m.NumReal*block {
			return nil, fmt.Errorf("field %s has %d dofs, mesh has %d cells of block %d",
				name, f.NumDofs(), m.NumReal, block)
		}
	}

	cfg, err := sc.Params.PartitionConfig()
	if err != nil {
		return nil, err
	}
	cfg.Kway = sc.Kway
	rpt.Strategy = cfg.Type
	if s, err = partition.New(cfg); err != nil {
		return nil, err
	}
	if a, err = s.Assign(m, total); err != nil {
		return nil, err
	}
	if err = partition.Validate(a, m.NumReal, total); err != nil {
		return nil, fmt.Errorf("%v strategy: %w", cfg.Type, err)
	}
	rpt.Counts = a.Counts(total)
	sc.Log.Debug().Ints("cells_per_partition", rpt.Counts).Msg("assigned cells")

	if parts, err = Slice(ctx, m, a, total); err != nil {
		return nil, err
	}
	if gb, err = BuildGhostBoundaries(m, a, parts); err != nil {
		return nil, err
	}
	rpt.GhostFacets = gb.NumFacets()
	sc.Metrics.IncrCounter(MetricGhostFacets, float32(rpt.GhostFacets))

	if err = sc.OpenStore(); err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, pm := range parts {
		g.Go(func() error {
			return d.writePartition(gctx, pm, gb)
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	sc.Metrics.AddSample(MetricDecomposeMillis, sinceMillis(start))
	sc.Log.Info().Int("step", step).Int("ghost_facets", rpt.GhostFacets).
		Str("memory", utils.GetMemUsage()).Msg("decomposition written")
	return
}

// writePartition writes mesh, index log and fields of one partition. The
// index log is committed before any field file so an interrupted run never
// leaves fields that merge cannot place.
func (d *Decomposer) writePartition(ctx context.Context, pm *PartitionMesh, gb *GhostBoundaries) (err error) {
	var (
		sc   = d.sc
		step = sc.Params.Step
		dir  = sc.PartitionDir(pm.ID)
		dofs = pm.CellGlobal.Expand(sc.Block())
	)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrPartitionDirectoryUnwritable, err)
	}
	if err = writeMesh(filepath.Join(dir, mesh.FileName(sc.Params.MeshName, step)), pm.Mesh); err != nil {
		if errors.Is(err, errMeshCreate) {
			return fmt.Errorf("%w: partition %d: %v", ErrPartitionDirectoryUnwritable, pm.ID, err)
		}
		return fmt.Errorf("partition %d mesh: %w", pm.ID, err)
	}
	if err = sc.Store.Put(ctx, pm.ID, step, store.IndexLog{Block: sc.Block(), Dofs: dofs}); err != nil {
		return fmt.Errorf("partition %d index log: %w", pm.ID, err)
	}
	var ghosts []field.BoundaryBlock
	for _, nbr := range gb.Neighbors(pm.ID) {
		ghosts = append(ghosts, field.GhostBlock(types.NewPartPair(pm.ID, nbr).BoundaryName()))
	}
	for _, name := range sc.Fields.Names() {
		f, _ := sc.Fields.FindField(name)
		if err = f.WriteFile(filepath.Join(dir, field.FileName(name, step)), dofs, ghosts...); err != nil {
			return fmt.Errorf("partition %d field %s: %w", pm.ID, name, err)
		}
		sc.Metrics.IncrCounter(MetricFieldFilesWritten, 1)
	}
	sc.Metrics.IncrCounter(MetricPartitionsWritten, 1)
	sc.Metrics.IncrCounter(MetricCellsWritten, float32(len(pm.CellGlobal)))
	sc.Log.Info().Int("partition", pm.ID).Int("cells", len(pm.CellGlobal)).
		Ints("neighbors", gb.Neighbors(pm.ID)).Msg("partition written")
	return
}

var errMeshCreate = errors.New("creating partition mesh")

func writeMesh(path string, m *mesh.Mesh) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return fmt.Errorf("%w: %v", errMeshCreate, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err = m.Write(file); err != nil {
		return
	}
	return file.Sync()
}
