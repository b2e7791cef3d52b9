package decompose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-metrics"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/meshdecomp/field"
	"github.com/notargets/meshdecomp/store"
)

// MissingFieldFile records a partition that could not contribute to a field
type MissingFieldFile struct {
	Field     string
	Partition int
	Err       error
}

// MergeReport describes what a merge read and wrote
type MergeReport struct {
	Step, MeshStep int
	IndexSteps     []int            // step of the index log used per partition, -1 when none
	Contributors   map[string][]int // field -> partitions that contributed
	Written        []string
	Missing        []MissingFieldFile
}

type Merger struct {
	sc *SimulationContext
}

func NewMerger(sc *SimulationContext) *Merger {
	return &Merger{sc: sc}
}

// Merge reassembles the partition field files written at the configured
// step into global fields <field><step> in the working directory. Partitions
// without a field file are recorded in the report and skipped.
func (mg *Merger) Merge(ctx context.Context) (rpt *MergeReport, err error) {
	var (
		sc    = mg.sc
		step  = sc.Params.Step
		total = sc.Total()
		start = time.Now()
		logs  []*store.IndexLog
	)
	rpt = &MergeReport{Step: step, Contributors: make(map[string][]int)}
	if total < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPartitionCountInvalid, total)
	}
	if total == 1 {
		sc.Log.Info().Int("step", step).Msg("single partition, nothing to merge")
		return
	}
	sc.Log.Info().Int("step", step).Int("total", total).Msg("merging fields")
	if err = sc.LoadMesh(step); err != nil {
		return nil, err
	}
	rpt.MeshStep = sc.MeshStep
	if _, err = sc.LoadFields(sc.MeshStep); err != nil {
		return nil, err
	}
	if err = sc.OpenStore(); err != nil {
		return nil, err
	}

	logs = make([]*store.IndexLog, total)
	rpt.IndexSteps = make([]int, total)
	for id := 0; id < total; id++ {
		found, log, lerr := sc.Store.Latest(ctx, id, step)
		if errors.Is(lerr, store.ErrIndexLogMissing) {
			rpt.IndexSteps[id] = -1
			sc.Log.Warn().Int("partition", id).Err(lerr).Msg("no index log")
			continue
		} else if lerr != nil {
			return nil, lerr
		}
		rpt.IndexSteps[id] = found
		logs[id] = &log
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range sc.Params.Fields {
		g.Go(func() error {
			contributed, missing, ferr := mg.mergeField(name, logs)
			mu.Lock()
			defer mu.Unlock()
			rpt.Missing = append(rpt.Missing, missing...)
			if len(contributed) > 0 {
				rpt.Contributors[name] = contributed
				rpt.Written = append(rpt.Written, name)
			}
			return ferr
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	sortReport(rpt)
	for _, mf := range rpt.Missing {
		sc.Metrics.IncrCounterWithLabels(MetricMergeMissing, 1, []metrics.Label{LabelField.M(mf.Field)})
	}
	sc.Metrics.IncrCounter(MetricMergeFieldsOut, float32(len(rpt.Written)))
	sc.Metrics.AddSample(MetricMergeMillis, sinceMillis(start))
	if len(rpt.Written) == 0 {
		return rpt, fmt.Errorf("%w: step %d, %d partitions", ErrNoPartitionsContributed, step, total)
	}
	sc.Log.Info().Int("step", step).Strs("fields", rpt.Written).Msg("merged fields written")
	return
}

// mergeField gathers one field from every partition and writes the result.
// Nothing is written when no partition has the field at the step.
func (mg *Merger) mergeField(name string, logs []*store.IndexLog) (contributed []int, missing []MissingFieldFile, err error) {
	var (
		sc   = mg.sc
		step = sc.Params.Step
		out  *field.Field
	)
	if global, ok := sc.Fields.FindField(name); ok {
		out = global
	}
	for id, log := range logs {
		path := filepath.Join(sc.PartitionDir(id), field.FileName(name, step))
		if log == nil {
			missing = append(missing, MissingFieldFile{Field: name, Partition: id,
				Err: fmt.Errorf("%w: partition %d", ErrIndexLogMissing, id)})
			continue
		}
		if _, serr := os.Stat(path); serr != nil {
			missing = append(missing, MissingFieldFile{Field: name, Partition: id,
				Err: fmt.Errorf("%w: %s", ErrFieldFileMissingOnMerge, path)})
			continue
		}
		var in *field.Field
		if in, err = field.ReadFile(path); err != nil {
			return
		}
		if out == nil {
			// No global file at the mesh step; start from the partition header
			if out, err = field.New(name, in.NComp, sc.Mesh.NumReal*log.Block); err != nil {
				return
			}
			out.Boundaries = in.NativeBoundaries()
		}
		if err = out.Scatter(in, log.Dofs); err != nil {
			return nil, nil, fmt.Errorf("partition %d: %w", id, err)
		}
		contributed = append(contributed, id)
		sc.Metrics.IncrCounter(MetricMergeContributed, 1)
	}
	if len(contributed) == 0 {
		return
	}
	out.Name = name
	err = out.WriteFile(filepath.Join(sc.Params.WorkingDir, field.FileName(name, step)), nil)
	return
}

func sortReport(rpt *MergeReport) {
	sort.Strings(rpt.Written)
	sort.Slice(rpt.Missing, func(i, j int) bool {
		mi, mj := rpt.Missing[i], rpt.Missing[j]
		if mi.Field != mj.Field {
			return mi.Field < mj.Field
		}
		return mi.Partition < mj.Partition
	})
}
