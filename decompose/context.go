package decompose

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-metrics"
	"github.com/rs/zerolog"

	"github.com/notargets/meshdecomp/InputParameters"
	"github.com/notargets/meshdecomp/field"
	"github.com/notargets/meshdecomp/mesh"
	"github.com/notargets/meshdecomp/partition"
	"github.com/notargets/meshdecomp/store"
)

// SimulationContext carries everything one decompose or merge run shares:
// parameters, the loaded global mesh and fields, the index store, logging
// and metrics. Nothing in this package keeps process wide state.
type SimulationContext struct {
	Params  *InputParameters.DecomposeParameters
	Log     zerolog.Logger
	Metrics metrics.MetricSink
	Store   store.IndexStore
	// Graph partitioner override, nil selects METIS
	Kway partition.KwayFunc

	Mesh     *mesh.Mesh
	MeshStep int
	Fields   *field.Registry
}

func NewSimulationContext(params *InputParameters.DecomposeParameters, logger zerolog.Logger) *SimulationContext {
	return &SimulationContext{
		Params:  params,
		Log:     logger,
		Metrics: metrics.NewInmemSink(10*time.Second, time.Minute),
		Fields:  field.NewRegistry(),
	}
}

// NewLogger builds a console logger at the named level
func NewLogger(w io.Writer, level string) (logger zerolog.Logger, err error) {
	var lvl zerolog.Level
	if level == "" {
		level = "info"
	}
	if lvl, err = zerolog.ParseLevel(strings.ToLower(level)); err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger = zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "meshdecomp").Logger()
	return
}

func (sc *SimulationContext) Total() int { return sc.Params.Decompose.Total }

func (sc *SimulationContext) Block() int { return sc.Params.Decompose.Block }

// PartitionDir is the output directory of partition id
func (sc *SimulationContext) PartitionDir(id int) string {
	return store.PartitionDir(sc.Params.WorkingDir, sc.Params.MeshName, id)
}

// OpenStore opens the configured index store unless one is already set
func (sc *SimulationContext) OpenStore() (err error) {
	if sc.Store != nil {
		return
	}
	var s store.IndexStore
	if s, err = store.Open(store.Kind(sc.Params.IndexStore), sc.Params.WorkingDir, sc.Params.MeshName); err != nil {
		return
	}
	sc.Store = s
	return
}

// LoadMesh reads the latest global mesh at or before step
func (sc *SimulationContext) LoadMesh(step int) (err error) {
	var m *mesh.Mesh
	m, sc.MeshStep, err = mesh.ReadMeshFile(sc.Params.WorkingDir, sc.Params.MeshName, step)
	if errors.Is(err, mesh.ErrMeshNotFound) {
		return fmt.Errorf("%w: %v", ErrInputMeshMissing, err)
	} else if err != nil {
		return
	}
	sc.Mesh = m
	st := m.Statistics()
	sc.Log.Info().Int("step", sc.MeshStep).Int("vertices", st.Vertices).
		Int("facets", st.Facets).Int("cells", st.Cells).
		Int("boundary_groups", len(st.BoundaryGroups)).Msg("loaded mesh")
	return
}

// LoadFields reads the configured fields present at step into the registry.
// Fields without a file at that step are skipped with a warning.
func (sc *SimulationContext) LoadFields(step int) (missing []string, err error) {
	var reg *field.Registry
	if reg, missing, err = field.LoadFields(sc.Params.WorkingDir, sc.Params.Fields, step); err != nil {
		return
	}
	for _, name := range missing {
		sc.Log.Warn().Str("field", name).Int("step", step).Msg("field file not found, skipping")
	}
	sc.Fields = reg
	return
}

// Close drops the loaded state and releases the index store
func (sc *SimulationContext) Close() (err error) {
	sc.Fields.Destroy()
	sc.Mesh = nil
	if sc.Store != nil {
		err = sc.Store.Close()
		sc.Store = nil
	}
	return
}
