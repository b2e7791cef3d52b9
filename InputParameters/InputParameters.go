package InputParameters

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/meshdecomp/partition"
)

// DecomposeSection holds the partitioning controls of the input file
type DecomposeSection struct {
	Type  string     `json:"Type"`
	Total int        `json:"Total"`
	N     [3]int     `json:"N"`    // XYZ bucket hint
	Axis  [4]float64 `json:"Axis"` // rotation axis xyz and angle in radians
	Block int        `json:"Block"`
}

// Parameters obtained from the YAML input file.
// ghodss/yaml routes through encoding/json, hence the json tags.
type DecomposeParameters struct {
	Title      string           `json:"Title"`
	MeshName   string           `json:"MeshName"`
	WorkingDir string           `json:"WorkingDir"`
	Step       int              `json:"Step"`
	Fields     []string         `json:"Fields"`
	IndexStore string           `json:"IndexStore"`
	Decompose  DecomposeSection `json:"Decompose"`
}

func NewDecomposeParameters() (dp *DecomposeParameters) {
	dp = &DecomposeParameters{}
	dp.Defaults()
	return
}

func (dp *DecomposeParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, dp); err != nil {
		return
	}
	dp.Defaults()
	return
}

// Defaults fills every unset value
func (dp *DecomposeParameters) Defaults() {
	if dp.MeshName == "" {
		dp.MeshName = "mesh"
	}
	if dp.WorkingDir == "" {
		dp.WorkingDir = "."
	}
	if dp.IndexStore == "" {
		dp.IndexStore = "file"
	}
	if dp.Decompose.Type == "" {
		dp.Decompose.Type = partition.GRAPH.String()
	}
	if dp.Decompose.Total == 0 {
		dp.Decompose.Total = runtime.NumCPU()
	}
	if dp.Decompose.N == [3]int{} {
		dp.Decompose.N = [3]int{1, 1, 1}
	}
	if dp.Decompose.Block == 0 {
		dp.Decompose.Block = 1
	}
}

func (dp *DecomposeParameters) StrategyType() (partition.Type, error) {
	return partition.NewType(dp.Decompose.Type)
}

// PartitionConfig translates the input into the partitioner configuration
func (dp *DecomposeParameters) PartitionConfig() (cfg partition.Config, err error) {
	if cfg.Type, err = dp.StrategyType(); err != nil {
		return
	}
	cfg.N = dp.Decompose.N
	cfg.Axis = dp.Decompose.Axis
	return
}

func (dp *DecomposeParameters) Validate() (err error) {
	if _, err = dp.StrategyType(); err != nil {
		return
	}
	switch {
	case dp.Decompose.Total < 1:
		return fmt.Errorf("%w: Total = %d", partition.ErrPartitionCountInvalid, dp.Decompose.Total)
	case dp.Decompose.Block < 1:
		return fmt.Errorf("Block must be at least 1, have %d", dp.Decompose.Block)
	case dp.Step < 0:
		return fmt.Errorf("Step must not be negative, have %d", dp.Step)
	case strings.ContainsAny(dp.MeshName, "/\\"):
		return fmt.Errorf("MeshName %q must not contain a path separator", dp.MeshName)
	}
	for i, n := range dp.Decompose.N {
		if n < 1 {
			return fmt.Errorf("N[%d] must be at least 1, have %d", i, n)
		}
	}
	switch strings.ToLower(dp.IndexStore) {
	case "file", "pebble":
	default:
		return fmt.Errorf("IndexStore must be file or pebble, have %q", dp.IndexStore)
	}
	return
}

func (dp *DecomposeParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", dp.Title)
	fmt.Printf("[%s]\t\t\t= Mesh Name\n", dp.MeshName)
	fmt.Printf("[%s]\t\t\t= Working Directory\n", dp.WorkingDir)
	fmt.Printf("[%d]\t\t\t\t= Step\n", dp.Step)
	fmt.Printf("%v\t\t\t= Fields\n", dp.Fields)
	fmt.Printf("[%s]\t\t\t= Index Store\n", dp.IndexStore)
	fmt.Printf("[%s]\t\t\t= Decompose Type\n", dp.Decompose.Type)
	fmt.Printf("[%d]\t\t\t\t= Total Partitions\n", dp.Decompose.Total)
	fmt.Printf("%v\t\t\t= N\n", dp.Decompose.N)
	fmt.Printf("%v\t\t= Axis\n", dp.Decompose.Axis)
	fmt.Printf("[%d]\t\t\t\t= Block\n", dp.Decompose.Block)
}
